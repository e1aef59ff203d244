package ui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgPlayFinished MsgKind = iota
)

type playResult struct {
	name     string
	notation string
	err      error
}

// playFinishedMsg is the constructor for [MsgPlayFinished]
func playFinishedMsg(name, notation string, err error) Msg {
	return Msg{kind: MsgPlayFinished, data: playResult{name, notation, err}}
}
