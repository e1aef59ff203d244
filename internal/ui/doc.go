// Package ui implements the interactive tune menu using bubbletea's Elm architecture.
//
// The menu has three views:
//  1. [MenuView] : Browse the catalog and press enter to play a tune
//  2. [InputView] : Type a notation string and play it
//  3. [PlayingView] : Shown while a tune plays, all keys are ignored
//
// Playback runs inside a tea.Cmd through the injected [PlayFunc], so the view can show what is
// playing while the sink blocks. Tunes never overlap: a new one can only start once the
// previous [MsgPlayFinished] has arrived.
package ui
