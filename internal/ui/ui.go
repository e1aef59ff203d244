package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/islandtune/internal/tune"
)

// InvalidSyntax is shown when a typed tune fails validation.
const InvalidSyntax = "That's not valid tune syntax"

// ViewState represents the current view in the TUI.
type ViewState int

const (
	MenuView ViewState = iota
	InputView
	PlayingView
)

// PlayFunc plays notation and blocks until it has finished. name is empty for typed tunes.
type PlayFunc func(name, notation string) error

// Model represents the TUI application state.
type Model struct {
	view       ViewState
	play       PlayFunc
	width      int
	height     int
	tunes      list.Model
	input      textinput.Model
	nowPlaying string
	status     string
	err        error
	help       help.Model
	keys       keyMap
}

// NewModel creates a menu over c that plays tunes with play.
func NewModel(c *tune.Catalog, play PlayFunc) *Model {
	tunes := list.New(catalogItems(c), list.NewDefaultDelegate(), 76, 20)
	tunes.Title = "Island Tunes"
	tunes.SetShowHelp(false)

	input := textinput.New()
	input.Placeholder = "e-GD-CDEGe-GD---"
	input.Prompt = "♪ "
	input.CharLimit = 256

	return &Model{
		view:   MenuView,
		play:   play,
		width:  80,
		height: 28,
		tunes:  tunes,
		input:  input,
		help:   help.New(),
		keys:   newKeyMap(),
	}
}

// State returns the current [ViewState].
func (m *Model) State() ViewState { return m.view }

// Status returns the last status or validation message.
func (m *Model) Status() string { return m.status }

// Err returns the error from the last playback, if any.
func (m *Model) Err() error { return m.err }

func (m *Model) Init() tea.Cmd {
	return nil
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.tunes.SetSize(msg.Width-4, msg.Height-8)
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case MenuView:
			return m.handleMenuKeys(msg)
		case InputView:
			return m.handleInputKeys(msg)
		case PlayingView:
			return m, nil
		}

	case Msg:
		switch msg.kind {
		case MsgPlayFinished:
			res := msg.data.(playResult)
			m.nowPlaying = ""
			m.err = res.err
			if res.err == nil {
				m.status = fmt.Sprintf("Played %s", label(res.name, res.notation))
			} else {
				m.status = ""
			}
			m.view = MenuView
			return m, nil
		}
	}

	return m.updateComponents(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case MenuView:
		return m.renderMenu()
	case InputView:
		return m.renderInput()
	case PlayingView:
		return m.renderPlaying()
	default:
		return ""
	}
}

func (m *Model) handleMenuKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.tunes.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.tunes, cmd = m.tunes.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.input):
		m.view = InputView
		m.status = ""
		m.err = nil
		m.input.SetValue("")
		return m, m.input.Focus()
	case key.Matches(msg, m.keys.play):
		if item, ok := m.tunes.SelectedItem().(tuneItem); ok {
			return m, m.startPlaying(item.name, item.notation)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.tunes, cmd = m.tunes.Update(msg)
	return m, cmd
}

func (m *Model) handleInputKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.input.Blur()
		m.view = MenuView
		m.status = ""
		return m, nil
	case "enter":
		notation := strings.TrimSpace(m.input.Value())
		if notation == "" {
			m.input.Blur()
			m.view = MenuView
			return m, nil
		}
		if !tune.Validate(notation) {
			m.status = InvalidSyntax
			return m, nil
		}
		m.input.Blur()
		return m, m.startPlaying("", notation)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) updateComponents(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case MenuView:
		m.tunes, cmd = m.tunes.Update(msg)
	case InputView:
		m.input, cmd = m.input.Update(msg)
	}
	return m, cmd
}

func (m *Model) startPlaying(name, notation string) tea.Cmd {
	m.view = PlayingView
	m.nowPlaying = label(name, notation)
	m.status = ""
	m.err = nil

	play := m.play
	return func() tea.Msg {
		return playFinishedMsg(name, notation, play(name, notation))
	}
}

func label(name, notation string) string {
	if name == "" {
		return notation
	}
	return name
}

func (m *Model) renderMenu() string {
	var status string
	switch {
	case m.err != nil:
		status = styles.err.Render(fmt.Sprintf("Error: %v", m.err))
	case m.status != "":
		status = styles.ok.Render(m.status)
	}

	helpView := m.help.ShortHelpView(m.keys.ShortHelp())
	return fmt.Sprintf("%s\n%s\n\n%s", m.tunes.View(), status, helpView)
}

func (m *Model) renderInput() string {
	title := styles.title.Render("Type a tune")
	legend := styles.help.Render("notes gabcdefGABCDE, - holds, x rests")

	var status string
	if m.status != "" {
		status = styles.warn.Render(m.status)
	}

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.play, m.keys.back})
	return fmt.Sprintf("%s\n%s\n\n%s\n%s\n\n%s", title, legend, m.input.View(), status, helpView)
}

func (m *Model) renderPlaying() string {
	title := styles.title.Render("Now playing")
	return fmt.Sprintf("%s\n%s", title, styles.note.Render(m.nowPlaying))
}
