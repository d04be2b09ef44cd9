package tui

import (
	"log/slog"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/studiowebux/gemcli/internal/browser"
	"github.com/studiowebux/gemcli/internal/keybinds"
	"github.com/studiowebux/gemcli/internal/viewport"
)

// repaintMsg reports that the canvas published a new frame.
type repaintMsg struct{}

// sessionDoneMsg reports that the worker loop has stopped.
type sessionDoneMsg struct{}

// Model adapts a browser.Session to Bubble Tea.
type Model struct {
	session *browser.Session
	canvas  *viewport.Canvas
	keys    *keybinds.Registry
	spinner spinner.Model
	repaint chan struct{}
	logger  *slog.Logger

	// mode the previous key was decoded in
	lastMode browser.Mode
}

// NewModel creates a model drawing session's frames from canvas. The
// session must have been created with canvas as its screen.
func NewModel(session *browser.Session, canvas *viewport.Canvas, keys *keybinds.Registry, logger *slog.Logger) *Model {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if keys == nil {
		keys = keybinds.NewDefaultRegistry()
	}

	m := &Model{
		session: session,
		canvas:  canvas,
		keys:    keys,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
		repaint: make(chan struct{}, 1),
		logger:  logger,
	}

	canvas.OnFlush(func() {
		select {
		case m.repaint <- struct{}{}:
		default:
		}
	})

	return m
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.waitForRepaint())
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m, m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.canvas.Resize(msg.Width, msg.Height)
		m.session.Refresh()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.session.SetSpinnerFrame(m.spinner.View())
		return m, cmd

	case repaintMsg:
		return m, m.waitForRepaint()

	case sessionDoneMsg:
		return m, tea.Quit
	}

	return m, nil
}

func (m *Model) View() string {
	return m.canvas.Frame()
}

// waitForRepaint returns a Cmd that waits for the next frame or for the
// worker loop to stop.
func (m *Model) waitForRepaint() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-m.repaint:
			return repaintMsg{}
		case <-m.session.Done():
			return sessionDoneMsg{}
		}
	}
}
