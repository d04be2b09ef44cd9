package tui

import (
	"context"
	"errors"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"github.com/studiowebux/gemcli/internal/browser"
	"github.com/studiowebux/gemcli/internal/history"
	"github.com/studiowebux/gemcli/internal/keybinds"
	"github.com/studiowebux/gemcli/internal/viewport"
)

// initial canvas size until the first WindowSizeMsg arrives
const (
	defaultWidth  = 80
	defaultHeight = 24
)

// Options configures Run.
type Options struct {
	// StartURL is opened on startup when not empty.
	StartURL    string
	Transact    browser.TransactFunc
	Theme       viewport.Theme
	Keys        *keybinds.Registry
	History     *history.History
	HistoryPath string
	Clipboard   func(string) error
	Logger      *slog.Logger
	// ProgramOptions are appended to the defaults, mainly for tests.
	ProgramOptions []tea.ProgramOption
}

// New creates the session and the model that drives it.
func New(opts Options) (*browser.Session, *Model) {
	canvas := viewport.NewCanvas(defaultWidth, defaultHeight)
	session := browser.NewSession(browser.Options{
		Transact:    opts.Transact,
		Screen:      canvas,
		Theme:       opts.Theme,
		History:     opts.History,
		HistoryPath: opts.HistoryPath,
		Clipboard:   opts.Clipboard,
		Logger:      opts.Logger,
	})
	return session, NewModel(session, canvas, opts.Keys, opts.Logger)
}

// Run starts the browser and blocks until the user quits or ctx is done.
func Run(ctx context.Context, opts Options) error {
	session, m := New(opts)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return session.Run(ctx)
	})

	g.Go(func() error {
		// Stop the worker loop however the program exits.
		defer session.Terminate()

		programOpts := append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, opts.ProgramOptions...)
		p := tea.NewProgram(m, programOpts...)

		if opts.StartURL != "" {
			session.Navigate(opts.StartURL)
		}

		_, err := p.Run()
		return err
	})

	err := g.Wait()
	if errors.Is(err, context.Canceled) || errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}
