package browser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"

	"github.com/studiowebux/gemcli/internal/gemini"
	"github.com/studiowebux/gemcli/internal/history"
	"github.com/studiowebux/gemcli/internal/viewport"
)

// TransactFunc performs one navigation. *gemini.Client satisfies it via
// its Transact method.
type TransactFunc func(ctx context.Context, u *url.URL) (*gemini.Response, error)

const defaultEventBuffer = 16

type Options struct {
	Transact TransactFunc
	Screen   viewport.Screen
	Theme    viewport.Theme
	History  *history.History
	// HistoryPath is where session history is appended on quit. Empty
	// disables persistence.
	HistoryPath string
	Clipboard   func(string) error
	Logger      *slog.Logger
	EventBuffer int
}

// Session owns the navigation state. The input loop calls HandleKey, the
// worker loop runs in Run, and every mutation is rendered before the lock
// is released.
type Session struct {
	mu    sync.Mutex
	state State

	events chan Event
	done   chan struct{}

	transact    TransactFunc
	screen      viewport.Screen
	theme       viewport.Theme
	history     *history.History
	historyPath string
	clipboard   func(string) error
	logger      *slog.Logger

	// history.Append outside tests
	appendHistory func(path string, entries []string) error

	spinner       string
	terminateOnce sync.Once
}

func NewSession(opts Options) *Session {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.History == nil {
		opts.History = history.New(nil)
	}
	if opts.Screen == nil {
		opts.Screen = viewport.NewCanvas(80, 24)
	}
	if opts.EventBuffer <= 0 {
		opts.EventBuffer = defaultEventBuffer
	}

	return &Session{
		events:        make(chan Event, opts.EventBuffer),
		done:          make(chan struct{}),
		transact:      opts.Transact,
		screen:        opts.Screen,
		theme:         opts.Theme,
		history:       opts.History,
		historyPath:   opts.HistoryPath,
		clipboard:     opts.Clipboard,
		logger:        opts.Logger,
		appendHistory: history.Append,
	}
}

// Run consumes events until TerminateWorker arrives or ctx is done. Events
// sent after Run returns are dropped.
func (s *Session) Run(ctx context.Context) error {
	defer close(s.done)

	s.mu.Lock()
	s.renderLocked()
	s.mu.Unlock()

	for {
		select {
		case ev := <-s.events:
			if !s.apply(ev) {
				s.logger.Debug("worker loop terminated")
				return nil
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Done is closed when Run returns.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Terminate flushes history and stops the worker loop. Safe to call more
// than once.
func (s *Session) Terminate() {
	s.terminateOnce.Do(func() {
		s.mu.Lock()
		entries := s.history.Drain()
		s.mu.Unlock()

		if s.historyPath != "" {
			if err := s.appendHistory(s.historyPath, entries); err != nil {
				s.logger.Error("failed to save history", "error", err)
			}
		}

		s.emit(TerminateWorker{})
	})
}

func (s *Session) emit(ev Event) {
	select {
	case s.events <- ev:
	case <-s.done:
		s.logger.Debug("discarding event after shutdown", "event", fmt.Sprintf("%T", ev))
	}
}

// apply updates state for one event and renders. It reports false for
// TerminateWorker.
func (s *Session) apply(ev Event) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch ev := ev.(type) {
	case TerminateWorker:
		return false

	case TransactionComplete:
		s.logger.Info("navigation complete", "url", ev.URL.String(), "status", ev.Response.Status.Code, "bytes", len(ev.Response.Body))
		s.state.Loading = false
		s.state.Mode = ModeNormal
		s.state.Input = ""
		s.state.Err = ""
		s.state.Document = ev.Response.Body
		s.state.URL = ev.URL
		s.state.Status = ev.Response.Status.Code
		s.state.ActiveLine = 0
		s.state.ScrollOffset = 0

	case TransactionError:
		s.logger.Warn("navigation failed", "url", urlString(ev.URL), "error", ev.Err)
		s.state.Loading = false
		s.state.Mode = ModeNormal
		s.state.Input = ""
		s.state.Err = errorMessage(ev.Err)
		var gerr *gemini.Error
		if errors.As(ev.Err, &gerr) && gerr.Code != "" {
			s.state.Status = gerr.Code
		}
	}

	s.renderLocked()
	return true
}

// Navigate requests target, qualified against the current document.
func (s *Session) Navigate(target string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requestLocked(target)
	s.renderLocked()
}

// requestLocked marks the session loading and starts one transaction
// goroutine that reports back through the event channel.
func (s *Session) requestLocked(target string) {
	u, err := s.qualifyLocked(target)
	if err != nil {
		s.state.Err = errorMessage(err)
		return
	}
	if s.transact == nil {
		s.state.Err = "no transport configured"
		return
	}

	s.logger.Info("navigating", "url", u.String())
	s.state.Loading = true
	s.state.Err = ""

	transact := s.transact
	go func() {
		resp, err := transact(context.Background(), u)
		if err != nil {
			s.emit(TransactionError{Err: err, URL: u})
			return
		}
		final := resp.URL
		if final == nil {
			final = u
		}
		s.emit(TransactionComplete{Response: resp, URL: final})
	}()
}

func (s *Session) qualifyLocked(target string) (*url.URL, error) {
	if s.state.URL == nil {
		return gemini.ParseURL(target)
	}
	return gemini.Qualify(s.state.URL, target)
}

// Refresh re-renders after the screen size changed, keeping the active
// line in view.
func (s *Session) Refresh() {
	s.mu.Lock()
	defer s.mu.Unlock()

	width, height := s.screen.Size()
	s.state.ScrollOffset = viewport.KeepVisible(s.state.Lines(), s.state.ActiveLine, s.state.ScrollOffset, width, height-1)
	s.renderLocked()
}

// SetSpinnerFrame updates the loading indicator. It only repaints while a
// transaction is outstanding.
func (s *Session) SetSpinnerFrame(frame string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.spinner = frame
	if s.state.Loading {
		s.renderLocked()
	}
}

// Mode returns the current mode.
func (s *Session) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Mode
}

// Snapshot returns a copy of the state.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state
	if s.state.URL != nil {
		u := *s.state.URL
		st.URL = &u
	}
	return st
}

func (s *Session) renderLocked() {
	s.state.ActiveRow = viewport.Render(
		s.screen,
		s.theme,
		s.state.Lines(),
		s.state.ActiveLine,
		s.state.ScrollOffset,
		s.statusLineLocked(),
	)
}

func (s *Session) statusLineLocked() viewport.StatusLine {
	status := viewport.StatusLine{
		Code:    s.state.Status,
		URL:     urlString(s.state.URL),
		Error:   s.state.Err,
		Input:   s.state.Input,
		Loading: s.state.Loading,
		Spinner: s.spinner,
	}
	switch s.state.Mode {
	case ModeInput:
		status.Prompt = ":"
	case ModeSearch:
		status.Prompt = "/"
	}
	return status
}

// errorMessage formats err for the status line without the URL, which the
// error replaces.
func errorMessage(err error) string {
	var gerr *gemini.Error
	if errors.As(err, &gerr) {
		short := *gerr
		short.URL = ""
		return short.Error()
	}
	return err.Error()
}

func urlString(u *url.URL) string {
	if u == nil {
		return ""
	}
	return u.String()
}
