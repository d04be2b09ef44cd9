package browser

import (
	"net/url"

	"github.com/studiowebux/gemcli/internal/gemini"
	"github.com/studiowebux/gemcli/internal/gemtext"
)

// Mode selects how keys are interpreted.
type Mode int

const (
	ModeNormal Mode = iota
	ModeInput
	// ModeSearch accepts and records a query but does not search yet.
	ModeSearch
)

func (m Mode) String() string {
	switch m {
	case ModeNormal:
		return "normal"
	case ModeInput:
		return "input"
	case ModeSearch:
		return "search"
	default:
		return "unknown"
	}
}

// State is the navigation state shared by the input loop and the worker
// loop. Session guards it with a single mutex.
type State struct {
	Document     string
	URL          *url.URL
	Status       string
	ActiveLine   int
	ScrollOffset int
	// ActiveRow is where the active line began on the last render,
	// relative to the top of the window.
	ActiveRow int
	Mode      Mode
	Loading   bool
	Input     string
	Err       string
}

// Lines parses the current document.
func (s *State) Lines() []gemtext.Line {
	return gemtext.ParseDocument(s.Document)
}

// Event is delivered to the worker loop. The set is closed.
type Event interface {
	event()
}

// TransactionComplete carries a successful response. URL is where the
// body was served from.
type TransactionComplete struct {
	Response *gemini.Response
	URL      *url.URL
}

// TransactionError carries a failed transaction for URL.
type TransactionError struct {
	Err error
	URL *url.URL
}

// TerminateWorker stops the worker loop.
type TerminateWorker struct{}

func (TransactionComplete) event() {}
func (TransactionError) event()    {}
func (TerminateWorker) event()     {}
