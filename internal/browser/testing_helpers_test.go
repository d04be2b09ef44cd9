package browser

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/studiowebux/gemcli/internal/gemini"
	"github.com/studiowebux/gemcli/internal/history"
	"github.com/studiowebux/gemcli/internal/keybinds"
	"github.com/studiowebux/gemcli/internal/viewport"
)

// fakeTransport answers from a map and records every requested URL. A URL
// with a gate blocks until the gate is closed.
type fakeTransport struct {
	mu        sync.Mutex
	pages     map[string]string
	failures  map[string]error
	gates     map[string]chan struct{}
	requested []string
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		pages:    make(map[string]string),
		failures: make(map[string]error),
		gates:    make(map[string]chan struct{}),
	}
}

func (f *fakeTransport) gate(raw string) chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan struct{})
	f.gates[raw] = ch
	return ch
}

func (f *fakeTransport) Requested() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.requested...)
}

func (f *fakeTransport) Transact(ctx context.Context, u *url.URL) (*gemini.Response, error) {
	f.mu.Lock()
	raw := u.String()
	f.requested = append(f.requested, raw)
	gate := f.gates[raw]
	body, ok := f.pages[raw]
	failure := f.failures[raw]
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if failure != nil {
		return nil, failure
	}
	if !ok {
		return nil, &gemini.Error{Kind: gemini.KindPermanentFailure, Code: "51", Meta: "Not found", URL: raw}
	}
	return &gemini.Response{
		URL:    u,
		Status: gemini.Status{Class: gemini.ClassSuccess, Code: "20", Meta: "text/gemini"},
		Body:   body,
	}, nil
}

type testSession struct {
	*Session
	canvas    *viewport.Canvas
	transport *fakeTransport
	copied    []string
}

func newTestSession(t *testing.T, width, height int) *testSession {
	t.Helper()
	ts := &testSession{
		canvas:    viewport.NewCanvas(width, height),
		transport: newFakeTransport(),
	}
	ts.Session = NewSession(Options{
		Transact:    ts.transport.Transact,
		Screen:      ts.canvas,
		Theme:       viewport.NewTheme("dark"),
		History:     history.New(nil),
		HistoryPath: t.TempDir() + "/history.txt",
		Clipboard: func(text string) error {
			ts.copied = append(ts.copied, text)
			return nil
		},
	})
	return ts
}

// load applies a completed transaction directly, bypassing the worker loop.
func (ts *testSession) load(t *testing.T, raw, body string) {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("failed to parse %q: %v", raw, err)
	}
	ts.apply(TransactionComplete{
		URL:      u,
		Response: &gemini.Response{URL: u, Status: gemini.Status{Class: gemini.ClassSuccess, Code: "20"}, Body: body},
	})
}

// next receives the next event emitted by a transaction goroutine.
func (ts *testSession) next(t *testing.T) Event {
	t.Helper()
	select {
	case ev := <-ts.events:
		return ev
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for event")
		return nil
	}
}

func (ts *testSession) press(actions ...keybinds.Action) {
	for _, a := range actions {
		ts.HandleKey(Key{Action: a})
	}
}

func (ts *testSession) typeText(text string) {
	for _, r := range text {
		ts.HandleKey(Key{Action: keybinds.ActionTextInsertChar, Runes: []rune{r}})
	}
}

func (ts *testSession) statusRow() string {
	rows := ts.canvas.PlainRows()
	return rows[len(rows)-1]
}

// waitFor polls the state until cond holds.
func waitFor(t *testing.T, s *Session, cond func(State) bool) State {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for {
		st := s.Snapshot()
		if cond(st) {
			return st
		}
		if time.Now().After(deadline) {
			t.Fatalf("condition not met, state: %+v", st)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func numberedDocument(n int) string {
	var sb strings.Builder
	for i := 0; i < n; i++ {
		fmt.Fprintf(&sb, "line %d\n", i)
	}
	return sb.String()
}
