package browser

import (
	"context"
	"errors"
	"net/url"
	"os"
	"strings"
	"testing"

	"github.com/studiowebux/gemcli/internal/gemini"
	"github.com/studiowebux/gemcli/internal/keybinds"
)

func runSession(t *testing.T, ts *testSession) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	go ts.Run(ctx)
	t.Cleanup(func() {
		cancel()
		<-ts.Done()
	})
}

func TestSession_NavigateComplete(t *testing.T) {
	ts := newTestSession(t, 40, 10)
	ts.transport.pages["gemini://x.example/"] = "# Welcome\n=> /about About\n"
	runSession(t, ts)

	ts.Navigate("x.example/")

	st := waitFor(t, ts.Session, func(st State) bool { return !st.Loading && st.Document != "" })
	if st.URL.String() != "gemini://x.example/" {
		t.Errorf("URL = %q", st.URL)
	}
	if st.Status != "20" || st.ActiveLine != 0 || st.Mode != ModeNormal || st.Err != "" {
		t.Errorf("Unexpected state %+v", st)
	}

	rows := ts.canvas.PlainRows()
	if rows[0] != "# Welcome" || rows[1] != "=> About /about" {
		t.Errorf("Unexpected screen %q", rows)
	}
	if ts.statusRow() != "20 gemini://x.example/" {
		t.Errorf("status row = %q", ts.statusRow())
	}
}

func TestSession_LoadingReplacesStatusLine(t *testing.T) {
	ts := newTestSession(t, 40, 10)
	gate := ts.transport.gate("gemini://slow.example/")
	ts.transport.pages["gemini://slow.example/"] = "done"

	ts.Navigate("gemini://slow.example/")
	ts.SetSpinnerFrame("*")

	if !ts.Snapshot().Loading {
		t.Fatal("Expected loading state")
	}
	if got := ts.statusRow(); got != "* Loading gemini://slow.example/" {
		t.Errorf("status row while loading = %q", got)
	}

	close(gate)
	ts.apply(ts.next(t))

	if ts.Snapshot().Loading {
		t.Error("Expected loading to end")
	}
}

func TestSession_ErrorKeepsDocument(t *testing.T) {
	ts := newTestSession(t, 40, 10)
	ts.load(t, "gemini://x.example/", "first page\n=> /missing Missing\n")
	ts.press(keybinds.ActionNavigateDown, keybinds.ActionFollowLink)

	ev := ts.next(t)
	terr, ok := ev.(TransactionError)
	if !ok {
		t.Fatalf("Expected TransactionError, got %T", ev)
	}
	if terr.URL.String() != "gemini://x.example/missing" {
		t.Errorf("Error URL = %q", terr.URL)
	}
	ts.apply(ev)

	st := ts.Snapshot()
	if st.Document != "first page\n=> /missing Missing\n" {
		t.Errorf("Document was replaced: %q", st.Document)
	}
	if st.Loading || st.Mode != ModeNormal {
		t.Errorf("Unexpected state %+v", st)
	}
	if st.Err != "51 Not found" || st.Status != "51" {
		t.Errorf("Err = %q, Status = %q", st.Err, st.Status)
	}
	if ts.statusRow() != "51 51 Not found" {
		t.Errorf("status row = %q", ts.statusRow())
	}

	// Any render-affecting key clears the error.
	ts.press(keybinds.ActionNavigateUp)
	if st := ts.Snapshot(); st.Err != "" {
		t.Errorf("Expected error to clear, got %q", st.Err)
	}
}

func TestSession_LastProcessedWins(t *testing.T) {
	ts := newTestSession(t, 40, 10)
	ts.transport.pages["gemini://x.example/a"] = "page A"
	ts.transport.pages["gemini://x.example/b"] = "page B"
	gateA := ts.transport.gate("gemini://x.example/a")
	gateB := ts.transport.gate("gemini://x.example/b")
	runSession(t, ts)

	ts.Navigate("gemini://x.example/a")
	ts.Navigate("gemini://x.example/b")

	close(gateB)
	waitFor(t, ts.Session, func(st State) bool { return st.Document == "page B" })

	close(gateA)
	st := waitFor(t, ts.Session, func(st State) bool { return st.Document == "page A" })

	if st.URL.String() != "gemini://x.example/a" {
		t.Errorf("URL = %q, want the last processed response", st.URL)
	}
}

func TestSession_EventsAfterTerminateAreDiscarded(t *testing.T) {
	ts := newTestSession(t, 40, 10)
	ts.load(t, "gemini://x.example/", "before")

	go ts.Run(context.Background())
	ts.Terminate()
	<-ts.Done()

	u, _ := url.Parse("gemini://x.example/late")
	for i := 0; i < defaultEventBuffer+2; i++ {
		ts.emit(TransactionComplete{URL: u, Response: &gemini.Response{URL: u, Body: "late"}})
	}

	if st := ts.Snapshot(); st.Document != "before" {
		t.Errorf("State changed after shutdown: %q", st.Document)
	}

	// Terminate is idempotent.
	ts.Terminate()
}

func TestSession_RunStopsOnContext(t *testing.T) {
	ts := newTestSession(t, 40, 10)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := ts.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Run() = %v, want context.Canceled", err)
	}
}

func TestSession_ScrollDownSingleRows(t *testing.T) {
	const height = 10
	ts := newTestSession(t, 40, height)
	ts.load(t, "gemini://x.example/", numberedDocument(height+5))

	for i := 0; i < height-2; i++ {
		ts.press(keybinds.ActionNavigateDown)
	}
	st := ts.Snapshot()
	if st.ActiveLine != height-2 || st.ScrollOffset != 0 || st.ActiveRow != height-2 {
		t.Fatalf("At last visible row: %+v", st)
	}

	ts.press(keybinds.ActionNavigateDown)
	st = ts.Snapshot()
	if st.ScrollOffset != 1 {
		t.Errorf("ScrollOffset = %d, want 1", st.ScrollOffset)
	}
	if st.ActiveRow != height-2 {
		t.Errorf("ActiveRow = %d, want %d", st.ActiveRow, height-2)
	}

	rows := ts.canvas.PlainRows()
	if rows[0] != "line 1" || rows[height-2] != "line 9" {
		t.Errorf("Unexpected rows %q", rows)
	}
}

func TestSession_ScrollDownRevealsWrappedLine(t *testing.T) {
	ts := newTestSession(t, 5, 6)
	// Five content rows. The fifth line wraps to three rows.
	doc := "a\nb\nc\nd\naaaa bbbb cccc\ne\n"
	ts.load(t, "gemini://x.example/", doc)

	ts.press(keybinds.ActionNavigateDown, keybinds.ActionNavigateDown, keybinds.ActionNavigateDown)
	if st := ts.Snapshot(); st.ScrollOffset != 0 || st.ActiveRow != 3 {
		t.Fatalf("Before reveal: %+v", st)
	}

	ts.press(keybinds.ActionNavigateDown)
	st := ts.Snapshot()
	if st.ScrollOffset != 3 {
		t.Errorf("ScrollOffset = %d, want the 3 rows of the revealed line", st.ScrollOffset)
	}
	if st.ActiveRow != 1 {
		t.Errorf("ActiveRow = %d, want 1", st.ActiveRow)
	}
	if rows := ts.canvas.PlainRows(); rows[1] != "aaaa" || rows[3] != "cccc" {
		t.Errorf("Unexpected rows %q", rows)
	}

	ts.press(keybinds.ActionNavigateUp, keybinds.ActionNavigateUp)
	st = ts.Snapshot()
	if st.ActiveLine != 2 || st.ScrollOffset != 2 || st.ActiveRow != 0 {
		t.Errorf("After scrolling up: %+v", st)
	}
}

func TestSession_ScrollUpClampsAtTop(t *testing.T) {
	ts := newTestSession(t, 40, 5)
	ts.load(t, "gemini://x.example/", numberedDocument(20))

	ts.press(keybinds.ActionNavigateUp)
	if st := ts.Snapshot(); st.ActiveLine != 0 || st.ScrollOffset != 0 {
		t.Errorf("Unexpected state at top: %+v", st)
	}

	for i := 0; i < 10; i++ {
		ts.press(keybinds.ActionNavigateDown)
	}
	for i := 0; i < 10; i++ {
		ts.press(keybinds.ActionNavigateUp)
	}
	if st := ts.Snapshot(); st.ActiveLine != 0 || st.ScrollOffset != 0 || st.ActiveRow != 0 {
		t.Errorf("Unexpected state after round trip: %+v", st)
	}
}

func TestSession_GoToBottomAndTop(t *testing.T) {
	ts := newTestSession(t, 40, 5)
	ts.load(t, "gemini://x.example/", numberedDocument(20))

	ts.press(keybinds.ActionGoToBottom)
	st := ts.Snapshot()
	if st.ActiveLine != 19 || st.ScrollOffset != 16 || st.ActiveRow != 3 {
		t.Errorf("After G: %+v", st)
	}

	ts.press(keybinds.ActionGoToTop)
	st = ts.Snapshot()
	if st.ActiveLine != 0 || st.ScrollOffset != 0 {
		t.Errorf("After gg: %+v", st)
	}
}

func TestSession_RefreshKeepsActiveVisible(t *testing.T) {
	ts := newTestSession(t, 40, 20)
	ts.load(t, "gemini://x.example/", numberedDocument(30))
	for i := 0; i < 15; i++ {
		ts.press(keybinds.ActionNavigateDown)
	}

	ts.canvas.Resize(40, 6)
	ts.Refresh()

	st := ts.Snapshot()
	if st.ActiveRow < 0 || st.ActiveRow > 4 {
		t.Errorf("Active row %d not visible after resize: %+v", st.ActiveRow, st)
	}
}

func TestSession_FollowLinkIgnoredWhileLoading(t *testing.T) {
	ts := newTestSession(t, 40, 10)
	ts.load(t, "gemini://x.example/", "=> /one One\n")
	gate := ts.transport.gate("gemini://x.example/one")
	defer close(gate)

	ts.press(keybinds.ActionFollowLink)
	ts.press(keybinds.ActionFollowLink)

	waitFor(t, ts.Session, func(State) bool { return len(ts.transport.Requested()) == 1 })
	if got := ts.transport.Requested(); len(got) != 1 {
		t.Errorf("Expected exactly one request, got %q", got)
	}
}

func TestSession_FollowLinkOnTextDoesNothing(t *testing.T) {
	ts := newTestSession(t, 40, 10)
	ts.load(t, "gemini://x.example/", "just text\n")

	ts.press(keybinds.ActionFollowLink)

	if st := ts.Snapshot(); st.Loading {
		t.Error("Enter on a text line should not navigate")
	}
}

func TestSession_Reload(t *testing.T) {
	ts := newTestSession(t, 40, 10)
	ts.transport.pages["gemini://x.example/page?q=1"] = "fresh"
	ts.load(t, "gemini://x.example/page?q=1", "stale")

	ts.press(keybinds.ActionReload)
	ts.apply(ts.next(t))

	if st := ts.Snapshot(); st.Document != "fresh" {
		t.Errorf("Document = %q, want fresh", st.Document)
	}
}

func TestSession_Yank(t *testing.T) {
	ts := newTestSession(t, 40, 10)
	ts.load(t, "gemini://x.example/dir/?q=1", "text\n=> next Next\n")

	ts.press(keybinds.ActionYank)
	ts.press(keybinds.ActionNavigateDown, keybinds.ActionYank)

	want := []string{"gemini://x.example/dir/?q=1", "gemini://x.example/dir/next"}
	if strings.Join(ts.copied, " ") != strings.Join(want, " ") {
		t.Errorf("copied = %q, want %q", ts.copied, want)
	}
}

func TestSession_YankFailureShowsError(t *testing.T) {
	ts := newTestSession(t, 40, 10)
	ts.clipboard = func(string) error { return errors.New("no display") }
	ts.load(t, "gemini://x.example/", "text")

	ts.press(keybinds.ActionYank)

	if st := ts.Snapshot(); st.Err != "Copy failed: no display" {
		t.Errorf("Err = %q", st.Err)
	}
}

func TestSession_QuitFlushesHistory(t *testing.T) {
	ts := newTestSession(t, 40, 10)
	go ts.Run(context.Background())

	ts.press(keybinds.ActionBeginInput)
	ts.typeText("bogus")
	ts.press(keybinds.ActionTextSubmit)
	ts.press(keybinds.ActionBeginInput)
	ts.typeText("q")

	if quit := ts.HandleKey(Key{Action: keybinds.ActionTextSubmit}); !quit {
		t.Fatal("Expected :q to quit")
	}
	<-ts.Done()

	data, err := os.ReadFile(ts.historyPath)
	if err != nil {
		t.Fatalf("Failed to read history: %v", err)
	}
	if string(data) != "bogus\nq\n" {
		t.Errorf("history file = %q", string(data))
	}
}

func TestSession_HistoryWrittenWithoutLock(t *testing.T) {
	ts := newTestSession(t, 40, 10)

	var written []string
	lockFree := false
	ts.appendHistory = func(path string, entries []string) error {
		if ts.mu.TryLock() {
			lockFree = true
			ts.mu.Unlock()
		}
		written = entries
		return nil
	}

	ts.press(keybinds.ActionBeginInput)
	ts.typeText("bogus")
	ts.press(keybinds.ActionTextSubmit)
	ts.Terminate()

	if !lockFree {
		t.Error("history was written while the session lock was held")
	}
	if len(written) != 1 || written[0] != "bogus" {
		t.Errorf("written = %q, want [\"bogus\"]", written)
	}
}

func TestSession_QuitKeys(t *testing.T) {
	tests := []struct {
		name string
		mode keybinds.Action
		key  keybinds.Action
		want bool
	}{
		{"q in normal mode", "", keybinds.ActionQuit, true},
		{"ctrl+c in normal mode", "", keybinds.ActionQuitForce, true},
		{"ctrl+c in input mode", keybinds.ActionBeginInput, keybinds.ActionQuitForce, true},
		{"quit action ignored in input mode", keybinds.ActionBeginInput, keybinds.ActionQuit, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestSession(t, 40, 10)
			if tt.mode != "" {
				ts.press(tt.mode)
			}
			if got := ts.HandleKey(Key{Action: tt.key}); got != tt.want {
				t.Errorf("HandleKey() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSession_QuitWhileLoading(t *testing.T) {
	ts := newTestSession(t, 40, 10)
	gate := ts.transport.gate("gemini://x.example/")
	go ts.Run(context.Background())

	ts.Navigate("gemini://x.example/")
	if !ts.HandleKey(Key{Action: keybinds.ActionQuit}) {
		t.Fatal("Expected q to quit while loading")
	}
	<-ts.Done()

	// The abandoned transaction finishes after shutdown.
	close(gate)
	if st := ts.Snapshot(); st.Document != "" || !st.Loading {
		t.Errorf("State should be frozen at shutdown: %+v", st)
	}
}
