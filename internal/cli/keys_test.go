package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/studiowebux/gemcli/internal/keybinds"
)

func TestListKeys(t *testing.T) {
	var out bytes.Buffer
	if err := ListKeys(&out, keybinds.NewDefaultRegistry()); err != nil {
		t.Fatalf("ListKeys() unexpected error: %v", err)
	}

	text := out.String()
	if strings.Count(text, "quit_force") != 1 {
		t.Errorf("Global bindings should be listed once:\n%s", text)
	}

	for _, want := range [][]string{
		{"global", "ctrl+c", "quit_force"},
		{"normal", "gg", "go_to_top"},
		{"input", "tab", "complete"},
		{"search", "esc", "text_cancel"},
	} {
		found := false
		for _, line := range strings.Split(text, "\n") {
			if strings.Join(strings.Fields(line), " ") == strings.Join(want, " ") {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("Missing row %q in:\n%s", want, text)
		}
	}
}
