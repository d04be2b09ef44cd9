package keybinds

import (
	"reflect"
	"testing"
)

func TestRegistry_MatchPrefersContext(t *testing.T) {
	r := NewRegistry()
	r.Register(ContextGlobal, "q", ActionQuitForce)
	r.Register(ContextNormal, "q", ActionQuit)

	if action, ok := r.Match(ContextNormal, "q"); !ok || action != ActionQuit {
		t.Errorf("Match(normal, q) = %v, %v", action, ok)
	}
	if action, ok := r.Match(ContextInput, "q"); !ok || action != ActionQuitForce {
		t.Errorf("Match(input, q) = %v, %v; expected global fallback", action, ok)
	}
	if _, ok := r.Match(ContextInput, "z"); ok {
		t.Error("Expected no match for unbound key")
	}
}

func TestRegistry_MatchMultiKey(t *testing.T) {
	r := NewDefaultRegistry()

	action, complete, partial := r.MatchMultiKey(ContextNormal, "g")
	if action != "" || complete || !partial {
		t.Fatalf("First g: got %v, %v, %v; want partial", action, complete, partial)
	}

	action, complete, partial = r.MatchMultiKey(ContextNormal, "g")
	if action != ActionGoToTop || !complete || partial {
		t.Errorf("Second g: got %v, %v, %v; want go_to_top", action, complete, partial)
	}

	action, complete, _ = r.MatchMultiKey(ContextNormal, "G")
	if action != ActionGoToBottom || !complete {
		t.Errorf("G: got %v, %v; want go_to_bottom", action, complete)
	}
}

func TestRegistry_MatchMultiKey_BrokenSequence(t *testing.T) {
	r := NewDefaultRegistry()

	r.MatchMultiKey(ContextNormal, "g")
	action, complete, partial := r.MatchMultiKey(ContextNormal, "j")
	if action != ActionNavigateDown || !complete || partial {
		t.Errorf("g then j: got %v, %v, %v; want navigate_down", action, complete, partial)
	}

	r.MatchMultiKey(ContextNormal, "g")
	r.ClearMultiKeyState(ContextNormal)
	if action, _, _ := r.MatchMultiKey(ContextNormal, "y"); action != ActionYank {
		t.Errorf("After clear, y = %v; want yank", action)
	}
}

func TestRegistry_UnbindAndGetBinding(t *testing.T) {
	r := NewDefaultRegistry()

	if got := r.GetBinding(ContextNormal, ActionNavigateDown); !reflect.DeepEqual(got, []string{"down", "j"}) {
		t.Errorf("GetBinding(navigate_down) = %v", got)
	}

	r.Unbind(ContextNormal, ActionNavigateDown)
	if got := r.GetBinding(ContextNormal, ActionNavigateDown); len(got) != 0 {
		t.Errorf("Expected no keys after Unbind, got %v", got)
	}

	if got := r.GetBinding(ContextInput, ActionQuitForce); !reflect.DeepEqual(got, []string{"ctrl+c"}) {
		t.Errorf("Expected global fallback for quit_force, got %v", got)
	}
}

func TestRegistry_ListBindings(t *testing.T) {
	r := NewRegistry()
	r.Register(ContextGlobal, "ctrl+c", ActionQuitForce)
	r.Register(ContextInput, "tab", ActionComplete)
	r.Register(ContextInput, "enter", ActionTextSubmit)

	got := r.ListBindings(ContextInput)
	want := []Binding{
		{Key: "enter", Action: ActionTextSubmit, Context: ContextInput},
		{Key: "tab", Action: ActionComplete, Context: ContextInput},
		{Key: "ctrl+c", Action: ActionQuitForce, Context: ContextGlobal},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ListBindings() = %+v, want %+v", got, want)
	}

	if got := r.ListBindings(ContextGlobal); len(got) != 1 {
		t.Errorf("ListBindings(global) returned %d bindings, want 1", len(got))
	}
}

func TestDefaultRegistry_InputContexts(t *testing.T) {
	r := NewDefaultRegistry()

	for _, ctx := range []Context{ContextInput, ContextSearch} {
		for key, want := range map[string]Action{
			"ctrl+w":    ActionTextDeleteWord,
			"backspace": ActionTextBackspace,
			"enter":     ActionTextSubmit,
			"esc":       ActionTextCancel,
			"tab":       ActionComplete,
		} {
			if got, ok := r.Match(ctx, key); !ok || got != want {
				t.Errorf("Match(%s, %s) = %v, want %v", ctx, key, got, want)
			}
		}
	}

	if got := r.Contexts(); !reflect.DeepEqual(got, []Context{ContextGlobal, ContextInput, ContextNormal, ContextSearch}) {
		t.Errorf("Contexts() = %v", got)
	}
}
