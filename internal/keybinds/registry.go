package keybinds

import (
	"sort"
	"strings"
)

// Binding represents a keybinding mapping
type Binding struct {
	Key     string
	Action  Action
	Context Context
}

// Registry manages keybinding mappings and matching. It is not safe for
// concurrent use; the UI goroutine owns it.
type Registry struct {
	// bindings maps context -> key -> action
	bindings map[Context]map[string]Action

	// multiKeyState tracks the pending first key of a sequence per context
	multiKeyState map[Context]string
}

// NewRegistry creates a new keybinding registry
func NewRegistry() *Registry {
	return &Registry{
		bindings:      make(map[Context]map[string]Action),
		multiKeyState: make(map[Context]string),
	}
}

// Register adds a keybinding to the registry
func (r *Registry) Register(context Context, key string, action Action) {
	if r.bindings[context] == nil {
		r.bindings[context] = make(map[string]Action)
	}
	r.bindings[context][key] = action
}

// RegisterMultiple registers multiple keybindings for the same action
func (r *Registry) RegisterMultiple(context Context, keys []string, action Action) {
	for _, key := range keys {
		r.Register(context, key, action)
	}
}

// Unbind removes every key bound to action in context.
func (r *Registry) Unbind(context Context, action Action) {
	for key, act := range r.bindings[context] {
		if act == action {
			delete(r.bindings[context], key)
		}
	}
}

// Match attempts to match a key to an action in the given context.
// The specific context is checked before global.
func (r *Registry) Match(context Context, key string) (Action, bool) {
	if action, ok := r.bindings[context][key]; ok {
		return action, true
	}
	if action, ok := r.bindings[ContextGlobal][key]; ok {
		return action, true
	}
	return "", false
}

// MatchMultiKey handles multi-key sequences like 'gg' for go-to-top.
// Returns the action, whether it's a complete match, and whether it's a
// partial match waiting for the next key.
func (r *Registry) MatchMultiKey(context Context, key string) (Action, bool, bool) {
	if prevKey, hasPending := r.multiKeyState[context]; hasPending {
		delete(r.multiKeyState, context)

		if action, ok := r.Match(context, prevKey+key); ok {
			return action, true, false
		}
		// Broken sequence: the new key stands on its own
		return r.MatchMultiKey(context, key)
	}

	if r.startsSequence(context, key) {
		r.multiKeyState[context] = key
		return "", false, true
	}

	action, ok := r.Match(context, key)
	return action, ok, false
}

// ClearMultiKeyState clears any pending multi-key state for a context
func (r *Registry) ClearMultiKeyState(context Context) {
	delete(r.multiKeyState, context)
}

func (r *Registry) startsSequence(context Context, key string) bool {
	if len(key) != 1 {
		return false
	}
	for bound := range r.bindings[context] {
		if isSequence(bound) && strings.HasPrefix(bound, key) {
			return true
		}
	}
	return false
}

// isSequence reports whether key is a plain multi-key sequence such as
// "gg", as opposed to a named key like "enter" or a modifier combination.
func isSequence(key string) bool {
	if len(key) < 2 || strings.Contains(key, "+") {
		return false
	}
	for i := 1; i < len(key); i++ {
		if key[i] != key[0] {
			return false
		}
	}
	return true
}

// GetBinding returns the key(s) bound to an action in a context, sorted
func (r *Registry) GetBinding(context Context, action Action) []string {
	var keys []string
	for key, act := range r.bindings[context] {
		if act == action {
			keys = append(keys, key)
		}
	}
	if len(keys) == 0 {
		for key, act := range r.bindings[ContextGlobal] {
			if act == action {
				keys = append(keys, key)
			}
		}
	}
	sort.Strings(keys)
	return keys
}

// ListBindings returns the bindings of a context followed by the global
// ones, sorted by key within each group
func (r *Registry) ListBindings(context Context) []Binding {
	var bindings []Binding
	for _, ctx := range []Context{context, ContextGlobal} {
		var group []Binding
		for key, action := range r.bindings[ctx] {
			group = append(group, Binding{Key: key, Action: action, Context: ctx})
		}
		sort.Slice(group, func(i, j int) bool { return group[i].Key < group[j].Key })
		bindings = append(bindings, group...)
		if context == ContextGlobal {
			break
		}
	}
	return bindings
}

// Contexts returns every context that has bindings, sorted
func (r *Registry) Contexts() []Context {
	contexts := make([]Context, 0, len(r.bindings))
	for ctx := range r.bindings {
		contexts = append(contexts, ctx)
	}
	sort.Slice(contexts, func(i, j int) bool { return contexts[i] < contexts[j] })
	return contexts
}
