package keybinds

// NewDefaultRegistry creates a registry with all default keybindings
func NewDefaultRegistry() *Registry {
	r := NewRegistry()

	registerGlobalBindings(r)
	registerNormalModeBindings(r)
	registerTextInputBindings(r, ContextInput)
	registerTextInputBindings(r, ContextSearch)

	return r
}

// registerGlobalBindings sets up bindings available in all modes
func registerGlobalBindings(r *Registry) {
	r.Register(ContextGlobal, "ctrl+c", ActionQuitForce)
}

// registerNormalModeBindings sets up keybindings for browsing
func registerNormalModeBindings(r *Registry) {
	r.Register(ContextNormal, "q", ActionQuit)

	r.RegisterMultiple(ContextNormal, []string{"up", "k"}, ActionNavigateUp)
	r.RegisterMultiple(ContextNormal, []string{"down", "j"}, ActionNavigateDown)
	r.Register(ContextNormal, "home", ActionGoToTop)
	r.Register(ContextNormal, "end", ActionGoToBottom)
	r.Register(ContextNormal, "g", ActionGoToTopPrepare)
	r.Register(ContextNormal, "gg", ActionGoToTop)
	r.Register(ContextNormal, "G", ActionGoToBottom)

	r.Register(ContextNormal, "enter", ActionFollowLink)
	r.Register(ContextNormal, ":", ActionBeginInput)
	r.Register(ContextNormal, "/", ActionBeginSearch)
	r.Register(ContextNormal, "r", ActionReload)
	r.Register(ContextNormal, "y", ActionYank)
}

// registerTextInputBindings sets up line editing for an input context
func registerTextInputBindings(r *Registry, context Context) {
	r.Register(context, "backspace", ActionTextBackspace)
	r.Register(context, "ctrl+w", ActionTextDeleteWord)
	r.Register(context, "ctrl+u", ActionTextClear)
	r.Register(context, "enter", ActionTextSubmit)
	r.Register(context, "esc", ActionTextCancel)
	r.Register(context, "up", ActionHistoryPrevious)
	r.Register(context, "down", ActionHistoryNext)
	r.Register(context, "tab", ActionComplete)
}
