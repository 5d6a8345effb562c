package keybinds

// NewDefaultRegistry creates a registry with the reader's default bindings
func NewDefaultRegistry() *Registry {
	r := NewRegistry()

	r.Register(ContextGlobal, "ctrl+c", ActionQuitForce)

	registerMovement(r, ContextNav)
	registerMovement(r, ContextViewer)
	registerMovement(r, ContextPicker)
	registerMovement(r, ContextHelp)

	for _, ctx := range []Context{ContextNav, ContextViewer} {
		r.Register(ctx, "q", ActionQuit)
		r.Register(ctx, "tab", ActionSwitchFocus)
		r.Register(ctx, "/", ActionOpenSearch)
		r.RegisterMultiple(ctx, []string{":", "ctrl+p"}, ActionOpenJump)
		r.Register(ctx, "e", ActionOpenEnv)
		r.Register(ctx, "?", ActionOpenHelp)
		r.RegisterMultiple(ctx, []string{"]", "l"}, ActionNextSample)
		r.RegisterMultiple(ctx, []string{"[", "h"}, ActionPrevSample)
		r.Register(ctx, "c", ActionCopySample)
		r.Register(ctx, "y", ActionCopyURL)
		r.Register(ctx, "t", ActionTry)
		r.Register(ctx, "r", ActionReload)
		r.Register(ctx, "esc", ActionClear)
	}
	r.Register(ContextNav, "enter", ActionSelect)

	for _, ctx := range []Context{ContextSearch, ContextJump, ContextPicker} {
		r.Register(ctx, "enter", ActionSubmit)
		r.Register(ctx, "esc", ActionCancel)
	}
	r.RegisterMultiple(ContextJump, []string{"up", "ctrl+k"}, ActionNavigateUp)
	r.RegisterMultiple(ContextJump, []string{"down", "ctrl+j"}, ActionNavigateDown)

	r.RegisterMultiple(ContextHelp, []string{"esc", "q", "?"}, ActionCancel)

	r.RegisterMultiple(ContextConfirm, []string{"y", "enter"}, ActionSubmit)
	r.RegisterMultiple(ContextConfirm, []string{"n", "esc"}, ActionCancel)

	return r
}

func registerMovement(r *Registry, ctx Context) {
	r.RegisterMultiple(ctx, []string{"up", "k"}, ActionNavigateUp)
	r.RegisterMultiple(ctx, []string{"down", "j"}, ActionNavigateDown)
	r.Register(ctx, "pgup", ActionPageUp)
	r.Register(ctx, "pgdown", ActionPageDown)
	r.Register(ctx, "g", ActionGoToTopStart)
	r.RegisterMultiple(ctx, []string{"gg", "home"}, ActionGoToTop)
	r.RegisterMultiple(ctx, []string{"G", "end"}, ActionGoToBottom)
}
