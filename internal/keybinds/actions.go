// Package keybinds maps terminal key presses to reader actions. Defaults can
// be overridden per context from a keybinds.json file in the config dir.
package keybinds

// Action represents a user action that can be triggered by a keybinding
type Action string

// Context represents the context in which keybindings are active
type Context string

const (
	ContextGlobal  Context = "global"  // Available everywhere
	ContextNav     Context = "nav"     // Navigation sidebar
	ContextViewer  Context = "viewer"  // Endpoint pane
	ContextSearch  Context = "search"  // Search input
	ContextJump    Context = "jump"    // Quick-jump input
	ContextPicker  Context = "picker"  // Environment picker
	ContextHelp    Context = "help"    // Help overlay
	ContextConfirm Context = "confirm" // Try-it-out confirmation
)

const (
	ActionQuit      Action = "quit"
	ActionQuitForce Action = "quit_force"

	ActionNavigateUp   Action = "navigate_up"
	ActionNavigateDown Action = "navigate_down"
	ActionPageUp       Action = "page_up"
	ActionPageDown     Action = "page_down"
	ActionGoToTop      Action = "go_to_top"
	ActionGoToBottom   Action = "go_to_bottom"
	ActionGoToTopStart Action = "go_to_top_prepare" // first 'g' of 'gg'

	ActionSwitchFocus Action = "switch_focus"
	ActionSelect      Action = "select"
	ActionClear       Action = "clear_selection"

	ActionOpenSearch Action = "open_search"
	ActionOpenJump   Action = "open_jump"
	ActionOpenEnv    Action = "open_environments"
	ActionOpenHelp   Action = "open_help"

	ActionNextSample Action = "next_sample"
	ActionPrevSample Action = "prev_sample"
	ActionCopySample Action = "copy_sample"
	ActionCopyURL    Action = "copy_url"
	ActionTry        Action = "try_request"
	ActionReload     Action = "reload"

	ActionSubmit Action = "submit"
	ActionCancel Action = "cancel"
)

// knownActions is used to reject typos in keybinds.json
var knownActions = map[Action]bool{
	ActionQuit: true, ActionQuitForce: true,
	ActionNavigateUp: true, ActionNavigateDown: true,
	ActionPageUp: true, ActionPageDown: true,
	ActionGoToTop: true, ActionGoToBottom: true, ActionGoToTopStart: true,
	ActionSwitchFocus: true, ActionSelect: true, ActionClear: true,
	ActionOpenSearch: true, ActionOpenJump: true, ActionOpenEnv: true, ActionOpenHelp: true,
	ActionNextSample: true, ActionPrevSample: true,
	ActionCopySample: true, ActionCopyURL: true,
	ActionTry: true, ActionReload: true,
	ActionSubmit: true, ActionCancel: true,
}

// IsKnown reports whether the action exists
func (a Action) IsKnown() bool {
	return knownActions[a]
}

// Contexts lists every context in display order
var Contexts = []Context{
	ContextGlobal, ContextNav, ContextViewer, ContextSearch,
	ContextJump, ContextPicker, ContextHelp, ContextConfirm,
}
