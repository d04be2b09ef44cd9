package keybinds

// Action represents a user action that can be triggered by a keybinding
type Action string

// Context represents the context in which keybindings are active
type Context string

const (
	ContextGlobal Context = "global" // Available everywhere
	ContextNormal Context = "normal" // Browsing a document
	ContextInput  Context = "input"  // Command line after ':'
	ContextSearch Context = "search" // Search line after '/'
)

const (
	// Global actions
	ActionQuit      Action = "quit"       // Quit from normal mode
	ActionQuitForce Action = "quit_force" // Quit from any mode (ctrl+c)

	// Navigation actions
	ActionNavigateUp     Action = "navigate_up"
	ActionNavigateDown   Action = "navigate_down"
	ActionGoToTop        Action = "go_to_top"
	ActionGoToBottom     Action = "go_to_bottom"
	ActionGoToTopPrepare Action = "go_to_top_prepare" // First 'g' in 'gg' sequence

	// Document actions
	ActionFollowLink  Action = "follow_link"
	ActionBeginInput  Action = "begin_input"
	ActionBeginSearch Action = "begin_search"
	ActionReload      Action = "reload"
	ActionYank        Action = "yank"

	// Text input actions
	ActionTextInsertChar  Action = "text_insert_char" // Not bound; printable keys
	ActionTextBackspace   Action = "text_backspace"
	ActionTextDeleteWord  Action = "text_delete_word"
	ActionTextClear       Action = "text_clear"
	ActionTextSubmit      Action = "text_submit"
	ActionTextCancel      Action = "text_cancel"
	ActionHistoryPrevious Action = "history_previous"
	ActionHistoryNext     Action = "history_next"
	ActionComplete        Action = "complete"
)

// KnownActions lists every action a config file may bind.
var KnownActions = map[Action]bool{
	ActionQuit:            true,
	ActionQuitForce:       true,
	ActionNavigateUp:      true,
	ActionNavigateDown:    true,
	ActionGoToTop:         true,
	ActionGoToBottom:      true,
	ActionGoToTopPrepare:  true,
	ActionFollowLink:      true,
	ActionBeginInput:      true,
	ActionBeginSearch:     true,
	ActionReload:          true,
	ActionYank:            true,
	ActionTextBackspace:   true,
	ActionTextDeleteWord:  true,
	ActionTextClear:       true,
	ActionTextSubmit:      true,
	ActionTextCancel:      true,
	ActionHistoryPrevious: true,
	ActionHistoryNext:     true,
	ActionComplete:        true,
}
