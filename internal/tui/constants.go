package tui

import "time"

// UI Layout Constants
const (
	SidebarMinWidth      = 30 // Sidebar never gets narrower than this
	SidebarWidthPercent  = 35 // Sidebar share of wide terminals
	NarrowTerminalWidth  = 90 // Below this the sidebar takes half the width
	PanelBorderWidth     = 2  // Width consumed by a rounded border
	MainViewHeightOffset = 3  // Status bar + top and bottom borders
	SidebarHeaderLines   = 2  // Title + environment line
	StatusMaxLength      = 100
	JumpResultsLimit     = 10
)

// MessageTimeout is how long status and error messages stay in the footer
const MessageTimeout = 4 * time.Second

// reloadDebounce groups the burst of events editors emit on save
const reloadDebounce = 150 * time.Millisecond
