package constants

import "time"

// Context and session keys
const (
	ContextKeyViewID = "view_id"
	ContextKeyView   = "view"
	ContextKeyTask   = "task"
)

// Pagination limits
const (
	MinPageSize     = 1
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// View defaults
const (
	DefaultSearchDebounce  = 300 * time.Millisecond
	DefaultViewIdleTimeout = 30 * time.Minute
)

// Session cookie name
const SessionName = "dashboard_session"
