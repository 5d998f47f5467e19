// Package listview holds the task list view controller behind the admin
// dashboard: an in-memory working view over a task set with filtering,
// search, debounced search, pagination and modal driven row actions.
//
// A Controller never owns the authoritative copy of the records. It reads
// them from an injected TaskStore and UserStore and writes assignments and
// new users back through the same interfaces. Every state change produces a
// Snapshot that is handed to the registered listeners.
package listview
