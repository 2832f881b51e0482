// Package session persists the workspace layout, which files were
// loaded and where each one sat, so a later run can restore it. The
// store is SQLite with a flock sidecar guarding against two processes
// sharing one database.
package session
