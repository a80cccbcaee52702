// Package session persists CLI sessions between runs: for every backend
// target (a server URL, or "local") the last session token and the last
// observed store version, plus which target was used most recently.
//
// Storage is a local SQLite database migrated with goose on open.
package session
