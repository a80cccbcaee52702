package common

// Header names understood by the store.
const (
	AuthHeaderName       = "X-Auth"
	VersionHeaderName    = "X-Version"
	MinVersionHeaderName = "X-Min-Version"
	RequestIDHeaderName  = "X-Request-Id"
)

// DefaultContentType is sent with every request unless overridden.
const DefaultContentType = "application/json"

// Patterns for identifiers validated on the client before any I/O.
const (
	// VersionPattern matches a store version token (a SHA-256 hex digest).
	VersionPattern = `^[a-f0-9]{64}$`

	// HashPattern matches a line hash accepted by h2n.
	HashPattern = `^[a-f0-9]{64}$`

	// GroupPrefixPattern matches a report group prefix. The empty prefix
	// selects every group.
	GroupPrefixPattern = `^[A-Za-z0-9_-]*$`
)
