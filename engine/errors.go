package engine

import "errors"

// Sentinel errors returned by engine components. None of them is fatal to the
// event loop; handlers translate them into corrective outbound messages.
var (
	// ErrNotFound is returned for a message ID that was evicted or never issued,
	// or a user with no recorded history. Callers treat it as a normal outcome.
	ErrNotFound = errors.New("not found")

	// ErrUsage is returned when a command's arguments are missing or malformed.
	ErrUsage = errors.New("invalid usage")

	// ErrUnauthorized is returned when a privileged command is attempted by a
	// nick the authorization predicate rejects.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotAfk is returned when AFK duration is queried for a user who is not AFK.
	ErrNotAfk = errors.New("user is not afk")
)
