// Package api defines public API contracts for tailog.
package api

// Logger is the write side of a tail log. Calls never report failure:
// overflow and oversized records are handled inside the implementation.
type Logger interface {
	Logf(format string, args ...any)
	Log(args ...any)
	// Dump renders the raw buffer for debugging.
	Dump()
}
