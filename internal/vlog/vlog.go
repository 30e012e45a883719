// Package vlog gives the core engine a single structured logger that a host
// (CLI, test, library caller) can override, mirroring how
// dethi-riverbed's cmd/riverbed wires a --verbose flag to a package-level
// logger setter instead of threading a logger through every call.
package vlog

import (
	"log/slog"
	"sync/atomic"
)

var current atomic.Pointer[slog.Logger]

// SetLogger installs l as the logger used by every core component. Passing
// nil restores the slog.Default()-backed fallback.
func SetLogger(l *slog.Logger) {
	current.Store(l)
}

// Logger returns the active logger, falling back to slog.Default.
func Logger() *slog.Logger {
	if l := current.Load(); l != nil {
		return l
	}
	return slog.Default()
}
