package commands

import (
	"context"
	"time"

	"github.com/goliatone/go-tagfeed/internal/logging"
	"github.com/goliatone/go-tagfeed/pkg/interfaces"
)

// DefaultCommandTimeout bounds a single command execution. A full site build
// renders every page and feed, so the bound is generous.
const DefaultCommandTimeout = 5 * time.Minute

// commandContext derives the execution context. A nil parent is treated as
// context.Background and a non-positive timeout leaves the deadline unset.
func commandContext(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	if timeout <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, timeout)
}

// EnsureLogger returns a usable logger, defaulting to a no-op logger when nil.
func EnsureLogger(logger interfaces.Logger) interfaces.Logger {
	return logging.Ensure(logger)
}
