// Package timeouts provides the bounded deadlines used around storage and
// directory calls. A lifecycle operation that runs past its deadline is
// reported as a failed operation instead of hanging the client.
//
// Guidelines:
//   - Ping: health checks
//   - Read: single-group loads and directory searches
//   - Operation: one full lifecycle operation (validate, load, commit)
package timeouts

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Defaults used until Configure is called.
const (
	DefaultPing      = 2 * time.Second
	DefaultRead      = 5 * time.Second
	DefaultOperation = 10 * time.Second
)

var (
	mu        sync.RWMutex
	ping      = DefaultPing
	read      = DefaultRead
	operation = DefaultOperation
)

// Ping returns the timeout for connectivity checks.
func Ping() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return ping
}

// Read returns the timeout for single reads and searches.
func Read() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return read
}

// Operation returns the timeout for one lifecycle operation.
func Operation() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return operation
}

// Config holds timeout overrides. Zero values keep the current value.
type Config struct {
	Ping      time.Duration
	Read      time.Duration
	Operation time.Duration
}

// Configure applies overrides. Call it during startup.
func Configure(cfg Config) {
	mu.Lock()
	defer mu.Unlock()
	if cfg.Ping > 0 {
		ping = cfg.Ping
	}
	if cfg.Read > 0 {
		read = cfg.Read
	}
	if cfg.Operation > 0 {
		operation = cfg.Operation
	}
}

// Reset restores the defaults. Useful for testing.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	ping = DefaultPing
	read = DefaultRead
	operation = DefaultOperation
}

// WithTimeout creates a context with timeout and returns a cancel function
// that logs a warning if the deadline was hit.
//
//	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Operation(), log, "invite member")
//	defer cancel()
func WithTimeout(parent context.Context, timeout time.Duration, log *zap.Logger, op string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(parent, timeout)
	return ctx, func() {
		if ctx.Err() == context.DeadlineExceeded && log != nil {
			log.Warn("operation timed out",
				zap.String("operation", op),
				zap.Duration("timeout", timeout),
			)
		}
		cancel()
	}
}
