// Package supervisor implements the process-level restart loop of spec.md
// §4.7/§9: a crash in the account stream or book tick rebuilds every
// in-memory structure from scratch and resubscribes, rather than trying to
// patch whatever state survived. The corpus's own restart-on-crash posture
// (internal/fallback.Mirror.Run, internal/accountstream's runReconnecting)
// always uses a fixed backoff, never exponential — this is the same shape
// one level up, wrapping the whole boot sequence instead of one
// subscription.
package supervisor

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// RestartBackoff is the fixed delay between a crashed run and the next
// rebuild attempt.
const RestartBackoff = 15 * time.Second

// Run invokes build repeatedly until ctx is canceled. build is expected to
// construct every component fresh and block until either ctx is canceled
// (clean shutdown, build should return nil) or something goes wrong (any
// other error, or a panic, triggers a rebuild after RestartBackoff).
//
// The recursive "restart everything" shape spec.md describes is expressed
// here as a bounded loop with a sleep — the recursion itself isn't load
// bearing, only the crash -> wait -> rebuild-from-scratch semantics are.
func Run(ctx context.Context, log *slog.Logger, build func(ctx context.Context) error) {
	for {
		if ctx.Err() != nil {
			return
		}

		err := runOnce(ctx, build)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			log.Error("supervised run exited, rebuilding from scratch", "error", err, "backoff", RestartBackoff)
		} else {
			log.Warn("supervised run returned without error before shutdown, rebuilding from scratch")
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(RestartBackoff):
		}
	}
}

// runOnce isolates a single build attempt so a panic inside it becomes an
// error the caller can log and back off from, instead of taking the whole
// process down.
func runOnce(ctx context.Context, build func(ctx context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return build(ctx)
}
