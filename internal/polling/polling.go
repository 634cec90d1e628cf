// Package polling implements bounded repeated checking for the result of an
// action whose completion the backend cannot push to the client.
package polling

import (
	"context"
	"errors"
	"time"
)

// Outcome is the terminal result of a confirmation poll. Timing out is not a
// failure; the awaited job may legitimately still be running server-side.
type Outcome int

const (
	// OutcomeConfirmed means the check reported completion.
	OutcomeConfirmed Outcome = iota
	// OutcomeTimedOut means the attempt budget ran out.
	OutcomeTimedOut
	// OutcomeStopped means the poll was canceled or aborted by a permanent
	// check error before completing.
	OutcomeStopped
)

func (o Outcome) String() string {
	switch o {
	case OutcomeConfirmed:
		return "confirmed"
	case OutcomeTimedOut:
		return "timed_out"
	case OutcomeStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// CheckFunc reports whether the awaited event has completed. A returned error
// consumes the attempt and polling continues; wrap it with Permanent to end
// the poll immediately.
type CheckFunc func(ctx context.Context) (bool, error)

// Options bounds a poll by attempt count.
type Options struct {
	Interval time.Duration
	Limit    int
}

type permanentError struct {
	err error
}

func (e permanentError) Error() string { return e.err.Error() }

func (e permanentError) Unwrap() error { return e.err }

// Permanent marks a check error as non-recoverable so the poll stops instead
// of consuming further attempts.
func Permanent(err error) error {
	return permanentError{err: err}
}

// Confirmation is a running poll owned by the caller. The caller must release
// it with Stop (or cancel the parent context) so no timer outlives it.
type Confirmation struct {
	cancel  context.CancelFunc
	done    chan struct{}
	outcome Outcome
	err     error
}

// Start launches a poll invoking check every Interval, at most Limit times.
func Start(ctx context.Context, check CheckFunc, opts Options) *Confirmation {
	if opts.Interval <= 0 {
		opts.Interval = time.Second
	}
	if opts.Limit <= 0 {
		opts.Limit = 1
	}

	runCtx, cancel := context.WithCancel(ctx)
	c := &Confirmation{cancel: cancel, done: make(chan struct{})}
	go c.run(runCtx, check, opts)
	return c
}

func (c *Confirmation) run(ctx context.Context, check CheckFunc, opts Options) {
	defer close(c.done)
	defer c.cancel()
	ticker := time.NewTicker(opts.Interval)
	defer ticker.Stop()

	attempts := 0
	for {
		select {
		case <-ctx.Done():
			c.outcome = OutcomeStopped
			c.err = ctx.Err()
			return
		case <-ticker.C:
			attempts++
			done, err := check(ctx)
			if err != nil {
				var pe permanentError
				if errors.As(err, &pe) {
					c.outcome = OutcomeStopped
					c.err = pe.err
					return
				}
				c.err = err
			} else if done {
				c.outcome = OutcomeConfirmed
				c.err = nil
				return
			}
			if attempts >= opts.Limit {
				c.outcome = OutcomeTimedOut
				return
			}
		}
	}
}

// Done is closed once the poll settled.
func (c *Confirmation) Done() <-chan struct{} {
	return c.done
}

// Wait blocks until the poll settles. The error accompanying OutcomeTimedOut
// is informational: it is the last check failure, if any.
func (c *Confirmation) Wait() (Outcome, error) {
	<-c.done
	return c.outcome, c.err
}

// Stop cancels the poll and waits for its timer to be released. Stopping a
// settled poll is a no-op.
func (c *Confirmation) Stop() {
	c.cancel()
	<-c.done
}

// Confirm runs a poll to completion, releasing it deterministically.
func Confirm(ctx context.Context, check CheckFunc, opts Options) (Outcome, error) {
	c := Start(ctx, check, opts)
	defer c.Stop()
	return c.Wait()
}

// ConfirmUntil polls every interval inside a wall-clock validity window
// instead of an attempt budget. Used for long-running server jobs whose
// window is persisted across page loads.
func ConfirmUntil(ctx context.Context, check CheckFunc, interval time.Duration, deadline time.Time) (Outcome, error) {
	if interval <= 0 {
		interval = time.Second
	}
	remaining := time.Until(deadline)
	if remaining <= 0 {
		return OutcomeTimedOut, nil
	}

	boundedCtx, cancel := context.WithDeadline(ctx, deadline)
	defer cancel()

	outcome, err := Confirm(boundedCtx, check, Options{
		Interval: interval,
		Limit:    int(remaining/interval) + 1,
	})
	if outcome == OutcomeStopped && errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
		return OutcomeTimedOut, nil
	}
	return outcome, err
}
