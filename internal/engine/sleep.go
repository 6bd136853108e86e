package engine

import (
	"context"
	"time"
)

// sleep waits for d in slices of at most step, returning early with true as soon as
// stop reports true. It returns false if ctx is done.
func sleep(ctx context.Context, d, step time.Duration, stop func() bool) bool {
	deadline := time.Now().Add(d)
	t := time.NewTimer(0)
	<-t.C
	defer t.Stop()
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return true
		}
		t.Reset(min(remaining, step))
		select {
		case <-ctx.Done():
			return false
		case <-t.C:
		}
		if stop != nil && stop() {
			return true
		}
	}
}
