package refresher

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// Refresher reloads state from its backing store.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Run calls target.Refresh every interval until ctx is cancelled. A failed
// refresh is logged and retried on the next tick. Run blocks; start it in its
// own goroutine.
func Run(ctx context.Context, name string, target Refresher, interval time.Duration, log logrus.FieldLogger) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := target.Refresh(ctx); err != nil && ctx.Err() == nil {
				log.WithError(err).WithField("target", name).Warn("refresh failed, keeping previous state")
			}
		}
	}
}
