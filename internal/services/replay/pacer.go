// Package replay re-emits finished battle logs at a readable pace and
// serves stored battles over HTTP and WebSocket.
package replay

import (
	"context"
	"time"
)

// DefaultDelay is the pause between replayed lines.
const DefaultDelay = 600 * time.Millisecond

// MaxDelay caps a requested delay.
const MaxDelay = 10 * time.Second

// Pacer replays log lines with a fixed delay between them.
type Pacer struct {
	Delay time.Duration
}

// Play calls emit for each line in order, waiting Delay between lines.
// It stops early when ctx is done or emit fails.
func (p Pacer) Play(ctx context.Context, lines []string, emit func(index int, line string) error) error {
	for i, line := range lines {
		if i > 0 && p.Delay > 0 {
			timer := time.NewTimer(p.Delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}
		if err := emit(i, line); err != nil {
			return err
		}
	}
	return nil
}

// clampDelay bounds a requested delay to [0, MaxDelay].
func clampDelay(d time.Duration) time.Duration {
	switch {
	case d < 0:
		return 0
	case d > MaxDelay:
		return MaxDelay
	default:
		return d
	}
}
