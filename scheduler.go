package uvpaint

import (
	"context"
	"time"
)

// FrameSource produces the inputs of successive ticks.
// Next is called on the ticking goroutine and may drive the session directly.
type FrameSource interface {
	Next(ctx context.Context, s *Session) (Frame, bool)
}

// ColorSource supplies the brush color sampled on every tick.
type ColorSource interface {
	Color() Color
}

// ColorFunc adapts a function to a ColorSource.
type ColorFunc func() Color

// Color implements ColorSource.
func (f ColorFunc) Color() Color { return f() }

// Scheduler drives a Session at a fixed tick rate.
type Scheduler struct {
	Session *Session
	// Interval is the delay between two ticks. Zero runs the ticks back to back
	// in virtual time: the background tasks started by a tick are completed
	// and applied before the next frame is produced.
	Interval time.Duration
	// Colors overrides the frame color when set.
	Colors ColorSource
}

// Run ticks the session until the source is exhausted or ctx is done,
// then waits for the pending save and load tasks. It returns the number of ticks run.
func (sc *Scheduler) Run(ctx context.Context, src FrameSource) (int, error) {
	var tick <-chan time.Time
	if sc.Interval > 0 {
		t := time.NewTicker(sc.Interval)
		defer t.Stop()
		tick = t.C
	}

	frames := 0
	for {
		if err := ctx.Err(); err != nil {
			return frames, err
		}
		f, ok := src.Next(ctx, sc.Session)
		if !ok {
			break
		}
		if sc.Colors != nil {
			f.Color = sc.Colors.Color()
		}
		sc.Session.Tick(f)
		frames++

		if tick == nil {
			if err := sc.Session.Settle(ctx); err != nil {
				return frames, err
			}
		} else {
			select {
			case <-tick:
			case <-ctx.Done():
				return frames, ctx.Err()
			}
		}
	}
	return frames, sc.Session.Settle(ctx)
}
