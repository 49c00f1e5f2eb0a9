package stream

import (
	"context"
	"time"

	"github.com/san-kum/billiard/internal/sim"
)

// Pump drives s in real time at fps, stepping by the measured frame time and
// broadcasting every frame through the hub. It returns when ctx ends, or
// once the table comes to rest if stopAtRest is set.
func Pump(ctx context.Context, s *sim.Simulator, h *Hub, fps int, maxDt float64, hostDecay, stopAtRest bool) error {
	if fps <= 0 {
		fps = 60
	}
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	clock := sim.NewClock(maxDt)
	clock.Tick(time.Now())
	_ = h.Broadcast(NewFrame(s.Frame()))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			dt := clock.Tick(now)
			if dt <= 0 {
				continue
			}
			f := s.Tick(dt, hostDecay)
			if err := h.Broadcast(NewFrame(f)); err != nil {
				return err
			}
			if stopAtRest && f.AtRest() {
				return nil
			}
		}
	}
}
