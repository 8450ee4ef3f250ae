package bridge

import (
	"context"
	"errors"
	"time"

	"echo-console/internal/events"
)

// Ticker 周期性地产生 Tick，驱动提示条过期、按键序列超时与任务清理。
type Ticker struct {
	Interval time.Duration
	Clock    func() time.Time
}

func (t *Ticker) Name() string { return "ticker" }

func (t *Ticker) Run(ctx context.Context, emit Emit) error {
	interval := t.Interval
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}
	clock := t.Clock
	if clock == nil {
		clock = time.Now
	}
	tk := time.NewTicker(interval)
	defer tk.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-tk.C:
			if err := emit(ctx, events.Tick{Now: clock()}); err != nil {
				if errors.Is(err, events.ErrIngressClosed) || ctx.Err() != nil {
					return nil
				}
				return err
			}
		}
	}
}
