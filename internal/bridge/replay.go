package bridge

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"echo-console/internal/events"
)

// Replay 从 JSONL 读取事件，每行一帧；空行与 # 注释行被忽略。
type Replay struct {
	Reader io.Reader
	// Delay 是相邻两帧之间的间隔，0 表示尽快推送。
	Delay   time.Duration
	Clock   func() time.Time
	Metrics *Metrics
}

func (r *Replay) Name() string { return "replay" }

func (r *Replay) Run(ctx context.Context, emit Emit) error {
	if r.Reader == nil {
		return errors.New("replay reader is nil")
	}
	clock := r.Clock
	if clock == nil {
		clock = time.Now
	}
	scanner := bufio.NewScanner(r.Reader)
	scanner.Buffer(make([]byte, 0, 64*1024), 4<<20)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		msg, err := events.Decode([]byte(line), clock())
		if errors.Is(err, events.ErrSkip) {
			continue
		}
		if err != nil {
			log.WithField("line", lineNo).WithError(err).Warn("dropping malformed replay line")
			r.Metrics.malformed()
			continue
		}
		if err := emit(ctx, msg); err != nil {
			return err
		}
		if r.Delay > 0 {
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(r.Delay):
			}
		}
	}
	return scanner.Err()
}
