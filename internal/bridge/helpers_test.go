package bridge

import (
	"context"
	"testing"
	"time"

	"echo-console/internal/events"
)

type collector struct {
	ch chan events.Message
}

func newCollector() *collector {
	return &collector{ch: make(chan events.Message, 64)}
}

func (c *collector) emit(ctx context.Context, msg events.Message) error {
	select {
	case c.ch <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *collector) next(t *testing.T) events.Message {
	t.Helper()
	select {
	case msg := <-c.ch:
		return msg
	case <-time.After(3 * time.Second):
		t.Fatalf("timed out waiting for message")
		return nil
	}
}

type funcSource struct {
	name string
	run  func(ctx context.Context, emit Emit) error
}

func (s funcSource) Name() string { return s.name }

func (s funcSource) Run(ctx context.Context, emit Emit) error { return s.run(ctx, emit) }
