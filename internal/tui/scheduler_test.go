package tui

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"echo-console/internal/config"
	"echo-console/internal/events"
)

func TestSchedulerDrawsAfterEveryMessage(t *testing.T) {
	q := events.NewIngress(16)
	ctx := context.Background()
	msgs := []events.Message{
		events.ChatMessageAdded{ID: "m1", Role: events.RoleUser, Fragments: []events.Fragment{{Kind: events.FragmentText, Text: "hi"}}, At: t0},
		events.ChatMessageUpdated{ID: "m1", Fragments: []events.Fragment{{Kind: events.FragmentText, Text: " there"}}, At: t0},
		// 不产生可见文本变化的消息也要重绘
		events.TaskCompleted{ID: "ghost", Success: true, At: t0},
		events.Tick{Now: t0.Add(time.Second)},
	}
	for _, msg := range msgs {
		require.NoError(t, q.Push(ctx, msg))
	}
	q.Close()

	var out bytes.Buffer
	s := &Scheduler{
		Model:     New(Options{Config: config.Default(), Clock: func() time.Time { return t0 }, Ingress: q, Context: ctx}),
		Out:       &out,
		Plain:     true,
		Separator: true,
	}
	runCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	require.NoError(t, s.Run(runCtx))

	// 初始帧 + 每条消息一帧 + 关闭通知一帧
	require.Equal(t, len(msgs)+2, s.Frames())
	require.Equal(t, len(msgs)+2, strings.Count(out.String(), "--- frame "))
	require.Contains(t, out.String(), "hi there")
	require.NotContains(t, out.String(), "\x1b[")
	require.True(t, s.Model.(*Model).Snapshot().Quitting)
}

func TestSchedulerStopsOnContextCancel(t *testing.T) {
	q := events.NewIngress(4)
	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{Model: New(Options{Config: config.Default(), Ingress: q, Context: ctx})}

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatalf("scheduler did not stop after cancel")
	}
	require.GreaterOrEqual(t, s.Frames(), 1)
}
