package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"nhooyr.io/websocket"

	"echo-console/internal/events"
)

func wsServer(t *testing.T, handle func(ctx context.Context, conn *websocket.Conn, r *http.Request, n int)) *httptest.Server {
	t.Helper()
	var conns atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{InsecureSkipVerify: true})
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "done")
		handle(r.Context(), conn, r, int(conns.Add(1)))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func writeFrame(ctx context.Context, conn *websocket.Conn, frame string) {
	_ = conn.Write(ctx, websocket.MessageText, []byte(frame))
}

func fastBackoff() Backoff {
	return Backoff{Base: 10 * time.Millisecond, Cap: 20 * time.Millisecond, Jitter: 0.2, Rand: func() float64 { return 0.5 }}
}

func TestStreamDecodesFramesAndSkipsNoise(t *testing.T) {
	srv := wsServer(t, func(ctx context.Context, conn *websocket.Conn, r *http.Request, _ int) {
		if r.URL.Query().Get("session") != "s1" || r.Header.Get("Authorization") != "Bearer tok" {
			writeFrame(ctx, conn, `{"type":"toast","text":"bad handshake","severity":"error"}`)
		}
		writeFrame(ctx, conn, `{"type":"server.hello"}`)
		writeFrame(ctx, conn, `{"type":"garbage"}`)
		writeFrame(ctx, conn, `{"type":"task.started","id":"t1","name":"build"}`)
		<-ctx.Done()
	})

	metrics := NewMetrics(nil)
	s := NewStream(StreamConfig{URL: srv.URL, Token: "tok", SessionID: "s1", Metrics: metrics, Backoff: fastBackoff()})
	c := newCollector()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, c.emit) }()

	msg := c.next(t)
	started, ok := msg.(events.TaskStarted)
	require.True(t, ok, "got %#v", msg)
	require.Equal(t, "t1", started.ID)
	require.Equal(t, 1.0, testutil.ToFloat64(metrics.Malformed))

	cancel()
	require.NoError(t, <-done)
}

func TestStreamReconnectsWithLostAndRestored(t *testing.T) {
	srv := wsServer(t, func(ctx context.Context, conn *websocket.Conn, _ *http.Request, n int) {
		if n == 1 {
			writeFrame(ctx, conn, `{"type":"task.started","id":"a"}`)
			return
		}
		writeFrame(ctx, conn, `{"type":"task.started","id":"b"}`)
		<-ctx.Done()
	})

	metrics := NewMetrics(nil)
	s := NewStream(StreamConfig{URL: srv.URL, Metrics: metrics, Backoff: fastBackoff()})
	c := newCollector()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, c.emit) }()

	require.Equal(t, "a", c.next(t).(events.TaskStarted).ID)

	lost, ok := c.next(t).(events.ConnectionLost)
	require.True(t, ok)
	require.Equal(t, 1, lost.Attempt)
	require.Equal(t, 10*time.Millisecond, lost.RetryIn)
	require.NotEmpty(t, lost.Err)

	restored, ok := c.next(t).(events.ConnectionRestored)
	require.True(t, ok)
	require.Equal(t, 1, restored.Attempts)

	require.Equal(t, "b", c.next(t).(events.TaskStarted).ID)
	require.Equal(t, 1.0, testutil.ToFloat64(metrics.Reconnects))

	cancel()
	require.NoError(t, <-done)
}

func TestStreamUnauthorizedIsTerminal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusUnauthorized)
	}))
	t.Cleanup(srv.Close)

	s := NewStream(StreamConfig{URL: srv.URL, Backoff: fastBackoff()})
	c := newCollector()
	err := s.Run(context.Background(), c.emit)
	require.True(t, errors.Is(err, ErrUnauthorized), "err = %v", err)
}

func TestStreamDrainsOutbox(t *testing.T) {
	srv := wsServer(t, func(ctx context.Context, conn *websocket.Conn, _ *http.Request, _ int) {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return
		}
		var req events.Request
		if err := json.Unmarshal(data, &req); err != nil {
			return
		}
		writeFrame(ctx, conn, `{"type":"toast","text":"ack `+req.ID+` `+string(req.Kind)+`"}`)
		<-ctx.Done()
	})

	outbox := events.NewOutbox(4)
	s := NewStream(StreamConfig{URL: srv.URL, Outbox: outbox, Backoff: fastBackoff()})
	c := newCollector()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, c.emit) }()

	require.NoError(t, outbox.Submit(ctx, events.Request{ID: "r1", Kind: events.RequestChatSend, Text: "hi"}))

	toast, ok := c.next(t).(events.ToastRequested)
	require.True(t, ok)
	require.Equal(t, "ack r1 chat.send", toast.Text)

	cancel()
	require.NoError(t, <-done)
}
