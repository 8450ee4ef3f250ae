package bridge

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"echo-console/internal/events"
)

func TestReplaySkipsNoiseAndCountsMalformed(t *testing.T) {
	input := strings.Join([]string{
		`# scenario`,
		``,
		`{"type":"server.hello"}`,
		`{"type":"task.started","id":"t1","name":"build"}`,
		`{"type":"task.progress","id":"t1"}`,
		`{"type":"task.completed","id":"t1"}`,
	}, "\n")
	metrics := NewMetrics(nil)
	fixed := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	r := &Replay{Reader: strings.NewReader(input), Metrics: metrics, Clock: func() time.Time { return fixed }}

	var got []events.Message
	emit := func(_ context.Context, m events.Message) error {
		got = append(got, m)
		return nil
	}
	if err := r.Run(context.Background(), emit); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d messages, want 2: %#v", len(got), got)
	}
	if got[0].(events.TaskStarted).ID != "t1" || !got[0].Time().Equal(fixed) {
		t.Fatalf("first = %#v", got[0])
	}
	if _, ok := got[1].(events.TaskCompleted); !ok {
		t.Fatalf("second = %#v", got[1])
	}
	if n := testutil.ToFloat64(metrics.Malformed); n != 1 {
		t.Fatalf("malformed = %v, want 1", n)
	}
}

func TestReplayNilReader(t *testing.T) {
	if err := (&Replay{}).Run(context.Background(), nil); err == nil {
		t.Fatalf("expected error for nil reader")
	}
}
