package keyseq

import (
	"testing"
	"time"
)

var t0 = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func TestResolve(t *testing.T) {
	cases := []struct {
		name   string
		kind   Kind
		key    string
		after  time.Duration
		want   Action
		wantOK bool
	}{
		{"leader model picker", Leader, "m", 200 * time.Millisecond, ActionModelPicker, true},
		{"leader quit at deadline", Leader, "q", time.Second, ActionQuit, true},
		{"leader past deadline", Leader, "m", time.Second + time.Millisecond, "", false},
		{"leader unbound key", Leader, "z", 10 * time.Millisecond, "", false},
		{"nav down arrow", Nav, "down", 10 * time.Millisecond, ActionLineDown, true},
		{"nav G bottom", Nav, "G", 10 * time.Millisecond, ActionBottom, true},
		{"nav leader key unbound", Nav, "m", 10 * time.Millisecond, "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tr := NewTracker(0)
			tr.Start(tc.kind, "ctrl+x", t0)
			got, ok := tr.Resolve(tc.key, t0.Add(tc.after))
			if ok != tc.wantOK || got != tc.want {
				t.Fatalf("Resolve = (%q, %v), want (%q, %v)", got, ok, tc.want, tc.wantOK)
			}
			if tr.Pending() {
				t.Fatalf("tracker should be idle after Resolve")
			}
		})
	}
}

func TestResolveWhenIdle(t *testing.T) {
	tr := NewTracker(0)
	if _, ok := tr.Resolve("m", t0); ok {
		t.Fatalf("idle tracker must not resolve")
	}
}

func TestExpire(t *testing.T) {
	tr := NewTracker(500 * time.Millisecond)
	tr.Start(Leader, "ctrl+x", t0)
	if tr.Prefix() != "ctrl+x" {
		t.Fatalf("prefix = %q", tr.Prefix())
	}
	if tr.Expire(t0.Add(500 * time.Millisecond)) {
		t.Fatalf("must not expire exactly at deadline")
	}
	if !tr.Pending() {
		t.Fatalf("should still be pending")
	}
	if !tr.Expire(t0.Add(501 * time.Millisecond)) {
		t.Fatalf("should expire after deadline")
	}
	if tr.Pending() || tr.Prefix() != "" {
		t.Fatalf("should be idle after expiry")
	}
	if tr.Expire(t0.Add(time.Hour)) {
		t.Fatalf("idle tracker has nothing to expire")
	}
}

// 超时的序列不会执行第二个键的动作。
func TestSequenceTimeoutNeverExecutes(t *testing.T) {
	tr := NewTracker(time.Second)
	for _, delay := range []time.Duration{1001 * time.Millisecond, 2 * time.Second, time.Minute} {
		tr.Start(Leader, "ctrl+x", t0)
		tr.Expire(t0.Add(delay))
		if _, ok := tr.Resolve("q", t0.Add(delay)); ok {
			t.Fatalf("resolved after %s", delay)
		}
		tr.Start(Leader, "ctrl+x", t0)
		if _, ok := tr.Resolve("q", t0.Add(delay)); ok {
			t.Fatalf("resolved without expire after %s", delay)
		}
	}
}

func TestStartReplacesPending(t *testing.T) {
	tr := NewTracker(time.Second)
	tr.Start(Leader, "ctrl+x", t0)
	tr.Start(Nav, "ctrl+b", t0.Add(100*time.Millisecond))
	st := tr.State()
	if st.Kind != Nav || !st.Deadline.Equal(t0.Add(1100*time.Millisecond)) {
		t.Fatalf("state = %+v", st)
	}
}
