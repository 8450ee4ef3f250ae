package toast

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"echo-console/internal/events"
	"echo-console/internal/tui/render"
)

var t0 = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func TestPushAssignsIDsAndDurations(t *testing.T) {
	m := NewManager(Config{})
	a := m.Push("saved", events.SeveritySuccess, t0)
	b := m.Push("boom", events.SeverityError, t0)
	c := m.Push("fyi", events.SeverityInfo, t0)

	if a.ID != "toast-1" || b.ID != "toast-2" || c.ID != "toast-3" {
		t.Fatalf("unexpected ids %s %s %s", a.ID, b.ID, c.ID)
	}
	if got := a.ExpiresAt.Sub(t0); got != 4*time.Second {
		t.Fatalf("success duration = %s", got)
	}
	if got := b.ExpiresAt.Sub(t0); got != 8*time.Second {
		t.Fatalf("error duration = %s", got)
	}
	if got := c.ExpiresAt.Sub(t0); got != 4*time.Second {
		t.Fatalf("info duration = %s", got)
	}
}

func TestPushEvictsOldestBeyondMax(t *testing.T) {
	m := NewManager(Config{Max: 3})
	for i := 0; i < 5; i++ {
		m.Push(fmt.Sprintf("n%d", i), events.SeverityInfo, t0)
	}
	items := m.Items()
	if len(items) != 3 {
		t.Fatalf("len = %d, want 3", len(items))
	}
	if items[0].Text != "n2" || items[2].Text != "n4" {
		t.Fatalf("unexpected order: %+v", items)
	}
}

func TestPushDoesNotDeduplicate(t *testing.T) {
	m := NewManager(Config{})
	m.Push("same", events.SeverityInfo, t0)
	m.Push("same", events.SeverityInfo, t0)
	if m.Len() != 2 {
		t.Fatalf("len = %d, want 2", m.Len())
	}
}

func TestExpireRemovesDueToasts(t *testing.T) {
	cases := []struct {
		name string
		at   time.Duration
		want int
	}{
		{"before any", 3 * time.Second, 2},
		{"exactly at info deadline", 4 * time.Second, 1},
		{"after error deadline", 9 * time.Second, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := NewManager(Config{})
			m.Push("info", events.SeverityInfo, t0)
			m.Push("err", events.SeverityError, t0)
			m.Expire(t0.Add(tc.at))
			if m.Len() != tc.want {
				t.Fatalf("len = %d, want %d", m.Len(), tc.want)
			}
		})
	}
}

// 任意推进时间后，剩余 toast 都必须尚未到期。
func TestExpireLeavesOnlyLiveToasts(t *testing.T) {
	m := NewManager(Config{Max: 100})
	sevs := []events.Severity{events.SeverityInfo, events.SeveritySuccess, events.SeverityError}
	for i := 0; i < 30; i++ {
		m.Push("x", sevs[i%3], t0.Add(time.Duration(i)*300*time.Millisecond))
	}
	for step := 0; step < 40; step++ {
		now := t0.Add(time.Duration(step) * 500 * time.Millisecond)
		m.Expire(now)
		for _, item := range m.Items() {
			if !item.ExpiresAt.After(now) {
				t.Fatalf("toast %s expired at %s still present at %s", item.ID, item.ExpiresAt, now)
			}
		}
	}
}

func TestLinesTruncateToWidth(t *testing.T) {
	m := NewManager(Config{})
	m.Push("a very long notification line", events.SeverityError, t0)
	lines := render.LinesToPlainStrings(m.Lines(10))
	if len(lines) != 1 {
		t.Fatalf("lines = %v", lines)
	}
	if !strings.HasPrefix(lines[0], "✗ a very") || !strings.HasSuffix(lines[0], "…") {
		t.Fatalf("line = %q", lines[0])
	}
	m.Clear()
	if m.View(10) != "" {
		t.Fatalf("empty manager should render nothing")
	}
}
