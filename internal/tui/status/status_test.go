package status

import (
	"strings"
	"testing"
	"time"

	"github.com/mattn/go-runewidth"
)

func TestFmtElapsedCompact(t *testing.T) {
	cases := []struct {
		seconds  uint64
		expected string
	}{
		{seconds: 0, expected: "0s"},
		{seconds: 59, expected: "59s"},
		{seconds: 60, expected: "1m 00s"},
		{seconds: 3*60 + 5, expected: "3m 05s"},
		{seconds: 3600, expected: "1h 00m 00s"},
		{seconds: 25*3600 + 2*60 + 3, expected: "25h 02m 03s"},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.expected, func(t *testing.T) {
			t.Parallel()
			if got := fmtElapsedCompact(tc.seconds); got != tc.expected {
				t.Fatalf("fmtElapsedCompact(%d) = %q, want %q", tc.seconds, got, tc.expected)
			}
		})
	}
}

func TestDerive(t *testing.T) {
	cases := []struct {
		name string
		snap Snapshot
		want State
	}{
		{"idle", Snapshot{}, Idle},
		{"working", Snapshot{Running: 1}, Working},
		{"lost wins over working", Snapshot{Running: 2, Lost: true}, Reconnecting},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Derive(tc.snap); got != tc.want {
				t.Fatalf("Derive = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestPlain(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 1, 5, 0, time.UTC)
	cases := []struct {
		name string
		snap Snapshot
		want string
	}{
		{
			name: "idle with model",
			snap: Snapshot{Now: now, Model: "glm4.6"},
			want: "Ready · glm4.6",
		},
		{
			name: "working with elapsed",
			snap: Snapshot{Now: now, Running: 2, WorkingSince: now.Add(-65 * time.Second)},
			want: "• Working (1m 05s • esc to interrupt) 2 tasks",
		},
		{
			name: "reconnecting",
			snap: Snapshot{Now: now, Lost: true, Attempt: 3, RetryIn: 4 * time.Second, LastError: "eof", LostSince: now.Add(-10 * time.Second)},
			want: "! Reconnecting (attempt 3, retry in 4s, down 10s) eof",
		},
		{
			name: "pending sequence",
			snap: Snapshot{Now: now, Pending: "ctrl+x"},
			want: "Ready · ctrl+x …",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Plain(tc.snap, 200); got != tc.want {
				t.Fatalf("Plain = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestPlainClampsToWidth(t *testing.T) {
	snap := Snapshot{Lost: true, Attempt: 1, LastError: strings.Repeat("x", 100)}
	got := Plain(snap, 20)
	if w := runewidth.StringWidth(got); w > 20 {
		t.Fatalf("width %d exceeds 20: %q", w, got)
	}
	if Plain(snap, 0) != "" {
		t.Fatalf("zero width should render nothing")
	}
}
