package taskpanel

import (
	"testing"
	"time"
)

func TestSummarize(t *testing.T) {
	cases := []struct {
		name    string
		tool    string
		params  map[string]string
		elapsed time.Duration
		want    string
	}{
		{"command", "command", map[string]string{"command": "ls -la"}, 12 * time.Second, "running command ls -la (elapsed 12s)"},
		{"shell without command", "shell", nil, 0, "running command shell (elapsed 0s)"},
		{"read", "read_file", map[string]string{"path": "main.go"}, 0, "reading path main.go"},
		{"edit", "apply_patch", map[string]string{"file": "a.go"}, 0, "editing a.go"},
		{"search", "grep", map[string]string{"pattern": "TODO"}, 0, "searching TODO"},
		{"fetch", "fetch", map[string]string{"url": "https://example.com"}, 0, "fetching https://example.com"},
		{"missing path", "read", nil, 0, "reading path ?"},
		{"generic sorted", "lint", map[string]string{"z": "1", "a": "2"}, 0, "lint a=2 z=1"},
		{"generic bare", "lint", nil, 0, "lint"},
		{"empty tool", "", map[string]string{"a": "b"}, 0, ""},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := Summarize(tc.tool, tc.params, tc.elapsed); got != tc.want {
				t.Fatalf("Summarize = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestSummarizeDeterministic(t *testing.T) {
	params := map[string]string{"b": "2", "a": "1", "c": "3", "d": "4"}
	first := Summarize("custom", params, time.Minute)
	for i := 0; i < 50; i++ {
		if got := Summarize("custom", params, time.Minute); got != first {
			t.Fatalf("run %d: %q != %q", i, got, first)
		}
	}
}
