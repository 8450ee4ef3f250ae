package events

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestParseKeyRoundTrip(t *testing.T) {
	names := []string{"ctrl+x", "ctrl+b", "ctrl+c", "ctrl+t", "enter", "esc", "up", "pgdown", "a", "G", "/", "alt+enter"}
	for _, name := range names {
		if got := ParseKey(name).String(); got != name {
			t.Fatalf("ParseKey(%q).String() = %q", name, got)
		}
	}
}

func TestParseKeyRunesAndSpace(t *testing.T) {
	k := ParseKey("h")
	if k.Type != tea.KeyRunes || string(k.Runes) != "h" {
		t.Fatalf("got %+v", k)
	}
	sp := ParseKey("space")
	if sp.Type != tea.KeySpace {
		t.Fatalf("space = %+v", sp)
	}
}
