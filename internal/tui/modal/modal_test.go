package modal

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
)

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

var testCommands = []Command{
	{Name: "help", Description: "show commands"},
	{Name: "model", Description: "pick a model"},
	{Name: "revert", Description: "revert to checkpoint"},
	{Name: "quit", Description: "exit"},
}

func TestStackEscCloses(t *testing.T) {
	var s Stack
	if _, _, handled := s.HandleKey(tea.KeyMsg{Type: tea.KeyEsc}); handled {
		t.Fatalf("empty stack must not handle keys")
	}
	s.Open(NewConfirm("revert", "Revert?", "", "m1"))
	res, _, handled := s.HandleKey(tea.KeyMsg{Type: tea.KeyEsc})
	if !handled || res.Kind != Canceled || res.Tag != "revert" {
		t.Fatalf("esc result = %+v handled=%v", res, handled)
	}
	if s.IsOpen() {
		t.Fatalf("esc should close the modal")
	}
}

func TestStackOpenReplacesActive(t *testing.T) {
	var s Stack
	s.Open(NewConfirm("a", "A", "", ""))
	s.Open(NewConfirm("b", "B", "", ""))
	if s.Active().Tag() != "b" {
		t.Fatalf("active = %s", s.Active().Tag())
	}
}

func TestConfirmKeys(t *testing.T) {
	cases := []struct {
		key      tea.KeyMsg
		want     ResultKind
		stayOpen bool
	}{
		{runes("y"), Confirmed, false},
		{tea.KeyMsg{Type: tea.KeyEnter}, Confirmed, false},
		{runes("n"), Canceled, false},
		{runes("x"), None, true},
	}
	for _, tc := range cases {
		t.Run(tc.key.String(), func(t *testing.T) {
			var s Stack
			s.Open(NewConfirm("revert", "Revert?", "body", "m7"))
			res, _, _ := s.HandleKey(tc.key)
			if res.Kind != tc.want {
				t.Fatalf("kind = %s, want %s", res.Kind, tc.want)
			}
			if tc.want == Confirmed && (res.Value != "m7" || res.Tag != "revert") {
				t.Fatalf("result = %+v", res)
			}
			if s.IsOpen() != tc.stayOpen {
				t.Fatalf("open = %v, want %v", s.IsOpen(), tc.stayOpen)
			}
		})
	}
}

func TestCompletionFiltersAndSubmits(t *testing.T) {
	c := NewCompletion("palette", testCommands)
	if got := c.Matches(); len(got) != 4 || got[0] != "help" {
		t.Fatalf("initial matches = %v", got)
	}
	c.HandleKey(runes("mo"))
	if got := c.Matches(); len(got) == 0 || got[0] != "model" {
		t.Fatalf("matches for mo = %v", got)
	}
	res, _ := c.HandleKey(tea.KeyMsg{Type: tea.KeyEnter})
	if res.Kind != Submit || res.Value != "model" {
		t.Fatalf("enter result = %+v", res)
	}
}

func TestCompletionTabInserts(t *testing.T) {
	c := NewCompletion("palette", testCommands)
	c.HandleKey(runes("rev"))
	res, _ := c.HandleKey(tea.KeyMsg{Type: tea.KeyTab})
	if res.Kind != Insert || res.Value != "/revert " {
		t.Fatalf("tab result = %+v", res)
	}
}

func TestCompletionUnknownSubmitsQuery(t *testing.T) {
	c := NewCompletion("palette", testCommands)
	c.HandleKey(runes("zzz"))
	if len(c.Matches()) != 0 {
		t.Fatalf("expected no matches, got %v", c.Matches())
	}
	res, _ := c.HandleKey(tea.KeyMsg{Type: tea.KeyEnter})
	if res.Kind != Submit || res.Value != "zzz" {
		t.Fatalf("result = %+v", res)
	}
	if !strings.Contains(ansi.Strip(c.View(40)), "no matches") {
		t.Fatalf("view should show no matches")
	}
}

func TestCompletionNavigationAndBackspace(t *testing.T) {
	c := NewCompletion("palette", testCommands)
	c.HandleKey(tea.KeyMsg{Type: tea.KeyUp})
	res, _ := c.HandleKey(tea.KeyMsg{Type: tea.KeyEnter})
	if res.Value != "quit" {
		t.Fatalf("up should wrap to last item, got %+v", res)
	}

	c = NewCompletion("palette", testCommands)
	c.HandleKey(runes("q"))
	c.HandleKey(tea.KeyMsg{Type: tea.KeyBackspace})
	if c.Query() != "" {
		t.Fatalf("query = %q", c.Query())
	}
	res, _ = c.HandleKey(tea.KeyMsg{Type: tea.KeyBackspace})
	if res.Kind != Canceled {
		t.Fatalf("backspace on empty query should cancel, got %+v", res)
	}
}

func TestSelectionPicksOption(t *testing.T) {
	s := NewSelection("model", "Select model", []string{"a", "b", "c"}, "b")
	if s.Current() != "b" {
		t.Fatalf("current = %q", s.Current())
	}
	s.HandleKey(tea.KeyMsg{Type: tea.KeyDown})
	res, _ := s.HandleKey(tea.KeyMsg{Type: tea.KeyEnter})
	if res.Kind != Selected || res.Value != "c" {
		t.Fatalf("result = %+v", res)
	}
}

func TestStackViewShowsTitle(t *testing.T) {
	var s Stack
	if s.View(60) != "" {
		t.Fatalf("closed stack renders nothing")
	}
	s.Open(NewConfirm("revert", "Revert to checkpoint?", "drops later messages", ""))
	view := ansi.Strip(s.View(60))
	for _, want := range []string{"Revert to checkpoint?", "[y] confirm", "esc to close"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view missing %q:\n%s", want, view)
		}
	}
}
