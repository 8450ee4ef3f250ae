package render

import (
	"slices"
	"testing"
)

func TestRenderEntriesPrefixes(t *testing.T) {
	entries := []Entry{
		{Kind: EntryUser, Text: "hello"},
		{Kind: EntryAssistant, Text: "hi there friend"},
		{Kind: EntrySystem, Text: "note"},
		{Kind: EntryTool, Text: "$ ls"},
	}
	got := LinesToPlainStrings(RenderEntries(entries, 10))
	want := []string{
		"",
		"› hello",
		"",
		"• hi there",
		"  friend",
		"note",
		"  $ ls",
	}
	if !slices.Equal(got, want) {
		t.Fatalf("RenderEntries =\n%q\nwant\n%q", got, want)
	}
}

func TestRenderToolDiffKeepsMarkers(t *testing.T) {
	lines := RenderEntries([]Entry{{Kind: EntryTool, Text: "edit a.go\n└ diff:\n+added\n-removed"}}, 40)
	got := LinesToPlainStrings(lines)
	want := []string{"  edit a.go", "  └ diff:", "  +added", "  -removed"}
	if !slices.Equal(got, want) {
		t.Fatalf("got %q want %q", got, want)
	}
	if len(lines[2].Spans) != 2 {
		t.Fatalf("diff line should split indent and body, got %d spans", len(lines[2].Spans))
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("hello world", 6); got != "hello…" {
		t.Fatalf("Truncate = %q", got)
	}
	if got := Truncate("hi", 6); got != "hi" {
		t.Fatalf("Truncate = %q", got)
	}
	if got := Truncate("hi", 0); got != "" {
		t.Fatalf("Truncate = %q", got)
	}
}
