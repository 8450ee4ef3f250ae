package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	userPrefixStyle      = lipgloss.NewStyle().Faint(true).Bold(true)
	userIndentStyle      = lipgloss.NewStyle().Faint(true)
	assistantPrefixStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4"))
	assistantIndentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4"))
	systemStyle          = lipgloss.NewStyle().Faint(true).Italic(true)
	toolStyle            = lipgloss.NewStyle().Faint(true)
	diffAddStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("#16a34a"))
	diffDelStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("#dc2626"))
	diffHunkStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4")).Faint(true)
)

// EntryKind 决定一段 transcript 的前缀与样式。
type EntryKind string

const (
	EntryUser      EntryKind = "user"
	EntryAssistant EntryKind = "assistant"
	EntrySystem    EntryKind = "system"
	EntryTool      EntryKind = "tool"
)

// Entry 是 transcript 中的一个渲染块。
type Entry struct {
	Kind EntryKind
	Text string
}

// RenderEntries 使用 ColumnRenderable 将条目渲染为行。
func RenderEntries(entries []Entry, width int) []Line {
	col := NewColumn()
	for _, e := range entries {
		col.Push(entryRenderable{entry: e})
	}
	return RenderLines(col, width)
}

type entryRenderable struct {
	entry Entry
}

func (e entryRenderable) lines(width int) []Line {
	content := strings.TrimRight(e.entry.Text, "\n")
	switch e.entry.Kind {
	case EntryUser:
		return renderUserLines(content, width)
	case EntryAssistant:
		return renderAssistantLines(content, width)
	case EntryTool:
		return renderToolLines(content, width)
	default:
		return wrapLines(content, width, systemStyle)
	}
}

func (e entryRenderable) Render(area Rect, buf *Buffer) {
	buf.WriteLines(e.lines(area.Width)...)
}

func (e entryRenderable) DesiredHeight(width int) int {
	return len(e.lines(width))
}

func renderUserLines(content string, width int) []Line {
	body := wrapLines(content, innerWidth(width), lipgloss.Style{})
	prefixed := PrefixLines(body, Span{Text: "› ", Style: userPrefixStyle}, Span{Text: "  ", Style: userIndentStyle})
	lines := make([]Line, 0, len(prefixed)+2)
	lines = append(lines, Line{})
	lines = append(lines, prefixed...)
	lines = append(lines, Line{})
	return lines
}

func renderAssistantLines(content string, width int) []Line {
	body := wrapLines(content, innerWidth(width), lipgloss.Style{})
	prefixed := PrefixLines(body, Span{Text: "• ", Style: assistantPrefixStyle}, Span{Text: "  ", Style: assistantIndentStyle})
	if len(prefixed) == 0 {
		prefixed = []Line{{Spans: []Span{{Text: "• ", Style: assistantPrefixStyle}}}}
	}
	return prefixed
}

// renderToolLines 保留工具输出的空白，diff 行按 +/-/@@ 着色。
func renderToolLines(content string, width int) []Line {
	wrapWidth := innerWidth(width)
	inDiff := false
	out := []Line{}
	for _, raw := range strings.Split(content, "\n") {
		isDiffHeader := strings.Contains(raw, "└ diff:")
		lineInDiff := inDiff && !isDiffHeader
		for _, l := range wrapLinePreserveSpaces(raw, wrapWidth) {
			out = append(out, Line{Spans: toolLineSpans("  "+l, lineInDiff)})
		}
		if isDiffHeader {
			inDiff = true
		}
	}
	if len(out) == 0 {
		return []Line{{}}
	}
	return out
}

func toolLineSpans(line string, inDiff bool) []Span {
	if !inDiff || strings.TrimSpace(line) == "" {
		return []Span{{Text: line, Style: toolStyle}}
	}
	trimmed := strings.TrimLeft(line, " ")
	indent := line[:len(line)-len(trimmed)]
	style := toolStyle
	switch {
	case strings.HasPrefix(trimmed, "+") && !strings.HasPrefix(trimmed, "+++"):
		style = diffAddStyle
	case strings.HasPrefix(trimmed, "-") && !strings.HasPrefix(trimmed, "---"):
		style = diffDelStyle
	case strings.HasPrefix(trimmed, "@@"):
		style = diffHunkStyle
	}
	if indent == "" {
		return []Span{{Text: trimmed, Style: style}}
	}
	return []Span{
		{Text: indent, Style: toolStyle},
		{Text: trimmed, Style: style},
	}
}

func wrapLines(content string, width int, style lipgloss.Style) []Line {
	lines := wrapText(content, width)
	out := make([]Line, 0, len(lines))
	for _, l := range lines {
		out = append(out, Line{Spans: []Span{{Text: l, Style: style}}})
	}
	return out
}

func innerWidth(width int) int {
	if width-2 < 1 {
		return maxInt(1, width)
	}
	return width - 2
}
