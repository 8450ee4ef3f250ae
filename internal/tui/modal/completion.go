package modal

import (
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"echo-console/internal/tui/render"
)

// Command 是补全列表中的一项。
type Command struct {
	Name        string
	Description string
}

type match struct {
	cmd        Command
	highlights []int
	score      int
}

// Completion 是斜杠命令的模糊补全弹窗。
// tab 把选中命令填回输入框，enter 直接提交。
type Completion struct {
	tag      string
	commands []Command
	query    []rune
	matches  []match
	selected int
	maxLines int
}

func NewCompletion(tag string, commands []Command) *Completion {
	c := &Completion{tag: tag, commands: append([]Command(nil), commands...), maxLines: 8}
	c.refilter()
	return c
}

func (c *Completion) Tag() string { return c.tag }

func (c *Completion) Title() string { return "Commands" }

// Query 返回当前输入（不含前导斜杠）。
func (c *Completion) Query() string { return string(c.query) }

// Matches 返回当前匹配的命令名，按得分排序。
func (c *Completion) Matches() []string {
	out := make([]string, 0, len(c.matches))
	for _, m := range c.matches {
		out = append(out, m.cmd.Name)
	}
	return out
}

func (c *Completion) HandleKey(msg tea.KeyMsg) (Result, tea.Cmd) {
	switch msg.Type {
	case tea.KeyRunes, tea.KeySpace:
		if msg.Type == tea.KeySpace {
			c.query = append(c.query, ' ')
		} else {
			c.query = append(c.query, msg.Runes...)
		}
		c.refilter()
		return Result{}, nil
	case tea.KeyBackspace:
		if len(c.query) == 0 {
			return Result{Kind: Canceled}, nil
		}
		c.query = c.query[:len(c.query)-1]
		c.refilter()
		return Result{}, nil
	case tea.KeyUp, tea.KeyCtrlP:
		c.move(-1)
		return Result{}, nil
	case tea.KeyDown, tea.KeyCtrlN:
		c.move(1)
		return Result{}, nil
	case tea.KeyTab:
		if len(c.matches) == 0 {
			return Result{}, nil
		}
		return Result{Kind: Insert, Value: "/" + c.matches[c.selected].cmd.Name + " "}, nil
	case tea.KeyEnter:
		if len(c.matches) == 0 {
			return Result{Kind: Submit, Value: strings.TrimSpace(string(c.query))}, nil
		}
		return Result{Kind: Submit, Value: c.matches[c.selected].cmd.Name}, nil
	}
	return Result{}, nil
}

func (c *Completion) move(delta int) {
	if len(c.matches) == 0 {
		return
	}
	c.selected = (c.selected + delta + len(c.matches)) % len(c.matches)
}

func (c *Completion) refilter() {
	c.matches = filterCommands(c.commands, string(c.query))
	if c.selected >= len(c.matches) {
		c.selected = 0
	}
}

func filterCommands(commands []Command, query string) []match {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		out := make([]match, 0, len(commands))
		for _, cmd := range commands {
			out = append(out, match{cmd: cmd})
		}
		return out
	}
	keys := make([]string, len(commands))
	for i, cmd := range commands {
		keys[i] = strings.ToLower(cmd.Name)
	}
	results := fuzzy.Find(strings.ToLower(trimmed), keys)
	out := make([]match, 0, len(results))
	for _, res := range results {
		out = append(out, match{cmd: commands[res.Index], highlights: res.MatchedIndexes, score: res.Score})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].score == out[j].score {
			return out[i].cmd.Name < out[j].cmd.Name
		}
		return out[i].score > out[j].score
	})
	return out
}

var (
	nameStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#C4A1FF"))
	descStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#9CA3AF"))
	highlightStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#EBCB8B"))
	selectedStyle  = lipgloss.NewStyle().Background(lipgloss.Color("#2F2A3D"))
)

func (c *Completion) View(width int) string {
	lines := []string{"/" + string(c.query)}
	if len(c.matches) == 0 {
		lines = append(lines, descStyle.Render("no matches"))
		return strings.Join(lines, "\n")
	}
	nameWidth := 10
	for _, m := range c.matches {
		if w := len(m.cmd.Name) + 1; w > nameWidth {
			nameWidth = w
		}
	}
	start := 0
	if c.selected >= c.maxLines {
		start = c.selected - c.maxLines + 1
	}
	end := start + c.maxLines
	if end > len(c.matches) {
		end = len(c.matches)
	}
	for idx := start; idx < end; idx++ {
		m := c.matches[idx]
		name := "/" + applyHighlights(m.cmd.Name, m.highlights)
		pad := strings.Repeat(" ", nameWidth-len(m.cmd.Name)-1)
		desc := render.Truncate(m.cmd.Description, width-nameWidth-2)
		line := fmt.Sprintf("%s%s  %s", nameStyle.Render(name), pad, descStyle.Render(desc))
		if idx == c.selected {
			line = selectedStyle.Render(line)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func applyHighlights(name string, indexes []int) string {
	if len(indexes) == 0 {
		return name
	}
	marked := map[int]bool{}
	for _, idx := range indexes {
		marked[idx] = true
	}
	var b strings.Builder
	for i, r := range []rune(name) {
		if marked[i] {
			b.WriteString(highlightStyle.Render(string(r)))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
