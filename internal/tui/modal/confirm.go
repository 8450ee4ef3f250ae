package modal

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"echo-console/internal/tui/render"
)

// Confirm 是是/否确认框：y 或 enter 确认，n 取消。
type Confirm struct {
	tag   string
	title string
	body  string
	value string
}

// NewConfirm 创建确认框；value 原样带回 Result，便于调用方关联目标。
func NewConfirm(tag, title, body, value string) *Confirm {
	return &Confirm{tag: tag, title: title, body: body, value: value}
}

func (c *Confirm) Tag() string { return c.tag }

func (c *Confirm) Title() string { return c.title }

func (c *Confirm) HandleKey(msg tea.KeyMsg) (Result, tea.Cmd) {
	switch strings.ToLower(msg.String()) {
	case "y", "enter":
		return Result{Kind: Confirmed, Value: c.value}, nil
	case "n":
		return Result{Kind: Canceled, Value: c.value}, nil
	}
	return Result{}, nil
}

func (c *Confirm) View(width int) string {
	var lines []string
	if body := strings.TrimSpace(c.body); body != "" {
		for _, l := range render.WrapText(body, width-2) {
			lines = append(lines, "  "+l)
		}
		lines = append(lines, "")
	}
	lines = append(lines, lipgloss.NewStyle().Bold(true).Render("[y] confirm • [n] cancel"))
	return strings.Join(lines, "\n")
}
