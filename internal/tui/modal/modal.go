// Package modal 管理叠加在主界面上的对话框，同一时刻至多一个。
package modal

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ResultKind 描述对话框给出的结论。
type ResultKind int

const (
	None ResultKind = iota
	Insert
	Submit
	Confirmed
	Selected
	Canceled
)

func (k ResultKind) String() string {
	switch k {
	case Insert:
		return "insert"
	case Submit:
		return "submit"
	case Confirmed:
		return "confirmed"
	case Selected:
		return "selected"
	case Canceled:
		return "canceled"
	default:
		return "none"
	}
}

// Result 携带打开对话框时给定的 Tag，调用方据此决定后续动作。
type Result struct {
	Kind  ResultKind
	Tag   string
	Value string
}

// Modal 是可放入 Stack 的对话框。
type Modal interface {
	Tag() string
	Title() string
	HandleKey(msg tea.KeyMsg) (Result, tea.Cmd)
	View(width int) string
}

// Stack 保存当前活动的对话框。
type Stack struct {
	active Modal
}

// Open 打开对话框，替换已有的。
func (s *Stack) Open(m Modal) {
	s.active = m
}

func (s *Stack) Close() {
	s.active = nil
}

func (s *Stack) Active() Modal { return s.active }

func (s *Stack) IsOpen() bool { return s.active != nil }

// HandleKey 将按键交给活动对话框；esc 直接关闭。
// 结果为 None 以外的任意结论时对话框随之关闭。handled 为假表示没有活动对话框。
func (s *Stack) HandleKey(msg tea.KeyMsg) (res Result, cmd tea.Cmd, handled bool) {
	if s.active == nil {
		return Result{}, nil, false
	}
	if msg.Type == tea.KeyEsc {
		tag := s.active.Tag()
		s.active = nil
		return Result{Kind: Canceled, Tag: tag}, nil, true
	}
	res, cmd = s.active.HandleKey(msg)
	if res.Kind != None {
		if res.Tag == "" {
			res.Tag = s.active.Tag()
		}
		s.active = nil
	}
	return res, cmd, true
}

var (
	frameStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#FFB454")).
			Padding(0, 1)
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	hintStyle  = lipgloss.NewStyle().Faint(true)
)

// View 渲染带边框的活动对话框；无对话框时返回空串。
func (s *Stack) View(width int) string {
	if s.active == nil {
		return ""
	}
	inner := width - 4
	if inner < 20 {
		inner = 20
	}
	parts := []string{}
	if title := s.active.Title(); title != "" {
		parts = append(parts, titleStyle.Render(title))
	}
	parts = append(parts, s.active.View(inner))
	parts = append(parts, hintStyle.Render("esc to close"))
	return frameStyle.Width(inner + 2).Render(strings.Join(parts, "\n"))
}
