package modal

import (
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
)

type option string

func (o option) FilterValue() string { return string(o) }
func (o option) Title() string       { return string(o) }
func (o option) Description() string { return "" }

// Selection 用 bubbles list 从固定选项中选一项，enter 确定。
type Selection struct {
	tag   string
	title string
	list  list.Model
}

// NewSelection 创建选择框，current 存在时预先选中。
func NewSelection(tag, title string, options []string, current string) *Selection {
	items := make([]list.Item, 0, len(options))
	selected := 0
	for i, o := range options {
		items = append(items, option(o))
		if o == current {
			selected = i
		}
	}
	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = false
	delegate.SetSpacing(0)
	l := list.New(items, delegate, 40, len(items)+2)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()
	l.Select(selected)
	return &Selection{tag: tag, title: title, list: l}
}

func (s *Selection) Tag() string { return s.tag }

func (s *Selection) Title() string { return s.title }

// Current 返回当前高亮的选项。
func (s *Selection) Current() string {
	if o, ok := s.list.SelectedItem().(option); ok {
		return string(o)
	}
	return ""
}

func (s *Selection) HandleKey(msg tea.KeyMsg) (Result, tea.Cmd) {
	if msg.Type == tea.KeyEnter {
		value := s.Current()
		if value == "" {
			return Result{Kind: Canceled}, nil
		}
		return Result{Kind: Selected, Value: value}, nil
	}
	var cmd tea.Cmd
	s.list, cmd = s.list.Update(msg)
	return Result{}, cmd
}

func (s *Selection) View(width int) string {
	s.list.SetWidth(width)
	return s.list.View()
}
