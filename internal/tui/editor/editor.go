// Package editor 封装单个输入框：可打印字符直接插入，回车提交，上下键浏览历史。
package editor

import (
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
)

const maxHeight = 6

// Editor 持有 textarea 与提交历史。
type Editor struct {
	ta      textarea.Model
	history history
}

// New 创建默认单行、按内容扩展到最多 6 行的编辑器。
func New(placeholder string) *Editor {
	ta := textarea.New()
	ta.Placeholder = placeholder
	ta.Prompt = "› "
	ta.CharLimit = 0
	ta.SetWidth(80)
	ta.SetHeight(1)
	ta.ShowLineNumbers = false
	ta.Focus()
	// 静态光标，不产生闪烁消息。
	ta.Cursor.SetMode(cursor.CursorStatic)
	return &Editor{ta: ta}
}

// Insert 直接插入字符，不经过 textarea 的按键映射。
func (e *Editor) Insert(runes []rune) {
	if len(runes) == 0 {
		return
	}
	e.history.reset()
	e.ta.InsertString(string(runes))
	e.fitHeight()
}

// HandleKey 处理非可打印按键。回车且内容非空时返回提交文本并清空输入。
func (e *Editor) HandleKey(msg tea.KeyMsg) (submitted string, ok bool, cmd tea.Cmd) {
	switch msg.String() {
	case "enter":
		text := strings.TrimSpace(e.ta.Value())
		if text == "" {
			return "", false, nil
		}
		e.history.add(text)
		e.Reset()
		return text, true, nil
	case "alt+enter", "ctrl+j":
		e.ta.InsertString("\n")
		e.fitHeight()
		return "", false, nil
	case "up":
		if e.ta.Line() == 0 {
			if text, moved := e.history.prev(e.ta.Value()); moved {
				e.setValue(text)
			}
			return "", false, nil
		}
	case "down":
		if e.ta.Line() >= e.ta.LineCount()-1 {
			if text, moved := e.history.next(); moved {
				e.setValue(text)
			}
			return "", false, nil
		}
	}
	e.ta, cmd = e.ta.Update(msg)
	e.fitHeight()
	return "", false, cmd
}

// Seed 回填启动前保存的提交历史。
func (e *Editor) Seed(entries []string) { e.history.seed(entries) }

func (e *Editor) Value() string { return e.ta.Value() }

func (e *Editor) Empty() bool { return e.ta.Value() == "" }

// SetValue 替换内容并把光标移到末尾。
func (e *Editor) SetValue(text string) {
	e.history.reset()
	e.setValue(text)
}

func (e *Editor) setValue(text string) {
	e.ta.SetValue(text)
	e.ta.CursorEnd()
	e.fitHeight()
}

func (e *Editor) Reset() {
	e.ta.Reset()
	e.fitHeight()
}

func (e *Editor) SetWidth(width int) {
	if width < 4 {
		width = 4
	}
	e.ta.SetWidth(width)
}

// Height 返回当前可见行数。
func (e *Editor) Height() int { return e.ta.Height() }

func (e *Editor) View() string { return e.ta.View() }

func (e *Editor) fitHeight() {
	lines := strings.Count(e.ta.Value(), "\n") + 1
	if lines > maxHeight {
		lines = maxHeight
	}
	if e.ta.Height() != lines {
		e.ta.SetHeight(lines)
	}
}
