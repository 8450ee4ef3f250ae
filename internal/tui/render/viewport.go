package render

import (
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// Viewport 包装 bubbles viewport，缓存上次的行，避免重复 SetContent。
type Viewport struct {
	viewport.Model
	lastLines []string
}

func NewViewport(width, height int) Viewport {
	vp := viewport.New(maxInt(1, width), maxInt(1, height))
	vp.MouseWheelEnabled = true
	return Viewport{Model: vp}
}

// Resize 更新宽高；宽度变化时清空缓存，下次 SetLines 重新排版。
func (v *Viewport) Resize(width, height int) {
	if v == nil {
		return
	}
	width, height = maxInt(1, width), maxInt(1, height)
	if v.Width != width {
		v.lastLines = nil
	}
	v.Width = width
	v.Height = height
}

// SetLines 更新内容；follow 为真时滚到底部。
func (v *Viewport) SetLines(lines []string, follow bool) {
	if v == nil {
		return
	}
	if !slices.Equal(lines, v.lastLines) {
		v.lastLines = append([]string(nil), lines...)
		v.SetContent(strings.Join(lines, "\n"))
	}
	if follow {
		v.GotoBottom()
	}
}

// HandleMouse 代理鼠标滚轮。
func (v *Viewport) HandleMouse(msg tea.MouseMsg) {
	if v == nil {
		return
	}
	v.Model, _ = v.Model.Update(msg)
}

func (v *Viewport) LineCount() int {
	if v == nil {
		return 0
	}
	return len(v.lastLines)
}
