// Package status 由任务与连接状态推导出状态栏，自身不保存状态。
package status

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"echo-console/internal/tui/render"
)

// State 枚举状态栏可显示的状态。
type State int

const (
	Idle State = iota
	Working
	Reconnecting
)

func (s State) String() string {
	switch s {
	case Working:
		return "working"
	case Reconnecting:
		return "reconnecting"
	default:
		return "idle"
	}
}

// Snapshot 是渲染状态栏需要的全部输入。
type Snapshot struct {
	Now          time.Time
	Model        string
	Running      int
	WorkingSince time.Time

	Lost      bool
	Attempt   int
	RetryIn   time.Duration
	LastError string
	LostSince time.Time

	// Pending 是未完成的按键序列提示，例如 "ctrl+x"。
	Pending    string
	Animations bool
}

// Derive 连接断开优先于任务进行中。
func Derive(s Snapshot) State {
	switch {
	case s.Lost:
		return Reconnecting
	case s.Running > 0:
		return Working
	default:
		return Idle
	}
}

var (
	workingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4")).Bold(true)
	lostStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFB454")).Bold(true)
	idleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#7D7A85"))
	hintStyle    = lipgloss.NewStyle().Faint(true)
	pendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#EBCB8B"))
)

// Render 把快照渲染成一行，超出 width 时截断。
func Render(s Snapshot, width int) string {
	spans := Spans(s)
	return render.LinesToStrings([]render.Line{{Spans: clampSpans(spans, width)}})[0]
}

// Spans 返回未截断的片段，便于测试检查纯文本。
func Spans(s Snapshot) []render.Span {
	var spans []render.Span
	switch Derive(s) {
	case Reconnecting:
		spans = append(spans, render.Span{Text: "! Reconnecting", Style: lostStyle})
		detail := fmt.Sprintf("attempt %d", s.Attempt)
		if s.RetryIn > 0 {
			detail += fmt.Sprintf(", retry in %s", fmtElapsedCompact(uint64(s.RetryIn.Round(time.Second)/time.Second)))
		}
		if !s.LostSince.IsZero() && s.Now.After(s.LostSince) {
			detail += fmt.Sprintf(", down %s", fmtElapsedCompact(uint64(s.Now.Sub(s.LostSince)/time.Second)))
		}
		spans = append(spans, render.Span{Text: " (" + detail + ")", Style: hintStyle})
		if s.LastError != "" {
			spans = append(spans, render.Span{Text: " " + s.LastError, Style: hintStyle})
		}
	case Working:
		spans = append(spans, render.Span{Text: spinnerFrame(s) + " Working", Style: workingStyle})
		elapsed := uint64(0)
		if !s.WorkingSince.IsZero() && s.Now.After(s.WorkingSince) {
			elapsed = uint64(s.Now.Sub(s.WorkingSince) / time.Second)
		}
		hint := fmt.Sprintf(" (%s • esc to interrupt)", fmtElapsedCompact(elapsed))
		spans = append(spans, render.Span{Text: hint, Style: hintStyle})
		if s.Running > 1 {
			spans = append(spans, render.Span{Text: fmt.Sprintf(" %d tasks", s.Running), Style: hintStyle})
		}
	default:
		spans = append(spans, render.Span{Text: "Ready", Style: idleStyle})
	}
	if s.Model != "" {
		spans = append(spans, render.Span{Text: " · " + s.Model, Style: idleStyle})
	}
	if s.Pending != "" {
		spans = append(spans, render.Span{Text: " · " + s.Pending + " …", Style: pendingStyle})
	}
	return spans
}

// Plain 返回去掉样式后的状态栏文本。
func Plain(s Snapshot, width int) string {
	return render.Line{Spans: clampSpans(Spans(s), width)}.Plain()
}

func spinnerFrame(s Snapshot) string {
	if !s.Animations {
		return "•"
	}
	frames := []string{"-", "\\", "|", "/"}
	return frames[int(s.Now.UnixMilli()/120)%len(frames)]
}

// fmtElapsedCompact 将秒数格式化为紧凑字符串。
func fmtElapsedCompact(elapsedSecs uint64) string {
	switch {
	case elapsedSecs < 60:
		return fmt.Sprintf("%ds", elapsedSecs)
	case elapsedSecs < 3600:
		return fmt.Sprintf("%dm %02ds", elapsedSecs/60, elapsedSecs%60)
	default:
		hours := elapsedSecs / 3600
		minutes := (elapsedSecs % 3600) / 60
		return fmt.Sprintf("%dh %02dm %02ds", hours, minutes, elapsedSecs%60)
	}
}

func clampSpans(spans []render.Span, width int) []render.Span {
	if width <= 0 {
		return nil
	}
	remaining := width
	out := make([]render.Span, 0, len(spans))
	for _, sp := range spans {
		if remaining <= 0 {
			break
		}
		tw := runewidth.StringWidth(sp.Text)
		if tw <= remaining {
			out = append(out, sp)
			remaining -= tw
			continue
		}
		if text := render.Truncate(sp.Text, remaining); text != "" {
			sp.Text = text
			out = append(out, sp)
		}
		remaining = 0
	}
	return out
}
