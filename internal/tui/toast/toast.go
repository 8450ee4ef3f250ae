// Package toast 维护短暂的通知气泡，按到期时间清理。
package toast

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"echo-console/internal/events"
	"echo-console/internal/tui/render"
)

// Toast 是一条已入队的通知。
type Toast struct {
	ID        string
	Text      string
	Severity  events.Severity
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Config 定义各级别的显示时长与最大条数。
type Config struct {
	Info    time.Duration
	Success time.Duration
	Error   time.Duration
	Max     int
}

func (c Config) withDefaults() Config {
	if c.Info <= 0 {
		c.Info = 4 * time.Second
	}
	if c.Success <= 0 {
		c.Success = 4 * time.Second
	}
	if c.Error <= 0 {
		c.Error = 8 * time.Second
	}
	if c.Max <= 0 {
		c.Max = 5
	}
	return c
}

func (c Config) duration(sev events.Severity) time.Duration {
	switch sev {
	case events.SeverityError:
		return c.Error
	case events.SeveritySuccess:
		return c.Success
	default:
		return c.Info
	}
}

// Manager 按到达顺序保存 toast，不去重。
type Manager struct {
	cfg    Config
	items  []Toast
	nextID uint64
}

// NewManager 创建 toast 管理器，零值字段使用默认配置。
func NewManager(cfg Config) *Manager {
	return &Manager{cfg: cfg.withDefaults()}
}

// Push 追加一条 toast，超过上限时淘汰最旧的。
func (m *Manager) Push(text string, sev events.Severity, now time.Time) Toast {
	m.nextID++
	t := Toast{
		ID:        fmt.Sprintf("toast-%d", m.nextID),
		Text:      text,
		Severity:  sev,
		CreatedAt: now,
		ExpiresAt: now.Add(m.cfg.duration(sev)),
	}
	m.items = append(m.items, t)
	if over := len(m.items) - m.cfg.Max; over > 0 {
		m.items = append([]Toast(nil), m.items[over:]...)
	}
	return t
}

// Expire 删除 ExpiresAt <= now 的 toast，返回删除数量。
func (m *Manager) Expire(now time.Time) int {
	kept := m.items[:0]
	removed := 0
	for _, t := range m.items {
		if !t.ExpiresAt.After(now) {
			removed++
			continue
		}
		kept = append(kept, t)
	}
	m.items = kept
	return removed
}

// Items 返回当前 toast 的拷贝。
func (m *Manager) Items() []Toast {
	out := make([]Toast, len(m.items))
	copy(out, m.items)
	return out
}

func (m *Manager) Len() int { return len(m.items) }

func (m *Manager) Clear() { m.items = nil }

var (
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#88C0D0"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#A3BE8C"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#BF616A")).Bold(true)
)

func icon(sev events.Severity) (string, lipgloss.Style) {
	switch sev {
	case events.SeverityError:
		return "✗ ", errorStyle
	case events.SeveritySuccess:
		return "✓ ", successStyle
	default:
		return "ℹ ", infoStyle
	}
}

// Lines 渲染为纯文本行，每条 toast 一行。
func (m *Manager) Lines(width int) []render.Line {
	if len(m.items) == 0 || width <= 0 {
		return nil
	}
	lines := make([]render.Line, 0, len(m.items))
	for _, t := range m.items {
		prefix, style := icon(t.Severity)
		text := strings.ReplaceAll(t.Text, "\n", " ")
		lines = append(lines, render.Line{Spans: []render.Span{{Text: render.Truncate(prefix+text, width), Style: style}}})
	}
	return lines
}

// View 返回带样式的多行文本；无 toast 时为空串。
func (m *Manager) View(width int) string {
	lines := m.Lines(width)
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(render.LinesToStrings(lines), "\n")
}
