// Package taskpanel 跟踪工具/任务的进度，并渲染为进度条列表。
package taskpanel

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"echo-console/internal/events"
	"echo-console/internal/tui/render"
)

// Status 是任务的生命周期状态。
type Status string

const (
	Running   Status = "running"
	Completed Status = "completed"
	Failed    Status = "failed"
)

// Terminal 报告状态是否为终态。
func (s Status) Terminal() bool { return s == Completed || s == Failed }

const maxSummaryLines = 3

// DefaultRetention 是终态任务保留在面板上的时长。
const DefaultRetention = 5 * time.Second

// ToolTask 是面板中的一项。
type ToolTask struct {
	ID          string
	Name        string
	Status      Status
	Percent     int
	StartedAt   time.Time
	CompletedAt time.Time
	Summary     []string
}

// Panel 按创建顺序保存任务。
type Panel struct {
	retention time.Duration
	order     []string
	tasks     map[string]*ToolTask
}

func New(retention time.Duration) *Panel {
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &Panel{retention: retention, tasks: map[string]*ToolTask{}}
}

// Start 在 0% 创建任务；已存在的 id 不做处理。
func (p *Panel) Start(ev events.TaskStarted) {
	if _, ok := p.tasks[ev.ID]; ok {
		return
	}
	name := ev.Name
	if name == "" {
		name = ev.ID
	}
	p.insert(&ToolTask{ID: ev.ID, Name: name, Status: Running, StartedAt: ev.At})
}

// Progress 更新进度，百分比只增不减；未知 id 按乱序到达隐式创建。
func (p *Panel) Progress(ev events.TaskProgress) {
	task, ok := p.tasks[ev.ID]
	if !ok {
		task = &ToolTask{ID: ev.ID, Name: ev.ID, Status: Running, StartedAt: ev.At}
		p.insert(task)
	}
	if task.Status.Terminal() {
		return
	}
	task.Percent = clampPercent(ev.Percent, task.Percent)

	var summary []string
	if line := Summarize(ev.Tool, ev.Params, ev.At.Sub(task.StartedAt)); line != "" {
		summary = append(summary, line)
	}
	for _, note := range strings.Split(strings.TrimSpace(ev.Note), "\n") {
		if note = strings.TrimSpace(note); note != "" {
			summary = append(summary, note)
		}
	}
	if len(summary) > maxSummaryLines {
		summary = summary[:maxSummaryLines]
	}
	if len(summary) > 0 {
		task.Summary = summary
	}
}

// Complete 设置终态；成功时进度置为 100%。
func (p *Panel) Complete(ev events.TaskCompleted) {
	task, ok := p.tasks[ev.ID]
	if !ok {
		task = &ToolTask{ID: ev.ID, Name: ev.ID, StartedAt: ev.At}
		p.insert(task)
	}
	if task.Status.Terminal() {
		return
	}
	task.CompletedAt = ev.At
	if ev.Success {
		task.Status = Completed
		task.Percent = 100
		return
	}
	task.Status = Failed
}

// Prune 删除完成时间早于 now-retention 的终态任务，返回删除数量。
func (p *Panel) Prune(now time.Time) int {
	kept := p.order[:0]
	removed := 0
	for _, id := range p.order {
		task := p.tasks[id]
		if task.Status.Terminal() && now.Sub(task.CompletedAt) >= p.retention {
			delete(p.tasks, id)
			removed++
			continue
		}
		kept = append(kept, id)
	}
	p.order = kept
	return removed
}

// Interrupt 返回所有运行中任务的 id。
func (p *Panel) Interrupt() []string {
	var ids []string
	for _, id := range p.order {
		if p.tasks[id].Status == Running {
			ids = append(ids, id)
		}
	}
	return ids
}

// Tasks 返回任务拷贝，按创建顺序。
func (p *Panel) Tasks() []ToolTask {
	out := make([]ToolTask, 0, len(p.order))
	for _, id := range p.order {
		task := *p.tasks[id]
		task.Summary = append([]string(nil), task.Summary...)
		out = append(out, task)
	}
	return out
}

func (p *Panel) Get(id string) (ToolTask, bool) {
	task, ok := p.tasks[id]
	if !ok {
		return ToolTask{}, false
	}
	return *task, true
}

// Running 返回运行中的任务数。
func (p *Panel) Running() int {
	n := 0
	for _, task := range p.tasks {
		if task.Status == Running {
			n++
		}
	}
	return n
}

// EarliestRunning 返回最早开始的运行中任务的开始时间。
func (p *Panel) EarliestRunning() time.Time {
	var earliest time.Time
	for _, id := range p.order {
		task := p.tasks[id]
		if task.Status != Running {
			continue
		}
		if earliest.IsZero() || task.StartedAt.Before(earliest) {
			earliest = task.StartedAt
		}
	}
	return earliest
}

func (p *Panel) Len() int { return len(p.order) }

func (p *Panel) insert(task *ToolTask) {
	p.tasks[task.ID] = task
	p.order = append(p.order, task.ID)
}

func clampPercent(next, last int) int {
	if next > 100 {
		next = 100
	}
	if next < last {
		return last
	}
	return next
}

var (
	nameStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4")).Bold(true)
	barStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#88C0D0"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#00AA00")).Bold(true)
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#CC0000")).Bold(true)
	detailStyle = lipgloss.NewStyle().Faint(true)
)

const barWidth = 10

// Lines 将每个任务渲染为一行进度条，后跟缩进的摘要。
func (p *Panel) Lines(width int) []render.Line {
	if width <= 0 {
		return nil
	}
	var out []render.Line
	for _, id := range p.order {
		task := p.tasks[id]
		icon, iconStyle := "▸ ", nameStyle
		switch task.Status {
		case Completed:
			icon, iconStyle = "✓ ", okStyle
		case Failed:
			icon, iconStyle = "✗ ", errStyle
		}
		filled := task.Percent * barWidth / 100
		bar := "[" + strings.Repeat("#", filled) + strings.Repeat(".", barWidth-filled) + "]"
		label := fmt.Sprintf(" %3d%%", task.Percent)
		if task.Status.Terminal() {
			label = " " + string(task.Status)
		}
		out = append(out, render.Line{Spans: []render.Span{
			{Text: icon, Style: iconStyle},
			{Text: task.Name + " ", Style: nameStyle},
			{Text: bar, Style: barStyle},
			{Text: label, Style: detailStyle},
		}})
		for _, line := range task.Summary {
			out = append(out, render.Line{Spans: []render.Span{
				{Text: "  └ ", Style: detailStyle},
				{Text: line, Style: detailStyle},
			}})
		}
	}
	for i := range out {
		plain := out[i].Plain()
		if len(plain) > 0 && render.Truncate(plain, width) != plain {
			out[i] = render.Line{Spans: []render.Span{{Text: render.Truncate(plain, width), Style: detailStyle}}}
		}
	}
	return out
}

// View 返回面板文本；无任务时为空串。
func (p *Panel) View(width int) string {
	lines := p.Lines(width)
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(render.LinesToStrings(lines), "\n")
}
