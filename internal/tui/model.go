package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"echo-console/internal/config"
	"echo-console/internal/events"
	"echo-console/internal/features"
	"echo-console/internal/logger"
	"echo-console/internal/tui/editor"
	"echo-console/internal/tui/keyseq"
	"echo-console/internal/tui/messagelist"
	"echo-console/internal/tui/modal"
	"echo-console/internal/tui/render"
	"echo-console/internal/tui/status"
	"echo-console/internal/tui/taskpanel"
	"echo-console/internal/tui/toast"
)

var log = logger.Named("tui")

// SubmissionGateway 抽象出站请求的提交，避免 TUI 依赖具体传输。
type SubmissionGateway interface {
	Submit(ctx context.Context, req events.Request) error
}

type Options struct {
	Config  config.Config
	Clock   func() time.Time
	Gateway SubmissionGateway
	Ingress *events.Ingress
	// Context 是程序的取消范围，后台命令在其子 context 中运行。
	Context       context.Context
	SubmitTimeout time.Duration
	// Clipboard 默认为系统剪贴板。
	Clipboard func(string) error
	// History 非空时持久化发送过的输入；InitialHistory 回填到编辑器。
	History        HistoryStore
	InitialHistory []string
	SessionID      string
}

// HistoryStore 持久化编辑器提交的文本。
type HistoryStore interface {
	Append(text, session string) error
}

// ingressMsg 包装从 ingress 取出的消息，处理后重新挂起监听。
type ingressMsg struct {
	msg events.Message
}

type ingressClosedMsg struct {
	err error
}

type submitResultMsg struct {
	req events.Request
	err error
}

type copyResultMsg struct {
	chars int
	err   error
}

// connState 是状态栏使用的连接状态。
type connState struct {
	lost    bool
	attempt int
	err     string
	retryIn time.Duration
	since   time.Time
}

// Model 是唯一的状态持有者；所有修改都发生在 Update 中。
type Model struct {
	width  int
	height int

	ctx           context.Context
	clock         func() time.Time
	gateway       SubmissionGateway
	ingress       *events.Ingress
	submitTimeout time.Duration
	clipboard     func(string) error
	history       HistoryStore
	sessionID     string

	keys      globalKeys
	leaderKey string
	modals    modal.Stack
	seq       *keyseq.Tracker
	editor    *editor.Editor
	list      *messagelist.List
	tasks     *taskpanel.Panel
	toasts    *toast.Manager

	conn       connState
	modelName  string
	models     []string
	showTasks  bool
	fullscreen bool
	animations bool
	now        time.Time
	quitting   bool

	viewFaults []string
	faulted    map[string]bool
}

func New(opts Options) *Model {
	cfg := opts.Config
	if cfg.LeaderKey == "" {
		cfg = config.Default()
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	timeout := opts.SubmitTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	clip := opts.Clipboard
	if clip == nil {
		clip = writeClipboard
	}
	info, success, errDur := cfg.Toasts.Durations()

	m := &Model{
		width:         80,
		height:        24,
		ctx:           ctx,
		clock:         clock,
		gateway:       opts.Gateway,
		ingress:       opts.Ingress,
		submitTimeout: timeout,
		clipboard:     clip,
		history:       opts.History,
		sessionID:     opts.SessionID,
		keys:          defaultGlobalKeys,
		leaderKey:     cfg.LeaderKey,
		seq:           keyseq.NewTracker(cfg.SequenceTimeout()),
		editor:        editor.New("Ask anything… (/ for commands)"),
		list:          messagelist.New(76, 10),
		tasks:         taskpanel.New(cfg.TaskRetention()),
		toasts:        toast.NewManager(toast.Config{Info: info, Success: success, Error: errDur, Max: cfg.Toasts.Max}),
		modelName:     cfg.Model,
		models:        append([]string(nil), cfg.Models...),
		showTasks:     true,
		animations:    features.Enabled(cfg.Features, features.Animations),
		now:           clock(),
		faulted:       map[string]bool{},
	}
	m.editor.Seed(opts.InitialHistory)
	m.layout()
	return m
}

func (m *Model) Init() tea.Cmd {
	return m.listenIngress()
}

// listenIngress 从 ingress 取出一条消息；每处理一条后重新挂起。
func (m *Model) listenIngress() tea.Cmd {
	if m.ingress == nil {
		return nil
	}
	q, ctx := m.ingress, m.ctx
	return func() tea.Msg {
		msg, err := q.Pop(ctx)
		if err != nil {
			return ingressClosedMsg{err: err}
		}
		return ingressMsg{msg: msg}
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		cmds = m.handle(events.KeyPress{Key: msg, At: m.clock()})
	case tea.WindowSizeMsg:
		cmds = m.handle(events.WindowResize{Width: msg.Width, Height: msg.Height, At: m.clock()})
	case tea.MouseMsg:
		cmds = m.handle(events.MouseEvent{Mouse: msg, At: m.clock()})
	case ingressMsg:
		cmds = m.handle(msg.msg)
		cmds = append(cmds, m.listenIngress())
	case events.Message:
		cmds = m.handle(msg)
	case ingressClosedMsg:
		log.WithField("err", msg.err).Info("ingress closed, quitting")
		m.quitting = true
		cmds = append(cmds, tea.Quit)
	case submitResultMsg:
		m.onSubmitResult(msg)
	case copyResultMsg:
		if msg.err != nil {
			m.toasts.Push("copy failed: "+msg.err.Error(), events.SeverityError, m.now)
		} else {
			m.toasts.Push(fmt.Sprintf("copied last reply (%d chars)", msg.chars), events.SeveritySuccess, m.now)
		}
	}
	return m.finish(cmds...)
}

// finish 是每个分支的出口：渲染故障转为 toast、重新布局并合并命令。
// 重绘由渲染器在每次 Update 后无条件执行。
func (m *Model) finish(cmds ...tea.Cmd) (tea.Model, tea.Cmd) {
	m.drainViewFaults()
	m.guard("layout", m.layout)
	return m, tea.Batch(cmds...)
}

// handle 按消息类型分派到各组件。
func (m *Model) handle(msg events.Message) []tea.Cmd {
	m.observe(msg.Time())
	now := m.now
	if at := msg.Time(); !at.IsZero() {
		now = at
	}

	switch ev := msg.(type) {
	case events.KeyPress:
		return m.handleKey(ev.Key, now)
	case events.WindowResize:
		m.guard("layout", func() { m.resize(ev.Width, ev.Height) })
	case events.MouseEvent:
		m.guard("messagelist", func() { m.list.HandleMouse(ev.Mouse) })
	case events.ChatMessageAdded:
		m.guard("messagelist", func() { m.list.Add(ev) })
	case events.ChatMessageUpdated:
		m.guard("messagelist", func() { m.list.Update(ev) })
	case events.TaskStarted:
		m.guard("taskpanel", func() { m.tasks.Start(ev) })
	case events.TaskProgress:
		m.guard("taskpanel", func() { m.tasks.Progress(ev) })
	case events.TaskCompleted:
		m.guard("taskpanel", func() { m.tasks.Complete(ev) })
	case events.ToastRequested:
		m.guard("toasts", func() { m.toasts.Push(ev.Text, ev.Severity, now) })
	case events.Tick:
		m.guard("toasts", func() { m.toasts.Expire(now) })
		m.guard("keyseq", func() { m.seq.Expire(now) })
		m.guard("messagelist", func() { m.list.Tick(now) })
		m.guard("taskpanel", func() { m.tasks.Prune(now) })
	case events.ConnectionLost:
		if !m.conn.lost {
			m.conn.since = now
		}
		m.conn.lost = true
		m.conn.attempt = ev.Attempt
		m.conn.err = ev.Err
		m.conn.retryIn = ev.RetryIn
	case events.ConnectionRestored:
		log.WithField("attempts", ev.Attempts).Info("connection restored")
		m.conn = connState{}
	default:
		log.WithField("type", events.TypeName(msg)).Warn("unhandled message dropped")
	}
	return nil
}

// handleKey 实现按键的优先级链：对话框、全局键、待完成序列、序列起始键、可打印字符快速路径、编辑器。
func (m *Model) handleKey(k tea.KeyMsg, now time.Time) []tea.Cmd {
	var cmds []tea.Cmd

	if m.modals.IsOpen() {
		res, cmd, _ := m.modals.HandleKey(k)
		cmds = append(cmds, cmd)
		return append(cmds, m.onModalResult(res, now)...)
	}

	switch {
	case key.Matches(k, m.keys.Quit):
		return []tea.Cmd{m.quit()}
	case key.Matches(k, m.keys.ToggleTask):
		m.showTasks = !m.showTasks
		return nil
	case key.Matches(k, m.keys.Fullscreen):
		m.fullscreen = !m.fullscreen
		return nil
	case key.Matches(k, m.keys.PageUp):
		m.guard("messagelist", m.list.PageUp)
		return nil
	case key.Matches(k, m.keys.PageDown):
		m.guard("messagelist", m.list.PageDown)
		return nil
	case key.Matches(k, m.keys.Interrupt):
		return m.interrupt(now)
	}

	name := k.String()
	if m.seq.Pending() {
		if action, ok := m.seq.Resolve(name, now); ok {
			return m.runAction(action, now)
		}
	}

	switch name {
	case m.leaderKey:
		m.seq.Start(keyseq.Leader, name, now)
		return nil
	case navKey:
		m.seq.Start(keyseq.Nav, name, now)
		return nil
	}

	if !k.Alt && (k.Type == tea.KeyRunes || k.Type == tea.KeySpace) {
		runes := k.Runes
		if k.Type == tea.KeySpace {
			runes = []rune{' '}
		}
		if string(runes) == "/" && m.editor.Empty() {
			m.openPalette()
			return nil
		}
		m.guard("editor", func() { m.editor.Insert(runes) })
		return nil
	}

	var (
		text      string
		submitted bool
		cmd       tea.Cmd
	)
	m.guard("editor", func() { text, submitted, cmd = m.editor.HandleKey(k) })
	cmds = append(cmds, cmd)
	if submitted {
		cmds = append(cmds, m.submitInput(text, now)...)
	}
	return cmds
}

func (m *Model) observe(at time.Time) {
	if at.After(m.now) {
		m.now = at
	}
}

func (m *Model) quit() tea.Cmd {
	m.quitting = true
	return tea.Quit
}

func (m *Model) resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	m.width = width
	m.height = height
	m.editor.SetWidth(m.innerWidth())
}

func (m *Model) innerWidth() int {
	return maxInt(10, m.width-4)
}

// layout 按当前内容计算消息列表的可用高度。
func (m *Model) layout() {
	fixed := 1 + 1 // status + hints
	if !m.fullscreen {
		fixed += m.editor.Height() + 2
		if lines := m.taskLines(); len(lines) > 0 {
			fixed += len(lines) + 2
		}
		fixed += m.toasts.Len()
		if m.modals.IsOpen() {
			fixed += lipgloss.Height(m.modals.View(m.width))
		}
	}
	listHeight := maxInt(3, m.height-fixed-2)
	m.list.SetSize(m.innerWidth(), listHeight)
}

const maxTaskLines = 8

func (m *Model) taskLines() []string {
	if !m.showTasks || m.tasks.Len() == 0 {
		return nil
	}
	lines := render.LinesToStrings(m.tasks.Lines(m.innerWidth()))
	if len(lines) > maxTaskLines {
		lines = lines[len(lines)-maxTaskLines:]
	}
	return lines
}

var (
	paneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#5E6472")).
			Padding(0, 1)
	paneTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	hintsStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#7D7A85"))
	faultStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#BF616A"))
)

func renderPane(title, body string, width int) string {
	content := body
	if strings.TrimSpace(title) != "" {
		content = lipgloss.JoinVertical(lipgloss.Left, paneTitleStyle.Render(title), body)
	}
	return paneStyle.Width(maxInt(10, width-2)).Render(content)
}

func (m *Model) renderHints() string {
	hint := m.leaderKey + " leader • " + navKey + " nav • / commands • enter send • alt+enter newline • ctrl+c quit"
	return hintsStyle.Render(render.Truncate(hint, m.width))
}

// View 拼装整帧；每个组件单独防护，单个组件失败不影响其余部分。
func (m *Model) View() string {
	sections := []string{
		renderPane("", m.viewSection("messagelist", m.list.View), m.width),
	}
	if !m.fullscreen {
		if tasks := m.viewSection("taskpanel", func() string { return strings.Join(m.taskLines(), "\n") }); tasks != "" {
			sections = append(sections, renderPane("Tasks", tasks, m.width))
		}
		if toasts := m.viewSection("toasts", func() string { return m.toasts.View(m.width) }); toasts != "" {
			sections = append(sections, toasts)
		}
		if m.modals.IsOpen() {
			sections = append(sections, m.viewSection("modal", func() string { return m.modals.View(m.width) }))
		}
		sections = append(sections, renderPane("", m.viewSection("editor", m.editor.View), m.width))
	}
	sections = append(sections, m.viewSection("status", func() string { return status.Render(m.statusSnapshot(), m.width) }))
	sections = append(sections, m.renderHints())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *Model) statusSnapshot() status.Snapshot {
	return status.Snapshot{
		Now:          m.now,
		Model:        m.modelName,
		Running:      m.tasks.Running(),
		WorkingSince: m.tasks.EarliestRunning(),
		Lost:         m.conn.lost,
		Attempt:      m.conn.attempt,
		RetryIn:      m.conn.retryIn,
		LastError:    m.conn.err,
		LostSince:    m.conn.since,
		Pending:      m.seq.Prefix(),
		Animations:   m.animations,
	}
}

// Snapshot 是 Model 可比较的状态摘要，供测试断言。
type Snapshot struct {
	Width       int
	Height      int
	Modal       string
	Sequence    keyseq.Kind
	EditorValue string
	Messages    int
	Pending     int
	Tasks       int
	Running     int
	Toasts      int
	Lost        bool
	Attempt     int
	Model       string
	ShowTasks   bool
	Fullscreen  bool
	Pinned      bool
	Now         time.Time
	Quitting    bool
}

func (m *Model) Snapshot() Snapshot {
	s := Snapshot{
		Width:       m.width,
		Height:      m.height,
		Sequence:    m.seq.State().Kind,
		EditorValue: m.editor.Value(),
		Messages:    m.list.Len(),
		Pending:     m.list.Pending(),
		Tasks:       m.tasks.Len(),
		Running:     m.tasks.Running(),
		Toasts:      m.toasts.Len(),
		Lost:        m.conn.lost,
		Attempt:     m.conn.attempt,
		Model:       m.modelName,
		ShowTasks:   m.showTasks,
		Fullscreen:  m.fullscreen,
		Pinned:      m.list.Pinned(),
		Now:         m.now,
		Quitting:    m.quitting,
	}
	if active := m.modals.Active(); active != nil {
		s.Modal = active.Tag()
	}
	return s
}

// Messages 返回消息列表的拷贝。
func (m *Model) Messages() []messagelist.ChatMessage { return m.list.Messages() }

// Tasks 返回任务面板的拷贝。
func (m *Model) Tasks() []taskpanel.ToolTask { return m.tasks.Tasks() }

// Toasts 返回当前 toast 的拷贝。
func (m *Model) Toasts() []toast.Toast { return m.toasts.Items() }

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
