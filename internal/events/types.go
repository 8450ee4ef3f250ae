package events

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Role 标识聊天消息的发送方。
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Severity 决定提示条的样式与存活时长。
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
)

// FragmentKind 区分正文片段与工具片段。
type FragmentKind string

const (
	FragmentText FragmentKind = "text"
	FragmentTool FragmentKind = "tool"
)

// Fragment 是聊天消息的一段内容。ID 为空表示无键片段，追加时会拼接到末尾文本上。
type Fragment struct {
	ID   string
	Kind FragmentKind
	Text string
	Tool string
}

// Message 是进入 UI 循环的唯一输入类型，变体集合是封闭的。
type Message interface {
	Time() time.Time
	isMessage()
}

type KeyPress struct {
	Key tea.KeyMsg
	At  time.Time
}

type WindowResize struct {
	Width  int
	Height int
	At     time.Time
}

type MouseEvent struct {
	Mouse tea.MouseMsg
	At    time.Time
}

type TaskStarted struct {
	ID   string
	Name string
	At   time.Time
}

// TaskProgress 中的 Percent 超出 [0,100] 时由面板钳制；Params 用于生成摘要。
type TaskProgress struct {
	ID      string
	Percent int
	Note    string
	Tool    string
	Params  map[string]string
	At      time.Time
}

type TaskCompleted struct {
	ID      string
	Success bool
	At      time.Time
}

type ChatMessageAdded struct {
	ID        string
	Role      Role
	Fragments []Fragment
	Tool      string
	At        time.Time
}

// ChatMessageUpdated 追加或替换消息片段。
// 投递至少一次：Revision 或 EventID 存在时按它们去重，都没有时按内容指纹去重。
type ChatMessageUpdated struct {
	ID        string
	Fragments []Fragment
	Replace   bool
	Revision  uint64
	EventID   string
	At        time.Time
}

type ToastRequested struct {
	Text     string
	Severity Severity
	At       time.Time
}

type Tick struct {
	Now time.Time
}

// ConnectionLost 只驱动状态栏，不会变成提示条。
type ConnectionLost struct {
	Err     string
	Attempt int
	RetryIn time.Duration
	At      time.Time
}

type ConnectionRestored struct {
	Attempts int
	At       time.Time
}

func (m KeyPress) Time() time.Time           { return m.At }
func (m WindowResize) Time() time.Time       { return m.At }
func (m MouseEvent) Time() time.Time         { return m.At }
func (m TaskStarted) Time() time.Time        { return m.At }
func (m TaskProgress) Time() time.Time       { return m.At }
func (m TaskCompleted) Time() time.Time      { return m.At }
func (m ChatMessageAdded) Time() time.Time   { return m.At }
func (m ChatMessageUpdated) Time() time.Time { return m.At }
func (m ToastRequested) Time() time.Time     { return m.At }
func (m Tick) Time() time.Time               { return m.Now }
func (m ConnectionLost) Time() time.Time     { return m.At }
func (m ConnectionRestored) Time() time.Time { return m.At }

func (KeyPress) isMessage()           {}
func (WindowResize) isMessage()       {}
func (MouseEvent) isMessage()         {}
func (TaskStarted) isMessage()        {}
func (TaskProgress) isMessage()       {}
func (TaskCompleted) isMessage()      {}
func (ChatMessageAdded) isMessage()   {}
func (ChatMessageUpdated) isMessage() {}
func (ToastRequested) isMessage()     {}
func (Tick) isMessage()               {}
func (ConnectionLost) isMessage()     {}
func (ConnectionRestored) isMessage() {}

// Droppable 报告消息在背压下是否可以丢弃。只有 Tick 与鼠标事件可以。
func Droppable(msg Message) bool {
	switch msg.(type) {
	case Tick, MouseEvent:
		return true
	default:
		return false
	}
}

// TypeName 返回消息在线协议与日志中使用的类型名。
func TypeName(msg Message) string {
	switch msg.(type) {
	case KeyPress:
		return TypeKey
	case WindowResize:
		return TypeResize
	case MouseEvent:
		return TypeMouse
	case TaskStarted:
		return TypeTaskStarted
	case TaskProgress:
		return TypeTaskProgress
	case TaskCompleted:
		return TypeTaskCompleted
	case ChatMessageAdded:
		return TypeMessageAdded
	case ChatMessageUpdated:
		return TypeMessageUpdated
	case ToastRequested:
		return TypeToast
	case Tick:
		return TypeTick
	case ConnectionLost:
		return TypeConnectionLost
	case ConnectionRestored:
		return TypeConnectionRestored
	default:
		return "unknown"
	}
}

// RequestKind 表示发往后端的请求类型。
type RequestKind string

const (
	RequestChatSend         RequestKind = "chat.send"
	RequestCheckpointRevert RequestKind = "checkpoint.revert"
	RequestModelSelect      RequestKind = "model.select"
	RequestTaskInterrupt    RequestKind = "task.interrupt"
)

// Request 是 UI 发往后端的出站请求，由 bridge 编码到流连接上。
type Request struct {
	ID        string      `json:"id"`
	Kind      RequestKind `json:"kind"`
	SessionID string      `json:"session_id,omitempty"`
	MessageID string      `json:"message_id,omitempty"`
	Text      string      `json:"text,omitempty"`
	Model     string      `json:"model,omitempty"`
	At        time.Time   `json:"at"`
}
