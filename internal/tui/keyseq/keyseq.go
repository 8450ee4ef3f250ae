// Package keyseq 实现两段式按键序列：前导键后在限定时间内按下第二个键。
package keyseq

import (
	"time"
)

// Kind 标识待完成序列的类型。
type Kind int

const (
	Idle Kind = iota
	Leader
	Nav
)

func (k Kind) String() string {
	switch k {
	case Leader:
		return "leader"
	case Nav:
		return "nav"
	default:
		return "idle"
	}
}

// Action 是序列解析出的动作。
type Action string

const (
	ActionPalette     Action = "palette"
	ActionModelPicker Action = "model_picker"
	ActionRevert      Action = "revert"
	ActionCopy        Action = "copy"
	ActionToggleTasks Action = "toggle_tasks"
	ActionClearToasts Action = "clear_toasts"
	ActionQuit        Action = "quit"

	ActionLineUp   Action = "line_up"
	ActionLineDown Action = "line_down"
	ActionPageUp   Action = "page_up"
	ActionPageDown Action = "page_down"
	ActionTop      Action = "top"
	ActionBottom   Action = "bottom"
)

// DefaultTimeout 是第二个键的等待时长。
const DefaultTimeout = time.Second

var bindings = map[Kind]map[string]Action{
	Leader: {
		"h": ActionPalette,
		"m": ActionModelPicker,
		"r": ActionRevert,
		"y": ActionCopy,
		"t": ActionToggleTasks,
		"c": ActionClearToasts,
		"q": ActionQuit,
	},
	Nav: {
		"k":    ActionLineUp,
		"up":   ActionLineUp,
		"j":    ActionLineDown,
		"down": ActionLineDown,
		"u":    ActionPageUp,
		"d":    ActionPageDown,
		"g":    ActionTop,
		"G":    ActionBottom,
	},
}

// Lookup 返回 kind 下 key 绑定的动作。
func Lookup(kind Kind, key string) (Action, bool) {
	a, ok := bindings[kind][key]
	return a, ok
}

// State 是当前待完成的序列；Kind 为 Idle 时 Deadline 无意义。
type State struct {
	Kind     Kind
	Deadline time.Time
}

// Tracker 同一时刻至多保存一个待完成序列。
type Tracker struct {
	timeout time.Duration
	state   State
	prefix  string
}

// NewTracker 创建序列跟踪器，timeout<=0 时使用 DefaultTimeout。
func NewTracker(timeout time.Duration) *Tracker {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Tracker{timeout: timeout}
}

// Start 开始一个新序列，覆盖任何未完成的序列。
// prefix 是触发键的名称，用于状态栏提示。
func (t *Tracker) Start(kind Kind, prefix string, now time.Time) {
	t.state = State{Kind: kind, Deadline: now.Add(t.timeout)}
	t.prefix = prefix
}

// Pending 报告是否存在待完成序列。
func (t *Tracker) Pending() bool { return t.state.Kind != Idle }

func (t *Tracker) State() State { return t.state }

// Prefix 返回待完成序列的触发键名，空闲时为空串。
func (t *Tracker) Prefix() string {
	if !t.Pending() {
		return ""
	}
	return t.prefix
}

// Resolve 用第二个键完成序列；无论结果如何都回到 Idle。
// 仅当未超时且键已绑定时返回 ok。
func (t *Tracker) Resolve(key string, now time.Time) (Action, bool) {
	st := t.state
	t.Reset()
	if st.Kind == Idle || now.After(st.Deadline) {
		return "", false
	}
	return Lookup(st.Kind, key)
}

// Expire 在超时后重置，返回是否发生了重置。
func (t *Tracker) Expire(now time.Time) bool {
	if t.state.Kind == Idle || !now.After(t.state.Deadline) {
		return false
	}
	t.Reset()
	return true
}

func (t *Tracker) Reset() {
	t.state = State{}
	t.prefix = ""
}
