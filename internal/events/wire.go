package events

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// 在线协议中的类型名。
const (
	TypeTaskStarted        = "task.started"
	TypeTaskProgress       = "task.progress"
	TypeTaskCompleted      = "task.completed"
	TypeMessageAdded       = "message.added"
	TypeMessageUpdated     = "message.updated"
	TypeToast              = "toast"
	TypeConnectionLost     = "connection.lost"
	TypeConnectionRestored = "connection.restored"
	TypeTick               = "tick"
	TypeKey                = "key"
	TypeResize             = "resize"
	TypeMouse              = "mouse"

	TypeServerHello     = "server.hello"
	TypeServerKeepalive = "server.keepalive"
)

var (
	// ErrMalformed 表示帧无法解码成合法消息；调用方记录日志并丢弃。
	ErrMalformed = errors.New("malformed event")
	// ErrSkip 表示帧合法但不需要进入 UI（握手、保活）。
	ErrSkip = errors.New("skip event")
)

type envelope struct {
	Type    string    `json:"type"`
	At      time.Time `json:"at"`
	EventID string    `json:"event_id"`

	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Percent   *int              `json:"percent"`
	Note      string            `json:"note"`
	Tool      string            `json:"tool"`
	Params    map[string]string `json:"params"`
	Success   *bool             `json:"success"`
	Role      string            `json:"role"`
	Text      string            `json:"text"`
	Fragments []wireFragment    `json:"fragments"`
	Replace   bool              `json:"replace"`
	Revision  uint64            `json:"revision"`
	Severity  string            `json:"severity"`
	Error     string            `json:"error"`
	Attempt   int               `json:"attempt"`
	Attempts  int               `json:"attempts"`
	RetryInMS int64             `json:"retry_in_ms"`
	Key       string            `json:"key"`
	Width     int               `json:"width"`
	Height    int               `json:"height"`
	X         int               `json:"x"`
	Y         int               `json:"y"`
	Button    string            `json:"button"`
	Action    string            `json:"action"`
}

// wireFragment 接受纯字符串或 {id, kind, text, tool} 对象。
type wireFragment Fragment

func (f *wireFragment) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		*f = wireFragment{Kind: FragmentText, Text: text}
		return nil
	}
	var raw struct {
		ID   string `json:"id"`
		Kind string `json:"kind"`
		Text string `json:"text"`
		Tool string `json:"tool"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	kind := FragmentKind(strings.TrimSpace(raw.Kind))
	switch kind {
	case "":
		kind = FragmentText
	case FragmentText, FragmentTool:
	default:
		return fmt.Errorf("unknown fragment kind %q", raw.Kind)
	}
	*f = wireFragment{ID: raw.ID, Kind: kind, Text: raw.Text, Tool: raw.Tool}
	return nil
}

// Decode 把一帧 JSON 解成 Message。帧里没有 at 时使用 now。
func Decode(data []byte, now time.Time) (Message, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	at := env.At
	if at.IsZero() {
		at = now
	}
	switch env.Type {
	case TypeServerHello, TypeServerKeepalive:
		return nil, ErrSkip
	case TypeTaskStarted:
		if env.ID == "" {
			return nil, malformed(env.Type, "missing id")
		}
		return TaskStarted{ID: env.ID, Name: env.Name, At: at}, nil
	case TypeTaskProgress:
		if env.ID == "" {
			return nil, malformed(env.Type, "missing id")
		}
		if env.Percent == nil {
			return nil, malformed(env.Type, "missing percent")
		}
		return TaskProgress{
			ID:      env.ID,
			Percent: *env.Percent,
			Note:    env.Note,
			Tool:    env.Tool,
			Params:  env.Params,
			At:      at,
		}, nil
	case TypeTaskCompleted:
		if env.ID == "" {
			return nil, malformed(env.Type, "missing id")
		}
		success := true
		if env.Success != nil {
			success = *env.Success
		}
		return TaskCompleted{ID: env.ID, Success: success, At: at}, nil
	case TypeMessageAdded:
		if env.ID == "" {
			return nil, malformed(env.Type, "missing id")
		}
		role, err := parseRole(env.Role)
		if err != nil {
			return nil, malformed(env.Type, err.Error())
		}
		return ChatMessageAdded{
			ID:        env.ID,
			Role:      role,
			Fragments: fragmentsOf(env),
			Tool:      env.Tool,
			At:        at,
		}, nil
	case TypeMessageUpdated:
		if env.ID == "" {
			return nil, malformed(env.Type, "missing id")
		}
		return ChatMessageUpdated{
			ID:        env.ID,
			Fragments: fragmentsOf(env),
			Replace:   env.Replace,
			Revision:  env.Revision,
			EventID:   env.EventID,
			At:        at,
		}, nil
	case TypeToast:
		if strings.TrimSpace(env.Text) == "" {
			return nil, malformed(env.Type, "missing text")
		}
		return ToastRequested{Text: env.Text, Severity: parseSeverity(env.Severity), At: at}, nil
	case TypeConnectionLost:
		return ConnectionLost{
			Err:     env.Error,
			Attempt: env.Attempt,
			RetryIn: time.Duration(env.RetryInMS) * time.Millisecond,
			At:      at,
		}, nil
	case TypeConnectionRestored:
		return ConnectionRestored{Attempts: env.Attempts, At: at}, nil
	case TypeTick:
		return Tick{Now: at}, nil
	case TypeKey:
		if env.Key == "" {
			return nil, malformed(env.Type, "missing key")
		}
		return KeyPress{Key: ParseKey(env.Key), At: at}, nil
	case TypeResize:
		if env.Width <= 0 || env.Height <= 0 {
			return nil, malformed(env.Type, "non-positive size")
		}
		return WindowResize{Width: env.Width, Height: env.Height, At: at}, nil
	case TypeMouse:
		mouse, err := parseMouse(env)
		if err != nil {
			return nil, malformed(env.Type, err.Error())
		}
		return MouseEvent{Mouse: mouse, At: at}, nil
	case "":
		return nil, fmt.Errorf("%w: missing type", ErrMalformed)
	default:
		return nil, fmt.Errorf("%w: unknown type %q", ErrMalformed, env.Type)
	}
}

var mouseButtons = map[string]tea.MouseButton{
	"":           tea.MouseButtonNone,
	"none":       tea.MouseButtonNone,
	"left":       tea.MouseButtonLeft,
	"middle":     tea.MouseButtonMiddle,
	"right":      tea.MouseButtonRight,
	"wheel_up":   tea.MouseButtonWheelUp,
	"wheel_down": tea.MouseButtonWheelDown,
}

var mouseActions = map[string]tea.MouseAction{
	"":        tea.MouseActionPress,
	"press":   tea.MouseActionPress,
	"release": tea.MouseActionRelease,
	"motion":  tea.MouseActionMotion,
}

// parseMouse 只接受滚轮与基本按键；坐标不能为负。
func parseMouse(env envelope) (tea.MouseMsg, error) {
	button, ok := mouseButtons[strings.ToLower(strings.TrimSpace(env.Button))]
	if !ok {
		return tea.MouseMsg{}, fmt.Errorf("unknown button %q", env.Button)
	}
	action, ok := mouseActions[strings.ToLower(strings.TrimSpace(env.Action))]
	if !ok {
		return tea.MouseMsg{}, fmt.Errorf("unknown action %q", env.Action)
	}
	if env.X < 0 || env.Y < 0 {
		return tea.MouseMsg{}, errors.New("negative position")
	}
	return tea.MouseMsg{X: env.X, Y: env.Y, Button: button, Action: action}, nil
}

// Encode 把出站请求编码成一帧 JSON。
func Encode(req Request) ([]byte, error) {
	if req.ID == "" || req.Kind == "" {
		return nil, errors.New("request id and kind are required")
	}
	return json.Marshal(req)
}

func malformed(typ, reason string) error {
	return fmt.Errorf("%w: %s: %s", ErrMalformed, typ, reason)
}

func fragmentsOf(env envelope) []Fragment {
	out := make([]Fragment, 0, len(env.Fragments)+1)
	for _, f := range env.Fragments {
		out = append(out, Fragment(f))
	}
	if len(out) == 0 && env.Text != "" {
		out = append(out, Fragment{Kind: FragmentText, Text: env.Text})
	}
	return out
}

func parseRole(raw string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(raw))) {
	case "", RoleAssistant:
		return RoleAssistant, nil
	case RoleUser:
		return RoleUser, nil
	case RoleSystem:
		return RoleSystem, nil
	default:
		return "", fmt.Errorf("unknown role %q", raw)
	}
}

func parseSeverity(raw string) Severity {
	switch Severity(strings.ToLower(strings.TrimSpace(raw))) {
	case SeveritySuccess:
		return SeveritySuccess
	case SeverityError:
		return SeverityError
	default:
		return SeverityInfo
	}
}
