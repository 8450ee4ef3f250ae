package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"echo-console/internal/events"
	"echo-console/internal/logger"
	"echo-console/internal/tui/keyseq"
	"echo-console/internal/tui/modal"
)

// 对话框用途标签。
const (
	tagPalette = "palette"
	tagModel   = "model"
	tagRevert  = "revert"
)

// slashCommands 是补全弹窗中的命令，顺序即默认展示顺序。
var slashCommands = []modal.Command{
	{Name: "help", Description: "show commands"},
	{Name: "model", Description: "switch model"},
	{Name: "revert", Description: "revert to the last checkpoint"},
	{Name: "copy", Description: "copy last assistant reply"},
	{Name: "tasks", Description: "toggle task panel"},
	{Name: "clear", Description: "dismiss notifications"},
	{Name: "interrupt", Description: "interrupt running tasks"},
	{Name: "quit", Description: "exit the console"},
}

func (m *Model) openPalette() {
	m.modals.Open(modal.NewCompletion(tagPalette, slashCommands))
}

func (m *Model) openModelPicker() {
	m.modals.Open(modal.NewSelection(tagModel, "Select model", m.models, m.modelName))
}

func (m *Model) openRevertConfirm() {
	target := m.list.LastMessageID()
	if target == "" {
		m.toasts.Push("nothing to revert", events.SeverityError, m.now)
		return
	}
	m.modals.Open(modal.NewConfirm(tagRevert, "Revert to checkpoint?", "Messages after the last checkpoint will be discarded by the agent.", target))
}

// runAction 执行按键序列解析出的动作。
func (m *Model) runAction(action keyseq.Action, now time.Time) []tea.Cmd {
	switch action {
	case keyseq.ActionPalette:
		m.openPalette()
	case keyseq.ActionModelPicker:
		m.openModelPicker()
	case keyseq.ActionRevert:
		m.openRevertConfirm()
	case keyseq.ActionCopy:
		return []tea.Cmd{m.copyLastReply()}
	case keyseq.ActionToggleTasks:
		m.showTasks = !m.showTasks
	case keyseq.ActionClearToasts:
		m.toasts.Clear()
	case keyseq.ActionQuit:
		return []tea.Cmd{m.quit()}
	case keyseq.ActionLineUp:
		m.guard("messagelist", func() { m.list.ScrollUp(1) })
	case keyseq.ActionLineDown:
		m.guard("messagelist", func() { m.list.ScrollDown(1) })
	case keyseq.ActionPageUp:
		m.guard("messagelist", m.list.PageUp)
	case keyseq.ActionPageDown:
		m.guard("messagelist", m.list.PageDown)
	case keyseq.ActionTop:
		m.guard("messagelist", m.list.GotoTop)
	case keyseq.ActionBottom:
		m.guard("messagelist", m.list.GotoBottom)
	default:
		log.WithField("action", action).Warn("unbound action")
	}
	return nil
}

func (m *Model) onModalResult(res modal.Result, now time.Time) []tea.Cmd {
	switch res.Kind {
	case modal.Insert:
		m.editor.SetValue(res.Value)
	case modal.Submit:
		return m.runSlash(res.Value, now)
	case modal.Selected:
		if res.Tag == tagModel && res.Value != m.modelName {
			m.modelName = res.Value
			m.toasts.Push("model: "+res.Value, events.SeverityInfo, now)
			return []tea.Cmd{m.submit(events.Request{Kind: events.RequestModelSelect, Model: res.Value, At: now})}
		}
	case modal.Confirmed:
		if res.Tag == tagRevert {
			return []tea.Cmd{m.submit(events.Request{Kind: events.RequestCheckpointRevert, MessageID: res.Value, At: now})}
		}
	}
	return nil
}

// submitInput 处理编辑器提交：斜杠开头的是命令，其余作为聊天发送。
func (m *Model) submitInput(text string, now time.Time) []tea.Cmd {
	if strings.HasPrefix(text, "/") {
		return m.runSlash(strings.TrimPrefix(text, "/"), now)
	}
	id := uuid.NewString()
	// 本地先插入用户消息，后端以相同 id 回显时是空操作。
	m.guard("messagelist", func() {
		m.list.Add(events.ChatMessageAdded{
			ID:        id,
			Role:      events.RoleUser,
			Fragments: []events.Fragment{{Kind: events.FragmentText, Text: text}},
			At:        now,
		})
		m.list.GotoBottom()
	})
	return []tea.Cmd{
		m.submit(events.Request{ID: id, Kind: events.RequestChatSend, Text: text, Model: m.modelName, At: now}),
		m.recordHistory(text),
	}
}

// recordHistory 在后台追加历史文件；失败只记日志。
func (m *Model) recordHistory(text string) tea.Cmd {
	store, session := m.history, m.sessionID
	if store == nil {
		return nil
	}
	return func() tea.Msg {
		if err := store.Append(text, session); err != nil {
			log.WithError(err).Warn("failed to persist prompt history")
		}
		return nil
	}
}

// runSlash 执行斜杠命令；未知命令只提示，不修改状态。
func (m *Model) runSlash(input string, now time.Time) []tea.Cmd {
	name := strings.TrimSpace(input)
	if fields := strings.Fields(name); len(fields) > 0 {
		name = strings.ToLower(fields[0])
	}
	switch name {
	case "help":
		m.openPalette()
	case "model":
		m.openModelPicker()
	case "revert":
		m.openRevertConfirm()
	case "copy":
		return []tea.Cmd{m.copyLastReply()}
	case "tasks":
		m.showTasks = !m.showTasks
	case "clear":
		m.toasts.Clear()
	case "interrupt":
		return m.interrupt(now)
	case "quit", "exit":
		return []tea.Cmd{m.quit()}
	default:
		m.toasts.Push(fmt.Sprintf("unknown command: /%s", name), events.SeverityError, now)
	}
	return nil
}

// interrupt 为每个运行中的任务发出中断请求。
func (m *Model) interrupt(now time.Time) []tea.Cmd {
	ids := m.tasks.Interrupt()
	if len(ids) == 0 {
		return nil
	}
	cmds := make([]tea.Cmd, 0, len(ids))
	for _, id := range ids {
		cmds = append(cmds, m.submit(events.Request{Kind: events.RequestTaskInterrupt, MessageID: id, At: now}))
	}
	m.toasts.Push(fmt.Sprintf("interrupting %d task(s)", len(ids)), events.SeverityInfo, now)
	return cmds
}

// submit 在后台 goroutine 中带超时提交请求，结果以消息形式返回。
func (m *Model) submit(req events.Request) tea.Cmd {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	gw := m.gateway
	if gw == nil {
		m.toasts.Push(fmt.Sprintf("%s: not connected", req.Kind), events.SeverityError, m.now)
		return nil
	}
	parent, timeout := m.ctx, m.submitTimeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(parent, timeout)
		defer cancel()
		return submitResultMsg{req: req, err: gw.Submit(ctx, req)}
	}
}

func (m *Model) onSubmitResult(msg submitResultMsg) {
	fields := logger.Fields{"request_id": msg.req.ID, "kind": msg.req.Kind}
	if msg.err != nil {
		log.WithFields(fields).WithError(msg.err).Warn("submit failed")
		m.toasts.Push(fmt.Sprintf("%s failed: %v", msg.req.Kind, msg.err), events.SeverityError, m.now)
		return
	}
	log.WithFields(fields).Debug("submitted")
	if msg.req.Kind == events.RequestCheckpointRevert {
		m.toasts.Push("revert requested", events.SeveritySuccess, m.now)
	}
}

func (m *Model) copyLastReply() tea.Cmd {
	text := m.list.LastAssistantText()
	if text == "" {
		m.toasts.Push("no assistant reply to copy", events.SeverityError, m.now)
		return nil
	}
	write := m.clipboard
	return func() tea.Msg {
		return copyResultMsg{chars: len([]rune(text)), err: write(text)}
	}
}

func writeClipboard(text string) error {
	return clipboard.WriteAll(text)
}
