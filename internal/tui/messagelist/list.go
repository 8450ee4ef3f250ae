// Package messagelist 保存会话消息，处理乱序与重复投递，并渲染到可滚动视口。
package messagelist

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"echo-console/internal/events"
	"echo-console/internal/logger"
	"echo-console/internal/tui/render"
)

var log = logger.Named("messagelist")

// ChatMessage 是列表中的一条消息，会话期间不会被删除。
type ChatMessage struct {
	ID        string
	Seq       uint64
	Role      events.Role
	Fragments []events.Fragment
	At        time.Time
	Tool      string
	Revision  uint64
}

// Text 拼接所有正文片段。
func (m ChatMessage) Text() string {
	var b strings.Builder
	for _, f := range m.Fragments {
		if f.Kind == events.FragmentText || f.Kind == "" {
			b.WriteString(f.Text)
		}
	}
	return b.String()
}

// List 按插入顺序保存消息。未知 id 的更新先缓存，直到消息出现或下一个 Tick。
type List struct {
	messages []*ChatMessage
	index    map[string]*ChatMessage
	seq      uint64

	pending      map[string][]events.ChatMessageUpdated
	pendingOrder []string

	// 每条消息已应用的 EventID，以及最近一次无键更新的指纹。
	applied     map[string]map[string]struct{}
	lastUnkeyed map[string]string

	vp     render.Viewport
	width  int
	height int
	pinned bool
}

func New(width, height int) *List {
	return &List{
		index:       map[string]*ChatMessage{},
		pending:     map[string][]events.ChatMessageUpdated{},
		applied:     map[string]map[string]struct{}{},
		lastUnkeyed: map[string]string{},
		vp:          render.NewViewport(width, height),
		width:       width,
		height:      height,
		pinned:      true,
	}
}

// Add 追加新消息；重复的 id 是空操作。返回是否新增。
func (l *List) Add(ev events.ChatMessageAdded) bool {
	if _, ok := l.index[ev.ID]; ok {
		return false
	}
	l.seq++
	msg := &ChatMessage{
		ID:        ev.ID,
		Seq:       l.seq,
		Role:      ev.Role,
		Fragments: cloneFragments(ev.Fragments),
		At:        ev.At,
		Tool:      ev.Tool,
	}
	l.messages = append(l.messages, msg)
	l.index[ev.ID] = msg
	if buffered, ok := l.pending[ev.ID]; ok {
		delete(l.pending, ev.ID)
		l.removePendingOrder(ev.ID)
		for _, up := range buffered {
			l.apply(msg, up)
		}
	}
	l.refresh()
	return true
}

// Update 修改已有消息；未知 id 的更新被缓存。返回是否立即生效。
func (l *List) Update(ev events.ChatMessageUpdated) bool {
	msg, ok := l.index[ev.ID]
	if !ok {
		if _, seen := l.pending[ev.ID]; !seen {
			l.pendingOrder = append(l.pendingOrder, ev.ID)
		}
		l.pending[ev.ID] = append(l.pending[ev.ID], ev)
		return false
	}
	if !l.apply(msg, ev) {
		return false
	}
	l.refresh()
	return true
}

// Tick 丢弃仍未找到消息的缓存更新，返回丢弃数量。
func (l *List) Tick(now time.Time) int {
	dropped := 0
	for _, id := range l.pendingOrder {
		n := len(l.pending[id])
		dropped += n
		log.WithFields(logger.Fields{"message_id": id, "updates": n, "tick": now.Format(time.RFC3339Nano)}).Warn("dropping updates for unknown message")
	}
	if dropped > 0 {
		l.pending = map[string][]events.ChatMessageUpdated{}
		l.pendingOrder = nil
	}
	return dropped
}

func (l *List) removePendingOrder(id string) {
	for i, pid := range l.pendingOrder {
		if pid == id {
			l.pendingOrder = append(l.pendingOrder[:i], l.pendingOrder[i+1:]...)
			return
		}
	}
}

// Pending 返回缓存中的更新数量。
func (l *List) Pending() int {
	n := 0
	for _, ups := range l.pending {
		n += len(ups)
	}
	return n
}

// apply 去重后合并片段，返回是否产生修改。
// 去重依次看 Revision、EventID；两者都没有时，与上一次无键更新内容完全相同视为重投。
func (l *List) apply(msg *ChatMessage, ev events.ChatMessageUpdated) bool {
	switch {
	case ev.Revision > 0:
		if ev.Revision <= msg.Revision {
			return false
		}
		msg.Revision = ev.Revision
	case ev.EventID != "":
		seen := l.applied[msg.ID]
		if _, dup := seen[ev.EventID]; dup {
			return false
		}
		if seen == nil {
			seen = map[string]struct{}{}
			l.applied[msg.ID] = seen
		}
		seen[ev.EventID] = struct{}{}
	default:
		fp := fingerprint(ev)
		if last, ok := l.lastUnkeyed[msg.ID]; ok && last == fp {
			log.WithField("message_id", msg.ID).Debug("ignoring redelivered update")
			return false
		}
		l.lastUnkeyed[msg.ID] = fp
	}
	applyFragments(msg, ev)
	return true
}

func applyFragments(msg *ChatMessage, ev events.ChatMessageUpdated) {
	if ev.Replace {
		msg.Fragments = cloneFragments(ev.Fragments)
		return
	}
	for _, frag := range ev.Fragments {
		msg.Fragments = mergeFragment(msg.Fragments, frag)
	}
}

// fingerprint 描述一次无键更新的完整内容。
func fingerprint(ev events.ChatMessageUpdated) string {
	var b strings.Builder
	if ev.Replace {
		b.WriteString("r")
	} else {
		b.WriteString("a")
	}
	for _, f := range ev.Fragments {
		b.WriteByte(0)
		b.WriteString(f.ID)
		b.WriteByte(0)
		b.WriteString(string(f.Kind))
		b.WriteByte(0)
		b.WriteString(f.Tool)
		b.WriteByte(0)
		b.WriteString(f.Text)
	}
	return b.String()
}

func mergeFragment(frags []events.Fragment, frag events.Fragment) []events.Fragment {
	if frag.Kind == "" {
		frag.Kind = events.FragmentText
	}
	if frag.ID != "" {
		for i := range frags {
			if frags[i].ID == frag.ID {
				frags[i] = frag
				return frags
			}
		}
		return append(frags, frag)
	}
	if frag.Kind == events.FragmentText && len(frags) > 0 {
		last := &frags[len(frags)-1]
		if last.Kind == events.FragmentText || last.Kind == "" {
			last.Text += frag.Text
			return frags
		}
	}
	return append(frags, frag)
}

func cloneFragments(in []events.Fragment) []events.Fragment {
	if len(in) == 0 {
		return nil
	}
	out := make([]events.Fragment, len(in))
	copy(out, in)
	return out
}

// Messages 返回消息拷贝，按 Seq 升序。
func (l *List) Messages() []ChatMessage {
	out := make([]ChatMessage, 0, len(l.messages))
	for _, m := range l.messages {
		c := *m
		c.Fragments = cloneFragments(m.Fragments)
		out = append(out, c)
	}
	return out
}

func (l *List) Get(id string) (ChatMessage, bool) {
	m, ok := l.index[id]
	if !ok {
		return ChatMessage{}, false
	}
	c := *m
	c.Fragments = cloneFragments(m.Fragments)
	return c, true
}

func (l *List) Len() int { return len(l.messages) }

// LastAssistantText 返回最近一条助手消息的正文，用于复制。
func (l *List) LastAssistantText() string {
	for i := len(l.messages) - 1; i >= 0; i-- {
		if l.messages[i].Role == events.RoleAssistant {
			if text := strings.TrimSpace(l.messages[i].Text()); text != "" {
				return text
			}
		}
	}
	return ""
}

// LastMessageID 返回最后一条消息的 id，列表为空时为空串。
func (l *List) LastMessageID() string {
	if len(l.messages) == 0 {
		return ""
	}
	return l.messages[len(l.messages)-1].ID
}

// Pinned 报告视图是否跟随底部。
func (l *List) Pinned() bool { return l.pinned }

func (l *List) SetSize(width, height int) {
	if width == l.width && height == l.height {
		return
	}
	l.width, l.height = width, height
	l.vp.Resize(width, height)
	l.refresh()
}

func (l *List) ScrollUp(n int) {
	l.vp.LineUp(n)
	l.pinned = false
}

func (l *List) ScrollDown(n int) {
	l.vp.LineDown(n)
	l.pinned = l.vp.AtBottom()
}

func (l *List) PageUp() {
	l.vp.ViewUp()
	l.pinned = false
}

func (l *List) PageDown() {
	l.vp.ViewDown()
	l.pinned = l.vp.AtBottom()
}

func (l *List) GotoTop() {
	l.vp.GotoTop()
	l.pinned = false
}

func (l *List) GotoBottom() {
	l.vp.GotoBottom()
	l.pinned = true
}

// HandleMouse 处理滚轮：向上滚动取消跟随，滚到底部恢复跟随。
func (l *List) HandleMouse(msg tea.MouseMsg) {
	before := l.vp.YOffset
	l.vp.HandleMouse(msg)
	switch {
	case l.vp.YOffset < before:
		l.pinned = false
	case l.vp.AtBottom():
		l.pinned = true
	}
}

// YOffset 返回视口当前的滚动位置。
func (l *List) YOffset() int { return l.vp.YOffset }

func (l *List) View() string { return l.vp.View() }

// Lines 返回全部渲染行（不受视口裁剪）。
func (l *List) Lines() []render.Line {
	return render.RenderEntries(l.entries(), l.width)
}

func (l *List) refresh() {
	lines := render.LinesToStrings(l.Lines())
	l.vp.SetLines(lines, l.pinned)
}

func (l *List) entries() []render.Entry {
	entries := make([]render.Entry, 0, len(l.messages))
	for _, m := range l.messages {
		kind := entryKind(m)
		var text strings.Builder
		flush := func() {
			if text.Len() > 0 {
				entries = append(entries, render.Entry{Kind: kind, Text: text.String()})
				text.Reset()
			}
		}
		for _, f := range m.Fragments {
			if f.Kind == events.FragmentTool {
				flush()
				label := f.Tool
				if label == "" {
					label = "tool"
				}
				entries = append(entries, render.Entry{Kind: render.EntryTool, Text: label + ": " + f.Text})
				continue
			}
			text.WriteString(f.Text)
		}
		flush()
	}
	return entries
}

func entryKind(m *ChatMessage) render.EntryKind {
	if m.Tool != "" {
		return render.EntryTool
	}
	switch m.Role {
	case events.RoleUser:
		return render.EntryUser
	case events.RoleSystem:
		return render.EntrySystem
	default:
		return render.EntryAssistant
	}
}
