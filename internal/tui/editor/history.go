package editor

import "strings"

const maxHistory = 200

// history 保存已提交的输入，供上下箭头浏览。
// cursor == len(entries) 表示停在当前草稿上，而不是某条历史。
type history struct {
	entries []string
	cursor  int
	draft   string
}

// add 记录一条提交；与上一条相同则只复位游标。
func (h *history) add(text string) {
	text = strings.TrimSpace(text)
	if text != "" && (len(h.entries) == 0 || h.entries[len(h.entries)-1] != text) {
		h.entries = append(h.entries, text)
		if over := len(h.entries) - maxHistory; over > 0 {
			h.entries = append([]string(nil), h.entries[over:]...)
		}
	}
	h.reset()
}

// seed 用持久化的历史替换当前条目，超出上限时保留最新的部分。
func (h *history) seed(entries []string) {
	h.entries = h.entries[:0]
	for _, e := range entries {
		e = strings.TrimSpace(e)
		if e == "" || (len(h.entries) > 0 && h.entries[len(h.entries)-1] == e) {
			continue
		}
		h.entries = append(h.entries, e)
	}
	if over := len(h.entries) - maxHistory; over > 0 {
		h.entries = append([]string(nil), h.entries[over:]...)
	}
	h.reset()
}

func (h *history) browsing() bool {
	return h.cursor < len(h.entries)
}

func (h *history) reset() {
	h.cursor = len(h.entries)
	h.draft = ""
}

// prev 向更早的条目移动；离开草稿时先保存 current。
func (h *history) prev(current string) (string, bool) {
	if len(h.entries) == 0 {
		return "", false
	}
	if !h.browsing() {
		h.draft = current
	}
	if h.cursor > 0 {
		h.cursor--
	}
	return h.entries[h.cursor], true
}

// next 向更新的条目移动，越过最后一条时恢复草稿。
func (h *history) next() (string, bool) {
	if !h.browsing() {
		return "", false
	}
	h.cursor++
	if h.cursor == len(h.entries) {
		draft := h.draft
		h.draft = ""
		return draft, true
	}
	return h.entries[h.cursor], true
}
