package events

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// keyByName 由 bubbletea 自己的按键名反推，保证与 KeyMsg.String() 一致。
var keyByName = func() map[string]tea.KeyType {
	m := make(map[string]tea.KeyType)
	for k := tea.KeyType(-128); k <= 127; k++ {
		if k == tea.KeyRunes {
			continue
		}
		name := tea.Key{Type: k}.String()
		if name == "" || name == " " {
			continue
		}
		if _, dup := m[name]; !dup {
			m[name] = k
		}
	}
	return m
}()

// ParseKey 把 "ctrl+x"、"alt+enter"、"a" 这类名字还原为 tea.KeyMsg，
// 用于回放文件与测试。
func ParseKey(name string) tea.KeyMsg {
	if name == " " || name == "space" {
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	if k, ok := keyByName[name]; ok {
		return tea.KeyMsg{Type: k}
	}
	alt := false
	if rest, ok := strings.CutPrefix(name, "alt+"); ok && rest != "" {
		alt = true
		name = rest
		if k, ok := keyByName[name]; ok {
			return tea.KeyMsg{Type: k, Alt: true}
		}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(name), Alt: alt}
}
