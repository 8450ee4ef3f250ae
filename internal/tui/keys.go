package tui

import "github.com/charmbracelet/bubbles/key"

// globalKeys 与焦点无关，优先于按键序列与编辑器匹配。
type globalKeys struct {
	Quit       key.Binding
	ToggleTask key.Binding
	Fullscreen key.Binding
	PageUp     key.Binding
	PageDown   key.Binding
	Interrupt  key.Binding
}

var defaultGlobalKeys = globalKeys{
	Quit:       key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	ToggleTask: key.NewBinding(key.WithKeys("ctrl+t"), key.WithHelp("ctrl+t", "tasks")),
	Fullscreen: key.NewBinding(key.WithKeys("ctrl+f"), key.WithHelp("ctrl+f", "fullscreen")),
	PageUp:     key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "page up")),
	PageDown:   key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("pgdown", "page down")),
	Interrupt:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "interrupt")),
}

// navKey 是 Ctrl+B 导航序列的起始键。
const navKey = "ctrl+b"
