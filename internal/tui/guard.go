package tui

import (
	"fmt"
	"runtime/debug"

	"echo-console/internal/events"
	"echo-console/internal/logger"
)

// guard 在组件边界恢复 panic，记录堆栈并转为错误 toast。
func (m *Model) guard(component string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			log.WithFields(logger.Fields{"panic": r, "stack": string(debug.Stack())}).
				Errorf("component %s panicked during update", component)
			m.toasts.Push(fmt.Sprintf("%s: panic: %v", component, r), events.SeverityError, m.now)
		}
	}()
	fn()
}

// viewSection 渲染单个组件；panic 时返回占位文本，并在下一次 finish 时转为 toast。
// 同一组件连续失败只提示一次，成功渲染后重新计数。
func (m *Model) viewSection(component string, fn func() string) (out string) {
	defer func() {
		if r := recover(); r != nil {
			if !m.faulted[component] {
				m.faulted[component] = true
				log.WithFields(logger.Fields{"panic": r, "stack": string(debug.Stack())}).
					Errorf("component %s panicked during view", component)
				m.viewFaults = append(m.viewFaults, fmt.Sprintf("%s: panic: %v", component, r))
			}
			out = faultStyle.Render("[" + component + " unavailable]")
		}
	}()
	out = fn()
	delete(m.faulted, component)
	return out
}

// drainViewFaults 把上一帧记录的渲染故障转为 toast。
func (m *Model) drainViewFaults() {
	for _, text := range m.viewFaults {
		m.toasts.Push(text, events.SeverityError, m.now)
	}
	m.viewFaults = nil
}
