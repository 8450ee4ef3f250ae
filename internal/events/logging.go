package events

import (
	"bytes"
	"encoding/json"
	"strings"

	"echo-console/internal/logger"
)

// log 复用全局 logger，标记事件组件。
var log = logger.Named("events")

// encodePayload 把载荷转成便于阅读的文本：字符串原样输出，其余对象输出缩进 JSON。
func encodePayload(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		trimmed := strings.TrimSpace(s)
		if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
			unescaped := strings.ReplaceAll(trimmed, `\n`, "\n")
			var buf bytes.Buffer
			if err := json.Indent(&buf, []byte(unescaped), "", "  "); err == nil {
				return buf.String()
			}
		}
		return s
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return ""
	}
	return string(data)
}
