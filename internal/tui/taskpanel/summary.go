package taskpanel

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Summarize 根据工具名、参数与耗时生成一行可读描述，对相同输入结果恒定。
func Summarize(tool string, params map[string]string, elapsed time.Duration) string {
	tool = strings.TrimSpace(tool)
	switch strings.ToLower(tool) {
	case "":
		return ""
	case "command", "shell", "exec", "bash":
		cmd := firstParam(params, "command", "cmd")
		if cmd == "" {
			cmd = tool
		}
		return fmt.Sprintf("running command %s (elapsed %s)", cmd, fmtSeconds(elapsed))
	case "read", "file_read", "read_file", "view":
		return "reading path " + orUnknown(firstParam(params, "path", "file"))
	case "edit", "write", "apply_patch", "patch":
		return "editing " + orUnknown(firstParam(params, "path", "file"))
	case "search", "grep", "glob":
		return "searching " + orUnknown(firstParam(params, "query", "pattern"))
	case "fetch", "web_fetch", "http":
		return "fetching " + orUnknown(firstParam(params, "url"))
	default:
		if kv := sortedParams(params); kv != "" {
			return tool + " " + kv
		}
		return tool
	}
}

func firstParam(params map[string]string, keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(params[k]); v != "" {
			return v
		}
	}
	return ""
}

func orUnknown(v string) string {
	if v == "" {
		return "?"
	}
	return v
}

func sortedParams(params map[string]string) string {
	if len(params) == 0 {
		return ""
	}
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+params[k])
	}
	return strings.Join(parts, " ")
}

func fmtSeconds(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	return fmt.Sprintf("%ds", int64(d/time.Second))
}
