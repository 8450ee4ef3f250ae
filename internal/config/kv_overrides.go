package config

import (
	"strconv"
	"strings"
)

// ApplyKVOverrides applies free-form -c key=value overrides.
// 无法解析的值会被忽略，保留原配置。
func ApplyKVOverrides(cfg Config, overrides []string) Config {
	if len(overrides) == 0 {
		return cfg
	}
	for _, raw := range overrides {
		parts := strings.SplitN(raw, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		val := strings.TrimSpace(parts[1])
		switch key {
		case "url":
			cfg.URL = val
		case "token":
			cfg.Token = val
		case "session":
			cfg.SessionID = val
		case "model":
			cfg.Model = val
		case "models":
			cfg.Models = splitCSV(val)
		case "leader_key":
			if val != "" {
				cfg.LeaderKey = val
			}
		case "metrics_addr":
			cfg.MetricsAddr = val
		case "log_path":
			cfg.LogPath = val
		case "log_level":
			if val != "" {
				cfg.LogLevel = strings.ToLower(val)
			}
		case "tick_interval_ms":
			setPositiveInt(&cfg.TickIntervalMS, val)
		case "sequence_timeout_ms":
			setPositiveInt(&cfg.SequenceTimeoutMS, val)
		case "ingress_capacity":
			setPositiveInt(&cfg.IngressCapacity, val)
		case "outbox_capacity":
			setPositiveInt(&cfg.OutboxCapacity, val)
		case "task_retention_secs":
			setPositiveInt(&cfg.TaskRetentionSecs, val)
		case "toasts.info_ms":
			setPositiveInt(&cfg.Toasts.InfoMS, val)
		case "toasts.success_ms":
			setPositiveInt(&cfg.Toasts.SuccessMS, val)
		case "toasts.error_ms":
			setPositiveInt(&cfg.Toasts.ErrorMS, val)
		case "toasts.max":
			setPositiveInt(&cfg.Toasts.Max, val)
		case "reconnect.base_ms":
			setPositiveInt(&cfg.Reconnect.BaseMS, val)
		case "reconnect.cap_ms":
			setPositiveInt(&cfg.Reconnect.CapMS, val)
		case "reconnect.jitter":
			if f, err := strconv.ParseFloat(val, 64); err == nil && f >= 0 && f < 1 {
				cfg.Reconnect.Jitter = f
			}
		default:
			if name, ok := strings.CutPrefix(key, "features."); ok && name != "" {
				b, err := strconv.ParseBool(val)
				if err != nil {
					continue
				}
				if cfg.Features == nil {
					cfg.Features = map[string]bool{}
				}
				cfg.Features[name] = b
			}
		}
	}
	return cfg
}

func setPositiveInt(dst *int, raw string) {
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return
	}
	*dst = n
}

func splitCSV(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
