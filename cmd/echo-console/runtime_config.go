package main

import (
	"strconv"
	"strings"
	"time"
)

// runtimeConfig 是只在命令行层使用、不写入配置文件的参数。
type runtimeConfig struct {
	SubmitTimeoutSecs int
	PingTimeoutSecs   int
	ReplayDelayMS     int
	// 事件流连接的拨号、单次读、单次写超时。
	DialTimeoutSecs  int
	ReadTimeoutSecs  int
	WriteTimeoutSecs int
}

func defaultRuntimeConfig() runtimeConfig {
	return runtimeConfig{
		SubmitTimeoutSecs: 5,
		PingTimeoutSecs:   10,
		ReplayDelayMS:     0,
		DialTimeoutSecs:   15,
		ReadTimeoutSecs:   90,
		WriteTimeoutSecs:  5,
	}
}

func applyRuntimeKVOverrides(cfg runtimeConfig, overrides []string) runtimeConfig {
	for _, raw := range overrides {
		parts := strings.SplitN(raw, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		val := strings.TrimSpace(parts[1])
		switch key {
		case "submit_timeout_seconds", "submit-timeout":
			if n, err := strconv.Atoi(val); err == nil && n > 0 {
				cfg.SubmitTimeoutSecs = n
			}
		case "ping_timeout_seconds", "timeout":
			if n, err := strconv.Atoi(val); err == nil && n > 0 {
				cfg.PingTimeoutSecs = n
			}
		case "dial_timeout_seconds", "dial-timeout":
			setPositive(&cfg.DialTimeoutSecs, val)
		case "read_timeout_seconds", "read-timeout":
			setPositive(&cfg.ReadTimeoutSecs, val)
		case "write_timeout_seconds", "write-timeout":
			setPositive(&cfg.WriteTimeoutSecs, val)
		case "replay_delay_ms", "delay":
			if n, err := strconv.Atoi(val); err == nil && n >= 0 {
				cfg.ReplayDelayMS = n
			}
		}
	}
	return cfg
}

func setPositive(dst *int, raw string) {
	if n, err := strconv.Atoi(raw); err == nil && n > 0 {
		*dst = n
	}
}

func (r runtimeConfig) dialTimeout() time.Duration {
	return time.Duration(r.DialTimeoutSecs) * time.Second
}

func (r runtimeConfig) readTimeout() time.Duration {
	return time.Duration(r.ReadTimeoutSecs) * time.Second
}

func (r runtimeConfig) writeTimeout() time.Duration {
	return time.Duration(r.WriteTimeoutSecs) * time.Second
}

func (r runtimeConfig) submitTimeout() time.Duration {
	return time.Duration(r.SubmitTimeoutSecs) * time.Second
}

func (r runtimeConfig) pingTimeout() time.Duration {
	return time.Duration(r.PingTimeoutSecs) * time.Second
}

func (r runtimeConfig) replayDelay() time.Duration {
	return time.Duration(r.ReplayDelayMS) * time.Millisecond
}
