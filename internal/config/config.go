package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

const (
	EnvURL     = "ECHO_CONSOLE_URL"
	EnvToken   = "ECHO_CONSOLE_TOKEN"
	EnvSession = "ECHO_CONSOLE_SESSION"
)

// Toasts 控制提示条的存活时长与容量。
type Toasts struct {
	InfoMS    int `toml:"info_ms"`
	SuccessMS int `toml:"success_ms"`
	ErrorMS   int `toml:"error_ms"`
	Max       int `toml:"max"`
}

// Reconnect 是流连接断开后的退避参数。
type Reconnect struct {
	BaseMS int     `toml:"base_ms"`
	CapMS  int     `toml:"cap_ms"`
	Jitter float64 `toml:"jitter"`
}

// Config is the only persisted config file schema.
type Config struct {
	URL       string   `toml:"url"`
	Token     string   `toml:"token"`
	SessionID string   `toml:"session"`
	Model     string   `toml:"model"`
	Models    []string `toml:"models"`
	LeaderKey string   `toml:"leader_key"`

	TickIntervalMS    int `toml:"tick_interval_ms"`
	SequenceTimeoutMS int `toml:"sequence_timeout_ms"`
	IngressCapacity   int `toml:"ingress_capacity"`
	OutboxCapacity    int `toml:"outbox_capacity"`
	TaskRetentionSecs int `toml:"task_retention_secs"`

	Toasts    Toasts    `toml:"toasts"`
	Reconnect Reconnect `toml:"reconnect"`

	MetricsAddr string          `toml:"metrics_addr"`
	LogPath     string          `toml:"log_path"`
	LogLevel    string          `toml:"log_level"`
	Features    map[string]bool `toml:"features"`

	Source string `toml:"-"`
}

func Default() Config {
	return Config{
		Model:             "glm4.6",
		Models:            []string{"glm4.6", "claude-sonnet-4", "gpt-5"},
		LeaderKey:         "ctrl+x",
		LogLevel:          "info",
		TickIntervalMS:    100,
		SequenceTimeoutMS: 1000,
		IngressCapacity:   256,
		OutboxCapacity:    32,
		TaskRetentionSecs: 5,
		Toasts: Toasts{
			InfoMS:    4000,
			SuccessMS: 4000,
			ErrorMS:   8000,
			Max:       5,
		},
		Reconnect: Reconnect{
			BaseMS: 1000,
			CapMS:  30000,
			Jitter: 0.2,
		},
	}
}

func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".echo", "console.toml")
}

func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultPath()
	}
	if path == "" {
		return cfg, errors.New("config path is empty and $HOME is not set")
	}
	cfg.Source = path

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			applyEnv(&cfg)
			return cfg, nil
		}
		return cfg, err
	}

	if err := toml.Unmarshal(content, &cfg); err != nil {
		return cfg, err
	}
	applyEnv(&cfg)
	return cfg.normalized(), nil
}

func applyEnv(cfg *Config) {
	if env := strings.TrimSpace(os.Getenv(EnvURL)); env != "" {
		cfg.URL = env
	}
	if env := strings.TrimSpace(os.Getenv(EnvToken)); env != "" {
		cfg.Token = env
	}
	if env := strings.TrimSpace(os.Getenv(EnvSession)); env != "" {
		cfg.SessionID = env
	}
}

// normalized 把文件里写成 0 或负数的字段回退到默认值。
func (c Config) normalized() Config {
	def := Default()
	if c.TickIntervalMS <= 0 {
		c.TickIntervalMS = def.TickIntervalMS
	}
	if c.SequenceTimeoutMS <= 0 {
		c.SequenceTimeoutMS = def.SequenceTimeoutMS
	}
	if c.IngressCapacity <= 0 {
		c.IngressCapacity = def.IngressCapacity
	}
	if c.OutboxCapacity <= 0 {
		c.OutboxCapacity = def.OutboxCapacity
	}
	if c.TaskRetentionSecs <= 0 {
		c.TaskRetentionSecs = def.TaskRetentionSecs
	}
	if c.Toasts.InfoMS <= 0 {
		c.Toasts.InfoMS = def.Toasts.InfoMS
	}
	if c.Toasts.SuccessMS <= 0 {
		c.Toasts.SuccessMS = def.Toasts.SuccessMS
	}
	if c.Toasts.ErrorMS <= 0 {
		c.Toasts.ErrorMS = def.Toasts.ErrorMS
	}
	if c.Toasts.Max <= 0 {
		c.Toasts.Max = def.Toasts.Max
	}
	if c.Reconnect.BaseMS <= 0 {
		c.Reconnect.BaseMS = def.Reconnect.BaseMS
	}
	if c.Reconnect.CapMS <= 0 {
		c.Reconnect.CapMS = def.Reconnect.CapMS
	}
	if c.Reconnect.Jitter < 0 || c.Reconnect.Jitter >= 1 {
		c.Reconnect.Jitter = def.Reconnect.Jitter
	}
	if strings.TrimSpace(c.LogLevel) == "" {
		c.LogLevel = def.LogLevel
	}
	if strings.TrimSpace(c.LeaderKey) == "" {
		c.LeaderKey = def.LeaderKey
	}
	if strings.TrimSpace(c.Model) == "" {
		c.Model = def.Model
	}
	if len(c.Models) == 0 {
		c.Models = def.Models
	}
	return c
}

// Feature 返回 features 表里的开关；未配置时用 fallback。
func (c Config) Feature(name string, fallback bool) bool {
	if c.Features == nil {
		return fallback
	}
	v, ok := c.Features[name]
	if !ok {
		return fallback
	}
	return v
}

func (c Config) TickInterval() time.Duration {
	return time.Duration(c.TickIntervalMS) * time.Millisecond
}

func (c Config) SequenceTimeout() time.Duration {
	return time.Duration(c.SequenceTimeoutMS) * time.Millisecond
}

func (c Config) TaskRetention() time.Duration {
	return time.Duration(c.TaskRetentionSecs) * time.Second
}

func (t Toasts) Durations() (info, success, errDur time.Duration) {
	return time.Duration(t.InfoMS) * time.Millisecond,
		time.Duration(t.SuccessMS) * time.Millisecond,
		time.Duration(t.ErrorMS) * time.Millisecond
}

func (r Reconnect) Base() time.Duration { return time.Duration(r.BaseMS) * time.Millisecond }
func (r Reconnect) Cap() time.Duration  { return time.Duration(r.CapMS) * time.Millisecond }
