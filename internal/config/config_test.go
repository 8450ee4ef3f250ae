package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv(EnvURL, "")
	t.Setenv(EnvToken, "")
	t.Setenv(EnvSession, "")
}

func TestDefault_Timings(t *testing.T) {
	cfg := Default()
	if cfg.SequenceTimeout() != time.Second {
		t.Fatalf("SequenceTimeout = %v, want 1s", cfg.SequenceTimeout())
	}
	if cfg.TaskRetention() != 5*time.Second {
		t.Fatalf("TaskRetention = %v, want 5s", cfg.TaskRetention())
	}
	info, success, errDur := cfg.Toasts.Durations()
	if info != 4*time.Second || success != 4*time.Second || errDur != 8*time.Second {
		t.Fatalf("toast durations = %v/%v/%v", info, success, errDur)
	}
	if cfg.Reconnect.Base() != time.Second || cfg.Reconnect.Cap() != 30*time.Second {
		t.Fatalf("reconnect = %v..%v", cfg.Reconnect.Base(), cfg.Reconnect.Cap())
	}
	if cfg.LeaderKey != "ctrl+x" {
		t.Fatalf("LeaderKey = %q", cfg.LeaderKey)
	}
}

func TestLoad_MissingFile_UsesDefaultsAndEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvURL, "ws://env.test/stream")
	t.Setenv(EnvSession, "sess-env")

	path := filepath.Join(t.TempDir(), "console.toml")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Source != path {
		t.Fatalf("cfg.Source = %q, want %q", cfg.Source, path)
	}
	if cfg.URL != "ws://env.test/stream" || cfg.SessionID != "sess-env" {
		t.Fatalf("env not applied: %+v", cfg)
	}
	if cfg.Model != "glm4.6" {
		t.Fatalf("cfg.Model = %q, want default", cfg.Model)
	}
}

func TestLoad_FromTOML(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "console.toml")
	if err := os.WriteFile(path, []byte(`
url = "ws://example.test/stream"
token = "test-token"
model = "custom"
leader_key = "ctrl+g"
ingress_capacity = 8

[toasts]
error_ms = 2000

[features]
mouse = false
`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.URL != "ws://example.test/stream" || cfg.Token != "test-token" {
		t.Fatalf("unexpected url/token: %+v", cfg)
	}
	if cfg.Model != "custom" || cfg.LeaderKey != "ctrl+g" || cfg.IngressCapacity != 8 {
		t.Fatalf("unexpected fields: %+v", cfg)
	}
	if cfg.Toasts.ErrorMS != 2000 || cfg.Toasts.InfoMS != 4000 {
		t.Fatalf("toasts = %+v", cfg.Toasts)
	}
	if cfg.Feature("mouse", true) {
		t.Fatalf("features.mouse should be false")
	}
	if !cfg.Feature("alt_screen", true) {
		t.Fatalf("unset feature should use fallback")
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "console.toml")
	if err := os.WriteFile(path, []byte(`url = "ws://file.test"`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	t.Setenv(EnvURL, "ws://env.test")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.URL != "ws://env.test" {
		t.Fatalf("cfg.URL = %q", cfg.URL)
	}
}

func TestLoad_InvalidTOML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "console.toml")
	if err := os.WriteFile(path, []byte("url = "), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestApplyKVOverrides(t *testing.T) {
	cases := []struct {
		name  string
		kv    []string
		check func(Config) bool
	}{
		{"model", []string{"model=override-model"}, func(c Config) bool { return c.Model == "override-model" }},
		{"session", []string{"session=abc"}, func(c Config) bool { return c.SessionID == "abc" }},
		{"models csv", []string{"models=a, b,,c"}, func(c Config) bool { return len(c.Models) == 3 && c.Models[2] == "c" }},
		{"int", []string{"ingress_capacity=16"}, func(c Config) bool { return c.IngressCapacity == 16 }},
		{"bad int ignored", []string{"ingress_capacity=-1"}, func(c Config) bool { return c.IngressCapacity == 256 }},
		{"nested", []string{"toasts.max=2"}, func(c Config) bool { return c.Toasts.Max == 2 }},
		{"jitter", []string{"reconnect.jitter=0.1"}, func(c Config) bool { return c.Reconnect.Jitter == 0.1 }},
		{"feature", []string{"features.mouse=false"}, func(c Config) bool { return !c.Feature("mouse", true) }},
		{"bad feature ignored", []string{"features.mouse=maybe"}, func(c Config) bool { return c.Feature("mouse", true) }},
		{"log level", []string{"log_level=DEBUG"}, func(c Config) bool { return c.LogLevel == "debug" }},
		{"no equals", []string{"model"}, func(c Config) bool { return c.Model == "glm4.6" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ApplyKVOverrides(Default(), tc.kv)
			if !tc.check(got) {
				t.Fatalf("ApplyKVOverrides(%v) = %+v", tc.kv, got)
			}
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "console.toml")
	cfg := Default()
	cfg.URL = "ws://saved.test"
	cfg.Features = map[string]bool{"metrics": true}
	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("perm = %v, want 0600", info.Mode().Perm())
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.URL != "ws://saved.test" || !got.Feature("metrics", false) {
		t.Fatalf("round trip lost fields: %+v", got)
	}
}

func TestInitRefusesOverwrite(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "console.toml")
	if _, err := Init(path, Default(), false); err != nil {
		t.Fatalf("first Init: %v", err)
	}
	cfg := Default()
	cfg.URL = "ws://second.test"
	if _, err := Init(path, cfg, false); !errors.Is(err, ErrExists) {
		t.Fatalf("second Init err = %v, want ErrExists", err)
	}
	if _, err := Init(path, cfg, true); err != nil {
		t.Fatalf("forced Init: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.URL != "ws://second.test" {
		t.Fatalf("URL = %q, want forced value", got.URL)
	}
}
