package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"nhooyr.io/websocket"

	"echo-console/internal/config"
	"echo-console/internal/events"
)

func pingMain(root rootArgs, args []string) {
	if err := runPing(root, args, os.Stdout); err != nil {
		log.Fatalf("ping failed: %v", err)
	}
}

// runPing 连接事件流并等待第一帧，用于确认地址与令牌可用。
func runPing(root rootArgs, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("ping", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var cfgPath string
	var urlOverride string
	var tokenOverride string
	var overrides stringSlice
	var timeoutSeconds int

	fs.StringVar(&cfgPath, "config", "", "Path to config file (default ~/.echo/console.toml)")
	fs.StringVar(&urlOverride, "url", "", "Override stream url")
	fs.StringVar(&tokenOverride, "token", "", "Override bearer token (prefer console.toml)")
	fs.Var(&overrides, "c", "Override config value key=value (repeatable)")
	fs.IntVar(&timeoutSeconds, "timeout", 0, "Timeout seconds (default from runtime config)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	all := prependOverrides(root.overrides, []string(overrides))
	cfg = config.ApplyKVOverrides(cfg, all)

	endpoint := strings.TrimSpace(urlOverride)
	if endpoint == "" {
		endpoint = strings.TrimSpace(cfg.URL)
	}
	if endpoint == "" {
		return fmt.Errorf("missing url: set %s or configure url in ~/.echo/console.toml", config.EnvURL)
	}
	token := strings.TrimSpace(tokenOverride)
	if token == "" {
		token = strings.TrimSpace(cfg.Token)
	}

	timeout := applyRuntimeKVOverrides(defaultRuntimeConfig(), all).pingTimeout()
	if timeoutSeconds > 0 {
		timeout = time.Duration(timeoutSeconds) * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	opts := &websocket.DialOptions{HTTPHeader: http.Header{}}
	if token != "" {
		opts.HTTPHeader.Set("Authorization", "Bearer "+token)
	}
	start := time.Now()
	conn, resp, err := websocket.Dial(ctx, endpoint, opts)
	if err != nil {
		if resp != nil && resp.Body != nil {
			_ = resp.Body.Close()
		}
		if resp != nil {
			return fmt.Errorf("dial %s: %s: %w", endpoint, resp.Status, err)
		}
		return fmt.Errorf("dial %s: %w", endpoint, err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "ping done")

	_, data, err := conn.Read(ctx)
	if err != nil {
		return fmt.Errorf("read first frame: %w", err)
	}
	var kind string
	msg, err := events.Decode(data, time.Now())
	switch {
	case errors.Is(err, events.ErrSkip):
		kind = "handshake"
	case err != nil:
		return fmt.Errorf("first frame: %w", err)
	default:
		kind = events.TypeName(msg)
	}
	_, _ = fmt.Fprintf(out, "ok: %s in %s\n", kind, time.Since(start).Round(time.Millisecond))
	return nil
}
