package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"echo-console/internal/config"
	"echo-console/internal/history"
	"echo-console/internal/logger"
	"echo-console/internal/repl"
)

var log = logger.Named("cli")

func main() {
	logger.Configure()

	root, rest, err := parseRootArgs(os.Args[1:])
	if err != nil {
		log.Fatalf("parse args: %v", err)
	}
	if len(rest) > 0 {
		switch rest[0] {
		case "ping":
			pingMain(root, rest[1:])
			return
		case "replay":
			replayMain(root, rest[1:])
			return
		case "init":
			initMain(root, rest[1:])
			return
		case "features":
			featuresMain(root, rest[1:])
			return
		case "completion":
			completionMain(rest[1:])
			return
		}
	}

	runInteractive(root, rest)
}

func runInteractive(root rootArgs, args []string) {
	fs, cli := newInteractiveFlagSet("echo-console")
	if err := fs.Parse(args); err != nil {
		log.Fatalf("parse args: %v", err)
	}
	cli.configOverrides = stringSlice(prependOverrides(root.overrides, []string(cli.configOverrides)))

	cfg, err := loadConfig(cli)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if logFile, _, err := logger.SetupFile(cfg.LogPath); err != nil {
		log.Warnf("failed to initialize log file: %v", err)
	} else {
		defer logFile.Close()
	}
	if err := logger.SetLevel(cfg.LogLevel); err != nil {
		log.Warnf("ignoring log_level %q: %v", cfg.LogLevel, err)
	}

	rt := applyRuntimeKVOverrides(defaultRuntimeConfig(), []string(cli.configOverrides))

	store, err := history.NewDefault()
	if err != nil {
		log.Warnf("prompt history disabled: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := repl.RunUI(ctx, repl.UIOptions{
		Config:        cfg,
		SubmitTimeout: rt.submitTimeout(),
		DialTimeout:   rt.dialTimeout(),
		ReadTimeout:   rt.readTimeout(),
		WriteTimeout:  rt.writeTimeout(),
		History:       store,
	}); err != nil {
		log.Fatalf("program exit: %v", err)
	}
}

// loadConfig 依次应用配置文件、环境变量、-c 覆盖和命令行参数。
func loadConfig(cli *interactiveArgs) (config.Config, error) {
	cfg, err := config.Load(cli.cfgPath)
	if err != nil {
		return cfg, err
	}
	cfg = config.ApplyKVOverrides(cfg, []string(cli.configOverrides))
	if v := strings.TrimSpace(cli.url); v != "" {
		cfg.URL = v
	}
	if v := strings.TrimSpace(cli.sessionID); v != "" {
		cfg.SessionID = v
	}
	if v := strings.TrimSpace(cli.modelOverride); v != "" {
		cfg.Model = v
	}
	if len(cli.models) > 0 {
		cfg.Models = []string(cli.models)
	}
	return cfg, nil
}
