package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"os"
	"os/signal"

	"echo-console/internal/logger"
	"echo-console/internal/repl"
)

func replayMain(root rootArgs, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := runReplay(ctx, root, args, os.Stdin, os.Stdout); err != nil {
		log.Fatalf("replay failed: %v", err)
	}
}

// runReplay 把 JSONL 事件文件喂给界面。默认无终端输出每一帧；--tui 时在终端里回放。
func runReplay(ctx context.Context, root rootArgs, args []string, stdin io.Reader, out io.Writer) error {
	fs := flag.NewFlagSet("replay", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	cli := &interactiveArgs{}
	bindInteractiveFlags(fs, cli)
	var interactive bool
	var color bool
	fs.BoolVar(&interactive, "tui", false, "Replay inside the terminal UI instead of printing frames")
	fs.BoolVar(&color, "color", false, "Keep ANSI styling in printed frames")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("usage: echo-console replay [flags] <events.jsonl|->")
	}
	cli.configOverrides = stringSlice(prependOverrides(root.overrides, []string(cli.configOverrides)))

	cfg, err := loadConfig(cli)
	if err != nil {
		return err
	}
	if interactive {
		if logFile, _, err := logger.SetupFile(cfg.LogPath); err == nil {
			defer logFile.Close()
		}
	}
	rt := applyRuntimeKVOverrides(defaultRuntimeConfig(), []string(cli.configOverrides))

	var src io.Reader = stdin
	if path := fs.Arg(0); path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		src = f
	}

	opts := repl.UIOptions{
		Config:        cfg,
		Replay:        src,
		ReplayDelay:   rt.replayDelay(),
		SubmitTimeout: rt.submitTimeout(),
	}
	if !interactive {
		opts.Headless = out
		opts.Plain = !color
		// 回放时不需要连接后端。
		opts.Config.URL = ""
	}
	return repl.RunUI(ctx, opts)
}
