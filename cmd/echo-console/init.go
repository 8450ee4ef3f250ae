package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"echo-console/internal/config"
)

func initMain(root rootArgs, args []string) {
	if err := runInit(root, args, os.Stdout); err != nil {
		log.Fatalf("init: %v", err)
	}
}

// runInit 把默认配置加上命令行覆盖写成起始配置文件。
func runInit(root rootArgs, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	cli := &interactiveArgs{}
	bindInteractiveFlags(fs, cli)
	force := fs.Bool("force", false, "Overwrite an existing config file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cli.configOverrides = stringSlice(prependOverrides(root.overrides, []string(cli.configOverrides)))

	cfg := config.ApplyKVOverrides(config.Default(), []string(cli.configOverrides))
	if cli.url != "" {
		cfg.URL = cli.url
	}
	if cli.sessionID != "" {
		cfg.SessionID = cli.sessionID
	}
	if cli.modelOverride != "" {
		cfg.Model = cli.modelOverride
	}
	if len(cli.models) > 0 {
		cfg.Models = []string(cli.models)
	}
	path, err := config.Init(cli.cfgPath, cfg, *force)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "wrote %s\n", path)
	return nil
}
