package main

import (
	"flag"
)

// interactiveArgs captures flags shared by the interactive console and replay.
type interactiveArgs struct {
	cfgPath         string
	modelOverride   string
	models          csvSlice
	url             string
	sessionID       string
	configOverrides stringSlice
}

func newInteractiveFlagSet(name string) (*flag.FlagSet, *interactiveArgs) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	args := &interactiveArgs{}
	bindInteractiveFlags(fs, args)
	return fs, args
}

func bindInteractiveFlags(fs *flag.FlagSet, args *interactiveArgs) {
	fs.StringVar(&args.cfgPath, "config", "", "Path to config file (default ~/.echo/console.toml)")
	fs.StringVar(&args.modelOverride, "model", "", "Model override")
	fs.StringVar(&args.modelOverride, "m", "", "Alias for --model")
	fs.Var(&args.models, "models", "Models offered by the picker (comma separated or repeatable)")
	fs.StringVar(&args.url, "url", "", "Backend event stream url (ws:// or wss://)")
	fs.StringVar(&args.sessionID, "session", "", "Session id to attach to")
	fs.Var(&args.configOverrides, "c", "Override config value key=value (repeatable)")
}
