package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"echo-console/internal/features"
)

func featuresMain(root rootArgs, args []string) {
	var overrides stringSlice
	fs := flag.NewFlagSet("features", flag.ExitOnError)
	fs.Var(&overrides, "c", "Override config value key=value (repeatable)")
	if err := fs.Parse(args); err != nil {
		log.Fatalf("parse features args: %v", err)
	}
	printFeatures(os.Stdout, prependOverrides(root.overrides, []string(overrides)))
}

func printFeatures(out io.Writer, overrides []string) {
	for _, spec := range features.Specs {
		enabled := featureEnabled(spec.Key, overrides)
		fmt.Fprintf(out, "%s\t%s\t%t\n", spec.Key, spec.Stage, enabled)
	}
}

func featureEnabled(key string, overrides []string) bool {
	enabled := features.DefaultEnabled(key)
	for _, raw := range overrides {
		parts := strings.SplitN(raw, "=", 2)
		if len(parts) != 2 {
			continue
		}
		k := strings.TrimSpace(parts[0])
		v := strings.TrimSpace(parts[1])
		if !strings.HasPrefix(k, "features.") {
			continue
		}
		name := strings.TrimPrefix(k, "features.")
		if !strings.EqualFold(name, key) {
			continue
		}
		switch strings.ToLower(v) {
		case "true", "1", "t", "yes", "y", "on":
			enabled = true
		case "false", "0", "f", "no", "n", "off":
			enabled = false
		}
	}
	return enabled
}
