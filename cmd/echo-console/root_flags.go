package main

import (
	"fmt"
	"strings"

	"echo-console/internal/features"
)

type rootArgs struct {
	overrides []string
}

// parseRootArgs 从参数开头摘出全局的 -c/--enable/--disable，遇到子命令或其它参数即停止，
// 剩余参数原样返回给子命令或交互模式。
func parseRootArgs(args []string) (rootArgs, []string, error) {
	var overrides, enable, disable []string
	i := 0
	for i < len(args) {
		name, value, hasValue := splitFlag(args[i])
		var dst *[]string
		switch name {
		case "c":
			dst = &overrides
		case "enable":
			dst = &enable
		case "disable":
			dst = &disable
		}
		if dst == nil {
			break
		}
		if !hasValue {
			if i+1 >= len(args) {
				return rootArgs{}, nil, fmt.Errorf("flag needs an argument: -%s", name)
			}
			value = args[i+1]
			i++
		}
		*dst = append(*dst, value)
		i++
	}

	featureOverrides, err := buildFeatureOverrides(enable, disable)
	if err != nil {
		return rootArgs{}, nil, err
	}
	all := append([]string{}, overrides...)
	all = append(all, featureOverrides...)
	return rootArgs{overrides: all}, append([]string{}, args[i:]...), nil
}

// splitFlag 把 "-name"、"--name=value" 拆成名字与值；非参数返回空名字。
func splitFlag(arg string) (name, value string, hasValue bool) {
	if len(arg) < 2 || arg[0] != '-' || arg == "--" {
		return "", "", false
	}
	name = strings.TrimLeft(arg, "-")
	if k, v, ok := strings.Cut(name, "="); ok {
		return k, v, true
	}
	return name, "", false
}

func prependOverrides(root []string, overrides []string) []string {
	merged := append([]string{}, root...)
	return append(merged, overrides...)
}

func buildFeatureOverrides(enable []string, disable []string) ([]string, error) {
	var overrides []string
	for _, key := range enable {
		if !features.IsKnown(key) {
			return nil, fmt.Errorf("unknown feature flag: %s", key)
		}
		overrides = append(overrides, fmt.Sprintf("features.%s=%t", key, true))
	}
	for _, key := range disable {
		if !features.IsKnown(key) {
			return nil, fmt.Errorf("unknown feature flag: %s", key)
		}
		overrides = append(overrides, fmt.Sprintf("features.%s=%t", key, false))
	}
	return overrides, nil
}
