package main

import (
	"fmt"
	"slices"
	"strings"
)

// stringSlice 收集可重复的 -c key=value。
type stringSlice []string

func (s *stringSlice) String() string {
	if s == nil {
		return ""
	}
	return strings.Join(*s, ",")
}

func (s *stringSlice) Set(v string) error {
	if !strings.Contains(v, "=") {
		return fmt.Errorf("expected key=value, got %q", v)
	}
	*s = append(*s, v)
	return nil
}

// csvSlice 接受逗号分隔或重复出现的值，去掉空项与重复项（模型列表用）。
type csvSlice []string

func (s *csvSlice) String() string {
	if s == nil {
		return ""
	}
	return strings.Join(*s, ",")
}

func (s *csvSlice) Set(v string) error {
	for _, p := range strings.Split(v, ",") {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" && !slices.Contains(*s, trimmed) {
			*s = append(*s, trimmed)
		}
	}
	return nil
}
