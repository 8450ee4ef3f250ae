package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const replayScenario = `{"type":"resize","width":90,"height":24}
{"type":"message.added","id":"m1","role":"assistant","fragments":["hello"]}
{"type":"message.updated","id":"m1","fragments":[" from replay"]}
{"type":"toast","text":"all done","severity":"success"}
`

func TestRunReplayPrintsPlainFrames(t *testing.T) {
	t.Setenv("ECHO_CONSOLE_URL", "")
	dir := t.TempDir()
	events := filepath.Join(dir, "events.jsonl")
	if err := os.WriteFile(events, []byte(replayScenario), 0o600); err != nil {
		t.Fatalf("write events: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var out bytes.Buffer
	args := []string{"--config", filepath.Join(dir, "console.toml"), "--model", "gpt-5", events}
	if err := runReplay(ctx, rootArgs{}, args, nil, &out); err != nil {
		t.Fatalf("runReplay: %v", err)
	}
	got := out.String()
	for _, want := range []string{"hello from replay", "all done", "gpt-5"} {
		if !strings.Contains(got, want) {
			t.Fatalf("output missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "\x1b[") {
		t.Fatalf("expected plain output")
	}
}

func TestRunReplayFromStdin(t *testing.T) {
	t.Setenv("ECHO_CONSOLE_URL", "")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var out bytes.Buffer
	args := []string{"--config", filepath.Join(t.TempDir(), "console.toml"), "-"}
	if err := runReplay(ctx, rootArgs{}, args, strings.NewReader(replayScenario), &out); err != nil {
		t.Fatalf("runReplay: %v", err)
	}
	if !strings.Contains(out.String(), "hello from replay") {
		t.Fatalf("output = %q", out.String())
	}
}

func TestRunReplayUsage(t *testing.T) {
	if err := runReplay(context.Background(), rootArgs{}, nil, nil, &bytes.Buffer{}); err == nil {
		t.Fatalf("expected usage error")
	}
}
