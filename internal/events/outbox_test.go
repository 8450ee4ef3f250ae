package events

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"echo-console/internal/logger"
	"github.com/sirupsen/logrus"
)

func TestOutboxLogsJSONPayload(t *testing.T) {
	buf := &bytes.Buffer{}
	q := NewOutbox(1)
	q.SetLogger(newBufferLogger(buf))

	req := Request{ID: "r1", Kind: RequestChatSend, Text: "ping", SessionID: "sess"}
	if err := q.Submit(context.Background(), req); err != nil {
		t.Fatalf("submit: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "[type=chat.send]") {
		t.Fatalf("expected type prefix in log, got %q", out)
	}
	if !strings.Contains(out, "payload=") || !strings.Contains(out, "\"text\"") {
		t.Fatalf("expected json payload in log, got %q", out)
	}
}

func TestOutboxReceiveAndClose(t *testing.T) {
	q := NewOutbox(2)
	ctx := context.Background()
	_ = q.Submit(ctx, Request{ID: "a", Kind: RequestChatSend})
	q.Close()
	q.Close()

	if err := q.Submit(ctx, Request{ID: "b", Kind: RequestChatSend}); !errors.Is(err, ErrOutboxClosed) {
		t.Fatalf("submit after close = %v", err)
	}
	got, err := q.Receive(ctx)
	if err != nil || got.ID != "a" {
		t.Fatalf("Receive = %+v, %v", got, err)
	}
	if _, err := q.Receive(ctx); !errors.Is(err, ErrOutboxClosed) {
		t.Fatalf("receive on drained outbox = %v", err)
	}
}

func TestOutboxSubmitHonorsContext(t *testing.T) {
	q := NewOutbox(1)
	_ = q.Submit(context.Background(), Request{ID: "a", Kind: RequestChatSend})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := q.Submit(ctx, Request{ID: "b", Kind: RequestChatSend}); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v", err)
	}
}

func TestEncodePayload_StringIsRaw(t *testing.T) {
	if got := encodePayload("chat.send"); got != "chat.send" {
		t.Fatalf("expected raw string payload, got %q", got)
	}
}

func TestEncodePayload_ObjectIsPrettyJSON(t *testing.T) {
	got := encodePayload(map[string]any{"a": 1, "b": map[string]any{"c": 2}})
	if !json.Valid([]byte(got)) {
		t.Fatalf("expected valid json, got %q", got)
	}
	if !strings.Contains(got, "\n") {
		t.Fatalf("expected pretty json with newlines, got %q", got)
	}
}

func TestEncodePayload_JSONStringWithEscapedNewlines(t *testing.T) {
	in := "{\\n  \"a\": 1,\\n  \"b\": 2\\n}"
	got := encodePayload(in)
	if strings.Contains(got, `\n`) {
		t.Fatalf("expected escaped newlines to be unescaped, got %q", got)
	}
	if !json.Valid([]byte(got)) {
		t.Fatalf("expected valid json after unescape/pretty, got %q", got)
	}
}

func newBufferLogger(buf *bytes.Buffer) *logger.LogEntry {
	l := logrus.New()
	l.SetFormatter(logger.PlainFormatter{})
	l.SetOutput(buf)
	return logrus.NewEntry(l)
}
