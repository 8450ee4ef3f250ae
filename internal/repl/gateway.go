package repl

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"echo-console/internal/events"
)

// Gateway 把 UI 产生的请求补齐会话信息后投递到出站队列，由 stream 写到连接上。
type Gateway struct {
	outbox    *events.Outbox
	sessionID string
	clock     func() time.Time
}

// NewGateway 创建基于出站队列的网关。
func NewGateway(outbox *events.Outbox, sessionID string, clock func() time.Time) *Gateway {
	if clock == nil {
		clock = time.Now
	}
	return &Gateway{outbox: outbox, sessionID: sessionID, clock: clock}
}

// Submit 投递一条请求；ID、SessionID、At 为空时自动填充。
func (g *Gateway) Submit(ctx context.Context, req events.Request) error {
	if g == nil || g.outbox == nil {
		return errors.New("repl gateway outbox not configured")
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	if req.SessionID == "" {
		req.SessionID = g.sessionID
	}
	if req.At.IsZero() {
		req.At = g.clock()
	}
	return g.outbox.Submit(ctx, req)
}
