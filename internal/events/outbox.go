package events

import (
	"context"
	"errors"
	"sync"

	"echo-console/internal/logger"
)

var (
	// ErrOutboxClosed 表示出站队列已关闭，无法再提交或接收。
	ErrOutboxClosed = errors.New("outbox closed")
)

// Outbox 是一个有界的出站请求队列，UI 写入，bridge 读取并发送。
type Outbox struct {
	ch        chan Request
	done      chan struct{}
	closeOnce sync.Once
	log       *logger.LogEntry
}

// NewOutbox 创建一个新的 Outbox。
func NewOutbox(capacity int) *Outbox {
	if capacity <= 0 {
		capacity = 32
	}
	return &Outbox{
		ch:   make(chan Request, capacity),
		done: make(chan struct{}),
		log:  logger.Named("outbox"),
	}
}

// SetLogger 覆盖队列使用的 logger。
func (q *Outbox) SetLogger(entry *logger.LogEntry) {
	if entry == nil {
		return
	}
	q.log = entry
}

// Submit 将请求放入队列；支持 ctx 取消。
func (q *Outbox) Submit(ctx context.Context, req Request) error {
	select {
	case <-q.done:
		return ErrOutboxClosed
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	select {
	case <-q.done:
		return ErrOutboxClosed
	case <-ctx.Done():
		return ctx.Err()
	case q.ch <- req:
		q.logRequest(req)
		return nil
	}
}

// Receive 读取一条请求；队列关闭且为空时返回 ErrOutboxClosed。
func (q *Outbox) Receive(ctx context.Context) (Request, error) {
	select {
	case req := <-q.ch:
		return req, nil
	default:
	}
	select {
	case <-ctx.Done():
		return Request{}, ctx.Err()
	case req := <-q.ch:
		return req, nil
	case <-q.done:
		select {
		case req := <-q.ch:
			return req, nil
		default:
			return Request{}, ErrOutboxClosed
		}
	}
}

// Len 返回当前队列长度。
func (q *Outbox) Len() int {
	return len(q.ch)
}

// Close 关闭队列，停止进一步提交。
func (q *Outbox) Close() {
	q.closeOnce.Do(func() {
		close(q.done)
	})
}

func (q *Outbox) logRequest(req Request) {
	if q.log == nil {
		return
	}
	fields := logger.Fields{
		"type":       string(req.Kind),
		"request_id": req.ID,
	}
	if payload := encodePayload(req); payload != "" {
		fields["payload"] = payload
	}
	if req.SessionID != "" {
		fields["session_id"] = req.SessionID
	}
	q.log.WithFields(fields).Info("enqueued outbound request")
}
