package events

import (
	"context"
	"errors"
	"sync"
)

var (
	// ErrIngressClosed 表示入口队列已关闭且已排空。
	ErrIngressClosed = errors.New("ingress queue closed")
)

// Ingress 是多生产者单消费者的有界有序队列。
// 满时优先淘汰最旧的可丢弃消息；关键消息只阻塞自己的生产者。
type Ingress struct {
	mu       sync.Mutex
	items    []Message
	capacity int
	closed   bool

	readable  chan struct{}
	writable  chan struct{}
	done      chan struct{}
	closeOnce sync.Once

	onDrop func(Message)
}

// NewIngress 创建一个容量为 capacity 的入口队列。
func NewIngress(capacity int) *Ingress {
	if capacity <= 0 {
		capacity = 256
	}
	return &Ingress{
		items:    make([]Message, 0, capacity),
		capacity: capacity,
		readable: make(chan struct{}, 1),
		writable: make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
}

// OnDrop 注册丢弃回调；回调在锁外执行。
func (q *Ingress) OnDrop(fn func(Message)) {
	q.mu.Lock()
	q.onDrop = fn
	q.mu.Unlock()
}

// Push 入队。关键消息在队列满且无可淘汰项时阻塞，直到有空位、ctx 取消或队列关闭。
func (q *Ingress) Push(ctx context.Context, msg Message) error {
	if msg == nil {
		return nil
	}
	for {
		q.mu.Lock()
		if q.closed {
			q.mu.Unlock()
			return ErrIngressClosed
		}
		if len(q.items) < q.capacity {
			q.items = append(q.items, msg)
			room := len(q.items) < q.capacity
			q.mu.Unlock()
			signal(q.readable)
			if room {
				signal(q.writable)
			}
			return nil
		}
		if i := q.oldestDroppableLocked(); i >= 0 {
			evicted := q.items[i]
			q.items = append(q.items[:i], q.items[i+1:]...)
			q.items = append(q.items, msg)
			drop := q.onDrop
			q.mu.Unlock()
			signal(q.readable)
			q.dropped(drop, evicted)
			return nil
		}
		if Droppable(msg) {
			drop := q.onDrop
			q.mu.Unlock()
			q.dropped(drop, msg)
			return nil
		}
		q.mu.Unlock()

		log.WithField("type", TypeName(msg)).Debug("ingress full, producer waiting")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-q.done:
			return ErrIngressClosed
		case <-q.writable:
		}
	}
}

// Pop 按 FIFO 取出一条消息。关闭后先排空剩余消息，再返回 ErrIngressClosed。
func (q *Ingress) Pop(ctx context.Context) (Message, error) {
	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			msg := q.items[0]
			q.items[0] = nil
			q.items = q.items[1:]
			more := len(q.items) > 0
			q.mu.Unlock()
			signal(q.writable)
			if more {
				signal(q.readable)
			}
			return msg, nil
		}
		if q.closed {
			q.mu.Unlock()
			return nil, ErrIngressClosed
		}
		q.mu.Unlock()

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-q.done:
		case <-q.readable:
		}
	}
}

// Close 关闭队列，可重复调用。阻塞中的生产者会收到 ErrIngressClosed。
func (q *Ingress) Close() {
	q.closeOnce.Do(func() {
		q.mu.Lock()
		q.closed = true
		q.mu.Unlock()
		close(q.done)
	})
}

// Len 返回当前排队数量。
func (q *Ingress) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Cap 返回队列容量。
func (q *Ingress) Cap() int {
	return q.capacity
}

func (q *Ingress) oldestDroppableLocked() int {
	for i, item := range q.items {
		if Droppable(item) {
			return i
		}
	}
	return -1
}

func (q *Ingress) dropped(fn func(Message), msg Message) {
	log.WithField("type", TypeName(msg)).Debug("dropped droppable message under back-pressure")
	if fn != nil {
		fn(msg)
	}
}

func signal(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}
