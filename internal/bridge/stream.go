package bridge

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/sync/errgroup"
	"nhooyr.io/websocket"

	"echo-console/internal/events"
)

// ErrUnauthorized 表示服务端以 401/403 拒绝连接，不再重试。
var ErrUnauthorized = errors.New("stream unauthorized")

const (
	defaultDialTimeout  = 15 * time.Second
	defaultReadTimeout  = 90 * time.Second
	defaultWriteTimeout = 5 * time.Second
	streamReadLimit     = 32 << 20
)

// StreamConfig 定义流连接参数。
type StreamConfig struct {
	URL       string
	Token     string
	SessionID string
	Outbox    *events.Outbox
	Backoff   Backoff
	Metrics   *Metrics
	Clock     func() time.Time

	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

func (cfg StreamConfig) withDefaults() StreamConfig {
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = defaultDialTimeout
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = defaultReadTimeout
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = defaultWriteTimeout
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	return cfg
}

// Stream 是后端事件流的 websocket 客户端，断线后按退避策略重连。
type Stream struct {
	cfg StreamConfig
}

func NewStream(cfg StreamConfig) *Stream {
	return &Stream{cfg: cfg.withDefaults()}
}

func (s *Stream) Name() string { return "stream" }

// Run 连接、读写、断线重连，直到 ctx 取消或遇到鉴权失败。
func (s *Stream) Run(ctx context.Context, emit Emit) error {
	attempt := 0
	lost := false
	for {
		if ctx.Err() != nil {
			return nil
		}
		conn, err := s.dial(ctx)
		if err != nil {
			if errors.Is(err, ErrUnauthorized) {
				return err
			}
			if ctx.Err() != nil {
				return nil
			}
			attempt++
			lost = true
			if !s.waitRetry(ctx, emit, attempt, err) {
				return nil
			}
			continue
		}
		if lost {
			log.WithField("attempts", attempt).Info("stream restored")
			if err := emit(ctx, events.ConnectionRestored{Attempts: attempt, At: s.cfg.Clock()}); err != nil {
				_ = conn.Close(websocket.StatusNormalClosure, "console closed")
				return ignoreShutdown(ctx, err)
			}
			lost = false
		}
		attempt = 0

		err = s.serve(ctx, conn, emit)
		_ = conn.Close(websocket.StatusNormalClosure, "console closed")
		if ctx.Err() != nil || errors.Is(err, events.ErrIngressClosed) {
			return nil
		}
		attempt++
		lost = true
		if !s.waitRetry(ctx, emit, attempt, err) {
			return nil
		}
	}
}

// waitRetry 发出 ConnectionLost 并等待退避时间；返回 false 表示应当退出。
func (s *Stream) waitRetry(ctx context.Context, emit Emit, attempt int, cause error) bool {
	delay := s.cfg.Backoff.Delay(attempt)
	s.cfg.Metrics.reconnect()
	log.WithError(cause).WithField("attempt", attempt).Warnf("stream disconnected, retrying in %s", delay)
	lostMsg := events.ConnectionLost{
		Err:     cause.Error(),
		Attempt: attempt,
		RetryIn: delay,
		At:      s.cfg.Clock(),
	}
	if err := emit(ctx, lostMsg); err != nil {
		return false
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func (s *Stream) dial(ctx context.Context) (*websocket.Conn, error) {
	endpoint, err := s.endpoint()
	if err != nil {
		return nil, err
	}
	opts := &websocket.DialOptions{HTTPHeader: http.Header{}}
	if s.cfg.Token != "" {
		opts.HTTPHeader.Set("Authorization", "Bearer "+s.cfg.Token)
	}
	dialCtx, cancel := context.WithTimeout(ctx, s.cfg.DialTimeout)
	defer cancel()
	conn, resp, err := websocket.Dial(dialCtx, endpoint, opts)
	if err != nil {
		if resp != nil {
			if resp.Body != nil {
				_ = resp.Body.Close()
			}
			if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
				return nil, fmt.Errorf("%w (%s)", ErrUnauthorized, resp.Status)
			}
			return nil, fmt.Errorf("dial %s: %s: %w", endpoint, resp.Status, err)
		}
		return nil, fmt.Errorf("dial %s: %w", endpoint, err)
	}
	conn.SetReadLimit(streamReadLimit)
	return conn, nil
}

func (s *Stream) endpoint() (string, error) {
	u, err := url.Parse(s.cfg.URL)
	if err != nil {
		return "", fmt.Errorf("invalid stream url: %w", err)
	}
	if s.cfg.SessionID != "" {
		q := u.Query()
		q.Set("session", s.cfg.SessionID)
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

// serve 在一个连接上并行读帧与写出站请求，任一方失败即结束。
func (s *Stream) serve(ctx context.Context, conn *websocket.Conn, emit Emit) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.readLoop(gctx, conn, emit)
	})
	if s.cfg.Outbox != nil {
		g.Go(func() error {
			return s.writeLoop(gctx, conn)
		})
	}
	return g.Wait()
}

func (s *Stream) readLoop(ctx context.Context, conn *websocket.Conn, emit Emit) error {
	for {
		readCtx, cancel := context.WithTimeout(ctx, s.cfg.ReadTimeout)
		_, data, err := conn.Read(readCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("read: %w", err)
		}
		msg, err := events.Decode(data, s.cfg.Clock())
		if errors.Is(err, events.ErrSkip) {
			continue
		}
		if err != nil {
			s.cfg.Metrics.malformed()
			log.WithError(err).Warn("dropping malformed stream frame")
			continue
		}
		if err := emit(ctx, msg); err != nil {
			return err
		}
	}
}

func (s *Stream) writeLoop(ctx context.Context, conn *websocket.Conn) error {
	for {
		req, err := s.cfg.Outbox.Receive(ctx)
		if errors.Is(err, events.ErrOutboxClosed) {
			return nil
		}
		if err != nil {
			return err
		}
		data, err := events.Encode(req)
		if err != nil {
			log.WithError(err).Warn("dropping unencodable request")
			continue
		}
		writeCtx, cancel := context.WithTimeout(ctx, s.cfg.WriteTimeout)
		err = conn.Write(writeCtx, websocket.MessageText, data)
		cancel()
		if err != nil {
			log.WithError(err).WithField("request_id", req.ID).Warn("request lost on disconnect")
			return fmt.Errorf("write: %w", err)
		}
	}
}

func ignoreShutdown(ctx context.Context, err error) error {
	if ctx.Err() != nil || errors.Is(err, events.ErrIngressClosed) {
		return nil
	}
	return err
}
