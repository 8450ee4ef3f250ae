package bridge

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime/debug"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"echo-console/internal/events"
	"echo-console/internal/logger"
)

// Emit 把一条消息推入入口队列；关键消息在队列满时会阻塞调用方。
type Emit func(ctx context.Context, msg events.Message) error

// Source 是一个外部事件来源，每个 Source 独占一个 goroutine。
type Source interface {
	Name() string
	Run(ctx context.Context, emit Emit) error
}

// Config 定义 bridge 参数。
type Config struct {
	Ingress *events.Ingress
	Sources []Source
	Metrics *Metrics
	Clock   func() time.Time
	// LogPath 非空时 bridge 日志单独写入该文件。
	LogPath string
}

func (cfg Config) withDefaults() Config {
	if cfg.Ingress == nil {
		cfg.Ingress = events.NewIngress(0)
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	return cfg
}

// Bridge 在同一个取消域里运行所有 Source，并在结束时关闭入口队列（只关闭一次）。
type Bridge struct {
	cfg Config
	log *logger.LogEntry

	startOnce sync.Once
	stopOnce  sync.Once
	cancel    context.CancelFunc
	done      chan struct{}
	err       error
	logCloser io.Closer
}

// New 创建 bridge，并把入口队列的丢弃计数接到 metrics 上。
func New(cfg Config) *Bridge {
	cfg = cfg.withDefaults()
	entry := log
	var closer io.Closer
	if cfg.LogPath != "" {
		e, c, _, err := logger.SetupComponentFile("bridge", cfg.LogPath)
		if err != nil {
			log.Warnf("failed to set up bridge log file (%s): %v", cfg.LogPath, err)
		} else {
			entry, closer = e, c
		}
	}
	metrics := cfg.Metrics
	cfg.Ingress.OnDrop(func(events.Message) { metrics.dropped() })
	metrics.watchIngress(cfg.Ingress)
	return &Bridge{
		cfg:       cfg,
		log:       entry,
		done:      make(chan struct{}),
		logCloser: closer,
	}
}

// Ingress 返回 bridge 写入的入口队列。
func (b *Bridge) Ingress() *events.Ingress {
	return b.cfg.Ingress
}

// Run 阻塞运行所有 Source，直到全部结束或 ctx 取消。
// 单个 Source 失败只记录日志并以错误提示条告知，不会取消其它 Source。
func (b *Bridge) Run(ctx context.Context) error {
	defer b.cfg.Ingress.Close()
	if len(b.cfg.Sources) == 0 {
		<-ctx.Done()
		return nil
	}
	g, gctx := errgroup.WithContext(ctx)
	for _, src := range b.cfg.Sources {
		src := src
		g.Go(func() error {
			b.runSource(gctx, src)
			return nil
		})
	}
	return g.Wait()
}

// Start 在后台运行 Run。
func (b *Bridge) Start(ctx context.Context) {
	b.startOnce.Do(func() {
		runCtx, cancel := context.WithCancel(ctx)
		b.cancel = cancel
		go func() {
			defer close(b.done)
			b.err = b.Run(runCtx)
		}()
	})
}

// Close 取消所有 Source 并等待退出，然后关闭组件日志文件。
// 直接调用 Run 的调用方在 Run 返回后也要调用 Close 释放日志文件。
func (b *Bridge) Close() error {
	b.stopOnce.Do(func() {
		if b.cancel != nil {
			b.cancel()
			<-b.done
		} else {
			b.cfg.Ingress.Close()
		}
		if b.logCloser != nil {
			_ = b.logCloser.Close()
		}
	})
	return b.err
}

func (b *Bridge) runSource(ctx context.Context, src Source) {
	name := src.Name()
	entry := b.log.WithField("source", name)
	emit := func(ctx context.Context, msg events.Message) error {
		if err := b.cfg.Ingress.Push(ctx, msg); err != nil {
			return err
		}
		b.cfg.Metrics.received(name)
		return nil
	}

	entry.Info("source started")
	err := b.safeRun(ctx, src, emit)
	switch {
	case err == nil, errors.Is(err, context.Canceled), errors.Is(err, events.ErrIngressClosed):
		entry.Info("source stopped")
		return
	}
	entry.WithError(err).Warn("source failed")
	if ctx.Err() != nil {
		return
	}
	toast := events.ToastRequested{
		Text:     fmt.Sprintf("%s: %v", name, err),
		Severity: events.SeverityError,
		At:       b.cfg.Clock(),
	}
	if pushErr := b.cfg.Ingress.Push(ctx, toast); pushErr != nil {
		entry.WithError(pushErr).Debug("failed to surface source error")
	}
}

func (b *Bridge) safeRun(ctx context.Context, src Source, emit Emit) (err error) {
	defer func() {
		if r := recover(); r != nil {
			b.log.WithField("source", src.Name()).Errorf("source panicked: %v\n%s", r, debug.Stack())
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return src.Run(ctx, emit)
}
