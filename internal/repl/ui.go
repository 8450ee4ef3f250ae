package repl

import (
	"context"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"echo-console/internal/bridge"
	"echo-console/internal/config"
	"echo-console/internal/events"
	"echo-console/internal/features"
	"echo-console/internal/history"
	"echo-console/internal/logger"
	"echo-console/internal/tui"
)

var log = logger.Named("repl")

// UIOptions 描述启动界面所需的配置与可选输入源。
type UIOptions struct {
	Config config.Config
	Clock  func() time.Time
	// Registerer 为空时使用 prometheus 默认注册表。
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer

	// Replay 非空时从 JSONL 回放事件，不再连接后端，也不启动 ticker。
	Replay      io.Reader
	ReplayDelay time.Duration

	// Headless 非空时不接管终端，每处理一条消息就把整帧写到这里。
	Headless io.Writer
	// Plain 去掉无终端帧中的 ANSI 样式。
	Plain bool

	SubmitTimeout time.Duration
	// 事件流的拨号、单次读、单次写超时；零值使用 bridge 默认值。
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	// History 非空时加载并持久化编辑器历史。
	History *history.Store
}

// RunUI 在同一个取消域里运行 bridge 与界面；界面退出会取消 bridge。
func RunUI(ctx context.Context, opts UIOptions) error {
	cfg := opts.Config
	if cfg.LeaderKey == "" {
		cfg = config.Default()
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	ingress := events.NewIngress(cfg.IngressCapacity)
	outbox := events.NewOutbox(cfg.OutboxCapacity)
	defer outbox.Close()

	var metrics *bridge.Metrics
	metricsOn := features.Enabled(cfg.Features, features.Metrics) || cfg.MetricsAddr != ""
	if metricsOn {
		reg := opts.Registerer
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		metrics = bridge.NewMetrics(reg)
	}

	b := bridge.New(bridge.Config{
		Ingress: ingress,
		Sources: buildSources(cfg, opts, outbox, metrics, clock, metricsOn),
		Metrics: metrics,
		Clock:   clock,
		LogPath: cfg.LogPath,
	})
	defer b.Close()

	var gateway tui.SubmissionGateway
	if opts.Replay == nil && cfg.URL != "" {
		gateway = NewGateway(outbox, cfg.SessionID, clock)
	}

	var (
		store   tui.HistoryStore
		initial []string
	)
	if opts.History != nil {
		store = opts.History
		texts, err := opts.History.Load(history.DefaultLimit)
		if err != nil {
			log.WithError(err).Warn("failed to load prompt history")
		}
		initial = texts
	}

	g, gctx := errgroup.WithContext(ctx)
	// bridge 正常结束时关闭 ingress，界面排空剩余消息后自行退出。
	g.Go(func() error {
		return b.Run(gctx)
	})
	g.Go(func() error {
		defer cancel()
		uiOpts := tui.Options{
			Config:  cfg,
			Clock:   clock,
			Gateway: gateway,
			Ingress: ingress,
			Context: gctx,

			SubmitTimeout:  opts.SubmitTimeout,
			History:        store,
			InitialHistory: initial,
			SessionID:      cfg.SessionID,
		}
		if opts.Headless != nil {
			s := &tui.Scheduler{Model: tui.New(uiOpts), Out: opts.Headless, Plain: opts.Plain}
			return s.Run(gctx)
		}
		return tui.Run(gctx, uiOpts)
	})
	err := g.Wait()
	log.WithError(err).Info("ui stopped")
	return err
}

func buildSources(cfg config.Config, opts UIOptions, outbox *events.Outbox, metrics *bridge.Metrics, clock func() time.Time, metricsOn bool) []bridge.Source {
	var sources []bridge.Source
	if opts.Replay != nil {
		sources = append(sources, &bridge.Replay{Reader: opts.Replay, Delay: opts.ReplayDelay, Clock: clock, Metrics: metrics})
	} else {
		sources = append(sources, &bridge.Ticker{Interval: cfg.TickInterval(), Clock: clock})
		if cfg.URL != "" {
			sources = append(sources, bridge.NewStream(streamConfig(cfg, opts, outbox, metrics, clock)))
		} else {
			log.Info("no stream url configured, running offline")
		}
	}
	if metricsOn && cfg.MetricsAddr != "" && opts.Replay == nil {
		sources = append(sources, &bridge.MetricsServer{Addr: cfg.MetricsAddr, Gatherer: opts.Gatherer})
	}
	return sources
}

func streamConfig(cfg config.Config, opts UIOptions, outbox *events.Outbox, metrics *bridge.Metrics, clock func() time.Time) bridge.StreamConfig {
	return bridge.StreamConfig{
		URL:          cfg.URL,
		Token:        cfg.Token,
		SessionID:    cfg.SessionID,
		Outbox:       outbox,
		Backoff:      bridge.Backoff{Base: cfg.Reconnect.Base(), Cap: cfg.Reconnect.Cap(), Jitter: cfg.Reconnect.Jitter},
		DialTimeout:  opts.DialTimeout,
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.WriteTimeout,
		Metrics:      metrics,
		Clock:        clock,
	}
}
