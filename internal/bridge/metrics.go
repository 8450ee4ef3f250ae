package bridge

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"echo-console/internal/events"
)

// Metrics 统计 bridge 的入口流量。nil 指针上的方法都是空操作。
type Metrics struct {
	Received   *prometheus.CounterVec
	Dropped    prometheus.Counter
	Malformed  prometheus.Counter
	Reconnects prometheus.Counter

	reg prometheus.Registerer
}

// NewMetrics 创建计数器并注册到 reg；reg 为 nil 时只创建不注册。
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Received: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "echo_console",
			Subsystem: "bridge",
			Name:      "received_total",
			Help:      "Messages pushed onto the ingress queue, by source.",
		}, []string{"source"}),
		Dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "echo_console",
			Subsystem: "bridge",
			Name:      "ingress_dropped_total",
			Help:      "Droppable messages discarded under back-pressure.",
		}),
		Malformed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "echo_console",
			Subsystem: "bridge",
			Name:      "malformed_total",
			Help:      "Stream frames that could not be decoded.",
		}),
		Reconnects: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "echo_console",
			Subsystem: "bridge",
			Name:      "reconnects_total",
			Help:      "Stream reconnect attempts.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.Received, m.Dropped, m.Malformed, m.Reconnects)
	}
	m.reg = reg
	return m
}

// watchIngress 以 GaugeFunc 暴露入口队列的深度与容量，抓取时才读取。
func (m *Metrics) watchIngress(q *events.Ingress) {
	if m == nil || m.reg == nil || q == nil {
		return
	}
	gauges := []prometheus.Collector{
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "echo_console",
			Subsystem: "bridge",
			Name:      "ingress_depth",
			Help:      "Messages waiting in the ingress queue.",
		}, func() float64 { return float64(q.Len()) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "echo_console",
			Subsystem: "bridge",
			Name:      "ingress_capacity",
			Help:      "Capacity of the ingress queue.",
		}, func() float64 { return float64(q.Cap()) }),
	}
	for _, g := range gauges {
		if err := m.reg.Register(g); err != nil {
			var are prometheus.AlreadyRegisteredError
			if !errors.As(err, &are) {
				log.WithError(err).Warn("failed to register ingress gauge")
			}
		}
	}
}

func (m *Metrics) received(source string) {
	if m == nil {
		return
	}
	m.Received.WithLabelValues(source).Inc()
}

func (m *Metrics) dropped() {
	if m == nil {
		return
	}
	m.Dropped.Inc()
}

func (m *Metrics) malformed() {
	if m == nil {
		return
	}
	m.Malformed.Inc()
}

func (m *Metrics) reconnect() {
	if m == nil {
		return
	}
	m.Reconnects.Inc()
}

const metricsShutdownTimeout = 2 * time.Second

// MetricsServer 是一个暴露 /metrics 的 Source，不产生消息。
type MetricsServer struct {
	Addr     string
	Gatherer prometheus.Gatherer
	// Listener 非空时直接使用，便于测试绑定随机端口。
	Listener net.Listener
}

func (s *MetricsServer) Name() string { return "metrics" }

func (s *MetricsServer) Run(ctx context.Context, _ Emit) error {
	gatherer := s.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	ln := s.Listener
	if ln == nil {
		var err error
		ln, err = net.Listen("tcp", s.Addr)
		if err != nil {
			return err
		}
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.Serve(ln) }()
	log.WithField("addr", ln.Addr().String()).Info("metrics endpoint listening")

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
