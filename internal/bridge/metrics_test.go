package bridge

import (
	"context"
	"io"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"echo-console/internal/events"
)

func TestMetricsServerServesRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	m.received("stream")
	m.reconnect()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := &MetricsServer{Gatherer: reg, Listener: ln}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx, nil) }()

	var body string
	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/metrics")
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		data, _ := io.ReadAll(resp.Body)
		body = string(data)
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 10*time.Millisecond)

	require.True(t, strings.Contains(body, `echo_console_bridge_received_total{source="stream"} 1`), body)
	require.Contains(t, body, "echo_console_bridge_reconnects_total 1")

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatalf("metrics server did not shut down")
	}
}

func TestNilMetricsAreNoops(t *testing.T) {
	var m *Metrics
	m.received("x")
	m.dropped()
	m.malformed()
	m.reconnect()
}

func TestMetricsExposeIngressDepth(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	ingress := events.NewIngress(8)
	for _, id := range []string{"t1", "t2", "t3"} {
		require.NoError(t, ingress.Push(context.Background(), events.TaskStarted{ID: id}))
	}
	New(Config{Ingress: ingress, Metrics: m})
	// 重复注册同一个入口不应 panic。
	New(Config{Ingress: ingress, Metrics: m})

	gauge := func(name string) float64 {
		families, err := reg.Gather()
		require.NoError(t, err)
		for _, mf := range families {
			if mf.GetName() == name {
				return mf.GetMetric()[0].GetGauge().GetValue()
			}
		}
		t.Fatalf("metric %s not found", name)
		return 0
	}
	require.Equal(t, 3.0, gauge("echo_console_bridge_ingress_depth"))
	require.Equal(t, 8.0, gauge("echo_console_bridge_ingress_capacity"))

	_, err := ingress.Pop(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2.0, gauge("echo_console_bridge_ingress_depth"))
}
