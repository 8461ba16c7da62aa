package app

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/dshills/touchmask/internal/device"
	"github.com/dshills/touchmask/internal/input"
)

// HealthLatencyThreshold is the event latency above which /healthz reports
// unhealthy.
const HealthLatencyThreshold = 50 * time.Millisecond

// newRegistry registers the engine metrics, the queue counters and the
// runtime collectors.
func newRegistry(m *input.Metrics, q *device.Queue) *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		m,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Name: "touchmask_queue_sent_total",
			Help: "Device commands delivered by the transport.",
		}, func() float64 { return float64(q.Stats().Sent) }),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Name: "touchmask_queue_failed_total",
			Help: "Device commands the transport rejected.",
		}, func() float64 { return float64(q.Stats().Failed) }),
	)
	return reg
}

// metricsServer serves /metrics and /healthz.
type metricsServer struct {
	srv *http.Server
	log zerolog.Logger
}

func newMetricsServer(addr string, reg *prometheus.Registry, m *input.Metrics, log zerolog.Logger) *metricsServer {
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		status := m.HealthCheck(HealthLatencyThreshold)
		w.Header().Set("Content-Type", "application/json")
		if !status.Healthy {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_ = json.NewEncoder(w).Encode(status)
	})
	return &metricsServer{
		srv: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
		log: log.With().Str("component", "metrics").Logger(),
	}
}

// Run listens until ctx is done.
func (s *metricsServer) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return err
	}
	return s.serve(ctx, ln)
}

func (s *metricsServer) serve(ctx context.Context, ln net.Listener) error {
	s.log.Info().Str("addr", ln.Addr().String()).Msg("serving metrics")

	errc := make(chan error, 1)
	go func() { errc <- s.srv.Serve(ln) }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return ctx.Err()
}
