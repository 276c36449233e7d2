package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/Abdurahmanit/GroupProject/cart-service/internal/platform/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	ResultSuccess  = "success"
	ResultRejected = "rejected"
)

// MetricsManager holds the cart Prometheus metrics. A nil *MetricsManager is valid and records nothing.
type MetricsManager struct {
	Registry           *prometheus.Registry
	CartOperations     *prometheus.CounterVec
	Notifications      prometheus.Counter
	StockLookupLatency prometheus.Histogram
	ActiveSessions     prometheus.Gauge
}

func NewMetricsManager(namespace string) *MetricsManager {
	registry := prometheus.NewRegistry()

	cartOperations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cart_operations_total",
		Help:      "Cart mutations by operation and result.",
	}, []string{"operation", "result"})
	notifications := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cart_notifications_total",
		Help:      "User-facing error notifications emitted by cart stores.",
	})
	stockLookupLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "stock_lookup_latency_seconds",
		Help:      "Latency of stock lookups against the storefront.",
		Buckets:   prometheus.DefBuckets,
	})
	activeSessions := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "cart_sessions_active",
		Help:      "Cart stores currently loaded in memory.",
	})

	registry.MustRegister(
		cartOperations,
		notifications,
		stockLookupLatency,
		activeSessions,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)

	return &MetricsManager{
		Registry:           registry,
		CartOperations:     cartOperations,
		Notifications:      notifications,
		StockLookupLatency: stockLookupLatency,
		ActiveSessions:     activeSessions,
	}
}

func (m *MetricsManager) ObserveOperation(operation string, err error) {
	if m == nil {
		return
	}
	result := ResultSuccess
	if err != nil {
		result = ResultRejected
	}
	m.CartOperations.WithLabelValues(operation, result).Inc()
}

func (m *MetricsManager) ObserveNotification() {
	if m == nil {
		return
	}
	m.Notifications.Inc()
}

func (m *MetricsManager) ObserveStockLookup(started time.Time) {
	if m == nil {
		return
	}
	m.StockLookupLatency.Observe(time.Since(started).Seconds())
}

func (m *MetricsManager) SessionOpened() {
	if m == nil {
		return
	}
	m.ActiveSessions.Inc()
}

type Server struct {
	server *http.Server
	log    logger.Logger
}

// NewServer returns nil when no port is configured.
func NewServer(port string, log logger.Logger, registry *prometheus.Registry) *Server {
	if port == "" {
		log.Info("Prometheus metrics server port not configured, server will not start")
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	return &Server{
		server: &http.Server{
			Addr:              ":" + port,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
		log: log,
	}
}

func (s *Server) Start() error {
	s.log.Infof("Prometheus metrics server starting on %s/metrics", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
