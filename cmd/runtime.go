package cmd

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/zjrosen/flowdraft/internal/backend"
	"github.com/zjrosen/flowdraft/internal/config"
	"github.com/zjrosen/flowdraft/internal/coordinator"
	"github.com/zjrosen/flowdraft/internal/health"
	"github.com/zjrosen/flowdraft/internal/log"
	"github.com/zjrosen/flowdraft/internal/metrics"
	"github.com/zjrosen/flowdraft/internal/session"
	"github.com/zjrosen/flowdraft/internal/telemetry"
)

// runtime is everything a command needs to talk to the backend.
type runtime struct {
	telemetry *telemetry.Provider
	registry  *prometheus.Registry
	recorder  *metrics.Recorder
	client    *backend.Client
	session   *session.Session
	monitor   *health.Monitor
	addr      string
}

func newRuntime(ctx context.Context, c config.Config) (*runtime, error) {
	tp, err := telemetry.Setup(ctx, telemetry.Options{
		Enabled:        c.Telemetry.Enabled,
		TracesPath:     c.Telemetry.TracesPath,
		OTLPEndpoint:   c.Telemetry.OTLPEndpoint,
		ServiceName:    "flowdraft",
		ServiceVersion: version,
	})
	if err != nil {
		return nil, err
	}

	registry := metrics.NewRegistry()
	recorder := metrics.NewRecorder(registry)

	client := backend.NewClient(c.BaseURL(), backend.WithTracing(tp))
	sess := session.New(client, session.WithCoordinatorOptions(
		coordinator.WithTimeout(c.RequestTimeout),
		coordinator.WithTracer(tp.ComponentTracer("coordinator")),
		coordinator.WithMetrics(recorder),
	))
	monitor := health.NewMonitor(health.Config{
		Prober:   client,
		Interval: c.Health.Interval,
		CacheTTL: c.Health.CacheTTL,
		Metrics:  recorder,
	})

	return &runtime{
		telemetry: tp,
		registry:  registry,
		recorder:  recorder,
		client:    client,
		session:   sess,
		monitor:   monitor,
		addr:      c.Metrics.Addr,
	}, nil
}

// applyBaseURL points the client at url and drops health reports that were
// taken against the previous service.
func (r *runtime) applyBaseURL(url string) {
	if url == r.client.BaseURL() {
		return
	}
	log.Info(log.CatConfig, "Backend URL changed", "from", r.client.BaseURL(), "to", url)
	r.client.SetBaseURL(url)
	r.monitor.Invalidate()
}

// serveMetrics starts the /metrics exporter when an address is configured.
func (r *runtime) serveMetrics(ctx context.Context) {
	if r.addr == "" {
		return
	}
	exporter := metrics.NewExporter(r.addr, r.registry)
	log.SafeGo("metrics-exporter", func() {
		if err := exporter.Run(ctx); err != nil {
			log.ErrorErr(log.CatTelemetry, "Metrics exporter stopped", err, "addr", r.addr)
		}
	})
}

// Close stops background work and flushes spans.
func (r *runtime) Close() {
	r.monitor.Stop()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.telemetry.Shutdown(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.ErrorErr(log.CatTelemetry, "Flushing traces failed", err)
	}
}
