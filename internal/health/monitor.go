package health

import (
	"context"
	"fmt"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/zjrosen/flowdraft/internal/backend"
	"github.com/zjrosen/flowdraft/internal/log"
	"github.com/zjrosen/flowdraft/internal/metrics"
)

const reportKey = "report"

// Prober performs one health request.
type Prober interface {
	Health(ctx context.Context) (*backend.HealthResponse, error)
}

// Clock interface for time operations (allows testing).
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// Config configures a Monitor.
type Config struct {
	Prober Prober

	// Interval is how often the background loop probes.
	// Defaults to 15 seconds if not specified.
	Interval time.Duration

	// CacheTTL is how long a report is reused by Check. Zero disables caching.
	CacheTTL time.Duration

	// Timeout bounds a single probe. Defaults to 5 seconds.
	Timeout time.Duration

	// OnReport is called from the loop after every fresh probe.
	OnReport func(Report)

	Metrics *metrics.Recorder

	// Clock is used for report timestamps. If nil, uses time.Now().
	Clock Clock
}

// Monitor probes the backend and caches the result.
type Monitor struct {
	prober   Prober
	interval time.Duration
	timeout  time.Duration
	ttl      time.Duration
	onReport func(Report)
	metrics  *metrics.Recorder
	clock    Clock
	cache    *gocache.Cache

	mu     sync.Mutex
	last   Report
	cancel context.CancelFunc
	done   chan struct{}
}

// NewMonitor creates a monitor from cfg.
func NewMonitor(cfg Config) *Monitor {
	clock := cfg.Clock
	if clock == nil {
		clock = realClock{}
	}
	interval := cfg.Interval
	if interval <= 0 {
		interval = 15 * time.Second
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Monitor{
		prober:   cfg.Prober,
		interval: interval,
		timeout:  timeout,
		ttl:      cfg.CacheTTL,
		onReport: cfg.OnReport,
		metrics:  cfg.Metrics,
		clock:    clock,
		cache:    gocache.New(cfg.CacheTTL, time.Minute),
		last:     Report{Status: StatusUnknown},
	}
}

// Last returns the most recent report without probing.
func (m *Monitor) Last() Report {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.last
}

// Check returns the cached report if it is still fresh, otherwise probes.
func (m *Monitor) Check(ctx context.Context) Report {
	if m.ttl > 0 {
		if v, ok := m.cache.Get(reportKey); ok {
			return v.(Report)
		}
	}
	return m.Refresh(ctx)
}

// Invalidate drops the cached report and resets Last to unknown. Call it when
// the probed service changes so an old report is never served for the new one.
func (m *Monitor) Invalidate() {
	m.cache.Flush()
	m.mu.Lock()
	m.last = Report{Status: StatusUnknown}
	m.mu.Unlock()
}

// Refresh probes unconditionally and updates the cache.
func (m *Monitor) Refresh(ctx context.Context) Report {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	start := time.Now()
	resp, err := m.prober.Health(ctx)
	r := m.report(resp, err)

	outcome := metrics.OutcomeOK
	switch r.Status {
	case StatusUnhealthy:
		outcome = metrics.OutcomeRejected
	case StatusUnreachable:
		outcome = metrics.OutcomeUnreachable
	}
	m.metrics.ObserveRequest(metrics.KindHealth, outcome, time.Since(start))

	m.mu.Lock()
	prev := m.last.Status
	m.last = r
	m.mu.Unlock()

	if m.ttl > 0 {
		m.cache.Set(reportKey, r, gocache.DefaultExpiration)
	}
	if prev != r.Status {
		log.Info(log.CatHealth, "Backend health changed", "from", prev, "to", r.Status, "error", r.Err)
	}
	return r
}

func (m *Monitor) report(resp *backend.HealthResponse, err error) Report {
	r := Report{CheckedAt: m.clock.Now()}
	switch {
	case err == nil && resp.Status == string(StatusHealthy):
		r.Status = StatusHealthy
		r.Service = resp.Service
	case err == nil:
		r.Status = StatusUnhealthy
		r.Service = resp.Service
		r.Err = fmt.Errorf("service reported %q: %s", resp.Status, resp.Error)
	case backend.IsStatusError(err):
		r.Status = StatusUnhealthy
		r.Err = err
	default:
		r.Status = StatusUnreachable
		r.Err = err
	}
	return r
}

// Start begins periodic probing. It is a no-op if already started.
func (m *Monitor) Start(ctx context.Context) {
	m.mu.Lock()
	if m.done != nil {
		m.mu.Unlock()
		return
	}
	ctx, m.cancel = context.WithCancel(ctx)
	m.done = make(chan struct{})
	done := m.done
	m.mu.Unlock()

	log.SafeGo("health.loop", func() {
		defer close(done)
		m.loop(ctx)
	})
}

// Stop ends the probing loop and waits for it to exit. It is safe to call
// Stop multiple times or before Start.
func (m *Monitor) Stop() {
	m.mu.Lock()
	cancel, done := m.cancel, m.done
	m.cancel, m.done = nil, nil
	m.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (m *Monitor) loop(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		r := m.Refresh(ctx)
		if ctx.Err() != nil {
			return
		}
		if m.onReport != nil {
			m.onReport(r)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
