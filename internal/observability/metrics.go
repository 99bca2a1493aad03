package observability

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/yungbote/bookhaven-backend/internal/platform/envutil"
	"github.com/yungbote/bookhaven-backend/internal/platform/logger"
)

type Metrics struct {
	apiRequests *CounterVec
	apiLatency  *HistogramVec
	apiInflight *Gauge

	cartMutations  *CounterVec
	orderOutcomes  *CounterVec
	orderTotal     *Counter
	storageErrors  *CounterVec
	formOutcomes   *CounterVec
	busPublishes   *CounterVec
	sessionsIssued *Counter

	dbStats   *GaugeVec
	redisUp   *Gauge
	redisPing *Gauge
}

var (
	initOnce sync.Once
	instance *Metrics
)

func Enabled() bool {
	return envutil.Bool("METRICS_ENABLED", false)
}

// Current returns the process metrics, or nil when metrics are disabled.
// Every method is safe on a nil receiver.
func Current() *Metrics {
	return instance
}

func Init(log *logger.Logger) *Metrics {
	if !Enabled() {
		return nil
	}
	initOnce.Do(func() {
		instance = newMetrics()
		if log != nil {
			log.Info("metrics enabled")
		}
	})
	return instance
}

func newMetrics() *Metrics {
	return &Metrics{
		apiRequests: NewCounterVec("bh_api_requests_total", "API requests by method/route/status.", []string{"method", "route", "status"}),
		apiLatency: NewHistogramVec(
			"bh_api_request_duration_seconds",
			"API request latency in seconds by method/route.",
			[]string{"method", "route"},
			nil,
		),
		apiInflight:    NewGauge("bh_api_inflight_requests", "In-flight API requests."),
		cartMutations:  NewCounterVec("bh_cart_mutations_total", "Cart mutations by operation.", []string{"op"}),
		orderOutcomes:  NewCounterVec("bh_order_outcomes_total", "Order processing outcomes by kind.", []string{"kind"}),
		orderTotal:     NewCounter("bh_order_revenue_total", "Sum of successful order totals."),
		storageErrors:  NewCounterVec("bh_session_storage_errors_total", "Absorbed session storage failures by kind.", []string{"kind"}),
		formOutcomes:   NewCounterVec("bh_form_submissions_total", "Form submissions by form/result.", []string{"form", "result"}),
		busPublishes:   NewCounterVec("bh_bus_publish_total", "Cart events published by kind/status.", []string{"kind", "status"}),
		sessionsIssued: NewCounter("bh_sessions_issued_total", "Browser sessions issued."),
		dbStats:        NewGaugeVec("bh_db_pool", "SQL connection pool stats.", []string{"stat"}),
		redisUp:        NewGauge("bh_redis_up", "1 when the last redis ping succeeded."),
		redisPing:      NewGauge("bh_redis_ping_seconds", "Latency of the last redis ping."),
	}
}

func (m *Metrics) WriteHTTP(w http.ResponseWriter, r *http.Request) {
	if m == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	_ = m.WritePrometheus(w)
}

func (m *Metrics) WritePrometheus(w io.Writer) error {
	if m == nil {
		return nil
	}
	writers := []interface{ WritePrometheus(io.Writer) error }{
		m.apiRequests, m.apiLatency, m.apiInflight,
		m.cartMutations, m.orderOutcomes, m.orderTotal,
		m.storageErrors, m.formOutcomes, m.busPublishes, m.sessionsIssued,
		m.dbStats, m.redisUp, m.redisPing,
	}
	for _, mw := range writers {
		if err := mw.WritePrometheus(w); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	if method == "" {
		method = "UNKNOWN"
	}
	if route == "" {
		route = "unknown"
	}
	m.apiRequests.Inc(method, route, status)
	m.apiLatency.Observe(dur.Seconds(), method, route)
}

func (m *Metrics) ApiInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.Add(1)
}

func (m *Metrics) ApiInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.Add(-1)
}

func (m *Metrics) IncCartMutation(op string) {
	if m == nil {
		return
	}
	m.cartMutations.Inc(op)
}

func (m *Metrics) ObserveOrder(kind string, total float64) {
	if m == nil {
		return
	}
	m.orderOutcomes.Inc(kind)
	if total > 0 {
		m.orderTotal.Add(total)
	}
}

func (m *Metrics) IncStorageError(kind string) {
	if m == nil {
		return
	}
	m.storageErrors.Inc(kind)
}

func (m *Metrics) IncForm(form, result string) {
	if m == nil {
		return
	}
	m.formOutcomes.Inc(form, result)
}

func (m *Metrics) IncBusPublish(kind, status string) {
	if m == nil {
		return
	}
	m.busPublishes.Inc(kind, status)
}

func (m *Metrics) IncSessionIssued() {
	if m == nil {
		return
	}
	m.sessionsIssued.Inc()
}

func scrapeInterval() time.Duration {
	return envutil.Duration("METRICS_SCRAPE_INTERVAL_SECONDS", 10*time.Second)
}

func (m *Metrics) StartDBCollector(ctx context.Context, log *logger.Logger, db *gorm.DB) {
	if m == nil || db == nil {
		return
	}
	go func() {
		ticker := time.NewTicker(scrapeInterval())
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				sqlDB, err := db.DB()
				if err != nil {
					if log != nil {
						log.Warn("metrics: db stats unavailable", "error", err)
					}
					continue
				}
				stats := sqlDB.Stats()
				m.dbStats.Set(float64(stats.OpenConnections), "open_connections")
				m.dbStats.Set(float64(stats.InUse), "in_use")
				m.dbStats.Set(float64(stats.Idle), "idle")
				m.dbStats.Set(float64(stats.WaitCount), "wait_count")
				m.dbStats.Set(stats.WaitDuration.Seconds(), "wait_duration_seconds")
			}
		}
	}()
}

// StartRedisCollector pings the session backend on every scrape interval.
// It borrows the caller's client and never closes it.
func (m *Metrics) StartRedisCollector(ctx context.Context, log *logger.Logger, rdb redis.UniversalClient) {
	if m == nil || rdb == nil {
		return
	}
	go func() {
		ticker := time.NewTicker(scrapeInterval())
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				start := time.Now()
				if err := rdb.Ping(ctx).Err(); err != nil {
					m.redisUp.Set(0)
					if log != nil && !strings.Contains(err.Error(), "context canceled") {
						log.Warn("metrics: redis ping failed", "error", err)
					}
					continue
				}
				m.redisUp.Set(1)
				m.redisPing.Set(time.Since(start).Seconds())
			}
		}
	}()
}
