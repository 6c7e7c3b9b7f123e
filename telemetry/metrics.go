// Package telemetry provides Prometheus metrics and correlation-id aware logging helpers.
package telemetry

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	once sync.Once

	// Counters
	MessagesSeen       prometheus.Counter
	MessagesDropped    prometheus.Counter
	CommandsDispatched prometheus.Counter
	MutedRejections    prometheus.Counter
	MutesExpired       prometheus.Counter
	Reconnects         prometheus.Counter

	// Histograms (seconds)
	DispatchDuration prometheus.Observer

	// Gauges
	ActiveMutesGauge prometheus.Gauge
	AfkUsersGauge    prometheus.Gauge
	ConnectedGauge   prometheus.Gauge // 1=connected,0=disconnected
)

// Init registers metrics (idempotent).
func Init() {
	once.Do(func() {
		MessagesSeen = promauto.NewCounter(prometheus.CounterOpts{Name: "bot_messages_seen_total", Help: "Number of chat messages observed"})
		MessagesDropped = promauto.NewCounter(prometheus.CounterOpts{Name: "bot_messages_dropped_total", Help: "Number of inbound frames dropped as malformed"})
		CommandsDispatched = promauto.NewCounter(prometheus.CounterOpts{Name: "bot_commands_dispatched_total", Help: "Number of commands matched and handled"})
		MutedRejections = promauto.NewCounter(prometheus.CounterOpts{Name: "bot_muted_rejections_total", Help: "Number of messages short-circuited because the speaker was muted"})
		MutesExpired = promauto.NewCounter(prometheus.CounterOpts{Name: "bot_mutes_expired_total", Help: "Number of temporary mutes lapsed by the sweeper"})
		Reconnects = promauto.NewCounter(prometheus.CounterOpts{Name: "bot_reconnects_total", Help: "Number of websocket reconnect attempts"})
		DispatchDuration = promauto.NewHistogram(prometheus.HistogramOpts{Name: "bot_dispatch_duration_seconds", Help: "Dispatch duration seconds", Buckets: prometheus.DefBuckets})
		ActiveMutesGauge = promauto.NewGauge(prometheus.GaugeOpts{Name: "bot_active_mutes", Help: "Current number of muted users"})
		AfkUsersGauge = promauto.NewGauge(prometheus.GaugeOpts{Name: "bot_afk_users", Help: "Current number of users marked AFK"})
		ConnectedGauge = promauto.NewGauge(prometheus.GaugeOpts{Name: "bot_connected", Help: "Websocket connected=1 disconnected=0"})
	})
}

// UpdateConnectedGauge sets gauge to 1 if connected else 0.
func UpdateConnectedGauge(connected bool) {
	if ConnectedGauge != nil {
		if connected {
			ConnectedGauge.Set(1)
		} else {
			ConnectedGauge.Set(0)
		}
	}
}

// SetActiveMutes records the current muted user count.
func SetActiveMutes(n int) {
	if ActiveMutesGauge != nil {
		ActiveMutesGauge.Set(float64(n))
	}
}

// SetAfkUsers records the current AFK user count.
func SetAfkUsers(n int) {
	if AfkUsersGauge != nil {
		AfkUsersGauge.Set(float64(n))
	}
}

// TimeFunc measures the duration of fn and records in observer if non-nil.
func TimeFunc(obs prometheus.Observer, fn func()) time.Duration {
	start := time.Now()
	fn()
	d := time.Since(start)
	if obs != nil {
		obs.Observe(d.Seconds())
	}
	return d
}

// Correlation ID helpers ----------------------------------------------------
type corrKeyType struct{}

var corrKey corrKeyType

// WithCorrelation returns a new context embedding correlation id (if absent) and the id.
func WithCorrelation(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, corrKey, id)
}

// GetCorrelation returns correlation id or empty string.
func GetCorrelation(ctx context.Context) string {
	v := ctx.Value(corrKey)
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// LoggerWithCorr returns a logger with corr attribute if present.
func LoggerWithCorr(ctx context.Context) *slog.Logger {
	if id := GetCorrelation(ctx); id != "" {
		return slog.Default().With(slog.String("corr", id))
	}
	return slog.Default()
}
