// Package metrics records managed-service calls made by the pipeline stages, both as
// Prometheus series and as in-process per-provider statistics.
package metrics

import (
	"sort"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	apperrors "voice-relay/internal/app/errors"
)

const namespace = "voice_relay"

// Recorder receives the outcome of every managed-service call.
type Recorder interface {
	RecordSuccess(provider, operation string, latency time.Duration)
	RecordFailure(provider, operation string, err error)
}

// Nop discards everything.
type Nop struct{}

func (Nop) RecordSuccess(string, string, time.Duration) {}
func (Nop) RecordFailure(string, string, error)         {}

// ProviderStats summarizes the calls made to one provider.
type ProviderStats struct {
	Provider           string           `json:"provider"`
	TotalRequests      int64            `json:"total_requests"`
	SuccessfulRequests int64            `json:"successful_requests"`
	FailedRequests     int64            `json:"failed_requests"`
	SuccessRate        float64          `json:"success_rate"`
	AverageLatencyMs   float64          `json:"average_latency_ms"`
	LastUsed           int64            `json:"last_used_timestamp"`
	IsHealthy          bool             `json:"is_healthy"`
	ErrorBreakdown     map[string]int64 `json:"error_breakdown"`
}

// ProviderMetrics implements Recorder.
type ProviderMetrics struct {
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
	failures *prometheus.CounterVec

	mu    sync.RWMutex
	stats map[string]*ProviderStats
}

// NewProviderMetrics creates the collectors and registers them with reg. A nil reg skips
// registration.
func NewProviderMetrics(reg prometheus.Registerer) (*ProviderMetrics, error) {
	m := &ProviderMetrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_requests_total",
			Help:      "Managed-service calls by provider, operation and result.",
		}, []string{"provider", "operation", "result"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "provider_request_duration_seconds",
			Help:      "Latency of successful managed-service calls.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
		}, []string{"provider", "operation"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_failures_total",
			Help:      "Failed managed-service calls by error kind.",
		}, []string{"provider", "operation", "kind"}),
		stats: make(map[string]*ProviderStats),
	}

	if reg != nil {
		for _, c := range []prometheus.Collector{m.requests, m.latency, m.failures} {
			if err := reg.Register(c); err != nil {
				return nil, err
			}
		}
	}
	return m, nil
}

// RecordSuccess records a successful call.
func (m *ProviderMetrics) RecordSuccess(provider, operation string, latency time.Duration) {
	m.requests.WithLabelValues(provider, operation, "success").Inc()
	m.latency.WithLabelValues(provider, operation).Observe(latency.Seconds())

	m.mu.Lock()
	defer m.mu.Unlock()

	stats := m.getOrCreateStats(provider)
	stats.TotalRequests++
	stats.SuccessfulRequests++
	stats.LastUsed = time.Now().Unix()
	stats.IsHealthy = true

	ms := float64(latency.Milliseconds())
	if stats.AverageLatencyMs == 0 {
		stats.AverageLatencyMs = ms
	} else {
		// weighted toward recent calls
		stats.AverageLatencyMs = stats.AverageLatencyMs*0.8 + ms*0.2
	}
	stats.SuccessRate = float64(stats.SuccessfulRequests) / float64(stats.TotalRequests)
}

// RecordFailure records a failed call, classified by error kind.
func (m *ProviderMetrics) RecordFailure(provider, operation string, err error) {
	kind := apperrors.KindOf(err).String()
	m.requests.WithLabelValues(provider, operation, "failure").Inc()
	m.failures.WithLabelValues(provider, operation, kind).Inc()

	m.mu.Lock()
	defer m.mu.Unlock()

	stats := m.getOrCreateStats(provider)
	stats.TotalRequests++
	stats.FailedRequests++
	stats.LastUsed = time.Now().Unix()
	stats.ErrorBreakdown[kind]++
	stats.SuccessRate = float64(stats.SuccessfulRequests) / float64(stats.TotalRequests)

	if stats.TotalRequests >= 10 && stats.SuccessRate < 0.5 {
		stats.IsHealthy = false
	}
}

// Stats returns a copy of the statistics of every provider seen so far, sorted by name.
func (m *ProviderMetrics) Stats() []ProviderStats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]ProviderStats, 0, len(m.stats))
	for _, s := range m.stats {
		c := *s
		c.ErrorBreakdown = make(map[string]int64, len(s.ErrorBreakdown))
		for k, v := range s.ErrorBreakdown {
			c.ErrorBreakdown[k] = v
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Provider < out[j].Provider })
	return out
}

// must be called with the lock held
func (m *ProviderMetrics) getOrCreateStats(provider string) *ProviderStats {
	stats, ok := m.stats[provider]
	if !ok {
		stats = &ProviderStats{
			Provider:       provider,
			IsHealthy:      true,
			ErrorBreakdown: make(map[string]int64),
		}
		m.stats[provider] = stats
	}
	return stats
}

// Observe times fn and records its outcome on r.
func Observe(r Recorder, provider, operation string, fn func() error) error {
	start := time.Now()
	err := fn()
	if err != nil {
		r.RecordFailure(provider, operation, err)
		return err
	}
	r.RecordSuccess(provider, operation, time.Since(start))
	return nil
}
