package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Engine metrics
var (
	PullsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNamePullsTotal,
			Help: HelpTextPullsTotal,
		},
		[]string{LabelTier},
	)

	PityTriggersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNamePityTriggersTotal,
			Help: HelpTextPityTriggersTotal,
		},
		[]string{LabelTier},
	)

	FallbacksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameFallbacksTotal,
			Help: HelpTextFallbacksTotal,
		},
	)

	PacksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNamePacksTotal,
			Help: HelpTextPacksTotal,
		},
		[]string{LabelOutcome},
	)

	CurrencySpent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameCurrencySpent,
			Help: HelpTextCurrencySpent,
		},
	)

	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: MetricNameActiveSessions,
			Help: HelpTextActiveSessions,
		},
	)
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameHTTPRequestsTotal,
			Help: HelpTextHTTPRequestsTotal,
		},
		[]string{LabelMethod, LabelPath, LabelStatus},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    MetricNameHTTPRequestDuration,
			Help:    HelpTextHTTPRequestDuration,
			Buckets: prometheus.DefBuckets,
		},
		[]string{LabelMethod, LabelPath},
	)
)
