package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	ProviderLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "signalgate",
			Subsystem: "providers",
			Name:      "latency_seconds",
			Help:      "Latency of external data provider calls",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"provider"},
	)

	ProviderErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "signalgate",
			Subsystem: "providers",
			Name:      "errors_total",
			Help:      "Errors by external data provider",
		},
		[]string{"provider"},
	)

	ProviderCacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "signalgate",
			Subsystem: "providers",
			Name:      "cache_hits_total",
			Help:      "Provider results served from cache",
		},
		[]string{"provider"},
	)
)

func Register() {
	once.Do(func() {
		prometheus.MustRegister(ProviderLatency, ProviderErrors, ProviderCacheHits)
	})
}
