package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() { register(aiCallLatency, aiTokensTotal) }

var aiCallLatency = prometheus.NewHistogram(
	prometheus.HistogramOpts{
		Name:    "ai_analysis_latency_seconds",
		Help:    "Latency of generative-analysis calls.",
		Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
	},
)

var aiTokensTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "ai_tokens_total",
		Help: "Tokens reported by the analysis provider.",
	},
	[]string{"kind"}, // 'prompt', 'completion'
)

func ObserveAILatency(d time.Duration) { aiCallLatency.Observe(d.Seconds()) }

func AddAITokens(prompt, completion int) {
	aiTokensTotal.WithLabelValues("prompt").Add(float64(prompt))
	aiTokensTotal.WithLabelValues("completion").Add(float64(completion))
}
