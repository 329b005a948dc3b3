package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(classCacheTotal) }

var classCacheTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "class_config_cache_total",
		Help: "Class config cache lookups, labeled hit or miss.",
	},
	[]string{"result"},
)

func IncClassCache(hit bool) {
	if hit {
		classCacheTotal.WithLabelValues("hit").Inc()
		return
	}
	classCacheTotal.WithLabelValues("miss").Inc()
}
