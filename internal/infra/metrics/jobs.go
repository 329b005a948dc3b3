package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(analysisDispatchedTotal, analysisDedupHitsTotal, videoJobsReclaimedTotal, analysisJobsProcessedTotal)
}

var analysisDispatchedTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "analysis_jobs_dispatched_total",
		Help: "Analysis jobs created by the session completion detector.",
	},
)

var analysisDedupHitsTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "analysis_dispatch_dedup_hits_total",
		Help: "Dispatch attempts absorbed by the deterministic-id dedup.",
	},
)

var videoJobsReclaimedTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "video_jobs_reclaimed_total",
		Help: "Capture jobs marked failed by the stuck-job reclaimer.",
	},
)

var analysisJobsProcessedTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "analysis_jobs_processed_total",
		Help: "Analysis jobs processed by the runner, labeled by status.",
	},
	[]string{"status"}, // 'completed', 'failed'
)

func IncAnalysisDispatched()       { analysisDispatchedTotal.Inc() }
func IncAnalysisDedupHit()         { analysisDedupHitsTotal.Inc() }
func IncJobsReclaimed(n int)       { videoJobsReclaimedTotal.Add(float64(n)) }
func IncAnalysisJob(status string) { analysisJobsProcessedTotal.WithLabelValues(status).Inc() }
