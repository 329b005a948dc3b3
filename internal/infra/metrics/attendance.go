package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() { register(attendanceRequestsTotal, attendanceDuration) }

var attendanceRequestsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "attendance_requests_total",
		Help: "Attendance computations served, labeled by outcome.",
	},
	[]string{"outcome"}, // 'ok', 'invalid', 'not_found', 'error'
)

var attendanceDuration = prometheus.NewHistogram(
	prometheus.HistogramOpts{
		Name:    "attendance_compute_seconds",
		Help:    "Wall time of one attendance computation.",
		Buckets: prometheus.DefBuckets,
	},
)

func IncAttendanceRequest(outcome string) { attendanceRequestsTotal.WithLabelValues(outcome).Inc() }

func ObserveAttendanceDuration(d time.Duration) { attendanceDuration.Observe(d.Seconds()) }
