package model

import (
	"strconv"
	"time"
)

type AnalysisJobStatus string

const (
	AnalysisJobStatusPending    AnalysisJobStatus = "pending"
	AnalysisJobStatusProcessing AnalysisJobStatus = "processing"
	AnalysisJobStatusCompleted  AnalysisJobStatus = "completed"
	AnalysisJobStatusFailed     AnalysisJobStatus = "failed"
)

// RequesterAutomatic marks analysis jobs created by the completion
// detector rather than a teacher-initiated request.
const RequesterAutomatic = "system-automatic-analysis"

// AnalysisJobID derives the deterministic identifier for the analysis of
// one session. Concurrent or repeated triggers for the same session
// always address the same record, which is the dedup invariant.
func AnalysisJobID(classID string, startTime time.Time) string {
	return classID + "_" + strconv.FormatInt(startTime.UnixMilli(), 10)
}

// AnalysisJob is one dispatched analysis request for a completed session.
type AnalysisJob struct {
	ID          string
	ClassID     string
	Requester   string
	StartTime   time.Time
	EndTime     time.Time
	FilterField string
	Prompt      string
	Status      AnalysisJobStatus
	Deleted     bool
	// Results maps a student label to the generated analysis text.
	Results   map[string]string
	Cost      float64
	LastError string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewAutomaticAnalysisJob builds the pending job the dispatcher creates
// once a session's capture jobs have all reached a terminal state.
func NewAutomaticAnalysisJob(classID string, startTime, endTime time.Time, prompt string) *AnalysisJob {
	return &AnalysisJob{
		ID:          AnalysisJobID(classID, startTime),
		ClassID:     classID,
		Requester:   RequesterAutomatic,
		StartTime:   startTime,
		EndTime:     endTime,
		FilterField: "videoTime",
		Prompt:      prompt,
		Status:      AnalysisJobStatusPending,
		Deleted:     false,
	}
}
