package model

import "time"

type VideoJobStatus string

const (
	VideoJobStatusPending    VideoJobStatus = "pending"
	VideoJobStatusProcessing VideoJobStatus = "processing"
	VideoJobStatusCompleted  VideoJobStatus = "completed"
	VideoJobStatusFailed     VideoJobStatus = "failed"
)

// videoJobTransitions is the closed transition table for capture jobs.
// Terminal states have no outgoing edges.
var videoJobTransitions = map[VideoJobStatus][]VideoJobStatus{
	VideoJobStatusPending:    {VideoJobStatusProcessing, VideoJobStatusCompleted, VideoJobStatusFailed},
	VideoJobStatusProcessing: {VideoJobStatusCompleted, VideoJobStatusFailed},
	VideoJobStatusCompleted:  {},
	VideoJobStatusFailed:     {},
}

func (s VideoJobStatus) Valid() bool {
	_, ok := videoJobTransitions[s]
	return ok
}

func (s VideoJobStatus) Terminal() bool {
	return s == VideoJobStatusCompleted || s == VideoJobStatusFailed
}

// CanTransitionTo reports whether the transition s -> next is allowed
// by the transition table.
func (s VideoJobStatus) CanTransitionTo(next VideoJobStatus) bool {
	for _, t := range videoJobTransitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

// EnteredTerminal reports whether a status change moved a job into a
// terminal state from a non-terminal one. Duplicate deliveries of an
// already-terminal job report false.
func EnteredTerminal(before, after VideoJobStatus) bool {
	return !before.Terminal() && after.Terminal()
}

// VideoJob is one per-student capture task within a lesson session.
// A session is the set of jobs sharing the same (ClassID, StartTime, EndTime).
type VideoJob struct {
	ID           string
	ClassID      string
	StudentEmail string
	Status       VideoJobStatus
	MediaPath    string
	StartedAt    time.Time
	StartTime    time.Time
	EndTime      time.Time
	FinishedAt   time.Time
	Error        string
}

// HasSessionKey reports whether the job carries the full grouping triple.
func (j *VideoJob) HasSessionKey() bool {
	return j.ClassID != "" && !j.StartTime.IsZero() && !j.EndTime.IsZero()
}
