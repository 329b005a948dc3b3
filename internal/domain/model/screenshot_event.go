package model

import "time"

// ScreenshotEvent is an immutable presence sample recorded when a
// student's screen was captured. Append-only; never mutated.
type ScreenshotEvent struct {
	ID        string
	ClassID   string
	Email     string
	Timestamp time.Time
}

// TaskObservation is the payload of a task-observation record created
// by the capture pipeline; it drives the task-timer aggregator.
type TaskObservation struct {
	StudentUID  string
	ClassID     string
	CurrentTask string
	Timestamp   time.Time
}
