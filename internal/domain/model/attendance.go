package model

import "fmt"

// AttendanceRow is one student's per-minute presence over a lesson
// window. Attendance holds one 0/1 value per minute.
type AttendanceRow struct {
	Email        string `json:"email"`
	TotalMinutes int    `json:"totalMinutes"`
	Percentage   string `json:"percentage"`
	Attendance   []int  `json:"attendance"`
}

// FormatPercentage renders present/total as a two-decimal percent
// string, e.g. "3.33%". A zero total yields "0.00%".
func FormatPercentage(present, total int) string {
	if total <= 0 {
		return "0.00%"
	}
	return fmt.Sprintf("%.2f%%", float64(present)/float64(total)*100)
}
