package model

import (
	"sort"
	"strings"
)

// ClassConfig is the external, read-only class record: roster plus the
// switches that drive automatic analysis dispatch.
type ClassConfig struct {
	ID string
	// Students maps a stable student uid to the student's email.
	Students              map[string]string
	TimeZone              string
	AutomaticCombine      bool
	AfterClassVideoPrompt string
}

// NormalizeEmail strips surrounding whitespace and lowercases. All
// roster and event emails are compared in this form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

type RosterEntry struct {
	UID   string
	Email string
}

// Roster returns the students sorted lexicographically by normalized
// email. The sort order is the contract for reproducible output.
func (c *ClassConfig) Roster() []RosterEntry {
	out := make([]RosterEntry, 0, len(c.Students))
	for uid, email := range c.Students {
		out = append(out, RosterEntry{UID: uid, Email: NormalizeEmail(email)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out
}

// TotalStudents is the completeness denominator for session detection.
func (c *ClassConfig) TotalStudents() int {
	return len(c.Students)
}
