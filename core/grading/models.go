// Package grading implements the grade record domain: the Repository
// contract over the directory-backed store, the weighted aggregation engine
// and tabulated output.
package grading

import "time"

// Grade is the stored record for one (student, assignment) pair. Absence of
// a Grade means "ungraded", which is distinct from a zero grade: ungraded
// work never counts against a running total.
type Grade struct {
	Student    string
	Assignment string
	Points     float64
	Comment    string
	Late       bool
	Notified   bool
}

// TodoItem flags a submission that still needs grading: either no grade is
// recorded yet, or the latest submission is newer than the grade file.
type TodoItem struct {
	Student     string
	Assignment  string
	SubmittedAt time.Time
}
