// Package assessment contains the assessment domain model.
package assessment

// Status is the lifecycle state of an assessment. The lifecycle reads
// Draft → Published → Graded, but transition order is not enforced: a create
// call may set any status directly.
type Status string

const (
	StatusDraft     Status = "Draft"
	StatusPublished Status = "Published"
	StatusGraded    Status = "Graded"
)

// IsValid checks that the status is one of the known values.
func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusPublished, StatusGraded:
		return true
	default:
		return false
	}
}

// ParseStatus parses a wire status, defaulting to Draft for anything
// unrecognised.
func ParseStatus(s string) Status {
	st := Status(s)
	if st.IsValid() {
		return st
	}
	return StatusDraft
}

// Assessment is a graded piece of coursework.
type Assessment struct {
	ID          string
	CourseID    string
	Title       string
	DueDate     string // vendor date format, YYYY-MM-DD
	TotalPoints int
	AvgScore    int
	Status      Status
	Questions   int
}
