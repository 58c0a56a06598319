// Package course contains the course and enrollment domain model for the
// SnapX Academy dashboard. This is the core of the business logic - there are
// no external dependencies here.
package course

import (
	"math"
	"strings"
)

// ══════════════════════════════════════════════════════════════════════════════
// VALUE OBJECTS
// ══════════════════════════════════════════════════════════════════════════════

// ID identifies a course. It is the remote record identifier (sys_id) when the
// course came from the record store, or a local id from the sample catalog.
type ID string

// IsValid checks that the course ID is non-empty and contains no whitespace.
func (id ID) IsValid() bool {
	s := string(id)
	return len(s) > 0 && !strings.ContainsAny(s, " \t\n\r")
}

// String returns the string representation of the ID.
func (id ID) String() string {
	return string(id)
}

// ComputeProgress returns the integer percentage of completed modules,
// rounded half-up. Returns 0 when total is not positive.
func ComputeProgress(completed, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(completed) / float64(total) * 100))
}

// ══════════════════════════════════════════════════════════════════════════════
// COURSE ENTITY
// ══════════════════════════════════════════════════════════════════════════════

// Course is the domain-normalized course shape, independent of the remote
// wire format.
type Course struct {
	ID               ID
	Title            string
	Instructor       string
	Category         string
	Description      string
	Thumbnail        string
	NextLesson       string
	TotalModules     int
	CompletedModules int
	Progress         int // integer percentage, 0..100
	Enrolled         bool
	Recommended      bool
	Skills           []string
	Rating           float64
	StudentsEnrolled int
}

// Validate checks the structural invariants of the course.
func (c *Course) Validate() error {
	if !c.ID.IsValid() {
		return ErrInvalidID
	}
	if c.TotalModules < 0 {
		return ErrNegativeModules
	}
	if c.CompletedModules < 0 || c.CompletedModules > c.TotalModules {
		return ErrModulesRange
	}
	if c.Progress < 0 || c.Progress > 100 {
		return ErrProgressRange
	}
	return nil
}

// AtCeiling reports whether every module has been completed.
func (c *Course) AtCeiling() bool {
	return c.CompletedModules >= c.TotalModules
}

// Enroll marks the course as enrolled. Returns false when the course was
// already enrolled; re-enrolling is a no-op.
func (c *Course) Enroll() bool {
	if c.Enrolled {
		return false
	}
	c.Enrolled = true
	return true
}

// CompleteModule advances completion by one module and recomputes progress.
// It is idempotent at the ceiling: once all modules are complete it returns
// false and leaves the course unchanged.
func (c *Course) CompleteModule() bool {
	if c.AtCeiling() {
		return false
	}
	c.CompletedModules++
	c.Progress = ComputeProgress(c.CompletedModules, c.TotalModules)
	return true
}

// ApplyEnrollment overlays stored enrollment state onto a freshly fetched
// course during the initial-load merge.
func (c *Course) ApplyEnrollment(progress, completedModules int) {
	c.Enrolled = true
	c.Progress = progress
	c.CompletedModules = completedModules
}

// Clone returns a deep copy of the course. The skills slice is copied so the
// clone shares no mutable state with the original.
func (c *Course) Clone() Course {
	clone := *c
	if c.Skills != nil {
		clone.Skills = make([]string, len(c.Skills))
		copy(clone.Skills, c.Skills)
	}
	return clone
}

// ══════════════════════════════════════════════════════════════════════════════
// ENROLLMENT
// ══════════════════════════════════════════════════════════════════════════════

// Enrollment is the relation between a user and a course, carrying stored
// progress state. It is created by the record store; within a session the
// store only needs its identifier and the parsed progress values.
type Enrollment struct {
	ID               string // remote enrollment record id
	CourseID         ID
	StudentEmail     string
	Progress         int
	CompletedModules int
	Active           bool
}

// Matches reports whether the enrollment references the given course.
func (e *Enrollment) Matches(courseID ID) bool {
	return e.CourseID == courseID
}
