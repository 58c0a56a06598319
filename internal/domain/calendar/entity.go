// Package calendar contains the calendar event domain model.
package calendar

import (
	"sort"
	"time"

	"github.com/snapx-edu/academy-hub/internal/domain/course"
)

// Category classifies a calendar event.
type Category string

const (
	CategoryExam     Category = "exam"
	CategoryDeadline Category = "deadline"
	CategoryStudy    Category = "study"
	CategorySocial   Category = "social"
)

// IsValid checks that the category is one of the known values.
func (c Category) IsValid() bool {
	switch c {
	case CategoryExam, CategoryDeadline, CategoryStudy, CategorySocial:
		return true
	default:
		return false
	}
}

// ParseCategory parses a wire category, defaulting to study for anything
// unrecognised.
func ParseCategory(s string) Category {
	c := Category(s)
	if c.IsValid() {
		return c
	}
	return CategoryStudy
}

// Event is a calendar entry. Events are immutable once created; there are no
// edit or delete operations.
type Event struct {
	ID          string
	Title       string
	Date        time.Time
	Category    Category
	CourseID    course.ID // optional
	Duration    string    // optional, e.g. "2h"
	Description string    // optional
}

// SortByDate orders events by date ascending, in place.
func SortByDate(events []Event) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Date.Before(events[j].Date)
	})
}
