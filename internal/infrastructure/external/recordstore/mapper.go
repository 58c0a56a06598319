package recordstore

import (
	"strings"
	"time"

	"github.com/snapx-edu/academy-hub/internal/domain/assessment"
	"github.com/snapx-edu/academy-hub/internal/domain/calendar"
	"github.com/snapx-edu/academy-hub/internal/domain/course"
	"github.com/snapx-edu/academy-hub/internal/domain/nudge"
	"github.com/snapx-edu/academy-hub/internal/domain/student"
)

// wireDateFormat is the date format the table API stores for event and due
// dates.
const wireDateFormat = "2006-01-02"

// wireDateTimeFormat is the timestamp format some tables use instead.
const wireDateTimeFormat = "2006-01-02 15:04:05"

// Defaults applied when a record is missing presentation fields.
const (
	defaultThumbnail    = "https://images.unsplash.com/photo-1516321318423-f06f85e504b3?w=800&q=80"
	defaultTotalModules = 10
	defaultRating       = 4.8
	defaultDuration     = "1h"
	defaultDescription  = "Synced from the record store"
)

// ══════════════════════════════════════════════════════════════════════════════
// MAPPER - wire records to domain entities
// ══════════════════════════════════════════════════════════════════════════════

// Mapper transforms record store rows into domain entities. It is the
// anti-corruption layer: wire naming and the dual-shape field encoding never
// leak past this package.
type Mapper struct{}

// NewMapper creates a new Mapper instance.
func NewMapper() *Mapper {
	return &Mapper{}
}

// CourseFromRecord converts a course row to the domain Course. The result is
// unenriched: enrollment state is merged later by the state store.
func (m *Mapper) CourseFromRecord(r *CourseRecord) course.Course {
	var skills []string
	if raw := r.Skills.Raw(); raw != "" {
		skills = strings.Split(raw, ",")
	}

	return course.Course{
		ID:               course.ID(r.SysID.Raw()),
		Title:            r.Title.Display(),
		Instructor:       r.Instructor.Display(),
		Category:         r.Category.Display(),
		Description:      r.Description.Display(),
		Thumbnail:        r.ThumbnailURL.String(defaultThumbnail),
		TotalModules:     r.TotalModules.Int(defaultTotalModules),
		CompletedModules: 0,
		Progress:         0,
		Enrolled:         false,
		Recommended:      r.Recommended.Bool(),
		Skills:           skills,
		Rating:           r.Rating.Float(defaultRating),
		StudentsEnrolled: 0,
	}
}

// EnrollmentFromRecord converts an enrollment row. Stored progress values
// parse as integers, defaulting to 0 on parse failure. The course reference
// uses the raw value: identity, not presentation.
func (m *Mapper) EnrollmentFromRecord(r *EnrollmentRecord) course.Enrollment {
	return course.Enrollment{
		ID:               r.SysID.Raw(),
		CourseID:         course.ID(r.Course.Raw()),
		StudentEmail:     r.StudentEmail.Raw(),
		Progress:         r.Progress.Int(0),
		CompletedModules: r.CompletedModules.Int(0),
		Active:           r.Active.Bool(),
	}
}

// EventFromRecord converts a calendar event row.
func (m *Mapper) EventFromRecord(r *EventRecord) calendar.Event {
	return calendar.Event{
		ID:          r.SysID.Raw(),
		Title:       r.Title.Display(),
		Date:        parseWireDate(r.Date.Raw()),
		Category:    calendar.ParseCategory(r.Type.Raw()),
		CourseID:    course.ID(r.Course.Raw()),
		Description: r.Description.String(defaultDescription),
		Duration:    defaultDuration,
	}
}

// ProfileFromRecord converts a student profile row. The store keeps no name
// column, so name and avatar derive from the email.
func (m *Mapper) ProfileFromRecord(r *StudentProfileRecord) student.Profile {
	email := r.StudentEmail.Raw()
	return student.Profile{
		ID:             r.SysID.Raw(),
		Name:           student.NameFromEmail(email),
		Email:          email,
		Avatar:         student.AvatarFromEmail(email),
		GPA:            r.GPA.Float(0.0),
		Attendance:     r.AttendanceScore.Int(0),
		StrongestSkill: r.StrongestSkill.String("General"),
		WeakestSkill:   r.WeakestSkill.String("None"),
		RecentGrades:   []int{},
	}
}

// AssessmentFromRecord converts an assessment row.
func (m *Mapper) AssessmentFromRecord(r *AssessmentRecord) assessment.Assessment {
	courseID := r.Course.Raw()
	if courseID == "" {
		courseID = "Unknown"
	}
	return assessment.Assessment{
		ID:          r.SysID.Raw(),
		CourseID:    courseID,
		Title:       r.Title.Display(),
		DueDate:     r.DueDate.Raw(),
		TotalPoints: r.TotalPoints.Int(0),
		AvgScore:    r.AvgScore.Int(0),
		Status:      assessment.ParseStatus(r.Status.Raw()),
		Questions:   10,
	}
}

// NudgeFromRecord converts a nudge row.
func (m *Mapper) NudgeFromRecord(r *NudgeRecord) nudge.Nudge {
	return nudge.Nudge{
		ID:          r.SysID.Raw(),
		Category:    nudge.Category(r.Type.Raw()),
		Severity:    nudge.Severity(r.Severity.Raw()),
		Message:     r.Message.Display(),
		Timestamp:   "Today",
		ActionLabel: r.ActionLabel.Raw(),
		ActionLink:  "#",
	}
}

// parseWireDate parses the date formats the store emits, zero time on
// failure.
func parseWireDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{wireDateTimeFormat, wireDateFormat, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
