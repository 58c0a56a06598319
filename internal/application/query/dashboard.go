// Package query contains read operations following CQRS pattern.
// Queries never modify state. Every read carries the dashboard fallback
// policy: when the record store errors, the static sample data is substituted
// so the caller always gets a renderable result.
package query

import (
	"context"
	"log/slog"

	"github.com/snapx-edu/academy-hub/internal/domain/assessment"
	"github.com/snapx-edu/academy-hub/internal/domain/calendar"
	"github.com/snapx-edu/academy-hub/internal/domain/nudge"
	"github.com/snapx-edu/academy-hub/internal/domain/student"
	"github.com/snapx-edu/academy-hub/internal/infrastructure/fallback"
	"github.com/snapx-edu/academy-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// DEPENDENCIES (Interfaces)
// ══════════════════════════════════════════════════════════════════════════════

// DashboardClient defines the record store reads the dashboard needs.
type DashboardClient interface {
	Available() bool
	ListEvents(ctx context.Context, email string) ([]calendar.Event, error)
	ListStudents(ctx context.Context) ([]student.Profile, error)
	ListAssessments(ctx context.Context) ([]assessment.Assessment, error)
	ListNudges(ctx context.Context, email string) ([]nudge.Nudge, error)
}

// ══════════════════════════════════════════════════════════════════════════════
// DASHBOARD SERVICE
// ══════════════════════════════════════════════════════════════════════════════

// DashboardService serves the read side of the dashboard.
type DashboardService struct {
	client DashboardClient
	logger *slog.Logger
}

// NewDashboardService creates a new DashboardService.
func NewDashboardService(client DashboardClient, logger *slog.Logger) *DashboardService {
	if logger == nil {
		logger = slog.Default()
	}
	return &DashboardService{
		client: client,
		logger: logger.With(slog.String("component", "dashboard_query")),
	}
}

// ListEvents returns the calendar for a student, sorted by date ascending.
// Sample events are substituted when the record store cannot answer.
func (s *DashboardService) ListEvents(ctx context.Context, email string) []calendar.Event {
	if s.client == nil || !s.client.Available() {
		return sortedSampleEvents()
	}
	events, err := s.client.ListEvents(ctx, email)
	if err != nil {
		s.logger.Warn("event fetch failed, serving samples",
			slog.String("email", email),
			slog.String("error", err.Error()))
		return sortedSampleEvents()
	}
	calendar.SortByDate(events)
	return events
}

// UpcomingEvent pairs a calendar event with its relative-day label.
type UpcomingEvent struct {
	calendar.Event
	DaysUntil int
	When      string
}

// UpcomingEvents returns the events falling between today and withinDays
// from now, annotated for the dashboard summary strip.
func (s *DashboardService) UpcomingEvents(ctx context.Context, email string, withinDays int) []UpcomingEvent {
	events := s.ListEvents(ctx, email)

	upcoming := make([]UpcomingEvent, 0, len(events))
	for _, ev := range events {
		if !timeutil.WithinDays(ev.Date, withinDays) {
			continue
		}
		upcoming = append(upcoming, UpcomingEvent{
			Event:     ev,
			DaysUntil: timeutil.DaysUntil(ev.Date),
			When:      timeutil.RelativeLabel(ev.Date),
		})
	}
	return upcoming
}

// ListStudents returns the student profiles for the teacher views.
func (s *DashboardService) ListStudents(ctx context.Context) []student.Profile {
	if s.client == nil || !s.client.Available() {
		return fallback.Students()
	}
	students, err := s.client.ListStudents(ctx)
	if err != nil {
		s.logger.Warn("student fetch failed, serving samples",
			slog.String("error", err.Error()))
		return fallback.Students()
	}
	return students
}

// ListAssessments returns the assessment list.
func (s *DashboardService) ListAssessments(ctx context.Context) []assessment.Assessment {
	if s.client == nil || !s.client.Available() {
		return fallback.Assessments()
	}
	assessments, err := s.client.ListAssessments(ctx)
	if err != nil {
		s.logger.Warn("assessment fetch failed, serving samples",
			slog.String("error", err.Error()))
		return fallback.Assessments()
	}
	return assessments
}

// ListNudges returns the active nudges for a student.
func (s *DashboardService) ListNudges(ctx context.Context, email string) []nudge.Nudge {
	if s.client == nil || !s.client.Available() {
		return fallback.Nudges()
	}
	nudges, err := s.client.ListNudges(ctx, email)
	if err != nil {
		s.logger.Warn("nudge fetch failed, serving samples",
			slog.String("email", email),
			slog.String("error", err.Error()))
		return fallback.Nudges()
	}
	return nudges
}

func sortedSampleEvents() []calendar.Event {
	events := fallback.Events()
	calendar.SortByDate(events)
	return events
}
