package query

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snapx-edu/academy-hub/internal/domain/assessment"
	"github.com/snapx-edu/academy-hub/internal/domain/calendar"
	"github.com/snapx-edu/academy-hub/internal/domain/nudge"
	"github.com/snapx-edu/academy-hub/internal/domain/student"
)

type stubDashboardClient struct {
	available   bool
	events      []calendar.Event
	students    []student.Profile
	assessments []assessment.Assessment
	nudges      []nudge.Nudge
	err         error
}

func (s *stubDashboardClient) Available() bool { return s.available }

func (s *stubDashboardClient) ListEvents(ctx context.Context, email string) ([]calendar.Event, error) {
	return s.events, s.err
}

func (s *stubDashboardClient) ListStudents(ctx context.Context) ([]student.Profile, error) {
	return s.students, s.err
}

func (s *stubDashboardClient) ListAssessments(ctx context.Context) ([]assessment.Assessment, error) {
	return s.assessments, s.err
}

func (s *stubDashboardClient) ListNudges(ctx context.Context, email string) ([]nudge.Nudge, error) {
	return s.nudges, s.err
}

func TestListEventsSortsByDate(t *testing.T) {
	now := time.Now()
	client := &stubDashboardClient{
		available: true,
		events: []calendar.Event{
			{ID: "late", Date: now.AddDate(0, 0, 10)},
			{ID: "early", Date: now.AddDate(0, 0, 1)},
			{ID: "past", Date: now.AddDate(0, 0, -3)},
		},
	}
	svc := NewDashboardService(client, nil)

	events := svc.ListEvents(context.Background(), "alex.rivera@snapx.edu")

	require.Len(t, events, 3)
	assert.Equal(t, "past", events[0].ID)
	assert.Equal(t, "early", events[1].ID)
	assert.Equal(t, "late", events[2].ID)
}

func TestListEventsFallsBackOnError(t *testing.T) {
	svc := NewDashboardService(&stubDashboardClient{available: true, err: errors.New("timeout")}, nil)

	events := svc.ListEvents(context.Background(), "alex.rivera@snapx.edu")

	require.NotEmpty(t, events)
	for i := 1; i < len(events); i++ {
		assert.False(t, events[i].Date.Before(events[i-1].Date))
	}
}

func TestUpcomingEventsFiltersWindow(t *testing.T) {
	now := time.Now()
	client := &stubDashboardClient{
		available: true,
		events: []calendar.Event{
			{ID: "past", Date: now.AddDate(0, 0, -3)},
			{ID: "soon", Date: now.AddDate(0, 0, 2)},
			{ID: "far", Date: now.AddDate(0, 0, 30)},
		},
	}
	svc := NewDashboardService(client, nil)

	upcoming := svc.UpcomingEvents(context.Background(), "alex.rivera@snapx.edu", 7)

	require.Len(t, upcoming, 1)
	assert.Equal(t, "soon", upcoming[0].ID)
	assert.Equal(t, 2, upcoming[0].DaysUntil)
	assert.Equal(t, "in 2 days", upcoming[0].When)
}

func TestListStudentsFallsBackWhenUnavailable(t *testing.T) {
	svc := NewDashboardService(&stubDashboardClient{available: false}, nil)

	students := svc.ListStudents(context.Background())

	require.Len(t, students, 3)
	assert.Equal(t, "Alex Rivera", students[0].Name)
}

func TestListAssessmentsPassesThrough(t *testing.T) {
	client := &stubDashboardClient{
		available:   true,
		assessments: []assessment.Assessment{{ID: "a9", Title: "Final"}},
	}
	svc := NewDashboardService(client, nil)

	got := svc.ListAssessments(context.Background())

	require.Len(t, got, 1)
	assert.Equal(t, "Final", got[0].Title)
}

func TestListNudgesFallsBackOnError(t *testing.T) {
	svc := NewDashboardService(&stubDashboardClient{available: true, err: errors.New("503")}, nil)

	nudges := svc.ListNudges(context.Background(), "alex.rivera@snapx.edu")

	require.Len(t, nudges, 3)
	assert.Equal(t, nudge.SeverityHigh, nudges[0].Severity)
}

func TestNilClientServesSamples(t *testing.T) {
	svc := NewDashboardService(nil, nil)

	assert.NotEmpty(t, svc.ListEvents(context.Background(), ""))
	assert.NotEmpty(t, svc.ListStudents(context.Background()))
	assert.NotEmpty(t, svc.ListAssessments(context.Background()))
	assert.NotEmpty(t, svc.ListNudges(context.Background(), ""))
}
