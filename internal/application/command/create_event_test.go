package command

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snapx-edu/academy-hub/internal/domain/assessment"
	"github.com/snapx-edu/academy-hub/internal/domain/calendar"
	"github.com/snapx-edu/academy-hub/internal/domain/shared"
)

type stubEventWriter struct {
	available bool
	remoteID  string
	err       error
	gotEvent  calendar.Event
	gotEmail  string
}

func (s *stubEventWriter) Available() bool { return s.available }

func (s *stubEventWriter) CreateEvent(ctx context.Context, ev calendar.Event, email string) (string, error) {
	s.gotEvent = ev
	s.gotEmail = email
	return s.remoteID, s.err
}

func validEventCommand() CreateEventCommand {
	return CreateEventCommand{
		Title:     "Algorithms Midterm",
		Date:      time.Date(2026, 9, 10, 9, 0, 0, 0, time.UTC),
		Category:  "exam",
		CourseID:  "c1",
		Duration:  "2h",
		UserEmail: "alex.rivera@snapx.edu",
	}
}

func TestCreateEventRemoteSuccess(t *testing.T) {
	writer := &stubEventWriter{available: true, remoteID: "ev-77"}
	h := NewCreateEventHandler(writer, nil, nil)

	res, err := h.Handle(context.Background(), validEventCommand())
	require.NoError(t, err)

	assert.Equal(t, "ev-77", res.Event.ID)
	assert.False(t, res.Local)
	assert.Equal(t, calendar.CategoryExam, res.Event.Category)
	assert.Equal(t, "alex.rivera@snapx.edu", writer.gotEmail)
}

func TestCreateEventResolvesLocallyOnFailure(t *testing.T) {
	writer := &stubEventWriter{available: true, err: errors.New("503")}
	h := NewCreateEventHandler(writer, nil, nil)

	res, err := h.Handle(context.Background(), validEventCommand())
	require.NoError(t, err, "a remote failure must not surface as an error")

	assert.True(t, res.Local)
	assert.True(t, strings.HasPrefix(res.Event.ID, "local-"))
}

func TestCreateEventOffline(t *testing.T) {
	h := NewCreateEventHandler(&stubEventWriter{available: false}, nil, nil)

	res, err := h.Handle(context.Background(), validEventCommand())
	require.NoError(t, err)

	assert.True(t, res.Local)
	assert.NotEmpty(t, res.Event.ID)
}

func TestCreateEventValidation(t *testing.T) {
	h := NewCreateEventHandler(&stubEventWriter{available: true}, nil, nil)

	cmd := validEventCommand()
	cmd.Title = ""
	_, err := h.Handle(context.Background(), cmd)
	assert.ErrorIs(t, err, shared.ErrValidation)

	cmd = validEventCommand()
	cmd.UserEmail = "not-an-email"
	_, err = h.Handle(context.Background(), cmd)
	assert.ErrorIs(t, err, shared.ErrValidation)

	cmd = validEventCommand()
	cmd.Category = "party"
	_, err = h.Handle(context.Background(), cmd)
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestCreateEventUnknownCategoryDefaultsToStudy(t *testing.T) {
	h := NewCreateEventHandler(&stubEventWriter{available: false}, nil, nil)

	cmd := validEventCommand()
	cmd.Category = ""
	res, err := h.Handle(context.Background(), cmd)
	require.NoError(t, err)

	assert.Equal(t, calendar.CategoryStudy, res.Event.Category)
}

type stubAssessmentWriter struct {
	available bool
	remoteID  string
	err       error
	got       assessment.Assessment
}

func (s *stubAssessmentWriter) Available() bool { return s.available }

func (s *stubAssessmentWriter) CreateAssessment(ctx context.Context, a assessment.Assessment) (string, error) {
	s.got = a
	return s.remoteID, s.err
}

func TestCreateAssessmentDefaultsToDraft(t *testing.T) {
	writer := &stubAssessmentWriter{available: true, remoteID: "a-9"}
	h := NewCreateAssessmentHandler(writer, nil, nil)

	res, err := h.Handle(context.Background(), CreateAssessmentCommand{
		CourseID:    "c1",
		Title:       "Graph Theory Quiz",
		DueDate:     "2026-09-20",
		TotalPoints: 50,
		Questions:   10,
	})
	require.NoError(t, err)

	assert.Equal(t, "a-9", res.Assessment.ID)
	assert.Equal(t, assessment.StatusDraft, res.Assessment.Status)
	assert.False(t, res.Local)
}

func TestCreateAssessmentResolvesLocallyOnFailure(t *testing.T) {
	writer := &stubAssessmentWriter{available: true, err: errors.New("timeout")}
	h := NewCreateAssessmentHandler(writer, nil, nil)

	res, err := h.Handle(context.Background(), CreateAssessmentCommand{
		CourseID: "c1",
		Title:    "Final Exam",
	})
	require.NoError(t, err)

	assert.True(t, res.Local)
	assert.True(t, strings.HasPrefix(res.Assessment.ID, "local-"))
}

func TestCreateAssessmentValidation(t *testing.T) {
	h := NewCreateAssessmentHandler(&stubAssessmentWriter{available: true}, nil, nil)

	_, err := h.Handle(context.Background(), CreateAssessmentCommand{Title: "No Course"})
	assert.ErrorIs(t, err, shared.ErrValidation)

	_, err = h.Handle(context.Background(), CreateAssessmentCommand{
		CourseID: "c1", Title: "Bad Date", DueDate: "20-05-2026",
	})
	assert.ErrorIs(t, err, shared.ErrValidation)
}

type stubRecordWriter struct {
	available  bool
	err        error
	compliance map[string]any
	grading    map[string]any
}

func (s *stubRecordWriter) Available() bool { return s.available }

func (s *stubRecordWriter) SaveComplianceRecord(ctx context.Context, payload map[string]any) error {
	s.compliance = payload
	return s.err
}

func (s *stubRecordWriter) SaveGradingRecord(ctx context.Context, payload map[string]any) error {
	s.grading = payload
	return s.err
}

func TestSaveComplianceTagsStudent(t *testing.T) {
	writer := &stubRecordWriter{available: true}
	h := NewSaveRecordsHandler(writer, nil)

	res, err := h.SaveCompliance(context.Background(), "alex.rivera@snapx.edu", map[string]any{"u_score": 87})
	require.NoError(t, err)

	assert.False(t, res.Local)
	assert.NotEmpty(t, res.AckID)
	assert.Equal(t, "alex.rivera@snapx.edu", writer.compliance["u_student"])
}

func TestSaveGradingAcknowledgesDespiteFailure(t *testing.T) {
	writer := &stubRecordWriter{available: true, err: errors.New("down")}
	h := NewSaveRecordsHandler(writer, nil)

	res, err := h.SaveGrading(context.Background(), "sarah.chen@snapx.edu", map[string]any{"u_grade": "A"})
	require.NoError(t, err)

	assert.True(t, res.Local)
	assert.NotEmpty(t, res.AckID)
}

func TestSaveComplianceRejectsEmptyPayload(t *testing.T) {
	h := NewSaveRecordsHandler(&stubRecordWriter{available: true}, nil)

	_, err := h.SaveCompliance(context.Background(), "alex.rivera@snapx.edu", nil)
	assert.ErrorIs(t, err, shared.ErrValidation)
}
