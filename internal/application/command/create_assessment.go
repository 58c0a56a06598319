package command

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/snapx-edu/academy-hub/internal/domain/assessment"
	"github.com/snapx-edu/academy-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// CREATE ASSESSMENT COMMAND
// ══════════════════════════════════════════════════════════════════════════════

// CreateAssessmentCommand contains the data needed to create an assessment.
type CreateAssessmentCommand struct {
	CourseID    string `validate:"required,max=64"`
	Title       string `validate:"required,max=200"`
	DueDate     string `validate:"omitempty,datetime=2006-01-02"`
	TotalPoints int    `validate:"gte=0,lte=1000"`
	Questions   int    `validate:"gte=0,lte=500"`
	Status      string `validate:"omitempty,oneof=Draft Published Graded"`
}

// Validate validates the command.
func (c CreateAssessmentCommand) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("create_assessment: %w", shared.NewDomainError("assessment", "create_assessment", shared.ErrValidation, err.Error()))
	}
	return nil
}

// CreateAssessmentResult contains the result of assessment creation.
type CreateAssessmentResult struct {
	Assessment assessment.Assessment
	Local      bool
}

// AssessmentWriter defines the record store write the handler needs.
type AssessmentWriter interface {
	Available() bool
	CreateAssessment(ctx context.Context, a assessment.Assessment) (string, error)
}

// CreateAssessmentHandler handles the CreateAssessmentCommand.
type CreateAssessmentHandler struct {
	writer AssessmentWriter
	events shared.EventPublisher
	logger *slog.Logger
}

// NewCreateAssessmentHandler creates a new CreateAssessmentHandler.
func NewCreateAssessmentHandler(writer AssessmentWriter, events shared.EventPublisher, logger *slog.Logger) *CreateAssessmentHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CreateAssessmentHandler{
		writer: writer,
		events: events,
		logger: logger.With(slog.String("component", "create_assessment")),
	}
}

// Handle executes the create assessment command. New assessments start in
// Draft unless an explicit status is given.
func (h *CreateAssessmentHandler) Handle(ctx context.Context, cmd CreateAssessmentCommand) (*CreateAssessmentResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	a := assessment.Assessment{
		CourseID:    cmd.CourseID,
		Title:       cmd.Title,
		DueDate:     cmd.DueDate,
		TotalPoints: cmd.TotalPoints,
		Questions:   cmd.Questions,
		Status:      assessment.ParseStatus(cmd.Status),
	}

	result := &CreateAssessmentResult{}

	if h.writer != nil && h.writer.Available() {
		remoteID, err := h.writer.CreateAssessment(ctx, a)
		if err != nil {
			h.logger.Warn("remote assessment create failed, issuing local id",
				slog.String("title", cmd.Title),
				slog.String("error", err.Error()))
		} else {
			a.ID = remoteID
		}
	}
	if a.ID == "" {
		a.ID = localID()
		result.Local = true
	}
	result.Assessment = a

	h.publishEvent(shared.NewAssessmentCreatedEvent(a.ID, a.Title, string(a.Status), result.Local))
	return result, nil
}

func (h *CreateAssessmentHandler) publishEvent(event shared.Event) {
	if h.events == nil {
		return
	}
	if err := h.events.Publish(event); err != nil {
		h.logger.Warn("event publish failed", slog.String("error", err.Error()))
	}
}
