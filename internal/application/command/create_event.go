// Package command contains write operations (CQRS - Commands).
// Commands change state. Writes to the record store resolve successfully even
// when the remote call fails: the result then carries a synthetic local
// identifier and the Local flag, never an error.
package command

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/snapx-edu/academy-hub/internal/domain/calendar"
	"github.com/snapx-edu/academy-hub/internal/domain/course"
	"github.com/snapx-edu/academy-hub/internal/domain/shared"
)

// validate is the shared struct validator for command inputs.
var validate = validator.New(validator.WithRequiredStructEnabled())

// localID returns a synthetic identifier for records that could not be
// created remotely.
func localID() string {
	return "local-" + uuid.NewString()
}

// ══════════════════════════════════════════════════════════════════════════════
// CREATE EVENT COMMAND
// ══════════════════════════════════════════════════════════════════════════════

// CreateEventCommand contains the data needed to create a calendar event.
type CreateEventCommand struct {
	Title       string    `validate:"required,max=200"`
	Date        time.Time `validate:"required"`
	Category    string    `validate:"omitempty,oneof=exam deadline study social"`
	CourseID    string    `validate:"omitempty,max=64"`
	Duration    string    `validate:"omitempty,max=32"`
	Description string    `validate:"omitempty,max=2000"`
	UserEmail   string    `validate:"required,email"`
}

// Validate validates the command.
func (c CreateEventCommand) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("create_event: %w", shared.NewDomainError("calendar", "create_event", shared.ErrValidation, err.Error()))
	}
	return nil
}

// CreateEventResult contains the result of event creation.
type CreateEventResult struct {
	Event calendar.Event
	// Local is true when the remote create failed and the id is synthetic.
	Local bool
}

// EventWriter defines the record store write the handler needs.
type EventWriter interface {
	Available() bool
	CreateEvent(ctx context.Context, ev calendar.Event, email string) (string, error)
}

// CreateEventHandler handles the CreateEventCommand.
type CreateEventHandler struct {
	writer EventWriter
	events shared.EventPublisher
	logger *slog.Logger
}

// NewCreateEventHandler creates a new CreateEventHandler.
func NewCreateEventHandler(writer EventWriter, events shared.EventPublisher, logger *slog.Logger) *CreateEventHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CreateEventHandler{
		writer: writer,
		events: events,
		logger: logger.With(slog.String("component", "create_event")),
	}
}

// Handle executes the create event command.
func (h *CreateEventHandler) Handle(ctx context.Context, cmd CreateEventCommand) (*CreateEventResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	ev := calendar.Event{
		Title:       cmd.Title,
		Date:        cmd.Date,
		Category:    calendar.ParseCategory(cmd.Category),
		CourseID:    course.ID(cmd.CourseID),
		Duration:    cmd.Duration,
		Description: cmd.Description,
	}

	result := &CreateEventResult{}

	if h.writer != nil && h.writer.Available() {
		remoteID, err := h.writer.CreateEvent(ctx, ev, cmd.UserEmail)
		if err != nil {
			h.logger.Warn("remote event create failed, issuing local id",
				slog.String("title", cmd.Title),
				slog.String("error", err.Error()))
		} else {
			ev.ID = remoteID
		}
	}
	if ev.ID == "" {
		ev.ID = localID()
		result.Local = true
	}
	result.Event = ev

	h.publish(shared.NewCalendarEventCreatedEvent(ev.ID, cmd.UserEmail, ev.Title, result.Local))
	return result, nil
}

func (h *CreateEventHandler) publish(event shared.Event) {
	if h.events == nil {
		return
	}
	if err := h.events.Publish(event); err != nil {
		h.logger.Warn("event publish failed", slog.String("error", err.Error()))
	}
}
