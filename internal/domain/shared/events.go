package shared

import (
	"context"
	"time"
)

// EventType represents the type of domain event.
type EventType string

// Domain event types. Each event represents something significant that
// happened in the domain.
const (
	// Course events
	EventCourseEnrolled  EventType = "course.enrolled"
	EventModuleCompleted EventType = "course.module_completed"

	// Calendar events
	EventCalendarEventCreated EventType = "calendar.event_created"

	// Assessment events
	EventAssessmentCreated EventType = "assessment.created"

	// Session events
	EventRoleSwitched EventType = "session.role_switched"

	// System events
	EventCatalogSynced EventType = "system.catalog_synced"
)

// Event is the base interface for all domain events.
type Event interface {
	// EventType returns the type of the event.
	EventType() EventType

	// OccurredAt returns when the event occurred.
	OccurredAt() time.Time

	// AggregateID returns the ID of the aggregate that produced this event.
	AggregateID() string

	// Payload returns the event data as a map for serialization.
	Payload() map[string]interface{}
}

// EventHandler processes a published domain event.
type EventHandler func(ctx context.Context, event Event) error

// EventPublisher publishes domain events to interested subscribers.
type EventPublisher interface {
	Publish(event Event) error
}

// EventSubscriber registers handlers for event types.
type EventSubscriber interface {
	Subscribe(eventType EventType, handler EventHandler) error
	SubscribeAll(handler EventHandler) error
}

// EventBus combines publishing and subscribing.
type EventBus interface {
	EventPublisher
	EventSubscriber
}

// BaseEvent provides common event functionality.
type BaseEvent struct {
	Type          EventType `json:"type"`
	Timestamp     time.Time `json:"timestamp"`
	AggregateId   string    `json:"aggregate_id"`
	CorrelationID string    `json:"correlation_id,omitempty"`
}

// EventType implements Event interface.
func (e BaseEvent) EventType() EventType {
	return e.Type
}

// OccurredAt implements Event interface.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// AggregateID implements Event interface.
func (e BaseEvent) AggregateID() string {
	return e.AggregateId
}

// NewBaseEvent creates a new base event.
func NewBaseEvent(eventType EventType, aggregateID string) BaseEvent {
	return BaseEvent{
		Type:        eventType,
		Timestamp:   time.Now(),
		AggregateId: aggregateID,
	}
}

// WithCorrelationID sets the correlation ID for tracing.
func (e BaseEvent) WithCorrelationID(id string) BaseEvent {
	e.CorrelationID = id
	return e
}

// CourseEnrolledEvent is emitted when a user enrolls in a course.
type CourseEnrolledEvent struct {
	BaseEvent
	CourseID     string `json:"course_id"`
	UserEmail    string `json:"user_email"`
	EnrollmentID string `json:"enrollment_id,omitempty"`
}

// Payload implements Event interface.
func (e CourseEnrolledEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"course_id":     e.CourseID,
		"user_email":    e.UserEmail,
		"enrollment_id": e.EnrollmentID,
	}
}

// NewCourseEnrolledEvent creates a new CourseEnrolledEvent.
func NewCourseEnrolledEvent(courseID, userEmail string) CourseEnrolledEvent {
	return CourseEnrolledEvent{
		BaseEvent: NewBaseEvent(EventCourseEnrolled, courseID),
		CourseID:  courseID,
		UserEmail: userEmail,
	}
}

// ModuleCompletedEvent is emitted when a user completes a course module.
type ModuleCompletedEvent struct {
	BaseEvent
	CourseID         string `json:"course_id"`
	UserEmail        string `json:"user_email"`
	CompletedModules int    `json:"completed_modules"`
	TotalModules     int    `json:"total_modules"`
	Progress         int    `json:"progress"`
}

// Payload implements Event interface.
func (e ModuleCompletedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"course_id":         e.CourseID,
		"user_email":        e.UserEmail,
		"completed_modules": e.CompletedModules,
		"total_modules":     e.TotalModules,
		"progress":          e.Progress,
	}
}

// NewModuleCompletedEvent creates a new ModuleCompletedEvent.
func NewModuleCompletedEvent(courseID, userEmail string, completed, total, progress int) ModuleCompletedEvent {
	return ModuleCompletedEvent{
		BaseEvent:        NewBaseEvent(EventModuleCompleted, courseID),
		CourseID:         courseID,
		UserEmail:        userEmail,
		CompletedModules: completed,
		TotalModules:     total,
		Progress:         progress,
	}
}

// CatalogSyncedEvent is emitted after a catalog refresh round completes.
type CatalogSyncedEvent struct {
	BaseEvent
	UserEmail     string        `json:"user_email"`
	CourseCount   int           `json:"course_count"`
	EnrolledCount int           `json:"enrolled_count"`
	UsedFallback  bool          `json:"used_fallback"`
	Duration      time.Duration `json:"duration"`
}

// Payload implements Event interface.
func (e CatalogSyncedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"user_email":     e.UserEmail,
		"course_count":   e.CourseCount,
		"enrolled_count": e.EnrolledCount,
		"used_fallback":  e.UsedFallback,
		"duration":       e.Duration.String(),
	}
}

// NewCatalogSyncedEvent creates a new CatalogSyncedEvent.
func NewCatalogSyncedEvent(userEmail string, courses, enrolled int, usedFallback bool, duration time.Duration) CatalogSyncedEvent {
	return CatalogSyncedEvent{
		BaseEvent:     NewBaseEvent(EventCatalogSynced, userEmail),
		UserEmail:     userEmail,
		CourseCount:   courses,
		EnrolledCount: enrolled,
		UsedFallback:  usedFallback,
		Duration:      duration,
	}
}

// RoleSwitchedEvent is emitted when the session persona changes.
type RoleSwitchedEvent struct {
	BaseEvent
	UserEmail string `json:"user_email"`
	OldRole   string `json:"old_role"`
	NewRole   string `json:"new_role"`
}

// Payload implements Event interface.
func (e RoleSwitchedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"user_email": e.UserEmail,
		"old_role":   e.OldRole,
		"new_role":   e.NewRole,
	}
}

// NewRoleSwitchedEvent creates a new RoleSwitchedEvent.
func NewRoleSwitchedEvent(userEmail, oldRole, newRole string) RoleSwitchedEvent {
	return RoleSwitchedEvent{
		BaseEvent: NewBaseEvent(EventRoleSwitched, userEmail),
		UserEmail: userEmail,
		OldRole:   oldRole,
		NewRole:   newRole,
	}
}

// CalendarEventCreatedEvent is emitted when a calendar event is created.
type CalendarEventCreatedEvent struct {
	BaseEvent
	EventID   string `json:"event_id"`
	UserEmail string `json:"user_email"`
	Title     string `json:"title"`
	Local     bool   `json:"local"` // true when the remote create fell back to a local id
}

// Payload implements Event interface.
func (e CalendarEventCreatedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"event_id":   e.EventID,
		"user_email": e.UserEmail,
		"title":      e.Title,
		"local":      e.Local,
	}
}

// NewCalendarEventCreatedEvent creates a new CalendarEventCreatedEvent.
func NewCalendarEventCreatedEvent(eventID, userEmail, title string, local bool) CalendarEventCreatedEvent {
	return CalendarEventCreatedEvent{
		BaseEvent: NewBaseEvent(EventCalendarEventCreated, eventID),
		EventID:   eventID,
		UserEmail: userEmail,
		Title:     title,
		Local:     local,
	}
}

// AssessmentCreatedEvent is emitted when an assessment is created.
type AssessmentCreatedEvent struct {
	BaseEvent
	AssessmentID string `json:"assessment_id"`
	Title        string `json:"title"`
	Status       string `json:"status"`
	Local        bool   `json:"local"`
}

// Payload implements Event interface.
func (e AssessmentCreatedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"assessment_id": e.AssessmentID,
		"title":         e.Title,
		"status":        e.Status,
		"local":         e.Local,
	}
}

// NewAssessmentCreatedEvent creates a new AssessmentCreatedEvent.
func NewAssessmentCreatedEvent(assessmentID, title, status string, local bool) AssessmentCreatedEvent {
	return AssessmentCreatedEvent{
		BaseEvent:    NewBaseEvent(EventAssessmentCreated, assessmentID),
		AssessmentID: assessmentID,
		Title:        title,
		Status:       status,
		Local:        local,
	}
}
