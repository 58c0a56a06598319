// Package session holds the explicit application context for the dashboard:
// the current user persona and their widget layout. State lives in one place
// and is passed to consumers, never read from ambient globals.
package session

import (
	"context"
	"log/slog"
	"sync"

	"github.com/snapx-edu/academy-hub/internal/domain/shared"
	"github.com/snapx-edu/academy-hub/internal/domain/user"
	"github.com/snapx-edu/academy-hub/internal/infrastructure/fallback"
)

// DefaultWidgetLayout is the dashboard order used until the user customizes it.
var DefaultWidgetLayout = []string{"courses", "calendar", "nudges", "assessments", "mentor"}

// ══════════════════════════════════════════════════════════════════════════════
// DEPENDENCIES (Interfaces)
// ══════════════════════════════════════════════════════════════════════════════

// PreferenceStore persists small per-session preferences. Implementations
// return empty values, not errors, for unset keys.
type PreferenceStore interface {
	GetRole(ctx context.Context, sessionID string) (string, error)
	SetRole(ctx context.Context, sessionID, role string) error
	GetWidgetLayout(ctx context.Context, sessionID string) ([]string, error)
	SetWidgetLayout(ctx context.Context, sessionID string, layout []string) error
}

// CourseBinder is notified when the active persona changes so course state
// follows the new user. Binding must not blank the currently visible list.
type CourseBinder interface {
	Bind(email string)
}

// ══════════════════════════════════════════════════════════════════════════════
// MANAGER
// ══════════════════════════════════════════════════════════════════════════════

// ManagerConfig contains the session manager dependencies.
type ManagerConfig struct {
	SessionID string
	Prefs     PreferenceStore // optional
	Courses   CourseBinder    // optional
	Events    shared.EventPublisher
	Logger    *slog.Logger
}

// Manager owns the current persona and widget layout for one session.
type Manager struct {
	sessionID string
	prefs     PreferenceStore
	courses   CourseBinder
	events    shared.EventPublisher
	logger    *slog.Logger

	mu      sync.RWMutex
	current user.User
	layout  []string
}

// NewManager creates a session manager starting as the demo student persona.
func NewManager(cfg ManagerConfig) *Manager {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.SessionID == "" {
		cfg.SessionID = "default"
	}
	return &Manager{
		sessionID: cfg.SessionID,
		prefs:     cfg.Prefs,
		courses:   cfg.Courses,
		events:    cfg.Events,
		logger:    cfg.Logger.With(slog.String("component", "session")),
		current:   fallback.StudentUser(),
		layout:    append([]string(nil), DefaultWidgetLayout...),
	}
}

// Start restores persisted preferences and binds course state to the restored
// persona. Missing or failing preference reads fall back to defaults.
func (m *Manager) Start(ctx context.Context) {
	if m.prefs != nil {
		if role, err := m.prefs.GetRole(ctx, m.sessionID); err != nil {
			m.logger.Warn("role restore failed", slog.String("error", err.Error()))
		} else if user.ParseRole(role).CanTeach() {
			m.mu.Lock()
			m.current = fallback.AdminUser()
			m.mu.Unlock()
		}

		if layout, err := m.prefs.GetWidgetLayout(ctx, m.sessionID); err != nil {
			m.logger.Warn("layout restore failed", slog.String("error", err.Error()))
		} else if len(layout) > 0 {
			m.mu.Lock()
			m.layout = layout
			m.mu.Unlock()
		}
	}

	if m.courses != nil {
		m.courses.Bind(m.CurrentUser().Email)
	}
}

// CurrentUser returns the active persona.
func (m *Manager) CurrentUser() user.User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// SwitchRole toggles between the student and admin personas, persists the
// choice, and rebinds course state to the new persona's email. The loaded
// course list stays visible until its next refresh.
func (m *Manager) SwitchRole(ctx context.Context) user.User {
	m.mu.Lock()
	old := m.current
	if m.current.Role.CanTeach() {
		m.current = fallback.StudentUser()
	} else {
		m.current = fallback.AdminUser()
	}
	next := m.current
	m.mu.Unlock()

	if m.prefs != nil {
		if err := m.prefs.SetRole(ctx, m.sessionID, string(next.Role)); err != nil {
			m.logger.Warn("role persist failed", slog.String("error", err.Error()))
		}
	}
	if m.courses != nil {
		m.courses.Bind(next.Email)
	}
	m.publish(shared.NewRoleSwitchedEvent(next.Email, string(old.Role), string(next.Role)))

	return next
}

// WidgetLayout returns the current dashboard widget order.
func (m *Manager) WidgetLayout() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.layout...)
}

// SetWidgetLayout replaces and persists the dashboard widget order.
func (m *Manager) SetWidgetLayout(ctx context.Context, layout []string) error {
	if len(layout) == 0 {
		return shared.NewDomainError("session", "set_widget_layout", shared.ErrValidation, "layout cannot be empty")
	}

	m.mu.Lock()
	m.layout = append([]string(nil), layout...)
	m.mu.Unlock()

	if m.prefs != nil {
		if err := m.prefs.SetWidgetLayout(ctx, m.sessionID, layout); err != nil {
			m.logger.Warn("layout persist failed", slog.String("error", err.Error()))
		}
	}
	return nil
}

func (m *Manager) publish(event shared.Event) {
	if m.events == nil {
		return
	}
	if err := m.events.Publish(event); err != nil {
		m.logger.Warn("event publish failed", slog.String("error", err.Error()))
	}
}
