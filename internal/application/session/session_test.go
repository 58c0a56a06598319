package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snapx-edu/academy-hub/internal/domain/shared"
	"github.com/snapx-edu/academy-hub/internal/domain/user"
)

type memPrefs struct {
	roles   map[string]string
	layouts map[string][]string
}

func newMemPrefs() *memPrefs {
	return &memPrefs{roles: map[string]string{}, layouts: map[string][]string{}}
}

func (p *memPrefs) GetRole(ctx context.Context, sessionID string) (string, error) {
	return p.roles[sessionID], nil
}

func (p *memPrefs) SetRole(ctx context.Context, sessionID, role string) error {
	p.roles[sessionID] = role
	return nil
}

func (p *memPrefs) GetWidgetLayout(ctx context.Context, sessionID string) ([]string, error) {
	return p.layouts[sessionID], nil
}

func (p *memPrefs) SetWidgetLayout(ctx context.Context, sessionID string, layout []string) error {
	p.layouts[sessionID] = layout
	return nil
}

type bindRecorder struct {
	emails []string
}

func (b *bindRecorder) Bind(email string) {
	b.emails = append(b.emails, email)
}

func TestManagerStartsAsStudent(t *testing.T) {
	m := NewManager(ManagerConfig{})

	u := m.CurrentUser()
	assert.Equal(t, user.RoleStudent, u.Role)
	assert.Equal(t, "alex.rivera@snapx.edu", u.Email)
	assert.Equal(t, DefaultWidgetLayout, m.WidgetLayout())
}

func TestSwitchRoleTogglesPersona(t *testing.T) {
	prefs := newMemPrefs()
	binder := &bindRecorder{}
	m := NewManager(ManagerConfig{SessionID: "s1", Prefs: prefs, Courses: binder})

	u := m.SwitchRole(context.Background())
	assert.Equal(t, user.RoleAdmin, u.Role)
	assert.Equal(t, "sarah.chen@snapx.edu", u.Email)
	assert.Equal(t, "admin", prefs.roles["s1"])

	u = m.SwitchRole(context.Background())
	assert.Equal(t, user.RoleStudent, u.Role)
	assert.Equal(t, "student", prefs.roles["s1"])

	require.Len(t, binder.emails, 2)
	assert.Equal(t, []string{"sarah.chen@snapx.edu", "alex.rivera@snapx.edu"}, binder.emails)
}

func TestStartRestoresPersistedRole(t *testing.T) {
	prefs := newMemPrefs()
	prefs.roles["s1"] = "admin"
	prefs.layouts["s1"] = []string{"calendar", "courses"}
	binder := &bindRecorder{}
	m := NewManager(ManagerConfig{SessionID: "s1", Prefs: prefs, Courses: binder})

	m.Start(context.Background())

	assert.Equal(t, user.RoleAdmin, m.CurrentUser().Role)
	assert.Equal(t, []string{"calendar", "courses"}, m.WidgetLayout())
	require.Len(t, binder.emails, 1)
	assert.Equal(t, "sarah.chen@snapx.edu", binder.emails[0])
}

func TestSetWidgetLayoutPersists(t *testing.T) {
	prefs := newMemPrefs()
	m := NewManager(ManagerConfig{SessionID: "s1", Prefs: prefs})

	err := m.SetWidgetLayout(context.Background(), []string{"nudges", "courses"})
	require.NoError(t, err)

	assert.Equal(t, []string{"nudges", "courses"}, m.WidgetLayout())
	assert.Equal(t, []string{"nudges", "courses"}, prefs.layouts["s1"])
}

func TestSetWidgetLayoutRejectsEmpty(t *testing.T) {
	m := NewManager(ManagerConfig{})

	err := m.SetWidgetLayout(context.Background(), nil)
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestSwitchRolePublishesEvent(t *testing.T) {
	pub := &capturePublisher{}
	m := NewManager(ManagerConfig{Events: pub})

	m.SwitchRole(context.Background())

	require.Len(t, pub.events, 1)
	assert.Equal(t, shared.EventRoleSwitched, pub.events[0].EventType())
}

type capturePublisher struct {
	events []shared.Event
}

func (p *capturePublisher) Publish(event shared.Event) error {
	p.events = append(p.events, event)
	return nil
}
