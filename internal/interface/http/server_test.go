package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/snapx-edu/academy-hub/internal/application/command"
	"github.com/snapx-edu/academy-hub/internal/application/coursestate"
	"github.com/snapx-edu/academy-hub/internal/application/query"
	"github.com/snapx-edu/academy-hub/internal/application/session"
	"github.com/snapx-edu/academy-hub/internal/domain/calendar"
	"github.com/snapx-edu/academy-hub/internal/domain/course"
	"github.com/snapx-edu/academy-hub/internal/infrastructure/external/advisor"
)

// offlineCatalog simulates an unconfigured record store client.
type offlineCatalog struct{}

func (offlineCatalog) Available() bool { return false }

func (offlineCatalog) ListCourses(context.Context) ([]course.Course, error) { return nil, nil }

func (offlineCatalog) ListEnrollments(context.Context, string) ([]course.Enrollment, error) {
	return nil, nil
}

func (offlineCatalog) Enroll(context.Context, string, course.ID) (string, error) { return "", nil }

func (offlineCatalog) UpdateProgress(context.Context, string, int, int) error { return nil }

type offlineEventWriter struct{}

func (offlineEventWriter) Available() bool { return false }

func (offlineEventWriter) CreateEvent(context.Context, calendar.Event, string) (string, error) {
	return "", nil
}

func newTestServer(t *testing.T, mutate func(*Config)) *Server {
	t.Helper()

	store := coursestate.NewStore(coursestate.StoreConfig{Client: offlineCatalog{}})
	store.Bind("alex.rivera@snapx.edu")
	store.Load(context.Background())

	cfg := DefaultConfig()
	cfg.RateLimitPerMinute = 0
	if mutate != nil {
		mutate(&cfg)
	}

	return NewServer(cfg, Dependencies{
		Session:     session.NewManager(session.ManagerConfig{Courses: store}),
		Courses:     store,
		Dashboard:   query.NewDashboardService(nil, nil),
		CreateEvent: command.NewCreateEventHandler(offlineEventWriter{}, nil, nil),
		SaveRecords: command.NewSaveRecordsHandler(nil, nil),
		Advisor:     advisor.NewClient(advisor.ClientConfig{}),
	})
}

func doRequest(t *testing.T, s *Server, method, path string, body any, header map[string]string) (*httptest.ResponseRecorder, JSONResponse) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	var resp JSONResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return rec, resp
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(t, nil)

	rec, resp := doRequest(t, s, http.MethodGet, "/health", nil, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, resp.Success)
}

func TestSessionStartsAsStudent(t *testing.T) {
	s := newTestServer(t, nil)

	rec, resp := doRequest(t, s, http.MethodGet, "/api/v1/session", nil, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	data := resp.Data.(map[string]any)
	u := data["user"].(map[string]any)
	assert.Equal(t, "student", u["role"])
	assert.Equal(t, "Alex Rivera", u["name"])
}

func TestRoleSwitchTogglesPersona(t *testing.T) {
	s := newTestServer(t, nil)

	_, resp := doRequest(t, s, http.MethodPost, "/api/v1/session/role", nil, nil)
	u := resp.Data.(map[string]any)["user"].(map[string]any)
	assert.Equal(t, "admin", u["role"])

	_, resp = doRequest(t, s, http.MethodPost, "/api/v1/session/role", nil, nil)
	u = resp.Data.(map[string]any)["user"].(map[string]any)
	assert.Equal(t, "student", u["role"])
}

func TestCoursesServedFromSamplesWhenOffline(t *testing.T) {
	s := newTestServer(t, nil)

	rec, resp := doRequest(t, s, http.MethodGet, "/api/v1/courses", nil, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, resp.Meta)
	assert.True(t, resp.Meta.Fallback)
	assert.Equal(t, 7, resp.Meta.TotalCount)
}

func TestEnrollUnknownCourseIs404(t *testing.T) {
	s := newTestServer(t, nil)

	rec, resp := doRequest(t, s, http.MethodPost, "/api/v1/courses/nope/enroll", nil, nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "not_found", resp.Error.Code)
}

func TestEnrollIsOptimisticWhileOffline(t *testing.T) {
	s := newTestServer(t, nil)

	rec, resp := doRequest(t, s, http.MethodPost, "/api/v1/courses/c4/enroll", nil, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	data := resp.Data.(map[string]any)
	assert.Equal(t, true, data["enrolled"])
}

func TestEnrollStaysPermittedAfterRoleSwitch(t *testing.T) {
	s := newTestServer(t, nil)

	// Admin inherits the student gate on enrollment mutations.
	doRequest(t, s, http.MethodPost, "/api/v1/session/role", nil, nil)

	rec, resp := doRequest(t, s, http.MethodPost, "/api/v1/courses/c4/enroll", nil, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	data := resp.Data.(map[string]any)
	assert.Equal(t, true, data["enrolled"])
}

func TestCompleteModuleAdvancesProgress(t *testing.T) {
	s := newTestServer(t, nil)

	// c1 starts at 8 of 12 modules.
	rec, resp := doRequest(t, s, http.MethodPost, "/api/v1/courses/c1/complete-module", nil, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	data := resp.Data.(map[string]any)
	assert.Equal(t, float64(9), data["completed_modules"])
	assert.Equal(t, float64(75), data["progress"])
}

func TestCreateEventValidation(t *testing.T) {
	s := newTestServer(t, nil)

	rec, resp := doRequest(t, s, http.MethodPost, "/api/v1/calendar", map[string]any{
		"title": "",
		"date":  "2026-09-15",
	}, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "validation_error", resp.Error.Code)
}

func TestCreateEventResolvesLocallyWhileOffline(t *testing.T) {
	s := newTestServer(t, nil)

	rec, resp := doRequest(t, s, http.MethodPost, "/api/v1/calendar", map[string]any{
		"title":    "Study group",
		"date":     "2026-09-15",
		"category": "study",
	}, nil)

	assert.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, resp.Meta)
	assert.True(t, resp.Meta.Local)
	data := resp.Data.(map[string]any)
	assert.Contains(t, data["id"], "local-")
}

func TestWidgetLayoutRejectsEmpty(t *testing.T) {
	s := newTestServer(t, nil)

	rec, _ := doRequest(t, s, http.MethodPut, "/api/v1/session/layout", map[string]any{
		"layout": []string{},
	}, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStaffGate(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("staff-secret"), bcrypt.MinCost)
	require.NoError(t, err)

	s := newTestServer(t, func(c *Config) {
		c.StaffKeyHash = string(hash)
	})

	rec, _ := doRequest(t, s, http.MethodGet, "/api/v1/students", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = doRequest(t, s, http.MethodGet, "/api/v1/students", nil, map[string]string{
		"X-Staff-Key": "wrong",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, resp := doRequest(t, s, http.MethodGet, "/api/v1/students", nil, map[string]string{
		"X-Staff-Key": "staff-secret",
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, resp.Success)
}

func TestAdvisorUnconfiguredIs503(t *testing.T) {
	s := newTestServer(t, nil)

	rec, resp := doRequest(t, s, http.MethodPost, "/api/v1/advisor/consult", map[string]any{
		"history": []map[string]string{{"role": "user", "text": "hello"}},
		"context": "",
	}, nil)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "service_unavailable", resp.Error.Code)
}
