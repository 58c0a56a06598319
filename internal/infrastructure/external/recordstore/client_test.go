package recordstore

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snapx-edu/academy-hub/internal/domain/assessment"
	"github.com/snapx-edu/academy-hub/internal/domain/course"
)

func testClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := DefaultClientConfig("", "team07_captain", "secret")
	cfg.BaseURL = srv.URL
	cfg.Timeout = 2 * time.Second
	cfg.RetryConfig.MaxRetries = 0
	cfg.RateLimiterConfig.MinInterval = 0
	return NewClient(cfg)
}

func TestClient_ListCourses(t *testing.T) {
	var gotAuth bool
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		gotAuth = ok && user == "team07_captain" && pass == "secret"

		assert.Equal(t, "/"+TableCourse, r.URL.Path)
		assert.Equal(t, "20", r.URL.Query().Get("sysparm_limit"))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"result": []map[string]any{
				{
					"sys_id":          "c-100",
					"u_title":         "Advanced Data Structures",
					"u_instructor":    map[string]any{"value": "inst-1", "display_value": "Dr. Sarah Chen"},
					"u_category":      "Computer Science",
					"u_description":   "Trees and graphs.",
					"u_total_modules": "12",
					"u_recommended":   "true",
					"u_skills":        "Algorithms,C++",
					"u_rating":        "4.9",
				},
			},
		})
	})

	c := testClient(t, handler)
	courses, err := c.ListCourses(context.Background())
	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.True(t, gotAuth, "expected basic auth header")

	got := courses[0]
	assert.Equal(t, course.ID("c-100"), got.ID)
	assert.Equal(t, "Advanced Data Structures", got.Title)
	assert.Equal(t, "Dr. Sarah Chen", got.Instructor) // display value for presentation
	assert.Equal(t, 12, got.TotalModules)
	assert.True(t, got.Recommended)
	assert.Equal(t, []string{"Algorithms", "C++"}, got.Skills)
	assert.Equal(t, 4.9, got.Rating)
	// unenriched until the state store merges enrollments
	assert.False(t, got.Enrolled)
	assert.Equal(t, 0, got.Progress)
	assert.Equal(t, 0, got.CompletedModules)
}

func TestClient_ListCourses_AppliesDefaults(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"result": []map[string]any{
				{"sys_id": "c-1", "u_title": "Bare Course", "u_total_modules": "not-a-number"},
			},
		})
	})

	c := testClient(t, handler)
	courses, err := c.ListCourses(context.Background())
	require.NoError(t, err)
	require.Len(t, courses, 1)

	assert.Equal(t, defaultTotalModules, courses[0].TotalModules)
	assert.Equal(t, defaultThumbnail, courses[0].Thumbnail)
	assert.Equal(t, defaultRating, courses[0].Rating)
}

func TestClient_ListEnrollments(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.RawQuery, "sysparm_query")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"result": []map[string]any{
				{
					"sys_id":              "e-1",
					"u_student_email":     "alex.rivera@snapx.edu",
					"u_course":            map[string]any{"value": "c-100", "display_value": "Advanced Data Structures"},
					"u_progress":          "40",
					"u_completed_modules": "4",
					"u_active":            "true",
				},
			},
		})
	})

	c := testClient(t, handler)
	enrollments, err := c.ListEnrollments(context.Background(), "alex.rivera@snapx.edu")
	require.NoError(t, err)
	require.Len(t, enrollments, 1)

	e := enrollments[0]
	assert.Equal(t, "e-1", e.ID)
	assert.Equal(t, course.ID("c-100"), e.CourseID) // raw value for identity
	assert.Equal(t, 40, e.Progress)
	assert.Equal(t, 4, e.CompletedModules)
	assert.True(t, e.Active)
}

func TestClient_Enroll(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/"+TableEnrollment, r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "alex.rivera@snapx.edu", body[fieldStudentEmail])
		assert.Equal(t, "c-100", body[fieldCourseRef])
		assert.Equal(t, float64(0), body[fieldProgress])
		assert.Equal(t, true, body[fieldActive])

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"result": map[string]any{"sys_id": "e-new"},
		})
	})

	c := testClient(t, handler)
	id, err := c.Enroll(context.Background(), "alex.rivera@snapx.edu", "c-100")
	require.NoError(t, err)
	assert.Equal(t, "e-new", id)
}

func TestClient_UpdateProgress(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPatch, r.Method)
		require.Equal(t, "/"+TableEnrollment+"/e-1", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, float64(40), body[fieldProgress])
		assert.Equal(t, float64(4), body[fieldCompletedModules])

		_ = json.NewEncoder(w).Encode(map[string]any{"result": map[string]any{"sys_id": "e-1"}})
	})

	c := testClient(t, handler)
	assert.NoError(t, c.UpdateProgress(context.Background(), "e-1", 40, 4))
}

func TestClient_NonOKStatusIsFailure(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		// a well-formed body does not rescue a non-2xx status
		_ = json.NewEncoder(w).Encode(map[string]any{"result": []any{}})
	})

	c := testClient(t, handler)
	_, err := c.ListCourses(context.Background())
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
}

func TestClient_MalformedBodyIsFailure(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"result": not-json`))
	})

	c := testClient(t, handler)
	_, err := c.ListAssessments(context.Background())
	assert.Error(t, err)
}

func TestClient_CreateAssessment_DefaultsToDraft(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Draft", body[fieldStatus])

		_ = json.NewEncoder(w).Encode(map[string]any{"result": map[string]any{"sys_id": "a-new"}})
	})

	c := testClient(t, handler)
	id, err := c.CreateAssessment(context.Background(), assessment.Assessment{
		Title:       "Graph Theory Quiz",
		TotalPoints: 50,
		DueDate:     "2025-05-20",
	})
	require.NoError(t, err)
	assert.Equal(t, "a-new", id)
}

func TestClient_Available(t *testing.T) {
	unconfigured := NewClient(ClientConfig{})
	assert.False(t, unconfigured.Available())

	configured := NewClient(DefaultClientConfig("dev12345", "admin", "pw"))
	assert.True(t, configured.Available())
}
