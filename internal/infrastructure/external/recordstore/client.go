// Package recordstore implements the remote record store client. The store
// is a ServiceNow-style tabular record API holding courses, enrollments,
// calendar events, assessments, student profiles and nudges.
//
// The client is a stateless translation/transport layer: it builds table
// requests, decodes the {result: ...} envelope, normalizes the dual-shape
// field encoding (see Field) and maps wire records to domain entities. It
// returns errors; it never substitutes fallback data itself - that policy
// belongs to the caller.
package recordstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/snapx-edu/academy-hub/internal/domain/assessment"
	"github.com/snapx-edu/academy-hub/internal/domain/calendar"
	"github.com/snapx-edu/academy-hub/internal/domain/course"
	"github.com/snapx-edu/academy-hub/internal/domain/nudge"
	"github.com/snapx-edu/academy-hub/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// ClientConfig contains configuration for the record store client.
// Credentials come from runtime configuration; they are never embedded in
// source.
type ClientConfig struct {
	// Instance is the record store instance name; the base address is
	// https://{instance}.service-now.com/api/now/table.
	Instance string

	// Username and Password authenticate via HTTP Basic Auth.
	Username string
	Password string

	// BaseURL overrides the derived instance address. Used in tests.
	BaseURL string

	// Timeout is the HTTP request timeout.
	Timeout time.Duration

	// RateLimiterConfig for API rate limiting.
	RateLimiterConfig RateLimiterConfig

	// CircuitBreakerConfig for fault tolerance.
	CircuitBreakerConfig CircuitBreakerConfig

	// RetryConfig for retry behavior.
	RetryConfig RetryConfig

	// Logger for structured logging.
	Logger *slog.Logger

	// Debug enables request logging.
	Debug bool
}

// DefaultClientConfig returns sensible defaults for the given instance.
func DefaultClientConfig(instance, username, password string) ClientConfig {
	return ClientConfig{
		Instance:             instance,
		Username:             username,
		Password:             password,
		Timeout:              30 * time.Second,
		RateLimiterConfig:    DefaultRateLimiterConfig(),
		CircuitBreakerConfig: DefaultCircuitBreakerConfig(),
		RetryConfig:          DefaultRetryConfig(),
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// CLIENT
// ══════════════════════════════════════════════════════════════════════════════

// Client is the record store API client.
type Client struct {
	config         ClientConfig
	httpClient     *http.Client
	logger         *slog.Logger
	rateLimiter    *RateLimiter
	circuitBreaker *CircuitBreaker
	mapper         *Mapper
}

// NewClient creates a new record store client.
func NewClient(config ClientConfig) *Client {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		logger:         config.Logger,
		rateLimiter:    NewRateLimiter(config.RateLimiterConfig),
		circuitBreaker: NewCircuitBreaker(config.CircuitBreakerConfig),
		mapper:         NewMapper(),
	}
}

// Available reports whether the client has enough configuration to reach the
// store. An unconfigured client means offline mode: callers skip the network
// round and go straight to their fallback data.
func (c *Client) Available() bool {
	if c.config.BaseURL != "" {
		return true
	}
	return c.config.Instance != "" && c.config.Username != "" && c.config.Password != ""
}

// baseURL returns the table API root.
func (c *Client) baseURL() string {
	if c.config.BaseURL != "" {
		return strings.TrimRight(c.config.BaseURL, "/")
	}
	return fmt.Sprintf("https://%s.service-now.com/api/now/table", c.config.Instance)
}

// APIError is a non-2xx response from the record store. Non-2xx status is
// failure regardless of body content.
type APIError struct {
	StatusCode int
	Body       string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("record store error: status %d", e.StatusCode)
}

// Is implements errors.Is matching.
func (e *APIError) Is(target error) bool {
	_, ok := target.(*APIError)
	return ok
}

// ══════════════════════════════════════════════════════════════════════════════
// COURSE OPERATIONS
// ══════════════════════════════════════════════════════════════════════════════

// courseListLimit caps the course catalog query.
const courseListLimit = 20

// ListCourses fetches the course catalog. Courses come back unenriched:
// enrolled=false and zero progress until the caller merges enrollments.
func (c *Client) ListCourses(ctx context.Context) ([]course.Course, error) {
	path := TableCourse + "?sysparm_limit=" + strconv.Itoa(courseListLimit)

	var envelope listEnvelope[CourseRecord]
	if err := c.doRequest(ctx, http.MethodGet, path, nil, &envelope); err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}

	courses := make([]course.Course, 0, len(envelope.Result))
	for i := range envelope.Result {
		courses = append(courses, c.mapper.CourseFromRecord(&envelope.Result[i]))
	}
	return courses, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// ENROLLMENT OPERATIONS
// ══════════════════════════════════════════════════════════════════════════════

// ListEnrollments fetches all enrollment records for the given student email.
func (c *Client) ListEnrollments(ctx context.Context, email string) ([]course.Enrollment, error) {
	path := TableEnrollment + "?sysparm_query=" + url.QueryEscape(fieldStudentEmail+"="+email)

	var envelope listEnvelope[EnrollmentRecord]
	if err := c.doRequest(ctx, http.MethodGet, path, nil, &envelope); err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}

	enrollments := make([]course.Enrollment, 0, len(envelope.Result))
	for i := range envelope.Result {
		enrollments = append(enrollments, c.mapper.EnrollmentFromRecord(&envelope.Result[i]))
	}
	return enrollments, nil
}

// Enroll creates an enrollment record linking the student to the course and
// returns the created record identifier.
func (c *Client) Enroll(ctx context.Context, email string, courseID course.ID) (string, error) {
	body := map[string]any{
		fieldStudentEmail:     email,
		fieldCourseRef:        courseID.String(),
		fieldProgress:         0,
		fieldCompletedModules: 0,
		fieldActive:           true,
	}

	var envelope recordEnvelope[createdRecord]
	if err := c.doRequest(ctx, http.MethodPost, TableEnrollment, body, &envelope); err != nil {
		return "", fmt.Errorf("enroll %s: %w", courseID, err)
	}
	return envelope.Result.SysID.Raw(), nil
}

// UpdateProgress patches the stored progress of an enrollment record.
func (c *Client) UpdateProgress(ctx context.Context, enrollmentID string, progress, completedModules int) error {
	body := map[string]any{
		fieldProgress:         progress,
		fieldCompletedModules: completedModules,
	}

	path := TableEnrollment + "/" + url.PathEscape(enrollmentID)
	if err := c.doRequest(ctx, http.MethodPatch, path, body, nil); err != nil {
		return fmt.Errorf("update progress %s: %w", enrollmentID, err)
	}
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// EVENT OPERATIONS
// ══════════════════════════════════════════════════════════════════════════════

// ListEvents fetches the student's calendar events ordered by date ascending.
func (c *Client) ListEvents(ctx context.Context, email string) ([]calendar.Event, error) {
	query := fieldStudentEmail + "=" + email + "^ORDERBY" + fieldDate
	path := TableEvent + "?sysparm_query=" + url.QueryEscape(query)

	var envelope listEnvelope[EventRecord]
	if err := c.doRequest(ctx, http.MethodGet, path, nil, &envelope); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}

	events := make([]calendar.Event, 0, len(envelope.Result))
	for i := range envelope.Result {
		events = append(events, c.mapper.EventFromRecord(&envelope.Result[i]))
	}
	// The store orders by date already; keep the guarantee even when it does not.
	calendar.SortByDate(events)
	return events, nil
}

// CreateEvent creates a calendar event for the student and returns the
// created record identifier.
func (c *Client) CreateEvent(ctx context.Context, ev calendar.Event, email string) (string, error) {
	body := map[string]any{
		fieldTitle:        ev.Title,
		fieldDate:         ev.Date.Format(wireDateFormat),
		fieldType:         string(ev.Category),
		fieldStudentEmail: email,
		fieldDescription:  ev.Description,
	}

	var envelope recordEnvelope[createdRecord]
	if err := c.doRequest(ctx, http.MethodPost, TableEvent, body, &envelope); err != nil {
		return "", fmt.Errorf("create event: %w", err)
	}
	return envelope.Result.SysID.Raw(), nil
}

// ══════════════════════════════════════════════════════════════════════════════
// STUDENT PROFILE OPERATIONS
// ══════════════════════════════════════════════════════════════════════════════

// studentListLimit caps the teacher-facing student profile query.
const studentListLimit = 50

// ListStudents fetches all student profiles for the teacher views.
func (c *Client) ListStudents(ctx context.Context) ([]student.Profile, error) {
	path := TableStudentProfile + "?sysparm_limit=" + strconv.Itoa(studentListLimit)

	var envelope listEnvelope[StudentProfileRecord]
	if err := c.doRequest(ctx, http.MethodGet, path, nil, &envelope); err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}

	profiles := make([]student.Profile, 0, len(envelope.Result))
	for i := range envelope.Result {
		profiles = append(profiles, c.mapper.ProfileFromRecord(&envelope.Result[i]))
	}
	return profiles, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// ASSESSMENT OPERATIONS
// ══════════════════════════════════════════════════════════════════════════════

// ListAssessments fetches assessments ordered by due date.
func (c *Client) ListAssessments(ctx context.Context) ([]assessment.Assessment, error) {
	path := TableAssessment + "?sysparm_limit=" + strconv.Itoa(studentListLimit) +
		"&sysparm_query=" + url.QueryEscape("ORDERBY"+fieldDueDate)

	var envelope listEnvelope[AssessmentRecord]
	if err := c.doRequest(ctx, http.MethodGet, path, nil, &envelope); err != nil {
		return nil, fmt.Errorf("list assessments: %w", err)
	}

	assessments := make([]assessment.Assessment, 0, len(envelope.Result))
	for i := range envelope.Result {
		assessments = append(assessments, c.mapper.AssessmentFromRecord(&envelope.Result[i]))
	}
	return assessments, nil
}

// CreateAssessment creates an assessment record and returns the created
// record identifier. Any status may be set directly; the store does not
// enforce lifecycle order.
func (c *Client) CreateAssessment(ctx context.Context, a assessment.Assessment) (string, error) {
	status := a.Status
	if status == "" {
		status = assessment.StatusDraft
	}
	body := map[string]any{
		fieldTitle:       a.Title,
		fieldTotalPoints: a.TotalPoints,
		fieldDueDate:     a.DueDate,
		fieldStatus:      string(status),
	}
	if a.CourseID != "" {
		body[fieldCourseRef] = a.CourseID
	}

	var envelope recordEnvelope[createdRecord]
	if err := c.doRequest(ctx, http.MethodPost, TableAssessment, body, &envelope); err != nil {
		return "", fmt.Errorf("create assessment: %w", err)
	}
	return envelope.Result.SysID.Raw(), nil
}

// ══════════════════════════════════════════════════════════════════════════════
// NUDGE OPERATIONS
// ══════════════════════════════════════════════════════════════════════════════

// ListNudges fetches the student's active nudges.
func (c *Client) ListNudges(ctx context.Context, email string) ([]nudge.Nudge, error) {
	query := fieldStudentEmail + "=" + email + "^" + fieldActive + "=true"
	path := TableNudge + "?sysparm_query=" + url.QueryEscape(query)

	var envelope listEnvelope[NudgeRecord]
	if err := c.doRequest(ctx, http.MethodGet, path, nil, &envelope); err != nil {
		return nil, fmt.Errorf("list nudges: %w", err)
	}

	nudges := make([]nudge.Nudge, 0, len(envelope.Result))
	for i := range envelope.Result {
		nudges = append(nudges, c.mapper.NudgeFromRecord(&envelope.Result[i]))
	}
	return nudges, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// COMPLIANCE AND GRADING RECORDS
// ══════════════════════════════════════════════════════════════════════════════

// SaveComplianceRecord stores a compliance audit result.
func (c *Client) SaveComplianceRecord(ctx context.Context, payload map[string]any) error {
	if err := c.doRequest(ctx, http.MethodPost, TableCompliance, payload, nil); err != nil {
		return fmt.Errorf("save compliance record: %w", err)
	}
	return nil
}

// SaveGradingRecord stores a handwritten-exam review result.
func (c *Client) SaveGradingRecord(ctx context.Context, payload map[string]any) error {
	if err := c.doRequest(ctx, http.MethodPost, TableExamReview, payload, nil); err != nil {
		return fmt.Errorf("save grading record: %w", err)
	}
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// HTTP REQUEST HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// doRequest performs an HTTP request with rate limiting, circuit breaking,
// and retries.
func (c *Client) doRequest(ctx context.Context, method, path string, body any, result any) error {
	if err := c.circuitBreaker.Allow(); err != nil {
		return fmt.Errorf("circuit breaker: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= c.config.RetryConfig.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := c.config.RetryConfig.CalculateBackoff(attempt)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}

		if err := c.rateLimiter.Allow(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}

		err := c.doSingleRequest(ctx, method, path, body, result)
		if err == nil {
			c.circuitBreaker.RecordSuccess()
			return nil
		}

		lastErr = err

		if !c.isRetryable(err) {
			c.circuitBreaker.RecordFailure()
			return err
		}

		var rateLimitErr *RateLimitError
		if errors.As(err, &rateLimitErr) {
			c.rateLimiter.RecordRateLimitHit(rateLimitErr.RetryAfter)
		}
	}

	c.circuitBreaker.RecordFailure()
	return fmt.Errorf("request failed after %d retries: %w", c.config.RetryConfig.MaxRetries, lastErr)
}

// doSingleRequest performs a single HTTP request against the table API.
func (c *Client) doSingleRequest(ctx context.Context, method, path string, body any, result any) error {
	fullURL := c.baseURL() + "/" + path

	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, bodyReader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.SetBasicAuth(c.config.Username, c.config.Password)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	if c.config.Debug {
		c.logger.Debug("record store request", "method", method, "path", path)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		retryAfter := 60 * time.Second
		if ra := resp.Header.Get("Retry-After"); ra != "" {
			if seconds, err := strconv.Atoi(ra); err == nil {
				retryAfter = time.Duration(seconds) * time.Second
			}
		}
		return &RateLimitError{
			RetryAfter: retryAfter,
			Message:    "rate limit exceeded",
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{
			StatusCode: resp.StatusCode,
			Body:       truncate(string(respBody), 512),
		}
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
	}

	return nil
}

// isRetryable checks if an error is worth retrying.
func (c *Client) isRetryable(err error) bool {
	if err == nil {
		return false
	}

	var rateLimitErr *RateLimitError
	if errors.As(err, &rateLimitErr) {
		return true
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode >= 500
	}

	// Network-level errors are generally transient.
	errStr := err.Error()
	for _, marker := range []string{"timeout", "connection refused", "temporary", "reset", "EOF"} {
		if strings.Contains(errStr, marker) {
			return true
		}
	}
	return false
}

// truncate caps s at n bytes for logging and error payloads.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
