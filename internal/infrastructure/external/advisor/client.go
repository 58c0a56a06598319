// Package advisor implements the generative-AI advisory client. The service
// is an external collaborator with a narrow contract: one-shot or short-lived
// conversational requests with a fixed system prompt, returning free text or
// JSON matching a requested schema.
//
// Unlike record store failures, advisory failures are never masked: any call
// may fail or return malformed JSON, and both surface to the caller as
// distinct errors so the interface layer can offer a retry.
package advisor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/snapx-edu/academy-hub/internal/domain/shared"
	"github.com/snapx-edu/academy-hub/pkg/circuitbreaker"
	"github.com/snapx-edu/academy-hub/pkg/retry"
)

// systemPrompt is the fixed mentor persona. The student's current data is
// appended per conversation.
const systemPrompt = "You are the SnapX Academy AI Mentor. You are sophisticated, " +
	"encouraging, and tech-focused. Use markdown for formatting. You have access " +
	"to this student's data: %s. Provide short, high-impact advice."

// ══════════════════════════════════════════════════════════════════════════════
// CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// ClientConfig contains configuration for the advisory client.
type ClientConfig struct {
	// APIKey authenticates against the generative language API.
	APIKey string

	// BaseURL is the API root. Overridable for tests.
	BaseURL string

	// FlashModel handles chat and lightweight structured calls.
	FlashModel string

	// ProModel handles the heavier analysis calls.
	ProModel string

	// Timeout is the HTTP request timeout.
	Timeout time.Duration

	// MaxAttempts bounds retries on transient transport failures.
	MaxAttempts int

	// Logger for structured logging.
	Logger *slog.Logger
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig(apiKey string) ClientConfig {
	return ClientConfig{
		APIKey:      apiKey,
		BaseURL:     "https://generativelanguage.googleapis.com/v1beta",
		FlashModel:  "gemini-3-flash-preview",
		ProModel:    "gemini-3-pro-preview",
		Timeout:     60 * time.Second,
		MaxAttempts: 2,
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// CLIENT
// ══════════════════════════════════════════════════════════════════════════════

// Client is the advisory service client.
type Client struct {
	config     ClientConfig
	httpClient *http.Client
	retrier    *retry.Retrier
	breaker    *circuitbreaker.CircuitBreaker
	logger     *slog.Logger
}

// NewClient creates a new advisory client.
func NewClient(config ClientConfig) *Client {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.Timeout <= 0 {
		config.Timeout = 60 * time.Second
	}
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 2
	}
	logger := config.Logger
	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		retrier: retry.New(
			retry.WithMaxAttempts(config.MaxAttempts),
			retry.WithInitialDelay(500*time.Millisecond),
		),
		breaker: circuitbreaker.AdvisorBreaker(func(name string, from, to circuitbreaker.State) {
			logger.Warn("advisor circuit state changed", "from", from.String(), "to", to.String())
		}),
		logger: logger,
	}
}

// Available reports whether an API key is configured.
func (c *Client) Available() bool {
	return c.config.APIKey != ""
}

// Message is one turn of an advisory conversation.
type Message struct {
	Role string `json:"role"` // "user" or "model"
	Text string `json:"text"`
}

// ══════════════════════════════════════════════════════════════════════════════
// RESULT TYPES
// ══════════════════════════════════════════════════════════════════════════════

// Goal is a suggested SMART goal.
type Goal struct {
	Title      string `json:"title"`
	TargetDate string `json:"targetDate"` // YYYY-MM-DD
	Category   string `json:"category"`
}

// ComplianceResult is the outcome of a study-environment audit.
type ComplianceResult struct {
	IsCompliant     bool     `json:"isCompliant"`
	Score           int      `json:"score"`
	Observations    []string `json:"observations"`
	Recommendations string   `json:"recommendations"`
}

// WorkReview is the outcome of a handwritten-exam review.
type WorkReview struct {
	Transcription  string `json:"transcription"`
	Subject        string `json:"subject"`
	EstimatedGrade int    `json:"estimatedGrade"`
	Feedback       string `json:"feedback"`
}

// CareerRecommendation is one suggested career path.
type CareerRecommendation struct {
	Role           string   `json:"role"`
	MatchScore     int      `json:"matchScore"`
	RequiredSkills []string `json:"requiredSkills"`
	Timeline       string   `json:"timeline"`
}

// InterventionStrategy is one teaching strategy in an intervention plan.
type InterventionStrategy struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// InterventionPlan is the educator-facing analysis of a struggling student.
type InterventionPlan struct {
	Summary           string                 `json:"summary"`
	InterventionLevel string                 `json:"interventionLevel"` // Low/Medium/High
	Strategies        []InterventionStrategy `json:"strategies"`
	EmailDraft        string                 `json:"emailDraft"`
}

// ══════════════════════════════════════════════════════════════════════════════
// OPERATIONS
// ══════════════════════════════════════════════════════════════════════════════

// Consult sends the conversation to the mentor persona and returns its
// free-text reply. currentContext is the student data snippet interpolated
// into the system prompt.
func (c *Client) Consult(ctx context.Context, history []Message, currentContext string) (string, error) {
	if len(history) == 0 {
		return "", shared.WrapError("advisor", "Consult", shared.ErrInvalidInput, "empty conversation", nil)
	}

	req := generateRequest{
		SystemInstruction: &content{Parts: []part{{Text: fmt.Sprintf(systemPrompt, currentContext)}}},
	}
	for _, m := range history {
		role := m.Role
		if role != "model" {
			role = "user"
		}
		req.Contents = append(req.Contents, content{Role: role, Parts: []part{{Text: m.Text}}})
	}

	return c.generate(ctx, c.config.FlashModel, req)
}

// SuggestGoals asks for three SMART goals derived from a performance summary.
func (c *Client) SuggestGoals(ctx context.Context, performanceSummary string) ([]Goal, error) {
	prompt := "Analyze this performance data and suggest 3 SMART goals: " + performanceSummary +
		". Return JSON array of objects with title, targetDate (YYYY-MM-DD), and category."

	req := textRequest(prompt)
	req.GenerationConfig = jsonConfig(arraySchema(objectSchema(map[string]*schema{
		"title":      {Type: "STRING"},
		"targetDate": {Type: "STRING"},
		"category":   {Type: "STRING"},
	})))

	var goals []Goal
	if err := c.generateJSON(ctx, c.config.FlashModel, req, &goals); err != nil {
		return nil, err
	}
	return goals, nil
}

// AnalyzeCompliance audits a base64-encoded photo of a home-study setup.
func (c *Client) AnalyzeCompliance(ctx context.Context, imageBase64 string) (*ComplianceResult, error) {
	req := imageRequest(imageBase64,
		"Analyze this student home-study setup. Assess ergonomics, lighting, clutter, "+
			"and safety. Return JSON: isCompliant, score, observations (array), recommendations.")
	req.GenerationConfig = jsonConfig(nil)

	var result ComplianceResult
	if err := c.generateJSON(ctx, c.config.FlashModel, req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ReviewHandwrittenWork transcribes and grades a base64-encoded photo of a
// handwritten exam.
func (c *Client) ReviewHandwrittenWork(ctx context.Context, imageBase64 string) (*WorkReview, error) {
	req := imageRequest(imageBase64,
		"Review this handwritten exam. Transcribe, identify subject, estimate grade "+
			"(0-100), and give feedback. Return JSON.")
	req.GenerationConfig = jsonConfig(nil)

	var review WorkReview
	if err := c.generateJSON(ctx, c.config.FlashModel, req, &review); err != nil {
		return nil, err
	}
	return &review, nil
}

// CareerIntelligence suggests three career paths for a student profile.
func (c *Client) CareerIntelligence(ctx context.Context, studentProfile string) ([]CareerRecommendation, error) {
	prompt := fmt.Sprintf("Based on this student profile: %q, suggest 3 distinct career paths.", studentProfile)

	req := textRequest(prompt)
	req.GenerationConfig = jsonConfig(arraySchema(objectSchema(map[string]*schema{
		"role":           {Type: "STRING"},
		"matchScore":     {Type: "INTEGER"},
		"requiredSkills": arraySchema(&schema{Type: "STRING"}),
		"timeline":       {Type: "STRING"},
	})))

	var recs []CareerRecommendation
	if err := c.generateJSON(ctx, c.config.ProModel, req, &recs); err != nil {
		return nil, err
	}
	return recs, nil
}

// GenerateIntervention produces an intervention plan for an educator.
func (c *Client) GenerateIntervention(ctx context.Context, studentData string) (*InterventionPlan, error) {
	prompt := fmt.Sprintf("Analyze this student data for an educator: %q. Provide specific "+
		"teaching strategies. Return JSON: { summary, interventionLevel (Low/Medium/High), "+
		"strategies (array of objects with title and description), emailDraft (string) }", studentData)

	req := textRequest(prompt)
	req.GenerationConfig = jsonConfig(nil)

	var plan InterventionPlan
	if err := c.generateJSON(ctx, c.config.ProModel, req, &plan); err != nil {
		return nil, err
	}
	return &plan, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// TRANSPORT
// ══════════════════════════════════════════════════════════════════════════════

// generate performs one generateContent call and extracts the reply text.
func (c *Client) generate(ctx context.Context, model string, req generateRequest) (string, error) {
	if !c.Available() {
		return "", shared.ErrAdvisorUnavailable
	}

	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent", strings.TrimRight(c.config.BaseURL, "/"), model)

	var respBody []byte
	err = c.breaker.Execute(ctx, func(ctx context.Context) error {
		return c.retrier.Do(ctx, c.attempt(endpoint, body, model, &respBody))
	})
	if err != nil {
		return "", shared.WrapError("advisor", "Request", shared.ErrServiceUnavailable, "advisory request failed", err)
	}

	var reply generateResponse
	if err := json.Unmarshal(respBody, &reply); err != nil {
		return "", shared.WrapError("advisor", "Parse", shared.ErrInvalidFormat, "malformed advisory envelope", err)
	}

	text := reply.text()
	if text == "" {
		return "", shared.ErrAdvisorMalformedReply
	}
	return text, nil
}

// attempt returns a single-shot request closure for the retrier. Transient
// transport failures and 429/5xx statuses are marked retryable; other
// statuses are permanent.
func (c *Client) attempt(endpoint string, body []byte, model string, respBody *[]byte) func(context.Context) error {
	return func(ctx context.Context) error {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
		if err != nil {
			return retry.Permanent(fmt.Errorf("create request: %w", err))
		}
		httpReq.Header.Set("Content-Type", "application/json")
		httpReq.Header.Set("x-goog-api-key", c.config.APIKey)

		resp, err := c.httpClient.Do(httpReq)
		if err != nil {
			return retry.Retryable(err)
		}
		defer resp.Body.Close()

		b, err := io.ReadAll(resp.Body)
		if err != nil {
			return retry.Retryable(err)
		}

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			*respBody = b
			return nil
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			c.logger.Warn("advisory call failed", "model", model, "status", resp.StatusCode)
			return retry.Retryable(fmt.Errorf("advisory service returned status %d", resp.StatusCode))
		default:
			c.logger.Warn("advisory call rejected", "model", model, "status", resp.StatusCode)
			return retry.Permanent(fmt.Errorf("advisory service returned status %d", resp.StatusCode))
		}
	}
}

// generateJSON performs a structured-output call and decodes the JSON reply
// into out. A success body that does not parse surfaces as a malformed-reply
// error; it is never silently discarded.
func (c *Client) generateJSON(ctx context.Context, model string, req generateRequest, out any) error {
	text, err := c.generate(ctx, model, req)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(stripCodeFence(text)), out); err != nil {
		return shared.WrapError("advisor", "Parse", shared.ErrInvalidFormat, "malformed advisory reply", err)
	}
	return nil
}

// stripCodeFence removes a surrounding markdown code fence that some models
// wrap JSON replies in despite the JSON mime type.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
