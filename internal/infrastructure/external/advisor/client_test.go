package advisor

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snapx-edu/academy-hub/internal/domain/shared"
)

func testAdvisor(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := DefaultClientConfig("test-key")
	cfg.BaseURL = srv.URL
	return NewClient(cfg)
}

func replyWith(text string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{"parts": []map[string]any{{"text": text}}}},
			},
		})
	})
}

func TestClient_Consult(t *testing.T) {
	var gotReq generateRequest
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		replyWith("Keep pushing on graph theory!").ServeHTTP(w, r)
	})

	c := testAdvisor(t, handler)
	reply, err := c.Consult(context.Background(), []Message{
		{Role: "user", Text: "How am I doing?"},
	}, "GPA 3.2, progress 65%")
	require.NoError(t, err)
	assert.Equal(t, "Keep pushing on graph theory!", reply)

	require.NotNil(t, gotReq.SystemInstruction)
	assert.Contains(t, gotReq.SystemInstruction.Parts[0].Text, "GPA 3.2")
	require.Len(t, gotReq.Contents, 1)
	assert.Equal(t, "user", gotReq.Contents[0].Role)
}

func TestClient_Consult_EmptyHistory(t *testing.T) {
	c := testAdvisor(t, replyWith("unused"))
	_, err := c.Consult(context.Background(), nil, "ctx")
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestClient_SuggestGoals(t *testing.T) {
	c := testAdvisor(t, replyWith(`[{"title":"Raise GPA","targetDate":"2026-12-01","category":"Academics"}]`))

	goals, err := c.SuggestGoals(context.Background(), "GPA 3.2, attendance 82%")
	require.NoError(t, err)
	require.Len(t, goals, 1)
	assert.Equal(t, "Raise GPA", goals[0].Title)
	assert.Equal(t, "2026-12-01", goals[0].TargetDate)
}

func TestClient_SuggestGoals_StripsCodeFence(t *testing.T) {
	c := testAdvisor(t, replyWith("```json\n[{\"title\":\"Focus\"}]\n```"))

	goals, err := c.SuggestGoals(context.Background(), "summary")
	require.NoError(t, err)
	require.Len(t, goals, 1)
	assert.Equal(t, "Focus", goals[0].Title)
}

func TestClient_AnalyzeCompliance(t *testing.T) {
	c := testAdvisor(t, replyWith(`{"isCompliant":true,"score":87,"observations":["good lighting"],"recommendations":"raise monitor"}`))

	result, err := c.AnalyzeCompliance(context.Background(), "aW1hZ2U=")
	require.NoError(t, err)
	assert.True(t, result.IsCompliant)
	assert.Equal(t, 87, result.Score)
	assert.Equal(t, []string{"good lighting"}, result.Observations)
}

func TestClient_MalformedJSONSurfaces(t *testing.T) {
	c := testAdvisor(t, replyWith("sorry, I cannot do that"))

	_, err := c.SuggestGoals(context.Background(), "summary")
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrInvalidFormat)
}

func TestClient_ServiceFailureSurfaces(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	c := testAdvisor(t, handler)

	_, err := c.Consult(context.Background(), []Message{{Role: "user", Text: "hi"}}, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrServiceUnavailable)
}

func TestClient_RetriesTransientFailure(t *testing.T) {
	var calls int
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		replyWith("recovered").ServeHTTP(w, r)
	})
	c := testAdvisor(t, handler)

	reply, err := c.Consult(context.Background(), []Message{{Role: "user", Text: "hi"}}, "")
	require.NoError(t, err)
	assert.Equal(t, "recovered", reply)
	assert.Equal(t, 2, calls)
}

func TestClient_Unconfigured(t *testing.T) {
	c := NewClient(ClientConfig{})
	assert.False(t, c.Available())

	_, err := c.Consult(context.Background(), []Message{{Role: "user", Text: "hi"}}, "")
	assert.ErrorIs(t, err, shared.ErrServiceUnavailable)
}
