// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/supportq/internal/classify"
	"github.com/jeranaias/supportq/internal/preprocess"
	"github.com/jeranaias/supportq/internal/router"
	"github.com/jeranaias/supportq/internal/telemetry"
)

func newTestServer() *Server {
	rules := classify.NewRuleEngine(preprocess.NewDefault(), classify.DefaultMultiIntentThreshold)
	hybrid := classify.NewHybridClassifier(rules, nil, classify.DefaultConfidenceThreshold)
	return New(Options{Port: 0}, hybrid, router.New(), telemetry.NewSessionTracker())
}

func doJSON(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echoContentType, echoJSON)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

const (
	echoContentType = "Content-Type"
	echoJSON        = "application/json"
)

func TestHealth(t *testing.T) {
	rec := doJSON(t, newTestServer(), http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestClassifyEndpoint(t *testing.T) {
	s := newTestServer()

	rec := doJSON(t, s, http.MethodPost, "/v1/classify",
		`{"text":"I need a refund for the double charge on my account","user_id":"u-1"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp classifyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, classify.CategoryBilling, resp.Result.Category)
	assert.Equal(t, 0.69, resp.Result.Confidence)
	assert.Equal(t, router.DestSpecialistBilling, resp.Routing.Destination)
	assert.NotEmpty(t, resp.RequestID)
	assert.Equal(t, resp.RequestID, rec.Header().Get("X-Request-ID"))
}

func TestClassifyRejectsInvalidInput(t *testing.T) {
	s := newTestServer()

	tests := []struct {
		name string
		body string
	}{
		{"empty text", `{"text":""}`},
		{"too short", `{"text":"hi"}`},
		{"no letters", `{"text":"12345 67890"}`},
		{"malformed json", `{"text":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, s, http.MethodPost, "/v1/classify", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)

			var resp errorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.NotEmpty(t, resp.Error)
		})
	}
}

func TestClassifyBatchEndpoint(t *testing.T) {
	s := newTestServer()

	body := `{"queries":[
		{"text":"I need a refund for the double charge on my account"},
		{"text":"please add a new feature to export my reports"}
	]}`
	rec := doJSON(t, s, http.MethodPost, "/v1/classify/batch", body)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp batchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	require.Equal(t, 2, resp.Count)
	assert.Equal(t, classify.CategoryBilling, resp.Results[0].Result.Category)
	assert.Equal(t, classify.CategoryFeature, resp.Results[1].Result.Category)
}

func TestClassifyBatchRejectsEmpty(t *testing.T) {
	rec := doJSON(t, newTestServer(), http.MethodPost, "/v1/classify/batch", `{"queries":[]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestClassifyBatchRejectsBadEntry(t *testing.T) {
	s := newTestServer()

	body := `{"queries":[
		{"text":"I need a refund for the double charge on my account"},
		{"text":"hi"}
	]}`
	rec := doJSON(t, s, http.MethodPost, "/v1/classify/batch", body)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Error, "queries[1]")
}

func TestStatsEndpoint(t *testing.T) {
	s := newTestServer()

	doJSON(t, s, http.MethodPost, "/v1/classify",
		`{"text":"I need a refund for the double charge on my account"}`)

	rec := doJSON(t, s, http.MethodGet, "/v1/stats", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var m telemetry.SessionMetrics
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
	assert.Equal(t, 1, m.TotalQueries)
	assert.Equal(t, 1, m.ByCategory[classify.CategoryBilling])
}

func TestStatsReset(t *testing.T) {
	s := newTestServer()

	doJSON(t, s, http.MethodPost, "/v1/classify",
		`{"text":"I need a refund for the double charge on my account"}`)

	rec := doJSON(t, s, http.MethodDelete, "/v1/stats", "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, s, http.MethodGet, "/v1/stats", "")
	var m telemetry.SessionMetrics
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
	assert.Zero(t, m.TotalQueries)
}

func TestRateLimit(t *testing.T) {
	rules := classify.NewRuleEngine(preprocess.NewDefault(), classify.DefaultMultiIntentThreshold)
	hybrid := classify.NewHybridClassifier(rules, nil, classify.DefaultConfidenceThreshold)
	s := New(Options{Port: 0, RateLimit: 1, Burst: 1}, hybrid, router.New(), telemetry.NewSessionTracker())

	first := doJSON(t, s, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, first.Code)

	second := doJSON(t, s, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
}
