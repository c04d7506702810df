// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package telemetry aggregates in-memory statistics over a classification
// session. Nothing here persists; a new process starts from zero.
package telemetry

import (
	"sync"
	"time"

	"github.com/jeranaias/supportq/internal/classify"
)

// =============================================================================
// SESSION METRICS
// =============================================================================

// SessionMetrics is a point-in-time snapshot of session statistics. All
// maps are copies; callers may mutate them freely.
type SessionMetrics struct {
	TotalQueries  int                                   `json:"total_queries"`
	ByCategory    map[classify.SupportCategory]int      `json:"by_category"`
	ByMethod      map[classify.ClassificationMethod]int `json:"by_method"`
	MultiIntent   int                                   `json:"multi_intent"`
	HumanReview   int                                   `json:"human_review"`
	AvgConfidence float64                               `json:"avg_confidence"`
	AvgResponseMs float64                               `json:"avg_response_ms"`
	TotalTokens   int                                   `json:"total_tokens"`
	TotalCostUSD  float64                               `json:"total_cost_usd"`
	StartedAt     time.Time                             `json:"started_at"`
}

// =============================================================================
// SESSION TRACKER
// =============================================================================

// SessionTracker folds classification results into running aggregates.
// Safe for concurrent use.
type SessionTracker struct {
	mu sync.Mutex

	totalQueries int
	byCategory   map[classify.SupportCategory]int
	byMethod     map[classify.ClassificationMethod]int
	multiIntent  int
	humanReview  int

	confidenceSum float64
	responseMsSum float64
	totalTokens   int
	totalCostUSD  float64

	startedAt time.Time
}

// NewSessionTracker creates an empty tracker anchored at now.
func NewSessionTracker() *SessionTracker {
	return &SessionTracker{
		byCategory: make(map[classify.SupportCategory]int),
		byMethod:   make(map[classify.ClassificationMethod]int),
		startedAt:  time.Now().UTC(),
	}
}

// Record folds one result into the session aggregates.
func (t *SessionTracker) Record(r classify.ClassificationResult) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.totalQueries++
	t.byCategory[r.Category]++
	t.byMethod[r.Method]++
	if r.IsMultiIntent {
		t.multiIntent++
	}
	if r.RequiresHuman {
		t.humanReview++
	}
	t.confidenceSum += r.Confidence
	t.responseMsSum += r.ResponseTimeMs
	t.totalTokens += r.TokensUsed
	t.totalCostUSD += r.EstimatedCost
}

// Snapshot returns a copy of the current aggregates.
func (t *SessionTracker) Snapshot() SessionMetrics {
	t.mu.Lock()
	defer t.mu.Unlock()

	m := SessionMetrics{
		TotalQueries: t.totalQueries,
		ByCategory:   make(map[classify.SupportCategory]int, len(t.byCategory)),
		ByMethod:     make(map[classify.ClassificationMethod]int, len(t.byMethod)),
		MultiIntent:  t.multiIntent,
		HumanReview:  t.humanReview,
		TotalTokens:  t.totalTokens,
		TotalCostUSD: t.totalCostUSD,
		StartedAt:    t.startedAt,
	}
	for k, v := range t.byCategory {
		m.ByCategory[k] = v
	}
	for k, v := range t.byMethod {
		m.ByMethod[k] = v
	}
	if t.totalQueries > 0 {
		m.AvgConfidence = t.confidenceSum / float64(t.totalQueries)
		m.AvgResponseMs = t.responseMsSum / float64(t.totalQueries)
	}
	return m
}

// Reset clears all aggregates and re-anchors the session start.
func (t *SessionTracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.totalQueries = 0
	t.byCategory = make(map[classify.SupportCategory]int)
	t.byMethod = make(map[classify.ClassificationMethod]int)
	t.multiIntent = 0
	t.humanReview = 0
	t.confidenceSum = 0
	t.responseMsSum = 0
	t.totalTokens = 0
	t.totalCostUSD = 0
	t.startedAt = time.Now().UTC()
}
