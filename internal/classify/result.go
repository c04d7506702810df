// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package classify

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// =============================================================================
// RULE MATCH
// =============================================================================

// RuleMatch records one keyword group that contributed to a rule-based
// score, for explainability.
type RuleMatch struct {
	Category   SupportCategory `json:"category"`
	Keywords   []string        `json:"keywords"`
	Weight     float64         `json:"weight"`
	MatchRatio float64         `json:"match_ratio"`
}

// =============================================================================
// CLASSIFICATION RESULT
// =============================================================================

// maxReasoningLen caps stored reasoning text.
const maxReasoningLen = 500

// ClassificationResult is the outcome of classifying one query.
type ClassificationResult struct {
	Category       SupportCategory      `json:"category"`
	Confidence     float64              `json:"confidence"`
	Method         ClassificationMethod `json:"method"`
	Reasoning      string               `json:"reasoning,omitempty"`
	ResponseTimeMs float64              `json:"response_time_ms"`
	Timestamp      time.Time            `json:"timestamp"`

	// Rule engine extras
	RuleMatches    []RuleMatch                 `json:"rule_matches,omitempty"`
	CategoryScores map[SupportCategory]float64 `json:"category_scores,omitempty"`
	IsMultiIntent  bool                        `json:"is_multi_intent"`
	Priority       string                      `json:"priority,omitempty"`
	RequiresHuman  bool                        `json:"requires_human"`

	// AdditionalCategories lists secondary intents in descending score
	// order. It never contains Category itself; IsMultiIntent is true
	// exactly when this list is non-empty.
	AdditionalCategories []SupportCategory `json:"additional_categories,omitempty"`

	// LLM extras
	TokensUsed    int     `json:"tokens_used,omitempty"`
	EstimatedCost float64 `json:"estimated_cost,omitempty"`
}

// NewResult builds a result with normalized confidence and reasoning and
// a current timestamp. Confidence is clamped to [0, 1] and rounded to two
// decimals; reasoning is truncated to 500 characters.
func NewResult(category SupportCategory, confidence float64, method ClassificationMethod, reasoning string) ClassificationResult {
	return ClassificationResult{
		Category:   category,
		Confidence: RoundConfidence(confidence),
		Method:     method,
		Reasoning:  truncateReasoning(reasoning),
		Timestamp:  time.Now().UTC(),
		Priority:   PriorityNormal,
	}
}

// RoundConfidence clamps a confidence to [0, 1] and rounds to two decimal
// places.
func RoundConfidence(v float64) float64 {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	return math.Round(v*100) / 100
}

func truncateReasoning(s string) string {
	if len(s) > maxReasoningLen {
		return s[:maxReasoningLen]
	}
	return s
}

// DisplayMap flattens the result for human-facing output (CLI tables,
// log fields). Values are preformatted strings.
func (r ClassificationResult) DisplayMap() map[string]string {
	m := map[string]string{
		"category":   string(r.Category),
		"confidence": fmt.Sprintf("%.2f", r.Confidence),
		"method":     string(r.Method),
		"time_ms":    fmt.Sprintf("%.1f", r.ResponseTimeMs),
	}
	if r.Priority != "" {
		m["priority"] = r.Priority
	}
	if r.IsMultiIntent {
		extra := make([]string, len(r.AdditionalCategories))
		for i, c := range r.AdditionalCategories {
			extra[i] = string(c)
		}
		m["also_detected"] = strings.Join(extra, ", ")
	}
	if r.RequiresHuman {
		m["requires_human"] = "yes"
	}
	if r.TokensUsed > 0 {
		m["tokens"] = fmt.Sprintf("%d", r.TokensUsed)
		m["cost_usd"] = fmt.Sprintf("%.6f", r.EstimatedCost)
	}
	return m
}
