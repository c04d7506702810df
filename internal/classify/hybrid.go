// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package classify

import (
	"context"
	"time"

	"github.com/jeranaias/supportq/internal/logger"
)

// =============================================================================
// HYBRID CLASSIFIER
// =============================================================================

// DefaultConfidenceThreshold is the rule confidence at or above which the
// LLM is never consulted.
const DefaultConfidenceThreshold = 0.7

// FallbackClassifier is the LLM-backed second opinion consulted when rule
// confidence falls below the threshold. Implementations must not return
// errors; failures degrade to a low-confidence result instead.
type FallbackClassifier interface {
	Classify(ctx context.Context, q QueryInput) ClassificationResult
	Configured() bool
}

// HybridClassifier runs the rule engine first and escalates to a fallback
// classifier only when rules are unsure. The cheap path handles the bulk
// of traffic; the expensive path only pays off when it is strictly more
// confident.
//
// Safe for concurrent use.
type HybridClassifier struct {
	rules     *RuleEngine
	fallback  FallbackClassifier
	threshold float64
}

// NewHybridClassifier builds the orchestrator. fallback may be nil, in
// which case every query resolves through rules alone. A threshold <= 0
// falls back to DefaultConfidenceThreshold.
func NewHybridClassifier(rules *RuleEngine, fallback FallbackClassifier, threshold float64) *HybridClassifier {
	if threshold <= 0 {
		threshold = DefaultConfidenceThreshold
	}
	return &HybridClassifier{rules: rules, fallback: fallback, threshold: threshold}
}

// Classify resolves one query. Rule results at or above the confidence
// threshold are returned untouched. Below it, the fallback runs and wins
// only when strictly more confident; the rule result is the tie-breaker.
func (h *HybridClassifier) Classify(ctx context.Context, q QueryInput) ClassificationResult {
	start := time.Now()

	ruleResult := h.rules.Classify(q)
	if ruleResult.Confidence >= h.threshold {
		return ruleResult
	}
	if h.fallback == nil || !h.fallback.Configured() {
		return ruleResult
	}

	logger.Debug("escalating to llm",
		"rule_confidence", ruleResult.Confidence,
		"threshold", h.threshold)

	llmResult := h.fallback.Classify(ctx, q)
	if llmResult.Confidence > ruleResult.Confidence {
		llmResult.Method = MethodHybrid
		llmResult.ResponseTimeMs = float64(time.Since(start).Microseconds()) / 1000.0
		return llmResult
	}
	return ruleResult
}

// ClassifyBatch classifies queries sequentially, preserving input order.
// Classification of a validated input always produces a result, so the
// returned slice always has one entry per query.
func (h *HybridClassifier) ClassifyBatch(ctx context.Context, queries []QueryInput) []ClassificationResult {
	results := make([]ClassificationResult, 0, len(queries))
	for _, q := range queries {
		results = append(results, h.Classify(ctx, q))
	}
	return results
}
