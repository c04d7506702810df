// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package classify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubFallback is a canned FallbackClassifier that counts invocations.
type stubFallback struct {
	result     ClassificationResult
	configured bool
	calls      int
}

func (s *stubFallback) Classify(_ context.Context, _ QueryInput) ClassificationResult {
	s.calls++
	return s.result
}

func (s *stubFallback) Configured() bool { return s.configured }

func TestHybridSkipsLLMOnConfidentRules(t *testing.T) {
	fb := &stubFallback{configured: true,
		result: NewResult(CategoryTechnical, 0.9, MethodLLMFallback, "")}
	h := NewHybridClassifier(newTestEngine(), fb, DefaultConfidenceThreshold)

	// Rule confidence 1.0, well above the threshold.
	r := h.Classify(context.Background(), QueryInput{
		Text: "I was charged twice but the refund button shows error 500"})

	assert.Equal(t, CategoryBilling, r.Category)
	assert.Equal(t, MethodRuleBased, r.Method)
	assert.Zero(t, fb.calls, "LLM must not run for confident rule results")
}

func TestHybridEscalatesAndLLMWins(t *testing.T) {
	fb := &stubFallback{configured: true,
		result: NewResult(CategoryProduct, 0.85, MethodLLMFallback, "model pick")}
	h := NewHybridClassifier(newTestEngine(), fb, DefaultConfidenceThreshold)

	// No keyword matches anywhere: rules produce General at 0.3.
	r := h.Classify(context.Background(), QueryInput{Text: "zzzz qqqq xxxx yyyy"})

	require.Equal(t, 1, fb.calls)
	assert.Equal(t, CategoryProduct, r.Category)
	assert.Equal(t, MethodHybrid, r.Method, "arbitration wins are tagged hybrid")
	assert.Equal(t, 0.85, r.Confidence)
}

func TestHybridRuleWinsTies(t *testing.T) {
	// LLM matches but does not beat the rule confidence; strictly greater
	// is required to win.
	fb := &stubFallback{configured: true,
		result: NewResult(CategoryProduct, 0.3, MethodLLMFallback, "")}
	h := NewHybridClassifier(newTestEngine(), fb, DefaultConfidenceThreshold)

	r := h.Classify(context.Background(), QueryInput{Text: "zzzz qqqq xxxx yyyy"})

	require.Equal(t, 1, fb.calls)
	assert.Equal(t, CategoryGeneral, r.Category)
	assert.Equal(t, MethodRuleBased, r.Method)
}

func TestHybridNilFallback(t *testing.T) {
	h := NewHybridClassifier(newTestEngine(), nil, DefaultConfidenceThreshold)

	r := h.Classify(context.Background(), QueryInput{Text: "zzzz qqqq xxxx yyyy"})

	assert.Equal(t, CategoryGeneral, r.Category)
	assert.Equal(t, MethodRuleBased, r.Method)
}

func TestHybridUnconfiguredFallback(t *testing.T) {
	fb := &stubFallback{configured: false,
		result: NewResult(CategoryProduct, 0.9, MethodLLMFallback, "")}
	h := NewHybridClassifier(newTestEngine(), fb, DefaultConfidenceThreshold)

	r := h.Classify(context.Background(), QueryInput{Text: "zzzz qqqq xxxx yyyy"})

	assert.Zero(t, fb.calls)
	assert.Equal(t, MethodRuleBased, r.Method)
}

func TestClassifyBatchPreservesOrder(t *testing.T) {
	h := NewHybridClassifier(newTestEngine(), nil, DefaultConfidenceThreshold)

	queries := []QueryInput{
		{Text: "I need a refund for the double charge on my account"},
		{Text: "the page keeps loading slow with a timeout on my browser"},
		{Text: "please add a new feature to export my reports"},
	}

	results := h.ClassifyBatch(context.Background(), queries)

	require.Len(t, results, 3)
	assert.Equal(t, CategoryBilling, results[0].Category)
	assert.Equal(t, CategoryTechnical, results[1].Category)
	assert.Equal(t, CategoryFeature, results[2].Category)
}

func TestClassifyBatchEmpty(t *testing.T) {
	h := NewHybridClassifier(newTestEngine(), nil, DefaultConfidenceThreshold)
	results := h.ClassifyBatch(context.Background(), nil)
	assert.Empty(t, results)
}
