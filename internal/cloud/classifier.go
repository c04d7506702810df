// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cloud

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jeranaias/supportq/internal/classify"
	"github.com/jeranaias/supportq/internal/logger"
)

// =============================================================================
// LLM CLASSIFIER
// =============================================================================

const (
	// maxLLMConfidence caps model self-reported confidence. Models are
	// routinely overconfident; the cap keeps rule results competitive in
	// hybrid arbitration.
	maxLLMConfidence = 0.95

	// costPerThousandTokens estimates spend in USD.
	costPerThousandTokens = 0.0004
)

// llmPayload is the JSON the model is instructed to return.
type llmPayload struct {
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning"`
	Sentiment  string  `json:"sentiment"`
	Urgency    string  `json:"urgency"`
}

// LLMClassifier classifies queries through a remote completion client.
// It never returns an error: any failure degrades to a low-confidence
// General result so the pipeline keeps moving.
type LLMClassifier struct {
	client *Client
}

// NewLLMClassifier wraps a completion client.
func NewLLMClassifier(client *Client) *LLMClassifier {
	return &LLMClassifier{client: client}
}

// Configured reports whether the underlying client can send requests.
func (l *LLMClassifier) Configured() bool {
	return l.client != nil && l.client.Configured()
}

// Classify asks the model for a category. Transport failures retry inside
// the client; anything permanent (auth, parse, unconfigured) produces the
// fallback result immediately.
func (l *LLMClassifier) Classify(ctx context.Context, q classify.QueryInput) classify.ClassificationResult {
	start := time.Now()

	if !l.Configured() {
		return fallbackResult(ErrNotConfigured, start)
	}

	comp, err := l.client.Complete(ctx, []Message{
		{Role: "system", Content: SystemPrompt},
		{Role: "user", Content: ClassificationPrompt(q.Text)},
	})
	if err != nil {
		logger.Error("llm classification failed", "error", err)
		return fallbackResult(err, start)
	}

	var payload llmPayload
	if err := json.Unmarshal([]byte(comp.Content), &payload); err != nil {
		logger.Error("llm returned unparseable content", "error", err)
		return fallbackResult(fmt.Errorf("parse completion: %w", err), start)
	}

	category, ok := classify.ParseCategory(payload.Category)
	if !ok {
		logger.Warn("llm returned unknown category", "category", payload.Category)
	}

	confidence := classify.RoundConfidence(payload.Confidence)
	if confidence > maxLLMConfidence {
		confidence = maxLLMConfidence
	}

	reasoning := payload.Reasoning
	if (payload.Sentiment != "" && payload.Sentiment != "neutral") ||
		(payload.Urgency != "" && payload.Urgency != "normal") {
		reasoning += fmt.Sprintf(" [Sentiment: %s, Urgency: %s]", payload.Sentiment, payload.Urgency)
	}

	result := classify.NewResult(category, confidence, classify.MethodLLMFallback, reasoning)
	result.TokensUsed = comp.TokensUsed
	result.EstimatedCost = float64(comp.TokensUsed) / 1000.0 * costPerThousandTokens
	result.ResponseTimeMs = elapsedMs(start)

	logger.Debug("llm classification",
		"category", result.Category,
		"confidence", result.Confidence,
		"tokens", result.TokensUsed)

	return result
}

// fallbackResult is returned when the LLM path fails entirely.
func fallbackResult(err error, start time.Time) classify.ClassificationResult {
	result := classify.NewResult(
		classify.CategoryGeneral,
		0.3,
		classify.MethodLLMFallback,
		fmt.Sprintf("LLM classification failed: %v", err),
	)
	result.ResponseTimeMs = elapsedMs(start)
	return result
}

func elapsedMs(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000.0
}
