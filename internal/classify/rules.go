// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package classify

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jeranaias/supportq/internal/logger"
	"github.com/jeranaias/supportq/internal/preprocess"
)

// =============================================================================
// CONSTANTS
// =============================================================================

const (
	// minRuleScore is the floor below which the engine gives up and
	// returns a low-confidence General result.
	minRuleScore = 0.2

	// defaultConfidence is assigned to the General fallback result.
	defaultConfidence = 0.3

	// DefaultMultiIntentThreshold is the score a secondary category needs
	// to count as a distinct intent.
	DefaultMultiIntentThreshold = 0.5

	// multiGroupBoost rewards queries matching several keyword groups of
	// the same category; boostCap limits the total reward.
	multiGroupBoost = 0.15
	boostCap        = 0.35
)

// =============================================================================
// RULE ENGINE
// =============================================================================

// RuleEngine scores queries against weighted keyword groups. It is fast,
// deterministic, and explainable; low-confidence results are expected to
// be retried by an LLM through the hybrid classifier.
//
// Safe for concurrent use.
type RuleEngine struct {
	pre                  *preprocess.Preprocessor
	multiIntentThreshold float64
}

// NewRuleEngine creates a rule engine using the given preprocessor. A
// threshold <= 0 falls back to DefaultMultiIntentThreshold.
func NewRuleEngine(pre *preprocess.Preprocessor, multiIntentThreshold float64) *RuleEngine {
	if pre == nil {
		pre = preprocess.NewDefault()
	}
	if multiIntentThreshold <= 0 {
		multiIntentThreshold = DefaultMultiIntentThreshold
	}
	return &RuleEngine{pre: pre, multiIntentThreshold: multiIntentThreshold}
}

// Classify scores the query against every category and returns the best
// match. The result always carries per-category scores, a priority level,
// and a human-review flag.
func (e *RuleEngine) Classify(q QueryInput) ClassificationResult {
	start := time.Now()

	text := e.pre.Preprocess(q.Text)
	tokens := map[string]bool{}
	for _, kw := range e.pre.ExtractKeywords(q.Text) {
		tokens[kw] = true
	}

	scores := map[SupportCategory]float64{}
	allMatches := map[SupportCategory][]RuleMatch{}
	matchedTerms := map[SupportCategory][]string{}

	for _, cat := range AllCategories() {
		score, groups, terms := e.scoreCategory(cat, text, tokens)
		scores[cat] = score
		allMatches[cat] = groups
		matchedTerms[cat] = terms
	}

	// Ties resolve to the earliest category in declaration order.
	best := CategoryGeneral
	bestScore := 0.0
	for _, cat := range AllCategories() {
		if scores[cat] > bestScore {
			best = cat
			bestScore = scores[cat]
		}
	}

	result := ClassificationResult{
		Method:         MethodRuleBased,
		Timestamp:      time.Now().UTC(),
		CategoryScores: roundScores(scores),
	}

	if bestScore < minRuleScore {
		result.Category = CategoryGeneral
		result.Confidence = defaultConfidence
		result.Reasoning = "No strong pattern matches found"
	} else {
		result.Category = best
		result.Confidence = RoundConfidence(bestScore)
		result.RuleMatches = allMatches[best]
		result.Reasoning = buildReasoning(matchedTerms[best])
	}

	intents := e.detectIntents(scores)
	if len(intents) >= 2 {
		result.IsMultiIntent = true
		result.AdditionalCategories = dropCategory(intents, result.Category)
		result.Reasoning += " | Also detected: " + joinCategories(result.AdditionalCategories)
		result.Reasoning = truncateReasoning(result.Reasoning)
	}

	// Trigger keywords match against the raw lowercased query, not the
	// preprocessed form: normalization strips apostrophes, which would
	// break contractions like "can't access".
	rawLower := strings.ToLower(q.Text)
	hasHigh := containsAny(rawLower, highKeywords)
	result.Priority = assignPriority(rawLower, result)
	result.RequiresHuman = needsHumanReview(result, hasHigh)
	result.ResponseTimeMs = float64(time.Since(start).Microseconds()) / 1000.0

	logger.Debug("rule classification",
		"category", result.Category,
		"confidence", result.Confidence,
		"multi_intent", result.IsMultiIntent,
		"priority", result.Priority)

	return result
}

// scoreCategory computes one category's score. A term counts when it
// appears as an extracted keyword or as a substring of the normalized
// text (which is how multi-word phrases match). Only exact keyword hits
// feed the explanation.
func (e *RuleEngine) scoreCategory(cat SupportCategory, text string, tokens map[string]bool) (float64, []RuleMatch, []string) {
	var (
		score        float64
		groupsHit    int
		ruleMatches  []RuleMatch
		matchedTerms []string
	)
	// Groups of the same category share keywords; report each term once.
	seen := map[string]bool{}

	for _, group := range categoryPatterns[cat] {
		matches := 0
		var hits []string
		for _, term := range group.Keywords {
			if tokens[term] {
				matches++
				hits = append(hits, term)
			} else if strings.Contains(text, term) {
				matches++
			}
		}
		if matches == 0 {
			continue
		}

		ratio := float64(matches) / float64(len(group.Keywords))
		score += ratio * group.Weight
		groupsHit++
		for _, term := range hits {
			if !seen[term] {
				seen[term] = true
				matchedTerms = append(matchedTerms, term)
			}
		}
		ruleMatches = append(ruleMatches, RuleMatch{
			Category:   cat,
			Keywords:   hits,
			Weight:     group.Weight,
			MatchRatio: ratio,
		})
	}

	if groupsHit > 1 {
		boost := multiGroupBoost * float64(groupsHit-1)
		if boost > boostCap {
			boost = boostCap
		}
		score += boost
	}
	if score > 1.0 {
		score = 1.0
	}
	return score, ruleMatches, matchedTerms
}

// detectIntents returns every category scoring at or above the
// multi-intent threshold, highest first. Equal scores keep declaration
// order.
func (e *RuleEngine) detectIntents(scores map[SupportCategory]float64) []SupportCategory {
	var intents []SupportCategory
	for _, cat := range AllCategories() {
		if scores[cat] >= e.multiIntentThreshold {
			intents = append(intents, cat)
		}
	}
	sort.SliceStable(intents, func(i, j int) bool {
		return scores[intents[i]] > scores[intents[j]]
	})
	return intents
}

// =============================================================================
// PRIORITY AND REVIEW
// =============================================================================

// assignPriority derives a priority level from trigger keywords in the
// raw lowercased query and from the classification itself.
func assignPriority(rawLower string, r ClassificationResult) string {
	if containsAny(rawLower, criticalKeywords) {
		return PriorityCritical
	}
	if containsAny(rawLower, highKeywords) {
		return PriorityHigh
	}
	if r.IsMultiIntent || r.Confidence < 0.5 {
		return PriorityHigh
	}
	return PriorityNormal
}

// needsHumanReview flags results an agent should look at rather than
// trusting automated routing. hasHigh reports whether a high-priority
// trigger keyword appeared in the query; a billing result only demands
// review on an actual trigger, not on priority raised for other reasons.
func needsHumanReview(r ClassificationResult, hasHigh bool) bool {
	switch {
	case r.IsMultiIntent:
		return true
	case r.Priority == PriorityCritical:
		return true
	case r.Confidence < 0.4:
		return true
	case r.Category == CategoryBilling && hasHigh:
		return true
	}
	return false
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// =============================================================================
// HELPERS
// =============================================================================

// buildReasoning summarizes up to three matched keywords.
func buildReasoning(terms []string) string {
	if len(terms) == 0 {
		return "Matched category patterns"
	}
	n := len(terms)
	shown := terms
	if len(shown) > 3 {
		shown = shown[:3]
	}
	return fmt.Sprintf("Matched %d patterns: %s", n, strings.Join(shown, ", "))
}

// dropCategory filters one category out of a sorted intent list,
// preserving order.
func dropCategory(cats []SupportCategory, skip SupportCategory) []SupportCategory {
	out := make([]SupportCategory, 0, len(cats)-1)
	for _, c := range cats {
		if c != skip {
			out = append(out, c)
		}
	}
	return out
}

func joinCategories(cats []SupportCategory) string {
	parts := make([]string, len(cats))
	for i, c := range cats {
		parts[i] = string(c)
	}
	return strings.Join(parts, ", ")
}

func roundScores(scores map[SupportCategory]float64) map[SupportCategory]float64 {
	out := make(map[SupportCategory]float64, len(scores))
	for c, v := range scores {
		out[c] = RoundConfidence(v)
	}
	return out
}
