// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cloud

import (
	"fmt"
	"strings"
)

// =============================================================================
// PROMPTS
// =============================================================================

// SystemPrompt pins the model to strict JSON output.
const SystemPrompt = "You are a precise support query classifier. Respond only with valid JSON."

// categoryGuide describes each category for the model. Descriptions are
// short on purpose: long lists dilute attention in small-token
// completions.
var categoryGuide = []struct {
	Name string
	Desc string
}{
	{"Billing & Payments", "refunds, charges, invoices, pricing disputes, subscription changes"},
	{"Technical Issues", "errors, crashes, performance problems, things not working"},
	{"Account Management", "login, passwords, account access, profile and settings changes"},
	{"Feature Requests", "suggestions for new functionality or improvements"},
	{"Bug Reports", "reproducible defects and incorrect behavior"},
	{"Product Questions", "how-to questions, product capabilities, plans and compatibility"},
	{"General Inquiry", "anything that fits no other category"},
}

// ClassificationPrompt builds the user message asking the model to
// classify one query.
func ClassificationPrompt(query string) string {
	var b strings.Builder
	b.WriteString("Classify this customer support query into exactly one category.\n\nCategories:\n")
	for _, c := range categoryGuide {
		fmt.Fprintf(&b, "- %s: %s\n", c.Name, c.Desc)
	}
	fmt.Fprintf(&b, "\nQuery: %q\n\n", query)
	b.WriteString(`Respond with JSON only:
{
  "category": "<exact category name>",
  "confidence": <0.0-1.0>,
  "reasoning": "<one sentence>",
  "sentiment": "<positive|neutral|negative>",
  "urgency": "<low|normal|high>"
}`)
	return b.String()
}

// ValidationPrompt asks the model to confirm or correct a rule-based
// classification. Used by review tooling rather than the hot path.
func ValidationPrompt(query, category string) string {
	return fmt.Sprintf(`A rule-based classifier labeled this support query as %q.

Query: %q

Is that label correct? Respond with JSON only:
{
  "agrees": <true|false>,
  "category": "<correct category name>",
  "confidence": <0.0-1.0>,
  "reasoning": "<one sentence>"
}`, category, query)
}

// MultiIntentPrompt asks the model to enumerate every distinct intent in
// a query, for queries the rule engine flagged as multi-intent.
func MultiIntentPrompt(query string) string {
	var b strings.Builder
	b.WriteString("List every distinct support intent in this query.\n\nCategories:\n")
	for _, c := range categoryGuide {
		fmt.Fprintf(&b, "- %s: %s\n", c.Name, c.Desc)
	}
	fmt.Fprintf(&b, "\nQuery: %q\n\n", query)
	b.WriteString(`Respond with JSON only:
{
  "intents": [{"category": "<exact category name>", "confidence": <0.0-1.0>}],
  "primary": "<exact category name>"
}`)
	return b.String()
}
