// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package classify

// =============================================================================
// KEYWORD PATTERNS
// =============================================================================

// KeywordGroup is a weighted set of related terms. A group's contribution
// to a category score is its match ratio times its weight.
type KeywordGroup struct {
	Keywords []string
	Weight   float64
}

// categoryPatterns maps each category to its keyword groups. Weights
// encode how strongly a group signals the category; groups with
// unambiguous phrases ("charged twice", "forgot password") carry the
// highest weights.
var categoryPatterns = map[SupportCategory][]KeywordGroup{
	CategoryBilling: {
		{Keywords: []string{"refund", "charged", "charge", "payment", "bill", "invoice"}, Weight: 0.9},
		{Keywords: []string{"money", "paid", "cost", "price", "fee", "dollars"}, Weight: 0.8},
		{Keywords: []string{"subscription", "cancel", "upgrade", "downgrade"}, Weight: 0.85},
		{Keywords: []string{"credit card", "debit card", "payment method"}, Weight: 0.9},
		{Keywords: []string{"money back", "refund", "charged twice", "double charged"}, Weight: 0.95},
		{Keywords: []string{"overcharged", "unauthorized", "incorrect charge"}, Weight: 0.95},
		{Keywords: []string{"receipt", "transaction", "purchase"}, Weight: 0.75},
	},
	CategoryTechnical: {
		{Keywords: []string{"error", "bug", "crash", "broken", "not working"}, Weight: 0.9},
		{Keywords: []string{"loading", "slow", "timeout", "connection"}, Weight: 0.8},
		{Keywords: []string{"feature", "function", "button", "click"}, Weight: 0.75},
		{Keywords: []string{"browser", "app", "mobile", "desktop"}, Weight: 0.7},
		{Keywords: []string{"update", "version", "install"}, Weight: 0.75},
	},
	CategoryAccount: {
		{Keywords: []string{"forgot password", "reset password", "forgot my password"}, Weight: 0.95},
		{Keywords: []string{"password", "login", "log in", "sign in", "access"}, Weight: 0.85},
		{Keywords: []string{"locked out", "cant access", "can't access", "cannot access"}, Weight: 0.9},
		{Keywords: []string{"account", "profile", "settings", "preferences"}, Weight: 0.85},
		{Keywords: []string{"email", "username", "change", "update"}, Weight: 0.8},
		{Keywords: []string{"delete account", "close account", "deactivate"}, Weight: 0.95},
		{Keywords: []string{"personal information", "details", "data"}, Weight: 0.8},
		{Keywords: []string{"verify", "verification", "confirm"}, Weight: 0.75},
		{Keywords: []string{"security", "privacy", "permissions"}, Weight: 0.8},
	},
	CategoryFeature: {
		{Keywords: []string{"add feature", "new feature", "feature request"}, Weight: 0.95},
		{Keywords: []string{"can you add", "could you add", "please add"}, Weight: 0.9},
		{Keywords: []string{"would like", "wish", "hope", "suggestion"}, Weight: 0.85},
		{Keywords: []string{"export", "download", "import", "integrate"}, Weight: 0.8},
		{Keywords: []string{"improve", "enhancement", "better", "easier"}, Weight: 0.75},
		{Keywords: []string{"missing", "need", "want", "require"}, Weight: 0.7},
	},
	CategoryBug: {
		{Keywords: []string{"bug", "issue", "problem", "defect"}, Weight: 0.9},
		{Keywords: []string{"unexpected", "incorrect", "wrong", "broken"}, Weight: 0.85},
		{Keywords: []string{"should work", "supposed to", "expected"}, Weight: 0.8},
		{Keywords: []string{"always fails", "consistently", "reproducible"}, Weight: 0.85},
	},
	CategoryProduct: {
		{Keywords: []string{"how do i", "how to", "tutorial", "guide", "documentation"}, Weight: 0.75},
		{Keywords: []string{"product", "plan", "pricing", "tier", "difference between"}, Weight: 0.7},
		{Keywords: []string{"compatible", "support for", "works with"}, Weight: 0.7},
	},
	CategoryGeneral: {
		{Keywords: []string{"help", "support", "question", "how"}, Weight: 0.5},
		{Keywords: []string{"what", "why", "when", "where"}, Weight: 0.4},
		{Keywords: []string{"information", "about", "learn"}, Weight: 0.45},
	},
}

// =============================================================================
// PRIORITY TRIGGERS
// =============================================================================

// criticalKeywords force critical priority and human review.
var criticalKeywords = []string{
	"urgent", "emergency", "critical", "asap", "immediately",
	"can't access", "cannot access", "locked out",
	"fraud", "unauthorized", "hacked", "stolen", "security breach",
}

// highKeywords bump priority to high.
var highKeywords = []string{
	"crash", "error", "down", "not working", "broken",
	"charged twice", "double charge", "refund", "money back",
	"forgot password", "reset password",
}
