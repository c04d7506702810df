// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package classify implements support query classification: a weighted
// keyword rule engine, an LLM-backed fallback, and a hybrid orchestrator
// that arbitrates between them on confidence.
package classify

// =============================================================================
// CATEGORIES
// =============================================================================

// SupportCategory is one of the seven support query categories.
type SupportCategory string

const (
	CategoryBilling   SupportCategory = "Billing & Payments"
	CategoryTechnical SupportCategory = "Technical Issues"
	CategoryAccount   SupportCategory = "Account Management"
	CategoryFeature   SupportCategory = "Feature Requests"
	CategoryBug       SupportCategory = "Bug Reports"
	CategoryProduct   SupportCategory = "Product Questions"
	CategoryGeneral   SupportCategory = "General Inquiry"
)

// AllCategories lists every category in declaration order. The order is
// meaningful: score ties resolve to the earliest category.
func AllCategories() []SupportCategory {
	return []SupportCategory{
		CategoryBilling,
		CategoryTechnical,
		CategoryAccount,
		CategoryFeature,
		CategoryBug,
		CategoryProduct,
		CategoryGeneral,
	}
}

// ParseCategory maps a category name to a SupportCategory. Returns
// CategoryGeneral and false for unrecognized names.
func ParseCategory(s string) (SupportCategory, bool) {
	for _, c := range AllCategories() {
		if string(c) == s {
			return c, true
		}
	}
	return CategoryGeneral, false
}

// =============================================================================
// METHODS AND PRIORITY
// =============================================================================

// ClassificationMethod identifies which engine produced a result.
type ClassificationMethod string

const (
	// MethodRuleBased marks results resolved by the rule engine alone.
	MethodRuleBased ClassificationMethod = "rule-based"

	// MethodLLMFallback marks results produced by the LLM adapter,
	// whether the completion succeeded or degraded to its default.
	MethodLLMFallback ClassificationMethod = "llm-fallback"

	// MethodHybrid marks results where both engines ran and arbitration
	// picked the LLM answer over the rule answer.
	MethodHybrid ClassificationMethod = "hybrid"
)

// Priority levels assigned by the rule engine.
const (
	PriorityCritical = "critical"
	PriorityHigh     = "high"
	PriorityNormal   = "normal"
)
