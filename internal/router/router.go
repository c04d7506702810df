// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package router

import (
	"fmt"

	"github.com/jeranaias/supportq/internal/classify"
	"github.com/jeranaias/supportq/internal/logger"
)

// =============================================================================
// ROUTER
// =============================================================================

// confidentMultiIntent is the confidence at which a two-intent query can
// stay on a single ticket instead of being split.
const confidentMultiIntent = 0.7

// Router decides where classified queries go. Stateless and safe for
// concurrent use.
type Router struct{}

// New creates a Router.
func New() *Router {
	return &Router{}
}

// Route picks a destination for a classification result. Branches are
// checked in order: multi-intent, critical priority, low confidence, then
// the per-category default.
func (rt *Router) Route(r classify.ClassificationResult) RoutingDecision {
	var d RoutingDecision
	switch {
	case r.IsMultiIntent:
		d = rt.routeMultiIntent(r)
	case r.Priority == classify.PriorityCritical:
		d = RoutingDecision{
			Destination:         DestEscalationTeam,
			Action:              ActionEscalateImmediately,
			Priority:            classify.PriorityCritical,
			EstimatedWait:       "Immediate",
			Reasoning:           "Critical priority query escalated directly",
			SpecialInstructions: "Alert the on-call manager before first response",
		}
	case r.Confidence < 0.5:
		d = RoutingDecision{
			Destination:         DestTier1Support,
			Action:              ActionQueueNormal,
			Priority:            r.Priority,
			EstimatedWait:       "15-30 minutes",
			Reasoning:           fmt.Sprintf("Low confidence (%.2f), generalist review", r.Confidence),
			SpecialInstructions: "Verify the category and recategorize if needed",
		}
	default:
		d = rt.routeByCategory(r)
	}

	logger.Debug("routing decision",
		"category", r.Category,
		"destination", d.Destination,
		"action", d.Action)
	return d
}

// routeMultiIntent handles queries with more than one detected intent. A
// confident two-intent query stays on one ticket; anything messier goes
// to triage with one ticket per intent.
func (rt *Router) routeMultiIntent(r classify.ClassificationResult) RoutingDecision {
	if len(r.AdditionalCategories) == 1 && r.Confidence >= confidentMultiIntent {
		return RoutingDecision{
			Destination:   DestTier2Support,
			Action:        ActionSingleTicket,
			Priority:      r.Priority,
			EstimatedWait: "5-15 minutes",
			Reasoning:     "Two related intents, primary classification is confident",
			SpecialInstructions: fmt.Sprintf("Address both concerns in one response: %s and %s",
				r.Category, r.AdditionalCategories[0]),
		}
	}

	cats := append([]classify.SupportCategory{r.Category}, r.AdditionalCategories...)
	var plan string
	for _, cat := range cats {
		plan += "\n• " + string(cat)
	}
	return RoutingDecision{
		Destination:         DestMultiIntentTriage,
		Action:              ActionSplitTickets,
		Priority:            classify.PriorityHigh,
		EstimatedWait:       "Immediate triage",
		Reasoning:           fmt.Sprintf("%d distinct intents need separate tickets", len(cats)),
		RequiresSplit:       true,
		SplitCategories:     cats,
		SpecialInstructions: "Open one ticket per intent:" + plan,
	}
}

// routeByCategory applies the per-category default queue, promoting the
// action for high and critical priority.
func (rt *Router) routeByCategory(r classify.ClassificationResult) RoutingDecision {
	route, ok := categoryRoutes[r.Category]
	if !ok {
		route = fallbackRoute
	}

	action := ActionQueueNormal
	if r.Priority == classify.PriorityCritical || r.Priority == classify.PriorityHigh {
		action = ActionQueuePriority
	}

	return RoutingDecision{
		Destination:   route.Destination,
		Action:        action,
		Priority:      r.Priority,
		EstimatedWait: route.EstimatedWait,
		Reasoning:     fmt.Sprintf("Routed by category: %s", r.Category),
	}
}
