// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package router turns classification results into routing decisions:
// which support destination handles a query, with what action and
// expected wait.
package router

import (
	"github.com/jeranaias/supportq/internal/classify"
)

// =============================================================================
// DESTINATIONS AND ACTIONS
// =============================================================================

// Destination identifies a support queue or team.
type Destination string

const (
	DestEscalationTeam      Destination = "escalation_team"
	DestMultiIntentTriage   Destination = "multi_intent_triage"
	DestTier1Support        Destination = "tier_1_support"
	DestTier2Support        Destination = "tier_2_support"
	DestSpecialistBilling   Destination = "specialist_billing"
	DestSpecialistTechnical Destination = "specialist_technical"
	DestAutoResponse        Destination = "auto_response"
)

// Action tells the ticketing system what to do with the query.
type Action string

const (
	ActionEscalateImmediately Action = "escalate_immediately"
	ActionSplitTickets        Action = "split_tickets"
	ActionSingleTicket        Action = "single_ticket"
	ActionQueuePriority       Action = "queue_priority"
	ActionQueueNormal         Action = "queue_normal"
)

// =============================================================================
// ROUTING DECISION
// =============================================================================

// RoutingDecision is where and how a classified query gets handled.
type RoutingDecision struct {
	Destination   Destination `json:"destination"`
	Action        Action      `json:"action"`
	Priority      string      `json:"priority"`
	EstimatedWait string      `json:"estimated_wait"`
	Reasoning     string      `json:"reasoning,omitempty"`

	// RequiresSplit is true when the query must become multiple tickets.
	// SplitCategories then lists every intent needing its own ticket,
	// primary first.
	RequiresSplit   bool                       `json:"requires_split"`
	SplitCategories []classify.SupportCategory `json:"split_categories,omitempty"`

	// SpecialInstructions carries agent-facing handling notes.
	SpecialInstructions string `json:"special_instructions,omitempty"`
}

// categoryRoute is the default destination and wait for one category.
type categoryRoute struct {
	Destination   Destination
	EstimatedWait string
}

// categoryRoutes maps each category to its default queue. Waits are
// team-facing estimates surfaced to customers.
var categoryRoutes = map[classify.SupportCategory]categoryRoute{
	classify.CategoryBilling:   {DestSpecialistBilling, "10-20 minutes"},
	classify.CategoryTechnical: {DestSpecialistTechnical, "15-25 minutes"},
	classify.CategoryAccount:   {DestTier1Support, "5-10 minutes"},
	classify.CategoryFeature:   {DestTier2Support, "1-2 hours"},
	classify.CategoryBug:       {DestSpecialistTechnical, "20-30 minutes"},
	classify.CategoryProduct:   {DestTier1Support, "5-15 minutes"},
	classify.CategoryGeneral:   {DestAutoResponse, "Immediate"},
}

// fallbackRoute handles categories missing from the map.
var fallbackRoute = categoryRoute{DestTier1Support, "10-20 minutes"}
