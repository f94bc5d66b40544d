// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"showings_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Leads Domain Events
// =============================================================================

// LeadsImported is published when a batch of leads is inserted from an upload.
type LeadsImported struct {
	BaseEvent
	Count int `json:"count"`
}

func (e LeadsImported) EventName() string { return "leads.imported" }

// LeadUpdated is published whenever a lead's status, outcome, or call id
// changes. The dashboard feed relays these to connected clients.
type LeadUpdated struct {
	BaseEvent
	LeadID uuid.UUID `json:"leadId"`
	Phone  string    `json:"phone"`
	Status string    `json:"status"`
	Reason string    `json:"reason,omitempty"`
}

func (e LeadUpdated) EventName() string { return "leads.updated" }

// =============================================================================
// Campaign Domain Events
// =============================================================================

// CallDispatched is published when the gateway accepts a call for a lead.
type CallDispatched struct {
	BaseEvent
	LeadID uuid.UUID `json:"leadId"`
	Phone  string    `json:"phone"`
	CallID string    `json:"callId"`
}

func (e CallDispatched) EventName() string { return "campaign.call.dispatched" }

// =============================================================================
// Webhook Domain Events
// =============================================================================

// CallCompleted is published when a call-ended webhook is reconciled
// against a lead.
type CallCompleted struct {
	BaseEvent
	LeadID    uuid.UUID `json:"leadId"`
	Phone     string    `json:"phone"`
	CallID    string    `json:"callId,omitempty"`
	Status    string    `json:"status"`
	Confirmed bool      `json:"confirmed"`
}

func (e CallCompleted) EventName() string { return "webhook.call.completed" }
