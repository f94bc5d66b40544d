// Package transport defines the JSON shapes of the campaign API.
package transport

import (
	"showings_backend/internal/campaign/service"
	"showings_backend/internal/leads/domain"

	"github.com/google/uuid"
)

// BulkLead is one lead supplied inline with a bulk dispatch request.
// Dashboards that already hold the lead list send it back with ids so
// status updates land on the stored rows.
type BulkLead struct {
	ID             *uuid.UUID `json:"id"`
	Name           string     `json:"name"`
	Phone          string     `json:"phone"`
	PreferredTime  string     `json:"preferred_time"`
	ShowingAddress string     `json:"showing_address"`
	Status         string     `json:"status"`
	Attempts       int        `json:"dispatch_attempts"`
}

// CampaignSettings tune the calling assistant. They are forwarded, not
// interpreted: dispatch stays sequential regardless of maxConcurrentCalls.
type CampaignSettings struct {
	AgentPersonality   string `json:"agentPersonality" validate:"omitempty,max=200"`
	CallDelay          int    `json:"callDelay" validate:"omitempty,min=0"`
	MaxConcurrentCalls int    `json:"maxConcurrentCalls" validate:"omitempty,min=0"`
}

// BulkRequest starts a campaign. With no leads given, every stored lead is
// considered.
type BulkRequest struct {
	Leads    []BulkLead        `json:"leads" validate:"omitempty,dive"`
	Settings *CampaignSettings `json:"settings"`
}

func (r BulkRequest) ToCandidates() []service.Candidate {
	candidates := make([]service.Candidate, 0, len(r.Leads))
	for _, lead := range r.Leads {
		candidate := service.Candidate{
			Name:           lead.Name,
			Phone:          lead.Phone,
			PreferredTime:  lead.PreferredTime,
			ShowingAddress: lead.ShowingAddress,
			Status:         domain.Status(lead.Status),
			Attempts:       lead.Attempts,
		}
		if lead.ID != nil {
			candidate.ID = *lead.ID
		}
		candidates = append(candidates, candidate)
	}
	return candidates
}

func (r BulkRequest) ToSettings() service.Settings {
	if r.Settings == nil {
		return service.Settings{}
	}
	return service.Settings{
		AgentPersonality:   r.Settings.AgentPersonality,
		CallDelay:          r.Settings.CallDelay,
		MaxConcurrentCalls: r.Settings.MaxConcurrentCalls,
	}
}

// ShowingDetails describe the appointment a single call is about.
type ShowingDetails struct {
	Name    string `json:"name" validate:"required,min=1,max=200"`
	Address string `json:"address" validate:"required,min=1,max=500"`
	Date    string `json:"date" validate:"required,min=1,max=100"`
	Time    string `json:"time" validate:"required,min=1,max=100"`
}

// SingleCallRequest dispatches one call to a phone number.
type SingleCallRequest struct {
	PhoneNumber    string         `json:"phoneNumber" validate:"required,min=1,max=50"`
	AssistantID    string         `json:"assistantId" validate:"omitempty,max=100"`
	ShowingDetails ShowingDetails `json:"showingDetails" validate:"required"`
}

func (r SingleCallRequest) ToInput() service.SingleDispatch {
	return service.SingleDispatch{
		PhoneNumber: r.PhoneNumber,
		AssistantID: r.AssistantID,
		Details: service.ShowingDetails{
			Name:    r.ShowingDetails.Name,
			Address: r.ShowingDetails.Address,
			Date:    r.ShowingDetails.Date,
			Time:    r.ShowingDetails.Time,
		},
	}
}

// VapiConfigResponse exposes the browser-safe voice gateway settings.
type VapiConfigResponse struct {
	PublicKey   string `json:"publicKey"`
	AssistantID string `json:"assistantId"`
}
