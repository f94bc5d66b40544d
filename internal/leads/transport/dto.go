// Package transport defines the JSON shapes of the leads API.
package transport

import (
	"time"

	"showings_backend/internal/leads/repository"
	"showings_backend/internal/leads/scoring"

	"github.com/google/uuid"
)

// LeadRow is one row of an uploaded CSV batch.
type LeadRow struct {
	Name           string  `json:"name" validate:"required,min=1,max=200"`
	Phone          string  `json:"phone" validate:"required,min=1,max=50"`
	PreferredTime  string  `json:"preferred_time" validate:"required,min=1,max=200"`
	ShowingAddress string  `json:"showing_address" validate:"required,min=1,max=500"`
	Email          *string `json:"email" validate:"omitempty,max=254"`
	BudgetRange    *string `json:"budget_range" validate:"omitempty,max=100"`
	PropertyType   *string `json:"property_type" validate:"omitempty,max=100"`
}

// ImportRequest is the body of a bulk lead upload.
type ImportRequest struct {
	Leads []LeadRow `json:"leads" validate:"required,min=1,dive"`
}

func (r ImportRequest) ToParams() []repository.CreateLeadParams {
	params := make([]repository.CreateLeadParams, 0, len(r.Leads))
	for _, row := range r.Leads {
		params = append(params, repository.CreateLeadParams{
			Name:           row.Name,
			Phone:          row.Phone,
			PreferredTime:  row.PreferredTime,
			ShowingAddress: row.ShowingAddress,
			Email:          row.Email,
			BudgetRange:    row.BudgetRange,
			PropertyType:   row.PropertyType,
		})
	}
	return params
}

// LeadResponse is the read model of a lead. Score and estimated value are
// computed here on every read rather than stored.
type LeadResponse struct {
	ID               uuid.UUID `json:"id"`
	Name             string    `json:"name"`
	Phone            string    `json:"phone"`
	PreferredTime    string    `json:"preferred_time"`
	ShowingAddress   string    `json:"showing_address"`
	Email            *string   `json:"email,omitempty"`
	BudgetRange      *string   `json:"budget_range,omitempty"`
	PropertyType     *string   `json:"property_type,omitempty"`
	Status           string    `json:"status"`
	ShowingDate      *string   `json:"showing_date,omitempty"`
	Reason           *string   `json:"reason,omitempty"`
	CallID           *string   `json:"callId,omitempty"`
	DispatchAttempts int       `json:"dispatch_attempts"`
	LeadScore        int       `json:"leadScore"`
	EstimatedValue   int       `json:"estimatedValue"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func FromLead(lead repository.Lead) LeadResponse {
	in := scoring.Input{PreferredTime: lead.PreferredTime}
	if lead.BudgetRange != nil {
		in.BudgetRange = *lead.BudgetRange
	}
	if lead.Email != nil {
		in.Email = *lead.Email
	}

	return LeadResponse{
		ID:               lead.ID,
		Name:             lead.Name,
		Phone:            lead.Phone,
		PreferredTime:    lead.PreferredTime,
		ShowingAddress:   lead.ShowingAddress,
		Email:            lead.Email,
		BudgetRange:      lead.BudgetRange,
		PropertyType:     lead.PropertyType,
		Status:           string(lead.Status),
		ShowingDate:      lead.ShowingDate,
		Reason:           lead.Reason,
		CallID:           lead.CallID,
		DispatchAttempts: lead.DispatchAttempts,
		LeadScore:        scoring.Score(in),
		EstimatedValue:   scoring.EstimateValue(in),
		CreatedAt:        lead.CreatedAt,
		UpdatedAt:        lead.UpdatedAt,
	}
}

func FromLeads(leads []repository.Lead) []LeadResponse {
	out := make([]LeadResponse, 0, len(leads))
	for _, lead := range leads {
		out = append(out, FromLead(lead))
	}
	return out
}
