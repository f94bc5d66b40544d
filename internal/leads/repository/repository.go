// Package repository persists leads in PostgreSQL.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"showings_backend/internal/leads/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("lead not found")

const leadColumns = `id, name, phone, preferred_time, showing_address, email, budget_range,
	property_type, status, showing_date, reason, call_id, dispatch_attempts, created_at, updated_at`

type Lead struct {
	ID               uuid.UUID
	Name             string
	Phone            string
	PreferredTime    string
	ShowingAddress   string
	Email            *string
	BudgetRange      *string
	PropertyType     *string
	Status           domain.Status
	ShowingDate      *string
	Reason           *string
	CallID           *string
	DispatchAttempts int
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

type CreateLeadParams struct {
	Name           string
	Phone          string
	PreferredTime  string
	ShowingAddress string
	Email          *string
	BudgetRange    *string
	PropertyType   *string
}

// Outcome is the webhook-reported result of a call, applied as a full
// overwrite so redelivered events stay idempotent.
type Outcome struct {
	Status      domain.Status
	ShowingDate *string
	Reason      *string
}

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// InsertBatch inserts all leads in one transaction. Either every row is
// inserted or none are.
func (r *Repository) InsertBatch(ctx context.Context, params []CreateLeadParams) ([]Lead, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin insert batch: %w", err)
	}
	defer tx.Rollback(ctx)

	leads := make([]Lead, 0, len(params))
	for _, p := range params {
		var lead Lead
		err := tx.QueryRow(ctx, `
			INSERT INTO leads (name, phone, preferred_time, showing_address, email, budget_range, property_type)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING `+leadColumns,
			p.Name, p.Phone, p.PreferredTime, p.ShowingAddress, p.Email, p.BudgetRange, p.PropertyType,
		).Scan(scanTargets(&lead)...)
		if err != nil {
			return nil, fmt.Errorf("insert lead %q: %w", p.Name, err)
		}
		leads = append(leads, lead)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit insert batch: %w", err)
	}
	return leads, nil
}

// List returns every lead, newest first.
func (r *Repository) List(ctx context.Context) ([]Lead, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+leadColumns+`
		FROM leads
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	leads := make([]Lead, 0)
	for rows.Next() {
		var lead Lead
		if err := rows.Scan(scanTargets(&lead)...); err != nil {
			return nil, err
		}
		leads = append(leads, lead)
	}
	return leads, rows.Err()
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Lead, error) {
	return r.getOne(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = $1`, id)
}

// GetByCallID finds the lead owning a gateway call id.
func (r *Repository) GetByCallID(ctx context.Context, callID string) (Lead, error) {
	return r.getOne(ctx, `SELECT `+leadColumns+` FROM leads WHERE call_id = $1`, callID)
}

// GetByPhoneDigits finds a lead whose stored phone, stripped to digits,
// matches the given digit string. The most recent match wins when the same
// number was imported more than once.
func (r *Repository) GetByPhoneDigits(ctx context.Context, digits string) (Lead, error) {
	return r.getOne(ctx, `
		SELECT `+leadColumns+`
		FROM leads
		WHERE regexp_replace(phone, '\D', '', 'g') = $1
		ORDER BY created_at DESC
		LIMIT 1
	`, digits)
}

func (r *Repository) getOne(ctx context.Context, query string, arg any) (Lead, error) {
	var lead Lead
	err := r.pool.QueryRow(ctx, query, arg).Scan(scanTargets(&lead)...)
	if errors.Is(err, pgx.ErrNoRows) {
		return Lead{}, ErrNotFound
	}
	if err != nil {
		return Lead{}, err
	}
	return lead, nil
}

// MarkDispatched records an accepted call: the lead moves to in-progress,
// keeps the gateway call id for reconciliation, and its attempt counter
// goes up by one.
func (r *Repository) MarkDispatched(ctx context.Context, id uuid.UUID, callID string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE leads
		SET status = $2, call_id = $3, dispatch_attempts = dispatch_attempts + 1, updated_at = now()
		WHERE id = $1
	`, id, domain.StatusInProgress, callID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// RecordDispatchFailure counts a rejected dispatch attempt without changing
// the lead's status, so the retry cap still applies to leads the gateway
// keeps refusing.
func (r *Repository) RecordDispatchFailure(ctx context.Context, id uuid.UUID, reason string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE leads
		SET reason = $2, dispatch_attempts = dispatch_attempts + 1, updated_at = now()
		WHERE id = $1
	`, id, reason)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ApplyOutcome overwrites the call outcome fields on a lead. Webhook
// redeliveries write the same values again, which keeps the update
// idempotent.
func (r *Repository) ApplyOutcome(ctx context.Context, id uuid.UUID, outcome Outcome) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE leads
		SET status = $2, showing_date = $3, reason = $4, updated_at = now()
		WHERE id = $1
	`, id, outcome.Status, outcome.ShowingDate, outcome.Reason)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanTargets(lead *Lead) []any {
	return []any{
		&lead.ID, &lead.Name, &lead.Phone, &lead.PreferredTime, &lead.ShowingAddress,
		&lead.Email, &lead.BudgetRange, &lead.PropertyType, &lead.Status,
		&lead.ShowingDate, &lead.Reason, &lead.CallID, &lead.DispatchAttempts,
		&lead.CreatedAt, &lead.UpdatedAt,
	}
}
