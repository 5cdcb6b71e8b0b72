package leads

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// PgxIface is the pgxpool subset the repository uses; pgxmock satisfies it.
type PgxIface interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresRepository stores leads in the relational database.
type PostgresRepository struct {
	pool PgxIface
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool PgxIface) *PostgresRepository {
	if pool == nil {
		panic("leads: pgx pool required")
	}
	return &PostgresRepository{pool: pool}
}

const leadColumns = `
	id, psid, full_name, phone_number, status, current_step,
	interested_house_id, financing_type, budget_range, location_pref,
	timeline, last_alert_sent, created_at
`

func scanLead(row pgx.Row) (*Lead, error) {
	var lead Lead
	if err := row.Scan(
		&lead.ID,
		&lead.PSID,
		&lead.FullName,
		&lead.PhoneNumber,
		&lead.Status,
		&lead.CurrentStep,
		&lead.InterestedHouseID,
		&lead.FinancingType,
		&lead.BudgetRange,
		&lead.LocationPref,
		&lead.Timeline,
		&lead.LastAlertSent,
		&lead.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &lead, nil
}

// GetOrCreateByPSID upserts a default record for the subscriber id and
// returns the current row in one round trip.
func (r *PostgresRepository) GetOrCreateByPSID(ctx context.Context, psid string) (*Lead, error) {
	psid = strings.TrimSpace(psid)
	if psid == "" {
		return nil, ErrMissingPSID
	}
	query := `
		INSERT INTO leads (psid, status, current_step)
		VALUES ($1, 'COLD', 'START')
		ON CONFLICT (psid) DO UPDATE SET psid = EXCLUDED.psid
		RETURNING ` + leadColumns
	lead, err := scanLead(r.pool.QueryRow(ctx, query, psid))
	if err != nil {
		return nil, fmt.Errorf("leads: get or create: %w", err)
	}
	return lead, nil
}

// Update persists the mutable funnel fields. Last write wins.
func (r *PostgresRepository) Update(ctx context.Context, lead *Lead) error {
	query := `
		UPDATE leads SET
			full_name = $2,
			phone_number = $3,
			status = $4,
			current_step = $5,
			interested_house_id = $6,
			financing_type = $7,
			budget_range = $8,
			location_pref = $9,
			timeline = $10,
			last_alert_sent = $11
		WHERE psid = $1
	`
	tag, err := r.pool.Exec(ctx, query,
		lead.PSID,
		lead.FullName,
		lead.PhoneNumber,
		lead.Status,
		lead.CurrentStep,
		lead.InterestedHouseID,
		lead.FinancingType,
		lead.BudgetRange,
		lead.LocationPref,
		lead.Timeline,
		lead.LastAlertSent,
	)
	if err != nil {
		return fmt.Errorf("leads: update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrLeadNotFound
	}
	return nil
}

// List returns leads most recent first.
func (r *PostgresRepository) List(ctx context.Context, limit int) ([]Lead, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT ` + leadColumns + ` FROM leads ORDER BY created_at DESC LIMIT $1`
	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("leads: list: %w", err)
	}
	defer rows.Close()

	var out []Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				break
			}
			return nil, fmt.Errorf("leads: scan: %w", err)
		}
		out = append(out, *lead)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("leads: list: %w", err)
	}
	return out, nil
}
