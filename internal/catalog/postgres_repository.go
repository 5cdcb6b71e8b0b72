package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// PgxIface is the subset of pgxpool.Pool the repository uses; pgxmock
// satisfies it in tests.
type PgxIface interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository reads the catalog from the relational database.
type PostgresRepository struct {
	pool PgxIface
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool PgxIface) *PostgresRepository {
	if pool == nil {
		panic("catalog: pgx pool required")
	}
	return &PostgresRepository{pool: pool}
}

const houseColumns = `
	id, name, description, image_url, details_link,
	total_contract_price, reservation_fee, downpayment_percent,
	pagibig_downpayment_percent, loan_term_years, interest_rate,
	bank_interest_rate, cash_discount_percent, is_active, location,
	dressed_images, turnover_images, gallery_link, video_link, created_at
`

func scanHouse(row pgx.Row) (*House, error) {
	var h House
	if err := row.Scan(
		&h.ID,
		&h.Name,
		&h.Description,
		&h.ImageURL,
		&h.DetailsLink,
		&h.TotalContractPrice,
		&h.ReservationFee,
		&h.BankDownpaymentPercent,
		&h.PagibigDownpaymentPct,
		&h.LoanTermYears,
		&h.InterestRate,
		&h.BankInterestRate,
		&h.CashDiscountPercent,
		&h.IsActive,
		&h.Location,
		&h.DressedImages,
		&h.TurnoverImages,
		&h.GalleryLink,
		&h.VideoLink,
		&h.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &h, nil
}

// GetHouse fetches one house by id.
func (r *PostgresRepository) GetHouse(ctx context.Context, id int64) (*House, error) {
	query := `SELECT ` + houseColumns + ` FROM houses WHERE id = $1`
	h, err := scanHouse(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrHouseNotFound
		}
		return nil, fmt.Errorf("catalog: select house: %w", err)
	}
	return h, nil
}

// ActiveHouses lists active houses, optionally filtered by location substring.
func (r *PostgresRepository) ActiveHouses(ctx context.Context, location string, limit int) ([]House, error) {
	if limit <= 0 {
		limit = 10
	}
	query := `
		SELECT ` + houseColumns + `
		FROM houses
		WHERE is_active AND ($1 = '' OR location ILIKE '%' || $1 || '%')
		ORDER BY id
		LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, location, limit)
	if err != nil {
		return nil, fmt.Errorf("catalog: list houses: %w", err)
	}
	defer rows.Close()

	var houses []House
	for rows.Next() {
		h, err := scanHouse(rows)
		if err != nil {
			return nil, fmt.Errorf("catalog: scan house: %w", err)
		}
		houses = append(houses, *h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("catalog: list houses: %w", err)
	}
	return houses, nil
}

// ActivePromo returns the applicable promo with the lowest id, or
// ErrNoActivePromo. The promo window is inclusive by calendar day, so the
// timestamp is truncated before it hits the range comparison; a promo whose
// end_date sits at midnight still applies for the whole of its final day.
func (r *PostgresRepository) ActivePromo(ctx context.Context, houseID int64, on time.Time) (*Promo, error) {
	on = on.UTC().Truncate(24 * time.Hour)
	query := `
		SELECT p.id, p.name, p.description, p.discount_amount, p.start_date, p.end_date, p.is_active
		FROM promos p
		JOIN promo_houses ph ON ph.promo_id = p.id
		WHERE ph.house_id = $1
		  AND p.is_active
		  AND p.start_date <= $2
		  AND p.end_date >= $2
		ORDER BY p.id
		LIMIT 1
	`
	var p Promo
	if err := r.pool.QueryRow(ctx, query, houseID, on).Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.DiscountAmount,
		&p.StartDate,
		&p.EndDate,
		&p.IsActive,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoActivePromo
		}
		return nil, fmt.Errorf("catalog: select promo: %w", err)
	}
	return &p, nil
}
