package catalog

import (
	"time"

	"github.com/TuniLagunero/phirst-bot/internal/finance"
)

// House is a sellable unit. Read-only to the bot; managed by the back office.
type House struct {
	ID                     int64     `json:"id"`
	Name                   string    `json:"name"`
	Description            string    `json:"description"`
	ImageURL               string    `json:"image_url"`
	DetailsLink            string    `json:"details_link"`
	TotalContractPrice     float64   `json:"total_contract_price"`
	ReservationFee         float64   `json:"reservation_fee"`
	BankDownpaymentPercent float64   `json:"downpayment_percent"`
	PagibigDownpaymentPct  float64   `json:"pagibig_downpayment_percent"`
	LoanTermYears          int       `json:"loan_term_years"`
	InterestRate           float64   `json:"interest_rate"`
	BankInterestRate       float64   `json:"bank_interest_rate"`
	CashDiscountPercent    float64   `json:"cash_discount_percent"`
	IsActive               bool      `json:"is_active"`
	Location               string    `json:"location"`
	DressedImages          []string  `json:"dressed_images,omitempty"`
	TurnoverImages         []string  `json:"turnover_images,omitempty"`
	GalleryLink            string    `json:"gallery_link,omitempty"`
	VideoLink              string    `json:"video_link,omitempty"`
	CreatedAt              time.Time `json:"created_at"`
}

// Pricing adapts the house to the calculator's input slice.
func (h *House) Pricing() finance.House {
	return finance.House{
		TotalContractPrice:     h.TotalContractPrice,
		ReservationFee:         h.ReservationFee,
		BankDownpaymentPercent: h.BankDownpaymentPercent,
		PagibigDownpaymentPct:  h.PagibigDownpaymentPct,
		InterestRate:           h.InterestRate,
		BankInterestRate:       h.BankInterestRate,
		CashDiscountPercent:    h.CashDiscountPercent,
	}
}

// Promo is a flat discount applicable to a set of houses within a date range.
type Promo struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	DiscountAmount float64   `json:"discount_amount"`
	StartDate      time.Time `json:"start_date"`
	EndDate        time.Time `json:"end_date"`
	IsActive       bool      `json:"is_active"`
}

// AppliesOn reports whether the promo covers the given date (inclusive range).
func (p *Promo) AppliesOn(on time.Time) bool {
	day := on.Truncate(24 * time.Hour)
	return p.IsActive && !day.Before(p.StartDate.Truncate(24*time.Hour)) && !day.After(p.EndDate.Truncate(24*time.Hour))
}
