// Package finance computes financing-plan breakdowns for house units.
// All functions are pure; promo and rate lookups happen in the caller.
package finance

import "math"

// Config carries the financing constants the calculator and funnel share.
// Defaults mirror the developer's standard terms.
type Config struct {
	BankRateDefault     float64
	PagibigRateDefault  float64
	BankDPTermMonths    int
	PagibigDPTermMonths int
}

// DefaultConfig returns the standard financing constants.
func DefaultConfig() Config {
	return Config{
		BankRateDefault:     8.0,
		PagibigRateDefault:  9.0,
		BankDPTermMonths:    12,
		PagibigDPTermMonths: 16,
	}
}

// House is the pricing slice of a catalog house the calculator needs.
type House struct {
	TotalContractPrice     float64
	ReservationFee         float64
	BankDownpaymentPercent float64
	PagibigDownpaymentPct  float64
	InterestRate           float64
	BankInterestRate       float64
	CashDiscountPercent    float64
}

// AmortRow is one term option in a financing plan.
type AmortRow struct {
	Years   int
	Monthly float64
}

// Plan is a financing breakdown rendered to the buyer.
type Plan struct {
	GrossTCP       float64
	PromoDiscount  float64
	NetTCP         float64
	DPPercent      float64
	TotalDP        float64
	ReservationFee float64
	DPTermMonths   int
	MonthlyDP      float64
	LoanAmount     float64
	Rate           float64
	Rows           []AmortRow
}

// CashQuote is the cash-payment breakdown.
type CashQuote struct {
	GrossTCP        float64
	PromoDiscount   float64
	PriceAfterPromo float64
	DiscountPercent float64
	CashDiscount    float64
	FinalPrice      float64
}

// MonthlyPayment returns the monthly amortization for a loan.
// A non-positive rate degenerates to a straight-line split.
func MonthlyPayment(principal, annualRatePercent float64, years int) float64 {
	n := float64(years * 12)
	if annualRatePercent <= 0 {
		return principal / n
	}
	r := annualRatePercent / 100 / 12
	pow := math.Pow(1+r, n)
	return principal * r * pow / (pow - 1)
}

// BankPlan builds the bank-financing breakdown: DP over 12 months less the
// reservation fee already paid, 90% of net TCP loanable at the bank rate.
func BankPlan(cfg Config, h House, promoDiscount float64) Plan {
	net := h.TotalContractPrice - promoDiscount
	dpPct := h.BankDownpaymentPercent / 100
	totalDP := net * dpPct
	months := cfg.BankDPTermMonths
	if months <= 0 {
		months = 12
	}
	rate := h.BankInterestRate
	if rate <= 0 {
		rate = cfg.BankRateDefault
	}
	loan := net * 0.90
	return Plan{
		GrossTCP:       h.TotalContractPrice,
		PromoDiscount:  promoDiscount,
		NetTCP:         net,
		DPPercent:      h.BankDownpaymentPercent,
		TotalDP:        totalDP,
		ReservationFee: h.ReservationFee,
		DPTermMonths:   months,
		MonthlyDP:      (totalDP - h.ReservationFee) / float64(months),
		LoanAmount:     loan,
		Rate:           rate,
		Rows: []AmortRow{
			{Years: 15, Monthly: MonthlyPayment(loan, rate, 15)},
			{Years: 10, Monthly: MonthlyPayment(loan, rate, 10)},
			{Years: 5, Monthly: MonthlyPayment(loan, rate, 5)},
		},
	}
}

// PagibigPlan builds the Pag-IBIG breakdown: DP over 16 months, the remainder
// of net TCP loanable at the generic rate.
func PagibigPlan(cfg Config, h House, promoDiscount float64) Plan {
	net := h.TotalContractPrice - promoDiscount
	dpPct := h.PagibigDownpaymentPct / 100
	totalDP := net * dpPct
	months := cfg.PagibigDPTermMonths
	if months <= 0 {
		months = 16
	}
	rate := h.InterestRate
	if rate <= 0 {
		rate = cfg.PagibigRateDefault
	}
	loan := net * (1 - dpPct)
	return Plan{
		GrossTCP:       h.TotalContractPrice,
		PromoDiscount:  promoDiscount,
		NetTCP:         net,
		DPPercent:      h.PagibigDownpaymentPct,
		TotalDP:        totalDP,
		ReservationFee: h.ReservationFee,
		DPTermMonths:   months,
		MonthlyDP:      (totalDP - h.ReservationFee) / float64(months),
		LoanAmount:     loan,
		Rate:           rate,
		Rows: []AmortRow{
			{Years: 30, Monthly: MonthlyPayment(loan, rate, 30)},
			{Years: 20, Monthly: MonthlyPayment(loan, rate, 20)},
			{Years: 10, Monthly: MonthlyPayment(loan, rate, 10)},
		},
	}
}

// CashPlanQuote applies the active promo first, then the house's cash
// discount on the promo-adjusted price.
func CashPlanQuote(h House, promoDiscount float64) CashQuote {
	afterPromo := h.TotalContractPrice - promoDiscount
	cashRate := h.CashDiscountPercent / 100
	discount := afterPromo * cashRate
	return CashQuote{
		GrossTCP:        h.TotalContractPrice,
		PromoDiscount:   promoDiscount,
		PriceAfterPromo: afterPromo,
		DiscountPercent: h.CashDiscountPercent,
		CashDiscount:    discount,
		FinalPrice:      afterPromo - discount,
	}
}

// EstimatedMonthly is the carousel teaser: 90% of net TCP at the bank rate
// over 15 years.
func EstimatedMonthly(cfg Config, h House, promoDiscount float64) float64 {
	rate := h.BankInterestRate
	if rate <= 0 {
		rate = cfg.BankRateDefault
	}
	loan := (h.TotalContractPrice - promoDiscount) * 0.90
	return MonthlyPayment(loan, rate, 15)
}
