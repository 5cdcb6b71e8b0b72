package bot

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/TuniLagunero/phirst-bot/internal/catalog"
	"github.com/TuniLagunero/phirst-bot/internal/finance"
	"github.com/TuniLagunero/phirst-bot/internal/messenger"
)

// pesos formats an amount as ₱1,234,567.89.
func pesos(amount float64) string {
	neg := amount < 0
	if neg {
		amount = -amount
	}
	s := strconv.FormatFloat(amount, 'f', 2, 64)
	dot := strings.IndexByte(s, '.')
	intPart, frac := s[:dot], s[dot:]
	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	b.WriteRune('₱')
	for i, ch := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(ch)
	}
	b.WriteString(frac)
	return b.String()
}

func promoLine(promo *catalog.Promo) string {
	if promo == nil {
		return ""
	}
	return fmt.Sprintf("\n🎉 PROMO: %s (-%s)", promo.Name, pesos(promo.DiscountAmount))
}

func budgetOptions() []messenger.QuickReply {
	return []messenger.QuickReply{
		{Title: "2M-3M", Payload: "BUDGET_2_3"},
		{Title: "3M-4M", Payload: "BUDGET_3_4"},
		{Title: "4M+", Payload: "BUDGET_4_UP"},
	}
}

func financingOptions() []messenger.QuickReply {
	return []messenger.QuickReply{
		{Title: "Bank Financing", Payload: "FIN_BANK"},
		{Title: "Cash", Payload: "FIN_CASH"},
		{Title: "Pag-IBIG", Payload: "FIN_PAGIBIG"},
	}
}

func timelineOptions() []messenger.QuickReply {
	return []messenger.QuickReply{
		{Title: "ASAP", Payload: "TIME_ASAP"},
		{Title: "1-3 Months", Payload: "TIME_1_3"},
		{Title: "Just looking", Payload: "TIME_LOOKING"},
	}
}

func calcOptions(houseID int64) []messenger.QuickReply {
	id := strconv.FormatInt(houseID, 10)
	return []messenger.QuickReply{
		{Title: "Bank Financing 🏦", Payload: "CALC_BANK_" + id},
		{Title: "Pag-IBIG 🏠", Payload: "CALC_PAGIBIG_" + id},
		{Title: "Cash Payment 💵", Payload: "CALC_CASH_" + id},
	}
}

func budgetPromptText(firstName string) string {
	return fmt.Sprintf("Hi %s! 👋 Ano ang budget range mo?", firstName)
}

const (
	financingPromptText = "Anong financing plan ang balak mo?"
	timelinePromptText  = "Kailan mo balak kumuha ng unit?"

	attachmentNotice   = "Pasensya na, text at buttons lang ang kaya kong basahin. 😊 Type 'house' para sa models o 'start' para mag-simula."
	resetConfirmation  = "Bot has been reset. Type 'start' to begin."
	invalidPhonePrompt = "Pasensya na, please enter a valid 11-digit phone number (e.g., 09171234567) para ma-forward ko kay Jeric. 😊"
	tapOptionPrompt    = "Please tap one of the options above para magpatuloy."
	agentWaitMessage   = "Wait lang po, nililipat ko na ang chat kay Jeric. He will assist you shortly! 😊"
	systemErrorMessage = "System Error: Cannot find house details."
	listingHeader      = "Salamat! Narito ang mga available models:"
)

func phoneSavedMessage(intent string) string {
	return fmt.Sprintf("Salamat! Na-save ko na ang number mo. Tatawagan ka ni Jeric para sa iyong %s shortly. 😊", strings.ToLower(intent))
}

func reservePrompt(houseName string) string {
	return fmt.Sprintf("Great choice! Para sa %s, please provide your contact number para ma-assist ka ni Jeric sa reservation process.", houseName)
}

func trippingPrompt(houseName string) string {
	return fmt.Sprintf("Noted! Send your phone number para ma-confirm ang tripping schedule mo para sa %s.", houseName)
}

func askFinancingText(houseName string) string {
	return fmt.Sprintf("Para sa %s, anong financing plan ang gusto mong makita? 🏦", houseName)
}

func noUnitsMessage(location string) string {
	if location == "" {
		return "Pasensya na, wala kaming available units sa ngayon."
	}
	return fmt.Sprintf("Pasensya na, wala kaming available units sa %s sa ngayon.", location)
}

func renderBankPlan(houseName string, plan finance.Plan, promo *catalog.Promo) string {
	return fmt.Sprintf(
		"🏦 *BANK FINANCING COMPUTATION*\n"+
			"🏠 Unit: %s\n"+
			"──────────────────\n"+
			"💰 TCP: %s%s\n"+
			"✅ *NET TCP: %s*\n"+
			"──────────────────\n"+
			"📉 *DOWNPAYMENT (%d Mos):*\n"+
			"• Required DP (%.0f%%): %s\n"+
			"• Less Reservation: -%s\n"+
			"👉 *Monthly DP: %s* /mo\n"+
			"──────────────────\n"+
			"🏦 *EST. MONTHLY AMORTIZATION (%.1f%%):*\n"+
			"• 15 Years: %s\n"+
			"• 10 Years: %s\n"+
			"• 05 Years: %s\n\n"+
			"Note: Rates are subject to bank approval.",
		houseName,
		pesos(plan.GrossTCP), promoLine(promo),
		pesos(plan.NetTCP),
		plan.DPTermMonths,
		plan.DPPercent, pesos(plan.TotalDP),
		pesos(plan.ReservationFee),
		pesos(plan.MonthlyDP),
		plan.Rate,
		pesos(plan.Rows[0].Monthly),
		pesos(plan.Rows[1].Monthly),
		pesos(plan.Rows[2].Monthly),
	)
}

func renderPagibigPlan(houseName string, plan finance.Plan, promo *catalog.Promo) string {
	return fmt.Sprintf(
		"🏠 *PAG-IBIG COMPUTATION*\n"+
			"Model: %s\n"+
			"──────────────────\n"+
			"💰 TCP: %s%s\n"+
			"✅ *NET TCP: %s*\n"+
			"──────────────────\n"+
			"📉 *DOWNPAYMENT (%d Mos):*\n"+
			"• Required DP (%.0f%%): %s\n"+
			"• Less Reservation: -%s\n"+
			"👉 *Monthly DP: %s* /mo\n"+
			"──────────────────\n"+
			"🏠 *EST. MONTHLY AMORTIZATION (%.1f%%):*\n"+
			"• 30 Years: %s\n"+
			"• 20 Years: %s\n"+
			"• 10 Years: %s",
		houseName,
		pesos(plan.GrossTCP), promoLine(promo),
		pesos(plan.NetTCP),
		plan.DPTermMonths,
		plan.DPPercent, pesos(plan.TotalDP),
		pesos(plan.ReservationFee),
		pesos(plan.MonthlyDP),
		plan.Rate,
		pesos(plan.Rows[0].Monthly),
		pesos(plan.Rows[1].Monthly),
		pesos(plan.Rows[2].Monthly),
	)
}

func renderCashQuote(houseName string, quote finance.CashQuote) string {
	var promoText string
	if quote.PromoDiscount > 0 {
		promoText = fmt.Sprintf("\n🎉 Promo: -%s", pesos(quote.PromoDiscount))
	}
	return fmt.Sprintf(
		"💵 *CASH PAYMENT COMPUTATION*\n"+
			"🏠 Model: %s\n"+
			"──────────────────\n"+
			"💰 TCP: %s%s\n"+
			"✨ *Cash Discount (%.0f%%): -%s*\n"+
			"──────────────────\n"+
			"💎 *FINAL CASH PRICE: %s*\n"+
			"──────────────────\n"+
			"Note: Full payment is required within 30 days to avail this discount.",
		houseName,
		pesos(quote.GrossTCP), promoText,
		quote.DiscountPercent, pesos(quote.CashDiscount),
		pesos(quote.FinalPrice),
	)
}

func computationButtons(houseID int64) []messenger.Button {
	id := strconv.FormatInt(houseID, 10)
	return []messenger.Button{
		messenger.PostbackButton("Reserve Now 📝", "RESERVE_"+id),
		messenger.PostbackButton("Schedule Tripping 📅", "SCHEDULE_TRIPPING_"+id),
		messenger.PostbackButton("Back to Options 🔙", "COMPUTE_"+id),
	}
}

func houseElement(h catalog.House, estMonthly float64) messenger.Element {
	id := strconv.FormatInt(h.ID, 10)
	return messenger.Element{
		Title:    h.Name,
		ImageURL: h.ImageURL,
		Subtitle: fmt.Sprintf("%s | Starts at %s/mo", h.Description, pesos(estMonthly)),
		Buttons: []messenger.Button{
			messenger.PostbackButton("Computation 📊", "COMPUTE_"+id),
			messenger.PostbackButton("Schedule Tripping", "SCHEDULE_TRIPPING_"+id),
			messenger.LinkButton("View Details", h.DetailsLink),
		},
	}
}
