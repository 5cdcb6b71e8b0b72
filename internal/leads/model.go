package leads

import "time"

// Status is the lead-intent tier driving escalation urgency.
type Status string

const (
	StatusCold Status = "COLD"
	StatusWarm Status = "WARM"
	StatusHot  Status = "HOT"
)

// Escalated reports whether a human agent should own this conversation.
func (s Status) Escalated() bool {
	return s == StatusWarm || s == StatusHot
}

// Step is the funnel position driving which inputs are expected next.
type Step string

const (
	StepStart          Step = "START"
	StepAskedBudget    Step = "ASKED_BUDGET"
	StepAskedLocation  Step = "ASKED_LOCATION"
	StepAskedFinancing Step = "ASKED_FINANCING"
	StepAskedTimeline  Step = "ASKED_TIMELINE"
	StepAskedPhone     Step = "ASKED_PHONE"
	StepCompleted      Step = "COMPLETED"
)

// MidFunnel reports whether the step expects a quick-reply tap.
func (s Step) MidFunnel() bool {
	switch s {
	case StepAskedBudget, StepAskedFinancing, StepAskedTimeline:
		return true
	}
	return false
}

// FinancingType is the buyer's declared financing route.
type FinancingType string

const (
	FinancingBank    FinancingType = "BANK"
	FinancingCash    FinancingType = "CASH"
	FinancingPagibig FinancingType = "PAGIBIG"
)

// Lead is one tracked prospective-buyer conversation, keyed by the
// platform-assigned subscriber id (PSID).
type Lead struct {
	ID                int64         `json:"id"`
	PSID              string        `json:"psid"`
	FullName          string        `json:"full_name,omitempty"`
	PhoneNumber       string        `json:"phone_number,omitempty"`
	Status            Status        `json:"status"`
	CurrentStep       Step          `json:"current_step"`
	InterestedHouseID *int64        `json:"interested_house_id,omitempty"`
	FinancingType     FinancingType `json:"financing_type,omitempty"`
	BudgetRange       string        `json:"budget_range,omitempty"`
	LocationPref      string        `json:"location_pref,omitempty"`
	Timeline          string        `json:"timeline,omitempty"`
	LastAlertSent     *time.Time    `json:"last_alert_sent,omitempty"`
	CreatedAt         time.Time     `json:"created_at"`
}

// FirstName returns the leading token of the stored name, or "there".
func (l *Lead) FirstName() string {
	name := l.FullName
	for i := 0; i < len(name); i++ {
		if name[i] == ' ' {
			name = name[:i]
			break
		}
	}
	if name == "" {
		return "there"
	}
	return name
}
