package alerts

import (
	"context"
	"fmt"
	"time"

	"github.com/TuniLagunero/phirst-bot/internal/leads"
	"github.com/TuniLagunero/phirst-bot/pkg/logging"
)

// Intent labels what the captured lead wants from the agent.
type Intent string

const (
	IntentReservation Intent = "RESERVATION"
	IntentTripping    Intent = "TRIPPING"
)

// IntentFor maps the lead tier to the alert framing: HOT means reservation,
// everything else a tripping request.
func IntentFor(status leads.Status) Intent {
	if status == leads.StatusHot {
		return IntentReservation
	}
	return IntentTripping
}

// Dispatcher sends operator alerts, suppressing duplicate phone-captured
// alerts inside the cooldown window.
type Dispatcher struct {
	notifier Notifier
	cooldown time.Duration
	logger   *logging.Logger
	now      func() time.Time
}

// NewDispatcher builds a dispatcher. A nil notifier disables delivery but
// keeps the cooldown bookkeeping intact.
func NewDispatcher(notifier Notifier, cooldown time.Duration, logger *logging.Logger) *Dispatcher {
	if cooldown <= 0 {
		cooldown = 30 * time.Minute
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Dispatcher{
		notifier: notifier,
		cooldown: cooldown,
		logger:   logger,
		now:      time.Now,
	}
}

// SetClock overrides the time source in tests.
func (d *Dispatcher) SetClock(now func() time.Time) {
	d.now = now
}

// PhoneCaptured alerts the operator that a lead left a contact number.
// Suppressed when the lead was already alerted within the cooldown window.
// On dispatch the lead's LastAlertSent is set; the caller persists it.
// Returns whether an alert was dispatched.
func (d *Dispatcher) PhoneCaptured(ctx context.Context, lead *leads.Lead, intent Intent, houseName, phone string) bool {
	now := d.now().UTC()
	if lead.LastAlertSent != nil && now.Sub(*lead.LastAlertSent) < d.cooldown {
		d.logger.Info("suppressing duplicate lead alert",
			"psid", lead.PSID,
			"last_alert_sent", lead.LastAlertSent,
		)
		return false
	}
	if houseName == "" {
		houseName = "N/A"
	}
	msg := fmt.Sprintf("🔥 *HOT LEAD: %s*\n👤 Name: %s\n📞 Phone: `%s`\n🏠 Unit: %s",
		intent, lead.FullName, phone, houseName)
	d.deliver(ctx, msg)
	lead.LastAlertSent = &now
	return true
}

// AgentRequested alerts the operator that a user asked for a human. Never
// cooldown-gated.
func (d *Dispatcher) AgentRequested(ctx context.Context, lead *leads.Lead, action string) {
	msg := fmt.Sprintf("🙋 *AGENT REQUESTED*\n👤 Name: %s\n📍 Action: %s", lead.FullName, action)
	d.deliver(ctx, msg)
}

// deliver sends best-effort: failures are logged, never retried in the
// request path, never surfaced to the end user.
func (d *Dispatcher) deliver(ctx context.Context, message string) {
	if d.notifier == nil {
		return
	}
	if err := d.notifier.Notify(ctx, message); err != nil {
		d.logger.Error("failed to deliver operator alert", "error", err)
	}
}
