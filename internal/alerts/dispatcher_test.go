package alerts

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TuniLagunero/phirst-bot/internal/leads"
	"github.com/TuniLagunero/phirst-bot/pkg/logging"
)

type recordingNotifier struct {
	messages []string
	err      error
}

func (n *recordingNotifier) Notify(ctx context.Context, message string) error {
	n.messages = append(n.messages, message)
	return n.err
}

func TestPhoneCapturedDispatchesAndStampsLead(t *testing.T) {
	notifier := &recordingNotifier{}
	d := NewDispatcher(notifier, 30*time.Minute, logging.Default())
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	d.SetClock(func() time.Time { return base })

	lead := &leads.Lead{PSID: "psid-1", FullName: "Juan Dela Cruz", Status: leads.StatusHot}
	sent := d.PhoneCaptured(context.Background(), lead, IntentReservation, "Calista End", "09171234567")

	assert.True(t, sent)
	require.Len(t, notifier.messages, 1)
	assert.Contains(t, notifier.messages[0], "RESERVATION")
	assert.Contains(t, notifier.messages[0], "09171234567")
	assert.Contains(t, notifier.messages[0], "Calista End")
	require.NotNil(t, lead.LastAlertSent)
	assert.Equal(t, base, *lead.LastAlertSent)
}

func TestPhoneCapturedSuppressedWithinCooldown(t *testing.T) {
	notifier := &recordingNotifier{}
	d := NewDispatcher(notifier, 30*time.Minute, logging.Default())
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	d.SetClock(func() time.Time { return base })

	lead := &leads.Lead{PSID: "psid-1", Status: leads.StatusHot}
	require.True(t, d.PhoneCaptured(context.Background(), lead, IntentReservation, "", "09171234567"))

	// 10 minutes later: suppressed.
	d.SetClock(func() time.Time { return base.Add(10 * time.Minute) })
	assert.False(t, d.PhoneCaptured(context.Background(), lead, IntentReservation, "", "09171234567"))
	assert.Len(t, notifier.messages, 1)

	// Past the window: dispatched again.
	d.SetClock(func() time.Time { return base.Add(31 * time.Minute) })
	assert.True(t, d.PhoneCaptured(context.Background(), lead, IntentReservation, "", "09171234567"))
	assert.Len(t, notifier.messages, 2)
}

func TestAgentRequestedNotGated(t *testing.T) {
	notifier := &recordingNotifier{}
	d := NewDispatcher(notifier, 30*time.Minute, logging.Default())
	now := time.Now().UTC()
	lead := &leads.Lead{PSID: "psid-1", FullName: "Ana", LastAlertSent: &now}

	d.AgentRequested(context.Background(), lead, "User clicked 'Talk to Agent' in the menu.")
	d.AgentRequested(context.Background(), lead, "User clicked 'Talk to Agent' in the menu.")
	assert.Len(t, notifier.messages, 2)
}

func TestIntentFor(t *testing.T) {
	assert.Equal(t, IntentReservation, IntentFor(leads.StatusHot))
	assert.Equal(t, IntentTripping, IntentFor(leads.StatusWarm))
	assert.Equal(t, IntentTripping, IntentFor(leads.StatusCold))
}

func TestTelegramNotifierPostsSendMessage(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	n := NewTelegramNotifier("bot-token", "chat-1", time.Second, WithTelegramBaseURL(srv.URL))
	require.NoError(t, n.Notify(context.Background(), "hello"))
	assert.Equal(t, "/botbot-token/sendMessage", gotPath)
}

func TestTelegramNotifierUnconfigured(t *testing.T) {
	n := NewTelegramNotifier("", "", time.Second)
	assert.Error(t, n.Notify(context.Background(), "hello"))
}
