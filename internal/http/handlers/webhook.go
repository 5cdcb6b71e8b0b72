package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/TuniLagunero/phirst-bot/internal/messenger"
	"github.com/TuniLagunero/phirst-bot/internal/observability/metrics"
	"github.com/TuniLagunero/phirst-bot/pkg/logging"
)

const dedupProvider = "messenger"

// EventProcessor consumes verified, deduplicated webhook events.
type EventProcessor interface {
	HandleMessaging(ctx context.Context, evt *messenger.MessagingEvent) error
	HandleComment(ctx context.Context, change *messenger.Change) error
}

// ProcessedTracker guards against platform redeliveries. A nil tracker
// disables deduplication.
type ProcessedTracker interface {
	MarkProcessed(ctx context.Context, provider, eventID string) (bool, error)
}

// WebhookHandler terminates the Messenger webhook: GET for subscription
// verification, POST for signed event batches.
type WebhookHandler struct {
	appSecret   string
	verifyToken string
	processor   EventProcessor
	processed   ProcessedTracker
	metrics     *metrics.WebhookMetrics
	logger      *logging.Logger
}

func NewWebhookHandler(appSecret, verifyToken string, processor EventProcessor, processed ProcessedTracker, m *metrics.WebhookMetrics, logger *logging.Logger) *WebhookHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &WebhookHandler{
		appSecret:   strings.TrimSpace(appSecret),
		verifyToken: strings.TrimSpace(verifyToken),
		processor:   processor,
		processed:   processed,
		metrics:     m,
		logger:      logger,
	}
}

// HandleVerify answers Meta's one-time GET subscription handshake.
func (h *WebhookHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("hub.mode") == "subscribe" && q.Get("hub.verify_token") == h.verifyToken && h.verifyToken != "" {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(q.Get("hub.challenge")))
		return
	}
	h.logger.Warn("webhook verification rejected", "mode", q.Get("hub.mode"))
	http.Error(w, "verification failed", http.StatusForbidden)
}

// HandleEvent receives one signed batch of webhook events. Anything past
// signature and JSON validation is acknowledged with 200 regardless of
// processing outcome, so Meta does not retry events we chose to skip.
func (h *WebhookHandler) HandleEvent(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if !messenger.VerifySignature(h.appSecret, payload, r.Header.Get(messenger.SignatureHeader)) {
		h.metrics.ObserveSignatureFailure()
		h.logger.Warn("invalid webhook signature", "remote_ip", r.RemoteAddr)
		http.Error(w, "invalid signature", http.StatusForbidden)
		return
	}

	var body messenger.WebhookPayload
	if err := json.Unmarshal(payload, &body); err != nil {
		http.Error(w, "invalid JSON payload", http.StatusBadRequest)
		return
	}

	if body.Object == "page" {
		for i := range body.Entry {
			h.processEntry(r.Context(), &body.Entry[i])
		}
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("EVENT_RECEIVED"))
}

func (h *WebhookHandler) processEntry(ctx context.Context, entry *messenger.Entry) {
	for i := range entry.Messaging {
		evt := &entry.Messaging[i]
		eventType := "message"
		if evt.Postback != nil {
			eventType = "postback"
		}
		if h.isDuplicate(ctx, evt.EventKey()) {
			h.metrics.ObserveEvent(eventType, "duplicate")
			continue
		}
		start := time.Now()
		if err := h.processor.HandleMessaging(ctx, evt); err != nil {
			h.metrics.ObserveEvent(eventType, "error")
			h.logger.Error("messaging event failed", "sender", evt.Sender.ID, "error", err)
			continue
		}
		h.metrics.ObserveEvent(eventType, "processed")
		h.metrics.ObserveLatency(eventType, time.Since(start).Seconds())
	}

	for i := range entry.Changes {
		change := &entry.Changes[i]
		if change.Field != "feed" {
			continue
		}
		if err := h.processor.HandleComment(ctx, change); err != nil {
			h.metrics.ObserveEvent("comment", "error")
			h.logger.Error("comment event failed", "comment_id", change.Value.CommentID, "error", err)
			continue
		}
		h.metrics.ObserveEvent("comment", "processed")
	}
}

// isDuplicate marks the event processed as a side effect; SetNX makes the
// check-and-mark atomic.
func (h *WebhookHandler) isDuplicate(ctx context.Context, eventKey string) bool {
	if h.processed == nil || eventKey == "" {
		return false
	}
	fresh, err := h.processed.MarkProcessed(ctx, dedupProvider, eventKey)
	if err != nil {
		// Dedup store trouble must not drop events.
		h.logger.Warn("processed-event check failed", "event_key", eventKey, "error", err)
		return false
	}
	return !fresh
}
