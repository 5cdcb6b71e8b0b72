package handlers

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TuniLagunero/phirst-bot/internal/events"
	"github.com/TuniLagunero/phirst-bot/internal/messenger"
)

const testSecret = "shhh-app-secret"

type recordingProcessor struct {
	messaging []messenger.MessagingEvent
	comments  []messenger.Change
	err       error
}

func (p *recordingProcessor) HandleMessaging(_ context.Context, evt *messenger.MessagingEvent) error {
	p.messaging = append(p.messaging, *evt)
	return p.err
}

func (p *recordingProcessor) HandleComment(_ context.Context, change *messenger.Change) error {
	p.comments = append(p.comments, *change)
	return p.err
}

func signBody(t *testing.T, body []byte) string {
	t.Helper()
	mac := hmac.New(sha256.New, []byte(testSecret))
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

func loadFixture(t *testing.T, name string) []byte {
	t.Helper()
	body, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return body
}

func newTestHandler(t *testing.T) (*WebhookHandler, *recordingProcessor) {
	t.Helper()
	processor := &recordingProcessor{}
	srv := miniredis.RunT(t)
	store := events.NewProcessedStore(redis.NewClient(&redis.Options{Addr: srv.Addr()}), time.Hour)
	return NewWebhookHandler(testSecret, "verify-me", processor, store, nil, nil), processor
}

func postEvent(t *testing.T, h *WebhookHandler, body []byte, signature string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewReader(body))
	if signature != "" {
		req.Header.Set(messenger.SignatureHeader, signature)
	}
	rec := httptest.NewRecorder()
	h.HandleEvent(rec, req)
	return rec
}

func TestHandleVerifyEchoesChallenge(t *testing.T) {
	h, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/webhook?hub.mode=subscribe&hub.verify_token=verify-me&hub.challenge=42424242", nil)
	rec := httptest.NewRecorder()
	h.HandleVerify(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "42424242", rec.Body.String())
}

func TestHandleVerifyRejectsWrongToken(t *testing.T) {
	h, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/webhook?hub.mode=subscribe&hub.verify_token=wrong&hub.challenge=42", nil)
	rec := httptest.NewRecorder()
	h.HandleVerify(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestHandleEventDispatchesMessage(t *testing.T) {
	h, processor := newTestHandler(t)
	body := loadFixture(t, "message_event.json")

	rec := postEvent(t, h, body, signBody(t, body))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "EVENT_RECEIVED", rec.Body.String())
	require.Len(t, processor.messaging, 1)
	assert.Equal(t, "8231904420157755", processor.messaging[0].Sender.ID)
	assert.Equal(t, "hi", processor.messaging[0].Message.Text)
}

func TestHandleEventDispatchesComment(t *testing.T) {
	h, processor := newTestHandler(t)
	body := loadFixture(t, "comment_event.json")

	rec := postEvent(t, h, body, signBody(t, body))

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, processor.comments, 1)
	assert.Equal(t, "How much po?", processor.comments[0].Value.Message)
}

func TestHandleEventRejectsBadSignature(t *testing.T) {
	h, processor := newTestHandler(t)
	body := loadFixture(t, "message_event.json")

	rec := postEvent(t, h, body, "sha256="+hex.EncodeToString(bytes.Repeat([]byte{0xab}, 32)))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, processor.messaging)
}

func TestHandleEventRejectsMissingSignature(t *testing.T) {
	h, processor := newTestHandler(t)
	body := loadFixture(t, "message_event.json")

	rec := postEvent(t, h, body, "")

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, processor.messaging)
}

func TestHandleEventRejectsMalformedJSON(t *testing.T) {
	h, _ := newTestHandler(t)
	body := []byte("{not json")

	rec := postEvent(t, h, body, signBody(t, body))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleEventIgnoresNonPageObjects(t *testing.T) {
	h, processor := newTestHandler(t)
	body := []byte(`{"object":"instagram","entry":[]}`)

	rec := postEvent(t, h, body, signBody(t, body))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, processor.messaging)
}

func TestHandleEventDeduplicatesRedelivery(t *testing.T) {
	h, processor := newTestHandler(t)
	body := loadFixture(t, "message_event.json")
	sig := signBody(t, body)

	rec := postEvent(t, h, body, sig)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = postEvent(t, h, body, sig)
	assert.Equal(t, http.StatusOK, rec.Code)

	assert.Len(t, processor.messaging, 1)
}

func TestHandleEventAcksDespiteProcessorError(t *testing.T) {
	h, processor := newTestHandler(t)
	processor.err = assert.AnError
	body := loadFixture(t, "message_event.json")

	rec := postEvent(t, h, body, signBody(t, body))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "EVENT_RECEIVED", rec.Body.String())
}

func TestHandleEventWorksWithoutDedupStore(t *testing.T) {
	processor := &recordingProcessor{}
	h := NewWebhookHandler(testSecret, "verify-me", processor, nil, nil, nil)
	body := loadFixture(t, "message_event.json")
	sig := signBody(t, body)

	postEvent(t, h, body, sig)
	postEvent(t, h, body, sig)

	assert.Len(t, processor.messaging, 2)
}
