package messenger

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedRequest struct {
	path string
	body map[string]any
}

func newTestClient(t *testing.T, status int, response string) (*Client, *[]capturedRequest) {
	t.Helper()
	var captured []capturedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		if r.Method == http.MethodPost {
			_ = json.NewDecoder(r.Body).Decode(&body)
		}
		captured = append(captured, capturedRequest{path: r.URL.Path, body: body})
		w.WriteHeader(status)
		_, _ = w.Write([]byte(response))
	}))
	t.Cleanup(srv.Close)
	client := NewClient(ClientConfig{
		BaseURL:         srv.URL,
		AccessToken:     "page-token",
		AgentInboxAppID: 263902037430900,
	})
	return client, &captured
}

func TestSendQuickRepliesPayloadShape(t *testing.T) {
	client, captured := newTestClient(t, http.StatusOK, `{"recipient_id":"psid-1","message_id":"m.1"}`)

	err := client.SendQuickReplies(context.Background(), "psid-1", "Ano ang budget range mo?", []QuickReply{
		{Title: "2M-3M", Payload: "BUDGET_2_3"},
		{Title: "3M-4M", Payload: "BUDGET_3_4"},
	})
	require.NoError(t, err)
	require.Len(t, *captured, 1)

	req := (*captured)[0]
	assert.Equal(t, "/me/messages", req.path)
	msg := req.body["message"].(map[string]any)
	assert.Equal(t, "Ano ang budget range mo?", msg["text"])
	replies := msg["quick_replies"].([]any)
	require.Len(t, replies, 2)
	first := replies[0].(map[string]any)
	assert.Equal(t, "text", first["content_type"])
	assert.Equal(t, "BUDGET_2_3", first["payload"])
}

func TestSendButtonTemplateCapsAtThreeButtons(t *testing.T) {
	client, captured := newTestClient(t, http.StatusOK, `{}`)

	buttons := []Button{
		PostbackButton("Reserve Now", "RESERVE_1"),
		PostbackButton("Schedule Tripping", "SCHEDULE_TRIPPING_1"),
		PostbackButton("Back to Options", "COMPUTE_1"),
		PostbackButton("Extra", "EXTRA"),
	}
	require.NoError(t, client.SendButtonTemplate(context.Background(), "psid-1", "computation", buttons))

	msg := (*captured)[0].body["message"].(map[string]any)
	payload := msg["attachment"].(map[string]any)["payload"].(map[string]any)
	assert.Equal(t, "button", payload["template_type"])
	assert.Len(t, payload["buttons"].([]any), 3)
}

func TestPassThreadControlTargetsAgentInbox(t *testing.T) {
	client, captured := newTestClient(t, http.StatusOK, `{"success":true}`)

	require.NoError(t, client.PassThreadControl(context.Background(), "psid-1"))
	req := (*captured)[0]
	assert.Equal(t, "/me/pass_thread_control", req.path)
	assert.EqualValues(t, 263902037430900, req.body["target_app_id"])
}

func TestGraphErrorSurfaced(t *testing.T) {
	client, _ := newTestClient(t, http.StatusBadRequest, `{"error":{"message":"Invalid OAuth token","type":"OAuthException","code":190}}`)

	err := client.SendText(context.Background(), "psid-1", "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OAuthException")
}

func TestGetProfile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/psid-1", r.URL.Path)
		assert.Equal(t, "first_name,last_name", r.URL.Query().Get("fields"))
		_, _ = w.Write([]byte(`{"first_name":"Juan","last_name":"Dela Cruz"}`))
	}))
	defer srv.Close()

	client := NewClient(ClientConfig{BaseURL: srv.URL, AccessToken: "tok"})
	profile, err := client.GetProfile(context.Background(), "psid-1")
	require.NoError(t, err)
	assert.Equal(t, "Juan Dela Cruz", profile.FullName())
}
