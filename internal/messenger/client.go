package messenger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/TuniLagunero/phirst-bot/pkg/logging"
)

// QuickReply is one tappable option attached to a text prompt.
type QuickReply struct {
	Title   string
	Payload string
}

// Button is a template button: postback or web_url.
type Button struct {
	Type    string `json:"type"`
	Title   string `json:"title"`
	Payload string `json:"payload,omitempty"`
	URL     string `json:"url,omitempty"`
}

// PostbackButton builds a postback button.
func PostbackButton(title, payload string) Button {
	return Button{Type: "postback", Title: title, Payload: payload}
}

// LinkButton builds a web_url button.
func LinkButton(title, urlStr string) Button {
	return Button{Type: "web_url", Title: title, URL: urlStr}
}

// Element is one card in a generic-template carousel.
type Element struct {
	Title    string   `json:"title"`
	ImageURL string   `json:"image_url,omitempty"`
	Subtitle string   `json:"subtitle,omitempty"`
	Buttons  []Button `json:"buttons,omitempty"`
}

// Profile is the best-effort subscriber name from the Graph profile lookup.
type Profile struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// FullName joins the profile parts, trimming when last name is absent.
func (p Profile) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// Gateway sends Messenger messages and side requests through the Graph API.
// All sends are fire-and-forget from the state machine's point of view:
// callers log errors and move on.
type Gateway interface {
	SendText(ctx context.Context, psid, text string) error
	SendQuickReplies(ctx context.Context, psid, text string, options []QuickReply) error
	SendGenericTemplate(ctx context.Context, psid string, elements []Element) error
	SendButtonTemplate(ctx context.Context, psid, text string, buttons []Button) error
	SendImage(ctx context.Context, psid, imageURL string) error
	PassThreadControl(ctx context.Context, psid string) error
	GetProfile(ctx context.Context, psid string) (Profile, error)
}

// Client is the Graph API implementation of Gateway.
type Client struct {
	baseURL         string
	accessToken     string
	agentInboxAppID int64
	httpClient      *http.Client
	logger          *logging.Logger
}

// ClientConfig configures the Graph API client.
type ClientConfig struct {
	BaseURL         string
	AccessToken     string
	AgentInboxAppID int64
	Timeout         time.Duration
	Logger          *logging.Logger
}

// NewClient builds a Graph API client with a bounded HTTP timeout.
func NewClient(cfg ClientConfig) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://graph.facebook.com/v21.0"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	return &Client{
		baseURL:         strings.TrimRight(cfg.BaseURL, "/"),
		accessToken:     cfg.AccessToken,
		agentInboxAppID: cfg.AgentInboxAppID,
		httpClient:      &http.Client{Timeout: cfg.Timeout},
		logger:          cfg.Logger,
	}
}

type graphError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    int    `json:"code"`
}

type graphResult struct {
	RecipientID string      `json:"recipient_id"`
	MessageID   string      `json:"message_id"`
	Error       *graphError `json:"error"`
}

func (c *Client) post(ctx context.Context, path string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("messenger: marshal payload: %w", err)
	}
	endpoint := fmt.Sprintf("%s%s?access_token=%s", c.baseURL, path, url.QueryEscape(c.accessToken))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("messenger: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("messenger: send: %w", err)
	}
	defer resp.Body.Close()

	var result graphResult
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&result); err != nil {
		if resp.StatusCode >= http.StatusBadRequest {
			return fmt.Errorf("messenger: graph api status %d", resp.StatusCode)
		}
		return nil
	}
	if result.Error != nil {
		return fmt.Errorf("messenger: graph api error code=%d type=%s: %s",
			result.Error.Code, result.Error.Type, result.Error.Message)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("messenger: graph api status %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) sendMessage(ctx context.Context, psid string, message map[string]any) error {
	payload := map[string]any{
		"messaging_type": "RESPONSE",
		"recipient":      map[string]string{"id": psid},
		"message":        message,
	}
	return c.post(ctx, "/me/messages", payload)
}

// SendText sends a plain text message.
func (c *Client) SendText(ctx context.Context, psid, text string) error {
	return c.sendMessage(ctx, psid, map[string]any{"text": text})
}

// SendQuickReplies sends text with tappable quick-reply options.
func (c *Client) SendQuickReplies(ctx context.Context, psid, text string, options []QuickReply) error {
	replies := make([]map[string]string, 0, len(options))
	for _, opt := range options {
		replies = append(replies, map[string]string{
			"content_type": "text",
			"title":        opt.Title,
			"payload":      opt.Payload,
		})
	}
	return c.sendMessage(ctx, psid, map[string]any{
		"text":          text,
		"quick_replies": replies,
	})
}

// SendGenericTemplate sends a card carousel.
func (c *Client) SendGenericTemplate(ctx context.Context, psid string, elements []Element) error {
	return c.sendMessage(ctx, psid, map[string]any{
		"attachment": map[string]any{
			"type": "template",
			"payload": map[string]any{
				"template_type": "generic",
				"elements":      elements,
			},
		},
	})
}

// SendButtonTemplate sends text with up to three buttons.
func (c *Client) SendButtonTemplate(ctx context.Context, psid, text string, buttons []Button) error {
	if len(buttons) > 3 {
		buttons = buttons[:3]
	}
	return c.sendMessage(ctx, psid, map[string]any{
		"attachment": map[string]any{
			"type": "template",
			"payload": map[string]any{
				"template_type": "button",
				"text":          text,
				"buttons":       buttons,
			},
		},
	})
}

// SendImage sends a standalone image attachment by URL.
func (c *Client) SendImage(ctx context.Context, psid, imageURL string) error {
	return c.sendMessage(ctx, psid, map[string]any{
		"attachment": map[string]any{
			"type": "image",
			"payload": map[string]any{
				"url":         imageURL,
				"is_reusable": true,
			},
		},
	})
}

// PassThreadControl hands the conversation to the Meta agent inbox.
func (c *Client) PassThreadControl(ctx context.Context, psid string) error {
	payload := map[string]any{
		"recipient":     map[string]string{"id": psid},
		"target_app_id": c.agentInboxAppID,
		"metadata":      "Handover to human agent",
	}
	return c.post(ctx, "/me/pass_thread_control", payload)
}

// GetProfile fetches the subscriber's first/last name. Best effort.
func (c *Client) GetProfile(ctx context.Context, psid string) (Profile, error) {
	endpoint := fmt.Sprintf("%s/%s?fields=first_name,last_name&access_token=%s",
		c.baseURL, url.PathEscape(psid), url.QueryEscape(c.accessToken))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Profile{}, fmt.Errorf("messenger: build profile request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Profile{}, fmt.Errorf("messenger: profile lookup: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		return Profile{}, fmt.Errorf("messenger: profile lookup status %d", resp.StatusCode)
	}
	var profile Profile
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<14)).Decode(&profile); err != nil {
		return Profile{}, fmt.Errorf("messenger: decode profile: %w", err)
	}
	return profile, nil
}
