// Package ai provides the generative fallback for free-text questions the
// scripted funnel does not cover.
package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// CannedReply is sent when the assistant is unavailable. Failures never
// propagate to the user.
const CannedReply = "Pasensya na, busy lang ang system. Type 'house' para sa models o 'start' para mag-simula uli."

// systemInstruction is the fixed knowledge base for the sales assistant.
const systemInstruction = `You are 'PHirst Bot', a helpful sales assistant for Jeric, a real estate agent for Magalang East Phirst Park Homes.
Answer in Taglish. Be professional but friendly.

FACTS FROM DOCUMENTS:
- Calista Mid/End: 15% Downpayment (16 months to pay) for PAG-IBIG financing.
- Unna Regular: 20% Downpayment (16 months to pay).
- Amenities: Clubhouse, swimming pool, basketball court, outdoor cinema, and 24/7 security.
- Bank financing is 10% downpayment in 12 months.
- Pag-IBIG financing is 20% downpayment 16 months to pay.
- Fully finished upon turnover with gate, and fence.
- Location is in Magalang, Pampanga, 5-10 mins from the town proper and public market.
- Ready for occupancy or pre-selling.

RULES:
1. Keep answers under 3 sentences.
2. If asked about price or computation, say: "Type 'house' para makita ang models at direct computations natin."
3. Always end with a nudge to Jeric: "Gusto mo bang kausapin si Jeric? Click 'Ask Agent' sa menu."`

// Assistant answers a free-text question with a short reply.
type Assistant interface {
	Reply(ctx context.Context, userText string) (string, error)
}

// GeminiAssistant implements Assistant using Google's Gemini API.
type GeminiAssistant struct {
	client  *genai.Client
	modelID string
}

// NewGeminiAssistant creates a Gemini-backed assistant.
func NewGeminiAssistant(ctx context.Context, apiKey, modelID string) (*GeminiAssistant, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("ai: gemini api key is required")
	}
	if strings.TrimSpace(modelID) == "" {
		modelID = "gemini-2.5-flash"
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("ai: failed to create gemini client: %w", err)
	}
	return &GeminiAssistant{client: client, modelID: modelID}, nil
}

// Reply sends the question with the fixed system instruction and returns
// the model's text.
func (a *GeminiAssistant) Reply(ctx context.Context, userText string) (string, error) {
	model := a.client.GenerativeModel(a.modelID)
	model.SystemInstruction = genai.NewUserContent(genai.Text(systemInstruction))

	resp, err := model.GenerateContent(ctx, genai.Text(userText))
	if err != nil {
		return "", fmt.Errorf("ai: gemini completion failed: %w", err)
	}
	if len(resp.Candidates) == 0 {
		return "", errors.New("ai: gemini returned no candidates")
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", errors.New("ai: gemini returned empty content")
	}

	var out strings.Builder
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			out.WriteString(string(text))
		}
	}
	reply := strings.TrimSpace(out.String())
	if reply == "" {
		return "", errors.New("ai: gemini returned no text parts")
	}
	return reply, nil
}

// Close releases resources held by the Gemini client.
func (a *GeminiAssistant) Close() error {
	if a.client != nil {
		return a.client.Close()
	}
	return nil
}
