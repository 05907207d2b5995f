package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Fixed model configuration.
const (
	ModelName       = "gemini-1.5-flash"
	Temperature     = 0.7
	MaxOutputTokens = 500
)

// SystemPrompt frames every conversation.
const SystemPrompt = `You are a friendly Korean language tutor for Arabic speakers.
Answer in Arabic unless the learner writes in Korean, and always include the Korean text with its romanization.
Keep answers short and encouraging, correct mistakes gently and explain grammar with simple examples.
Only discuss topics related to learning Korean and Korean culture.`

// GeminiProvider is the Provider backed by Google Gemini.
type GeminiProvider struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewGeminiProvider creates a Gemini client configured with the tutor prompt.
func NewGeminiProvider(ctx context.Context, apiKey string) (*GeminiProvider, error) {
	if apiKey == "" {
		return nil, errors.New("gemini api key is not set")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	model := client.GenerativeModel(ModelName)
	model.SetTemperature(Temperature)
	model.SetMaxOutputTokens(MaxOutputTokens)
	model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(SystemPrompt)}}

	return &GeminiProvider{client: client, model: model}, nil
}

// Reply implements Provider.
func (g *GeminiProvider) Reply(ctx context.Context, history []Turn, message string) (string, error) {
	session := g.model.StartChat()
	session.History = toContents(history)

	resp, err := session.SendMessage(ctx, genai.Text(message))
	if err != nil {
		return "", err
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("no response from model")
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			b.WriteString(string(txt))
		}
	}
	if b.Len() == 0 {
		return "", errors.New("no text content in response")
	}

	return b.String(), nil
}

// Close implements Provider.
func (g *GeminiProvider) Close() error {
	return g.client.Close()
}

// toContents maps relay roles onto Gemini roles.
func toContents(history []Turn) []*genai.Content {
	contents := make([]*genai.Content, 0, len(history))
	for _, turn := range history {
		role := "user"
		if turn.Role == RoleAssistant {
			role = "model"
		}
		contents = append(contents, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(turn.Content)},
		})
	}
	return contents
}
