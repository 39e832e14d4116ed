package utils

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiChatClient implements ChatCompletionClient using Google's Gemini models.
type GeminiChatClient struct {
	client      *genai.Client
	model       string
	temperature float32
}

func NewGeminiChatClient(ctx context.Context, apiKey, model string) (*GeminiChatClient, error) {
	if model == "" {
		model = "gemini-1.5-flash" // Free tier model
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiChatClient{
		client:      client,
		model:       model,
		temperature: 0.7,
	}, nil
}

func (c *GeminiChatClient) Provider() string { return "gemini" }

// Complete maps system messages onto the model's system instruction and the
// rest onto chat history, then sends the final message.
func (c *GeminiChatClient) Complete(ctx context.Context, messages []ChatMessage) (string, error) {
	if len(messages) == 0 {
		return "", fmt.Errorf("gemini: empty conversation")
	}

	m := c.client.GenerativeModel(c.model)
	m.SetTemperature(c.temperature)

	var system []string
	var history []*genai.Content
	for _, msg := range messages[:len(messages)-1] {
		switch msg.Role {
		case ChatRoleSystem:
			system = append(system, msg.Content)
		case ChatRoleAssistant:
			history = append(history, &genai.Content{Role: "model", Parts: []genai.Part{genai.Text(msg.Content)}})
		default:
			history = append(history, &genai.Content{Role: "user", Parts: []genai.Part{genai.Text(msg.Content)}})
		}
	}
	if len(system) > 0 {
		m.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(strings.Join(system, "\n\n"))}}
	}

	cs := m.StartChat()
	cs.History = history

	resp, err := cs.SendMessage(ctx, genai.Text(messages[len(messages)-1].Content))
	if err != nil {
		return "", fmt.Errorf("gemini: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", ErrEmptyCompletion
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	if sb.Len() == 0 {
		return "", ErrEmptyCompletion
	}
	return sb.String(), nil
}

func (c *GeminiChatClient) Close() error {
	return c.client.Close()
}

// NewChatClient creates either an OpenAI or a Gemini client based on config.
func NewChatClient(ctx context.Context, provider, apiKey, model string) (ChatCompletionClient, error) {
	switch strings.ToLower(provider) {
	case "openai":
		return NewOpenAIChatClient(apiKey, model, ""), nil
	case "gemini":
		return NewGeminiChatClient(ctx, apiKey, model)
	default:
		return nil, fmt.Errorf("unsupported chat provider: %s", provider)
	}
}
