package services

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"

	"chatrelay/internal/models"
)

// chatCompleter is the subset of *openai.Client used here.
type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenAIService answers through any OpenAI-compatible chat completions API.
type OpenAIService struct {
	client            chatCompleter
	model             string
	systemInstruction string
}

func NewOpenAIService(apiKey, baseURL, model, systemInstruction string) *OpenAIService {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIService{
		client:            openai.NewClientWithConfig(cfg),
		model:             model,
		systemInstruction: systemInstruction,
	}
}

func (s *OpenAIService) Reply(ctx context.Context, message string, history []models.HistoryEntry) (string, error) {
	if err := validateTurn(message, history); err != nil {
		return "", err
	}

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    s.model,
		Messages: s.buildMessages(message, history),
	})
	if err != nil {
		return "", fmt.Errorf("OpenAI API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

func (s *OpenAIService) buildMessages(message string, history []models.HistoryEntry) []openai.ChatCompletionMessage {
	msgs := make([]openai.ChatCompletionMessage, 0, len(history)+2)
	if s.systemInstruction != "" {
		msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: s.systemInstruction})
	}
	for _, h := range history {
		role := openai.ChatMessageRoleUser
		if h.Role == models.RoleModel {
			role = openai.ChatMessageRoleAssistant
		}
		msgs = append(msgs, openai.ChatCompletionMessage{Role: role, Content: h.Text()})
	}
	return append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: message})
}
