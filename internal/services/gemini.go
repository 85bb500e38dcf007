package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"chatrelay/internal/models"
)

// rateWait is how long a request may queue for a Gemini slot.
const rateWait = 30 * time.Second

type GeminiService struct {
	client   *genai.Client
	model    *genai.GenerativeModel
	rateChan tokenBucket
}

func NewGeminiService(apiKey, modelName, systemInstruction string, concurrentReqs int) (*GeminiService, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	if systemInstruction != "" {
		model.SystemInstruction = genai.NewUserContent(genai.Text(systemInstruction))
	}

	return &GeminiService{
		client:   client,
		model:    model,
		rateChan: newTokenBucket(concurrentReqs),
	}, nil
}

func (s *GeminiService) Close() {
	s.client.Close()
}

// acquireRate blocks until a rate slot is available
func (s *GeminiService) acquireRate(ctx context.Context) error {
	select {
	case <-s.rateChan:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(rateWait):
		return &RateLimitError{Message: "timeout waiting for Gemini rate slot"}
	}
}

func (s *GeminiService) releaseRate() {
	s.rateChan <- struct{}{}
}

// Reply replays history into a fresh chat session and sends message.
func (s *GeminiService) Reply(ctx context.Context, message string, history []models.HistoryEntry) (string, error) {
	if err := validateTurn(message, history); err != nil {
		return "", err
	}

	if err := s.acquireRate(ctx); err != nil {
		return "", err
	}
	defer s.releaseRate()

	cs := s.model.StartChat()
	cs.History = toGeminiHistory(history)

	resp, err := cs.SendMessage(ctx, genai.Text(message))
	if err != nil {
		return "", fmt.Errorf("Gemini API error: %w", err)
	}
	return extractText(resp), nil
}

func toGeminiHistory(history []models.HistoryEntry) []*genai.Content {
	out := make([]*genai.Content, 0, len(history))
	for _, h := range history {
		parts := make([]genai.Part, 0, len(h.Parts))
		for _, p := range h.Parts {
			parts = append(parts, genai.Text(p.Text))
		}
		if len(parts) == 0 {
			continue
		}
		role := string(h.Role)
		if role != string(models.RoleModel) {
			role = string(models.RoleUser)
		}
		out = append(out, &genai.Content{Role: role, Parts: parts})
	}
	return out
}

// extractText returns the text of the first candidate that has any.
func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		var text strings.Builder
		for _, part := range cand.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				text.WriteString(string(t))
			}
		}
		if text.Len() > 0 {
			return text.String()
		}
	}
	return ""
}
