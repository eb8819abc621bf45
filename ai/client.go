package ai

import (
	"context"
	"errors"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/AgentChief/accredis/config"
)

// ChatRequest is one system + user exchange with the model.
type ChatRequest struct {
	System    string
	User      string
	Model     string
	MaxTokens int
	// JSON asks the service to constrain the reply to a JSON object.
	JSON bool
}

// Completer sends a chat request and returns the model's text reply.
type Completer interface {
	Complete(ctx context.Context, settings config.AISnapshot, req ChatRequest) (string, error)
}

var errEmptyReply = errors.New("AI service returned no choices")

// OpenAIClient talks to an OpenAI-compatible chat completions endpoint. A client is
// built per call from the snapshot so credential changes apply to the next call.
type OpenAIClient struct{}

func (OpenAIClient) Complete(ctx context.Context, settings config.AISnapshot, req ChatRequest) (string, error) {
	cfg := openai.DefaultConfig(settings.APIKey)
	if settings.BaseURL != "" {
		cfg.BaseURL = strings.TrimRight(settings.BaseURL, "/")
	}
	client := openai.NewClientWithConfig(cfg)

	creq := openai.ChatCompletionRequest{
		Model:     req.Model,
		MaxTokens: req.MaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.System},
			{Role: openai.ChatMessageRoleUser, Content: req.User},
		},
	}
	if req.JSON {
		creq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := client.CreateChatCompletion(ctx, creq)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errEmptyReply
	}
	return resp.Choices[0].Message.Content, nil
}
