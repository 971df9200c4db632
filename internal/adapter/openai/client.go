package openai

import (
	"context"
	"errors"

	openaiapi "github.com/sashabaranov/go-openai"

	"obsidian-vault-bot/internal/usecase/process"
)

type Client struct {
	api *openaiapi.Client
}

func NewClient(token string) *Client {
	return &Client{
		api: openaiapi.NewClient(token),
	}
}

func (c *Client) Complete(ctx context.Context, req process.CompletionRequest) (string, error) {
	apiReq := openaiapi.ChatCompletionRequest{
		Model:       req.Model,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		Stream:      false,
		Messages: []openaiapi.ChatCompletionMessage{
			{Role: openaiapi.ChatMessageRoleSystem, Content: req.System},
			{Role: openaiapi.ChatMessageRoleUser, Content: req.User},
		},
	}
	if req.JSONResponse {
		apiReq.ResponseFormat = &openaiapi.ChatCompletionResponseFormat{
			Type: openaiapi.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := c.api.CreateChatCompletion(ctx, apiReq)
	if err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("openai returned empty response")
	}

	return resp.Choices[0].Message.Content, nil
}
