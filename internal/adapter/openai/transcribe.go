package openai

import (
	"context"

	openaiapi "github.com/sashabaranov/go-openai"

	"obsidian-vault-bot/internal/usecase/transcribe"
)

func (c *Client) Transcribe(ctx context.Context, req transcribe.Request) (transcribe.Result, error) {
	resp, err := c.api.CreateTranscription(ctx, openaiapi.AudioRequest{
		Model:    req.Model,
		Reader:   req.Audio,
		FilePath: req.Filename,
		Format:   openaiapi.AudioResponseFormatVerboseJSON,
	})
	if err != nil {
		return transcribe.Result{}, err
	}

	return transcribe.Result{
		Text:     resp.Text,
		Language: resp.Language,
		Duration: resp.Duration,
	}, nil
}
