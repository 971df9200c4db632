// Package transcribe turns Telegram voice messages into text.
package transcribe

import (
	"context"
	"errors"
	"io"
	"strings"
)

// WhisperModel is the OpenAI speech-to-text model used for voice notes.
const WhisperModel = "whisper-1"

var (
	ErrNoAudio         = errors.New("no audio data")
	ErrEmptyTranscript = errors.New("nothing recognized in audio")
)

type Client interface {
	Transcribe(ctx context.Context, req Request) (Result, error)
}

type Request struct {
	Model    string
	Audio    io.Reader
	Filename string
}

type Result struct {
	Text     string
	Language string
	Duration float64 // seconds
}

type Service struct {
	client Client
}

func NewService(client Client) *Service {
	return &Service{client: client}
}

func (s *Service) Transcribe(ctx context.Context, audio io.Reader, filename string) (Result, error) {
	if audio == nil {
		return Result{}, ErrNoAudio
	}

	res, err := s.client.Transcribe(ctx, Request{
		Model:    WhisperModel,
		Audio:    audio,
		Filename: filename,
	})
	if err != nil {
		return Result{}, err
	}

	res.Text = strings.TrimSpace(res.Text)
	if res.Text == "" {
		return Result{}, ErrEmptyTranscript
	}
	return res, nil
}
