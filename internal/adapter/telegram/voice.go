package telegram

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/charmbracelet/log"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"obsidian-vault-bot/internal/domain"
)

// maxVoiceBytes is the Bot API download limit.
const maxVoiceBytes = 20 * 1024 * 1024

func (b *Bot) handleVoice(ctx context.Context, msg *tgbotapi.Message) {
	if b.transcriber == nil {
		b.reply(msg.Chat.ID, "❌ Распознавание голоса недоступно: не задан OPENAI_API_KEY")
		return
	}
	if msg.Voice.FileSize > maxVoiceBytes {
		b.reply(msg.Chat.ID, "❌ Голосовое сообщение слишком большое (максимум 20 МБ)")
		return
	}

	statusID := b.reply(msg.Chat.ID, statusTranscribing)

	audio, err := b.downloadVoice(ctx, msg.Voice.FileID)
	if err != nil {
		log.Error("voice download failed", "err", err)
		b.editText(msg.Chat.ID, statusID, "❌ Не удалось скачать голосовое сообщение")
		return
	}

	res, err := b.transcriber.Transcribe(ctx, bytes.NewReader(audio), "voice.ogg")
	if err != nil {
		log.Error("transcription failed", "err", err)
		b.editText(msg.Chat.ID, statusID, "❌ Не удалось распознать голосовое сообщение")
		return
	}

	language := res.Language
	if language == "" {
		language = "unknown"
	}
	duration := int(res.Duration)
	if duration == 0 {
		duration = msg.Voice.Duration
	}
	voice := &domain.VoiceMeta{Duration: duration, Language: language}

	if b.processor != nil {
		b.editText(msg.Chat.ID, statusID, statusProcessing)
		b.processAndPreview(ctx, msg, statusID, res.Text, voice)
		return
	}
	b.saveRaw(ctx, msg.Chat.ID, statusID, "", res.Text, voice)
}

func (b *Bot) downloadVoice(ctx context.Context, fileID string) ([]byte, error) {
	file, err := b.api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("getting file info: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, file.Link(b.api.Token), nil)
	if err != nil {
		return nil, err
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("downloading voice file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("downloading voice file: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxVoiceBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading voice file: %w", err)
	}
	if len(data) > maxVoiceBytes {
		return nil, fmt.Errorf("voice file exceeds %d bytes", maxVoiceBytes)
	}
	return data, nil
}
