// Package telegram runs the long-polling bot: message intake, the
// Smart Processing preview with inline buttons and the edit-reply mode.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"obsidian-vault-bot/internal/config"
	"obsidian-vault-bot/internal/domain"
	"obsidian-vault-bot/internal/usecase/inbox"
	"obsidian-vault-bot/internal/usecase/process"
	"obsidian-vault-bot/internal/usecase/transcribe"
)

const (
	startText = `👋 Привет! Я бот для сохранения заметок в Obsidian.

Просто отправь мне текстовое или голосовое сообщение, и я сохраню его в твой Obsidian Vault через GitHub.

Команды:
/start - это сообщение
/help - помощь`

	statusSaving       = "⏳ Сохраняю заметку..."
	statusProcessing   = "🤖 Обрабатываю через AI..."
	statusTranscribing = "🎙 Распознаю голосовое сообщение..."

	unsupportedNotice = "❌ Поддерживаются только текстовые сообщения"
)

func helpText() string {
	return fmt.Sprintf(`📝 Как использовать бота:

1. Отправь мне текстовое или голосовое сообщение
2. Я добавлю его в дневную заметку YYYY-MM-DD.md
3. Файл хранится в папке %s твоего GitHub репозитория
4. Obsidian Git автоматически синхронизирует изменения

📁 Путь сохранения: %s/
🏷️ Теги: [inbox, telegram]`, config.InboxPath, config.InboxPath)
}

type Bot struct {
	api         *tgbotapi.BotAPI
	cfg         config.Config
	inbox       *inbox.Service
	processor   *process.Service    // nil when Smart Processing is off
	transcriber *transcribe.Service // nil without an OpenAI key
	sessions    domain.SessionStore
	now         func() time.Time
}

func NewBot(cfg config.Config, inboxSvc *inbox.Service, processor *process.Service,
	transcriber *transcribe.Service, sessions domain.SessionStore) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		return nil, err
	}

	return &Bot{
		api:         api,
		cfg:         cfg,
		inbox:       inboxSvc,
		processor:   processor,
		transcriber: transcriber,
		sessions:    sessions,
		now:         time.Now,
	}, nil
}

// Run polls for updates until the context is cancelled. Updates are
// handled one at a time: the session map and the daily-file
// read-modify-write both rely on it.
func (b *Bot) Run(ctx context.Context) error {
	log.Info("bot authorized", "username", b.api.Self.UserName)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update := <-updates:
			switch {
			case update.CallbackQuery != nil:
				b.handleCallback(ctx, update.CallbackQuery)
			case update.Message != nil:
				b.handleMessage(ctx, update.Message)
			}
		}
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil {
		return
	}
	if msg.From.ID != b.cfg.AllowedUserID {
		log.Warn("unauthorized message ignored", "user", msg.From.ID, "username", msg.From.UserName)
		return
	}

	if msg.IsCommand() {
		switch msg.Command() {
		case "start":
			b.reply(msg.Chat.ID, startText)
			return
		case "help":
			b.reply(msg.Chat.ID, helpText())
			return
		}
	}

	if field, ok := b.sessions.EditField(msg.From.ID); ok && msg.Text != "" {
		b.handleEditReply(msg, field)
		return
	}

	switch {
	case msg.Voice != nil:
		b.handleVoice(ctx, msg)
	case msg.Text != "":
		b.handleText(ctx, msg)
	default:
		b.reply(msg.Chat.ID, unsupportedNotice)
	}
}

func (b *Bot) handleText(ctx context.Context, msg *tgbotapi.Message) {
	if b.processor != nil {
		statusID := b.reply(msg.Chat.ID, statusProcessing)
		b.processAndPreview(ctx, msg, statusID, msg.Text, nil)
		return
	}

	statusID := b.reply(msg.Chat.ID, statusSaving)
	b.saveRaw(ctx, msg.Chat.ID, statusID, "", msg.Text, nil)
}

// processAndPreview runs Smart Processing and replaces the status
// message with the preview and its buttons. Any processing failure
// degrades to a raw save.
func (b *Bot) processAndPreview(ctx context.Context, msg *tgbotapi.Message, statusID int, text string, voice *domain.VoiceMeta) {
	result, err := b.processor.Process(ctx, text, noteLanguage(voice))
	if err != nil {
		log.Warn("smart processing failed, saving raw", "err", err)
		b.saveRaw(ctx, msg.Chat.ID, statusID, fallbackNotice(err), text, voice)
		return
	}

	session := &domain.Session{
		UserID:       msg.From.ID,
		MessageID:    msg.MessageID,
		OriginalText: text,
		Result:       result,
		Voice:        voice,
		CreatedAt:    b.now(),
	}
	b.sessions.Put(session)

	b.editWithKeyboard(msg.Chat.ID, statusID, previewText(session, b.now()), previewKeyboard())
}

// saveRaw commits the note without processing and edits the status
// message with the outcome, prefixed by an optional notice.
func (b *Bot) saveRaw(ctx context.Context, chatID int64, statusID int, notice, text string, voice *domain.VoiceMeta) {
	status, err := b.inbox.Save(ctx, inbox.SaveRequest{Text: text, Voice: voice})
	if err != nil {
		log.Error("failed to save note", "err", err)
		b.editText(chatID, statusID, "❌ Произошла ошибка: "+err.Error())
		return
	}

	if notice != "" {
		status = notice + "\n\n" + status
	}
	b.editText(chatID, statusID, status)
}

func fallbackNotice(err error) string {
	if errors.Is(err, domain.ErrRateLimited) {
		return "⚠️ Лимит AI-запросов на час исчерпан, сохраняю без обработки."
	}
	return "⚠️ Не удалось обработать через AI, сохраняю без обработки."
}

func noteLanguage(voice *domain.VoiceMeta) string {
	if voice != nil && voice.Language != "" {
		return voice.Language
	}
	return "ru"
}

func (b *Bot) reply(chatID int64, text string) int {
	msg := tgbotapi.NewMessage(chatID, text)
	sent, err := b.api.Send(msg)
	if err != nil {
		log.Error("failed to send message", "err", err)
		return 0
	}
	return sent.MessageID
}

func (b *Bot) replyMarkdown(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := b.api.Send(msg); err != nil {
		log.Error("failed to send message", "err", err)
	}
}

func (b *Bot) replyWithKeyboard(chatID int64, text string, keyboard tgbotapi.InlineKeyboardMarkup) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.ReplyMarkup = keyboard
	if _, err := b.api.Send(msg); err != nil {
		log.Error("failed to send message", "err", err)
	}
}

func (b *Bot) editText(chatID int64, messageID int, text string) {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	if _, err := b.api.Send(edit); err != nil {
		log.Error("failed to edit message", "err", err)
	}
}

func (b *Bot) editWithKeyboard(chatID int64, messageID int, text string, keyboard tgbotapi.InlineKeyboardMarkup) {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	edit.ParseMode = tgbotapi.ModeMarkdown
	edit.ReplyMarkup = &keyboard
	if _, err := b.api.Send(edit); err != nil {
		log.Error("failed to edit message", "err", err)
	}
}

func (b *Bot) answerCallback(id, text string) {
	if _, err := b.api.Request(tgbotapi.NewCallback(id, text)); err != nil {
		log.Error("failed to answer callback", "err", err)
	}
}
