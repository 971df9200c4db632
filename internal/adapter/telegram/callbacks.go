package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"obsidian-vault-bot/internal/domain"
	"obsidian-vault-bot/internal/usecase/inbox"
	"obsidian-vault-bot/internal/usecase/process"
)

const (
	actionApprove     = "approve"
	actionEditTags    = "edit_tags"
	actionEditSummary = "edit_summary"
	actionEditTasks   = "edit_tasks"
	actionRegenerate  = "regenerate"
	actionSaveRaw     = "save_raw"
)

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	if cb.From == nil {
		b.answerCallback(cb.ID, "")
		return
	}
	if cb.From.ID != b.cfg.AllowedUserID {
		log.Warn("unauthorized callback ignored", "user", cb.From.ID)
		b.answerCallback(cb.ID, "")
		return
	}
	if cb.Message == nil {
		b.answerCallback(cb.ID, "")
		return
	}

	session, err := b.sessions.Get(cb.From.ID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionExpired) {
			b.answerCallback(cb.ID, "⚠️ Сессия истекла (10 минут). Отправьте заметку заново.")
		} else {
			b.answerCallback(cb.ID, "⚠️ Сессия истекла. Отправьте заметку заново.")
		}
		return
	}

	chatID := cb.Message.Chat.ID
	messageID := cb.Message.MessageID

	switch cb.Data {
	case actionApprove:
		b.answerCallback(cb.ID, "💾 Сохраняю...")
		b.saveSession(ctx, chatID, messageID, session, &session.Result)
	case actionEditTags:
		b.sessions.SetEditField(cb.From.ID, domain.EditTags)
		b.answerCallback(cb.ID, "")
		b.replyMarkdown(chatID, editTagsPrompt(session))
	case actionEditSummary:
		b.sessions.SetEditField(cb.From.ID, domain.EditSummary)
		b.answerCallback(cb.ID, "")
		b.replyMarkdown(chatID, editSummaryPrompt(session))
	case actionEditTasks:
		b.sessions.SetEditField(cb.From.ID, domain.EditTasks)
		b.answerCallback(cb.ID, "")
		b.replyMarkdown(chatID, editTasksPrompt(session))
	case actionRegenerate:
		b.answerCallback(cb.ID, "🔄 Обрабатываю заново...")
		b.regenerate(ctx, chatID, messageID, session)
	case actionSaveRaw:
		b.answerCallback(cb.ID, "💾 Сохраняю без обработки...")
		b.saveSession(ctx, chatID, messageID, session, nil)
	default:
		b.answerCallback(cb.ID, "❌ Неизвестное действие")
	}
}

// saveSession commits the pending note, processed when result is set,
// raw otherwise. The session is dropped either way.
func (b *Bot) saveSession(ctx context.Context, chatID int64, messageID int, session *domain.Session, result *domain.ProcessingResult) {
	status, err := b.inbox.Save(ctx, inbox.SaveRequest{
		Text:   session.OriginalText,
		Voice:  session.Voice,
		Result: result,
	})
	b.sessions.Delete(session.UserID)

	if err != nil {
		log.Error("failed to save note", "err", err)
		b.editText(chatID, messageID, "❌ Произошла ошибка: "+err.Error())
		return
	}
	b.editText(chatID, messageID, status)
}

func (b *Bot) regenerate(ctx context.Context, chatID int64, messageID int, session *domain.Session) {
	b.editText(chatID, messageID, statusProcessing)

	if b.processor == nil {
		b.editText(chatID, messageID, "❌ Smart Processing выключен")
		return
	}

	result, err := b.processor.Process(ctx, session.OriginalText, noteLanguage(session.Voice))
	if err != nil {
		log.Warn("regenerate failed", "err", err)
		b.editText(chatID, messageID, fmt.Sprintf(
			"❌ Ошибка при обработке: %v\n\nПопробуйте еще раз или сохраните без обработки.", err))
		return
	}

	session.Result = result
	b.sessions.Put(session)

	b.editWithKeyboard(chatID, messageID, previewText(session, b.now()), previewKeyboard())
}

// handleEditReply consumes the next text message as the new value of
// the pending edit field and rerenders the preview.
func (b *Bot) handleEditReply(msg *tgbotapi.Message, field domain.EditField) {
	session, err := b.sessions.Get(msg.From.ID)
	if err != nil {
		b.sessions.ClearEditField(msg.From.ID)
		b.reply(msg.Chat.ID, "⚠️ Сессия истекла")
		return
	}

	value := strings.TrimSpace(msg.Text)
	switch field {
	case domain.EditTags:
		session.Result.Tags = parseTags(value)
	case domain.EditSummary:
		session.Result.Summary = process.TruncateSummary(value)
	case domain.EditTasks:
		session.Result.ActionItems = process.BuildActionItems(parseTaskLines(value), b.now())
	}

	session.Edited = true
	b.sessions.Put(session)
	b.sessions.ClearEditField(msg.From.ID)

	b.replyWithKeyboard(msg.Chat.ID, "✅ Обновлено!\n\n"+previewText(session, b.now()), previewKeyboard())
}

func parseTags(value string) []string {
	parts := strings.Split(value, ",")
	tags := make([]string, 0, len(parts))
	for _, part := range parts {
		if tag := process.NormalizeTag(part); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

func parseTaskLines(value string) []string {
	var lines []string
	for _, line := range strings.Split(value, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func editTagsPrompt(session *domain.Session) string {
	return fmt.Sprintf(`✏️ **Редактирование тегов**

Текущие теги: `+"`%s`"+`

Отправьте новые теги через запятую (английский, lowercase):
Пример: `+"`project, idea, urgent`", strings.Join(session.Result.Tags, ", "))
}

func editSummaryPrompt(session *domain.Session) string {
	return fmt.Sprintf(`✏️ **Редактирование резюме**

Текущее резюме: `+"`%s`"+`

Отправьте новое резюме (макс 200 символов):`, session.Result.Summary)
}

func editTasksPrompt(session *domain.Session) string {
	current := "нет"
	if len(session.Result.ActionItems) > 0 {
		texts := make([]string, 0, len(session.Result.ActionItems))
		for _, item := range session.Result.ActionItems {
			texts = append(texts, item.Text)
		}
		current = strings.Join(texts, "\n")
	}

	return fmt.Sprintf(`✏️ **Редактирование задач**

Текущие задачи:
%s

Отправьте новые задачи (по одной на строку):
Пример:
`+"`Купить молоко\nПозвонить маме\nОтправить отчет`", current)
}
