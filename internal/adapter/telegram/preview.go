package telegram

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"obsidian-vault-bot/internal/dateparse"
	"obsidian-vault-bot/internal/domain"
)

// previewContentLimit is how much of the note body the preview shows.
const previewContentLimit = 300

// previewText renders the Smart Processing preview the inline buttons
// are attached to.
func previewText(session *domain.Session, now time.Time) string {
	result := session.Result

	tagsStr := "нет"
	if len(result.Tags) > 0 {
		tagsStr = strings.Join(result.Tags, ", ")
	}

	tasksStr := "нет"
	if len(result.ActionItems) > 0 {
		lines := make([]string, 0, len(result.ActionItems))
		for _, item := range result.ActionItems {
			lines = append(lines, displayTask(item, now))
		}
		tasksStr = strings.Join(lines, "\n")
	}

	voiceInfo := ""
	if session.Voice != nil {
		voiceInfo = fmt.Sprintf(" 🎤 (Длительность: %dс, Язык: %s)",
			session.Voice.Duration, session.Voice.Language)
	}

	content := session.OriginalText
	if utf8.RuneCountInString(content) > previewContentLimit {
		content = string([]rune(content)[:previewContentLimit]) + "..."
	}

	return fmt.Sprintf(`🤖 **Smart Processing завершена!**%s

📝 **Summary:** %s
🏷️ **Tags:** %s
✅ **Задачи:** %d

--- **Превью заметки** ---
**Summary:** %s

### Содержание
%s

### Задачи
%s
---

Выберите действие:`,
		voiceInfo, result.Summary, tagsStr, len(result.ActionItems),
		result.Summary, content, tasksStr)
}

// displayTask renders a task line with its due date in the friendly
// today/tomorrow form. The vault keeps the ISO date.
func displayTask(item domain.ActionItem, now time.Time) string {
	if item.Date != "" {
		item.Date = dateparse.NormalizeObsidianDate(item.Date, now)
	}
	return item.Markdown()
}

func previewKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Сохранить", actionApprove),
			tgbotapi.NewInlineKeyboardButtonData("✏️ Теги", actionEditTags),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✏️ Резюме", actionEditSummary),
			tgbotapi.NewInlineKeyboardButtonData("✏️ Задачи", actionEditTasks),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔄 Заново", actionRegenerate),
			tgbotapi.NewInlineKeyboardButtonData("❌ Как есть", actionSaveRaw),
		),
	)
}
