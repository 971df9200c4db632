// Package vault renders Markdown daily notes for an Obsidian vault.
package vault

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"obsidian-vault-bot/internal/domain"
)

const (
	tagInbox       = "inbox"
	tagTelegram    = "telegram"
	tagVoice       = "voice"
	tagUnprocessed = "unprocessed"
)

// Frontmatter is the YAML header of a daily note.
type Frontmatter struct {
	Date              string   `yaml:"date"`
	Tags              []string `yaml:"tags,flow"`
	Processed         bool     `yaml:"processed"`
	ProcessingModel   string   `yaml:"processing_model,omitempty"`
	ProcessingVersion string   `yaml:"processing_version,omitempty"`
	DatesMentioned    []string `yaml:"dates_mentioned,flow,omitempty"`
}

// Entry is one timestamped block inside a daily note.
type Entry struct {
	Time   string // HH:MM
	Text   string
	Voice  *domain.VoiceMeta
	Result *domain.ProcessingResult
}

// Filename returns the daily note name for the given moment.
func Filename(now time.Time) string {
	return now.Format("2006-01-02") + ".md"
}

// Render produces the entry as an appendable block. It starts with a
// newline so it can be concatenated to an existing file as is.
func (e Entry) Render() string {
	if e.Result != nil {
		return e.renderProcessed()
	}
	if e.Voice != nil {
		return fmt.Sprintf("\n## %s 🎤\n\n%s\n\n---\n*Источник: Telegram Voice Message • Длительность: %dс • Язык: %s*\n",
			e.Time, e.Text, e.Voice.Duration, e.Voice.Language)
	}
	return fmt.Sprintf("\n## %s\n\n%s\n", e.Time, e.Text)
}

func (e Entry) renderProcessed() string {
	header := "## " + e.Time
	if e.Voice != nil {
		header += " 🎤"
	}

	var tasks string
	if len(e.Result.ActionItems) > 0 {
		lines := make([]string, 0, len(e.Result.ActionItems))
		for _, item := range e.Result.ActionItems {
			lines = append(lines, item.Markdown())
		}
		tasks = "\n### Задачи\n\n" + strings.Join(lines, "\n")
	}

	var footer string
	if e.Voice != nil {
		footer = fmt.Sprintf("\n---\n*Источник: Telegram Voice Message • Длительность: %dс • Язык: %s | Обработано: Smart Processing v%s (%s)*\n",
			e.Voice.Duration, e.Voice.Language, e.Result.Version, e.Result.Model)
	} else {
		footer = fmt.Sprintf("\n---\n*Источник: Telegram | Обработано: Smart Processing v%s (%s)*\n",
			e.Result.Version, e.Result.Model)
	}

	return fmt.Sprintf("\n%s\n\n**Summary:** %s\n\n### Содержание\n\n%s%s%s",
		header, e.Result.Summary, e.Text, tasks, footer)
}

// NewDaily builds a complete daily note file around the first entry of
// the day: frontmatter, title and the entry itself.
func NewDaily(now time.Time, e Entry) (string, error) {
	fm := Frontmatter{
		Date: now.Format("2006-01-02"),
		Tags: []string{tagInbox, tagTelegram},
	}
	if e.Voice != nil {
		fm.Tags = append(fm.Tags, tagVoice)
	}
	if e.Result != nil {
		fm.Tags = append(fm.Tags, e.Result.Tags...)
		fm.Processed = true
		fm.ProcessingModel = e.Result.Model
		fm.ProcessingVersion = e.Result.Version
		fm.DatesMentioned = e.Result.DatesMentioned
	} else {
		fm.Tags = append(fm.Tags, tagUnprocessed)
	}

	var buf bytes.Buffer
	buf.WriteString("---\n")
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(fm); err != nil {
		return "", fmt.Errorf("encoding frontmatter: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("encoding frontmatter: %w", err)
	}
	buf.WriteString("---\n")

	buf.WriteString("\n# Заметки за ")
	buf.WriteString(now.Format("02.01.2006"))
	buf.WriteString("\n\n")
	buf.WriteString(strings.TrimLeft(e.Render(), "\n"))

	return buf.String(), nil
}
