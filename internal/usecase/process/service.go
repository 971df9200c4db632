// Package process runs incoming notes through an LLM to extract a
// summary, tags and action items before they land in the vault.
package process

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/log"

	"obsidian-vault-bot/internal/config"
	"obsidian-vault-bot/internal/domain"
)

const (
	maxAttempts   = 3
	baseWait      = time.Second
	maxTextLength = 10000
	summaryMaxLen = 200
	maxTags       = 5
)

const systemPrompt = `Ты - ассистент для обработки заметок в системе Personal Knowledge Management (Obsidian).
Твоя задача - проанализировать текст и извлечь структурированную информацию.

ВАЖНЫЕ ПРАВИЛА:
1. Извлекай только то, что явно присутствует в тексте
2. НЕ добавляй информацию от себя
3. Теги должны быть релевантны содержанию
4. Резюме должно быть информативным, но кратким
5. Задачи - только конкретные действия, которые упомянуты в тексте

ИЗВЛЕКАЙ:
1. ТЕГИ (tags):
   - 3-5 релевантных тегов
   - Английский язык, lowercase
   - Формат: kebab-case (через дефис)
   - От общих к конкретным
   - Примеры: project-idea, meeting, task, shopping, health

2. РЕЗЮМЕ (summary):
   - Краткое описание (1-2 предложения)
   - Максимум 200 символов
   - На том же языке, что и текст
   - Фокус на ключевых идеях

3. ЗАДАЧИ (action_items):
   - Список конкретных действий
   - Только то, что упомянуто в тексте
   - Формат: глагол + объект + контекст
   - Если задач нет - пустой массив

ФОРМАТ ОТВЕТА (строго JSON):
{
  "summary": "Краткое описание содержания",
  "tags": ["tag1", "tag2", "tag3"],
  "action_items": ["Задача 1", "Задача 2"]
}

НЕ добавляй никакого текста кроме JSON!`

var languageNames = map[string]string{
	"ru": "русский",
	"en": "английский",
	"uk": "украинский",
	"de": "немецкий",
	"fr": "французский",
	"es": "испанский",
	"it": "итальянский",
	"pt": "португальский",
}

func userPrompt(text, language string) string {
	langName, ok := languageNames[language]
	if !ok {
		langName = "исходный язык текста"
	}

	return fmt.Sprintf(`Проанализируй следующий текст и извлеки структурированную информацию:

ТЕКСТ:
%s

ТРЕБОВАНИЯ:
- Язык резюме: %s
- Теги: английский, lowercase, kebab-case
- Задачи: только явно упомянутые действия

Ответь в формате JSON.`, text, langName)
}

type Client interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

type CompletionRequest struct {
	Model        string
	System       string
	User         string
	Temperature  float32
	MaxTokens    int
	JSONResponse bool
}

type Limiter interface {
	Allow() bool
}

type Service struct {
	client  Client
	limiter Limiter
	cfg     config.Config
	now     func() time.Time
	sleep   func(ctx context.Context, d time.Duration) error
}

func NewService(client Client, limiter Limiter, cfg config.Config) *Service {
	return &Service{
		client:  client,
		limiter: limiter,
		cfg:     cfg,
		now:     time.Now,
		sleep:   sleepCtx,
	}
}

// Process extracts structured data from a note. The LLM call is retried
// with exponential backoff; a structurally invalid final answer is not.
func (s *Service) Process(ctx context.Context, text, language string) (domain.ProcessingResult, error) {
	started := s.now()

	if strings.TrimSpace(text) == "" {
		return domain.ProcessingResult{}, domain.ErrEmptyText
	}
	if utf8.RuneCountInString(text) > maxTextLength {
		return domain.ProcessingResult{}, fmt.Errorf("%w: over %d characters", domain.ErrTextTooLong, maxTextLength)
	}
	if !s.limiter.Allow() {
		return domain.ProcessingResult{}, domain.ErrRateLimited
	}

	data, err := s.completeWithRetry(ctx, text, language)
	if err != nil {
		return domain.ProcessingResult{}, err
	}

	summary, tags, items, err := normalizeResponse(data)
	if err != nil {
		return domain.ProcessingResult{}, err
	}

	now := s.now()
	return domain.ProcessingResult{
		Summary:        summary,
		Tags:           tags,
		ActionItems:    BuildActionItems(items, now),
		DatesMentioned: MentionedDates(text, now),
		Model:          s.cfg.Model,
		Version:        domain.ProcessingVersion,
		Elapsed:        now.Sub(started),
	}, nil
}

func (s *Service) completeWithRetry(ctx context.Context, text, language string) (map[string]any, error) {
	req := CompletionRequest{
		Model:        s.cfg.Model,
		System:       systemPrompt,
		User:         userPrompt(text, language),
		Temperature:  s.cfg.Temperature,
		MaxTokens:    s.cfg.MaxTokens,
		JSONResponse: true,
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		raw, err := s.client.Complete(ctx, req)
		if err == nil {
			data, decodeErr := decodeResponse(raw)
			if decodeErr == nil {
				return data, nil
			}
			err = decodeErr
		}
		lastErr = err
		log.Warn("llm attempt failed", "attempt", attempt+1, "max", maxAttempts, "err", err)

		if attempt < maxAttempts-1 {
			if err := s.sleep(ctx, time.Duration(1<<attempt)*baseWait); err != nil {
				return nil, err
			}
		}
	}
	return nil, fmt.Errorf("llm processing failed after %d attempts: %w", maxAttempts, lastErr)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
