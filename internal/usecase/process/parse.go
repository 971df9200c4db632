package process

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"obsidian-vault-bot/internal/dateparse"
	"obsidian-vault-bot/internal/domain"
)

// decodeResponse parses the LLM answer as JSON. Models occasionally wrap
// the object in prose, so on failure the outermost braces are tried too.
func decodeResponse(raw string) (map[string]any, error) {
	var data map[string]any
	if err := json.Unmarshal([]byte(raw), &data); err == nil {
		return data, nil
	}

	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end < start {
		return nil, fmt.Errorf("no json object in llm response")
	}

	var wrapped map[string]any
	if err := json.Unmarshal([]byte(raw[start:end+1]), &wrapped); err != nil {
		return nil, fmt.Errorf("decoding llm response: %w", err)
	}
	return wrapped, nil
}

// normalizeResponse checks the decoded answer's structure and cleans it
// up. The summary is capped at 200 runes. Tags are lower-cased with
// spaces turned into hyphens and capped at 5; non-string entries are
// dropped.
func normalizeResponse(data map[string]any) (string, []string, []string, error) {
	summary, ok := data["summary"].(string)
	if !ok {
		return "", nil, nil, domain.ErrInvalidResponse
	}
	rawTags, ok := data["tags"].([]any)
	if !ok {
		return "", nil, nil, domain.ErrInvalidResponse
	}
	rawItems, ok := data["action_items"].([]any)
	if !ok {
		return "", nil, nil, domain.ErrInvalidResponse
	}

	summary = TruncateSummary(summary)

	tags := make([]string, 0, len(rawTags))
	for _, t := range rawTags {
		str, ok := t.(string)
		if !ok {
			continue
		}
		tags = append(tags, NormalizeTag(str))
	}
	if len(tags) > maxTags {
		tags = tags[:maxTags]
	}

	items := make([]string, 0, len(rawItems))
	for _, it := range rawItems {
		if str, ok := it.(string); ok {
			items = append(items, str)
		}
	}

	return summary, tags, items, nil
}

// NormalizeTag brings a tag into Obsidian-friendly form: lowercase with
// hyphens instead of spaces.
func NormalizeTag(tag string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(tag)), " ", "-")
}

// TruncateSummary caps a summary at the length promised to the vault.
func TruncateSummary(summary string) string {
	if utf8.RuneCountInString(summary) > summaryMaxLen {
		return string([]rune(summary)[:summaryMaxLen])
	}
	return summary
}

// BuildActionItems enriches plain task lines with dates, times and
// priorities found in their text.
func BuildActionItems(items []string, ref time.Time) []domain.ActionItem {
	if len(items) == 0 {
		return nil
	}
	parser := dateparse.New(ref)
	out := make([]domain.ActionItem, 0, len(items))
	for _, text := range items {
		item := domain.ActionItem{
			Text:     text,
			Priority: dateparse.ExtractPriority(text),
		}
		if dates := parser.Parse(text); len(dates) > 0 {
			item.Date = dates[0].Date
			item.Time = dates[0].Time
		}
		out = append(out, item)
	}
	return out
}

// MentionedDates lists every distinct date found in the text, sorted
// chronologically.
func MentionedDates(text string, ref time.Time) []string {
	parsed := dateparse.New(ref).Parse(text)
	if len(parsed) == 0 {
		return nil
	}
	dates := make([]string, 0, len(parsed))
	for _, pd := range parsed {
		dates = append(dates, pd.Date)
	}
	return dates
}
