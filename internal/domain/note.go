package domain

import (
	"strings"
	"time"
)

const (
	PriorityHigh = "high"
	PriorityLow  = "low"
)

// ProcessingVersion marks notes that went through the current
// smart-processing pipeline.
const ProcessingVersion = "2.0"

type ProcessingResult struct {
	Summary        string
	Tags           []string
	ActionItems    []ActionItem
	DatesMentioned []string
	Model          string
	Version        string
	Elapsed        time.Duration
}

type ActionItem struct {
	Text     string
	Date     string // YYYY-MM-DD
	Time     string // HH:MM
	Priority string
	Tags     []string
}

// Markdown renders the item as an Obsidian Tasks checkbox line.
func (a ActionItem) Markdown() string {
	var b strings.Builder
	b.WriteString("- [ ] ")
	b.WriteString(a.Text)
	switch a.Priority {
	case PriorityHigh:
		b.WriteString(" ⏫")
	case PriorityLow:
		b.WriteString(" 🔽")
	}
	if a.Date != "" {
		b.WriteString(" 📅 ")
		b.WriteString(a.Date)
	}
	if a.Time != "" {
		b.WriteString(" ⏰ ")
		b.WriteString(a.Time)
	}
	for _, tag := range a.Tags {
		b.WriteString(" #")
		b.WriteString(tag)
	}
	return b.String()
}

type VoiceMeta struct {
	Duration int // seconds
	Language string
}
