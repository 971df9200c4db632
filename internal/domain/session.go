package domain

import "time"

// SessionTTL is how long a pending note waits for a button decision
// before it is considered abandoned.
const SessionTTL = 10 * time.Minute

type EditField string

const (
	EditTags    EditField = "tags"
	EditSummary EditField = "summary"
	EditTasks   EditField = "tasks"
)

// Session holds a processed note between the preview message and the
// user's verdict on it.
type Session struct {
	UserID       int64
	MessageID    int
	OriginalText string
	Result       ProcessingResult
	Voice        *VoiceMeta
	CreatedAt    time.Time
	Edited       bool
}

func (s *Session) Expired(now time.Time) bool {
	return now.Sub(s.CreatedAt) > SessionTTL
}
