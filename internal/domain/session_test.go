package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSessionExpired(t *testing.T) {
	created := time.Date(2026, 2, 17, 15, 30, 0, 0, time.UTC)
	s := &Session{UserID: 42, CreatedAt: created}

	assert.False(t, s.Expired(created))
	assert.False(t, s.Expired(created.Add(SessionTTL)))
	assert.True(t, s.Expired(created.Add(SessionTTL+time.Second)))
}
