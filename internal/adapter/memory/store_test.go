package memory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"obsidian-vault-bot/internal/domain"
)

var testStart = time.Date(2026, 2, 17, 15, 30, 0, 0, time.UTC)

// clockedStore returns a store with a controllable clock.
func clockedStore() (*SessionStore, *time.Time) {
	current := testStart
	store := NewSessionStore()
	store.now = func() time.Time { return current }
	return store, &current
}

func TestSessionStorePutGet(t *testing.T) {
	store, _ := clockedStore()
	sess := &domain.Session{UserID: 42, OriginalText: "текст", CreatedAt: testStart}

	store.Put(sess)

	got, err := store.Get(42)
	require.NoError(t, err)
	assert.Same(t, sess, got)
}

func TestSessionStoreMissing(t *testing.T) {
	store, _ := clockedStore()

	_, err := store.Get(42)
	assert.ErrorIs(t, err, domain.ErrNoSession)
}

func TestSessionStoreExpiry(t *testing.T) {
	store, clock := clockedStore()
	store.Put(&domain.Session{UserID: 42, CreatedAt: testStart})

	*clock = testStart.Add(domain.SessionTTL + time.Second)

	_, err := store.Get(42)
	assert.ErrorIs(t, err, domain.ErrSessionExpired)

	// The expired session is gone for good.
	_, err = store.Get(42)
	assert.ErrorIs(t, err, domain.ErrNoSession)
}

func TestSessionStoreDelete(t *testing.T) {
	store, _ := clockedStore()
	store.Put(&domain.Session{UserID: 42, CreatedAt: testStart})
	store.SetEditField(42, domain.EditTags)

	store.Delete(42)

	_, err := store.Get(42)
	assert.ErrorIs(t, err, domain.ErrNoSession)
	_, ok := store.EditField(42)
	assert.False(t, ok)
}

func TestSessionStoreEditField(t *testing.T) {
	store, _ := clockedStore()

	_, ok := store.EditField(42)
	assert.False(t, ok)

	store.SetEditField(42, domain.EditSummary)
	field, ok := store.EditField(42)
	require.True(t, ok)
	assert.Equal(t, domain.EditSummary, field)

	store.ClearEditField(42)
	_, ok = store.EditField(42)
	assert.False(t, ok)
}

func TestSessionStoreExpiryClearsEditField(t *testing.T) {
	store, clock := clockedStore()
	store.Put(&domain.Session{UserID: 42, CreatedAt: testStart})
	store.SetEditField(42, domain.EditTasks)

	*clock = testStart.Add(domain.SessionTTL + time.Minute)

	_, err := store.Get(42)
	require.ErrorIs(t, err, domain.ErrSessionExpired)
	_, ok := store.EditField(42)
	assert.False(t, ok)
}
