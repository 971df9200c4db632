package process

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"obsidian-vault-bot/internal/config"
	"obsidian-vault-bot/internal/domain"
)

var testCfg = config.Config{
	Model:       "gpt-4o-mini",
	Temperature: 0.3,
	MaxTokens:   1000,
}

const validAnswer = `{
	"summary": "Обсуждение планов",
	"tags": ["Work", "Planning"],
	"action_items": ["Завтра в 10:00 подготовить презентацию"]
}`

type stubCall struct {
	resp string
	err  error
}

type fakeClient struct {
	calls   []CompletionRequest
	answers []stubCall
}

func (f *fakeClient) Complete(_ context.Context, req CompletionRequest) (string, error) {
	f.calls = append(f.calls, req)
	if len(f.answers) == 0 {
		return "", errors.New("no stubbed answer")
	}
	next := f.answers[0]
	f.answers = f.answers[1:]
	return next.resp, next.err
}

type fakeLimiter struct {
	allowed bool
	calls   int
}

func (f *fakeLimiter) Allow() bool {
	f.calls++
	return f.allowed
}

func newTestService(client *fakeClient, limiter *fakeLimiter) (*Service, *[]time.Duration) {
	svc := NewService(client, limiter, testCfg)
	svc.now = func() time.Time { return time.Date(2026, 2, 17, 15, 30, 0, 0, time.UTC) }

	var slept []time.Duration
	svc.sleep = func(_ context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}
	return svc, &slept
}

func TestProcessSuccess(t *testing.T) {
	client := &fakeClient{answers: []stubCall{{resp: validAnswer}}}
	svc, _ := newTestService(client, &fakeLimiter{allowed: true})

	result, err := svc.Process(context.Background(), "Завтра встреча с командой в 10:00", "ru")
	require.NoError(t, err)

	assert.Equal(t, "Обсуждение планов", result.Summary)
	assert.Equal(t, []string{"work", "planning"}, result.Tags)
	assert.Equal(t, "gpt-4o-mini", result.Model)
	assert.Equal(t, domain.ProcessingVersion, result.Version)

	require.Len(t, result.ActionItems, 1)
	assert.Equal(t, "2026-02-18", result.ActionItems[0].Date)
	assert.Equal(t, "10:00", result.ActionItems[0].Time)

	assert.Equal(t, []string{"2026-02-18"}, result.DatesMentioned)

	require.Len(t, client.calls, 1)
	req := client.calls[0]
	assert.Equal(t, "gpt-4o-mini", req.Model)
	assert.True(t, req.JSONResponse)
	assert.Contains(t, req.User, "Завтра встреча с командой в 10:00")
	assert.Contains(t, req.User, "Язык резюме: русский")
	assert.Contains(t, req.System, "Personal Knowledge Management")
}

func TestProcessUnknownLanguageFallback(t *testing.T) {
	client := &fakeClient{answers: []stubCall{{resp: validAnswer}}}
	svc, _ := newTestService(client, &fakeLimiter{allowed: true})

	_, err := svc.Process(context.Background(), "some note", "ja")
	require.NoError(t, err)

	assert.Contains(t, client.calls[0].User, "исходный язык текста")
}

func TestProcessRetriesWithBackoff(t *testing.T) {
	client := &fakeClient{answers: []stubCall{
		{err: errors.New("rate limit")},
		{err: errors.New("timeout")},
		{resp: validAnswer},
	}}
	svc, slept := newTestService(client, &fakeLimiter{allowed: true})

	result, err := svc.Process(context.Background(), "текст", "ru")
	require.NoError(t, err)

	assert.Equal(t, "Обсуждение планов", result.Summary)
	assert.Len(t, client.calls, 3)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, *slept)
}

func TestProcessRetriesOnMalformedJSON(t *testing.T) {
	client := &fakeClient{answers: []stubCall{
		{resp: "это не JSON вообще"},
		{resp: validAnswer},
	}}
	svc, _ := newTestService(client, &fakeLimiter{allowed: true})

	_, err := svc.Process(context.Background(), "текст", "ru")
	require.NoError(t, err)

	assert.Len(t, client.calls, 2)
}

func TestProcessGivesUpAfterMaxAttempts(t *testing.T) {
	apiErr := errors.New("boom")
	client := &fakeClient{answers: []stubCall{{err: apiErr}, {err: apiErr}, {err: apiErr}}}
	svc, slept := newTestService(client, &fakeLimiter{allowed: true})

	_, err := svc.Process(context.Background(), "текст", "ru")

	require.Error(t, err)
	assert.ErrorIs(t, err, apiErr)
	assert.Contains(t, err.Error(), "after 3 attempts")
	assert.Len(t, client.calls, 3)
	// No sleep after the final attempt.
	assert.Len(t, *slept, 2)
}

func TestProcessInvalidStructureNotRetried(t *testing.T) {
	client := &fakeClient{answers: []stubCall{
		{resp: `{"summary": "s", "tags": []}`},
	}}
	svc, _ := newTestService(client, &fakeLimiter{allowed: true})

	_, err := svc.Process(context.Background(), "текст", "ru")

	assert.ErrorIs(t, err, domain.ErrInvalidResponse)
	assert.Len(t, client.calls, 1)
}

func TestProcessRateLimited(t *testing.T) {
	client := &fakeClient{}
	limiter := &fakeLimiter{allowed: false}
	svc, _ := newTestService(client, limiter)

	_, err := svc.Process(context.Background(), "текст", "ru")

	assert.ErrorIs(t, err, domain.ErrRateLimited)
	assert.Equal(t, 1, limiter.calls)
	assert.Empty(t, client.calls)
}

func TestProcessEmptyText(t *testing.T) {
	svc, _ := newTestService(&fakeClient{}, &fakeLimiter{allowed: true})

	for _, text := range []string{"", "   ", "\n\t"} {
		_, err := svc.Process(context.Background(), text, "ru")
		assert.ErrorIs(t, err, domain.ErrEmptyText)
	}
}

func TestProcessTextTooLong(t *testing.T) {
	svc, _ := newTestService(&fakeClient{}, &fakeLimiter{allowed: true})

	_, err := svc.Process(context.Background(), strings.Repeat("о", maxTextLength+1), "ru")

	assert.ErrorIs(t, err, domain.ErrTextTooLong)
}

func TestProcessSleepCancelled(t *testing.T) {
	client := &fakeClient{answers: []stubCall{{err: errors.New("boom")}}}
	svc, _ := newTestService(client, &fakeLimiter{allowed: true})
	svc.sleep = func(ctx context.Context, _ time.Duration) error {
		return context.Canceled
	}

	_, err := svc.Process(context.Background(), "текст", "ru")

	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, client.calls, 1)
}
