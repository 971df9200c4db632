package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("ALLOWED_USER_ID", "42")
	t.Setenv("GITHUB_TOKEN", "ghp_test")
	t.Setenv("GITHUB_REPO", "alice/vault")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("SMART_PROCESSING_ENABLED", "")
	t.Setenv("SMART_PROCESSING_MODEL", "")
	t.Setenv("SMART_PROCESSING_TEMPERATURE", "")
	t.Setenv("SMART_PROCESSING_MAX_TOKENS", "")
	t.Setenv("MAX_LLM_REQUESTS_PER_HOUR", "")
}

// unsetenv clears key for the duration of the test, including the empty
// value t.Setenv would leave behind.
func unsetenv(t *testing.T, key string) {
	t.Setenv(key, "")
	require.NoError(t, os.Unsetenv(key))
}

func missingEnvPath(t *testing.T) string {
	return filepath.Join(t.TempDir(), ".env")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load(missingEnvPath(t))
	require.NoError(t, err)

	assert.Equal(t, "123:abc", cfg.TelegramToken)
	assert.Equal(t, int64(42), cfg.AllowedUserID)
	assert.Equal(t, "alice", cfg.GitHubOwner)
	assert.Equal(t, "vault", cfg.GitHubRepo)
	assert.Equal(t, "alice/vault", cfg.RepoSlug())
	assert.Equal(t, "gpt-4o-mini", cfg.Model)
	assert.Equal(t, float32(0.3), cfg.Temperature)
	assert.Equal(t, 500, cfg.MaxTokens)
	assert.Equal(t, 20, cfg.MaxLLMPerHour)
	assert.True(t, cfg.SmartProcessing)
}

func TestLoadMissingRequired(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	t.Setenv("GITHUB_TOKEN", "")

	_, err := Load(missingEnvPath(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TELEGRAM_BOT_TOKEN")
	assert.Contains(t, err.Error(), "GITHUB_TOKEN")
	assert.NotContains(t, err.Error(), "GITHUB_REPO")
}

func TestLoadInvalidUserID(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("ALLOWED_USER_ID", "not-a-number")

	_, err := Load(missingEnvPath(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ALLOWED_USER_ID")
}

func TestLoadInvalidRepo(t *testing.T) {
	for _, repo := range []string{"alice", "alice/", "/vault", "alice/vault/extra"} {
		t.Run(repo, func(t *testing.T) {
			setRequiredEnv(t)
			t.Setenv("GITHUB_REPO", repo)

			_, err := Load(missingEnvPath(t))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "GITHUB_REPO")
		})
	}
}

func TestLoadOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SMART_PROCESSING_ENABLED", "false")
	t.Setenv("SMART_PROCESSING_MODEL", "gpt-4o")
	t.Setenv("SMART_PROCESSING_TEMPERATURE", "0.7")
	t.Setenv("SMART_PROCESSING_MAX_TOKENS", "2000")
	t.Setenv("MAX_LLM_REQUESTS_PER_HOUR", "5")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := Load(missingEnvPath(t))
	require.NoError(t, err)

	assert.False(t, cfg.SmartProcessing)
	assert.False(t, cfg.SmartProcessingEnabled())
	assert.Equal(t, "gpt-4o", cfg.Model)
	assert.Equal(t, float32(0.7), cfg.Temperature)
	assert.Equal(t, 2000, cfg.MaxTokens)
	assert.Equal(t, 5, cfg.MaxLLMPerHour)
}

func TestSmartProcessingEnabled(t *testing.T) {
	cfg := Config{SmartProcessing: true}
	assert.False(t, cfg.SmartProcessingEnabled())

	cfg.OpenAIKey = "sk-test"
	assert.True(t, cfg.SmartProcessingEnabled())

	cfg.SmartProcessing = false
	assert.False(t, cfg.SmartProcessingEnabled())
}

func TestLoadDotEnvFile(t *testing.T) {
	for _, key := range []string{
		"TELEGRAM_BOT_TOKEN", "ALLOWED_USER_ID", "GITHUB_TOKEN",
		"GITHUB_REPO", "OPENAI_API_KEY", "SMART_PROCESSING_ENABLED",
		"SMART_PROCESSING_MODEL", "SMART_PROCESSING_TEMPERATURE",
		"SMART_PROCESSING_MAX_TOKENS", "MAX_LLM_REQUESTS_PER_HOUR",
	} {
		unsetenv(t, key)
	}

	path := filepath.Join(t.TempDir(), ".env")
	env := "TELEGRAM_BOT_TOKEN=env:token\n" +
		"ALLOWED_USER_ID=7\n" +
		"GITHUB_TOKEN=ghp_file\n" +
		"GITHUB_REPO=bob/notes\n" +
		"SMART_PROCESSING_MODEL=gpt-4o\n"
	require.NoError(t, os.WriteFile(path, []byte(env), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "env:token", cfg.TelegramToken)
	assert.Equal(t, int64(7), cfg.AllowedUserID)
	assert.Equal(t, "bob", cfg.GitHubOwner)
	assert.Equal(t, "notes", cfg.GitHubRepo)
	assert.Equal(t, "gpt-4o", cfg.Model)
}
