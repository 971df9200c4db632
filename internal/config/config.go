package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

const (
	// InboxPath is the vault folder where all incoming notes land.
	InboxPath = "00_Inbox"
	// Branch is the vault branch notes are committed to.
	Branch = "main"
)

type Config struct {
	TelegramToken string
	AllowedUserID int64
	GitHubToken   string
	GitHubOwner   string
	GitHubRepo    string
	OpenAIKey     string

	SmartProcessing bool
	Model           string
	Temperature     float32
	MaxTokens       int
	MaxLLMPerHour   int
}

func Load(path string) (Config, error) {
	if err := godotenv.Load(path); err != nil {
		log.Debug("could not read .env", "path", path, "err", err)
	}

	cfg := Config{
		TelegramToken:   os.Getenv("TELEGRAM_BOT_TOKEN"),
		GitHubToken:     os.Getenv("GITHUB_TOKEN"),
		OpenAIKey:       os.Getenv("OPENAI_API_KEY"),
		SmartProcessing: getenvBoolDefault("SMART_PROCESSING_ENABLED", true),
		Model:           getenvDefault("SMART_PROCESSING_MODEL", "gpt-4o-mini"),
		Temperature:     getenvFloatDefault("SMART_PROCESSING_TEMPERATURE", 0.3),
		MaxTokens:       getenvIntDefault("SMART_PROCESSING_MAX_TOKENS", 500),
		MaxLLMPerHour:   getenvIntDefault("MAX_LLM_REQUESTS_PER_HOUR", 20),
	}

	var missing []string
	if cfg.TelegramToken == "" {
		missing = append(missing, "TELEGRAM_BOT_TOKEN")
	}
	if os.Getenv("ALLOWED_USER_ID") == "" {
		missing = append(missing, "ALLOWED_USER_ID")
	}
	if cfg.GitHubToken == "" {
		missing = append(missing, "GITHUB_TOKEN")
	}
	if os.Getenv("GITHUB_REPO") == "" {
		missing = append(missing, "GITHUB_REPO")
	}
	if len(missing) > 0 {
		return cfg, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	userID, err := strconv.ParseInt(strings.TrimSpace(os.Getenv("ALLOWED_USER_ID")), 10, 64)
	if err != nil {
		return cfg, fmt.Errorf("invalid ALLOWED_USER_ID: %w", err)
	}
	cfg.AllowedUserID = userID

	owner, repo, ok := strings.Cut(os.Getenv("GITHUB_REPO"), "/")
	if !ok || owner == "" || repo == "" || strings.Contains(repo, "/") {
		return cfg, fmt.Errorf("invalid GITHUB_REPO %q: expected owner/repository", os.Getenv("GITHUB_REPO"))
	}
	cfg.GitHubOwner = owner
	cfg.GitHubRepo = repo

	return cfg, nil
}

// SmartProcessingEnabled reports whether notes should go through the LLM
// before landing in the vault. Requires an OpenAI key on top of the flag.
func (c Config) SmartProcessingEnabled() bool {
	return c.SmartProcessing && c.OpenAIKey != ""
}

func (c Config) RepoSlug() string {
	return c.GitHubOwner + "/" + c.GitHubRepo
}

func getenvDefault(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getenvIntDefault(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Warn("invalid int, using default", "key", key, "value", v, "default", def)
		return def
	}
	return n
}

func getenvFloatDefault(key string, def float32) float32 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 32)
	if err != nil {
		log.Warn("invalid float, using default", "key", key, "value", v, "default", def)
		return def
	}
	return float32(f)
}

func getenvBoolDefault(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Warn("invalid bool, using default", "key", key, "value", v, "default", def)
		return def
	}
	return b
}
