package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"

	"obsidian-vault-bot/internal/adapter/github"
	"obsidian-vault-bot/internal/adapter/memory"
	"obsidian-vault-bot/internal/adapter/openai"
	"obsidian-vault-bot/internal/adapter/telegram"
	"obsidian-vault-bot/internal/config"
	"obsidian-vault-bot/internal/usecase/inbox"
	"obsidian-vault-bot/internal/usecase/process"
	"obsidian-vault-bot/internal/usecase/transcribe"
)

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	vault := github.NewVault(cfg.GitHubToken, cfg.GitHubOwner, cfg.GitHubRepo, config.Branch)
	if err := vault.EnsureDir(ctx, config.InboxPath); err != nil {
		log.Fatalf("failed to reach the vault repository: %v", err)
	}
	log.Info("connected to vault repository", "repo", cfg.RepoSlug())

	inboxSvc := inbox.NewService(vault, config.InboxPath)

	var (
		processor   *process.Service
		transcriber *transcribe.Service
	)
	if cfg.OpenAIKey != "" {
		client := openai.NewClient(cfg.OpenAIKey)
		transcriber = transcribe.NewService(client)
		if cfg.SmartProcessingEnabled() {
			processor = process.NewService(client, memory.NewRateLimiter(cfg.MaxLLMPerHour), cfg)
			log.Info("smart processing enabled", "model", cfg.Model)
		}
	} else {
		log.Warn("OPENAI_API_KEY not set, voice messages and smart processing are disabled")
	}

	bot, err := telegram.NewBot(cfg, inboxSvc, processor, transcriber, memory.NewSessionStore())
	if err != nil {
		log.Fatalf("failed to init telegram bot: %v", err)
	}

	if err := bot.Run(ctx); err != nil {
		if ctx.Err() != nil {
			log.Info("shutdown", "reason", err)
			return
		}
		log.Fatalf("bot stopped with error: %v", err)
	}
}
