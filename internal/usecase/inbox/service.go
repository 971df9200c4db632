// Package inbox appends notes to the vault's daily inbox files.
package inbox

import (
	"context"
	"errors"
	"fmt"
	"path"
	"time"

	"obsidian-vault-bot/internal/domain"
	"obsidian-vault-bot/internal/vault"
)

// Repository is the remote file store the daily notes live in.
type Repository interface {
	Get(ctx context.Context, path string) (content, sha string, err error)
	Create(ctx context.Context, path, content, message string) error
	Update(ctx context.Context, path, content, sha, message string) error
}

// SaveRequest is one note to put into today's daily file.
type SaveRequest struct {
	Text   string
	Voice  *domain.VoiceMeta
	Result *domain.ProcessingResult
}

type Service struct {
	repo Repository
	dir  string
	now  func() time.Time
}

func NewService(repo Repository, dir string) *Service {
	return &Service{
		repo: repo,
		dir:  dir,
		now:  time.Now,
	}
}

// Save appends the note to today's daily file, creating the file for
// the first note of the day. It returns a status line for the user.
func (s *Service) Save(ctx context.Context, req SaveRequest) (string, error) {
	now := s.now()
	filename := vault.Filename(now)
	filePath := path.Join(s.dir, filename)

	entry := vault.Entry{
		Time:   now.Format("15:04"),
		Text:   req.Text,
		Voice:  req.Voice,
		Result: req.Result,
	}

	content, sha, err := s.repo.Get(ctx, filePath)
	switch {
	case err == nil:
		message := fmt.Sprintf("Add note to %s at %s", filename, entry.Time)
		status := "✅ Added to " + filename
		if req.Voice != nil {
			message = fmt.Sprintf("Add voice note to %s at %s", filename, entry.Time)
			status = "✅ Added voice note to " + filename
		}
		if err := s.repo.Update(ctx, filePath, content+entry.Render(), sha, message); err != nil {
			return "", fmt.Errorf("updating %s: %w", filePath, err)
		}
		return status, nil

	case errors.Is(err, domain.ErrFileNotFound):
		note, err := vault.NewDaily(now, entry)
		if err != nil {
			return "", err
		}
		if err := s.repo.Create(ctx, filePath, note, "Create daily note: "+filename); err != nil {
			return "", fmt.Errorf("creating %s: %w", filePath, err)
		}
		status := "✅ Created " + filename
		if req.Voice != nil {
			status += " with voice note"
		}
		return status, nil

	default:
		return "", fmt.Errorf("reading %s: %w", filePath, err)
	}
}
