// Package github stores vault files through the GitHub contents API.
package github

import (
	"context"
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"
	gh "github.com/google/go-github/v66/github"

	"obsidian-vault-bot/internal/domain"
)

// Vault reads and writes files on a single branch of the vault repo.
type Vault struct {
	client *gh.Client
	owner  string
	repo   string
	branch string
}

func NewVault(token, owner, repo, branch string) *Vault {
	return &Vault{
		client: gh.NewClient(nil).WithAuthToken(token),
		owner:  owner,
		repo:   repo,
		branch: branch,
	}
}

// Get returns the decoded content and blob SHA of a file.
func (v *Vault) Get(ctx context.Context, path string) (string, string, error) {
	fc, _, resp, err := v.client.Repositories.GetContents(ctx, v.owner, v.repo, path,
		&gh.RepositoryContentGetOptions{Ref: v.branch})
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return "", "", domain.ErrFileNotFound
		}
		return "", "", fmt.Errorf("getting %s: %w", path, err)
	}
	if fc == nil {
		return "", "", fmt.Errorf("%s is a directory, not a file", path)
	}

	content, err := fc.GetContent()
	if err != nil {
		return "", "", fmt.Errorf("decoding %s: %w", path, err)
	}
	return content, fc.GetSHA(), nil
}

// Create adds a new file on the branch.
func (v *Vault) Create(ctx context.Context, path, content, message string) error {
	_, _, err := v.client.Repositories.CreateFile(ctx, v.owner, v.repo, path,
		&gh.RepositoryContentFileOptions{
			Message: gh.String(message),
			Content: []byte(content),
			Branch:  gh.String(v.branch),
		})
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	return nil
}

// Update replaces an existing file. The SHA must match the current blob.
func (v *Vault) Update(ctx context.Context, path, content, sha, message string) error {
	_, _, err := v.client.Repositories.UpdateFile(ctx, v.owner, v.repo, path,
		&gh.RepositoryContentFileOptions{
			Message: gh.String(message),
			Content: []byte(content),
			Branch:  gh.String(v.branch),
			SHA:     gh.String(sha),
		})
	if err != nil {
		return fmt.Errorf("updating %s: %w", path, err)
	}
	return nil
}

// EnsureDir creates the directory with a .gitkeep marker when it does
// not exist yet. GitHub does not track empty directories.
func (v *Vault) EnsureDir(ctx context.Context, dir string) error {
	_, _, resp, err := v.client.Repositories.GetContents(ctx, v.owner, v.repo, dir,
		&gh.RepositoryContentGetOptions{Ref: v.branch})
	if err == nil {
		return nil
	}
	if resp == nil || resp.StatusCode != http.StatusNotFound {
		return fmt.Errorf("checking %s: %w", dir, err)
	}

	if err := v.Create(ctx, dir+"/.gitkeep", "", fmt.Sprintf("Create %s folder", dir)); err != nil {
		return err
	}
	log.Info("created vault folder", "dir", dir)
	return nil
}
