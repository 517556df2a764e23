// Package git provides repository metadata for run reports.
package git

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/runoshun/terrarun/internal/domain"
)

// Ensure Client implements domain.RepoInspector interface.
var _ domain.RepoInspector = (*Client)(nil)

// Client reads repository metadata with go-git.
type Client struct{}

// NewClient creates a new git client.
func NewClient() *Client {
	return &Client{}
}

// Inspect returns root, branch and HEAD commit of the repository containing dir.
// Branch is empty for a detached HEAD. Commit is empty for a repository without commits.
func (c *Client) Inspect(dir string) (*domain.RepoInfo, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve path %s: %w", dir, err)
	}

	repo, err := git.PlainOpenWithOptions(abs, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return nil, domain.ErrNotGitRepository
		}
		return nil, fmt.Errorf("open repository: %w", err)
	}

	info := &domain.RepoInfo{}
	if wt, err := repo.Worktree(); err == nil {
		info.Root = wt.Filesystem.Root()
	}

	head, err := repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return info, nil
		}
		return nil, fmt.Errorf("read HEAD: %w", err)
	}

	info.Commit = head.Hash().String()
	if head.Name().IsBranch() {
		info.Branch = head.Name().Short()
	}
	return info, nil
}
