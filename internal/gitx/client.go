package gitx

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"
)

// Client is the interface for git operations used by the installer
// and updater.
type Client interface {
	Clone(ctx context.Context, url, destPath, tag string) error
	Pull(ctx context.Context, repoPath string) error
	CurrentCommit(repoPath string) (string, error)
	HasUpdates(ctx context.Context, repoPath string) (bool, error)
	IsRepository(path string) bool
}

// DefaultClient is the go-git backed client implementation.
type DefaultClient struct{}

// NewClient creates a new git client
func NewClient() *DefaultClient {
	return &DefaultClient{}
}

// Clone performs a shallow clone of url into destPath. When tag is
// non-empty the clone is pinned to that tag reference.
func (c *DefaultClient) Clone(ctx context.Context, url, destPath, tag string) error {
	opts := &git.CloneOptions{
		URL:          url,
		Depth:        1,
		SingleBranch: true,
	}
	if tag != "" {
		opts.ReferenceName = plumbing.NewTagReferenceName(tag)
	}

	if _, err := git.PlainCloneContext(ctx, destPath, false, opts); err != nil {
		// A failed clone may leave a partial checkout behind
		os.RemoveAll(destPath)
		if isAuthError(err) {
			return &AuthError{URL: url, Err: err}
		}
		return fmt.Errorf("git clone of %s failed: %w", url, err)
	}

	return nil
}

// Pull fast-forwards an existing checkout.
func (c *DefaultClient) Pull(ctx context.Context, repoPath string) error {
	repo, err := git.PlainOpen(repoPath)
	if err != nil {
		return fmt.Errorf("failed to open repository: %w", err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to get worktree: %w", err)
	}

	err = worktree.PullContext(ctx, &git.PullOptions{RemoteName: "origin"})
	if errors.Is(err, git.NoErrAlreadyUpToDate) {
		return nil
	}
	if err != nil {
		if isAuthError(err) {
			return &AuthError{URL: repoPath, Err: err}
		}
		return fmt.Errorf("git pull failed: %w", err)
	}

	return nil
}

// CurrentCommit returns the checkout's HEAD commit SHA.
func (c *DefaultClient) CurrentCommit(repoPath string) (string, error) {
	repo, err := git.PlainOpen(repoPath)
	if err != nil {
		return "", fmt.Errorf("failed to open repository: %w", err)
	}

	head, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("failed to get HEAD: %w", err)
	}

	return head.Hash().String(), nil
}

// HasUpdates reports whether the remote has commits the local
// checkout does not.
func (c *DefaultClient) HasUpdates(ctx context.Context, repoPath string) (bool, error) {
	repo, err := git.PlainOpen(repoPath)
	if err != nil {
		return false, fmt.Errorf("failed to open repository: %w", err)
	}

	err = repo.FetchContext(ctx, &git.FetchOptions{RemoteName: "origin"})
	if errors.Is(err, git.NoErrAlreadyUpToDate) {
		return false, nil
	}
	if err != nil {
		if isAuthError(err) {
			return false, &AuthError{URL: repoPath, Err: err}
		}
		return false, fmt.Errorf("git fetch failed: %w", err)
	}

	return true, nil
}

// IsRepository checks if the given path is a git checkout.
func (c *DefaultClient) IsRepository(path string) bool {
	if _, err := os.Stat(filepath.Join(path, ".git")); err != nil {
		return false
	}
	_, err := git.PlainOpen(path)
	return err == nil
}

// AuthError represents a git authentication error
type AuthError struct {
	URL string
	Err error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication failed for '%s': %v", e.URL, e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

func isAuthError(err error) bool {
	return errors.Is(err, transport.ErrAuthenticationRequired) ||
		errors.Is(err, transport.ErrAuthorizationFailed)
}
