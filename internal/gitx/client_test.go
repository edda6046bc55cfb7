package gitx

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-git/go-git/v5/plumbing/transport"
)

func TestIsRepositoryOnPlainDir(t *testing.T) {
	c := NewClient()
	if c.IsRepository(t.TempDir()) {
		t.Fatalf("a plain directory is not a repository")
	}
	if c.IsRepository(filepath.Join(t.TempDir(), "missing")) {
		t.Fatalf("a missing path is not a repository")
	}
}

func TestCloneFailureLeavesNoCheckout(t *testing.T) {
	c := NewClient()
	dest := filepath.Join(t.TempDir(), "checkout")

	err := c.Clone(context.Background(), filepath.Join(t.TempDir(), "no-such-repo"), dest, "")
	if err == nil {
		t.Fatalf("cloning a nonexistent source must fail")
	}
	if _, statErr := os.Stat(dest); !os.IsNotExist(statErr) {
		t.Fatalf("failed clone must not leave a partial checkout")
	}
}

func TestAuthErrorClassification(t *testing.T) {
	if !isAuthError(transport.ErrAuthenticationRequired) {
		t.Fatalf("authentication-required must classify as auth error")
	}
	if !isAuthError(transport.ErrAuthorizationFailed) {
		t.Fatalf("authorization-failed must classify as auth error")
	}
	if isAuthError(errors.New("connection refused")) {
		t.Fatalf("ordinary errors must not classify as auth errors")
	}

	ae := &AuthError{URL: "https://github.com/x/y", Err: transport.ErrAuthenticationRequired}
	if !errors.Is(ae, transport.ErrAuthenticationRequired) {
		t.Fatalf("AuthError must unwrap to its cause")
	}
}
