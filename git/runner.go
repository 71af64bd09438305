// Package git provides access to git operations via shell commands.
package git

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/fwojciec/blame"
)

// Compile-time interface verification.
var _ blame.Resolver = (*Runner)(nil)

// Runner executes git commands via shell in one repository.
type Runner struct {
	RepoPath string
}

// NewRunner creates a new git runner for the repository at repoPath.
func NewRunner(repoPath string) *Runner {
	return &Runner{RepoPath: repoPath}
}

// Resolve returns the commit a revision names. It accepts every revision
// syntax git does, including reflog entries and abbreviated hashes.
func (r *Runner) Resolve(rev string) (blame.ObjectID, error) {
	out, err := r.run(context.Background(), "rev-parse", "--verify", "--quiet", "--end-of-options", rev+"^{commit}")
	if err != nil {
		return blame.ObjectID{}, fmt.Errorf("resolve %q: %w", rev, err)
	}
	return blame.ParseObjectID(strings.TrimSpace(out))
}

// IgnoreRevsFile returns the blame.ignoreRevsFile setting, or an empty
// string if it is not set.
func (r *Runner) IgnoreRevsFile(ctx context.Context) (string, error) {
	out, err := r.run(ctx, "config", "--get", "blame.ignoreRevsFile")
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
		// Key not set.
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// TopLevel returns the absolute path of the top of the work tree.
func (r *Runner) TopLevel(ctx context.Context) (string, error) {
	out, err := r.run(ctx, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// Prefix returns the slash separated path of the runner's directory below
// the top of the work tree, with a trailing slash, or an empty string at the
// top itself.
func (r *Runner) Prefix(ctx context.Context) (string, error) {
	out, err := r.run(ctx, "rev-parse", "--show-prefix")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func (r *Runner) run(ctx context.Context, args ...string) (string, error) {
	args = append([]string{"-C", r.RepoPath}, args...)
	cmd := exec.CommandContext(ctx, "git", args...)
	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			return "", fmt.Errorf("git %s failed: %s: %w", args[2], strings.TrimSpace(string(exitErr.Stderr)), err)
		}
		return "", fmt.Errorf("git %s failed: %w", args[2], err)
	}
	return string(output), nil
}
