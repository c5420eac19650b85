package vcs

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// VCS defines the version control operations the build pipeline needs.
type VCS interface {
	// Stage ensures dir holds a working copy of remote checked out at
	// branch, with local modifications discarded. If dir carries no
	// repository metadata, the remote is cloned first.
	Stage(ctx context.Context, remote, branch, dir string) error

	// Clean removes untracked files from the working copy, including
	// ignored ones.
	Clean(ctx context.Context, dir string) error

	// Apply applies a patch file (relative to dir) to the working copy.
	Apply(ctx context.Context, dir, patchFile string) error

	// Branches returns all branch names of the remote repository.
	Branches(ctx context.Context, remote string) ([]string, error)
}

// gitVCS implements VCS using git.
type gitVCS struct {
	git string
}

// GitOption configures gitVCS.
type GitOption func(*gitVCS)

// WithGitPath sets a custom git executable path.
func WithGitPath(path string) GitOption {
	return func(g *gitVCS) {
		g.git = path
	}
}

// NewGitVCS creates a new git VCS instance.
func NewGitVCS(opts ...GitOption) VCS {
	g := &gitVCS{git: "git"}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *gitVCS) Stage(ctx context.Context, remote, branch, dir string) error {
	info, err := os.Stat(filepath.Join(dir, ".git"))
	switch {
	case os.IsNotExist(err):
		if err := os.MkdirAll(filepath.Dir(dir), 0755); err != nil {
			return err
		}
		if err := g.run(ctx, "", "clone", remote, dir); err != nil {
			return fmt.Errorf("clone %s: %w", remote, err)
		}
	case err != nil:
		return err
	case !info.IsDir():
		// A stray file where the metadata directory belongs. Recloning
		// over it would hide whatever put it there.
		return fmt.Errorf("%s exists but is not a git working copy", dir)
	}
	if err := g.run(ctx, dir, "checkout", branch); err != nil {
		return fmt.Errorf("checkout %s: %w", branch, err)
	}
	if err := g.run(ctx, dir, "reset", "--hard", branch); err != nil {
		return fmt.Errorf("reset %s: %w", branch, err)
	}
	return nil
}

func (g *gitVCS) Clean(ctx context.Context, dir string) error {
	// -x drops ignored files as well, -d recurses into directories.
	if err := g.run(ctx, dir, "clean", "-fxd"); err != nil {
		return fmt.Errorf("clean: %w", err)
	}
	return nil
}

func (g *gitVCS) Apply(ctx context.Context, dir, patchFile string) error {
	if err := g.run(ctx, dir, "apply", patchFile); err != nil {
		return fmt.Errorf("apply %s: %w", patchFile, err)
	}
	return nil
}

func (g *gitVCS) Branches(ctx context.Context, remote string) ([]string, error) {
	output, err := g.output(ctx, "", "ls-remote", "--heads", remote)
	if err != nil {
		return nil, fmt.Errorf("list remote branches: %w", err)
	}

	output = strings.TrimSpace(output)
	if output == "" {
		return nil, nil
	}

	var branches []string
	for _, line := range strings.Split(output, "\n") {
		// format: <hash>\trefs/heads/<branch>
		parts := strings.Split(line, "\t")
		if len(parts) == 2 {
			branch := strings.TrimPrefix(parts[1], "refs/heads/")
			branches = append(branches, branch)
		}
	}
	return branches, nil
}

func (g *gitVCS) run(ctx context.Context, dir string, args ...string) error {
	_, err := g.output(ctx, dir, args...)
	return err
}

func (g *gitVCS) output(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, g.git, args...)
	if dir != "" {
		cmd.Dir = dir
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		where := dir
		if where == "" {
			where = "."
		}
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = strings.TrimSpace(stdout.String())
		}
		if msg != "" {
			return "", fmt.Errorf("git %s (in %s): %s", strings.Join(args, " "), where, msg)
		}
		return "", fmt.Errorf("git %s (in %s): %w", strings.Join(args, " "), where, err)
	}
	return stdout.String(), nil
}
