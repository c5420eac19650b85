// Package build orchestrates a full cross-compiled OTP build: staging the
// pinned fork, overlaying board files, patching the emulator makefile and
// driving the autotools steps.
package build

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/grisp/otpbuild/internal/apps"
	"github.com/grisp/otpbuild/internal/autotools"
	"github.com/grisp/otpbuild/internal/build/lockedfile"
	"github.com/grisp/otpbuild/internal/env"
	"github.com/grisp/otpbuild/internal/otppatch"
	"github.com/grisp/otpbuild/internal/otpver"
	"github.com/grisp/otpbuild/internal/overlay"
	"github.com/grisp/otpbuild/internal/toolchain"
	"github.com/grisp/otpbuild/internal/vcs"
)

// BuildTarget identifies the pinned OTP revision being built and where its
// staged tree lives. Immutable once derived.
type BuildTarget struct {
	Version    string
	Remote     string
	Root       string
	BuildDir   string
	InstallDir string
}

// NewTarget derives the build and install directories for version under root.
func NewTarget(root, remote, version string) BuildTarget {
	return BuildTarget{
		Version:    version,
		Remote:     remote,
		Root:       root,
		BuildDir:   env.BuildDir(root, version),
		InstallDir: env.InstallDir(root, version),
	}
}

// Options control a single build run.
type Options struct {
	Clean   bool // drop untracked files from an existing checkout
	Verbose bool // stream subprocess output
}

// Builder runs the build pipeline.
type Builder struct {
	vcs       vcs.VCS
	toolchain toolchain.Config
	platform  string
	log       *log.Logger
}

// NewBuilder creates a Builder. The logger reports progress before each
// long-running step.
func NewBuilder(v vcs.VCS, tc toolchain.Config, platform string, logger *log.Logger) *Builder {
	return &Builder{
		vcs:       v,
		toolchain: tc,
		platform:  platform,
		log:       logger,
	}
}

// Build runs the whole pipeline for target: stage, overlay, patch,
// autoconf, configure, boot, install, normalize. The first failing step
// aborts the run.
func (b *Builder) Build(ctx context.Context, target BuildTarget, applications []apps.App, opts Options) error {
	if err := b.toolchain.Validate(); err != nil {
		return err
	}
	if err := toolchain.CheckHostTools(); err != nil {
		return err
	}

	versionDir := filepath.Dir(target.BuildDir)
	if err := os.MkdirAll(versionDir, 0755); err != nil {
		return err
	}
	unlock, err := lockedfile.MutexAt(filepath.Join(versionDir, ".lock")).Lock()
	if err != nil {
		return err
	}
	defer unlock()

	branch := otpver.Branch(target.Version)
	b.log.Info("staging OTP sources", "branch", branch, "dir", target.BuildDir)
	if err := b.vcs.Stage(ctx, target.Remote, branch, target.BuildDir); err != nil {
		return err
	}
	if opts.Clean {
		b.log.Info("cleaning checkout", "dir", target.BuildDir)
		if err := b.vcs.Clean(ctx, target.BuildDir); err != nil {
			return err
		}
	}

	b.log.Info("copying board overlay", "platform", b.platform, "apps", len(applications))
	drivers, err := overlay.Apply(target.BuildDir, b.platform, applications)
	if err != nil {
		return err
	}

	b.log.Info("registering drivers", "count", len(drivers))
	if err := otppatch.Apply(ctx, b.vcs, target.BuildDir, otppatch.NewContext(drivers)); err != nil {
		return err
	}

	installDir, err := filepath.Abs(target.InstallDir)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(installDir, 0755); err != nil {
		return err
	}

	at := autotools.New(target.BuildDir)
	at.InstallDir(installDir)
	for k, v := range b.toolchain.Env() {
		at.Env(k, v)
	}
	if opts.Verbose {
		at.SetOutput(os.Stdout, os.Stderr)
	}

	b.log.Info("running autoconf")
	if err := at.Autoconf(ctx); err != nil {
		return err
	}
	b.log.Info("configuring for cross compilation", "xcomp", autotools.XCompConf)
	if err := at.Configure(ctx); err != nil {
		return err
	}
	b.log.Info("building OTP, this can take a long time")
	if err := at.Boot(ctx); err != nil {
		return err
	}
	b.log.Info("installing", "dir", target.InstallDir)
	if err := at.Install(ctx); err != nil {
		return err
	}

	if err := normalizeInstall(installDir, target.Version); err != nil {
		return err
	}

	b.log.Info("OTP build done", "install", target.InstallDir)
	return nil
}

// normalizeInstall flattens the versioned wrapper directory the install step
// leaves behind, so lib/ and friends sit directly under dir.
func normalizeInstall(dir, version string) error {
	wrapper := filepath.Join(dir, version)
	entries, err := os.ReadDir(wrapper)
	if err != nil {
		return fmt.Errorf("install tree has no %s directory: %w", version, err)
	}
	for _, e := range entries {
		if err := os.Rename(filepath.Join(wrapper, e.Name()), filepath.Join(dir, e.Name())); err != nil {
			return err
		}
	}
	return os.Remove(wrapper)
}
