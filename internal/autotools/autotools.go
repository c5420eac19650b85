// Package autotools drives an OTP source tree's own build scripts with a
// fixed cross-compilation setup.
package autotools

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
)

// XCompConf is the cross-compilation descriptor for the GRiSP board,
// relative to the OTP source root.
const XCompConf = "xcomp/erl-xcomp-arm-rtems5.conf"

// Builder runs the otp_build/make steps inside a staged OTP tree.
type Builder struct {
	SourceDir  string
	installDir string
	env        map[string]string
	stdout     io.Writer
	stderr     io.Writer
}

// New creates a Builder for the tree at sourceDir. Subcommand output is
// discarded unless SetOutput is called.
func New(sourceDir string) *Builder {
	return &Builder{
		SourceDir: sourceDir,
		env:       map[string]string{},
	}
}

// InstallDir sets the destination directory for Install. It must be an
// absolute path since the install step runs inside the source tree.
func (b *Builder) InstallDir(dir string) {
	b.installDir = dir
}

// Env sets an environment override for all subsequent commands.
func (b *Builder) Env(key, value string) {
	b.env[key] = value
}

// SetOutput streams subcommand output to the given writers.
func (b *Builder) SetOutput(stdout, stderr io.Writer) {
	b.stdout = stdout
	b.stderr = stderr
}

// Autoconf regenerates the configure scripts.
func (b *Builder) Autoconf(ctx context.Context) error {
	return b.run(ctx, "./otp_build", "autoconf")
}

// Configure runs otp_build configure with the fixed cross flags: threads
// off, the GRiSP xcomp descriptor and a root prefix.
func (b *Builder) Configure(ctx context.Context, args ...string) error {
	cfgArgs := []string{"configure",
		"--xcomp-conf=" + XCompConf,
		"--disable-threads",
		"--prefix=/",
	}
	cfgArgs = append(cfgArgs, args...)
	return b.run(ctx, "./otp_build", cfgArgs...)
}

// Boot builds the full system.
func (b *Builder) Boot(ctx context.Context) error {
	return b.run(ctx, "./otp_build", "boot", "-a")
}

// Install installs the built system into the configured destination.
func (b *Builder) Install(ctx context.Context) error {
	if b.installDir == "" {
		return errors.New("autotools: install dir is not set")
	}
	return b.run(ctx, "make", "install", "DESTDIR="+b.installDir)
}

func (b *Builder) run(ctx context.Context, bin string, args ...string) error {
	cmd := exec.CommandContext(ctx, b.lookPath(bin), args...)
	cmd.Dir = b.SourceDir

	var captured bytes.Buffer
	cmd.Stdout = &captured
	cmd.Stderr = &captured
	if b.stdout != nil {
		cmd.Stdout = io.MultiWriter(&captured, b.stdout)
	}
	if b.stderr != nil {
		cmd.Stderr = io.MultiWriter(&captured, b.stderr)
	}
	if len(b.env) > 0 {
		cmd.Env = mergeEnv(os.Environ(), b.env)
	}

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s %s (in %s): %w\n%s",
			bin, strings.Join(args, " "), b.SourceDir, err, tail(&captured))
	}
	return nil
}

// lookPath resolves bare command names against the overridden PATH, so a
// make shipped with the toolchain shadows the host one. exec.Command only
// consults the process environment, not cmd.Env.
func (b *Builder) lookPath(bin string) string {
	pathEnv, ok := b.env["PATH"]
	if !ok || strings.ContainsRune(bin, '/') {
		return bin
	}
	for _, dir := range filepath.SplitList(pathEnv) {
		if dir == "" {
			continue
		}
		p := filepath.Join(dir, bin)
		if info, err := os.Stat(p); err == nil && info.Mode().IsRegular() && info.Mode()&0111 != 0 {
			return p
		}
	}
	return bin
}

// tail keeps error messages readable when a build step produced megabytes of
// output.
func tail(buf *bytes.Buffer) string {
	const max = 4096
	s := strings.TrimSpace(buf.String())
	if len(s) <= max {
		return s
	}
	return "..." + s[len(s)-max:]
}

func mergeEnv(base []string, override map[string]string) []string {
	envMap := make(map[string]string, len(base))
	for _, kv := range base {
		if k, v, ok := strings.Cut(kv, "="); ok {
			envMap[k] = v
		}
	}
	for k, v := range override {
		envMap[k] = v
	}
	keys := make([]string, 0, len(envMap))
	for k := range envMap {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k+"="+envMap[k])
	}
	return out
}
