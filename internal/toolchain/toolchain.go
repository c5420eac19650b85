// Package toolchain locates the cross-compilation toolchain and derives the
// environment the OTP build commands run under.
package toolchain

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// RootEnv is the variable the OTP cross-compilation configuration reads the
// toolchain root from.
const RootEnv = "GRISP_TC_ROOT"

// Config locates the cross toolchain used for the OTP build.
type Config struct {
	Root string
}

// BinDir returns the directory holding the toolchain executables.
func (c Config) BinDir() string {
	return filepath.Join(c.Root, "bin")
}

// Validate checks that the toolchain root exists and carries at least one
// executable under bin.
func (c Config) Validate() error {
	if c.Root == "" {
		return errors.New("toolchain root is not configured")
	}
	info, err := os.Stat(c.Root)
	if err != nil {
		return fmt.Errorf("toolchain root %s: %w", c.Root, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("toolchain root %s is not a directory", c.Root)
	}

	bin := c.BinDir()
	entries, err := os.ReadDir(bin)
	if err != nil {
		return fmt.Errorf("toolchain bin directory %s: %w", bin, err)
	}
	for _, e := range entries {
		fi, err := e.Info()
		if err == nil && fi.Mode().IsRegular() && fi.Mode()&0111 != 0 {
			return nil
		}
	}
	return fmt.Errorf("no executable toolchain found under %s", bin)
}

// Env returns the environment overrides for the build commands: the
// toolchain root variable plus PATH with the toolchain bin directory in
// front, so the cross compiler shadows any host compiler of the same name.
func (c Config) Env() map[string]string {
	return map[string]string{
		RootEnv: c.Root,
		"PATH":  c.BinDir() + string(os.PathListSeparator) + os.Getenv("PATH"),
	}
}

// hostTools are the host-side utilities every build run needs on PATH.
var hostTools = []string{"git", "make", "autoconf"}

// MissingHostTools returns the host utilities absent from PATH.
func MissingHostTools() []string {
	var missing []string
	for _, bin := range hostTools {
		if _, err := exec.LookPath(bin); err != nil {
			missing = append(missing, bin)
		}
	}
	return missing
}

// CheckHostTools returns an error naming every missing host utility.
func CheckHostTools() error {
	if missing := MissingHostTools(); len(missing) > 0 {
		return fmt.Errorf("missing required build tools: %s", strings.Join(missing, ", "))
	}
	return nil
}
