// Package overlay stages board-specific C sources from application
// directories into an OTP source tree.
package overlay

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/grisp/otpbuild/internal/apps"
)

// Destination directories inside the OTP tree, relative to its root.
const (
	SysDir    = "erts/emulator/sys/unix"
	DriverDir = "erts/emulator/drivers/unix"
)

// overlayRoot returns the board overlay directory of an application for the
// given platform, e.g. <app>/grisp/grisp_base.
func overlayRoot(app apps.App, platform string) string {
	return filepath.Join(app.Dir, "grisp", platform)
}

// Apply copies the board overlay of each application, in order, into the
// staged OTP tree at buildDir. System files land in SysDir, driver files in
// DriverDir; a later application overwrites earlier files with the same
// basename. The returned list holds the destination-relative paths of every
// driver file copied, in copy order, duplicates included. Applications
// without an overlay directory contribute nothing.
func Apply(buildDir, platform string, applications []apps.App) ([]string, error) {
	var drivers []string
	for _, app := range applications {
		root := overlayRoot(app, platform)

		if _, err := copyGlob(filepath.Join(root, "sys", "*.c"), filepath.Join(buildDir, SysDir)); err != nil {
			return nil, fmt.Errorf("overlay %s system files: %w", app.Name, err)
		}

		copied, err := copyGlob(filepath.Join(root, "drivers", "*.c"), filepath.Join(buildDir, DriverDir))
		if err != nil {
			return nil, fmt.Errorf("overlay %s driver files: %w", app.Name, err)
		}
		for _, name := range copied {
			drivers = append(drivers, filepath.Join(DriverDir, name))
		}
	}
	return drivers, nil
}

// copyGlob copies every file matching pattern into destDir, overwriting
// existing files, and returns the copied basenames. No matches is not an
// error; glob over a missing directory simply yields nothing.
func copyGlob(pattern, destDir string) ([]string, error) {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, nil
	}
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return nil, err
	}
	var copied []string
	for _, src := range matches {
		name := filepath.Base(src)
		if err := copyFile(src, filepath.Join(destDir, name)); err != nil {
			return nil, err
		}
		copied = append(copied, name)
	}
	return copied, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
