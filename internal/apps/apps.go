// Package apps resolves the ordered list of applications contributing board
// overlay files to an OTP build.
package apps

import (
	"os"
	"path/filepath"
)

// HardwareApp is the application whose overlay files take final precedence.
const HardwareApp = "grisp"

// App describes one application contributing overlay files: a project
// application or a checked-out dependency.
type App struct {
	Name string
	Dir  string
}

// Resolve concatenates dependency and project applications, in that order,
// then moves every hardware-support entry behind all others so its files are
// copied last and win any conflict. Relative order inside each group is
// preserved and duplicates are kept.
func Resolve(deps, project []App) []App {
	all := make([]App, 0, len(deps)+len(project))
	all = append(all, deps...)
	all = append(all, project...)

	resolved := make([]App, 0, len(all))
	var hardware []App
	for _, app := range all {
		if app.Name == HardwareApp {
			hardware = append(hardware, app)
			continue
		}
		resolved = append(resolved, app)
	}
	return append(resolved, hardware...)
}

// Scan lists the applications checked out under dir, one per subdirectory,
// in lexical order. A missing dir yields no applications.
func Scan(dir string) ([]App, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var out []App
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		out = append(out, App{Name: e.Name(), Dir: filepath.Join(dir, e.Name())})
	}
	return out, nil
}
