// Package otppatch synthesizes the source patch that registers board
// drivers in OTP's emulator makefile.
//
// The emulator makefile enumerates driver objects in a textual list. Instead
// of parsing and rewriting the makefile, the build renders a unified diff
// whose hunk grows by one line per driver and applies it with git. The hunk
// header's new line count must match the template's literal span exactly or
// git rejects the patch.
package otppatch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/grisp/otpbuild/internal/vcs"
)

// baseLines is the line span of the makefile hunk before any drivers are
// added. The hunk header declares baseLines plus one line per driver.
const baseLines = 10

// PatchName is the temporary patch file written into the staged tree.
const PatchName = "otp.patch"

// Driver is one template entry, named after the driver source file with its
// extension stripped.
type Driver struct {
	Name string
}

// Context feeds the patch template.
type Context struct {
	LineCount int
	Drivers   []Driver
}

// NewContext builds the template context for the given driver files.
func NewContext(driverFiles []string) Context {
	drivers := make([]Driver, 0, len(driverFiles))
	for _, file := range driverFiles {
		base := filepath.Base(file)
		drivers = append(drivers, Driver{Name: strings.TrimSuffix(base, filepath.Ext(base))})
	}
	return Context{
		LineCount: baseLines + len(drivers),
		Drivers:   drivers,
	}
}

// patchTemplate extends the OS_OBJS list of the emulator makefile in the
// pinned OTP fork. The ten context lines must stay in sync with baseLines.
var patchTemplate = template.Must(template.New(PatchName).Parse(`--- a/erts/emulator/Makefile.in
+++ b/erts/emulator/Makefile.in
@@ -633,10 +633,{{.LineCount}} @@ else
 OS_OBJS = \
 	$(OBJDIR)/sys.o \
 	$(OBJDIR)/sys_drivers.o \
 	$(OBJDIR)/sys_env.o \
 	$(OBJDIR)/sys_uds.o \
 	$(OBJDIR)/driver_tab.o \
 	$(OBJDIR)/unix_efile.o \
 	$(OBJDIR)/gzio.o \
{{range .Drivers}}+	$(OBJDIR)/{{.Name}}.o \
{{end}} 	$(OBJDIR)/elib_memmove.o
 endif
`))

// Render produces the patch text for the given context.
func Render(pc Context) (string, error) {
	var b strings.Builder
	if err := patchTemplate.Execute(&b, pc); err != nil {
		return "", fmt.Errorf("render patch: %w", err)
	}
	return b.String(), nil
}

// Apply renders the patch for pc, writes it into the staged tree at
// buildDir, applies it with v and removes the patch file again.
func Apply(ctx context.Context, v vcs.VCS, buildDir string, pc Context) error {
	text, err := Render(pc)
	if err != nil {
		return err
	}
	path := filepath.Join(buildDir, PatchName)
	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		return fmt.Errorf("write patch: %w", err)
	}
	if err := v.Apply(ctx, buildDir, PatchName); err != nil {
		return err
	}
	return os.Remove(path)
}
