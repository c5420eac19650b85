package otppatch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

// recordingVCS implements vcs.VCS and records Apply calls.
type recordingVCS struct {
	applied   []string
	patchSeen string // patch content at the time Apply ran
	fail      bool
}

func (r *recordingVCS) Stage(ctx context.Context, remote, branch, dir string) error { return nil }
func (r *recordingVCS) Clean(ctx context.Context, dir string) error                 { return nil }
func (r *recordingVCS) Branches(ctx context.Context, remote string) ([]string, error) {
	return nil, nil
}

func (r *recordingVCS) Apply(ctx context.Context, dir, patchFile string) error {
	if r.fail {
		return fmt.Errorf("apply %s: corrupt patch", patchFile)
	}
	content, err := os.ReadFile(filepath.Join(dir, patchFile))
	if err != nil {
		return err
	}
	r.applied = append(r.applied, patchFile)
	r.patchSeen = string(content)
	return nil
}

func TestNewContext(t *testing.T) {
	pc := NewContext([]string{
		"erts/emulator/drivers/unix/grisp_termios_drv.c",
		"erts/emulator/drivers/unix/grisp_spi_drv.c",
	})

	if pc.LineCount != 12 {
		t.Errorf("LineCount = %d, want 12", pc.LineCount)
	}
	want := []Driver{{Name: "grisp_termios_drv"}, {Name: "grisp_spi_drv"}}
	if !reflect.DeepEqual(pc.Drivers, want) {
		t.Errorf("Drivers = %v, want %v", pc.Drivers, want)
	}
}

func TestNewContextEmpty(t *testing.T) {
	pc := NewContext(nil)
	if pc.LineCount != 10 {
		t.Errorf("LineCount = %d, want 10", pc.LineCount)
	}
	if len(pc.Drivers) != 0 {
		t.Errorf("Drivers = %v, want none", pc.Drivers)
	}
}

func TestNewContextLineCount(t *testing.T) {
	var files []string
	for n := 0; n <= 5; n++ {
		if pc := NewContext(files); pc.LineCount != 10+n {
			t.Errorf("LineCount with %d drivers = %d, want %d", n, pc.LineCount, 10+n)
		}
		files = append(files, fmt.Sprintf("drv%d.c", n))
	}
}

func TestRender(t *testing.T) {
	text, err := Render(NewContext([]string{"drv1.c", "drv2.c"}))
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	if !strings.Contains(text, "@@ -633,10 +633,12 @@") {
		t.Errorf("hunk header missing or wrong:\n%s", text)
	}
	for _, want := range []string{
		"+\t$(OBJDIR)/drv1.o \\",
		"+\t$(OBJDIR)/drv2.o \\",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("rendered patch missing %q:\n%s", want, text)
		}
	}
}

// TestRenderSpanMatchesHeader checks the invariant the whole scheme depends
// on: the declared new-side line count equals the hunk's actual span.
func TestRenderSpanMatchesHeader(t *testing.T) {
	for n := 0; n <= 4; n++ {
		var files []string
		for i := 0; i < n; i++ {
			files = append(files, fmt.Sprintf("drv%d.c", i))
		}
		pc := NewContext(files)
		text, err := Render(pc)
		if err != nil {
			t.Fatalf("Render failed: %v", err)
		}

		var span int
		for _, line := range strings.Split(text, "\n") {
			if strings.HasPrefix(line, " ") || strings.HasPrefix(line, "+\t") {
				span++
			}
		}
		if span != pc.LineCount {
			t.Errorf("%d drivers: hunk spans %d lines, header declares %d\n%s",
				n, span, pc.LineCount, text)
		}
	}
}

func TestApply(t *testing.T) {
	buildDir := t.TempDir()
	rec := &recordingVCS{}
	pc := NewContext([]string{"drv1.c"})

	if err := Apply(context.Background(), rec, buildDir, pc); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	if len(rec.applied) != 1 || rec.applied[0] != PatchName {
		t.Errorf("applied = %v, want [%s]", rec.applied, PatchName)
	}
	want, err := Render(pc)
	if err != nil {
		t.Fatal(err)
	}
	if rec.patchSeen != want {
		t.Errorf("patch content at apply time = %q, want rendered text", rec.patchSeen)
	}
	// The patch file is removed after a successful apply.
	if _, err := os.Stat(filepath.Join(buildDir, PatchName)); !os.IsNotExist(err) {
		t.Errorf("%s should be removed after Apply", PatchName)
	}
}

func TestApplyFailure(t *testing.T) {
	buildDir := t.TempDir()
	rec := &recordingVCS{fail: true}

	err := Apply(context.Background(), rec, buildDir, NewContext([]string{"drv1.c"}))
	if err == nil {
		t.Fatal("Apply should propagate the VCS failure")
	}
	if !strings.Contains(err.Error(), "corrupt patch") {
		t.Errorf("unexpected error: %v", err)
	}
}
