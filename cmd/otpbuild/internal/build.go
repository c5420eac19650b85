package internal

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/grisp/otpbuild/internal/apps"
	"github.com/grisp/otpbuild/internal/build"
	"github.com/grisp/otpbuild/internal/config"
	"github.com/grisp/otpbuild/internal/toolchain"
	"github.com/grisp/otpbuild/internal/vcs"
)

var buildClean bool

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the custom OTP runtime",
	Long: `Build stages the pinned GRiSP OTP fork, overlays board drivers and
system files from the project applications, and cross-compiles the runtime.`,
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().BoolVar(&buildClean, "clean", false,
		"Remove untracked files from an existing checkout before building")
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	deps, err := apps.Scan(cfg.Apps.DepsDir)
	if err != nil {
		return err
	}
	resolved := apps.Resolve(deps, projectApps(cfg.Apps.Project))

	target := build.NewTarget(cfg.Build.Root, cfg.OTP.URL, cfg.OTP.Version)
	builder := build.NewBuilder(
		vcs.NewGitVCS(),
		toolchain.Config{Root: cfg.Toolchain.Root},
		cfg.Platform,
		logger,
	)
	return builder.Build(cmd.Context(), target, resolved, build.Options{
		Clean:   buildClean,
		Verbose: verbose,
	})
}

// projectApps turns configured application directories into descriptors,
// named after their directory.
func projectApps(dirs []string) []apps.App {
	out := make([]apps.App, 0, len(dirs))
	for _, dir := range dirs {
		out = append(out, apps.App{Name: filepath.Base(dir), Dir: dir})
	}
	return out
}
