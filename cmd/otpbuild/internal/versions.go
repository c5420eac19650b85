package internal

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/grisp/otpbuild/internal/config"
	"github.com/grisp/otpbuild/internal/otpver"
	"github.com/grisp/otpbuild/internal/vcs"
)

var versionsCmd = &cobra.Command{
	Use:   "versions",
	Short: "List OTP versions available on the GRiSP fork",
	Long:  `Versions queries the configured OTP fork and lists the release branches it carries, newest first.`,
	RunE:  runVersions,
}

func init() {
	rootCmd.AddCommand(versionsCmd)
}

func runVersions(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	branches, err := vcs.NewGitVCS().Branches(cmd.Context(), cfg.OTP.URL)
	if err != nil {
		return err
	}

	versions := releaseVersions(branches)
	if len(versions) == 0 {
		return fmt.Errorf("no OTP release branches found at %s", cfg.OTP.URL)
	}
	for _, v := range versions {
		fmt.Println(v)
	}
	return nil
}

// releaseVersions extracts the OTP versions from the fork's branch list,
// newest first.
func releaseVersions(branches []string) []string {
	var versions []string
	for _, branch := range branches {
		if v, ok := otpver.FromBranch(branch); ok {
			versions = append(versions, v)
		}
	}
	otpver.Sort(versions)
	return versions
}
