// Package otpver handles OTP release version strings and the branch naming
// convention of the GRiSP OTP fork.
package otpver

import (
	"sort"
	"strings"

	"golang.org/x/mod/semver"
)

// BranchPrefix is the branch namespace holding GRiSP-patched OTP releases.
const BranchPrefix = "grisp/OTP-"

// canon converts an OTP version like "27.2" into the canonical form
// understood by golang.org/x/mod/semver.
func canon(version string) string {
	return "v" + strings.TrimPrefix(version, "v")
}

// IsValid reports whether version is a well-formed OTP release version.
func IsValid(version string) bool {
	return semver.IsValid(canon(version))
}

// Compare orders two OTP versions: -1 if a < b, 0 if equal, +1 if a > b.
func Compare(a, b string) int {
	return semver.Compare(canon(a), canon(b))
}

// Branch returns the fork branch carrying the given OTP version.
func Branch(version string) string {
	return BranchPrefix + version
}

// FromBranch extracts the OTP version from a fork branch name.
// It returns false for branches outside the release namespace.
func FromBranch(branch string) (string, bool) {
	version, ok := strings.CutPrefix(branch, BranchPrefix)
	if !ok || !IsValid(version) {
		return "", false
	}
	return version, true
}

// Sort orders versions in place, newest first.
func Sort(versions []string) {
	sort.Slice(versions, func(i, j int) bool {
		return Compare(versions[i], versions[j]) > 0
	})
}
