package env

import "path/filepath"

// DefaultRoot is the directory holding staged OTP trees when the project
// configuration does not override it.
const DefaultRoot = "_grisp"

// BuildDir returns the staging directory for an OTP source tree.
func BuildDir(root, version string) string {
	return filepath.Join(root, "otp", version, "build")
}

// InstallDir returns the directory the built runtime is installed into.
func InstallDir(root, version string) string {
	return filepath.Join(root, "otp", version, "install")
}
