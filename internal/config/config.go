// Package config loads the project configuration for an OTP build. The
// orchestrator receives an explicit Config; nothing reads global state.
package config

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"

	"github.com/grisp/otpbuild/internal/env"
	"github.com/grisp/otpbuild/internal/otpver"
)

// Defaults applied when the project configuration leaves a key unset.
const (
	DefaultPlatform   = "grisp_base"
	DefaultOTPVersion = "27.2"
	DefaultOTPURL     = "https://github.com/grisp/otp"
	DefaultDepsDir    = "deps"
)

// Config carries everything a build run needs.
type Config struct {
	Platform  string
	OTP       OTP
	Build     Build
	Apps      Apps
	Toolchain Toolchain
}

// OTP pins the source revision to build.
type OTP struct {
	Version string
	URL     string
}

// Build locates the staging area.
type Build struct {
	Root string
}

// Apps names the application directories contributing overlay files.
type Apps struct {
	Project []string
	DepsDir string `mapstructure:"deps_dir"`
}

// Toolchain locates the cross toolchain.
type Toolchain struct {
	Root string
}

// Load reads the configuration from path, or from grisp.yaml in the current
// directory when path is empty. A missing default file is not an error; the
// defaults apply.
func Load(path string) (*Config, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("grisp")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetDefault("platform", DefaultPlatform)
	v.SetDefault("otp.version", DefaultOTPVersion)
	v.SetDefault("otp.url", DefaultOTPURL)
	v.SetDefault("build.root", env.DefaultRoot)
	v.SetDefault("apps.deps_dir", DefaultDepsDir)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the fields every command depends on. Toolchain presence is
// checked later, by the build itself; listing versions needs no toolchain.
func (c *Config) Validate() error {
	if c.Platform == "" {
		return errors.New("platform is not configured")
	}
	if !otpver.IsValid(c.OTP.Version) {
		return fmt.Errorf("invalid OTP version %q", c.OTP.Version)
	}
	if c.OTP.URL == "" {
		return errors.New("otp.url is not configured")
	}
	if c.Build.Root == "" {
		return errors.New("build.root is not configured")
	}
	return nil
}
