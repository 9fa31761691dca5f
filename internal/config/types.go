// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrInvalidDownloadConfig is the sentinel error wrapped by InvalidDownloadConfigError.
	ErrInvalidDownloadConfig = errors.New("invalid download config")
	// ErrInvalidInstallConfig is the sentinel error wrapped by InvalidInstallConfigError.
	ErrInvalidInstallConfig = errors.New("invalid install config")
	// ErrInvalidSwordDir is returned when a SwordDir value is whitespace-only.
	ErrInvalidSwordDir = errors.New("invalid sword directory")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// DownloadConfig tunes the transport client used for indexes and packages.
	DownloadConfig struct {
		// TimeoutSeconds is the per-request timeout in seconds.
		TimeoutSeconds int `mapstructure:"timeout_seconds"`
		// MaxRetries is the number of additional HTTP attempts after the first.
		MaxRetries int `mapstructure:"max_retries"`
		// RetryDelayMS is the wait between HTTP attempts, in milliseconds.
		RetryDelayMS int `mapstructure:"retry_delay_ms"`
		// UserAgent is the User-Agent header sent on HTTP requests.
		UserAgent string `mapstructure:"user_agent"`
	}

	// InvalidDownloadConfigError is returned when DownloadConfig validation fails.
	// It wraps ErrInvalidDownloadConfig for errors.Is() compatibility.
	InvalidDownloadConfigError struct {
		Field  string
		Reason string
	}

	// InstallConfig tunes batch installation.
	InstallConfig struct {
		// Workers is the number of parallel download workers.
		Workers int `mapstructure:"workers"`
		// SkipInstalled skips modules that are already installed.
		SkipInstalled bool `mapstructure:"skip_installed"`
	}

	// InvalidInstallConfigError is returned when InstallConfig validation fails.
	// It wraps ErrInvalidInstallConfig for errors.Is() compatibility.
	InvalidInstallConfigError struct {
		Field  string
		Reason string
	}

	// UIConfig holds user interface preferences.
	UIConfig struct {
		// Verbose enables debug-level logging.
		Verbose bool `mapstructure:"verbose"`
	}

	// InvalidConfigError is returned when top-level Config validation fails.
	// It wraps ErrInvalidConfig for errors.Is() compatibility.
	InvalidConfigError struct {
		Cause error
	}

	// Config is the top-level swordctl configuration.
	Config struct {
		// SwordDir is the SWORD directory holding mods.d and modules.
		// Empty means ~/.sword.
		SwordDir string `mapstructure:"sword_dir"`

		// Download tunes the transport client.
		Download DownloadConfig `mapstructure:"download"`

		// Install tunes batch installation.
		Install InstallConfig `mapstructure:"install"`

		// UI holds user interface preferences.
		UI UIConfig `mapstructure:"ui"`
	}
)

// --- Error implementations ---

// Error implements the error interface.
func (e *InvalidDownloadConfigError) Error() string {
	return fmt.Sprintf("invalid download config: %s: %s", e.Field, e.Reason)
}

// Unwrap returns ErrInvalidDownloadConfig for errors.Is() checks.
func (e *InvalidDownloadConfigError) Unwrap() error { return ErrInvalidDownloadConfig }

// Error implements the error interface.
func (e *InvalidInstallConfigError) Error() string {
	return fmt.Sprintf("invalid install config: %s: %s", e.Field, e.Reason)
}

// Unwrap returns ErrInvalidInstallConfig for errors.Is() checks.
func (e *InvalidInstallConfigError) Unwrap() error { return ErrInvalidInstallConfig }

// Error implements the error interface.
func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid config: %v", e.Cause)
}

// Unwrap exposes both the sentinel and the section cause for errors.Is().
func (e *InvalidConfigError) Unwrap() []error { return []error{ErrInvalidConfig, e.Cause} }

// --- Validation ---

// Validate checks the download section for out-of-range values.
func (d *DownloadConfig) Validate() error {
	if d.TimeoutSeconds <= 0 {
		return &InvalidDownloadConfigError{Field: "timeout_seconds", Reason: "must be positive"}
	}
	if d.MaxRetries < 0 {
		return &InvalidDownloadConfigError{Field: "max_retries", Reason: "must not be negative"}
	}
	if d.RetryDelayMS < 0 {
		return &InvalidDownloadConfigError{Field: "retry_delay_ms", Reason: "must not be negative"}
	}
	return nil
}

// Timeout returns the per-request timeout as a duration.
func (d *DownloadConfig) Timeout() time.Duration {
	return time.Duration(d.TimeoutSeconds) * time.Second
}

// RetryDelay returns the wait between attempts as a duration.
func (d *DownloadConfig) RetryDelay() time.Duration {
	return time.Duration(d.RetryDelayMS) * time.Millisecond
}

// Validate checks the install section for out-of-range values.
func (i *InstallConfig) Validate() error {
	if i.Workers < 1 {
		return &InvalidInstallConfigError{Field: "workers", Reason: "must be at least 1"}
	}
	return nil
}

// Validate checks the whole configuration. A nil error means every section
// passed.
func (c *Config) Validate() error {
	if c.SwordDir != "" && strings.TrimSpace(c.SwordDir) == "" {
		return &InvalidConfigError{Cause: ErrInvalidSwordDir}
	}
	if err := c.Download.Validate(); err != nil {
		return &InvalidConfigError{Cause: err}
	}
	if err := c.Install.Validate(); err != nil {
		return &InvalidConfigError{Cause: err}
	}
	return nil
}

// DefaultConfig returns the configuration used when no config file exists.
func DefaultConfig() *Config {
	return &Config{
		SwordDir: "",
		Download: DownloadConfig{
			TimeoutSeconds: 60,
			MaxRetries:     3,
			RetryDelayMS:   1000,
			UserAgent:      "swordctl/1.0",
		},
		Install: InstallConfig{
			Workers:       4,
			SkipInstalled: true,
		},
		UI: UIConfig{
			Verbose: false,
		},
	}
}
