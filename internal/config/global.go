// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"sync"
)

var (
	globalMu sync.Mutex

	// globalConfig caches the last successful Load so every command in one
	// invocation sees the same configuration.
	globalConfig *Config

	// configPath is the file globalConfig was loaded from ("" for defaults).
	configPath string

	// configFilePathOverride is set by the --config flag.
	configFilePathOverride string

	// configDirOverride allows tests to override the config directory.
	// This is necessary because os.UserHomeDir() doesn't reliably respect
	// the HOME environment variable on all platforms (e.g., macOS in CI).
	configDirOverride string
)

// Load returns the process-wide configuration, loading it on first use.
// Subsequent calls return the cached value until an override resets it.
func Load() (*Config, error) {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalConfig != nil {
		return globalConfig, nil
	}

	cfg, resolved, err := loadWithOptions(context.Background(), LoadOptions{
		ConfigFilePath: configFilePathOverride,
	})
	if err != nil {
		return nil, err
	}

	globalConfig = cfg
	configPath = resolved
	return globalConfig, nil
}

// LoadedPath returns the file the cached configuration came from, or "" when
// defaults are in effect or nothing has been loaded yet.
func LoadedPath() string {
	globalMu.Lock()
	defer globalMu.Unlock()
	return configPath
}

// SetConfigFilePathOverride points Load at an explicit config file and drops
// any cached configuration.
func SetConfigFilePathOverride(path string) {
	globalMu.Lock()
	defer globalMu.Unlock()
	configFilePathOverride = path
	globalConfig = nil
	configPath = ""
}

// SetConfigDirOverride sets a custom config directory path.
// This is primarily intended for testing to bypass os.UserHomeDir() which
// doesn't reliably respect the HOME env var on all platforms (e.g., macOS in CI).
func SetConfigDirOverride(dir string) {
	globalMu.Lock()
	defer globalMu.Unlock()
	configDirOverride = dir
	globalConfig = nil
	configPath = ""
}

// Reset clears overrides and the cached configuration. Call from test cleanup
// to restore defaults.
func Reset() {
	globalMu.Lock()
	defer globalMu.Unlock()
	configDirOverride = ""
	configFilePathOverride = ""
	globalConfig = nil
	configPath = ""
}
