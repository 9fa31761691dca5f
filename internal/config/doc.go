// SPDX-License-Identifier: MPL-2.0

// Package config handles application configuration using Viper with CUE as the file format.
//
// Configuration is loaded from ~/.config/swordctl/config.cue (or XDG equivalent on Linux,
// ~/Library/Application Support/swordctl/config.cue on macOS, %APPDATA%\swordctl\config.cue
// on Windows). The package provides type-safe configuration access covering the SWORD
// directory location, download transport tuning, batch install settings, and UI options.
//
// Configuration validation is performed against a CUE schema (config_schema.cue) to ensure
// type safety and provide clear error messages for invalid configurations.
package config
