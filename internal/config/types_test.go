// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config must validate: %v", err)
	}
	if cfg.SwordDir != "" {
		t.Errorf("SwordDir = %q, want empty (meaning ~/.sword)", cfg.SwordDir)
	}
	if cfg.Download.TimeoutSeconds != 60 {
		t.Errorf("TimeoutSeconds = %d, want 60", cfg.Download.TimeoutSeconds)
	}
	if cfg.Install.Workers != 4 {
		t.Errorf("Workers = %d, want 4", cfg.Install.Workers)
	}
	if !cfg.Install.SkipInstalled {
		t.Error("SkipInstalled should default to true")
	}
}

func TestDownloadConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     DownloadConfig
		wantErr bool
	}{
		{"valid", DownloadConfig{TimeoutSeconds: 60, MaxRetries: 3, RetryDelayMS: 1000}, false},
		{"zero timeout", DownloadConfig{TimeoutSeconds: 0, MaxRetries: 3}, true},
		{"negative retries", DownloadConfig{TimeoutSeconds: 60, MaxRetries: -1}, true},
		{"negative delay", DownloadConfig{TimeoutSeconds: 60, RetryDelayMS: -5}, true},
		{"zero retries is fine", DownloadConfig{TimeoutSeconds: 60, MaxRetries: 0}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidDownloadConfig) {
				t.Errorf("error should wrap ErrInvalidDownloadConfig, got %v", err)
			}
		})
	}
}

func TestDownloadConfig_Durations(t *testing.T) {
	t.Parallel()

	d := DownloadConfig{TimeoutSeconds: 90, RetryDelayMS: 250}
	if got := d.Timeout(); got != 90*time.Second {
		t.Errorf("Timeout() = %v, want 90s", got)
	}
	if got := d.RetryDelay(); got != 250*time.Millisecond {
		t.Errorf("RetryDelay() = %v, want 250ms", got)
	}
}

func TestInstallConfig_Validate(t *testing.T) {
	t.Parallel()

	valid := InstallConfig{Workers: 1}
	if err := valid.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	invalid := InstallConfig{Workers: 0}
	err := invalid.Validate()
	if err == nil {
		t.Fatal("expected error for zero workers")
	}
	if !errors.Is(err, ErrInvalidInstallConfig) {
		t.Errorf("error should wrap ErrInvalidInstallConfig, got %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Download.TimeoutSeconds = -1

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("error should wrap ErrInvalidConfig, got %v", err)
	}
	if !errors.Is(err, ErrInvalidDownloadConfig) {
		t.Errorf("error should also wrap the section error, got %v", err)
	}
}

func TestConfig_Validate_WhitespaceSwordDir(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.SwordDir = "   "

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for whitespace-only sword_dir")
	}
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("error should wrap ErrInvalidConfig, got %v", err)
	}
}
