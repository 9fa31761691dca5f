// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for swordctl.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"swordctl/internal/config"
	"swordctl/internal/issue"
	"swordctl/internal/repo"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"

	// verbose enables verbose output
	verbose bool
	// cfgFile allows specifying a custom config file
	cfgFile string
	// swordPath overrides the SWORD installation directory
	swordPath string

	// rootCmd represents the base command when called without any subcommands
	rootCmd = &cobra.Command{
		Use:   "swordctl",
		Short: "A SWORD Bible module repository client",
		Long: TitleStyle.Render("swordctl") + SubtitleStyle.Render(" - A SWORD Bible module repository client") + `

swordctl browses remote SWORD repositories (CrossWire, eBible.org, ...),
downloads module packages over HTTP, HTTPS or FTP, and installs them into
a local SWORD directory compatible with installmgr and other front ends.

` + SubtitleStyle.Render("Quick Start:") + `
  1. Refresh a repository index: swordctl refresh CrossWire
  2. Browse the catalog:         swordctl list CrossWire --lang en
  3. Install a module:           swordctl install CrossWire KJV

` + SubtitleStyle.Render("Examples:") + `
  swordctl sources                  List known repositories
  swordctl list CrossWire --type bible
  swordctl install CrossWire KJV WEB
  swordctl installed                List installed modules
  swordctl check-updates CrossWire  Check for module updates
  swordctl verify                   Verify installed modules`,
	}
)

func init() {
	cobra.OnInitialize(initRootConfig)

	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/swordctl/config.cue)")
	rootCmd.PersistentFlags().StringVar(&swordPath, "sword-path", "", "SWORD directory (default is $HOME/.sword)")

	// Add subcommands
	rootCmd.AddCommand(sourcesCmd)
	rootCmd.AddCommand(refreshCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(installCmd)
	rootCmd.AddCommand(installAllCmd)
	rootCmd.AddCommand(installMegaCmd)
	rootCmd.AddCommand(installedCmd)
	rootCmd.AddCommand(uninstallCmd)
	rootCmd.AddCommand(checkUpdatesCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(completionCmd)
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	// Use fang.Execute for enhanced Cobra styling
	// Pass version via fang.WithVersion() since fang overrides rootCmd.Version
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}

// initRootConfig reads in config file and ENV variables if set.
func initRootConfig() {
	// Set custom config file path if provided via --config flag
	if cfgFile != "" {
		config.SetConfigFilePathOverride(cfgFile)
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		// Always surface config loading errors to the user
		fmt.Fprintln(os.Stderr, WarningStyle.Render("Warning: ")+formatErrorForDisplay(err, verbose))
	}

	// Apply verbose from config if not set via flag
	if cfg != nil && !verbose {
		verbose = cfg.UI.Verbose
	}

	// Apply the SWORD directory from config if not set via flag
	if cfg != nil && swordPath == "" {
		swordPath = cfg.SwordDir
	}
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
// In verbose mode, shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}

// GetVerbose returns the verbose flag value
func GetVerbose() bool {
	return verbose
}

// runtimeConfig returns the loaded configuration, falling back to defaults
// when loading failed (the warning was already printed by initRootConfig).
func runtimeConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil || cfg == nil {
		return config.DefaultConfig()
	}
	return cfg
}

// resolveSwordDir applies flag > config > default precedence.
func resolveSwordDir() string {
	if swordPath != "" {
		return swordPath
	}
	return repo.DefaultSwordDir()
}

// cliLogger returns a debug logger when --verbose is set, nil otherwise.
func cliLogger() *log.Logger {
	if !verbose {
		return nil
	}
	return log.NewWithOptions(os.Stderr, log.Options{
		Prefix: "swordctl",
		Level:  log.DebugLevel,
	})
}

// newDownloadClient builds a repo.Client from the loaded configuration.
func newDownloadClient() (*repo.Client, error) {
	cfg := runtimeConfig()
	return repo.NewClient(repo.ClientOptions{
		Timeout:    cfg.Download.Timeout(),
		MaxRetries: cfg.Download.MaxRetries,
		RetryDelay: cfg.Download.RetryDelay(),
		UserAgent:  cfg.Download.UserAgent,
		Logger:     cliLogger(),
	})
}

// newInstaller wires a LocalConfig and an Installer over the resolved SWORD
// directory.
func newInstaller() (*repo.Installer, *repo.LocalConfig, error) {
	client, err := newDownloadClient()
	if err != nil {
		return nil, nil, err
	}

	localCfg := repo.NewLocalConfig(resolveSwordDir())
	if err := localCfg.EnsureDirectories(); err != nil {
		return nil, nil, issue.NewErrorContext().
			WithOperation("prepare SWORD directory").
			WithResource(localCfg.SwordDir).
			WithSuggestion("check that the path is writable").
			WithSuggestion("pass a different directory with --sword-path").
			Wrap(err).
			Build()
	}

	inst := repo.NewInstaller(localCfg, client)
	inst.Logger = cliLogger()
	return inst, localCfg, nil
}

// resolveSource looks up a source by name in the built-in catalog, then in
// install.conf entries added with `swordctl sources --save`.
func resolveSource(localCfg *repo.LocalConfig, name string) (repo.Source, error) {
	if src, ok := repo.GetSource(name); ok {
		return src, nil
	}

	extras, err := localCfg.LoadInstallConf()
	if err == nil {
		for _, src := range extras {
			if src.Name == name {
				return src, nil
			}
		}
	}

	return repo.Source{}, issue.NewErrorContext().
		WithOperation("resolve source").
		WithResource(name).
		WithSuggestion("run 'swordctl sources' to list known sources").
		Wrap(fmt.Errorf("unknown source: %s", name)).
		Build()
}

// knownSources returns the built-in catalog plus install.conf extras, with
// built-in names winning on collision.
func knownSources(localCfg *repo.LocalConfig) []repo.Source {
	sources := repo.DefaultSources()
	seen := make(map[string]bool, len(sources))
	for _, src := range sources {
		seen[src.Name] = true
	}

	extras, err := localCfg.LoadInstallConf()
	if err != nil {
		return sources
	}
	for _, src := range extras {
		if !seen[src.Name] {
			sources = append(sources, src)
			seen[src.Name] = true
		}
	}
	return sources
}
