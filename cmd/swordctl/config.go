// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"swordctl/internal/config"
	"swordctl/internal/issue"
	"swordctl/internal/repo"

	"github.com/spf13/cobra"
)

// configCmd is the `swordctl config` command tree.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage swordctl configuration",
	Long: `Manage swordctl configuration.

Configuration is stored in:
  - Linux: ~/.config/swordctl/config.cue
  - macOS: ~/Library/Application Support/swordctl/config.cue
  - Windows: %APPDATA%\swordctl\config.cue`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

func init() {
	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig()
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return initConfigFile()
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfigPath()
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Output raw configuration as CUE",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			fmt.Print(config.GenerateCUE(cfg))
			return nil
		},
	})
}

func showConfig() error {
	cfg, err := config.Load()
	if err != nil {
		rendered, renderErr := issue.Get(issue.ConfigLoadFailedId).Render("dark")
		if renderErr == nil {
			fmt.Fprint(os.Stderr, rendered)
		}
		return err
	}

	fmt.Println(TitleStyle.Render("Current Configuration"))
	fmt.Println()

	if path := config.LoadedPath(); path != "" {
		fmt.Printf("%s: %s\n", CmdStyle.Render("Config file"), path)
	} else {
		fmt.Printf("%s: %s\n", CmdStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	}
	fmt.Println()

	swordDir := cfg.SwordDir
	if swordDir == "" {
		swordDir = repo.DefaultSwordDir() + SubtitleStyle.Render(" (default)")
	}
	fmt.Printf("%s: %s\n", CmdStyle.Render("sword_dir"), swordDir)
	fmt.Printf("%s: %s\n", CmdStyle.Render("download.timeout_seconds"), SuccessStyle.Render(fmt.Sprint(cfg.Download.TimeoutSeconds)))
	fmt.Printf("%s: %s\n", CmdStyle.Render("download.max_retries"), SuccessStyle.Render(fmt.Sprint(cfg.Download.MaxRetries)))
	fmt.Printf("%s: %s\n", CmdStyle.Render("download.retry_delay_ms"), SuccessStyle.Render(fmt.Sprint(cfg.Download.RetryDelayMS)))
	fmt.Printf("%s: %s\n", CmdStyle.Render("download.user_agent"), SuccessStyle.Render(cfg.Download.UserAgent))
	fmt.Printf("%s: %s\n", CmdStyle.Render("install.workers"), SuccessStyle.Render(fmt.Sprint(cfg.Install.Workers)))
	fmt.Printf("%s: %s\n", CmdStyle.Render("install.skip_installed"), SuccessStyle.Render(fmt.Sprint(cfg.Install.SkipInstalled)))
	fmt.Printf("%s: %s\n", CmdStyle.Render("ui.verbose"), SuccessStyle.Render(fmt.Sprint(cfg.UI.Verbose)))
	return nil
}

func initConfigFile() error {
	if err := config.CreateDefaultConfig(); err != nil {
		return err
	}

	dir, err := config.ConfigDir()
	if err != nil {
		return err
	}
	fmt.Println(SuccessStyle.Render("Created " + filepath.Join(dir, config.ConfigFileName+"."+config.ConfigFileExt)))
	return nil
}

func showConfigPath() error {
	dir, err := config.ConfigDir()
	if err != nil {
		return err
	}
	path := filepath.Join(dir, config.ConfigFileName+"."+config.ConfigFileExt)
	fmt.Println(path)
	if _, statErr := os.Stat(path); statErr != nil {
		fmt.Println(SubtitleStyle.Render("(file does not exist; run 'swordctl config init')"))
	}
	return nil
}
