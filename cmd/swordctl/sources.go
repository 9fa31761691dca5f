// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"swordctl/internal/repo"

	"github.com/spf13/cobra"
)

var sourcesSave bool

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List known module repositories",
	Long: `List known module repositories.

The built-in catalog matches the stock source list shipped with the SWORD
installmgr tool. Sources added to mods.d/install.conf are listed after the
built-in ones. With --save, the full list is written back to install.conf.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSources()
	},
}

func init() {
	sourcesCmd.Flags().BoolVar(&sourcesSave, "save", false, "write the source list to mods.d/install.conf")
}

func runSources() error {
	localCfg := repo.NewLocalConfig(resolveSwordDir())
	sources := knownSources(localCfg)

	fmt.Println(TitleStyle.Render("Known sources"))
	fmt.Println()

	nameWidth := 0
	for _, src := range sources {
		if len(src.Name) > nameWidth {
			nameWidth = len(src.Name)
		}
	}

	for _, src := range sources {
		// Pad before styling; ANSI escapes would break %-*s width handling.
		padded := fmt.Sprintf("%-*s", nameWidth, src.Name)
		fmt.Printf("  %s  %-5s  %s%s\n", CmdStyle.Render(padded), src.Type, src.Host, src.Directory)
	}

	if sourcesSave {
		if err := localCfg.EnsureDirectories(); err != nil {
			return err
		}
		if err := localCfg.SaveInstallConf(sources); err != nil {
			return fmt.Errorf("failed to save install.conf: %w", err)
		}
		fmt.Println()
		fmt.Println(SuccessStyle.Render("Saved " + localCfg.ModsDir() + "/install.conf"))
	}

	return nil
}
