// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var checkUpdatesCmd = &cobra.Command{
	Use:   "check-updates <source>",
	Short: "Check installed modules for updates",
	Long: `Check installed modules against a source's current index.

A module is reported when its installed version string differs from the
version the source offers. No version ordering is assumed; any difference
counts as an update.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCheckUpdates(cmd, args[0])
	},
}

func runCheckUpdates(cmd *cobra.Command, sourceName string) error {
	inst, localCfg, err := newInstaller()
	if err != nil {
		return err
	}

	source, err := resolveSource(localCfg, sourceName)
	if err != nil {
		return err
	}

	updates, err := inst.CheckUpdates(cmd.Context(), source)
	if err != nil {
		return err
	}

	if len(updates) == 0 {
		fmt.Println(SuccessStyle.Render("All installed modules are up to date with " + source.Name))
		return nil
	}

	fmt.Println(TitleStyle.Render(fmt.Sprintf("%d updates available from %s", len(updates), source.Name)))
	fmt.Println()
	for _, u := range updates {
		fmt.Printf("  %s  %s -> %s\n", CmdStyle.Render(u.Module.ID), u.InstalledVersion, SuccessStyle.Render(u.AvailableVersion))
	}
	fmt.Println()
	fmt.Println(SubtitleStyle.Render("Run 'swordctl install " + source.Name + " <module>' to update."))
	return nil
}
