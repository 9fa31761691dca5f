// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"os"

	"swordctl/internal/issue"
	"swordctl/internal/repo"

	"github.com/spf13/cobra"
)

var uninstallCmd = &cobra.Command{
	Use:   "uninstall <module>",
	Short: "Remove an installed module",
	Long: `Remove an installed module: its data directory and its mods.d .conf file.

Module IDs are matched case-insensitively.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runUninstall(args[0])
	},
}

func runUninstall(moduleID string) error {
	inst, _, err := newInstaller()
	if err != nil {
		return err
	}

	if err := inst.Uninstall(moduleID); err != nil {
		// The guidance card only fits the not-installed case; filesystem
		// failures on an installed module surface plainly.
		if errors.Is(err, repo.ErrModuleNotInstalled) {
			rendered, renderErr := issue.Get(issue.ModuleNotInstalledId).Render("dark")
			if renderErr == nil {
				fmt.Fprint(os.Stderr, rendered)
			}
		}
		return issue.WrapWithContext(err, "uninstall module", moduleID)
	}

	fmt.Println(SuccessStyle.Render("Uninstalled " + moduleID))
	return nil
}
