// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"sort"

	"swordctl/internal/repo"

	"github.com/spf13/cobra"
)

var installedCmd = &cobra.Command{
	Use:   "installed",
	Short: "List installed modules",
	Long: `List the modules installed in the SWORD directory.

The listing is read live from mods.d/*.conf, so modules installed or
removed by other SWORD front ends show up immediately.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInstalled()
	},
}

func runInstalled() error {
	localCfg := repo.NewLocalConfig(resolveSwordDir())

	modules, err := localCfg.ListInstalledModules()
	if err != nil {
		return err
	}

	sort.Slice(modules, func(i, j int) bool { return modules[i].ID < modules[j].ID })

	fmt.Println(TitleStyle.Render(fmt.Sprintf("Installed modules (%d)", len(modules))))
	fmt.Println(SubtitleStyle.Render(localCfg.SwordDir))
	fmt.Println()
	for i := range modules {
		m := &modules[i]
		version := m.Version
		if version == "" {
			version = "?"
		}
		fmt.Printf("  %s  v%s  %s\n", CmdStyle.Render(m.ID), version, m.Description)
	}
	return nil
}
