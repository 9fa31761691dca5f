// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"strings"

	"swordctl/internal/repo"

	"github.com/spf13/cobra"
)

var (
	installAllWorkers  int
	installMegaWorkers int
)

var installAllCmd = &cobra.Command{
	Use:   "install-all <source>",
	Short: "Install every module a source offers",
	Long: `Install every module a source offers.

Already-installed modules are skipped. Per-module failures are reported
without aborting the run.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInstallAll(cmd, args[0])
	},
}

var installMegaCmd = &cobra.Command{
	Use:   "install-mega",
	Short: "Install every module from every known source",
	Long: `Install every module from every known source.

Sources are processed in catalog order; a module ID already installed (or
already seen in an earlier source) is not installed again, so the first
source offering an ID wins.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInstallMega(cmd)
	},
}

func init() {
	installAllCmd.Flags().IntVar(&installAllWorkers, "workers", 0, "concurrent downloads (default from config)")
	installMegaCmd.Flags().IntVar(&installMegaWorkers, "workers", 0, "concurrent downloads (default from config)")
}

func runInstallAll(cmd *cobra.Command, sourceName string) error {
	inst, _, err := newInstaller()
	if err != nil {
		return err
	}

	modules, source, err := sourceModules(cmd, sourceName, false)
	if err != nil {
		return err
	}

	fmt.Printf("Installing %d modules from %s...\n", len(modules), CmdStyle.Render(source.Name))

	results := inst.InstallBatch(cmd.Context(), source, modules, repo.BatchInstallOptions{
		Workers:       batchWorkers(installAllWorkers),
		SkipInstalled: true,
		OnResult:      printInstallResult,
	})

	return summarizeBatch(results)
}

func runInstallMega(cmd *cobra.Command) error {
	inst, localCfg, err := newInstaller()
	if err != nil {
		return err
	}

	// Cross-source dedupe: the first source offering an ID wins.
	seen := make(map[string]bool)

	var all []repo.InstallResult
	for _, source := range knownSources(localCfg) {
		modules, _, err := sourceModules(cmd, source.Name, false)
		if err != nil {
			fmt.Println(WarningStyle.Render(fmt.Sprintf("skipping %s: %v", source.Name, err)))
			continue
		}

		var fresh []repo.ModuleInfo
		for _, m := range modules {
			key := strings.ToUpper(m.ID)
			if !seen[key] {
				seen[key] = true
				fresh = append(fresh, m)
			}
		}
		if len(fresh) == 0 {
			continue
		}

		fmt.Printf("Installing %d modules from %s...\n", len(fresh), CmdStyle.Render(source.Name))

		results := inst.InstallBatch(cmd.Context(), source, fresh, repo.BatchInstallOptions{
			Workers:       batchWorkers(installMegaWorkers),
			SkipInstalled: true,
			OnResult:      printInstallResult,
		})
		all = append(all, results...)
	}

	return summarizeBatch(all)
}

// batchWorkers applies flag > config precedence for worker counts.
func batchWorkers(flagValue int) int {
	if flagValue > 0 {
		return flagValue
	}
	return runtimeConfig().Install.Workers
}
