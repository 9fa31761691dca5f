// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"swordctl/internal/issue"
	"swordctl/internal/repo"

	"github.com/spf13/cobra"
)

var installWorkers int

var installCmd = &cobra.Command{
	Use:   "install <source> <module>...",
	Short: "Install modules from a source",
	Long: `Install one or more modules from a source into the SWORD directory.

A single module installs with step-by-step progress. Multiple modules
install concurrently; per-module failures are reported without aborting
the rest of the batch.`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInstall(cmd, args[0], args[1:])
	},
}

func init() {
	installCmd.Flags().IntVar(&installWorkers, "workers", 0, "concurrent downloads for multi-module installs (default from config)")
}

func runInstall(cmd *cobra.Command, sourceName string, moduleIDs []string) error {
	inst, _, err := newInstaller()
	if err != nil {
		return err
	}

	available, source, err := sourceModules(cmd, sourceName, false)
	if err != nil {
		return err
	}

	byID := make(map[string]repo.ModuleInfo, len(available))
	for _, m := range available {
		byID[strings.ToUpper(m.ID)] = m
	}

	var modules []repo.ModuleInfo
	for _, id := range moduleIDs {
		m, ok := byID[strings.ToUpper(id)]
		if !ok {
			return issue.NewErrorContext().
				WithOperation("install module").
				WithResource(id).
				WithSuggestion(fmt.Sprintf("run 'swordctl list %s --search %s'", source.Name, id)).
				WithSuggestion(fmt.Sprintf("run 'swordctl refresh %s' if the catalog is stale", source.Name)).
				Wrap(fmt.Errorf("module %s not found in source %s", id, source.Name)).
				Build()
		}
		modules = append(modules, m)
	}

	if len(modules) == 1 {
		return installOne(cmd, inst, source, modules[0])
	}
	return installMany(cmd, inst, source, modules)
}

func installOne(cmd *cobra.Command, inst *repo.Installer, source repo.Source, module repo.ModuleInfo) error {
	inst.OnProgress = func(step, total int, message string) {
		fmt.Printf("[%d/%d] %s\n", step, total, message)
	}

	if err := inst.Install(cmd.Context(), source, module); err != nil {
		if errors.Is(err, repo.ErrPackageNotAvailable) {
			rendered, renderErr := issue.Get(issue.PackageNotAvailableId).Render("dark")
			if renderErr == nil {
				fmt.Fprint(os.Stderr, rendered)
			}
		}
		return issue.WrapWithContext(err, "install module", module.ID)
	}
	return nil
}

func installMany(cmd *cobra.Command, inst *repo.Installer, source repo.Source, modules []repo.ModuleInfo) error {
	cfg := runtimeConfig()
	workers := installWorkers
	if workers <= 0 {
		workers = cfg.Install.Workers
	}

	results := inst.InstallBatch(cmd.Context(), source, modules, repo.BatchInstallOptions{
		Workers:       workers,
		SkipInstalled: cfg.Install.SkipInstalled,
		OnResult:      printInstallResult,
	})

	return summarizeBatch(results)
}

func printInstallResult(r repo.InstallResult) {
	switch r.Status {
	case repo.StatusDone:
		fmt.Printf("%s %s\n", SuccessStyle.Render("installed"), r.Module.ID)
	case repo.StatusSkipped:
		fmt.Printf("%s %s (already installed)\n", SubtitleStyle.Render("skipped"), r.Module.ID)
	case repo.StatusUnavailable:
		fmt.Printf("%s %s (no package on server)\n", WarningStyle.Render("unavailable"), r.Module.ID)
	case repo.StatusFailed:
		fmt.Printf("%s %s: %v\n", ErrorStyle.Render("failed"), r.Module.ID, r.Error)
	}
}

// summarizeBatch prints batch totals and returns an ExitError when any
// module failed outright.
func summarizeBatch(results []repo.InstallResult) error {
	var done, skipped, unavailable, failed int
	for _, r := range results {
		switch r.Status {
		case repo.StatusDone:
			done++
		case repo.StatusSkipped:
			skipped++
		case repo.StatusUnavailable:
			unavailable++
		case repo.StatusFailed:
			failed++
		}
	}

	fmt.Println()
	fmt.Printf("%d installed, %d skipped, %d unavailable, %d failed\n", done, skipped, unavailable, failed)

	if failed > 0 {
		return &ExitError{Code: 1, Err: fmt.Errorf("%d of %d modules failed to install", failed, len(results))}
	}
	return nil
}
