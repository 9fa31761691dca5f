// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"strings"

	"swordctl/internal/issue"
	"swordctl/internal/repo"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info <module>",
	Short: "Show a module's metadata",
	Long: `Show a module's metadata as a rendered card.

Installed modules are read from mods.d; otherwise the cached catalogs are
searched, so 'info' works for modules you have not installed yet.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInfo(args[0])
	},
}

func runInfo(moduleID string) error {
	module, installed, err := findModule(moduleID)
	if err != nil {
		return err
	}

	rendered, err := glamour.Render(moduleMarkdown(module, installed), "dark")
	if err != nil {
		// Fall back to the raw markdown if the terminal renderer fails.
		rendered = moduleMarkdown(module, installed)
	}
	fmt.Print(rendered)
	return nil
}

// findModule resolves an ID against installed modules first, then every
// cached catalog.
func findModule(moduleID string) (repo.ModuleInfo, bool, error) {
	localCfg := repo.NewLocalConfig(resolveSwordDir())
	if m, ok := localCfg.GetInstalledModule(moduleID); ok {
		return m, true, nil
	}

	store, err := catalogStore()
	if err != nil {
		return repo.ModuleInfo{}, false, err
	}

	names, err := store.List()
	if err != nil {
		return repo.ModuleInfo{}, false, err
	}
	for _, name := range names {
		cat, err := store.Load(name)
		if err != nil || cat == nil {
			continue
		}
		for _, m := range cat.Modules {
			if strings.EqualFold(m.ID, moduleID) {
				return m, false, nil
			}
		}
	}

	return repo.ModuleInfo{}, false, issue.NewErrorContext().
		WithOperation("look up module").
		WithResource(moduleID).
		WithSuggestion("run 'swordctl refresh <source>' to fetch a catalog").
		WithSuggestion("run 'swordctl list <source> --search " + moduleID + "'").
		Wrap(fmt.Errorf("module %s not found in installed modules or cached catalogs", moduleID)).
		Build()
}

func moduleMarkdown(m repo.ModuleInfo, installed bool) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n%s\n\n", m.ID, m.Description)

	state := "available"
	if installed {
		state = "installed"
	}

	fmt.Fprintf(&sb, "| Field | Value |\n|---|---|\n")
	fmt.Fprintf(&sb, "| Status | %s |\n", state)
	fmt.Fprintf(&sb, "| Type | %s |\n", m.Type())
	fmt.Fprintf(&sb, "| Language | %s |\n", m.Language)
	fmt.Fprintf(&sb, "| Version | %s |\n", m.Version)
	fmt.Fprintf(&sb, "| Driver | %s |\n", m.Driver)
	if m.InstallSize > 0 {
		fmt.Fprintf(&sb, "| Size | %s |\n", formatBytes(m.InstallSize))
	}
	if m.License != "" {
		fmt.Fprintf(&sb, "| License | %s (%s) |\n", m.License, m.LicenseSPDX())
	}
	if len(m.Features) > 0 {
		fmt.Fprintf(&sb, "| Features | %s |\n", strings.Join(m.Features, ", "))
	}

	if m.About != "" {
		fmt.Fprintf(&sb, "\n%s\n", m.About)
	}
	if m.Copyright != "" {
		fmt.Fprintf(&sb, "\n*%s*\n", m.Copyright)
	}
	return sb.String()
}
