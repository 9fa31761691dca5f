// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"

	"swordctl/internal/catalog"
	"swordctl/internal/issue"

	"github.com/spf13/cobra"
)

var refreshCmd = &cobra.Command{
	Use:   "refresh <source>",
	Short: "Download a source's module index",
	Long: `Download a source's module index (mods.d.tar.gz) and cache it locally.

The cached catalog makes 'list' and 'info' work offline until the next
refresh.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRefresh(cmd, args[0])
	},
}

func runRefresh(cmd *cobra.Command, sourceName string) error {
	inst, localCfg, err := newInstaller()
	if err != nil {
		return err
	}

	source, err := resolveSource(localCfg, sourceName)
	if err != nil {
		return err
	}

	fmt.Printf("Refreshing %s (%s)...\n", CmdStyle.Render(source.Name), source.ModsIndexURL())

	modules, err := inst.RefreshSource(cmd.Context(), source)
	if err != nil {
		rendered, renderErr := issue.Get(issue.IndexDownloadFailedId).Render("dark")
		if renderErr == nil {
			fmt.Fprint(os.Stderr, rendered)
		}
		return issue.WrapWithContext(err, "refresh source index", source.Name)
	}

	store, err := catalogStore()
	if err != nil {
		return err
	}
	if err := store.Save(source.Name, modules); err != nil {
		return fmt.Errorf("failed to cache catalog: %w", err)
	}

	fmt.Println(SuccessStyle.Render(fmt.Sprintf("Indexed %d modules from %s", len(modules), source.Name)))
	return nil
}

// catalogStore opens the catalog store in the user cache directory.
func catalogStore() (*catalog.Store, error) {
	dir, err := catalog.DefaultDir()
	if err != nil {
		return nil, err
	}
	return catalog.NewStore(dir), nil
}
