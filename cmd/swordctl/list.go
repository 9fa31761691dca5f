// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"sort"
	"strings"

	"swordctl/internal/repo"

	"github.com/spf13/cobra"
)

var (
	listType    string
	listLang    string
	listSearch  string
	listRefresh bool
)

var listCmd = &cobra.Command{
	Use:   "list <source>",
	Short: "List a source's available modules",
	Long: `List a source's available modules.

The cached catalog is used when present; run 'swordctl refresh <source>' or
pass --refresh to fetch the current index first.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runList(cmd, args[0])
	},
}

func init() {
	listCmd.Flags().StringVar(&listType, "type", "", "filter by module type (bible, commentary, dictionary, genbook)")
	listCmd.Flags().StringVar(&listLang, "lang", "", "filter by language code (e.g. en, grc)")
	listCmd.Flags().StringVar(&listSearch, "search", "", "filter by keyword in ID or description")
	listCmd.Flags().BoolVar(&listRefresh, "refresh", false, "fetch the index before listing")
}

func runList(cmd *cobra.Command, sourceName string) error {
	modules, source, err := sourceModules(cmd, sourceName, listRefresh)
	if err != nil {
		return err
	}

	if listType != "" {
		mt, err := parseModuleType(listType)
		if err != nil {
			return err
		}
		modules = repo.FilterByType(modules, mt)
	}
	if listLang != "" {
		modules = repo.FilterByLanguage(modules, listLang)
	}
	if listSearch != "" {
		modules = repo.SearchModules(modules, listSearch)
	}

	sort.Slice(modules, func(i, j int) bool { return modules[i].ID < modules[j].ID })

	fmt.Println(TitleStyle.Render(fmt.Sprintf("%s: %d modules", source.Name, len(modules))))
	fmt.Println()
	for i := range modules {
		m := &modules[i]
		fmt.Printf("  %s  %s  %s\n", CmdStyle.Render(m.ID), SubtitleStyle.Render("["+m.Language+"]"), m.Description)
	}
	return nil
}

// sourceModules returns a source's module list, preferring the cached
// catalog unless forceRefresh is set or no catalog exists yet.
func sourceModules(cmd *cobra.Command, sourceName string, forceRefresh bool) ([]repo.ModuleInfo, repo.Source, error) {
	inst, localCfg, err := newInstaller()
	if err != nil {
		return nil, repo.Source{}, err
	}

	source, err := resolveSource(localCfg, sourceName)
	if err != nil {
		return nil, repo.Source{}, err
	}

	store, err := catalogStore()
	if err != nil {
		return nil, repo.Source{}, err
	}

	if !forceRefresh {
		cat, err := store.Load(source.Name)
		if err == nil && cat != nil {
			return cat.Modules, source, nil
		}
	}

	modules, err := inst.RefreshSource(cmd.Context(), source)
	if err != nil {
		return nil, repo.Source{}, err
	}
	if err := store.Save(source.Name, modules); err != nil {
		return nil, repo.Source{}, fmt.Errorf("failed to cache catalog: %w", err)
	}
	return modules, source, nil
}

func parseModuleType(s string) (repo.ModuleType, error) {
	switch strings.ToLower(s) {
	case "bible", "bibles", "text":
		return repo.ModuleTypeBible, nil
	case "commentary", "commentaries":
		return repo.ModuleTypeCommentary, nil
	case "dictionary", "dictionaries", "lexicon":
		return repo.ModuleTypeDictionary, nil
	case "genbook", "genbooks", "book":
		return repo.ModuleTypeGenBook, nil
	default:
		return repo.ModuleTypeUnknown, fmt.Errorf("unknown module type %q (want bible, commentary, dictionary or genbook)", s)
	}
}
