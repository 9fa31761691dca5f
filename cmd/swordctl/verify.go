// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"swordctl/internal/libsword"
	"swordctl/internal/repo"

	"github.com/spf13/cobra"
)

var verifyEngine bool

var verifyCmd = &cobra.Command{
	Use:   "verify [module]",
	Short: "Verify installed modules",
	Long: `Verify installed modules against their declared metadata.

Checks that each module's data directory exists and, when the .conf
declares an InstallSize, that the on-disk size matches. Without an
argument, every installed module is verified.

With --engine, each module is also opened through the SWORD engine; this
requires a swordctl build with CGo and the libsword tag.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 1 {
			return runVerifyOne(args[0])
		}
		return runVerifyAll()
	},
}

func init() {
	verifyCmd.Flags().BoolVar(&verifyEngine, "engine", false, "also open each module through the libsword engine")
}

func runVerifyOne(moduleID string) error {
	inst, _, err := newInstaller()
	if err != nil {
		return err
	}

	v := inst.VerifyModule(moduleID)
	printVerification(v)
	if !v.IsValid() {
		return &ExitError{Code: 1, Err: fmt.Errorf("module %s failed verification", moduleID)}
	}

	if verifyEngine {
		return engineCheck([]string{v.ModuleID})
	}
	return nil
}

func runVerifyAll() error {
	inst, _, err := newInstaller()
	if err != nil {
		return err
	}

	verifications, err := inst.VerifyAllModules()
	if err != nil {
		return err
	}

	var invalid int
	for _, v := range verifications {
		printVerification(v)
		if !v.IsValid() {
			invalid++
		}
	}

	fmt.Println()
	if invalid > 0 {
		fmt.Println(ErrorStyle.Render(fmt.Sprintf("%d of %d modules failed verification", invalid, len(verifications))))
		return &ExitError{Code: 1, Err: fmt.Errorf("%d modules failed verification", invalid)}
	}
	fmt.Println(SuccessStyle.Render(fmt.Sprintf("All %d modules verified", len(verifications))))

	if verifyEngine {
		ids := make([]string, 0, len(verifications))
		for _, v := range verifications {
			ids = append(ids, v.ModuleID)
		}
		return engineCheck(ids)
	}
	return nil
}

// engineCheck opens each module through the SWORD engine. On builds without
// the native binding the check fails with a clear message instead of
// silently passing.
func engineCheck(moduleIDs []string) error {
	if !libsword.Available() {
		return fmt.Errorf("engine check unavailable: %w", libsword.ErrNotAvailable)
	}

	provider, err := libsword.NewProvider(resolveSwordDir())
	if err != nil {
		return fmt.Errorf("failed to open SWORD engine: %w", err)
	}
	defer provider.Close()

	var failed int
	for _, id := range moduleIDs {
		mod, err := provider.OpenModule(id)
		if err != nil {
			fmt.Printf("  %s %s: engine cannot open module: %v\n", ErrorStyle.Render("!!"), CmdStyle.Render(id), err)
			failed++
			continue
		}
		fmt.Printf("  %s %s (%s, %s)\n", SuccessStyle.Render("ok"), CmdStyle.Render(id), mod.Kind(), mod.Language())
	}

	if failed > 0 {
		return &ExitError{Code: 1, Err: fmt.Errorf("%d modules failed the engine check", failed)}
	}
	return nil
}

func printVerification(v repo.ModuleVerification) {
	if v.IsValid() {
		fmt.Printf("  %s %s (%s)\n", SuccessStyle.Render("ok"), CmdStyle.Render(v.ModuleID), formatBytes(v.ActualSize))
		return
	}

	switch {
	case !v.Installed:
		fmt.Printf("  %s %s: not installed\n", ErrorStyle.Render("!!"), CmdStyle.Render(v.ModuleID))
	case !v.DataExists:
		fmt.Printf("  %s %s: data directory missing\n", ErrorStyle.Render("!!"), CmdStyle.Render(v.ModuleID))
	case !v.SizeMatch:
		fmt.Printf("  %s %s: size mismatch (expected %s, found %s)\n",
			ErrorStyle.Render("!!"), CmdStyle.Render(v.ModuleID),
			formatBytes(v.ExpectedSize), formatBytes(v.ActualSize))
	default:
		fmt.Printf("  %s %s: %s\n", ErrorStyle.Render("!!"), CmdStyle.Render(v.ModuleID), v.Error)
	}
}

// formatBytes renders a byte count with a binary unit suffix.
func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
