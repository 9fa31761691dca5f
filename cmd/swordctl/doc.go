// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for swordctl.
//
// This package implements the Cobra command hierarchy for the swordctl CLI:
// the root command, repository browsing (sources, refresh, list, info),
// module management (install, install-all, install-mega, uninstall), and
// local maintenance (installed, check-updates, verify, config).
package cmd
