// SPDX-License-Identifier: MPL-2.0

// Package catalog caches downloaded module indexes on disk.
//
// Each source's index is stored as one TOML file under the user cache
// directory, so list and search operations work offline after a single
// refresh. Catalogs are advisory: the authoritative index is always the
// source's mods.d.tar.gz, and a stale or missing catalog only means a
// refresh is needed.
package catalog
