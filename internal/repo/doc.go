// SPDX-License-Identifier: MPL-2.0

// Package repo implements the SWORD module repository subsystem: remote
// source descriptions, the HTTP/FTP download client, descriptor and archive
// parsing, the on-disk installed-module database, and the installer
// orchestrator.
//
// The package is a native replacement for the SWORD installmgr tool. Remote
// sources publish a mods.d.tar.gz index of module descriptors and .zip
// packages containing module data; everything installed lands under a local
// SWORD directory (~/.sword by default) managed by LocalConfig.
package repo
