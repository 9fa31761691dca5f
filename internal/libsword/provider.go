// SPDX-License-Identifier: MPL-2.0

// Package libsword optionally binds the reference SWORD engine.
//
// The native binding compiles only with CGo enabled and the libsword build
// tag set (libsword-dev must be installed); every other build gets a stub
// whose operations return ErrNotAvailable. Callers check Available() before
// relying on the engine, so the pure Go paths never depend on it.
package libsword

import "errors"

// ErrNotAvailable is returned by the stub when the native binding is not
// compiled in.
var ErrNotAvailable = errors.New("libsword binding not available (build with CGO_ENABLED=1 -tags libsword)")

type (
	// Provider opens installed modules through the SWORD engine.
	Provider interface {
		// OpenModule looks up an installed module by ID.
		OpenModule(id string) (Module, error)

		// Close releases engine resources. The provider is unusable afterwards.
		Close() error
	}

	// Module reads verses and metadata from one opened module.
	Module interface {
		// Verse returns the rendered text for a reference like "John 3:16".
		Verse(ref string) (string, error)

		// RawVerse returns the stored entry without filter rendering.
		RawVerse(ref string) (string, error)

		// Description returns the module's declared description.
		Description() string

		// Language returns the module's language code.
		Language() string

		// Kind returns the engine's module type (Biblical Texts, Lexicons
		// / Dictionaries, ...).
		Kind() string

		// Name returns the module ID.
		Name() string
	}
)
