//go:build !cgo || !libsword

// SPDX-License-Identifier: MPL-2.0

package libsword

// Available reports whether the native binding is compiled in.
func Available() bool {
	return false
}

// NewProvider returns ErrNotAvailable on builds without the native binding.
func NewProvider(swordDir string) (Provider, error) {
	return nil, ErrNotAvailable
}
