//go:build cgo && libsword

// SPDX-License-Identifier: MPL-2.0

package libsword

/*
#cgo CFLAGS: -I/usr/include
#cgo LDFLAGS: -lsword

#include <stdlib.h>
#include <swmgr.h>
#include <swmodule.h>
#include <versekey.h>

void* swordctl_create_mgr(const char* path) {
    return new sword::SWMgr(path, true, NULL, false, false);
}

void swordctl_destroy_mgr(void* mgr) {
    delete (sword::SWMgr*)mgr;
}

void* swordctl_get_module(void* mgr, const char* name) {
    return ((sword::SWMgr*)mgr)->getModule(name);
}

const char* swordctl_render_verse(void* mod, const char* ref) {
    sword::SWModule* m = (sword::SWModule*)mod;
    m->setKey(ref);
    return m->renderText();
}

const char* swordctl_raw_verse(void* mod, const char* ref) {
    sword::SWModule* m = (sword::SWModule*)mod;
    m->setKey(ref);
    return m->getRawEntry();
}

const char* swordctl_description(void* mod) {
    return ((sword::SWModule*)mod)->getDescription();
}

const char* swordctl_type(void* mod) {
    return ((sword::SWModule*)mod)->getType();
}

const char* swordctl_language(void* mod) {
    return ((sword::SWModule*)mod)->getLanguage();
}
*/
import "C"

import (
	"fmt"
	"unsafe"
)

// Available reports whether the native binding is compiled in.
func Available() bool {
	return true
}

type (
	nativeProvider struct {
		ptr unsafe.Pointer
	}

	nativeModule struct {
		ptr  unsafe.Pointer
		name string
	}
)

// NewProvider opens the SWORD engine rooted at swordDir.
func NewProvider(swordDir string) (Provider, error) {
	cpath := C.CString(swordDir)
	defer C.free(unsafe.Pointer(cpath))

	ptr := C.swordctl_create_mgr(cpath)
	if ptr == nil {
		return nil, fmt.Errorf("failed to open SWORD manager at %s", swordDir)
	}
	return &nativeProvider{ptr: ptr}, nil
}

func (p *nativeProvider) OpenModule(id string) (Module, error) {
	cname := C.CString(id)
	defer C.free(unsafe.Pointer(cname))

	ptr := C.swordctl_get_module(p.ptr, cname)
	if ptr == nil {
		return nil, fmt.Errorf("module not found: %s", id)
	}
	return &nativeModule{ptr: ptr, name: id}, nil
}

func (p *nativeProvider) Close() error {
	if p.ptr != nil {
		C.swordctl_destroy_mgr(p.ptr)
		p.ptr = nil
	}
	return nil
}

func (m *nativeModule) Verse(ref string) (string, error) {
	cref := C.CString(ref)
	defer C.free(unsafe.Pointer(cref))

	ctext := C.swordctl_render_verse(m.ptr, cref)
	if ctext == nil {
		return "", fmt.Errorf("failed to render verse: %s", ref)
	}
	return C.GoString(ctext), nil
}

func (m *nativeModule) RawVerse(ref string) (string, error) {
	cref := C.CString(ref)
	defer C.free(unsafe.Pointer(cref))

	ctext := C.swordctl_raw_verse(m.ptr, cref)
	if ctext == nil {
		return "", fmt.Errorf("failed to read raw verse: %s", ref)
	}
	return C.GoString(ctext), nil
}

func (m *nativeModule) Description() string {
	return C.GoString(C.swordctl_description(m.ptr))
}

func (m *nativeModule) Language() string {
	return C.GoString(C.swordctl_language(m.ptr))
}

func (m *nativeModule) Kind() string {
	return C.GoString(C.swordctl_type(m.ptr))
}

func (m *nativeModule) Name() string {
	return m.name
}
