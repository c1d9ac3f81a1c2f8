// Copyright 2026 The stress-ng Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

//go:build linux
// +build linux

// Package memutil provides utilities for working with memory mappings.
package memutil

import (
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/antoneliasson/stress-ng/pkg/hostsyscall"
)

// noFD is the file descriptor argument for anonymous mappings.
const noFD = ^uintptr(0)

// MapFile returns a memory mapping configured by the given options as a
// uintptr address.
func MapFile(addr, size, prot, flags, fd, offset uintptr) (uintptr, error) {
	m, _, e := unix.RawSyscall6(unix.SYS_MMAP, addr, size, prot, flags, fd, offset)
	if e != 0 {
		return 0, e
	}
	return m, nil
}

// MapSlice is like MapFile, but returns a slice instead of a uintptr.
func MapSlice(addr, size, prot, flags, fd, offset uintptr) ([]byte, error) {
	addr, err := MapFile(addr, size, prot, flags, fd, offset)
	if err != nil {
		return nil, err
	}

	return unsafe.Slice((*byte)(unsafe.Pointer(addr)), int(size)), nil
}

// UnmapSlice unmaps a mapping returned by MapSlice.
func UnmapSlice(slice []byte) error {
	ptr := unsafe.SliceData(slice)
	_, _, err := unix.RawSyscall6(unix.SYS_MUNMAP, uintptr(unsafe.Pointer(ptr)), uintptr(cap(slice)), 0, 0, 0, 0)
	if err != 0 {
		return err
	}
	return nil
}

// SliceAddr returns the address of the first byte of a mapping returned by
// MapSlice. The mapping is not owned by the Go heap, so the address remains
// stable until the slice is unmapped.
func SliceAddr(slice []byte) uintptr {
	return uintptr(unsafe.Pointer(unsafe.SliceData(slice)))
}

// MapAnonShared maps size bytes of zeroed, shared, anonymous memory with
// read-write protection.
func MapAnonShared(size uintptr) ([]byte, error) {
	return MapSlice(0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED|unix.MAP_ANONYMOUS, noFD, 0)
}

// UnmappedProbe returns an address of the given size that was mapped and
// then immediately unmapped. The address is guaranteed to have been valid
// and is overwhelmingly likely to still be unmapped; it exists only as a
// target for negative testing and must never be dereferenced.
func UnmappedProbe(size uintptr) (uintptr, error) {
	addr, err := MapFile(0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED|unix.MAP_ANONYMOUS, noFD, 0)
	if err != nil {
		return 0, err
	}
	if _, _, e := unix.RawSyscall6(unix.SYS_MUNMAP, addr, size, 0, 0, 0, 0); e != 0 {
		return 0, e
	}
	return addr, nil
}

// TrailingUnmappedProbe maps two pages and unmaps the second, producing a
// valid page immediately followed by guaranteed-unmapped address space. The
// returned slice covers only the first page and is released with UnmapSlice.
func TrailingUnmappedProbe(pageSize uintptr) ([]byte, error) {
	slice, err := MapSlice(0, pageSize*2, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED|unix.MAP_ANONYMOUS, noFD, 0)
	if err != nil {
		return nil, err
	}
	if _, _, e := unix.RawSyscall6(unix.SYS_MUNMAP, SliceAddr(slice)+pageSize, pageSize, 0, 0, 0, 0); e != 0 {
		UnmapSlice(slice)
		return nil, e
	}
	return slice[:pageSize:pageSize], nil
}

// RemapFilePages asks the kernel to rebind the physical page backing the
// virtual range [addr, addr+size) to the page at index pgoff within the
// same mapping, without copying data. It returns the raw errno so callers
// issuing deliberately invalid requests can discard it.
func RemapFilePages(addr, size, prot, pgoff, flags uintptr) unix.Errno {
	return hostsyscall.RawSyscallErrno6(unix.SYS_REMAP_FILE_PAGES, addr, size, prot, pgoff, flags, 0)
}

// LockResult describes the outcome of a best-effort page pin.
type LockResult int

const (
	// NotLocked means no pin was attempted or the pin has been released.
	NotLocked LockResult = iota
	// Locked means the page is pinned and must be released with Unlock.
	Locked
	// LockFailed means the pin attempt failed. This is not an error; the
	// caller proceeds without a pin.
	LockFailed
)

// TryLock attempts to pin the pages in [addr, addr+size) into memory.
// Failure is ignorable.
func TryLock(addr, size uintptr) LockResult {
	if _, _, e := unix.RawSyscall(unix.SYS_MLOCK, addr, size, 0); e != 0 {
		return LockFailed
	}
	return Locked
}

// Unlock releases a pin taken by TryLock.
func Unlock(addr, size uintptr) {
	unix.RawSyscall(unix.SYS_MUNLOCK, addr, size, 0)
}
