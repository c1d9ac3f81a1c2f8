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

package procmaps

import (
	"os"
	"reflect"
	"testing"

	"golang.org/x/sys/unix"
)

type checker struct {
	ok bool
}

func (c *checker) Contains(addr uintptr) func(Region) {
	c.ok = false // Reset for below calls.
	return func(r Region) {
		if r.Contains(addr) {
			c.ok = true
		}
	}
}

func TestWalk(t *testing.T) {
	c := new(checker)
	pageSize := uintptr(os.Getpagesize())

	// Simple test.
	if err := Walk(c.Contains(0)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// MMap a new page.
	addr, _, errno := unix.RawSyscall6(
		unix.SYS_MMAP, 0, pageSize,
		unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_ANONYMOUS|unix.MAP_PRIVATE, ^uintptr(0), 0)
	if errno != 0 {
		t.Fatalf("unexpected map error: %v", errno)
	}

	// Re-parse maps.
	if err := Walk(c.Contains(addr)); err != nil {
		unix.RawSyscall(unix.SYS_MUNMAP, addr, pageSize, 0)
		t.Fatalf("unexpected error: %v", err)
	}

	// Assert that it now does contain the region.
	if !c.ok {
		unix.RawSyscall(unix.SYS_MUNMAP, addr, pageSize, 0)
		t.Fatalf("updated map does not contain 0x%08x, expected true", addr)
	}

	// Unmap the region.
	unix.RawSyscall(unix.SYS_MUNMAP, addr, pageSize, 0)

	// Re-parse maps.
	if err := Walk(c.Contains(addr)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Assert that it once again does _not_ contain the region.
	if c.ok {
		t.Fatalf("final map does contain 0x%08x, expected false", addr)
	}
}

func TestExecutableTextRange(t *testing.T) {
	begin, end, err := ExecutableTextRange()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if begin >= end {
		t.Fatalf("bad text range [%#x, %#x)", begin, end)
	}

	// A function in this test binary must fall inside the range.
	fn := reflect.ValueOf(Walk).Pointer()
	if fn < begin || fn >= end {
		t.Errorf("Walk at %#x is outside the text range [%#x, %#x)", fn, begin, end)
	}
}

func TestTextRangeNoMatch(t *testing.T) {
	if _, _, err := TextRange("/definitely/not/a/mapped/file"); err == nil {
		t.Fatal("expected an error for an unmatched path")
	}
}
