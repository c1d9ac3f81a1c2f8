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

// Package procmaps parses the process's own memory-mapping descriptor,
// /proc/self/maps.
package procmaps

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
)

// Region is a single parsed mapping.
type Region struct {
	// Start and End delimit the virtual-address range [Start, End).
	Start uintptr
	End   uintptr

	// Read, Write and Execute are the mapping's access bits.
	Read    bool
	Write   bool
	Execute bool

	// Shared is true for MAP_SHARED mappings.
	Shared bool

	// Offset is the file offset backing the mapping.
	Offset uintptr

	// Filename is the backing path, or a pseudo-name such as "[vdso]", or
	// empty for anonymous mappings.
	Filename string
}

// Contains returns true if addr falls within the region.
func (r Region) Contains(addr uintptr) bool {
	return r.Start <= addr && addr < r.End
}

// mapsLine matches a single line from /proc/PID/maps.
var mapsLine = regexp.MustCompile("([0-9a-f]+)-([0-9a-f]+) ([r-][w-][x-][sp]) ([0-9a-f]+) [0-9a-f]{2,}:[0-9a-f]{2,} [0-9]+\\s*(.*)")

// Walk parses the maps file and invokes fn for each mapping.
//
// The parsed regions are not consistent over time: mappings may come and go
// between two walks.
func Walk(fn func(r Region)) error {
	f, err := os.Open("/proc/self/maps")
	if err != nil {
		return err
	}
	defer f.Close()

	// Parse all entries.
	r := bufio.NewReader(f)
	for {
		b, err := r.ReadBytes('\n')
		if len(b) > 0 {
			m := mapsLine.FindSubmatch(b)
			if m == nil {
				// This should not happen: kernel bug?
				return fmt.Errorf("badly formed line: %v", string(b))
			}
			start, err := strconv.ParseUint(string(m[1]), 16, 64)
			if err != nil {
				return fmt.Errorf("bad start address: %v", string(b))
			}
			end, err := strconv.ParseUint(string(m[2]), 16, 64)
			if err != nil {
				return fmt.Errorf("bad end address: %v", string(b))
			}
			offset, err := strconv.ParseUint(string(m[4]), 16, 64)
			if err != nil {
				return fmt.Errorf("bad offset: %v", string(b))
			}
			fn(Region{
				Start:    uintptr(start),
				End:      uintptr(end),
				Read:     m[3][0] == 'r',
				Write:    m[3][1] == 'w',
				Execute:  m[3][2] == 'x',
				Shared:   m[3][3] == 's',
				Offset:   uintptr(offset),
				Filename: strings.TrimSpace(string(m[5])),
			})
		}
		if err == io.EOF {
			break
		} else if err != nil {
			return err
		}
	}

	return nil
}

// TextRange returns the union of all private read+execute mappings whose
// backing path contains match: the lowest start and the highest end across
// matching regions. It fails if no mapping matches.
func TextRange(match string) (begin, end uintptr, err error) {
	begin = ^uintptr(0)
	err = Walk(func(r Region) {
		if !r.Read || r.Write || !r.Execute || r.Shared {
			return
		}
		if r.Filename == "" || !strings.Contains(r.Filename, match) {
			return
		}
		if r.Start < begin {
			begin = r.Start
		}
		if r.End > end {
			end = r.End
		}
	})
	if err != nil {
		return 0, 0, err
	}
	if begin == ^uintptr(0) || end == 0 {
		return 0, 0, fmt.Errorf("no executable mapping matches %q", match)
	}
	return begin, end, nil
}

// ExecutableTextRange returns the text range of the running binary itself.
func ExecutableTextRange() (begin, end uintptr, err error) {
	path, err := os.Executable()
	if err != nil {
		return 0, 0, err
	}
	return TextRange(path)
}
