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

// Package remap implements the page-remapping stressor. It drives
// remap_file_pages through controlled reorderings of a shared anonymous
// region and verifies after each pass that every virtual page reads back
// the tag of the physical page it was remapped onto.
package remap

import (
	"context"
	"encoding/binary"
	mathrand "math/rand/v2"
	"time"

	"golang.org/x/sys/unix"

	"github.com/antoneliasson/stress-ng/pkg/memutil"
	"github.com/antoneliasson/stress-ng/pkg/rand"
	"github.com/antoneliasson/stress-ng/pkg/stress"
)

// nPages is the number of pages in the remapped region.
const nPages = 512

type stressor struct{}

func init() {
	stress.Register(&stressor{})
}

// Name implements stress.Stressor.Name.
func (*stressor) Name() string {
	return "remap"
}

// setTag writes the tag for page i. Each page holds one little-endian
// uint16 tag at its first element slot.
func setTag(data []byte, i int, pageSize uintptr, tag uint16) {
	binary.LittleEndian.PutUint16(data[uintptr(i)*pageSize:], tag)
}

// getTag reads the tag stored at page i.
func getTag(data []byte, i int, pageSize uintptr) uint16 {
	return binary.LittleEndian.Uint16(data[uintptr(i)*pageSize:])
}

// reverseOrder fills order with len(order)-1 down to 0.
func reverseOrder(order []int) {
	for i := range order {
		order[i] = len(order) - 1 - i
	}
}

// identityOrder fills order with 0 up to len(order)-1.
func identityOrder(order []int) {
	for i := range order {
		order[i] = i
	}
}

// collapseOrder maps every page onto page 0.
func collapseOrder(order []int) {
	for i := range order {
		order[i] = 0
	}
}

// remapOrder remaps each virtual page i onto the physical page currently
// backing page order[i], accumulating the wall time and count of successful
// remap calls. Each remap is attempted with the page pinned when the
// best-effort pin succeeds; if a pinned remap fails it is retried once
// unpinned, since pinning may legitimately interfere with remapping on some
// kernels. A remap that still fails aborts the pass.
func remapOrder(data []byte, order []int, pageSize uintptr, duration *time.Duration, count *float64) unix.Errno {
	base := memutil.SliceAddr(data)
	for i := range order {
		addr := base + uintptr(i)*pageSize
		lock := memutil.TryLock(addr, pageSize)
		start := time.Now()
		errno := memutil.RemapFilePages(addr, pageSize, 0, uintptr(order[i]), 0)
		if errno == 0 {
			*duration += time.Since(start)
			*count++
		}
		if lock == memutil.Locked {
			memutil.Unlock(addr, pageSize)
			if errno != 0 {
				// mlocked remap failed? try unlocked remap.
				errno = memutil.RemapFilePages(addr, pageSize, 0, uintptr(order[i]), 0)
			}
		}
		if errno != 0 {
			return errno
		}
	}
	return 0
}

// checkOrder verifies that every page's tag matches the requested order. A
// mismatch is a verification failure, not a crash condition.
func checkOrder(args *stress.Args, data []byte, order []int, pageSize uintptr, ordering string) {
	for i := range order {
		if getTag(data, i, pageSize) != uint16(order[i]) {
			args.Failures.Failf("%s: remap %s order pages failed", args.Name, ordering)
			return
		}
	}
}

// exerciseInvalidRemaps issues deliberately invalid remap requests against
// the probe addresses: unmapped target, garbage flag bits, invalid
// protection bits. The results are discarded; the kernel must simply not
// crash the process.
func exerciseInvalidRemaps(addr, pageSize uintptr, pgoff int) {
	memutil.RemapFilePages(addr, pageSize, 0, 0, 0)
	memutil.RemapFilePages(addr, pageSize, 0, 0, ^uintptr(0))
	memutil.RemapFilePages(addr, pageSize, ^uintptr(0), uintptr(pgoff), 0)
}

// Run implements stress.Stressor.Run.
func (s *stressor) Run(ctx context.Context, args *stress.Args) stress.Status {
	pageSize := uintptr(args.PageSize)
	dataSize := nPages * pageSize

	data, err := memutil.MapAnonShared(dataSize)
	if err != nil {
		args.Logger.Infof("mmap failed to allocate %d bytes, skipping stressor: %v", dataSize, err)
		return stress.NoResource
	}
	defer memutil.UnmapSlice(data)

	for i := 0; i < nPages; i++ {
		setTag(data, i, pageSize, uint16(i))
	}

	// Probe addresses for the negative battery. Probe failure only
	// disables that battery.
	unmapped, err := memutil.UnmappedProbe(pageSize)
	if err != nil {
		unmapped = 0
	}
	trailing, err := memutil.TrailingUnmappedProbe(pageSize)
	if err != nil {
		trailing = nil
	} else {
		defer memutil.UnmapSlice(trailing)
	}

	var seed [16]byte
	if _, err := rand.Read(seed[:]); err != nil {
		args.Logger.Infof("getrandom failed, skipping stressor: %v", err)
		return stress.NoResource
	}
	prng := mathrand.New(mathrand.NewPCG(
		binary.LittleEndian.Uint64(seed[0:8]),
		binary.LittleEndian.Uint64(seed[8:16])))

	var (
		duration time.Duration
		count    float64
		order    = make([]int, nPages)
		status   = stress.Success
	)

	for args.KeepRunning() {
		reverseOrder(order)
		errno := remapOrder(data, order, pageSize, &duration, &count)
		if errno == unix.ENOSYS && count == 0 {
			args.Logger.Info("remap_file_pages is not implemented, skipping stressor")
			status = stress.NotImplemented
			break
		}
		if errno != 0 {
			args.Failures.Failf("%s: remap_file_pages failed, errno=%d (%v)", args.Name, int(errno), errno)
			break
		}
		checkOrder(args, data, order, pageSize, "reverse")

		identityOrder(order)
		prng.Shuffle(nPages, func(i, j int) {
			order[i], order[j] = order[j], order[i]
		})
		if errno := remapOrder(data, order, pageSize, &duration, &count); errno != 0 {
			args.Failures.Failf("%s: remap_file_pages failed, errno=%d (%v)", args.Name, int(errno), errno)
			break
		}
		checkOrder(args, data, order, pageSize, "random")

		// All pages onto page 0: every page must then alias tag 0.
		collapseOrder(order)
		if errno := remapOrder(data, order, pageSize, &duration, &count); errno != 0 {
			args.Failures.Failf("%s: remap_file_pages failed, errno=%d (%v)", args.Name, int(errno), errno)
			break
		}
		checkOrder(args, data, order, pageSize, "all-to-1")

		identityOrder(order)
		if errno := remapOrder(data, order, pageSize, &duration, &count); errno != 0 {
			args.Failures.Failf("%s: remap_file_pages failed, errno=%d (%v)", args.Name, int(errno), errno)
			break
		}
		checkOrder(args, data, order, pageSize, "forward")

		if unmapped != 0 {
			exerciseInvalidRemaps(unmapped, pageSize, order[0])
		}
		if trailing != nil {
			exerciseInvalidRemaps(memutil.SliceAddr(trailing)+pageSize, pageSize, order[0])
		}

		args.Counter.Increment()
	}

	if count > 0 {
		args.Metrics.Record("nanosecs per page remap", float64(duration.Nanoseconds())/count)
	}
	return status
}
