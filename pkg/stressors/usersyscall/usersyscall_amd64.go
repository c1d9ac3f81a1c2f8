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

//go:build amd64
// +build amd64

package usersyscall

import (
	"golang.org/x/sys/unix"

	"github.com/antoneliasson/stress-ng/pkg/dispatch"
	"github.com/antoneliasson/stress-ng/pkg/memutil"
	"github.com/antoneliasson/stress-ng/pkg/stress"
)

// rawProbesAvailable reports whether this build can issue a hand-assembled
// syscall from outside the binary's text.
const rawProbesAvailable = true

// syscallStubCode is a bare SYSCALL; RET sequence. Mapped into an
// executable page at runtime, it gives a syscall site guaranteed to fall
// outside the binary's text mappings.
var syscallStubCode = []byte{0x0f, 0x05, 0xc3}

// mapSyscallStub maps one page, writes the stub into it and seals it
// read+execute. The caller unmaps the returned slice.
func mapSyscallStub(pageSize int) ([]byte, uintptr, error) {
	stub, err := memutil.MapSlice(0, uintptr(pageSize),
		unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANONYMOUS, ^uintptr(0), 0)
	if err != nil {
		return nil, 0, err
	}
	copy(stub, syscallStubCode)
	if err := unix.Mprotect(stub, unix.PROT_READ|unix.PROT_EXEC); err != nil {
		memutil.UnmapSlice(stub)
		return nil, 0, err
	}
	return stub, memutil.SliceAddr(stub), nil
}

// exerciseBounded runs the library-boundary probes with dispatch restricted
// to [begin, end): getpid through this binary's own syscall path must
// execute normally, while the same call issued through the stub outside the
// range must be intercepted and echo the syscall number back.
func (s *stressor) exerciseBounded(args *stress.Args, st *dispatch.State, begin, end, stubAddr uintptr, pid int) {
	st.SetAllow()
	if errno := st.Enable(begin, end-begin); errno != 0 {
		args.Logger.Infof("user dispatch failed, errno=%d (%v)", int(errno), errno)
		return
	}
	retText, errText := dispatch.BlockedSyscall(unix.SYS_GETPID)
	retStub, errStub := dispatch.BlockedCall(stubAddr, unix.SYS_GETPID)
	st.Disable()

	if int(retText) != pid {
		args.Failures.Failf("%s: didn't get pid on in-text getpid syscall, got %d instead, errno=%d (%v)",
			args.Name, int(retText), int(errText), errText)
	}
	if retStub != unix.SYS_GETPID {
		args.Failures.Failf("%s: didn't get %#x on stub getpid syscall, got %#x instead, errno=%d (%v)",
			args.Name, uintptr(unix.SYS_GETPID), retStub, int(errStub), errStub)
	}
}
