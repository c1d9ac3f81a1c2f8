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

package dispatch

import (
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/antoneliasson/stress-ng/pkg/hostsyscall"
)

// prctlDispatchOn enables syscall user dispatch for the calling thread with
// the package selector byte. The kernel reads the byte on every syscall
// entry, so its address must stay valid for as long as dispatch is on;
// package-level storage guarantees that.
func prctlDispatchOn(begin, length uintptr) unix.Errno {
	return hostsyscall.RawSyscallErrno6(unix.SYS_PRCTL,
		unix.PR_SET_SYSCALL_USER_DISPATCH, unix.PR_SYS_DISPATCH_ON,
		begin, length, uintptr(unsafe.Pointer(&selector)), 0)
}

// prctlDispatchOff disables syscall user dispatch for the calling thread.
func prctlDispatchOff() unix.Errno {
	return hostsyscall.RawSyscallErrno6(unix.SYS_PRCTL,
		unix.PR_SET_SYSCALL_USER_DISPATCH, unix.PR_SYS_DISPATCH_OFF,
		0, 0, 0, 0)
}
