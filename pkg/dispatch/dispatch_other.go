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

//go:build linux && !amd64
// +build linux,!amd64

package dispatch

import (
	"golang.org/x/sys/unix"
)

// The trap handler and the raw-issue helpers are assembly and exist only
// for amd64. Supported reports false elsewhere, so none of these can be
// reached.
const archSupported = false

func addrOfSigsysHandler() uintptr {
	panic("syscall user dispatch is not supported on this architecture")
}

// BlockedSyscall is not supported on this architecture.
func BlockedSyscall(trap uintptr) (r1 uintptr, errno unix.Errno) {
	panic("syscall user dispatch is not supported on this architecture")
}

// BlockedCall is not supported on this architecture.
func BlockedCall(stub, trap uintptr) (r1 uintptr, errno unix.Errno) {
	panic("syscall user dispatch is not supported on this architecture")
}
