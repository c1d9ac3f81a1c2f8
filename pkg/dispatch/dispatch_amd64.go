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

package dispatch

import (
	"golang.org/x/sys/unix"
)

const archSupported = true

// sigsysHandler is the raw SIGSYS handler, written in assembly. It sets the
// selector back to allow, so that syscalls made by the handler itself or
// after its return are not re-trapped, and records the delivered siginfo
// for the owning thread to inspect. A plain return goes through the
// restorer preserved by sighandling.
func sigsysHandler()

// addrOfSigsysHandler returns the start address of sigsysHandler.
//
// In Go 1.17+, Go references to assembly functions resolve to an ABIInternal
// wrapper function rather than the function itself, so the address must be
// taken from assembly.
func addrOfSigsysHandler() uintptr

// BlockedSyscall issues the given syscall with the dispatch selector set to
// block, restoring allow immediately after the syscall instruction. The
// toggle happens within a few instructions of the syscall itself so that no
// unrelated runtime syscall can be trapped in between.
//
// When the call is trapped, the kernel resumes execution after the syscall
// instruction with the return register still holding the syscall number, so
// r1 equals trap on a successful redirect.
//
//go:noescape
func BlockedSyscall(trap uintptr) (r1 uintptr, errno unix.Errno)

// BlockedCall is like BlockedSyscall, but issues the syscall through a stub
// at the given address rather than from this package's text. The stub must
// hold a bare SYSCALL; RET sequence.
//
//go:noescape
func BlockedCall(stub, trap uintptr) (r1 uintptr, errno unix.Errno)
