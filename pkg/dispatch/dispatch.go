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

// Package dispatch drives the kernel's syscall-user-dispatch facility: a
// per-thread filter that redirects selected syscalls to a SIGSYS trap
// instead of executing them, controlled by an address-range allow-list and
// a runtime selector byte.
//
// The selector byte and the captured signal info are process globals
// because a signal handler cannot receive ordinary call parameters. They
// are written only by the handler and the owning thread in strict
// alternation and are not safe to share across concurrently running
// stressor instances, so the package hands out its state through Acquire,
// which admits one owner at a time.
package dispatch

import (
	"fmt"
	"runtime"
	"sync"

	"golang.org/x/sys/unix"

	"github.com/antoneliasson/stress-ng/pkg/sighandling"
)

// Dispatch selector values, per the kernel's syscall_user_dispatch ABI.
const (
	filterAllow = 0 // SYSCALL_DISPATCH_FILTER_ALLOW
	filterBlock = 1 // SYSCALL_DISPATCH_FILTER_BLOCK
)

// CodeUserDispatch is the si_code delivered with a dispatch-trap SIGSYS
// (SYS_USER_DISPATCH).
const CodeUserDispatch = 2

// Handler state. The assembly SIGSYS handler addresses these directly, so
// they must stay simple package-level variables.
var (
	selector      uint8
	capturedSigno int32
	capturedErrno int32
	capturedCode  int32
)

// SignalInfo is the metadata captured from the last SIGSYS delivery. It is
// overwritten by the handler on each trap and must only be read after the
// triggering syscall has returned, never asynchronously.
type SignalInfo struct {
	Signo int32
	Errno int32
	Code  int32
}

var mu sync.Mutex

// Supported probes whether the kernel accepts syscall user dispatch. The
// probe enables the facility with the selector set to allow, so no syscall
// is actually redirected, and disables it again.
func Supported() bool {
	if !archSupported {
		return false
	}
	mu.Lock()
	defer mu.Unlock()
	// Dispatch is per-thread kernel state. The disable must land on the
	// thread the enable ran on, so the goroutine may not migrate between
	// the two prctl calls.
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	selector = filterAllow
	if errno := prctlDispatchOn(0, 0); errno != 0 {
		return false
	}
	prctlDispatchOff()
	return true
}

// State is the process's acquired dispatch facility. All methods must be
// called from a single goroutine pinned to its OS thread: the kernel tracks
// the enabled/disabled state per thread.
type State struct {
	prev uintptr
}

// Acquire installs the SIGSYS trap handler and hands the caller exclusive
// use of the dispatch state. The handler runs with all other signals
// blocked so a nested trap cannot corrupt the captured info.
func Acquire() (*State, error) {
	if !archSupported {
		return nil, fmt.Errorf("syscall user dispatch is not supported on this architecture")
	}
	mu.Lock()
	s := &State{}
	selector = filterAllow
	if err := sighandling.ReplaceSignalHandlerBlockingAll(unix.SIGSYS, addrOfSigsysHandler(), &s.prev); err != nil {
		mu.Unlock()
		return nil, fmt.Errorf("installing SIGSYS handler: %w", err)
	}
	return s, nil
}

// Release disables dispatch, restores the previous SIGSYS handler and
// gives up ownership.
func (s *State) Release() error {
	prctlDispatchOff()
	var discard uintptr
	err := sighandling.ReplaceSignalHandler(unix.SIGSYS, s.prev, &discard)
	mu.Unlock()
	return err
}

// SetAllow sets the selector so syscalls pass through untouched.
func (s *State) SetAllow() {
	selector = filterAllow
}

// Enable turns dispatch on for the calling thread. Syscalls issued from
// inside [begin, begin+length) are always passed through; everywhere else
// the selector byte decides. A zero range leaves every call site subject to
// the selector.
func (s *State) Enable(begin, length uintptr) unix.Errno {
	return prctlDispatchOn(begin, length)
}

// Disable turns dispatch off for the calling thread.
func (s *State) Disable() unix.Errno {
	return prctlDispatchOff()
}

// ClearCaptured resets the captured signal info before a probe.
func (s *State) ClearCaptured() {
	capturedSigno = 0
	capturedErrno = 0
	capturedCode = 0
}

// Captured returns the signal info recorded by the most recent trap.
func (s *State) Captured() SignalInfo {
	return SignalInfo{
		Signo: capturedSigno,
		Errno: capturedErrno,
		Code:  capturedCode,
	}
}
