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

// Package sighandling installs low-level signal handlers that bypass the Go
// runtime's signal machinery.
package sighandling

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

// sigAction mirrors the kernel's struct sigaction on 64-bit architectures.
type sigAction struct {
	Handler  uint64
	Flags    uint64
	Restorer uint64
	Mask     uint64
}

// maskLen is the kernel's sigset size in bytes.
const maskLen = 8

// ReplaceSignalHandler replaces the existing signal handler for the provided
// signal with the function pointer at `handler`. This bypasses the Go runtime
// signal handlers, and should only be used for low-level signal handlers where
// use of signal.Notify is not appropriate.
//
// It stores the value of the previously set handler in previous.
func ReplaceSignalHandler(sig unix.Signal, handler uintptr, previous *uintptr) error {
	return replaceSignalHandler(sig, handler, previous, false)
}

// ReplaceSignalHandlerBlockingAll is like ReplaceSignalHandler, but the
// installed handler runs with every signal except sig itself blocked. This
// keeps the handler from being interrupted while it manipulates state that
// a nested delivery of the same trap would corrupt.
func ReplaceSignalHandlerBlockingAll(sig unix.Signal, handler uintptr, previous *uintptr) error {
	return replaceSignalHandler(sig, handler, previous, true)
}

func replaceSignalHandler(sig unix.Signal, handler uintptr, previous *uintptr, blockAll bool) error {
	var sa sigAction

	// Get the existing signal handler information, and save the current
	// handler. The runtime's flags and restorer are kept so that a plain
	// return from the replacement handler still goes through rt_sigreturn.
	if _, _, e := unix.RawSyscall6(unix.SYS_RT_SIGACTION, uintptr(sig), 0, uintptr(unsafe.Pointer(&sa)), maskLen, 0, 0); e != 0 {
		return e
	}

	// Fail if there isn't a previous handler.
	if sa.Handler == 0 {
		return fmt.Errorf("previous handler for signal %x isn't set", sig)
	}

	*previous = uintptr(sa.Handler)

	// Install our own handler.
	sa.Handler = uint64(handler)
	if blockAll {
		sa.Mask = ^uint64(0) &^ (uint64(1) << (uint(sig) - 1))
	}
	if _, _, e := unix.RawSyscall6(unix.SYS_RT_SIGACTION, uintptr(sig), uintptr(unsafe.Pointer(&sa)), 0, maskLen, 0, 0); e != 0 {
		return e
	}

	return nil
}
