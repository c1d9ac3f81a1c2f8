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

package dispatch

import (
	"runtime"
	"sync"
	"testing"

	"golang.org/x/sys/unix"

	"github.com/antoneliasson/stress-ng/pkg/hostsyscall"
)

// reserved is a syscall number no kernel implements.
const reserved = 0xe000

func TestSupportedIsStable(t *testing.T) {
	first := Supported()
	second := Supported()
	if first != second {
		t.Errorf("Supported flapped: %v then %v", first, second)
	}
}

func TestReservedSyscallIsENOSYS(t *testing.T) {
	// Sanity for the probes below: with no dispatch configured at all,
	// the reserved number must not be implemented.
	if _, errno := hostsyscall.RawSyscall(reserved, 0, 0, 0); errno != unix.ENOSYS {
		t.Fatalf("reserved syscall returned errno %d, want ENOSYS", errno)
	}
}

// TestSupportedLeavesNoThreadEnabled hammers the feasibility probe from
// many goroutines, forcing thread migration pressure, then checks that a
// dispatched probe on a pinned thread sees exactly the expected trap. If
// the probe's disable ever lands on a different thread than its enable,
// a scheduler thread is left with dispatch on and traps unrelated
// syscalls during the Block window, corrupting the captured info.
func TestSupportedLeavesNoThreadEnabled(t *testing.T) {
	if !Supported() {
		t.Skip("syscall user dispatch not supported on this kernel")
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				Supported()
			}
		}()
	}
	wg.Wait()

	// Every thread must have dispatch fully off: an ordinary syscall
	// passes through everywhere.
	if _, errno := hostsyscall.RawSyscall(reserved, 0, 0, 0); errno != unix.ENOSYS {
		t.Fatalf("reserved syscall returned errno %d after probes, want ENOSYS", errno)
	}

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	s, err := Acquire()
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	defer s.Release()

	s.SetAllow()
	if errno := s.Enable(0, 0); errno != 0 {
		t.Fatalf("Enable failed: errno %d", errno)
	}
	defer s.Disable()

	s.ClearCaptured()
	r1, errno := BlockedSyscall(reserved)
	if errno == unix.ENOSYS {
		t.Skip("kernel reports ENOSYS for a dispatched syscall")
	}
	if r1 != reserved {
		t.Errorf("dispatched syscall returned %#x (errno %d), want %#x", r1, errno, reserved)
	}
	if info := s.Captured(); info.Code != CodeUserDispatch {
		t.Errorf("captured si_code = %#x, want %#x", info.Code, CodeUserDispatch)
	}
}

func TestDispatchRoundTrip(t *testing.T) {
	if !Supported() {
		t.Skip("syscall user dispatch not supported on this kernel")
	}
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	s, err := Acquire()
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	defer s.Release()

	s.SetAllow()
	if errno := s.Enable(0, 0); errno != 0 {
		t.Fatalf("Enable failed: errno %d", errno)
	}
	defer s.Disable()

	// Selector on allow: the reserved number passes through and the
	// kernel rejects it.
	if _, errno := hostsyscall.RawSyscall(reserved, 0, 0, 0); errno != unix.ENOSYS {
		t.Errorf("allowed reserved syscall returned errno %d, want ENOSYS", errno)
	}

	// Selector on block: the call is redirected to the trap handler and
	// appears to return its own number.
	s.ClearCaptured()
	r1, errno := BlockedSyscall(reserved)
	if errno == unix.ENOSYS {
		t.Skip("kernel reports ENOSYS for a dispatched syscall")
	}
	if r1 != reserved {
		t.Errorf("dispatched syscall returned %#x (errno %d), want %#x", r1, errno, reserved)
	}
	info := s.Captured()
	if info.Signo != int32(unix.SIGSYS) {
		t.Errorf("captured si_signo = %d, want SIGSYS", info.Signo)
	}
	if info.Code != CodeUserDispatch {
		t.Errorf("captured si_code = %#x, want %#x", info.Code, CodeUserDispatch)
	}
	if info.Errno != 0 {
		t.Errorf("captured si_errno = %#x, want 0", info.Errno)
	}
}
