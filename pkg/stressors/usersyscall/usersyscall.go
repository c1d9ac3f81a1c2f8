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

// Package usersyscall implements the syscall-interception stressor. It
// installs a user-space syscall dispatch filter with a SIGSYS trap handler
// and verifies that the kernel redirects selected syscalls to user space
// while leaving an allow-listed address range unaffected.
package usersyscall

import (
	"context"
	"os"
	"runtime"

	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"

	"github.com/antoneliasson/stress-ng/pkg/dispatch"
	"github.com/antoneliasson/stress-ng/pkg/hostsyscall"
	"github.com/antoneliasson/stress-ng/pkg/memutil"
	"github.com/antoneliasson/stress-ng/pkg/procmaps"
	"github.com/antoneliasson/stress-ng/pkg/stress"
)

// usrSyscallNumber is a reserved syscall number no kernel implements. When
// the dispatcher redirects it, the call site observes the number itself as
// the apparent return value; this is the behavior of current kernels rather
// than a documented ABI guarantee, so a mismatch is reported as a
// verification failure, not treated as fatal.
const usrSyscallNumber = 0xe000

type stressor struct{}

func init() {
	stress.Register(&stressor{})
}

// Name implements stress.Stressor.Name.
func (*stressor) Name() string {
	return "usersyscall"
}

// Supported implements stress.SupportChecker.Supported.
func (*stressor) Supported(name string) bool {
	if !dispatch.Supported() {
		logrus.WithField("stressor", name).Info("prctl user dispatch is not working, skipping the stressor")
		return false
	}
	return true
}

// Run implements stress.Stressor.Run.
func (s *stressor) Run(ctx context.Context, args *stress.Args) stress.Status {
	// Dispatch enablement is per-thread kernel state; stay on one thread
	// for the whole run.
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	st, err := dispatch.Acquire()
	if err != nil {
		args.Logger.Errorf("cannot install SIGSYS handler: %v", err)
		return stress.NoResource
	}
	defer st.Release()

	// The bounded-range probes need the binary's text range and a
	// syscall site outside it. Failure to set either up only disables
	// those probes.
	var textBegin, textEnd, stubAddr uintptr
	boundedOK := false
	if rawProbesAvailable {
		begin, end, err := procmaps.ExecutableTextRange()
		if err != nil {
			args.Logger.Infof("cannot locate executable text range: %v", err)
		} else if stub, addr, err := mapSyscallStub(args.PageSize); err != nil {
			args.Logger.Infof("cannot map syscall stub: %v", err)
		} else {
			defer memutil.UnmapSlice(stub)
			textBegin, textEnd = begin, end
			stubAddr = addr
			boundedOK = true
		}
	}
	pid := os.Getpid()

	status := stress.Success
	for args.KeepRunning() {
		// Probe 1: dispatch enabled but selector allowing. The reserved
		// number must reach the kernel and come back ENOSYS.
		st.SetAllow()
		if errno := st.Enable(0, 0); errno != 0 {
			args.Logger.Infof("user dispatch failed, errno=%d (%v)", int(errno), errno)
			break
		}
		if _, errno := hostsyscall.RawSyscall(usrSyscallNumber, 0, 0, 0); errno != unix.ENOSYS {
			args.Failures.Failf("%s: didn't get ENOSYS on user syscall, errno=%d (%v)", args.Name, int(errno), errno)
		}

		// Probe 2: selector blocking. The call must be redirected: it
		// appears to return its own number and the handler captures the
		// dispatch-trap metadata.
		st.ClearCaptured()
		r1, errno := dispatch.BlockedSyscall(usrSyscallNumber)
		if r1 != usrSyscallNumber {
			if errno == unix.ENOSYS {
				args.Logger.Info("got ENOSYS for usersyscall, skipping stressor")
				status = stress.NotImplemented
				break
			}
			args.Failures.Failf("%s: didn't get %#x on user syscall, got %#x instead, errno=%d (%v)",
				args.Name, usrSyscallNumber, r1, int(errno), errno)
			st.Disable()
			continue
		}
		info := st.Captured()
		if info.Code != dispatch.CodeUserDispatch {
			args.Failures.Failf("%s: didn't get SYS_USER_DISPATCH in siginfo si_code, got %#x instead",
				args.Name, info.Code)
			st.Disable()
			continue
		}
		if info.Errno != 0 {
			args.Failures.Failf("%s: didn't get 0x0 in siginfo si_errno, got %#x instead",
				args.Name, info.Errno)
			st.Disable()
			continue
		}
		st.Disable()

		// Probe 3: dispatch bounded to the binary's own text. Syscalls
		// issued from inside the range execute normally; the stub site
		// outside the range is intercepted.
		if boundedOK {
			s.exerciseBounded(args, st, textBegin, textEnd, stubAddr, pid)
		}

		args.Counter.Increment()
	}
	return status
}
