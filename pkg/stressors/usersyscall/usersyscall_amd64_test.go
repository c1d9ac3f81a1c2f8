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

package usersyscall

import (
	"context"
	"fmt"
	"io"
	"os"
	"reflect"
	"testing"

	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"

	"github.com/antoneliasson/stress-ng/pkg/dispatch"
	"github.com/antoneliasson/stress-ng/pkg/memutil"
	"github.com/antoneliasson/stress-ng/pkg/procmaps"
	"github.com/antoneliasson/stress-ng/pkg/stress"
)

type recordingSink struct {
	failures []string
}

func (r *recordingSink) Failf(format string, args ...any) {
	r.failures = append(r.failures, fmt.Sprintf(format, args...))
}

func testArgs(sink *recordingSink) *stress.Args {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return &stress.Args{
		Name:        "usersyscall-test",
		PageSize:    os.Getpagesize(),
		KeepRunning: func() bool { return false },
		Counter:     &stress.Counter{},
		Metrics:     stress.NewMetricRecorder(),
		Failures:    sink,
		Logger:      logrus.NewEntry(logger),
	}
}

// TestMapSyscallStub executes the stub with dispatch never enabled: the
// syscall must run for real and return this process's pid.
func TestMapSyscallStub(t *testing.T) {
	stub, addr, err := mapSyscallStub(os.Getpagesize())
	if err != nil {
		t.Fatalf("mapSyscallStub failed: %v", err)
	}
	defer memutil.UnmapSlice(stub)

	if addr == 0 {
		t.Fatal("stub address is zero")
	}
	r1, errno := dispatch.BlockedCall(addr, unix.SYS_GETPID)
	if errno != 0 {
		t.Fatalf("stub getpid failed: errno %d", errno)
	}
	if got, want := int(r1), os.Getpid(); got != want {
		t.Errorf("stub getpid returned %d, want %d", got, want)
	}
}

// TestStubOutsideText checks the premise of the bounded probes: the mapped
// stub must not fall inside the binary's text range.
func TestStubOutsideText(t *testing.T) {
	begin, end, err := procmaps.ExecutableTextRange()
	if err != nil {
		t.Skipf("cannot locate executable text range: %v", err)
	}
	fn := reflect.ValueOf(mapSyscallStub).Pointer()
	if fn < begin || fn >= end {
		t.Errorf("package text at %#x is outside the executable range [%#x, %#x)", fn, begin, end)
	}

	stub, addr, err := mapSyscallStub(os.Getpagesize())
	if err != nil {
		t.Fatalf("mapSyscallStub failed: %v", err)
	}
	defer memutil.UnmapSlice(stub)
	if addr >= begin && addr < end {
		t.Errorf("stub at %#x falls inside the executable range [%#x, %#x)", addr, begin, end)
	}
}

func TestRunSingleIteration(t *testing.T) {
	s := &stressor{}
	if !s.Supported(s.Name()) {
		t.Skip("syscall user dispatch not supported on this kernel")
	}

	sink := &recordingSink{}
	args := testArgs(sink)
	ran := false
	args.KeepRunning = func() bool {
		if ran {
			return false
		}
		ran = true
		return true
	}

	status := s.Run(context.Background(), args)
	switch status {
	case stress.NotImplemented:
		t.Skip("kernel reports ENOSYS for a dispatched syscall")
	case stress.NoResource:
		t.Fatal("Run reported no resource")
	}
	if got := args.Counter.Value(); got != 1 {
		t.Errorf("counter is %d, want 1", got)
	}
	if len(sink.failures) != 0 {
		t.Errorf("unexpected verification failures: %v", sink.failures)
	}
}
