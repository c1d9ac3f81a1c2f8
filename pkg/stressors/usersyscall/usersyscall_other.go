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

package usersyscall

import (
	"errors"

	"github.com/antoneliasson/stress-ng/pkg/dispatch"
	"github.com/antoneliasson/stress-ng/pkg/stress"
)

// Hand-assembled syscall issuance is amd64-only; without it the bounded
// probes are skipped. The whole stressor is unreachable here anyway since
// dispatch.Supported reports false without an arch trap handler.
const rawProbesAvailable = false

func mapSyscallStub(pageSize int) ([]byte, uintptr, error) {
	return nil, 0, errors.New("syscall stub is not supported on this architecture")
}

func (s *stressor) exerciseBounded(args *stress.Args, st *dispatch.State, begin, end, stubAddr uintptr, pid int) {
}
