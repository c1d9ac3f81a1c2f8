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

package main

import (
	"io"
	"testing"

	"github.com/google/subcommands"
	"github.com/sirupsen/logrus"

	"github.com/antoneliasson/stress-ng/pkg/stress"
)

func TestExitStatus(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	for _, tc := range []struct {
		status stress.Status
		want   subcommands.ExitStatus
	}{
		{stress.Success, subcommands.ExitSuccess},
		// A stressor that bails out because the kernel lacks the
		// exercised facility is a skip, never a failure.
		{stress.NotImplemented, subcommands.ExitSuccess},
		{stress.NoResource, subcommands.ExitFailure},
	} {
		if got := exitStatus(logger, tc.status); got != tc.want {
			t.Errorf("exitStatus(%v) = %v, want %v", tc.status, got, tc.want)
		}
	}
}
