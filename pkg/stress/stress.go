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

// Package stress defines the contract between stressor plugins and the
// orchestrating runner: the per-worker arguments a stressor consumes, the
// status it reports back, and the registry the runner selects from.
package stress

import (
	"context"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// Status is a stressor's terminal result.
type Status int

const (
	// Success means the stressor ran until told to stop.
	Success Status = iota
	// NotImplemented means the kernel lacks the exercised facility; the
	// stressor was skipped, which is not a failure.
	NotImplemented
	// NoResource means a fatal resource problem (allocation or handler
	// installation failed) stopped the stressor before it could run.
	NoResource
)

// String implements fmt.Stringer.String.
func (s Status) String() string {
	switch s {
	case Success:
		return "success"
	case NotImplemented:
		return "not implemented"
	case NoResource:
		return "no resource"
	default:
		return "unknown"
	}
}

// Counter is a monotonic progress counter, incremented once per completed
// unit of work.
type Counter struct {
	v atomic.Uint64
}

// Increment adds one completed unit of work.
func (c *Counter) Increment() {
	c.v.Add(1)
}

// Value returns the current count.
func (c *Counter) Value() uint64 {
	return c.v.Load()
}

// MetricSink accepts named performance metrics, reported once at stressor
// teardown.
type MetricSink interface {
	Record(label string, value float64)
}

// FailureSink records verification mismatches. Failures are counted and
// logged but never stop the stressor; they signal kernel incorrectness, not
// a crash condition.
type FailureSink interface {
	Failf(format string, args ...any)
}

// Args carries the per-worker state the runner supplies to a stressor.
type Args struct {
	// Name is the stable worker name, used for log attribution.
	Name string

	// PageSize is the platform page size.
	PageSize int

	// KeepRunning reports whether the stressor should begin another
	// iteration. It is checked once per full iteration, never mid-pass.
	KeepRunning func() bool

	// Counter is the worker's progress counter.
	Counter *Counter

	// Metrics receives named metrics at teardown.
	Metrics MetricSink

	// Failures receives verification mismatches.
	Failures FailureSink

	// Logger carries the worker name for informational and skip notices.
	Logger *logrus.Entry
}

// Stressor is a single exercise module. Run executes the stressor's loop
// until KeepRunning reports false or a fatal/skip condition is raised.
type Stressor interface {
	Name() string
	Run(ctx context.Context, args *Args) Status
}

// SupportChecker is implemented by stressors that can probe for kernel
// support up front. Returning false skips the stressor without counting as
// a failure.
type SupportChecker interface {
	Supported(name string) bool
}
