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

package stress

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// LogFailureSink counts every failure and logs them through the given
// entry, rate-limited so a misbehaving kernel cannot flood the log.
type LogFailureSink struct {
	entry *logrus.Entry
	limit *rate.Limiter
	count atomic.Uint64
}

// NewLogFailureSink returns a sink logging at most one failure per the
// provided duration.
func NewLogFailureSink(entry *logrus.Entry, every time.Duration) *LogFailureSink {
	return &LogFailureSink{
		entry: entry,
		limit: rate.NewLimiter(rate.Every(every), 1),
	}
}

// Failf implements FailureSink.Failf.
func (s *LogFailureSink) Failf(format string, args ...any) {
	s.count.Add(1)
	if s.limit.Allow() {
		s.entry.Errorf(format, args...)
	}
}

// Count returns the number of failures recorded so far, including
// suppressed ones.
func (s *LogFailureSink) Count() uint64 {
	return s.count.Load()
}

// MetricRecorder collects named metrics for reporting at the end of a run.
type MetricRecorder struct {
	mu      sync.Mutex
	metrics map[string]float64
}

// NewMetricRecorder returns an empty recorder.
func NewMetricRecorder() *MetricRecorder {
	return &MetricRecorder{metrics: map[string]float64{}}
}

// Record implements MetricSink.Record. Recording the same label twice keeps
// the latest value.
func (m *MetricRecorder) Record(label string, value float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.metrics[label] = value
}

// Metrics returns a copy of the recorded metrics.
func (m *MetricRecorder) Metrics() map[string]float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]float64, len(m.metrics))
	for label, value := range m.metrics {
		out[label] = value
	}
	return out
}
