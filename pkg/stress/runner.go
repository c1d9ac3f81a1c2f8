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
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Config configures a run.
type Config struct {
	// Workers is the number of concurrent workers per stressor.
	Workers int

	// Timeout bounds the whole run. Zero means run until the context is
	// canceled.
	Timeout time.Duration

	// Ops stops a stressor after this many completed iterations across
	// all its workers. Zero means unlimited.
	Ops uint64
}

// Runner drives registered stressors to completion.
type Runner struct {
	logger *logrus.Logger
	cfg    Config
}

// NewRunner returns a runner using the given logger and configuration.
func NewRunner(logger *logrus.Logger, cfg Config) *Runner {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return &Runner{logger: logger, cfg: cfg}
}

// Run executes the named stressors in sequence, each with the configured
// number of workers, and returns the most severe status any worker
// reported. An unsupported stressor is skipped and does not affect the
// result.
func (r *Runner) Run(ctx context.Context, names []string) (Status, error) {
	if r.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.Timeout)
		defer cancel()
	}

	pageSize := os.Getpagesize()
	worst := Success
	var worstMu sync.Mutex

	for _, name := range names {
		s, err := Lookup(name)
		if err != nil {
			return worst, err
		}
		if sc, ok := s.(SupportChecker); ok && !sc.Supported(name) {
			r.logger.WithField("stressor", name).Info("skipping unsupported stressor")
			continue
		}

		counter := &Counter{}
		metrics := NewMetricRecorder()
		failures := make([]*LogFailureSink, 0, r.cfg.Workers)
		start := time.Now()

		g, gctx := errgroup.WithContext(ctx)
		for i := 0; i < r.cfg.Workers; i++ {
			workerName := fmt.Sprintf("%s-%d", name, i)
			entry := r.logger.WithField("stressor", workerName)
			fail := NewLogFailureSink(entry, time.Second)
			failures = append(failures, fail)
			args := &Args{
				Name:     workerName,
				PageSize: pageSize,
				Counter:  counter,
				Metrics:  metrics,
				Failures: fail,
				Logger:   entry,
				KeepRunning: func() bool {
					if gctx.Err() != nil {
						return false
					}
					if r.cfg.Ops > 0 && counter.Value() >= r.cfg.Ops {
						return false
					}
					return true
				},
			}
			g.Go(func() error {
				st := s.Run(gctx, args)
				worstMu.Lock()
				if st > worst {
					worst = st
				}
				worstMu.Unlock()
				return nil
			})
		}
		g.Wait()

		elapsed := time.Since(start)
		var failed uint64
		for _, fail := range failures {
			failed += fail.Count()
		}
		entry := r.logger.WithFields(logrus.Fields{
			"stressor": name,
			"ops":      counter.Value(),
			"failures": failed,
		})
		if secs := elapsed.Seconds(); secs > 0 {
			entry = entry.WithField("ops/s", float64(counter.Value())/secs)
		}
		entry.Info("stressor finished")
		for label, value := range metrics.Metrics() {
			r.logger.WithField("stressor", name).Infof("%s: %.2f", label, value)
		}
	}

	worstMu.Lock()
	defer worstMu.Unlock()
	return worst, nil
}
