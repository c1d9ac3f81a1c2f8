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
	"context"
	"flag"
	"time"

	"github.com/google/subcommands"
	"github.com/sirupsen/logrus"

	"github.com/antoneliasson/stress-ng/pkg/config"
	"github.com/antoneliasson/stress-ng/pkg/stress"
	_ "github.com/antoneliasson/stress-ng/pkg/stressors"
)

// runCmd implements subcommands.Command for the "run" command.
type runCmd struct {
	configPath string
	timeout    time.Duration
	workers    int
	ops        uint64
	debug      bool
}

// Name implements subcommands.Command.Name.
func (*runCmd) Name() string {
	return "run"
}

// Synopsis implements subcommands.Command.Synopsis.
func (*runCmd) Synopsis() string {
	return "run the named stressors until the timeout or operation cap"
}

// Usage implements subcommands.Command.Usage.
func (*runCmd) Usage() string {
	return `run [flags] <stressor>...`
}

// SetFlags implements subcommands.Command.SetFlags.
func (r *runCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&r.configPath, "config", "", "path to a TOML configuration file")
	f.DurationVar(&r.timeout, "timeout", 0, "stop each run after this duration; zero runs until interrupted")
	f.IntVar(&r.workers, "workers", 1, "number of concurrent workers per stressor")
	f.Uint64Var(&r.ops, "ops", 0, "stop each stressor after this many operations; zero is unlimited")
	f.BoolVar(&r.debug, "debug", false, "enable debug logging")
}

// Execute implements subcommands.Command.Execute.
func (r *runCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...any) subcommands.ExitStatus {
	conf := config.Default()
	if r.configPath != "" {
		var err error
		conf, err = config.Load(r.configPath)
		if err != nil {
			logrus.Errorf("loading configuration: %v", err)
			return subcommands.ExitUsageError
		}
	}

	// Flags given on the command line win over the configuration file.
	f.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "timeout":
			conf.Timeout = config.Duration{Duration: r.timeout}
		case "workers":
			conf.Workers = r.workers
		case "ops":
			conf.Ops = r.ops
		case "debug":
			conf.Debug = r.debug
		}
	})

	names := f.Args()
	if len(names) == 0 {
		names = conf.Stressors
	}
	if len(names) == 0 {
		names = stress.Names()
	}

	logger := logrus.New()
	if conf.Debug {
		logger.SetLevel(logrus.DebugLevel)
	}

	runner := stress.NewRunner(logger, stress.Config{
		Workers: conf.Workers,
		Timeout: conf.Timeout.Duration,
		Ops:     conf.Ops,
	})
	status, err := runner.Run(ctx, names)
	if err != nil {
		logger.Errorf("run failed: %v", err)
		return subcommands.ExitUsageError
	}
	return exitStatus(logger, status)
}

// exitStatus maps the runner's worst stressor status to a process exit
// status. A stressor skipped for a missing kernel facility is not a
// failure.
func exitStatus(logger *logrus.Logger, status stress.Status) subcommands.ExitStatus {
	switch status {
	case stress.Success:
		return subcommands.ExitSuccess
	case stress.NotImplemented:
		logger.Info("some stressors were skipped")
		return subcommands.ExitSuccess
	default:
		logger.Errorf("run finished with status: %v", status)
		return subcommands.ExitFailure
	}
}
