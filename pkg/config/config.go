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

// Package config loads the run configuration for stress-ng.
package config

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
)

// Duration wraps time.Duration so TOML can decode "10s"-style strings.
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.UnmarshalText.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

// Config is the run configuration.
type Config struct {
	// Timeout bounds the whole run; zero means unbounded.
	Timeout Duration `toml:"timeout"`
	// Workers is the number of concurrent workers per stressor.
	Workers int `toml:"workers"`
	// Ops stops each stressor after this many iterations; zero means
	// unlimited.
	Ops uint64 `toml:"ops"`
	// Stressors is the list of stressors to run. Empty means all
	// registered stressors.
	Stressors []string `toml:"stressors"`
	// Debug enables debug logging.
	Debug bool `toml:"debug"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{Workers: 1}
}

// Load reads a TOML configuration file on top of the defaults.
func Load(path string) (*Config, error) {
	c := Default()
	if _, err := toml.DecodeFile(path, c); err != nil {
		return nil, fmt.Errorf("decoding config %q: %w", path, err)
	}
	if c.Workers < 1 {
		return nil, fmt.Errorf("config %q: workers must be at least 1", path)
	}
	return c, nil
}
