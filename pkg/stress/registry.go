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
	"fmt"
	"sort"
	"sync"
)

var (
	registryMu sync.Mutex
	registry   = map[string]Stressor{}
)

// Register adds a stressor to the registry. It is intended to be called
// from init functions and panics on a duplicate name.
func Register(s Stressor) {
	registryMu.Lock()
	defer registryMu.Unlock()
	name := s.Name()
	if _, ok := registry[name]; ok {
		panic(fmt.Sprintf("stressor %q already registered", name))
	}
	registry[name] = s
}

// Lookup returns the registered stressor with the given name.
func Lookup(name string) (Stressor, error) {
	registryMu.Lock()
	defer registryMu.Unlock()
	s, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown stressor %q", name)
	}
	return s, nil
}

// Names returns the names of all registered stressors, sorted.
func Names() []string {
	registryMu.Lock()
	defer registryMu.Unlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
