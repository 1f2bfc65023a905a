// Copyright (c) 2016-2019 Uber Technologies, Inc.
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
package backend

import "fmt"

var _factories = make(map[string]ClientFactory)

// ClientFactory creates a Client from backend and auth configuration. The
// configuration is passed in as raw yaml-unmarshaled values, since each
// backend defines its own configuration schema.
type ClientFactory interface {
	Create(config interface{}, authConfig interface{}) (Client, error)
}

// Register registers a new ClientFactory under the given backend name.
// Backend packages are expected to call Register from their init functions.
func Register(name string, factory ClientFactory) error {
	if name == "" {
		return fmt.Errorf("failed to register backend client factory: name is empty")
	}
	if factory == nil {
		return fmt.Errorf("failed to register backend client factory %s: factory is nil", name)
	}
	if _, ok := _factories[name]; ok {
		return fmt.Errorf("failed to register backend client factory %s: already registered", name)
	}
	_factories[name] = factory
	return nil
}

// GetFactory returns the ClientFactory registered under the given backend
// name.
func GetFactory(name string) (ClientFactory, error) {
	factory, ok := _factories[name]
	if !ok {
		return nil, fmt.Errorf("failed to get backend client factory %s: not found", name)
	}
	return factory, nil
}
