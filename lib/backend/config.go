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

import "github.com/makara-io/makara/utils/bandwidth"

// Config defines the configuration of a single backend client, bound to all
// namespaces matching the Namespace regular expression. The Backend map must
// contain exactly one entry, keyed on the registered name of the backend,
// whose value holds the backend-specific configuration.
type Config struct {
	Namespace string                 `yaml:"namespace"`
	Backend   map[string]interface{} `yaml:"backend"`

	// If enabled, throttles upload / download bandwidth.
	Bandwidth bandwidth.Config `yaml:"bandwidth"`
}

// AuthConfig defines auth configuration for backend clients, keyed on the
// registered name of the backend. Values hold backend-specific credentials
// and are normally overlaid from a separate secrets file.
type AuthConfig map[string]interface{}
