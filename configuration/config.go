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

// Package configuration composes subsystem configs into the single config
// an embedding application loads.
package configuration

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/makara-io/makara/lib/backend"
	"github.com/makara-io/makara/lib/imageservice"
	"github.com/makara-io/makara/lib/imagetransfer"
	"github.com/makara-io/makara/lib/tracing"
	"github.com/makara-io/makara/localdb"
	"github.com/makara-io/makara/metrics"
	"github.com/makara-io/makara/utils/bandwidth"
	"github.com/makara-io/makara/utils/configutil"
	"github.com/makara-io/makara/utils/log"
)

const (
	defaultConfigDir = "config"
	configDirKey     = "MAKARA_CONFIG_DIR"
)

// Config composes the configuration of every subsystem an embedder needs to
// run transfers. Backend auth credentials are expected to be overlaid from a
// separate secrets file via an extends directive.
type Config struct {
	Logging      log.Config           `yaml:"logging"`
	Metrics      metrics.Config       `yaml:"metrics"`
	Tracing      tracing.Config       `yaml:"tracing"`
	ImageService imageservice.Config  `yaml:"image_service"`
	Transfer     imagetransfer.Config `yaml:"transfer"`
	Backends     []backend.Config     `yaml:"backends"`
	Auth         backend.AuthConfig   `yaml:"auth"`
	LocalDB      localdb.Config       `yaml:"localdb"`
	Bandwidth    bandwidth.Config     `yaml:"bandwidth"`
}

// Path returns the path of the named file within the config directory, which
// defaults to "config" and may be overridden via MAKARA_CONFIG_DIR.
func Path(filename string) string {
	dir := os.Getenv(configDirKey)
	if dir == "" {
		dir = defaultConfigDir
	}
	return filepath.Join(dir, filename)
}

// Load loads the config file at filename into config, following any extends
// directives.
func Load(filename string, config *Config) error {
	if err := configutil.Load(filename, config); err != nil {
		return fmt.Errorf("load config %s: %s", filename, err)
	}
	return nil
}
