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
package imagetransfer

import "time"

// Config defines Transferer configuration.
type Config struct {
	// Timeout bounds every transfer operation end to end. It is the only
	// cancellation mechanism a transfer has.
	Timeout time.Duration `yaml:"timeout"`

	// QueueDepth is the number of in-flight chunks an upload buffers
	// between the datastore read and the image service write.
	QueueDepth int `yaml:"queue_depth"`

	// PollInterval is the delay between image status reads while an upload
	// settles server-side.
	PollInterval time.Duration `yaml:"poll_interval"`
}

func (c Config) applyDefaults() Config {
	if c.Timeout == 0 {
		c.Timeout = 30 * time.Minute
	}
	if c.QueueDepth == 0 {
		c.QueueDepth = 10
	}
	if c.PollInterval == 0 {
		c.PollInterval = 5 * time.Second
	}
	return c
}
