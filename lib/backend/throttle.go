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

import (
	"io"

	"github.com/makara-io/makara/lib/rwhandle"
	"github.com/makara-io/makara/utils/bandwidth"
	"github.com/makara-io/makara/utils/log"
)

type throttledClient struct {
	Client
	bandwidth *bandwidth.Limiter
}

// throttle wraps client with bandwidth limits.
func throttle(client Client, bandwidth *bandwidth.Limiter) *throttledClient {
	return &throttledClient{client, bandwidth}
}

type sizer interface {
	Size() int64
}

// Ensure that we can get size from datastore file readers.
var _ sizer = (*rwhandle.FileReader)(nil)

func (c *throttledClient) Upload(namespace, name string, src io.Reader) error {
	if s, ok := src.(sizer); ok {
		// Only throttle if the src implements a Size method.
		if err := c.bandwidth.ReserveEgress(s.Size()); err != nil {
			log.With("name", name).Errorf("Error reserving egress: %s", err)
			// Ignore error.
		}
	}
	return c.Client.Upload(namespace, name, src)
}

func (c *throttledClient) Download(namespace, name string, dst io.Writer) error {
	info, err := c.Client.Stat(namespace, name)
	if err != nil {
		return err
	}
	if err := c.bandwidth.ReserveIngress(info.Size); err != nil {
		log.With("name", name).Errorf("Error reserving ingress: %s", err)
		// Ignore error.
	}
	return c.Client.Download(namespace, name, dst)
}

func (c *throttledClient) adjustBandwidth(denominator int) error {
	return c.bandwidth.Adjust(denominator)
}

func (c *throttledClient) egressLimit() int64 {
	return c.bandwidth.EgressLimit()
}

func (c *throttledClient) ingressLimit() int64 {
	return c.bandwidth.IngressLimit()
}
