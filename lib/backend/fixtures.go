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
	"io/ioutil"
	"sort"
	"strings"
	"sync"

	"github.com/makara-io/makara/core"
	"github.com/makara-io/makara/lib/backend/backenderrors"
)

// ManagerFixture returns a Manager with no backends for testing purposes.
func ManagerFixture() *Manager {
	return &Manager{}
}

type testClient struct {
	sync.Mutex
	images map[string][]byte
}

// ClientFixture returns an in-memory Client for testing purposes.
func ClientFixture() Client {
	return &testClient{images: make(map[string][]byte)}
}

func (c *testClient) Stat(namespace, name string) (*core.ImageInfo, error) {
	c.Lock()
	defer c.Unlock()

	b, ok := c.images[name]
	if !ok {
		return nil, backenderrors.ErrImageNotFound
	}
	return core.NewImageInfo(int64(len(b))), nil
}

func (c *testClient) Upload(namespace, name string, src io.Reader) error {
	c.Lock()
	defer c.Unlock()

	b, err := ioutil.ReadAll(src)
	if err != nil {
		return err
	}
	c.images[name] = b
	return nil
}

func (c *testClient) Download(namespace, name string, dst io.Writer) error {
	c.Lock()
	defer c.Unlock()

	b, ok := c.images[name]
	if !ok {
		return backenderrors.ErrImageNotFound
	}
	_, err := dst.Write(b)
	return err
}

func (c *testClient) List(prefix string, opts ...ListOption) (*ListResult, error) {
	c.Lock()
	defer c.Unlock()

	var names []string
	for name := range c.images {
		if strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return &ListResult{Names: names}, nil
}
