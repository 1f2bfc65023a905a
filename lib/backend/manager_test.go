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
	"testing"

	"github.com/makara-io/makara/utils/bandwidth"
	"github.com/makara-io/makara/utils/memsize"

	"github.com/stretchr/testify/require"
)

type fixtureFactory struct{}

func (f *fixtureFactory) Create(config interface{}, authConfig interface{}) (Client, error) {
	return ClientFixture(), nil
}

func init() {
	if err := Register("fixture", &fixtureFactory{}); err != nil {
		panic(err)
	}
}

func TestManagerNamespaceMatching(t *testing.T) {
	c1 := ClientFixture()
	c2 := ClientFixture()
	c3 := ClientFixture()

	tests := []struct {
		namespace string
		expected  Client
	}{
		{"static", c1},
		{"datacenter-a/vms", c2},
		{"ephemeral/build-7831", c3},
	}
	for _, test := range tests {
		t.Run(test.namespace, func(t *testing.T) {
			require := require.New(t)

			m := ManagerFixture()

			require.NoError(m.Register("static", c1))
			require.NoError(m.Register("datacenter-a/.*", c2))
			require.NoError(m.Register("ephemeral/.*", c3))

			result, err := m.GetClient(test.namespace)
			require.NoError(err)
			require.True(test.expected.(*testClient) == result.(*testClient))
		})
	}
}

func TestManagerNamespaceNoMatch(t *testing.T) {
	tests := []struct {
		desc      string
		namespace string
	}{
		{"empty namespace", ""},
		{"unknown namespace", "blah"},
	}
	for _, test := range tests {
		t.Run(test.desc, func(t *testing.T) {
			m := ManagerFixture()
			_, err := m.GetClient(test.namespace)
			require.Equal(t, ErrNamespaceNotFound, err)
		})
	}
}

func TestManagerNoopNamespace(t *testing.T) {
	require := require.New(t)

	m := ManagerFixture()

	c, err := m.GetClient(NoopNamespace)
	require.NoError(err)
	require.Equal(NoopClient{}, c)
}

func TestManagerRegisterDuplicateNamespace(t *testing.T) {
	require := require.New(t)

	m := ManagerFixture()

	require.NoError(m.Register("static", ClientFixture()))
	require.Error(m.Register("static", ClientFixture()))
}

func TestNewManagerFromConfig(t *testing.T) {
	require := require.New(t)

	configs := []Config{{
		Namespace: "images/.*",
		Backend:   map[string]interface{}{"fixture": nil},
	}}

	m, err := NewManager(configs, AuthConfig{})
	require.NoError(err)

	c, err := m.GetClient("images/img1")
	require.NoError(err)
	_, ok := c.(*testClient)
	require.True(ok)
}

func TestNewManagerThrottlesBandwidth(t *testing.T) {
	require := require.New(t)

	configs := []Config{{
		Namespace: "images/.*",
		Backend:   map[string]interface{}{"fixture": nil},
		Bandwidth: bandwidth.Config{
			EgressBitsPerSec:  10 * memsize.Gbit,
			IngressBitsPerSec: 10 * memsize.Gbit,
			Enable:            true,
		},
	}}

	m, err := NewManager(configs, AuthConfig{})
	require.NoError(err)

	c, err := m.GetClient("images/img1")
	require.NoError(err)
	_, ok := c.(*throttledClient)
	require.True(ok)

	require.NoError(m.AdjustBandwidth(2))
}

func TestNewManagerErrors(t *testing.T) {
	tests := []struct {
		desc   string
		config Config
	}{
		{"no backend", Config{Namespace: "images/.*"}},
		{"multiple backends", Config{
			Namespace: "images/.*",
			Backend: map[string]interface{}{
				"fixture": nil,
				"noop":    nil,
			},
		}},
		{"unregistered backend", Config{
			Namespace: "images/.*",
			Backend:   map[string]interface{}{"blah": nil},
		}},
		{"invalid namespace regexp", Config{
			Namespace: "images/(",
			Backend:   map[string]interface{}{"fixture": nil},
		}},
	}
	for _, test := range tests {
		t.Run(test.desc, func(t *testing.T) {
			_, err := NewManager([]Config{test.config}, AuthConfig{})
			require.Error(t, err)
		})
	}
}
