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
package dstest

import (
	"bytes"
	"fmt"
	"io/ioutil"
	"net/http"
	"testing"

	"github.com/makara-io/makara/utils/httputil"
	"github.com/makara-io/makara/utils/randutil"
	"github.com/makara-io/makara/utils/testutil"

	"github.com/stretchr/testify/require"
)

func TestServerUploadDownload(t *testing.T) {
	require := require.New(t)

	s := NewServer("dc1", "ds1")
	addr, stop := testutil.StartServer(s.Handler())
	defer stop()

	content := randutil.Blob(256)
	d := s.Descriptor(addr, "vm/disk.vmdk", int64(len(content)))

	_, err := httputil.Put(d.URL(), httputil.SendBody(bytes.NewReader(content)))
	require.NoError(err)

	stored, ok := s.Get("vm/disk.vmdk")
	require.True(ok)
	require.Equal(content, stored)

	resp, err := httputil.Get(d.URL())
	require.NoError(err)
	defer resp.Body.Close()
	result, err := ioutil.ReadAll(resp.Body)
	require.NoError(err)
	require.Equal(content, result)
}

func TestServerRejectsWrongDatastoreParams(t *testing.T) {
	require := require.New(t)

	s := NewServer("dc1", "ds1")
	addr, stop := testutil.StartServer(s.Handler())
	defer stop()

	s.Put("disk.vmdk", []byte("x"))

	_, err := httputil.Get(
		fmt.Sprintf("http://%s/folder/disk.vmdk?dcPath=other&dsName=ds1", addr))
	require.Error(err)
	require.True(httputil.IsStatus(err, http.StatusBadRequest))
}

func TestServerCookieAuth(t *testing.T) {
	require := require.New(t)

	s := NewServer("dc1", "ds1")
	s.RequireCookie(&http.Cookie{Name: "vmware_session", Value: "secret"})
	addr, stop := testutil.StartServer(s.Handler())
	defer stop()

	s.Put("disk.vmdk", []byte("x"))
	d := s.Descriptor(addr, "disk.vmdk", 1)

	_, err := httputil.Get(d.URL())
	require.Error(err)
	require.True(httputil.IsStatus(err, http.StatusUnauthorized))

	resp, err := httputil.Get(d.URL(), httputil.SendHeaders(map[string]string{
		"Cookie": "vmware_session=secret",
	}))
	require.NoError(err)
	resp.Body.Close()
}
