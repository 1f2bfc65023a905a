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
package rwhandle

import (
	"context"
	"net/http"
	"testing"

	"github.com/makara-io/makara/lib/datastore/dstest"
	"github.com/makara-io/makara/utils/httputil"
	"github.com/makara-io/makara/utils/randutil"
	"github.com/makara-io/makara/utils/testutil"

	"github.com/stretchr/testify/require"
)

func TestFileWriterUpload(t *testing.T) {
	require := require.New(t)

	s := dstest.NewServer("dc1", "ds1")
	addr, stop := testutil.StartServer(s.Handler())
	defer stop()

	content := randutil.Blob(4096)
	d := s.Descriptor(addr, "vm/disk.vmdk", int64(len(content)))

	w, err := NewFileWriter(context.Background(), d)
	require.NoError(err)
	for i := 0; i < len(content); i += 1024 {
		n, err := w.Write(content[i : i+1024])
		require.NoError(err)
		require.Equal(1024, n)
		w.UpdateProgress()
	}
	require.NoError(w.Close())
	require.Equal(int64(len(content)), w.Transferred())

	stored, ok := s.Get("vm/disk.vmdk")
	require.True(ok)
	require.Equal(content, stored)

	// Close is idempotent.
	require.NoError(w.Close())
}

func TestFileWriterUploadWithCookie(t *testing.T) {
	require := require.New(t)

	s := dstest.NewServer("dc1", "ds1")
	s.RequireCookie(&http.Cookie{Name: "vmware_session", Value: "secret"})
	addr, stop := testutil.StartServer(s.Handler())
	defer stop()

	content := randutil.Blob(64)
	d := s.Descriptor(addr, "disk.vmdk", int64(len(content)))

	w, err := NewFileWriter(context.Background(), d)
	require.NoError(err)
	_, err = w.Write(content)
	require.NoError(err)
	require.NoError(w.Close())

	stored, ok := s.Get("disk.vmdk")
	require.True(ok)
	require.Equal(content, stored)
}

func TestFileWriterSurfacesRejection(t *testing.T) {
	require := require.New(t)

	s := dstest.NewServer("dc1", "ds1")
	s.RequireCookie(&http.Cookie{Name: "vmware_session", Value: "secret"})
	addr, stop := testutil.StartServer(s.Handler())
	defer stop()

	d := s.Descriptor(addr, "disk.vmdk", 64)
	d.Cookies = nil // Strip auth so the server rejects the upload.

	w, err := NewFileWriter(context.Background(), d)
	require.NoError(err)
	err = w.Close()
	require.Error(err)
	require.True(httputil.IsStatus(err, http.StatusUnauthorized))
}

func TestFileWriterShortUploadFails(t *testing.T) {
	require := require.New(t)

	s := dstest.NewServer("dc1", "ds1")
	addr, stop := testutil.StartServer(s.Handler())
	defer stop()

	// Declare more bytes than will be written.
	d := s.Descriptor(addr, "disk.vmdk", 128)

	w, err := NewFileWriter(context.Background(), d)
	require.NoError(err)
	_, err = w.Write(randutil.Blob(64))
	require.NoError(err)
	require.Error(w.Close())
}

func TestFileWriterContextCancelUnblocks(t *testing.T) {
	require := require.New(t)

	s := dstest.NewServer("dc1", "ds1")
	addr, stop := testutil.StartServer(s.Handler())
	defer stop()

	d := s.Descriptor(addr, "disk.vmdk", 1024)

	ctx, cancel := context.WithCancel(context.Background())
	w, err := NewFileWriter(ctx, d)
	require.NoError(err)
	cancel()
	require.Error(w.Close())
}
