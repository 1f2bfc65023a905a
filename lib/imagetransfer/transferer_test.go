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

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/makara-io/makara/core"
	"github.com/makara-io/makara/lib/backend"
	"github.com/makara-io/makara/lib/datastore"
	"github.com/makara-io/makara/lib/datastore/dstest"
	"github.com/makara-io/makara/lib/imageservice"
	"github.com/makara-io/makara/lib/imageservice/servicetest"
	"github.com/makara-io/makara/lib/rwhandle"
	"github.com/makara-io/makara/localdb"
	"github.com/makara-io/makara/mocks/lib/backend"
	"github.com/makara-io/makara/utils/bandwidth"
	"github.com/makara-io/makara/utils/memsize"
	"github.com/makara-io/makara/utils/randutil"
	"github.com/makara-io/makara/utils/testutil"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
	"github.com/uber-go/tally"
)

func startImageService(cleanup *testutil.Cleanup) (*servicetest.Server, imageservice.Client) {
	service := servicetest.NewServer()
	addr, stop := testutil.StartServer(service.Handler())
	cleanup.Add(stop)
	return service, imageservice.New(imageservice.Config{Addr: addr})
}

func startDatastore(cleanup *testutil.Cleanup, dcPath, name string) (*dstest.Server, string) {
	ds := dstest.NewServer(dcPath, name)
	addr, stop := testutil.StartServer(ds.Handler())
	cleanup.Add(stop)
	return ds, addr
}

func TestTransfererDownloadFlatImage(t *testing.T) {
	require := require.New(t)

	var cleanup testutil.Cleanup
	defer cleanup.Run()

	service, svc := startImageService(&cleanup)
	ds, dsAddr := startDatastore(&cleanup, "dc1", "ds1")
	ds.RequireCookie(&http.Cookie{Name: "session", Value: "52ee4bd3"})

	content := randutil.Blob(int(4 * ChunkSize))
	service.Seed("img1", content)

	limiter, err := bandwidth.NewLimiter(bandwidth.Config{
		EgressBitsPerSec:  10 * memsize.Gbit,
		IngressBitsPerSec: 10 * memsize.Gbit,
		Enable:            true,
	})
	require.NoError(err)

	stats := tally.NewTestScope("", nil)
	tr := New(Config{}, stats, svc, WithBandwidthLimiter(limiter))

	d := ds.Descriptor(dsAddr, "vm/disk.vmdk", int64(len(content)))
	require.NoError(tr.DownloadFlatImage(context.Background(), "img1", d))

	stored, ok := ds.Get("vm/disk.vmdk")
	require.True(ok)
	require.Equal(content, stored)

	success, ok := stats.Snapshot().Counters()["transfer_success+module=imagetransfer"]
	require.True(ok)
	require.Equal(int64(1), success.Value())
}

func TestTransfererDownloadConstructsHandlesOnce(t *testing.T) {
	require := require.New(t)

	var cleanup testutil.Cleanup
	defer cleanup.Run()

	service, svc := startImageService(&cleanup)
	ds, dsAddr := startDatastore(&cleanup, "dc1", "ds1")

	content := randutil.Blob(int(ChunkSize))
	service.Seed("img1", content)

	var imageReaders, fileWriters int
	var handleDesc datastore.Descriptor
	tr := New(Config{}, tally.NoopScope, svc,
		WithImageReaderFactory(func(rc io.ReadCloser) rwhandle.ReadHandle {
			imageReaders++
			return rwhandle.NewImageReader(rc)
		}),
		WithFileWriterFactory(func(
			ctx context.Context, d datastore.Descriptor, opts ...rwhandle.Option) (rwhandle.WriteHandle, error) {

			fileWriters++
			handleDesc = d
			return rwhandle.NewFileWriter(ctx, d, opts...)
		}))

	d := ds.Descriptor(dsAddr, "vm/disk.vmdk", int64(len(content)))
	require.NoError(tr.DownloadFlatImage(context.Background(), "img1", d))

	require.Equal(1, imageReaders)
	require.Equal(1, fileWriters)
	require.Equal(d, handleDesc)
}

func TestTransfererDownloadSizeFromImageMetadata(t *testing.T) {
	require := require.New(t)

	var cleanup testutil.Cleanup
	defer cleanup.Run()

	service, svc := startImageService(&cleanup)
	ds, dsAddr := startDatastore(&cleanup, "dc1", "ds1")

	content := randutil.Blob(int(ChunkSize + 777))
	service.Seed("img1", content)

	tr := New(Config{}, tally.NoopScope, svc)

	// Size 0 means the image metadata supplies the content length.
	d := ds.Descriptor(dsAddr, "vm/disk.vmdk", 0)
	require.NoError(tr.DownloadFlatImage(context.Background(), "img1", d))

	stored, ok := ds.Get("vm/disk.vmdk")
	require.True(ok)
	require.Equal(content, stored)
}

func TestTransfererDownloadTimesOut(t *testing.T) {
	require := require.New(t)

	var cleanup testutil.Cleanup
	defer cleanup.Run()

	content := randutil.Blob(256)

	stall := make(chan struct{})
	defer close(stall)
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/file") {
			// The content stream hangs after the first byte.
			w.Write(content[:1])
			if f, ok := w.(http.Flusher); ok {
				f.Flush()
			}
			<-stall
			return
		}
		json.NewEncoder(w).Encode(imageservice.Image{
			ID: "img1", Status: imageservice.StatusActive, Size: int64(len(content)),
		})
	})
	addr, stop := testutil.StartServer(h)
	cleanup.Add(stop)
	svc := imageservice.New(imageservice.Config{Addr: addr})

	ds, dsAddr := startDatastore(&cleanup, "dc1", "ds1")

	tr := New(Config{Timeout: 200 * time.Millisecond}, tally.NoopScope, svc)

	d := ds.Descriptor(dsAddr, "vm/disk.vmdk", int64(len(content)))
	err := tr.DownloadFlatImage(context.Background(), "img1", d)
	require.Error(err)
	require.True(errors.Is(err, context.DeadlineExceeded))
}

func TestTransfererUploadFlatImage(t *testing.T) {
	require := require.New(t)

	var cleanup testutil.Cleanup
	defer cleanup.Run()

	service, svc := startImageService(&cleanup)
	ds, dsAddr := startDatastore(&cleanup, "dc1", "ds1")

	content := randutil.Blob(int(2*ChunkSize + 512))
	ds.Put("vm/disk.vmdk", content)
	service.Create("img1")

	tr := New(Config{PollInterval: 5 * time.Millisecond}, tally.NoopScope, svc)

	d := ds.Descriptor(dsAddr, "vm/disk.vmdk", int64(len(content)))
	metadata := map[string]string{"disk_format": "vmdk"}
	require.NoError(tr.UploadFlatImage(context.Background(), "img1", d, metadata))

	img, ok := service.Image("img1")
	require.True(ok)
	require.Equal(imageservice.StatusActive, img.Status)
	require.Equal(int64(len(content)), img.Size)

	stored, ok := service.Content("img1")
	require.True(ok)
	require.Equal(content, stored)
	require.Equal(metadata, service.Metadata("img1"))

	digest, err := core.NewDigester().FromBytes(content)
	require.NoError(err)
	require.Equal(digest.Hex(), img.Checksum)
}

func TestTransfererUploadImageKilled(t *testing.T) {
	require := require.New(t)

	var cleanup testutil.Cleanup
	defer cleanup.Run()

	service, svc := startImageService(&cleanup)
	ds, dsAddr := startDatastore(&cleanup, "dc1", "ds1")

	content := randutil.Blob(int(ChunkSize))
	ds.Put("vm/disk.vmdk", content)
	service.Create("img1")
	service.SetUploadStatus(imageservice.StatusKilled)

	tr := New(Config{PollInterval: 5 * time.Millisecond}, tally.NoopScope, svc)

	d := ds.Descriptor(dsAddr, "vm/disk.vmdk", int64(len(content)))
	err := tr.UploadFlatImage(context.Background(), "img1", d, nil)
	require.Error(err)
	require.Contains(err.Error(), "killed")
}

func TestTransfererUploadTimesOut(t *testing.T) {
	require := require.New(t)

	var cleanup testutil.Cleanup
	defer cleanup.Run()

	service, svc := startImageService(&cleanup)
	ds, dsAddr := startDatastore(&cleanup, "dc1", "ds1")

	content := randutil.Blob(int(ChunkSize))
	ds.Put("vm/disk.vmdk", content)
	service.Create("img1")
	// The image never leaves saving, so the upload can only time out.
	service.SetUploadStatus(imageservice.StatusSaving)

	tr := New(
		Config{Timeout: 500 * time.Millisecond, PollInterval: 5 * time.Millisecond},
		tally.NoopScope, svc)

	d := ds.Descriptor(dsAddr, "vm/disk.vmdk", int64(len(content)))
	err := tr.UploadFlatImage(context.Background(), "img1", d, nil)
	require.Error(err)
	require.True(errors.Is(err, context.DeadlineExceeded))
}

func TestTransfererUploadRequiresSize(t *testing.T) {
	require := require.New(t)

	var cleanup testutil.Cleanup
	defer cleanup.Run()

	_, svc := startImageService(&cleanup)
	ds, dsAddr := startDatastore(&cleanup, "dc1", "ds1")

	tr := New(Config{}, tally.NoopScope, svc)

	d := ds.Descriptor(dsAddr, "vm/disk.vmdk", 0)
	err := tr.UploadFlatImage(context.Background(), "img1", d, nil)
	require.Error(err)
	require.Contains(err.Error(), "size unknown")
}

func TestTransfererReplicateFlatImage(t *testing.T) {
	require := require.New(t)

	var cleanup testutil.Cleanup
	defer cleanup.Run()

	service, svc := startImageService(&cleanup)
	ds1, addr1 := startDatastore(&cleanup, "dc1", "ds1")
	ds2, addr2 := startDatastore(&cleanup, "dc1", "ds2")

	content := randutil.Blob(int(2 * ChunkSize))
	service.Seed("img1", content)

	tr := New(Config{}, tally.NoopScope, svc)

	dsts := []datastore.Descriptor{
		ds1.Descriptor(addr1, "vm/disk.vmdk", int64(len(content))),
		ds2.Descriptor(addr2, "vm/disk.vmdk", int64(len(content))),
	}
	require.NoError(tr.ReplicateFlatImage(context.Background(), "img1", dsts))

	for _, ds := range []*dstest.Server{ds1, ds2} {
		stored, ok := ds.Get("vm/disk.vmdk")
		require.True(ok)
		require.Equal(content, stored)
	}
}

func TestTransfererExportFlatImage(t *testing.T) {
	require := require.New(t)

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	var cleanup testutil.Cleanup
	defer cleanup.Run()

	service, svc := startImageService(&cleanup)

	content := randutil.Blob(int(ChunkSize + 256))
	service.Seed("img1", content)

	client := mockbackend.NewMockClient(ctrl)
	var uploaded bytes.Buffer
	client.EXPECT().Upload("images", "images/img1", gomock.Any()).DoAndReturn(
		func(namespace, name string, src io.Reader) error {
			_, err := io.Copy(&uploaded, src)
			return err
		})

	m := backend.ManagerFixture()
	require.NoError(m.Register("images", client))

	tr := New(Config{}, tally.NoopScope, svc, WithBackends(m))

	require.NoError(tr.ExportFlatImage(context.Background(), "img1", "images", "images/img1"))
	require.Equal(content, uploaded.Bytes())
}

func TestTransfererImportFlatImage(t *testing.T) {
	require := require.New(t)

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	var cleanup testutil.Cleanup
	defer cleanup.Run()

	service, svc := startImageService(&cleanup)
	service.Create("img1")

	content := randutil.Blob(int(ChunkSize + 100))

	client := mockbackend.NewMockClient(ctrl)
	client.EXPECT().Stat("images", "images/img1").Return(core.NewImageInfo(int64(len(content))), nil)
	client.EXPECT().Download("images", "images/img1", gomock.Any()).DoAndReturn(
		func(namespace, name string, dst io.Writer) error {
			_, err := io.Copy(dst, bytes.NewReader(content))
			return err
		})

	m := backend.ManagerFixture()
	require.NoError(m.Register("images", client))

	tr := New(Config{PollInterval: 5 * time.Millisecond}, tally.NoopScope, svc, WithBackends(m))

	require.NoError(tr.ImportFlatImage(context.Background(), "img1", "images", "images/img1", 0, nil))

	stored, ok := service.Content("img1")
	require.True(ok)
	require.Equal(content, stored)

	img, ok := service.Image("img1")
	require.True(ok)
	require.Equal(imageservice.StatusActive, img.Status)
}

func TestTransfererJournalRecordsSessions(t *testing.T) {
	require := require.New(t)

	var cleanup testutil.Cleanup
	defer cleanup.Run()

	service, svc := startImageService(&cleanup)
	ds, dsAddr := startDatastore(&cleanup, "dc1", "ds1")

	db, dbCleanup := localdb.Fixture()
	cleanup.Add(dbCleanup)
	journal := NewJournal(db)

	content := randutil.Blob(1024)
	service.Seed("img1", content)

	tr := New(Config{}, tally.NoopScope, svc, WithJournal(journal))

	ctx := context.Background()
	require.NoError(tr.DownloadFlatImage(ctx, "img1", ds.Descriptor(dsAddr, "vm/a.vmdk", int64(len(content)))))

	rs, err := journal.List("img1")
	require.NoError(err)
	require.Len(rs, 1)
	require.Equal(DirectionDownload, rs[0].Direction)
	require.Equal("[ds1] vm/a.vmdk", rs[0].Target)
	require.Equal(int64(len(content)), rs[0].Size)
	require.Equal(JournalStatusSucceeded, rs[0].Status)
	require.NotNil(rs[0].EndedAt)

	// A missing image fails the transfer and the journal records it.
	require.Error(tr.DownloadFlatImage(ctx, "ghost", ds.Descriptor(dsAddr, "vm/b.vmdk", 64)))

	rs, err = journal.List("ghost")
	require.NoError(err)
	require.Len(rs, 1)
	require.Equal(JournalStatusFailed, rs[0].Status)
	require.NotEmpty(rs[0].Error)
}
