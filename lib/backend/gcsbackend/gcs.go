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
package gcsbackend

import (
	"context"
	"io"

	"github.com/makara-io/makara/lib/backend/backenderrors"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
)

// GCS defines the operations we use in the gcs api. Useful for mocking.
type GCS interface {
	ObjectAttrs(objectName string) (*storage.ObjectAttrs, error)

	Download(objectName string, w io.Writer) (int64, error)

	Upload(objectName string, r io.Reader) (int64, error)

	GetObjectIterator(prefix string) iterator.Pageable
}

// GCSImpl implements the GCS interface on top of a bucket handle.
type GCSImpl struct {
	ctx    context.Context
	bucket *storage.BucketHandle
	config *Config
}

// NewGCS creates a new GCSImpl.
func NewGCS(ctx context.Context, bucket *storage.BucketHandle, config *Config) *GCSImpl {
	return &GCSImpl{ctx, bucket, config}
}

var _ GCS = (*GCSImpl)(nil)

// ObjectAttrs returns the attributes of the named object.
func (g *GCSImpl) ObjectAttrs(objectName string) (*storage.ObjectAttrs, error) {
	return g.bucket.Object(objectName).Attrs(g.ctx)
}

// Download reads the named object into w.
func (g *GCSImpl) Download(objectName string, w io.Writer) (int64, error) {
	rc, err := g.bucket.Object(objectName).NewReader(g.ctx)
	if err != nil {
		if err == storage.ErrObjectNotExist {
			return 0, backenderrors.ErrImageNotFound
		}
		return 0, err
	}
	defer rc.Close()

	return io.Copy(w, rc)
}

// Upload writes r to the named object.
func (g *GCSImpl) Upload(objectName string, r io.Reader) (int64, error) {
	wc := g.bucket.Object(objectName).NewWriter(g.ctx)
	wc.ChunkSize = int(g.config.UploadChunkSize)

	written, err := io.Copy(wc, r)
	if err != nil {
		return 0, err
	}
	if err := wc.Close(); err != nil {
		return 0, err
	}
	return written, nil
}

// GetObjectIterator returns a paged iterator over objects matching prefix.
func (g *GCSImpl) GetObjectIterator(prefix string) iterator.Pageable {
	var query storage.Query
	query.Prefix = prefix
	return g.bucket.Objects(g.ctx, &query)
}
