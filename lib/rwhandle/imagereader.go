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
	"io"

	"github.com/makara-io/makara/utils/log"

	"go.uber.org/atomic"
)

// ImageReader is a ReadHandle over an image service content stream.
type ImageReader struct {
	rc          io.ReadCloser
	transferred atomic.Int64
	eofLogged   atomic.Bool
}

// NewImageReader wraps an image service download stream.
func NewImageReader(rc io.ReadCloser) *ImageReader {
	return &ImageReader{rc: rc}
}

func (r *ImageReader) Read(p []byte) (int, error) {
	n, err := r.rc.Read(p)
	r.transferred.Add(int64(n))
	if err == io.EOF && !r.eofLogged.Swap(true) {
		log.With("transferred", r.transferred.Load()).
			Debug("Completed reading image stream")
	}
	return n, err
}

// Close closes the underlying stream.
func (r *ImageReader) Close() error {
	return r.rc.Close()
}

// UpdateProgress is a no-op. Image service streams need no keepalive.
func (r *ImageReader) UpdateProgress() {}

// Transferred returns the number of bytes read so far.
func (r *ImageReader) Transferred() int64 {
	return r.transferred.Load()
}
