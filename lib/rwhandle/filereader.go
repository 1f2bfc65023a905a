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
	"io"
	"net/http"
	"strings"

	"github.com/makara-io/makara/lib/datastore"
	"github.com/makara-io/makara/utils/httputil"
)

// FileReader is a ReadHandle streaming a datastore file over HTTP GET.
// The request is bound to the constructor's context, so cancelling it
// interrupts an in-flight read.
type FileReader struct {
	url      string
	body     io.ReadCloser
	size     int64
	progress *progressLogger
}

// NewFileReader opens the file d addresses for reading. It fails fast on any
// non-200 response.
func NewFileReader(ctx context.Context, d datastore.Descriptor, opts ...Option) (*FileReader, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	u := d.URL()
	headers := map[string]string{}
	if h := cookieHeader(d.Cookies); h != "" {
		headers["Cookie"] = h
	}
	// The error passes through unwrapped, it already names the URL and
	// callers classify it with httputil.IsStatus.
	resp, err := httputil.Get(
		u,
		httputil.SendContext(ctx),
		httputil.SendTransport(o.transport),
		httputil.SendHeaders(headers),
		httputil.SendTimeout(0))
	if err != nil {
		return nil, err
	}
	size := d.Size
	if size <= 0 {
		size = resp.ContentLength
	}
	return &FileReader{
		url:      u,
		body:     resp.Body,
		size:     size,
		progress: newProgressLogger(d.Path().String(), size, o.clk),
	}, nil
}

func (r *FileReader) Read(p []byte) (int, error) {
	n, err := r.body.Read(p)
	r.progress.add(n)
	return n, err
}

// Close closes the response stream.
func (r *FileReader) Close() error {
	return r.body.Close()
}

// UpdateProgress logs percent completion, throttled.
func (r *FileReader) UpdateProgress() {
	r.progress.update()
}

// Size returns the size of the file being read, preferring the declared
// descriptor size over the response content length.
func (r *FileReader) Size() int64 {
	return r.size
}

// Transferred returns the number of bytes read so far.
func (r *FileReader) Transferred() int64 {
	return r.progress.transferred.Load()
}

func cookieHeader(cookies []*http.Cookie) string {
	var parts []string
	for _, c := range cookies {
		parts = append(parts, c.String())
	}
	return strings.Join(parts, "; ")
}

var _ ReadHandle = (*FileReader)(nil)
