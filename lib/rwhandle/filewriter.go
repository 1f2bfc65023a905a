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
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/makara-io/makara/lib/datastore"
	"github.com/makara-io/makara/utils/httputil"
	"github.com/makara-io/makara/utils/log"
)

// FileWriter is a WriteHandle streaming a datastore file over HTTP PUT. The
// request runs on its own goroutine and consumes writes through a pipe.
// Close flushes the stream and surfaces the final response status, and the
// request is bound to the constructor's context so cancelling it interrupts
// a blocked write.
type FileWriter struct {
	url      string
	pw       *io.PipeWriter
	progress *progressLogger

	done chan struct{}
	err  error // written once before done is closed

	closeOnce sync.Once
	closeErr  error
}

// NewFileWriter opens the file d addresses for writing. The request is built
// by hand so Content-Length carries the declared size instead of falling back
// to chunked encoding, which datastore file services reject.
func NewFileWriter(ctx context.Context, d datastore.Descriptor, opts ...Option) (*FileWriter, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	u := d.URL()
	pr, pw := io.Pipe()
	req, err := http.NewRequest("PUT", u, pr)
	if err != nil {
		return nil, fmt.Errorf("new request: %s", err)
	}
	req = req.WithContext(ctx)
	req.ContentLength = d.Size
	req.Header.Set("Content-Type", "application/octet-stream")
	for _, c := range d.Cookies {
		req.AddCookie(c)
	}
	w := &FileWriter{
		url:      u,
		pw:       pw,
		progress: newProgressLogger(d.Path().String(), d.Size, o.clk),
		done:     make(chan struct{}),
	}
	client := &http.Client{Transport: o.transport}
	go func() {
		defer close(w.done)
		resp, err := client.Do(req)
		if err != nil {
			w.err = fmt.Errorf("put %s: %s", u, err)
			pr.CloseWithError(w.err)
			return
		}
		defer resp.Body.Close()
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			w.err = httputil.NewStatusError(resp)
		}
		pr.CloseWithError(w.err)
	}()
	return w, nil
}

// Write pushes p into the request stream, blocking until the server consumed
// it. If the request already failed, the failure is returned instead of the
// pipe error.
func (w *FileWriter) Write(p []byte) (int, error) {
	n, err := w.pw.Write(p)
	if err != nil {
		select {
		case <-w.done:
			if w.err != nil {
				return n, w.err
			}
		default:
		}
		return n, err
	}
	w.progress.add(n)
	return n, nil
}

// Close flushes the stream and blocks until the server acknowledged the full
// upload. It returns the terminal request error, if any. Idempotent.
func (w *FileWriter) Close() error {
	w.closeOnce.Do(func() {
		if err := w.pw.Close(); err != nil {
			log.With("url", w.url).Errorf("Error closing upload pipe: %s", err)
		}
		<-w.done
		w.closeErr = w.err
	})
	return w.closeErr
}

// UpdateProgress logs percent completion, throttled.
func (w *FileWriter) UpdateProgress() {
	w.progress.update()
}

// Transferred returns the number of bytes written so far.
func (w *FileWriter) Transferred() int64 {
	return w.progress.transferred.Load()
}

var _ WriteHandle = (*FileWriter)(nil)
