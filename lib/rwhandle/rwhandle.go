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

// Package rwhandle defines the progress-aware handles image bytes move
// through during a transfer, plus concrete handles for image service streams
// and datastore files.
package rwhandle

import "io"

// ReadHandle is a source of image bytes. A Read returning io.EOF marks
// end-of-stream.
type ReadHandle interface {
	io.ReadCloser

	// UpdateProgress notifies the handle that the transfer it feeds moved
	// forward. Handles use it for progress logging and keepalive, it never
	// fails the transfer.
	UpdateProgress()
}

// WriteHandle is a sink of image bytes.
type WriteHandle interface {
	io.WriteCloser
	UpdateProgress()
}

// NopReadHandle adapts rc into a ReadHandle with no-op progress.
func NopReadHandle(rc io.ReadCloser) ReadHandle {
	return nopReadHandle{rc}
}

type nopReadHandle struct{ io.ReadCloser }

func (nopReadHandle) UpdateProgress() {}

// NopWriteHandle adapts wc into a WriteHandle with no-op progress.
func NopWriteHandle(wc io.WriteCloser) WriteHandle {
	return nopWriteHandle{wc}
}

type nopWriteHandle struct{ io.WriteCloser }

func (nopWriteHandle) UpdateProgress() {}
