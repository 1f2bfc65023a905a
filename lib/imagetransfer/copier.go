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
	"io"

	"github.com/makara-io/makara/lib/rwhandle"
	"github.com/makara-io/makara/utils/memsize"
)

// ChunkSize is the fixed read size every transfer uses.
const ChunkSize = 64 * memsize.KB

// CopyTask pumps fixed-size chunks from a read handle into a write handle on
// its own goroutine. After every chunk lands, both handles get a progress
// notification; the final end-of-stream read does not. The first read or
// write error terminates the task immediately. Errors surface only at Wait.
type CopyTask struct {
	src rwhandle.ReadHandle
	dst rwhandle.WriteHandle

	done chan struct{}
	err  error // written once before done is closed
}

// NewCopyTask creates a CopyTask moving bytes from src to dst.
func NewCopyTask(src rwhandle.ReadHandle, dst rwhandle.WriteHandle) *CopyTask {
	return &CopyTask{
		src:  src,
		dst:  dst,
		done: make(chan struct{}),
	}
}

// Start launches the copy loop and returns immediately.
func (t *CopyTask) Start() {
	go t.run()
}

// Wait blocks until the task is terminal and returns nil on a clean
// end-of-stream or the wrapped failure.
func (t *CopyTask) Wait() error {
	<-t.done
	return t.err
}

// Done exposes task completion for select loops. The channel is closed once
// the task is terminal.
func (t *CopyTask) Done() <-chan struct{} {
	return t.done
}

func (t *CopyTask) run() {
	defer close(t.done)
	buf := make([]byte, ChunkSize)
	for {
		n, rerr := t.src.Read(buf)
		if n > 0 {
			if _, werr := t.dst.Write(buf[:n]); werr != nil {
				t.err = newError(werr, "copy write")
				return
			}
			t.src.UpdateProgress()
			t.dst.UpdateProgress()
		}
		if rerr == io.EOF {
			return
		}
		if rerr != nil {
			t.err = newError(rerr, "copy read")
			return
		}
	}
}
