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
	"sync"

	"go.uber.org/atomic"
)

// TransferQueue is a bounded FIFO of byte chunks bridging a producing copy
// task and a consuming upload stream. Writes block while the queue is full,
// reads block while it is empty, so the slower side always throttles the
// faster one. Cumulative reads never exceed the total declared at
// construction: at the ceiling, reads return io.EOF forever, even if chunks
// remain queued.
//
// One goroutine may write and one may read. Close aborts both sides.
type TransferQueue struct {
	total int64
	items chan []byte

	transferred atomic.Int64

	// leftover carries the unread tail of the last item pulled. Owned by
	// the reading goroutine.
	leftover []byte

	closeOnce sync.Once
	closed    chan struct{}
}

// NewTransferQueue creates a queue which will deliver exactly total bytes,
// buffering up to depth chunks.
func NewTransferQueue(total int64, depth int) *TransferQueue {
	return &TransferQueue{
		total:  total,
		items:  make(chan []byte, depth),
		closed: make(chan struct{}),
	}
}

// Write enqueues a copy of p as a single chunk, blocking while the queue is
// full. It returns ErrQueueClosed after Close.
func (q *TransferQueue) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	select {
	case <-q.closed:
		return 0, ErrQueueClosed
	default:
	}
	b := make([]byte, len(p))
	copy(b, p)
	select {
	case q.items <- b:
		return len(p), nil
	case <-q.closed:
		return 0, ErrQueueClosed
	}
}

// Read fills p from queued chunks, carrying any chunk remainder over to the
// next call. It blocks only when nothing has been read yet and no chunk is
// available. Once the declared total has been read it returns (0, io.EOF)
// without consulting the queue.
func (q *TransferQueue) Read(p []byte) (int, error) {
	remaining := q.total - q.transferred.Load()
	if remaining <= 0 {
		return 0, io.EOF
	}
	if int64(len(p)) > remaining {
		p = p[:remaining]
	}
	n := 0
	for n < len(p) {
		if len(q.leftover) == 0 {
			if n > 0 {
				// Deliver what we have instead of blocking for more.
				select {
				case item := <-q.items:
					q.leftover = item
					continue
				default:
				}
				break
			}
			select {
			case <-q.closed:
				return 0, ErrQueueClosed
			default:
			}
			select {
			case item := <-q.items:
				q.leftover = item
			case <-q.closed:
				return 0, ErrQueueClosed
			}
		}
		c := copy(p[n:], q.leftover)
		q.leftover = q.leftover[c:]
		n += c
	}
	q.transferred.Add(int64(n))
	return n, nil
}

// Tell returns the total number of bytes the queue was declared to carry.
// It is constant for the queue's lifetime.
func (q *TransferQueue) Tell() int64 {
	return q.total
}

// Transferred returns the cumulative number of bytes read so far.
func (q *TransferQueue) Transferred() int64 {
	return q.transferred.Load()
}

// Close aborts the queue. Blocked and future reads and writes return
// ErrQueueClosed. Idempotent.
func (q *TransferQueue) Close() error {
	q.closeOnce.Do(func() { close(q.closed) })
	return nil
}

// UpdateProgress is a no-op so the queue can stand in as a WriteHandle.
func (q *TransferQueue) UpdateProgress() {}
