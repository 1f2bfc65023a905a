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
	"io"
	"testing"
	"time"

	"github.com/makara-io/makara/utils/randutil"

	"github.com/stretchr/testify/require"
)

func TestTransferQueueFIFOAndChunkCarry(t *testing.T) {
	require := require.New(t)

	chunks := [][]byte{
		randutil.Text(10),
		randutil.Text(20),
		randutil.Text(5),
	}
	q := NewTransferQueue(35, 4)
	for _, c := range chunks {
		n, err := q.Write(c)
		require.NoError(err)
		require.Equal(len(c), n)
	}

	var got bytes.Buffer
	buf := make([]byte, 16)

	n, err := q.Read(buf)
	require.NoError(err)
	require.Equal(16, n)
	got.Write(buf[:n])

	n, err = q.Read(buf)
	require.NoError(err)
	require.Equal(16, n)
	got.Write(buf[:n])

	n, err = q.Read(buf)
	require.NoError(err)
	require.Equal(3, n)
	got.Write(buf[:n])

	require.Equal(bytes.Join(chunks, nil), got.Bytes())
	require.Equal(int64(35), q.Transferred())
	require.Equal(int64(35), q.Tell())

	n, err = q.Read(buf)
	require.Equal(0, n)
	require.Equal(io.EOF, err)
}

func TestTransferQueueReadsNeverExceedDeclaredTotal(t *testing.T) {
	require := require.New(t)

	q := NewTransferQueue(30, 8)
	for i := 0; i < 4; i++ {
		_, err := q.Write(randutil.Text(10))
		require.NoError(err)
	}

	buf := make([]byte, 16)

	n, err := q.Read(buf)
	require.NoError(err)
	require.Equal(16, n)

	n, err = q.Read(buf)
	require.NoError(err)
	require.Equal(14, n)

	// The fourth chunk is still queued, but the ceiling holds.
	for i := 0; i < 3; i++ {
		n, err = q.Read(buf)
		require.Equal(0, n)
		require.Equal(io.EOF, err)
	}
	require.Equal(int64(30), q.Transferred())
}

func TestTransferQueueReadBlocksUntilWrite(t *testing.T) {
	require := require.New(t)

	q := NewTransferQueue(8, 2)
	content := randutil.Text(8)

	readDone := make(chan struct{})
	buf := make([]byte, 8)
	var n int
	var err error
	go func() {
		defer close(readDone)
		n, err = q.Read(buf)
	}()

	select {
	case <-readDone:
		require.FailNow("read should block on an empty queue")
	case <-time.After(100 * time.Millisecond):
	}

	_, werr := q.Write(content)
	require.NoError(werr)

	select {
	case <-readDone:
	case <-time.After(time.Second):
		require.FailNow("read did not complete after write")
	}
	require.NoError(err)
	require.Equal(8, n)
	require.Equal(content, buf[:n])
}

func TestTransferQueueWriteBlocksWhenFull(t *testing.T) {
	require := require.New(t)

	q := NewTransferQueue(32, 2)
	_, err := q.Write(randutil.Text(8))
	require.NoError(err)
	_, err = q.Write(randutil.Text(8))
	require.NoError(err)

	writeDone := make(chan struct{})
	go func() {
		defer close(writeDone)
		q.Write(randutil.Text(8))
	}()

	select {
	case <-writeDone:
		require.FailNow("write should block while the queue is full")
	case <-time.After(100 * time.Millisecond):
	}

	buf := make([]byte, 8)
	_, err = q.Read(buf)
	require.NoError(err)

	select {
	case <-writeDone:
	case <-time.After(time.Second):
		require.FailNow("write did not complete after read")
	}
}

func TestTransferQueueCloseUnblocksReader(t *testing.T) {
	require := require.New(t)

	q := NewTransferQueue(8, 2)

	readDone := make(chan struct{})
	var err error
	go func() {
		defer close(readDone)
		_, err = q.Read(make([]byte, 8))
	}()

	select {
	case <-readDone:
		require.FailNow("read should block on an empty queue")
	case <-time.After(100 * time.Millisecond):
	}

	require.NoError(q.Close())

	select {
	case <-readDone:
	case <-time.After(time.Second):
		require.FailNow("read did not abort after close")
	}
	require.Equal(ErrQueueClosed, err)
}

func TestTransferQueueCloseUnblocksWriter(t *testing.T) {
	require := require.New(t)

	q := NewTransferQueue(32, 1)
	_, err := q.Write(randutil.Text(8))
	require.NoError(err)

	writeDone := make(chan struct{})
	go func() {
		defer close(writeDone)
		_, err = q.Write(randutil.Text(8))
	}()

	select {
	case <-writeDone:
		require.FailNow("write should block while the queue is full")
	case <-time.After(100 * time.Millisecond):
	}

	require.NoError(q.Close())

	select {
	case <-writeDone:
	case <-time.After(time.Second):
		require.FailNow("write did not abort after close")
	}
	require.Equal(ErrQueueClosed, err)
}

func TestTransferQueueWriteAfterClose(t *testing.T) {
	require := require.New(t)

	q := NewTransferQueue(8, 2)
	require.NoError(q.Close())
	require.NoError(q.Close())

	n, err := q.Write(randutil.Text(8))
	require.Equal(0, n)
	require.Equal(ErrQueueClosed, err)

	n, err = q.Read(make([]byte, 8))
	require.Equal(0, n)
	require.Equal(ErrQueueClosed, err)
}

func TestTransferQueueEmptyWriteIsNoop(t *testing.T) {
	require := require.New(t)

	q := NewTransferQueue(8, 1)
	n, err := q.Write(nil)
	require.NoError(err)
	require.Equal(0, n)

	// The queue buffers a single chunk, so the no-op above must not have
	// consumed the slot.
	_, err = q.Write(randutil.Text(8))
	require.NoError(err)
}

func TestTransferQueueWriteCopiesChunk(t *testing.T) {
	require := require.New(t)

	q := NewTransferQueue(4, 1)
	chunk := []byte("abcd")
	_, err := q.Write(chunk)
	require.NoError(err)

	copy(chunk, "zzzz")

	buf := make([]byte, 4)
	n, err := q.Read(buf)
	require.NoError(err)
	require.Equal([]byte("abcd"), buf[:n])
}
