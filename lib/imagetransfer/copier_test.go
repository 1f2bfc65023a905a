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
	"errors"
	"io"
	"testing"

	"github.com/makara-io/makara/mocks/lib/rwhandle"
	"github.com/makara-io/makara/utils/randutil"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
)

func TestCopyTaskCopiesChunksInOrder(t *testing.T) {
	require := require.New(t)

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	chunks := [][]byte{
		randutil.Text(10),
		randutil.Text(20),
		randutil.Text(5),
	}

	src := mockrwhandle.NewMockReadHandle(ctrl)
	dst := mockrwhandle.NewMockWriteHandle(ctrl)

	var readSizes []int
	reads := 0
	src.EXPECT().Read(gomock.Any()).DoAndReturn(func(p []byte) (int, error) {
		readSizes = append(readSizes, len(p))
		if reads == len(chunks) {
			return 0, io.EOF
		}
		c := chunks[reads]
		reads++
		return copy(p, c), nil
	}).Times(len(chunks) + 1)

	gomock.InOrder(
		dst.EXPECT().Write(chunks[0]).Return(len(chunks[0]), nil),
		dst.EXPECT().Write(chunks[1]).Return(len(chunks[1]), nil),
		dst.EXPECT().Write(chunks[2]).Return(len(chunks[2]), nil),
	)
	src.EXPECT().UpdateProgress().Times(3)
	dst.EXPECT().UpdateProgress().Times(3)

	task := NewCopyTask(src, dst)
	task.Start()
	require.NoError(task.Wait())

	select {
	case <-task.Done():
	default:
		require.FailNow("done channel should be closed after wait")
	}
	// Every read offers the full fixed-size chunk buffer.
	for _, s := range readSizes {
		require.Equal(int(ChunkSize), s)
	}
}

func TestCopyTaskReadErrorAborts(t *testing.T) {
	require := require.New(t)

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	src := mockrwhandle.NewMockReadHandle(ctrl)
	dst := mockrwhandle.NewMockWriteHandle(ctrl)

	src.EXPECT().Read(gomock.Any()).Return(0, errors.New("connection reset"))

	task := NewCopyTask(src, dst)
	task.Start()
	err := task.Wait()
	require.Error(err)
	require.Contains(err.Error(), "connection reset")
}

func TestCopyTaskWriteErrorAborts(t *testing.T) {
	require := require.New(t)

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	src := mockrwhandle.NewMockReadHandle(ctrl)
	dst := mockrwhandle.NewMockWriteHandle(ctrl)

	content := randutil.Text(10)
	src.EXPECT().Read(gomock.Any()).DoAndReturn(func(p []byte) (int, error) {
		return copy(p, content), nil
	})
	dst.EXPECT().Write(content).Return(0, errors.New("datastore rejected write"))

	task := NewCopyTask(src, dst)
	task.Start()
	err := task.Wait()
	require.Error(err)
	require.Contains(err.Error(), "datastore rejected write")
}

func TestCopyTaskSkipsEmptyReads(t *testing.T) {
	require := require.New(t)

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	src := mockrwhandle.NewMockReadHandle(ctrl)
	dst := mockrwhandle.NewMockWriteHandle(ctrl)

	content := randutil.Text(5)
	reads := 0
	src.EXPECT().Read(gomock.Any()).DoAndReturn(func(p []byte) (int, error) {
		reads++
		switch reads {
		case 1:
			return 0, nil
		case 2:
			return copy(p, content), nil
		default:
			return 0, io.EOF
		}
	}).Times(3)

	dst.EXPECT().Write(content).Return(len(content), nil)
	src.EXPECT().UpdateProgress().Times(1)
	dst.EXPECT().UpdateProgress().Times(1)

	task := NewCopyTask(src, dst)
	task.Start()
	require.NoError(task.Wait())
}

func TestCopyTaskHandlesDataWithEOF(t *testing.T) {
	require := require.New(t)

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	src := mockrwhandle.NewMockReadHandle(ctrl)
	dst := mockrwhandle.NewMockWriteHandle(ctrl)

	content := randutil.Text(8)
	src.EXPECT().Read(gomock.Any()).DoAndReturn(func(p []byte) (int, error) {
		return copy(p, content), io.EOF
	})
	dst.EXPECT().Write(content).Return(len(content), nil)
	src.EXPECT().UpdateProgress().Times(1)
	dst.EXPECT().UpdateProgress().Times(1)

	task := NewCopyTask(src, dst)
	task.Start()
	require.NoError(task.Wait())
}
