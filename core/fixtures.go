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
package core

import (
	"fmt"

	"github.com/satori/go.uuid"

	"github.com/makara-io/makara/utils/randutil"
)

// ImageFixture joins all information associated with a flat image for testing
// convenience.
type ImageFixture struct {
	Content []byte
	Digest  Digest
}

// Length returns the length of the image content.
func (f *ImageFixture) Length() int64 {
	return int64(len(f.Content))
}

// Info returns an ImageInfo for f.
func (f *ImageFixture) Info() *ImageInfo {
	return NewImageInfo(f.Length())
}

// CustomImageFixture creates an ImageFixture with custom fields.
func CustomImageFixture(content []byte, digest Digest) *ImageFixture {
	return &ImageFixture{content, digest}
}

// SizedImageFixture creates a randomly generated ImageFixture of given size.
func SizedImageFixture(size uint64) *ImageFixture {
	b := randutil.Blob(int(size))
	d, err := NewDigester().FromBytes(b)
	if err != nil {
		panic(err)
	}
	return &ImageFixture{
		Content: b,
		Digest:  d,
	}
}

// NewImageFixture creates a randomly generated ImageFixture.
func NewImageFixture() *ImageFixture {
	return SizedImageFixture(256)
}

// DigestFixture returns a random Digest.
func DigestFixture() Digest {
	return NewImageFixture().Digest
}

// ImageIDFixture returns a random image id.
func ImageIDFixture() string {
	return uuid.NewV4().String()
}

// NamespaceFixture creates a random backend namespace.
func NamespaceFixture() string {
	return fmt.Sprintf("namespace-foo/images-%s", randutil.Text(8))
}
