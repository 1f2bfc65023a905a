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

// Package imageservice defines the client surface of the image service which
// owns disk image bytes and metadata.
package imageservice

import (
	"context"
	"io"

	"github.com/makara-io/makara/utils/stringset"
)

// Image statuses reported by the image service. An upload walks
// queued -> saving -> active; killed marks a server-side upload failure.
// Statuses outside this set are treated as fatal by callers.
const (
	StatusQueued = "queued"
	StatusSaving = "saving"
	StatusActive = "active"
	StatusKilled = "killed"
)

var _inFlight = stringset.New(StatusQueued, StatusSaving)

// InFlight returns true if status marks an upload which is still making
// progress server-side.
func InFlight(status string) bool {
	return _inFlight.Has(status)
}

// Image is the metadata the image service reports for a single image.
type Image struct {
	ID       string `json:"id"`
	Status   string `json:"status"`
	Size     int64  `json:"size"`
	Checksum string `json:"checksum,omitempty"`
}

// Client performs downloads, uploads and status reads against the image
// service. Any error from any call is fatal to the operation using it.
type Client interface {
	// Download opens the image content stream. The caller owns closing it.
	Download(ctx context.Context, imageID string) (io.ReadCloser, error)

	// Update uploads image content from data, consuming it synchronously
	// until it reports end-of-stream, and attaches metadata to the image.
	Update(ctx context.Context, imageID string, metadata map[string]string, data io.Reader) error

	// Show returns the current image metadata.
	Show(ctx context.Context, imageID string) (Image, error)
}
