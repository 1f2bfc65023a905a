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
	"context"
	"io"
	"time"

	"github.com/makara-io/makara/lib/imageservice"
	"github.com/makara-io/makara/utils/log"

	"github.com/andres-erbsen/clock"
)

// UploadMonitor pushes an image content stream into the image service, then
// polls image status until the service reports the upload settled. The
// update call always strictly precedes the first poll.
//
// Exactly one status means success: active. Anything outside the known
// in-flight statuses fails the upload immediately and is never retried.
type UploadMonitor struct {
	svc      imageservice.Client
	imageID  string
	metadata map[string]string
	in       io.Reader

	pollInterval time.Duration
	clk          clock.Clock

	done chan struct{}
	err  error // written once before done is closed
}

// MonitorOption allows setting optional UploadMonitor parameters.
type MonitorOption func(*UploadMonitor)

// WithPollInterval configures the delay between status reads.
func WithPollInterval(d time.Duration) MonitorOption {
	return func(m *UploadMonitor) { m.pollInterval = d }
}

// WithMonitorClock configures the monitor with a custom clock.
func WithMonitorClock(clk clock.Clock) MonitorOption {
	return func(m *UploadMonitor) { m.clk = clk }
}

// NewUploadMonitor creates an UploadMonitor uploading in as the content of
// imageID with the given metadata attached.
func NewUploadMonitor(
	svc imageservice.Client,
	imageID string,
	metadata map[string]string,
	in io.Reader,
	opts ...MonitorOption) *UploadMonitor {

	m := &UploadMonitor{
		svc:          svc,
		imageID:      imageID,
		metadata:     metadata,
		in:           in,
		pollInterval: 5 * time.Second,
		clk:          clock.New(),
		done:         make(chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start launches the upload and poll loop and returns immediately. The
// context bounds the update call and every poll.
func (m *UploadMonitor) Start(ctx context.Context) {
	go m.run(ctx)
}

// Wait blocks until the monitor is terminal and returns nil once the image
// went active, or the wrapped failure.
func (m *UploadMonitor) Wait() error {
	<-m.done
	return m.err
}

// Done exposes monitor completion for select loops.
func (m *UploadMonitor) Done() <-chan struct{} {
	return m.done
}

func (m *UploadMonitor) run(ctx context.Context) {
	defer close(m.done)

	// The service consumes the content stream synchronously, so the image
	// is fully received once this returns.
	if err := m.svc.Update(ctx, m.imageID, m.metadata, m.in); err != nil {
		m.err = newError(err, "update image %s", m.imageID)
		return
	}
	for {
		select {
		case <-ctx.Done():
			m.err = newError(ctx.Err(), "image %s did not go active", m.imageID)
			return
		case <-m.clk.After(m.pollInterval):
		}
		img, err := m.svc.Show(ctx, m.imageID)
		if err != nil {
			m.err = newError(err, "show image %s", m.imageID)
			return
		}
		switch {
		case img.Status == imageservice.StatusActive:
			log.With("image_id", m.imageID).Info("Image went active")
			return
		case img.Status == imageservice.StatusKilled:
			m.err = newError(nil, "image %s was killed during upload", m.imageID)
			return
		case imageservice.InFlight(img.Status):
			log.With("image_id", m.imageID, "status", img.Status).
				Debug("Waiting for image to go active")
		default:
			m.err = newError(nil,
				"image %s entered unexpected status %q", m.imageID, img.Status)
			return
		}
	}
}
