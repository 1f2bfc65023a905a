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
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/makara-io/makara/core"
	"github.com/makara-io/makara/lib/backend"
	"github.com/makara-io/makara/lib/datastore"
	"github.com/makara-io/makara/lib/imageservice"
	"github.com/makara-io/makara/lib/rwhandle"
	"github.com/makara-io/makara/lib/tracing"
	"github.com/makara-io/makara/utils/bandwidth"
	"github.com/makara-io/makara/utils/log"

	"github.com/andres-erbsen/clock"
	"github.com/uber-go/tally"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

// ImageReaderFactory wraps a service content stream in a read handle.
type ImageReaderFactory func(rc io.ReadCloser) rwhandle.ReadHandle

// FileReaderFactory opens a read handle on a datastore file.
type FileReaderFactory func(
	ctx context.Context, d datastore.Descriptor, opts ...rwhandle.Option) (rwhandle.ReadHandle, error)

// FileWriterFactory opens a write handle on a datastore file.
type FileWriterFactory func(
	ctx context.Context, d datastore.Descriptor, opts ...rwhandle.Option) (rwhandle.WriteHandle, error)

// Transferer moves flat image content between the image service, remote
// datastores and storage backends. Every operation runs under the configured
// timeout, which is the only way a transfer stops early, and every failure
// surfaces as a single transfer error.
type Transferer struct {
	config Config
	stats  tally.Scope
	svc    imageservice.Client

	clk       clock.Clock
	transport http.RoundTripper
	backends  *backend.Manager
	journal   *Journal
	limiter   *bandwidth.Limiter

	newImageReader ImageReaderFactory
	newFileReader  FileReaderFactory
	newFileWriter  FileWriterFactory
}

// Option allows setting optional Transferer parameters.
type Option func(*Transferer)

// WithClock configures the Transferer with a custom clock.
func WithClock(clk clock.Clock) Option {
	return func(t *Transferer) { t.clk = clk }
}

// WithTransport configures the HTTP transport datastore handles use.
func WithTransport(tr http.RoundTripper) Option {
	return func(t *Transferer) { t.transport = tr }
}

// WithBackends configures a backend manager for export and import.
func WithBackends(m *backend.Manager) Option {
	return func(t *Transferer) { t.backends = m }
}

// WithJournal configures a journal which records transfer sessions.
func WithJournal(j *Journal) Option {
	return func(t *Transferer) { t.journal = j }
}

// WithBandwidthLimiter configures bandwidth reservations around transfers.
func WithBandwidthLimiter(l *bandwidth.Limiter) Option {
	return func(t *Transferer) { t.limiter = l }
}

// WithImageReaderFactory configures how service streams are wrapped.
func WithImageReaderFactory(f ImageReaderFactory) Option {
	return func(t *Transferer) { t.newImageReader = f }
}

// WithFileReaderFactory configures how datastore read handles are opened.
func WithFileReaderFactory(f FileReaderFactory) Option {
	return func(t *Transferer) { t.newFileReader = f }
}

// WithFileWriterFactory configures how datastore write handles are opened.
func WithFileWriterFactory(f FileWriterFactory) Option {
	return func(t *Transferer) { t.newFileWriter = f }
}

// New creates a new Transferer talking to svc.
func New(config Config, stats tally.Scope, svc imageservice.Client, opts ...Option) *Transferer {
	stats = stats.Tagged(map[string]string{
		"module": "imagetransfer",
	})
	t := &Transferer{
		config:    config.applyDefaults(),
		stats:     stats,
		svc:       svc,
		clk:       clock.New(),
		transport: tracing.NewHTTPTransport(nil),
		newImageReader: func(rc io.ReadCloser) rwhandle.ReadHandle {
			return rwhandle.NewImageReader(rc)
		},
		newFileReader: func(
			ctx context.Context, d datastore.Descriptor, opts ...rwhandle.Option) (rwhandle.ReadHandle, error) {

			return rwhandle.NewFileReader(ctx, d, opts...)
		},
		newFileWriter: func(
			ctx context.Context, d datastore.Descriptor, opts ...rwhandle.Option) (rwhandle.WriteHandle, error) {

			return rwhandle.NewFileWriter(ctx, d, opts...)
		},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// DownloadFlatImage copies the content of imageID into the datastore file
// described by dst. If dst carries no size, the image metadata supplies it.
// Exactly one image reader and one file writer are constructed per call.
func (t *Transferer) DownloadFlatImage(
	ctx context.Context, imageID string, dst datastore.Descriptor) error {

	if dst.Size <= 0 {
		img, err := t.svc.Show(ctx, imageID)
		if err != nil {
			return newError(err, "show image %s", imageID)
		}
		dst.Size = img.Size
	}
	attrs := []attribute.KeyValue{
		tracing.AttrDatastore.String(dst.Datastore),
		tracing.AttrFilePath.String(dst.FilePath),
		tracing.AttrImageSize.Int64(dst.Size),
	}
	return t.instrument(
		ctx, "download_flat_image", imageID, DirectionDownload, dst.Path().String(), dst.Size, attrs,
		func(ctx context.Context) error {
			return t.downloadFlatImage(ctx, imageID, dst)
		})
}

// UploadFlatImage copies the datastore file described by src into the content
// of imageID, then waits for the image to go active. The descriptor size
// bounds the upload and must be set.
func (t *Transferer) UploadFlatImage(
	ctx context.Context, imageID string, src datastore.Descriptor, metadata map[string]string) error {

	if src.Size <= 0 {
		return newError(nil, "size unknown for %s", src.Path())
	}
	attrs := []attribute.KeyValue{
		tracing.AttrDatastore.String(src.Datastore),
		tracing.AttrFilePath.String(src.FilePath),
		tracing.AttrImageSize.Int64(src.Size),
	}
	return t.instrument(
		ctx, "upload_flat_image", imageID, DirectionUpload, src.Path().String(), src.Size, attrs,
		func(ctx context.Context) error {
			return t.uploadFlatImage(ctx, imageID, src, metadata)
		})
}

// ExportFlatImage copies the content of imageID into name on the backend
// matching namespace, verifying the stream against the image checksum.
func (t *Transferer) ExportFlatImage(
	ctx context.Context, imageID, namespace, name string) error {

	client, err := t.backendClient(namespace)
	if err != nil {
		return err
	}
	img, err := t.svc.Show(ctx, imageID)
	if err != nil {
		return newError(err, "show image %s", imageID)
	}
	attrs := []attribute.KeyValue{
		tracing.AttrNamespace.String(namespace),
		tracing.AttrFilePath.String(name),
		tracing.AttrImageSize.Int64(img.Size),
	}
	target := fmt.Sprintf("%s/%s", namespace, name)
	return t.instrument(
		ctx, "export_flat_image", imageID, DirectionExport, target, img.Size, attrs,
		func(ctx context.Context) error {
			return t.exportFlatImage(ctx, client, imageID, namespace, name, img)
		})
}

// ImportFlatImage copies name from the backend matching namespace into the
// content of imageID, then waits for the image to go active. If size is not
// positive, the backend supplies it.
func (t *Transferer) ImportFlatImage(
	ctx context.Context, imageID, namespace, name string, size int64, metadata map[string]string) error {

	client, err := t.backendClient(namespace)
	if err != nil {
		return err
	}
	if size <= 0 {
		info, err := client.Stat(namespace, name)
		if err != nil {
			return newError(err, "stat %s in namespace %s", name, namespace)
		}
		size = info.Size
	}
	attrs := []attribute.KeyValue{
		tracing.AttrNamespace.String(namespace),
		tracing.AttrFilePath.String(name),
		tracing.AttrImageSize.Int64(size),
	}
	target := fmt.Sprintf("%s/%s", namespace, name)
	return t.instrument(
		ctx, "import_flat_image", imageID, DirectionImport, target, size, attrs,
		func(ctx context.Context) error {
			return t.importFlatImage(ctx, client, imageID, namespace, name, size, metadata)
		})
}

// ReplicateFlatImage fans one image out to several datastore files. The first
// failed destination cancels the rest.
func (t *Transferer) ReplicateFlatImage(
	ctx context.Context, imageID string, dsts []datastore.Descriptor) error {

	if len(dsts) == 0 {
		return newError(nil, "no destinations for image %s", imageID)
	}
	timer := t.stats.Timer("replicate_flat_image").Start()
	defer timer.Stop()

	g, gctx := errgroup.WithContext(ctx)
	for _, dst := range dsts {
		dst := dst
		g.Go(func() error {
			return t.DownloadFlatImage(gctx, imageID, dst)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	log.With("image_id", imageID, "destinations", len(dsts)).Info("Replication complete")
	return nil
}

// instrument runs f under a span, a timer and a journal entry, and converts
// its outcome into counters and logs.
func (t *Transferer) instrument(
	ctx context.Context,
	op, imageID, direction, target string,
	size int64,
	attrs []attribute.KeyValue,
	f func(context.Context) error) error {

	timer := t.stats.Timer(op).Start()
	defer timer.Stop()

	attrs = append(attrs, tracing.AttrImageID.String(imageID))
	ctx, endSpan := tracing.StartSpanWithAttributes(ctx, "imagetransfer."+op, attrs...)
	defer endSpan()

	journalID := t.journalBegin(imageID, direction, target, size)
	err := f(ctx)
	t.journalFinish(journalID, err)
	if err != nil {
		tracing.RecordSpanError(ctx, err)
		if errors.Is(err, context.DeadlineExceeded) {
			t.stats.Counter("transfer_timeout").Inc(1)
		}
		t.stats.Counter("transfer_failure").Inc(1)
		log.With("image_id", imageID, "target", target).Errorf("Transfer failed: %s", err)
		return err
	}
	tracing.SetSpanOK(ctx)
	t.stats.Counter("transfer_success").Inc(1)
	if size > 0 {
		t.stats.Counter("transferred_bytes").Inc(size)
	}
	log.With("image_id", imageID, "target", target, "size", size).Info("Transfer complete")
	return nil
}

func (t *Transferer) downloadFlatImage(
	ctx context.Context, imageID string, dst datastore.Descriptor) error {

	ctx, cancel := context.WithTimeout(ctx, t.config.Timeout)
	defer cancel()

	t.reserveEgress(dst.Size)

	rc, err := t.svc.Download(ctx, imageID)
	if err != nil {
		return newError(err, "download image %s", imageID)
	}
	src := t.newImageReader(rc)
	dstHandle, err := t.newFileWriter(
		ctx, dst, rwhandle.WithClock(t.clk), rwhandle.WithTransport(t.transport))
	if err != nil {
		src.Close()
		return newError(err, "open %s for write", dst.Path())
	}
	task := NewCopyTask(src, dstHandle)
	task.Start()
	// Both handles are bound to ctx, so an expired deadline breaks any
	// in-flight I/O and the task goes terminal.
	select {
	case <-ctx.Done():
	case <-task.Done():
	}
	err = task.Wait()
	if cerr := dstHandle.Close(); err == nil && cerr != nil {
		err = newError(cerr, "finalize %s", dst.Path())
	}
	if cerr := src.Close(); cerr != nil {
		log.With("image_id", imageID).Errorf("Error closing image stream: %s", cerr)
	}
	if ctx.Err() == context.DeadlineExceeded {
		return newError(ctx.Err(), "transfer timed out after %s", t.config.Timeout)
	}
	return err
}

func (t *Transferer) uploadFlatImage(
	ctx context.Context, imageID string, src datastore.Descriptor, metadata map[string]string) error {

	ctx, cancel := context.WithTimeout(ctx, t.config.Timeout)
	defer cancel()

	t.reserveIngress(src.Size)

	srcHandle, err := t.newFileReader(
		ctx, src, rwhandle.WithClock(t.clk), rwhandle.WithTransport(t.transport))
	if err != nil {
		return newError(err, "open %s for read", src.Path())
	}
	q := NewTransferQueue(src.Size, t.config.QueueDepth)
	producer := NewCopyTask(srcHandle, q)
	monitor := NewUploadMonitor(
		t.svc, imageID, metadata, q,
		WithPollInterval(t.config.PollInterval), WithMonitorClock(t.clk))
	producer.Start()
	monitor.Start(ctx)

	var cause error
	select {
	case <-ctx.Done():
	case <-monitor.Done():
		cause = monitor.Wait()
	case <-producer.Done():
		if perr := producer.Wait(); perr != nil {
			cause = perr
		} else {
			select {
			case <-ctx.Done():
			case <-monitor.Done():
				cause = monitor.Wait()
			}
		}
	}
	// Timeout state is captured before teardown so our own cancel does not
	// masquerade as a deadline.
	timedOut := ctx.Err() == context.DeadlineExceeded

	// The first failure aborts the peer task; both tasks are joined before
	// returning.
	cancel()
	q.Close()
	producer.Wait()
	merr := monitor.Wait()

	if cerr := srcHandle.Close(); cerr != nil {
		log.With("image_id", imageID).Errorf("Error closing %s: %s", src.Path(), cerr)
	}
	if merr == nil {
		// The image went active. A deadline racing the final poll does not
		// demote a settled upload.
		return nil
	}
	if timedOut {
		return newError(context.DeadlineExceeded, "transfer timed out after %s", t.config.Timeout)
	}
	if cause != nil {
		return cause
	}
	return merr
}

func (t *Transferer) exportFlatImage(
	ctx context.Context,
	client backend.Client,
	imageID, namespace, name string,
	img imageservice.Image) error {

	ctx, cancel := context.WithTimeout(ctx, t.config.Timeout)
	defer cancel()

	t.reserveEgress(img.Size)

	rc, err := t.svc.Download(ctx, imageID)
	if err != nil {
		return newError(err, "download image %s", imageID)
	}
	src := t.newImageReader(rc)
	defer src.Close()

	digester := core.NewDigester()
	if err := client.Upload(namespace, name, digester.Tee(src)); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return newError(ctx.Err(), "transfer timed out after %s", t.config.Timeout)
		}
		return newError(err, "upload image %s to %s", imageID, name)
	}
	d := digester.Digest()
	tracing.SetSpanAttributes(ctx, tracing.AttrDigest.String(d.String()))
	if img.Checksum != "" && d.Hex() != img.Checksum {
		return newError(nil,
			"image %s checksum mismatch: expected %s, got %s", imageID, img.Checksum, d.Hex())
	}
	return nil
}

func (t *Transferer) importFlatImage(
	ctx context.Context,
	client backend.Client,
	imageID, namespace, name string,
	size int64,
	metadata map[string]string) error {

	ctx, cancel := context.WithTimeout(ctx, t.config.Timeout)
	defer cancel()

	t.reserveIngress(size)

	q := NewTransferQueue(size, t.config.QueueDepth)
	monitor := NewUploadMonitor(
		t.svc, imageID, metadata, q,
		WithPollInterval(t.config.PollInterval), WithMonitorClock(t.clk))
	monitor.Start(ctx)

	download := make(chan error, 1)
	go func() { download <- client.Download(namespace, name, q) }()

	var cause error
	downloadJoined := false
	select {
	case <-ctx.Done():
	case <-monitor.Done():
		cause = monitor.Wait()
	case derr := <-download:
		downloadJoined = true
		if derr != nil {
			cause = newError(derr, "download %s from backend", name)
		} else {
			select {
			case <-ctx.Done():
			case <-monitor.Done():
				cause = monitor.Wait()
			}
		}
	}
	timedOut := ctx.Err() == context.DeadlineExceeded

	cancel()
	q.Close()
	if !downloadJoined {
		<-download
	}
	merr := monitor.Wait()

	if merr == nil {
		return nil
	}
	if timedOut {
		return newError(context.DeadlineExceeded, "transfer timed out after %s", t.config.Timeout)
	}
	if cause != nil {
		return cause
	}
	return merr
}

func (t *Transferer) backendClient(namespace string) (backend.Client, error) {
	if t.backends == nil {
		return nil, newError(nil, "no backends configured")
	}
	client, err := t.backends.GetClient(namespace)
	if err != nil {
		return nil, newError(err, "backend namespace %s", namespace)
	}
	return client, nil
}

// Ingress counts content flowing into the image service, egress content
// flowing out of it. Reservation failures are logged and ignored, matching
// the backend throttling policy.
func (t *Transferer) reserveIngress(nbytes int64) {
	if t.limiter == nil || nbytes <= 0 {
		return
	}
	if err := t.limiter.ReserveIngress(nbytes); err != nil {
		log.Errorf("Error reserving ingress bandwidth: %s", err)
		// Ignore error.
	}
}

func (t *Transferer) reserveEgress(nbytes int64) {
	if t.limiter == nil || nbytes <= 0 {
		return
	}
	if err := t.limiter.ReserveEgress(nbytes); err != nil {
		log.Errorf("Error reserving egress bandwidth: %s", err)
		// Ignore error.
	}
}

func (t *Transferer) journalBegin(imageID, direction, target string, size int64) string {
	if t.journal == nil {
		return ""
	}
	id, err := t.journal.Begin(imageID, direction, target, size)
	if err != nil {
		log.With("image_id", imageID).Errorf("Error recording transfer start: %s", err)
		return ""
	}
	return id
}

func (t *Transferer) journalFinish(id string, transferErr error) {
	if id == "" {
		return
	}
	if err := t.journal.Finish(id, transferErr); err != nil {
		log.Errorf("Error recording transfer end: %s", err)
	}
}
