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
package imageservice

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/makara-io/makara/utils/httputil"
)

const _metadataHeaderPrefix = "X-Image-Meta-"

// Config defines HTTPClient configuration.
type Config struct {
	Addr string `yaml:"addr"`

	// ShowTimeout bounds metadata reads. Content transfers are bounded by
	// the caller's context, never by a client-side timeout.
	ShowTimeout time.Duration `yaml:"show_timeout"`
}

func (c Config) applyDefaults() Config {
	if c.ShowTimeout == 0 {
		c.ShowTimeout = 30 * time.Second
	}
	return c
}

// Option allows setting optional HTTPClient parameters.
type Option func(*HTTPClient)

// WithTransport configures the client with a custom round tripper, e.g. a
// tracing transport or a test stub.
func WithTransport(tr http.RoundTripper) Option {
	return func(c *HTTPClient) { c.tr = tr }
}

// HTTPClient implements Client against the image service HTTP API.
type HTTPClient struct {
	config Config
	tr     http.RoundTripper
}

// New creates a new HTTPClient scoped to config.Addr.
func New(config Config, opts ...Option) *HTTPClient {
	c := &HTTPClient{config: config.applyDefaults()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Addr returns the address of the image service the client talks to.
func (c *HTTPClient) Addr() string {
	return c.config.Addr
}

// Download opens the content stream of imageID.
func (c *HTTPClient) Download(ctx context.Context, imageID string) (io.ReadCloser, error) {
	resp, err := httputil.Get(
		fmt.Sprintf("http://%s/v2/images/%s/file", c.config.Addr, url.PathEscape(imageID)),
		httputil.SendContext(ctx),
		httputil.SendTransport(c.tr),
		httputil.SendTimeout(0))
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// Update uploads image content from data and attaches metadata to imageID.
// The request streams data without buffering it.
func (c *HTTPClient) Update(
	ctx context.Context, imageID string, metadata map[string]string, data io.Reader) error {

	headers := map[string]string{"Content-Type": "application/octet-stream"}
	for k, v := range metadata {
		headers[_metadataHeaderPrefix+k] = v
	}
	_, err := httputil.Put(
		fmt.Sprintf("http://%s/v2/images/%s/file", c.config.Addr, url.PathEscape(imageID)),
		httputil.SendBody(data),
		httputil.SendHeaders(headers),
		httputil.SendContext(ctx),
		httputil.SendTransport(c.tr),
		httputil.SendTimeout(0),
		httputil.SendAcceptedCodes(http.StatusOK, http.StatusCreated, http.StatusNoContent))
	return err
}

// Show returns the metadata of imageID. Errors are never retried, callers
// decide what a failed read means.
func (c *HTTPClient) Show(ctx context.Context, imageID string) (Image, error) {
	resp, err := httputil.Get(
		fmt.Sprintf("http://%s/v2/images/%s", c.config.Addr, url.PathEscape(imageID)),
		httputil.SendContext(ctx),
		httputil.SendTransport(c.tr),
		httputil.SendTimeout(c.config.ShowTimeout))
	if err != nil {
		return Image{}, err
	}
	defer resp.Body.Close()
	var img Image
	if err := json.NewDecoder(resp.Body).Decode(&img); err != nil {
		return Image{}, fmt.Errorf("decode image: %s", err)
	}
	return img, nil
}
