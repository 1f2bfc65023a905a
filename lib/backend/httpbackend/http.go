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
package httpbackend

import (
	"bytes"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/makara-io/makara/core"
	"github.com/makara-io/makara/lib/backend"
	"github.com/makara-io/makara/lib/backend/backenderrors"
	"github.com/makara-io/makara/utils/httputil"
	"github.com/makara-io/makara/utils/log"

	"gopkg.in/yaml.v2"
)

const _http = "http"

func init() {
	backend.Register(_http, &factory{})
}

type factory struct{}

func (f *factory) Create(
	confRaw interface{}, authConfRaw interface{}) (backend.Client, error) {

	confBytes, err := yaml.Marshal(confRaw)
	if err != nil {
		return nil, errors.New("marshal http config")
	}

	var config Config
	if err := yaml.Unmarshal(confBytes, &config); err != nil {
		return nil, errors.New("unmarshal http config")
	}

	return NewClient(config)
}

// Config defines the url of a read-only http mirror. The url comes with a
// printf-style string format specifier which is substituted with the image
// name.
type Config struct {
	DownloadURL     string        `yaml:"download_url"`
	DownloadTimeout time.Duration `yaml:"download_timeout"`

	// TLS client configuration for https mirrors. Downloads stay on plain
	// http when unset.
	TLS *httputil.TLSConfig `yaml:"tls"`
}

// Client implements a read-only backend.Client which downloads images over
// plain http. Uploads are not supported.
type Client struct {
	config Config
	tls    *tls.Config
}

// NewClient creates a new Client.
func NewClient(config Config) (*Client, error) {
	if config.DownloadURL == "" {
		return nil, errors.New("no download url configured")
	}
	c := &Client{config: config}
	if config.TLS != nil {
		tlsConfig, err := config.TLS.BuildClient()
		if err != nil {
			return nil, fmt.Errorf("build tls config: %s", err)
		}
		c.tls = tlsConfig
	}
	return c, nil
}

func (c *Client) downloadURL(name string) (string, error) {
	b := new(bytes.Buffer)

	// Fprintf instead of Sprintf to handle formatting errors.
	if _, err := fmt.Fprintf(b, c.config.DownloadURL, name); err != nil {
		return "", fmt.Errorf("could not create a url: %s", err)
	}
	return b.String(), nil
}

// Stat returns image info for name. The size is taken from the Content-Length
// reported by the mirror.
func (c *Client) Stat(namespace, name string) (*core.ImageInfo, error) {
	u, err := c.downloadURL(name)
	if err != nil {
		return nil, err
	}

	resp, err := httputil.Head(u,
		httputil.SendTimeout(c.config.DownloadTimeout),
		httputil.SendTLS(c.tls))
	if err != nil {
		if httputil.IsNotFound(err) {
			return nil, backenderrors.ErrImageNotFound
		}
		return nil, fmt.Errorf("could not stat content on http backend: %s", err)
	}
	resp.Body.Close()

	size := resp.ContentLength
	if size < 0 {
		size = 0
	}
	return core.NewImageInfo(size), nil
}

// Download downloads the content from a configured url and writes the data
// to dst.
func (c *Client) Download(namespace, name string, dst io.Writer) error {
	u, err := c.downloadURL(name)
	if err != nil {
		return err
	}
	log.Infof("Starting HTTP download from remote backend: %s", u)

	resp, err := httputil.Get(u,
		httputil.SendTimeout(c.config.DownloadTimeout),
		httputil.SendTLS(c.tls))
	if err != nil {
		if httputil.IsNotFound(err) {
			return backenderrors.ErrImageNotFound
		}
		return fmt.Errorf("could not get content from http backend: %s", err)
	}
	defer resp.Body.Close()

	if _, err := io.Copy(dst, resp.Body); err != nil {
		return fmt.Errorf("could not copy response buffer: %s", err)
	}
	return nil
}

// Upload is not supported.
func (c *Client) Upload(namespace, name string, src io.Reader) error {
	return errors.New("not supported")
}

// List is not supported.
func (c *Client) List(prefix string, opts ...backend.ListOption) (*backend.ListResult, error) {
	return nil, errors.New("not supported")
}
