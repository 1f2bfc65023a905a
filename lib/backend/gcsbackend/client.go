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
package gcsbackend

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/makara-io/makara/core"
	"github.com/makara-io/makara/lib/backend"
	"github.com/makara-io/makara/lib/backend/backenderrors"
	"github.com/makara-io/makara/lib/backend/namepath"
	"github.com/makara-io/makara/utils/log"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"gopkg.in/yaml.v2"
)

const _gcs = "gcs"

func init() {
	backend.Register(_gcs, &factory{})
}

type factory struct{}

func (f *factory) Create(
	confRaw interface{}, authConfRaw interface{}) (backend.Client, error) {

	confBytes, err := yaml.Marshal(confRaw)
	if err != nil {
		return nil, errors.New("marshal gcs config")
	}
	authConfBytes, err := yaml.Marshal(authConfRaw)
	if err != nil {
		return nil, errors.New("marshal gcs auth config")
	}

	var config Config
	if err := yaml.Unmarshal(confBytes, &config); err != nil {
		return nil, errors.New("unmarshal gcs config")
	}
	var userAuth UserAuthConfig
	if err := yaml.Unmarshal(authConfBytes, &userAuth); err != nil {
		return nil, errors.New("unmarshal gcs auth config")
	}

	return NewClient(config, userAuth)
}

// Client implements a backend.Client for GCS.
type Client struct {
	config Config
	pather namepath.Pather
	gcs    GCS
}

// Option allows setting optional Client parameters.
type Option func(*Client)

// WithGCS configures a Client with a custom GCS implementation.
func WithGCS(gcs GCS) Option {
	return func(c *Client) { c.gcs = gcs }
}

// NewClient creates a new Client for GCS.
func NewClient(
	config Config, userAuth UserAuthConfig, opts ...Option) (*Client, error) {

	config.applyDefaults()
	if config.Username == "" {
		return nil, errors.New("invalid config: username required")
	}
	if config.Bucket == "" {
		return nil, errors.New("invalid config: bucket required")
	}
	if !path.IsAbs(config.RootDirectory) {
		return nil, errors.New("invalid config: root_directory must be absolute path")
	}

	pather, err := namepath.New(config.RootDirectory, config.NamePath)
	if err != nil {
		return nil, fmt.Errorf("namepath: %s", err)
	}

	auth, ok := userAuth[config.Username]
	if !ok {
		return nil, errors.New("auth not configured for username")
	}

	client := &Client{config: config, pather: pather}
	for _, opt := range opts {
		opt(client)
	}

	if client.gcs == nil {
		ctx := context.Background()
		sClient, err := storage.NewClient(ctx,
			option.WithCredentialsJSON([]byte(auth.GCS.AccessBlob)))
		if err != nil {
			return nil, fmt.Errorf("invalid gcs credentials: %s", err)
		}
		client.gcs = NewGCS(ctx, sClient.Bucket(config.Bucket), &config)
	}
	return client, nil
}

// Stat returns image info for name.
func (c *Client) Stat(namespace, name string) (*core.ImageInfo, error) {
	path, err := c.pather.ImagePath(name)
	if err != nil {
		return nil, fmt.Errorf("image path: %s", err)
	}

	attrs, err := c.gcs.ObjectAttrs(path)
	if err != nil {
		if err == storage.ErrObjectNotExist {
			return nil, backenderrors.ErrImageNotFound
		}
		return nil, err
	}
	return core.NewImageInfo(attrs.Size), nil
}

// Download downloads the content from a configured bucket and writes the
// data to dst.
func (c *Client) Download(namespace, name string, dst io.Writer) error {
	path, err := c.pather.ImagePath(name)
	if err != nil {
		return fmt.Errorf("image path: %s", err)
	}

	if _, err := c.gcs.Download(path, dst); err != nil {
		return err
	}
	return nil
}

// Upload uploads src to a configured bucket.
func (c *Client) Upload(namespace, name string, src io.Reader) error {
	path, err := c.pather.ImagePath(name)
	if err != nil {
		return fmt.Errorf("image path: %s", err)
	}

	_, err = c.gcs.Upload(path, src)
	return err
}

// List lists names which start with prefix.
func (c *Client) List(prefix string, opts ...backend.ListOption) (*backend.ListResult, error) {
	options := backend.DefaultListOptions()
	for _, opt := range opts {
		opt(options)
	}

	pageSize := c.config.ListMaxKeys
	continuationToken := ""
	if options.Paginated {
		pageSize = options.MaxKeys
		continuationToken = options.ContinuationToken
	}

	it := c.gcs.GetObjectIterator(path.Join(c.pather.BasePath(), prefix))
	pager := iterator.NewPager(it, pageSize, continuationToken)

	var objects []*storage.ObjectAttrs
	nextToken, err := pager.NextPage(&objects)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, object := range objects {
		name, err := c.pather.NameFromImagePath(object.Name)
		if err != nil {
			log.With("object", object.Name).Errorf("Error converting image path into name: %s", err)
			continue
		}
		names = append(names, name)
	}

	if !options.Paginated {
		nextToken = ""
	}

	return &backend.ListResult{
		Names:             names,
		ContinuationToken: nextToken,
	}, nil
}
