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
package s3backend

import (
	"github.com/c2h5oh/datasize"

	"github.com/makara-io/makara/lib/backend"
)

// Config defines s3 connection specific parameters and authentication
// credentials.
type Config struct {
	Username string `yaml:"username"` // IAM username for selecting credentials.
	Region   string `yaml:"region"`   // AWS S3 region.
	Bucket   string `yaml:"bucket"`   // S3 bucket.

	Endpoint string `yaml:"endpoint"` // Optional S3-compatible endpoint.

	DisableSSL       bool `yaml:"disable_ssl"`
	S3ForcePathStyle bool `yaml:"s3_force_path_style"`

	UploadPartSize   int64 `yaml:"upload_part_size"`   // Part size s3 manager uses for upload.
	DownloadPartSize int64 `yaml:"download_part_size"` // Part size s3 manager uses for download.

	UploadConcurrency   int `yaml:"upload_concurrency"`   // Number of concurrent upload goroutines.
	DownloadConcurrency int `yaml:"download_concurrency"` // Number of concurrent download goroutines.

	// BufferGuard protects download from downloading into an oversized buffer
	// when io.WriterAt is not implemented.
	BufferGuard datasize.ByteSize `yaml:"buffer_guard"`

	// NamePath identifies which namepath.Pather to use.
	NamePath string `yaml:"name_path"`

	// RootDirectory specifies the root directory of the bucket in which all
	// images are stored.
	RootDirectory string `yaml:"root_directory"`

	// ListMaxKeys sets the max number of keys returned per page.
	ListMaxKeys int `yaml:"list_max_keys"`
}

// UserAuthConfig defines authentication configuration overlaid from a secrets
// file. Each key is the iam username of the credentials.
type UserAuthConfig map[string]AuthConfig

// AuthConfig defines the secrets file schema for a single user.
type AuthConfig struct {
	S3 struct {
		AccessKeyID     string `yaml:"aws_access_key_id"`
		AccessSecretKey string `yaml:"aws_secret_access_key"`
		SessionToken    string `yaml:"aws_session_token"`
	} `yaml:"s3"`
}

func (c *Config) applyDefaults() {
	if c.UploadPartSize == 0 {
		c.UploadPartSize = backend.DefaultPartSize
	}
	if c.DownloadPartSize == 0 {
		c.DownloadPartSize = backend.DefaultPartSize
	}
	if c.UploadConcurrency == 0 {
		c.UploadConcurrency = backend.DefaultConcurrency
	}
	if c.DownloadConcurrency == 0 {
		c.DownloadConcurrency = backend.DefaultConcurrency
	}
	if c.BufferGuard == 0 {
		c.BufferGuard = backend.DefaultBufferGuard
	}
	if c.ListMaxKeys == 0 {
		c.ListMaxKeys = backend.DefaultListMaxKeys
	}
}
