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
package datastore

import (
	"net/http"
	"net/url"
	"path"
)

// Descriptor carries everything needed to open an HTTP file handle against a
// datastore: where the file lives, how large it is, and how to authenticate.
type Descriptor struct {
	// Scheme defaults to https when empty.
	Scheme         string
	Host           string
	DatacenterPath string
	Datastore      string
	FilePath       string
	Cookies        []*http.Cookie
	Size           int64
}

// URL returns the HTTP access URL for the file the descriptor addresses.
func (d Descriptor) URL() string {
	scheme := d.Scheme
	if scheme == "" {
		scheme = "https"
	}
	return FileURL(scheme, d.Host, d.DatacenterPath, d.Datastore, d.FilePath)
}

// Path returns the datastore path of the file the descriptor addresses.
func (d Descriptor) Path() Path {
	return Path{Datastore: d.Datastore, RelPath: d.FilePath}
}

// FileURL builds the URL under which a datastore file is read and written.
// Datastore file services expose files under /folder, with the owning
// datacenter and datastore passed as query parameters.
func FileURL(scheme, host, dcPath, dsName, filePath string) string {
	q := url.Values{}
	q.Set("dcPath", dcPath)
	q.Set("dsName", dsName)
	u := url.URL{
		Scheme:   scheme,
		Host:     host,
		Path:     path.Join("/folder", filePath),
		RawQuery: q.Encode(),
	}
	return u.String()
}
