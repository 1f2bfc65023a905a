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

// Package dstest provides an in-memory datastore file service for testing
// file handles and transfers end to end.
package dstest

import (
	"fmt"
	"io/ioutil"
	"net/http"
	"net/url"
	"sync"

	"github.com/makara-io/makara/lib/datastore"
	"github.com/makara-io/makara/utils/handler"

	"github.com/go-chi/chi"
)

// Server is an in-memory file service speaking the GET/PUT /folder API which
// datastores expose over HTTP. It enforces the dcPath / dsName query
// parameters and, when configured, session cookie authentication.
type Server struct {
	datacenterPath string
	name           string
	cookie         *http.Cookie

	mu    sync.Mutex
	files map[string][]byte
}

// NewServer creates a Server for the given datacenter path and datastore name.
func NewServer(datacenterPath, name string) *Server {
	return &Server{
		datacenterPath: datacenterPath,
		name:           name,
		files:          make(map[string][]byte),
	}
}

// RequireCookie makes all endpoints reject requests missing c.
func (s *Server) RequireCookie(c *http.Cookie) {
	s.cookie = c
}

// Handler returns an HTTP handler for Server.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Get("/folder/*", handler.Wrap(s.downloadHandler))
	r.Put("/folder/*", handler.Wrap(s.uploadHandler))
	return r
}

// Descriptor builds a Descriptor addressing filePath on a Server reachable at
// addr, carrying the cookie the Server requires (if any).
func (s *Server) Descriptor(addr, filePath string, size int64) datastore.Descriptor {
	d := datastore.Descriptor{
		Scheme:         "http",
		Host:           addr,
		DatacenterPath: s.datacenterPath,
		Datastore:      s.name,
		FilePath:       filePath,
		Size:           size,
	}
	if s.cookie != nil {
		d.Cookies = []*http.Cookie{s.cookie}
	}
	return d
}

// Put seeds the Server with content under filePath.
func (s *Server) Put(filePath string, content []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[filePath] = content
}

// Get returns the content stored under filePath.
func (s *Server) Get(filePath string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.files[filePath]
	return b, ok
}

func (s *Server) downloadHandler(w http.ResponseWriter, r *http.Request) error {
	name, err := s.parseRequest(r)
	if err != nil {
		return err
	}
	s.mu.Lock()
	b, ok := s.files[name]
	s.mu.Unlock()
	if !ok {
		return handler.ErrorStatus(http.StatusNotFound)
	}
	w.Header().Set("Content-Length", fmt.Sprintf("%d", len(b)))
	if _, err := w.Write(b); err != nil {
		return handler.Errorf("write: %s", err)
	}
	return nil
}

func (s *Server) uploadHandler(w http.ResponseWriter, r *http.Request) error {
	name, err := s.parseRequest(r)
	if err != nil {
		return err
	}
	b, err := ioutil.ReadAll(r.Body)
	if err != nil {
		return handler.Errorf("read body: %s", err)
	}
	s.mu.Lock()
	s.files[name] = b
	s.mu.Unlock()
	w.WriteHeader(http.StatusCreated)
	return nil
}

func (s *Server) parseRequest(r *http.Request) (string, error) {
	if s.cookie != nil {
		c, err := r.Cookie(s.cookie.Name)
		if err != nil || c.Value != s.cookie.Value {
			return "", handler.ErrorStatus(http.StatusUnauthorized)
		}
	}
	q := r.URL.Query()
	if dc := q.Get("dcPath"); dc != s.datacenterPath {
		return "", handler.Errorf("unknown datacenter %q", dc).Status(http.StatusBadRequest)
	}
	if ds := q.Get("dsName"); ds != s.name {
		return "", handler.Errorf("unknown datastore %q", ds).Status(http.StatusBadRequest)
	}
	name, err := url.PathUnescape(chi.URLParam(r, "*"))
	if err != nil {
		return "", handler.Errorf("path unescape: %s", err).Status(http.StatusBadRequest)
	}
	if name == "" {
		return "", handler.Errorf("empty file path").Status(http.StatusBadRequest)
	}
	return name, nil
}
