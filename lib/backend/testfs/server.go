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
package testfs

import (
	"encoding/json"
	"io"
	"io/ioutil"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/makara-io/makara/utils/handler"

	"github.com/go-chi/chi"
)

// Server provides HTTP upload / download endpoints around a local directory,
// for simulating a remote datastore in tests.
type Server struct {
	sync.Mutex
	dir string
}

// NewServer creates a new Server.
func NewServer() *Server {
	dir, err := ioutil.TempDir("/tmp", "makara-testfs")
	if err != nil {
		panic(err)
	}
	return &Server{dir: dir}
}

// Handler returns an HTTP handler for Server.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Get("/health", s.healthHandler)
	r.Head("/files/*", handler.Wrap(s.statHandler))
	r.Get("/files/*", handler.Wrap(s.downloadHandler))
	r.Post("/files/*", handler.Wrap(s.uploadHandler))
	r.Get("/list/*", handler.Wrap(s.listHandler))
	return r
}

// Cleanup removes Server's underlying directory.
func (s *Server) Cleanup() {
	os.RemoveAll(s.dir)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("OK"))
}

func (s *Server) statHandler(w http.ResponseWriter, r *http.Request) error {
	s.Lock()
	defer s.Unlock()

	p, err := parsePath(r)
	if err != nil {
		return err
	}
	info, err := os.Stat(path.Join(s.dir, p))
	if err != nil {
		if os.IsNotExist(err) {
			return handler.ErrorStatus(http.StatusNotFound)
		}
		return handler.Errorf("stat: %s", err)
	}
	w.Header().Set("Size", strconv.FormatInt(info.Size(), 10))
	w.WriteHeader(http.StatusOK)
	return nil
}

func (s *Server) downloadHandler(w http.ResponseWriter, r *http.Request) error {
	s.Lock()
	defer s.Unlock()

	p, err := parsePath(r)
	if err != nil {
		return err
	}
	f, err := os.Open(path.Join(s.dir, p))
	if err != nil {
		if os.IsNotExist(err) {
			return handler.ErrorStatus(http.StatusNotFound)
		}
		return handler.Errorf("open: %s", err)
	}
	defer f.Close()
	if _, err := io.Copy(w, f); err != nil {
		return handler.Errorf("copy: %s", err)
	}
	return nil
}

func (s *Server) uploadHandler(w http.ResponseWriter, r *http.Request) error {
	s.Lock()
	defer s.Unlock()

	p, err := parsePath(r)
	if err != nil {
		return err
	}
	fp := path.Join(s.dir, p)
	if err := os.MkdirAll(path.Dir(fp), 0775); err != nil {
		return handler.Errorf("mkdir: %s", err)
	}
	tmp, err := ioutil.TempFile(path.Dir(fp), "makara-testfs-upload")
	if err != nil {
		return handler.Errorf("temp file: %s", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := io.Copy(tmp, r.Body); err != nil {
		tmp.Close()
		return handler.Errorf("copy: %s", err)
	}
	if err := tmp.Close(); err != nil {
		return handler.Errorf("close: %s", err)
	}
	if err := os.Rename(tmp.Name(), fp); err != nil {
		return handler.Errorf("rename: %s", err)
	}
	return nil
}

func (s *Server) listHandler(w http.ResponseWriter, r *http.Request) error {
	s.Lock()
	defer s.Unlock()

	prefix := r.URL.Path[len("/list/"):]
	var paths []string
	err := filepath.Walk(path.Join(s.dir, prefix), func(p string, info os.FileInfo, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				// Nothing stored under prefix yet.
				return filepath.SkipDir
			}
			return err
		}
		if !info.IsDir() {
			paths = append(paths, strings.TrimPrefix(p, s.dir))
		}
		return nil
	})
	if err != nil {
		return handler.Errorf("walk: %s", err)
	}
	if err := json.NewEncoder(w).Encode(&paths); err != nil {
		return handler.Errorf("json encode: %s", err)
	}
	return nil
}

func parsePath(r *http.Request) (string, error) {
	p, err := url.PathUnescape(chi.URLParam(r, "*"))
	if err != nil {
		return "", handler.Errorf("path unescape: %s", err).Status(http.StatusBadRequest)
	}
	if p == "" {
		return "", handler.Errorf("path is empty").Status(http.StatusBadRequest)
	}
	if strings.Contains(p, "..") {
		return "", handler.Errorf("invalid path %s", p).Status(http.StatusBadRequest)
	}
	return p, nil
}
