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

// Package servicetest provides an in-memory image service for testing
// clients and transfers end to end.
package servicetest

import (
	"encoding/json"
	"io/ioutil"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/makara-io/makara/core"
	"github.com/makara-io/makara/lib/imageservice"
	"github.com/makara-io/makara/utils/handler"

	"github.com/go-chi/chi"
)

type record struct {
	image    imageservice.Image
	metadata map[string]string
	content  []byte
}

// Server is an in-memory image service. Uploads transition the image to the
// configured terminal status (active unless scripted otherwise) once the
// content stream has been fully consumed.
type Server struct {
	mu           sync.Mutex
	images       map[string]*record
	uploadStatus string
}

// NewServer creates an empty Server.
func NewServer() *Server {
	return &Server{
		images:       make(map[string]*record),
		uploadStatus: imageservice.StatusActive,
	}
}

// Handler returns an HTTP handler for Server.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Get("/v2/images/{image_id}", handler.Wrap(s.showHandler))
	r.Get("/v2/images/{image_id}/file", handler.Wrap(s.downloadHandler))
	r.Put("/v2/images/{image_id}/file", handler.Wrap(s.uploadHandler))
	return r
}

// Create registers an empty queued image, as the image service does before
// an upload starts.
func (s *Server) Create(imageID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.images[imageID] = &record{
		image: imageservice.Image{ID: imageID, Status: imageservice.StatusQueued},
	}
}

// Seed registers an active image with the given content, for download tests.
func (s *Server) Seed(imageID string, content []byte) {
	d, err := core.NewDigester().FromBytes(content)
	if err != nil {
		panic(err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.images[imageID] = &record{
		image: imageservice.Image{
			ID:       imageID,
			Status:   imageservice.StatusActive,
			Size:     int64(len(content)),
			Checksum: d.Hex(),
		},
		content: content,
	}
}

// SetUploadStatus scripts the status uploads land in, to exercise failure
// handling in monitors.
func (s *Server) SetUploadStatus(status string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploadStatus = status
}

// Image returns the current metadata of imageID.
func (s *Server) Image(imageID string) (imageservice.Image, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.images[imageID]
	if !ok {
		return imageservice.Image{}, false
	}
	return r.image, true
}

// Content returns the stored content of imageID.
func (s *Server) Content(imageID string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.images[imageID]
	if !ok || r.content == nil {
		return nil, false
	}
	return r.content, true
}

// Metadata returns the metadata attached to imageID by the last upload.
func (s *Server) Metadata(imageID string) map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.images[imageID]; ok {
		return r.metadata
	}
	return nil
}

func (s *Server) showHandler(w http.ResponseWriter, r *http.Request) error {
	id, err := parseImageID(r)
	if err != nil {
		return err
	}
	s.mu.Lock()
	rec, ok := s.images[id]
	s.mu.Unlock()
	if !ok {
		return handler.ErrorStatus(http.StatusNotFound)
	}
	if err := json.NewEncoder(w).Encode(rec.image); err != nil {
		return handler.Errorf("encode image: %s", err)
	}
	return nil
}

func (s *Server) downloadHandler(w http.ResponseWriter, r *http.Request) error {
	id, err := parseImageID(r)
	if err != nil {
		return err
	}
	s.mu.Lock()
	rec, ok := s.images[id]
	s.mu.Unlock()
	if !ok || rec.content == nil {
		return handler.ErrorStatus(http.StatusNotFound)
	}
	if _, err := w.Write(rec.content); err != nil {
		return handler.Errorf("write: %s", err)
	}
	return nil
}

func (s *Server) uploadHandler(w http.ResponseWriter, r *http.Request) error {
	id, err := parseImageID(r)
	if err != nil {
		return err
	}
	content, err := ioutil.ReadAll(r.Body)
	if err != nil {
		return handler.Errorf("read body: %s", err)
	}
	d, err := core.NewDigester().FromBytes(content)
	if err != nil {
		return handler.Errorf("digest: %s", err)
	}
	metadata := make(map[string]string)
	for k := range r.Header {
		if strings.HasPrefix(k, "X-Image-Meta-") {
			// Header keys are canonicalized in transit, metadata keys are
			// lowercase by convention.
			metadata[strings.ToLower(strings.TrimPrefix(k, "X-Image-Meta-"))] = r.Header.Get(k)
		}
	}
	s.mu.Lock()
	rec, ok := s.images[id]
	if !ok {
		rec = &record{image: imageservice.Image{ID: id}}
		s.images[id] = rec
	}
	rec.content = content
	rec.metadata = metadata
	rec.image.Size = int64(len(content))
	rec.image.Checksum = d.Hex()
	rec.image.Status = s.uploadStatus
	s.mu.Unlock()
	w.WriteHeader(http.StatusCreated)
	return nil
}

func parseImageID(r *http.Request) (string, error) {
	id, err := url.PathUnescape(chi.URLParam(r, "image_id"))
	if err != nil {
		return "", handler.Errorf("path unescape image id: %s", err).Status(http.StatusBadRequest)
	}
	return id, nil
}
