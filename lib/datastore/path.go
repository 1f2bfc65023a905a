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

// Package datastore models file locations on remote datastores and the HTTP
// endpoints used to read and write them.
package datastore

import (
	"errors"
	"fmt"
	"path"
	"strings"
)

// Path identifies a file inside a datastore. Its canonical string form is
// "[datastore] relative/path", with an empty relative path rendering as
// "[datastore]".
type Path struct {
	Datastore string
	RelPath   string
}

// NewPath creates a Path from a datastore name and any number of path
// components, which are joined and cleaned.
func NewPath(datastore string, parts ...string) (Path, error) {
	if datastore == "" {
		return Path{}, errors.New("empty datastore name")
	}
	return Path{
		Datastore: datastore,
		RelPath:   joinParts(parts),
	}, nil
}

// ParsePath parses the canonical "[datastore] relative/path" form.
func ParsePath(s string) (Path, error) {
	if !strings.HasPrefix(s, "[") {
		return Path{}, fmt.Errorf("invalid datastore path %q", s)
	}
	end := strings.Index(s, "]")
	if end < 0 {
		return Path{}, fmt.Errorf("invalid datastore path %q", s)
	}
	datastore := s[1:end]
	if datastore == "" {
		return Path{}, errors.New("empty datastore name")
	}
	return Path{
		Datastore: datastore,
		RelPath:   strings.TrimSpace(s[end+1:]),
	}, nil
}

// Join returns a copy of p with parts appended to its relative path.
func (p Path) Join(parts ...string) Path {
	return Path{
		Datastore: p.Datastore,
		RelPath:   joinParts(append([]string{p.RelPath}, parts...)),
	}
}

// Basename returns the last element of the relative path, or empty if the
// path addresses the datastore root.
func (p Path) Basename() string {
	if p.RelPath == "" {
		return ""
	}
	return path.Base(p.RelPath)
}

// Dirname returns everything but the last element of the relative path.
func (p Path) Dirname() string {
	d := path.Dir(p.RelPath)
	if d == "." {
		return ""
	}
	return d
}

// Parent returns the Path addressing the directory containing p.
func (p Path) Parent() Path {
	return Path{
		Datastore: p.Datastore,
		RelPath:   p.Dirname(),
	}
}

func (p Path) String() string {
	if p.RelPath == "" {
		return fmt.Sprintf("[%s]", p.Datastore)
	}
	return fmt.Sprintf("[%s] %s", p.Datastore, p.RelPath)
}

func joinParts(parts []string) string {
	j := path.Join(parts...)
	if j == "." {
		return ""
	}
	return j
}
