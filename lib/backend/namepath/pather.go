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
package namepath

import (
	"errors"
	"fmt"
	"path"
	"strings"
)

const (
	// Identity is the identity Pather identifier.
	Identity = "identity"

	// ShardedImage is the sharded image Pather identifier.
	ShardedImage = "sharded_image"
)

// New creates a Pather scoped to root.
func New(root, id string) (Pather, error) {
	switch id {
	case Identity:
		return IdentityPather{root}, nil
	case ShardedImage:
		return ShardedImagePather{root}, nil
	default:
		return nil, fmt.Errorf("unknown pather identifier: %s", id)
	}
}

// Pather defines an interface for converting image names into datastore
// paths, and vice versa.
type Pather interface {
	// BasePath returns the base path which all image paths are rooted under.
	BasePath() string

	// ImagePath converts name into an image path.
	ImagePath(name string) (string, error)

	// NameFromImagePath converts an image path p back into its original name.
	NameFromImagePath(p string) (string, error)
}

// IdentityPather is the identity Pather.
type IdentityPather struct {
	Root string
}

// BasePath returns the root.
func (p IdentityPather) BasePath() string {
	return p.Root
}

// ImagePath always returns root/name.
func (p IdentityPather) ImagePath(name string) (string, error) {
	if name == "" {
		return "", errors.New("name must be non-empty")
	}
	return path.Join(p.Root, name), nil
}

// NameFromImagePath strips the root from ip.
func (p IdentityPather) NameFromImagePath(ip string) (string, error) {
	if !strings.HasPrefix(ip, p.Root+"/") {
		return "", errors.New("image path does not match root")
	}
	return strings.TrimPrefix(ip, p.Root+"/"), nil
}

// ShardedImagePather generates image paths which are sharded by the first two
// characters of the image name. Useful for spreading images across datastore
// directories when a flat layout would grow too wide.
type ShardedImagePather struct {
	Root string
}

// BasePath returns the root.
func (p ShardedImagePather) BasePath() string {
	return p.Root
}

// ImagePath returns a path for name which is sharded by the first two
// characters of name.
func (p ShardedImagePather) ImagePath(name string) (string, error) {
	if len(name) <= 2 {
		return "", errors.New("name is too short, must be > 2 characters")
	}
	if strings.Contains(name, "/") {
		return "", errors.New("name must not contain '/'")
	}
	return path.Join(p.Root, name[:2], name), nil
}

// NameFromImagePath converts a sharded image path back into its name.
func (p ShardedImagePather) NameFromImagePath(ip string) (string, error) {
	if !strings.HasPrefix(ip, p.Root+"/") {
		return "", errors.New("image path does not match root")
	}
	tokens := strings.Split(strings.TrimPrefix(ip, p.Root+"/"), "/")
	if len(tokens) != 2 {
		return "", errors.New("image path must be in format 'root/shard/name'")
	}
	shard, name := tokens[0], tokens[1]
	if len(name) <= 2 || name[:2] != shard {
		return "", errors.New("image path shard does not match name")
	}
	return name, nil
}
