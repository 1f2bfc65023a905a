package core

// ImageInfo contains metadata about a flat image held in a storage backend.
type ImageInfo struct {
	Size int64
}

// NewImageInfo creates a new ImageInfo.
func NewImageInfo(size int64) *ImageInfo {
	return &ImageInfo{size}
}
