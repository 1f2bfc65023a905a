package rwutil

import "io"

// PlainReader provides an io.Reader for a bytes slice. It intentionally does
// not provide any other methods.
type PlainReader []byte

// Read always reads the entire underlying byte slice.
func (p PlainReader) Read(b []byte) (n int, err error) {
	copy(b, p)
	return len(p), io.EOF
}

// PlainWriter provides an io.Writer for a preallocated bytes slice. It
// intentionally does not provide any other methods.
type PlainWriter []byte

// Write writes into the underlying byte slice at offset 0.
func (p PlainWriter) Write(b []byte) (n int, err error) {
	n = copy(p, b)
	if n < len(b) {
		return n, io.ErrShortWrite
	}
	return n, nil
}
