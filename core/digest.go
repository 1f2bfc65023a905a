package core

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// SHA256 is the only digest algorithm supported.
const SHA256 = "sha256"

// Digest is a content address in the form "<algorithm>:<hex_digest_string>".
// Example:
// 	 sha256:e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855
type Digest struct {
	algo string
	hex  string
	raw  string
}

// NewDigestFromString parses a "<algorithm>:<hex_digest_string>" string into
// a Digest.
func NewDigestFromString(s string) (Digest, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return Digest{}, fmt.Errorf("invalid digest %q: expected '<algo>:<hex>'", s)
	}
	algo, hexStr := parts[0], parts[1]
	if algo != SHA256 {
		return Digest{}, fmt.Errorf("invalid digest algo %q: expected %q", algo, SHA256)
	}
	if err := ValidateSHA256(hexStr); err != nil {
		return Digest{}, fmt.Errorf("invalid digest hex: %s", err)
	}
	return Digest{algo: algo, hex: hexStr, raw: s}, nil
}

// NewSHA256DigestFromHex creates a Digest from a raw sha256 hex string.
func NewSHA256DigestFromHex(hexStr string) Digest {
	return Digest{
		algo: SHA256,
		hex:  hexStr,
		raw:  fmt.Sprintf("%s:%s", SHA256, hexStr),
	}
}

// String returns the "<algorithm>:<hex_digest_string>" representation of d.
func (d Digest) String() string {
	return d.raw
}

// Algo returns the algo part of d.
// Example:
//   sha256
func (d Digest) Algo() string {
	return d.algo
}

// Hex returns the hex part of d.
// Example:
//   e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855
func (d Digest) Hex() string {
	return d.hex
}

// ValidateSHA256 returns error if s is not a valid SHA256 hex digest.
func ValidateSHA256(s string) error {
	if len(s) != 64 {
		return fmt.Errorf("expected 64 characters, got %d", len(s))
	}
	if _, err := hex.DecodeString(s); err != nil {
		return fmt.Errorf("hex: %s", err)
	}
	return nil
}
