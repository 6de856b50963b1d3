package domain

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// Share is one unseal key share. Index runs from 1 to the total share count and
// Value has the length of the master key.
type Share struct {
	Index int
	Value []byte
}

// String encodes the share for operators as base64 of the index byte followed by
// the share value.
func (s Share) String() string {
	buf := make([]byte, 0, len(s.Value)+1)
	buf = append(buf, byte(s.Index))
	buf = append(buf, s.Value...)
	return base64.StdEncoding.EncodeToString(buf)
}

// Bytes returns the binary form used when wrapping the share with a KMS key.
func (s Share) Bytes() []byte {
	buf := make([]byte, 0, len(s.Value)+1)
	buf = append(buf, byte(s.Index))
	return append(buf, s.Value...)
}

// ParseShare decodes a share produced by Share.String.
func ParseShare(encoded string) (Share, error) {
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encoded))
	if err != nil {
		return Share{}, fmt.Errorf("%w: %v", ErrInvalidShareEncoding, err)
	}
	defer clear(raw)
	return ShareFromBytes(raw)
}

// ShareFromBytes decodes the binary form produced by Share.Bytes.
func ShareFromBytes(raw []byte) (Share, error) {
	if len(raw) < 2 || raw[0] == 0 {
		return Share{}, ErrInvalidShare
	}
	value := make([]byte, len(raw)-1)
	copy(value, raw[1:])
	return Share{Index: int(raw[0]), Value: value}, nil
}
