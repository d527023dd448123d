// Package metadata canonicalizes the tag-length-value byte string used as
// AES-GCM associated data and as HMAC input when authenticating session
// info. The encoding must be injective: no two distinct sets of metadata
// may produce the same byte string, which is why item tags are required to
// be added in strictly ascending order and a sentinel terminator is always
// appended.
package metadata

import (
	"encoding/binary"
	"errors"
	"hash"
)

// Tag identifies a metadata item. Values below End are carried over the
// wire or derived from session state; End is a sentinel that terminates the
// canonical encoding.
type Tag uint8

const (
	TagSignatureType  Tag = 0
	TagDomain         Tag = 1
	TagPersonalization Tag = 2
	TagEpoch          Tag = 3
	TagExpiresAt      Tag = 4
	TagCounter        Tag = 5
	TagChallenge      Tag = 6
	TagFlags          Tag = 7
	TagRequestHash    Tag = 8
	TagFault          Tag = 9
	TagEnd            Tag = 0xFF
)

var (
	// ErrOutOfOrder indicates a programming error: items must be added in
	// increasing tag order.
	ErrOutOfOrder = errors.New("metadata: items must be added in increasing tag order")
	// ErrFieldTooLong indicates a value longer than 255 bytes, which cannot
	// be represented by this encoding's single-byte length prefix.
	ErrFieldTooLong = errors.New("metadata: fields can't be more than 255 bytes long")
)

// Builder accumulates metadata items and hashes them as they arrive, so
// that arbitrarily large associated data never needs to be buffered in
// memory.
type Builder struct {
	context hash.Hash
	present map[Tag]bool
	last    Tag
}

// New starts a Builder that hashes items with context, which is typically
// sha256.New() (for AES-GCM AAD) or an HMAC context rooted in a session key
// (for session-info authentication).
func New(context hash.Hash) *Builder {
	return &Builder{context: context, present: make(map[Tag]bool)}
}

// Add appends a (tag, value) item. A nil or empty value is silently
// skipped, matching the vehicle's behavior of omitting absent fields
// (e.g. FLAGS when zero) from the canonical encoding entirely.
func (b *Builder) Add(tag Tag, value []byte) error {
	if tag < b.last {
		return ErrOutOfOrder
	}
	if len(value) == 0 {
		return nil
	}
	if len(value) > 255 {
		return ErrFieldTooLong
	}
	b.last = tag
	b.context.Write([]byte{byte(tag)})
	b.context.Write([]byte{byte(len(value))})
	b.context.Write(value)
	b.present[tag] = true
	return nil
}

// AddUint32 appends value encoded big-endian.
func (b *Builder) AddUint32(tag Tag, value uint32) error {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], value)
	return b.Add(tag, buf[:])
}

// Contains reports whether every tag in tags has been added.
func (b *Builder) Contains(tags ...Tag) bool {
	for _, t := range tags {
		if !b.present[t] {
			return false
		}
	}
	return true
}

// Checksum terminates the encoding with TagEnd, folds in trailing message
// bytes (the ciphertext for AAD, or the plaintext payload for HMAC
// authentication), and returns the digest. The Builder must not be reused
// afterward.
func (b *Builder) Checksum(message []byte) []byte {
	b.context.Write([]byte{byte(TagEnd)})
	if len(message) > 0 {
		b.context.Write(message)
	}
	return b.context.Sum(nil)
}
