package authentication

import (
	"errors"
	"fmt"
	"hash"
	"time"

	universal "github.com/go-ble-vehicle/teslable/internal/wire/universalmessage"
)

const (
	labelSessionInfo = "session info"
	labelMessageAuth = "authenticated command"
)

const (
	counterMax               = 0xFFFFFFFF
	epochIdLength            = 16
	maxSecondsWithoutCounter = 30
	windowSize               = 32 // Verifier.window is uint64, so must be ≤ 64.
)

var (
	// ErrInvalidPublicKey is an Error raised when a remote peer provides an invalid public key.
	ErrInvalidPublicKey = newError(errCodeBadParameter, "invalid public key")
	// ErrInvalidPrivateKey indicates the local peer tried to load an unsupported or malformed
	// private key.
	ErrInvalidPrivateKey = errors.New("invalid private key")
	// ErrMetadataFieldTooLong indicates an authenticated field (such as a verifier name) is too
	// long to encode in a metadata TLV entry.
	ErrMetadataFieldTooLong = errors.New("metadata fields can't be more than 255 bytes long")
)

// A Session allows encrypting/decrypting/authenticating data using a shared ECDH secret.
type Session interface {
	// SessionInfoHMAC returns the session info HMAC tag for encodedInfo. The challenge is a
	// Signer-provided anti-replay value.
	SessionInfoHMAC(id, challenge, encodedInfo []byte) ([]byte, error)
	// Encrypt plaintext and generate a tag that can be used to authenticate
	// the ciphertext and associated data. The tag and ciphertext are part of
	// the same slice, but returned separately for convenience.
	Encrypt(plaintext, associatedData []byte) (nonce, ciphertext, tag []byte, err error)
	// Decrypt authenticates a ciphertext and its associated data using the tag, then
	// decrypts it and returns the plaintext.
	Decrypt(nonce, ciphertext, associatedData, tag []byte) (plaintext []byte, err error)
	// LocalPublicBytes returns the encoded local public key.
	LocalPublicBytes() []byte
	// NewHMAC returns a hash.Hash context that can be used as a KDF rooted in the shared secret.
	NewHMAC(label string) hash.Hash
}

var epochLength = (1 << 30) * time.Second // var instead of const to facilitate testing

// InvalidSignatureError is returned by a Verifier when it cannot authenticate a message; it
// carries the Verifier's current session info so the Signer can resynchronize.
type InvalidSignatureError struct {
	Code        universal.MessageFault_E
	EncodedInfo []byte
	Tag         []byte
}

func (e *InvalidSignatureError) Error() string {
	return fmt.Sprintf("invalid signature: %s", e.Code)
}

// epochStartTime returns the local time at which an epoch reporting epochTime elapsed seconds
// must have started.
func epochStartTime(epochTime uint32) time.Time {
	return time.Now().Add(-time.Second * time.Duration(epochTime))
}
