package authentication

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"hash"
	"io"
	"math/big"
	"os"

	"github.com/go-ble-vehicle/teslable/internal/wire/metadata"
	"github.com/go-ble-vehicle/teslable/internal/wire/signatures"
)

// NativeSession implements the Session interface using native Go.
type NativeSession struct {
	gcm         cipher.AEAD
	key         []byte
	localPublic []byte
}

func (b *NativeSession) LocalPublicBytes() []byte {
	buff := make([]byte, len(b.localPublic))
	copy(buff, b.localPublic)
	return buff
}

func (b *NativeSession) Encrypt(plaintext, associatedData []byte) (nonce, ciphertext, tag []byte, err error) {
	if b.gcm == nil {
		err = errors.New("GCM context not initialized")
		return
	}
	nonce = make([]byte, b.gcm.NonceSize())
	if _, err = rand.Read(nonce); err != nil {
		return
	}
	length := len(plaintext)
	ciphertext = b.gcm.Seal(nil, nonce, plaintext, associatedData)
	tag = ciphertext[length:]
	ciphertext = ciphertext[:length]
	return
}

func (b *NativeSession) Decrypt(nonce, ciphertext, associatedData, tag []byte) (plaintext []byte, err error) {
	if b.gcm == nil {
		err = errors.New("GCM context not initialized")
		return
	}
	ctAndTag := make([]byte, 0, len(ciphertext)+len(tag))
	ctAndTag = append(ctAndTag, ciphertext...)
	ctAndTag = append(ctAndTag, tag...)
	plaintext, err = b.gcm.Open(nil, nonce, ctAndTag, associatedData)
	return
}

func (n *NativeSession) subkey(label []byte) []byte {
	kdf := hmac.New(sha256.New, n.key)
	kdf.Write(label)
	return kdf.Sum(nil)
}

func (b *NativeSession) NewHMAC(label string) hash.Hash {
	return hmac.New(sha256.New, b.subkey([]byte(label)))
}

func (b *NativeSession) SessionInfoHMAC(id, challenge, encodedInfo []byte) ([]byte, error) {
	meta := metadata.New(b.NewHMAC(labelSessionInfo))
	if err := meta.Add(metadata.TagSignatureType, []byte{byte(signatures.SignatureType_SIGNATURE_TYPE_HMAC)}); err != nil {
		return nil, err
	}
	if err := meta.Add(metadata.TagPersonalization, id); err != nil {
		return nil, err
	}
	if err := meta.Add(metadata.TagChallenge, challenge); err != nil {
		return nil, err
	}
	return meta.Checksum(encodedInfo), nil
}

// NativeECDHKey implements ECDHPrivateKey using crypto/ecdsa. A static
// P-256 key is required for compatibility with the vehicle's key
// agreement, which rules out crypto/ecdh: that package's ECDH() method is
// meant for ephemeral keys and isn't a fit for a key that is reused across
// sessions and, potentially, backed by a hardware module.
type NativeECDHKey struct {
	*ecdsa.PrivateKey
}

func (n *NativeECDHKey) sharedSecret(publicBytes []byte) ([]byte, error) {
	x, y := elliptic.Unmarshal(elliptic.P256(), publicBytes)
	if x == nil {
		return nil, ErrInvalidPublicKey
	}

	sharedX, sharedY := elliptic.P256().ScalarMult(x, y, n.D.Bytes())

	if sharedX.Sign() == 0 && sharedY.Sign() == 0 {
		return nil, ErrInvalidPrivateKey
	}

	sharedSecret := make([]byte, (elliptic.P256().Params().BitSize+7)/8)
	sharedX.FillBytes(sharedSecret)
	return sharedSecret, nil
}

// Exchange derives a Session from the shared secret. SHA-1 truncated to
// SharedKeySizeBytes is mandated by the vehicle's firmware; it's safe here
// because the input is already a pseudo-random curve coordinate and
// collision resistance isn't needed, only uniform key material.
func (n *NativeECDHKey) Exchange(publicBytes []byte) (Session, error) {
	sharedSecret, err := n.sharedSecret(publicBytes)
	if err != nil {
		return nil, err
	}
	digest := sha1.Sum(sharedSecret)
	var session NativeSession
	session.key = digest[:SharedKeySizeBytes]

	block, err := aes.NewCipher(session.key)
	if err != nil {
		return nil, err
	}

	if session.gcm, err = cipher.NewGCM(block); err != nil {
		return nil, err
	}
	session.localPublic = n.PublicBytes()
	return &session, nil
}

// NewECDHPrivateKey generates a fresh P-256 private key.
func NewECDHPrivateKey(rng io.Reader) (ECDHPrivateKey, error) {
	ecdsaKey, err := ecdsa.GenerateKey(elliptic.P256(), rng)
	if err != nil {
		return nil, err
	}
	return &NativeECDHKey{ecdsaKey}, nil
}

// LoadExternalECDHKey reads a PEM-encoded P-256 private key from filename.
func LoadExternalECDHKey(filename string) (ECDHPrivateKey, error) {
	pemBlock, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	block, _ := pem.Decode(pemBlock)
	if block == nil {
		return nil, fmt.Errorf("%w: expected PEM encoding", ErrInvalidPrivateKey)
	}

	var ecdsaPrivateKey *ecdsa.PrivateKey

	if block.Type == "EC PRIVATE KEY" {
		ecdsaPrivateKey, err = x509.ParseECPrivateKey(block.Bytes)
		if err != nil {
			return nil, err
		}
	} else {
		privateKey, err := x509.ParsePKCS8PrivateKey(block.Bytes)
		if err != nil {
			return nil, err
		}
		var ok bool
		if ecdsaPrivateKey, ok = privateKey.(*ecdsa.PrivateKey); !ok {
			return nil, fmt.Errorf("%w: only elliptic curve keys supported", ErrInvalidPrivateKey)
		}
	}

	if ecdsaPrivateKey.Curve != elliptic.P256() {
		return nil, fmt.Errorf("%w: only NIST-P256 keys supported", ErrInvalidPrivateKey)
	}
	return &NativeECDHKey{ecdsaPrivateKey}, nil
}

// UnmarshalECDHPrivateKey reconstructs a private key from its raw 32-byte scalar.
func UnmarshalECDHPrivateKey(privateScalar []byte) ECDHPrivateKey {
	if len(privateScalar) != 32 {
		return nil
	}
	sk := NativeECDHKey{&ecdsa.PrivateKey{PublicKey: ecdsa.PublicKey{Curve: elliptic.P256()}}}
	var d big.Int
	sk.D = d.SetBytes(privateScalar)
	if sk.D.Cmp(elliptic.P256().Params().N) >= 0 {
		return nil
	}
	x, y := sk.PublicKey.Curve.ScalarBaseMult(privateScalar)
	sk.PublicKey.X = x
	sk.PublicKey.Y = y
	return &sk
}

func (n *NativeECDHKey) Public() *ecdsa.PublicKey {
	return &n.PublicKey
}

func (n *NativeECDHKey) PublicBytes() []byte {
	publicKey := n.Public()
	return elliptic.Marshal(publicKey, publicKey.X, publicKey.Y)
}
