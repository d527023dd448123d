package authentication

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"time"

	"github.com/go-ble-vehicle/teslable/internal/wire/metadata"
	"github.com/go-ble-vehicle/teslable/internal/wire/signatures"
	universal "github.com/go-ble-vehicle/teslable/internal/wire/universalmessage"
)

// Signer encrypts messages that are decrypted and verified by a designated Verifier.
// (Technically speaking, the name is a misnomer since a Signer uses symmetric-key operations
// following ECDH key agreement, not a public-key signature scheme.)
type Signer struct {
	Peer
	verifierPublicBytes []byte
	setTime             uint32 // Transmission time (according to Verifier clock) of the last transmitted session info known to the Signer.
	responseWindow      SlidingWindow
}

// SetDomain records which vehicle subsystem this Signer's Verifier lives in. It is only used to
// populate the DOMAIN metadata field when a response omits FromDestination's domain; callers that
// multiplex several Signers by domain normally set this once, right after NewSigner.
func (s *Signer) SetDomain(domain universal.Domain) {
	s.domain = domain
}

// NewSigner creates a Signer that sends authenticated messages to the Verifier named verifierName.
// In order to use this function, the client needs to obtain verifierInfo from the Verifier.
func NewSigner(private ECDHPrivateKey, verifierName []byte, verifierInfo *signatures.SessionInfo) (*Signer, error) {
	if len(verifierName) > 255 {
		return nil, ErrMetadataFieldTooLong
	}
	session, err := private.Exchange(verifierInfo.GetPublicKey())
	if err != nil {
		return nil, err
	}
	signer := Signer{
		Peer: Peer{
			verifierName: verifierName,
			session:      session,
			counter:      verifierInfo.GetCounter(),
			timeZero:     epochStartTime(verifierInfo.GetClockTime()),
		},
		setTime:             verifierInfo.GetClockTime(),
		verifierPublicBytes: verifierInfo.GetPublicKey(),
	}
	copy(signer.epoch[:], verifierInfo.GetEpoch())

	return &signer, nil
}

// NewAuthenticatedSigner creates a Signer from encoded and cryptographically verified session info.
func NewAuthenticatedSigner(private ECDHPrivateKey, verifierName, challenge, encodedInfo, tag []byte) (*Signer, error) {
	signer, err := ImportSessionInfo(private, verifierName, encodedInfo, time.Now())
	if err != nil {
		return nil, err
	}
	validTag, err := signer.session.SessionInfoHMAC(verifierName, challenge, encodedInfo)
	if err != nil {
		return nil, err
	}
	if !hmac.Equal(validTag, tag) {
		return nil, newError(errCodeInvalidSignature, "session info hmac invalid")
	}
	return signer, nil
}

// RemotePublicKeyBytes returns the Verifier's public key encoded without point compression.
func (s *Signer) RemotePublicKeyBytes() []byte {
	return append([]byte{}, s.verifierPublicBytes...)
}

// ImportSessionInfo allows creation of a Signer from cached SessionInfo, avoiding a round trip
// with the Verifier.
func ImportSessionInfo(private ECDHPrivateKey, verifierName, encodedInfo []byte, generatedAt time.Time) (*Signer, error) {
	info, err := signatures.UnmarshalSessionInfo(encodedInfo)
	if err != nil {
		return nil, newError(errCodeDecoding, "invalid session info protobuf")
	}
	signer, err := NewSigner(private, verifierName, info)
	if err != nil {
		return nil, err
	}
	signer.timeZero = generatedAt.Add(-time.Duration(info.ClockTime) * time.Second)
	return signer, nil
}

// ExportSessionInfo can be used to persist session state, allowing for later resumption using
// ImportSessionInfo.
func (s *Signer) ExportSessionInfo() ([]byte, error) {
	info := signatures.SessionInfo{
		Counter:   s.counter,
		PublicKey: s.verifierPublicBytes,
		Epoch:     s.epoch[:],
		ClockTime: s.timestamp(),
	}
	return signatures.MarshalSessionInfo(&info)
}

// UpdateSessionInfo allows s to resync session state with a Verifier.
// A Verifier may include info in an authentication error message when the error may have resulted
// from a desync. The Signer can update its session info and then reattempt transmission.
func (s *Signer) UpdateSessionInfo(info *signatures.SessionInfo) error {
	if !bytes.Equal(info.GetPublicKey(), s.verifierPublicBytes) {
		return newError(errCodeUnknownKey, "public key in SessionInfo doesn't match value used to initialize Signer")
	}
	if !bytes.Equal(s.epoch[:], info.Epoch) || s.setTime <= info.ClockTime {
		if s.counter < info.Counter {
			s.counter = info.Counter
		}
		copy(s.epoch[:], info.Epoch)
		s.setTime = info.ClockTime
		s.timeZero = epochStartTime(info.ClockTime)
	}
	return nil
}

// UpdateSignedSessionInfo allows s to resync session state with a Verifier using cryptographically
// verified session state. See UpdateSessionInfo.
func (s *Signer) UpdateSignedSessionInfo(challenge, encodedInfo, tag []byte) error {
	validTag, err := s.session.SessionInfoHMAC(s.verifierName, challenge, encodedInfo)
	if err != nil {
		return err
	}
	if !hmac.Equal(validTag, tag) {
		return newError(errCodeInvalidSignature, "session info hmac invalid")
	}
	info, err := signatures.UnmarshalSessionInfo(encodedInfo)
	if err != nil {
		return newError(errCodeDecoding, "invalid session info protobuf")
	}
	return s.UpdateSessionInfo(info)
}

func (s *Signer) encryptWithCounter(message *universal.RoutableMessage, expiresIn time.Duration, counter uint32) error {
	gcmData := &signatures.AES_GCM_Personalized_Signature_Data{}
	message.SignatureData = &signatures.SignatureData{
		SignerIdentity: &signatures.KeyIdentity{PublicKey: s.session.LocalPublicBytes()},
		SigType: &signatures.SignatureData_AES_GCM_PersonalizedData{AES_GCM_PersonalizedData: gcmData},
	}

	gcmData.Epoch = append(gcmData.Epoch, s.epoch[:]...)
	gcmData.Counter = counter
	gcmData.ExpiresAt = uint32(time.Now().Add(expiresIn).Sub(s.timeZero) / time.Second)

	meta := metadata.New(sha256.New())
	if err := s.extractMetadata(meta, message, gcmData, signatures.SignatureType_SIGNATURE_TYPE_AES_GCM_PERSONALIZED); err != nil {
		return err
	}
	plaintext := message.GetProtobufMessageAsBytes()
	if plaintext == nil {
		return newError(errCodeBadParameter, "missing protobuf message")
	}
	var err error
	var ciphertext []byte
	gcmData.Nonce, ciphertext, gcmData.Tag, err = s.session.Encrypt(plaintext, meta.Checksum(nil))
	if err != nil {
		return err
	}
	message.ProtobufMessageAsBytes = ciphertext
	return nil
}

// Encrypt encrypts message's payload in-place, attaching authenticated metadata including the
// provided expiration time.
func (s *Signer) Encrypt(message *universal.RoutableMessage, expiresIn time.Duration) error {
	if s.counter == counterMax {
		return newError(errCodeInvalidToken, "counter rollover")
	}
	s.counter++
	return s.encryptWithCounter(message, expiresIn, s.counter)
}

// AuthorizeHMAC adds an authentication tag to message without encrypting its payload.
//
// This allows the recipient to verify the message has not been tampered with, but the payload
// remains visible to intermediaries such as a BLE-to-internet proxy that needs to inspect
// commands. Clients that don't require such a proxy should use Encrypt instead.
func (s *Signer) AuthorizeHMAC(message *universal.RoutableMessage, expiresIn time.Duration) error {
	s.counter++
	hmacData := &signatures.HMAC_Personalized_Signature_Data{
		Counter:   s.counter,
		ExpiresAt: uint32(time.Now().Add(expiresIn).Sub(s.timeZero) / time.Second),
	}
	hmacData.Epoch = append(hmacData.Epoch, s.epoch[:]...)
	tag, err := s.hmacTag(message, hmacData)
	if err != nil {
		return err
	}
	hmacData.Tag = tag

	message.SignatureData = &signatures.SignatureData{
		SignerIdentity: &signatures.KeyIdentity{PublicKey: s.session.LocalPublicBytes()},
		SigType: &signatures.SignatureData_HMAC_PersonalizedData{HMAC_PersonalizedData: hmacData},
	}
	return nil
}

// DecryptResponse authenticates and decrypts a vehicle's reply to a command previously encrypted
// with Encrypt. requestTag is the AES-GCM tag this Signer attached to that request: the response's
// associated data binds to it via REQUEST_HASH, so a response cannot be replayed against, or
// mistaken for the answer to, a different request.
func (s *Signer) DecryptResponse(message *universal.RoutableMessage, requestTag []byte) ([]byte, error) {
	gcmData := message.GetSignatureData().GetAES_GCM_ResponseData()
	if gcmData == nil {
		return nil, newError(errCodeBadParameter, "response missing AES_GCM_ResponseData")
	}

	domain := s.domain
	if d := message.GetFromDestination().GetDomain(); d != universal.Domain_DOMAIN_BROADCAST {
		domain = d
	}

	meta := metadata.New(sha256.New())
	if err := meta.Add(metadata.TagSignatureType, []byte{byte(signatures.SignatureType_SIGNATURE_TYPE_AES_GCM_RESPONSE)}); err != nil {
		return nil, err
	}
	if err := meta.Add(metadata.TagDomain, []byte{byte(domain)}); err != nil {
		return nil, err
	}
	if err := meta.Add(metadata.TagPersonalization, s.verifierName); err != nil {
		return nil, err
	}
	if err := meta.AddUint32(metadata.TagCounter, gcmData.GetCounter()); err != nil {
		return nil, err
	}
	// Unlike the request side, FLAGS is always included here, even when zero: the vehicle's AAD
	// computation does not special-case it on responses.
	if err := meta.AddUint32(metadata.TagFlags, message.GetFlags()); err != nil {
		return nil, err
	}
	requestHash := append([]byte{byte(signatures.SignatureType_SIGNATURE_TYPE_AES_GCM_PERSONALIZED)}, requestTag...)
	if err := meta.Add(metadata.TagRequestHash, requestHash); err != nil {
		return nil, err
	}
	fault := byte(message.GetSignedMessageStatus().GetSignedMessageFault())
	if err := meta.Add(metadata.TagFault, []byte{fault}); err != nil {
		return nil, err
	}

	if !s.responseWindow.Update(gcmData.GetCounter()) {
		return nil, newError(errCodeInvalidToken, "replayed response counter")
	}

	plaintext, err := s.session.Decrypt(gcmData.GetNonce(), message.GetProtobufMessageAsBytes(), meta.Checksum(nil), gcmData.GetTag())
	if err != nil {
		return nil, newError(errCodeInvalidSignature, "response authentication failed")
	}
	return plaintext, nil
}
