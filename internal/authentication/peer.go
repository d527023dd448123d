package authentication

import (
	"time"

	"github.com/go-ble-vehicle/teslable/internal/wire/metadata"
	"github.com/go-ble-vehicle/teslable/internal/wire/signatures"
	universal "github.com/go-ble-vehicle/teslable/internal/wire/universalmessage"
)

// sessionInfo is satisfied by the two personalized signature data messages,
// letting extractMetadata and hmacTag treat AES-GCM and HMAC sessions
// identically.
type sessionInfo interface {
	GetEpoch() []byte
	GetExpiresAt() uint32
	GetCounter() uint32
}

// Peer holds the state shared by a Signer and a Verifier: the symmetric
// session derived from an ECDH exchange, and the epoch/counter pair that
// anchors anti-replay checks. A Signer embeds one to send authenticated
// commands; a Verifier embeds one to check them.
type Peer struct {
	domain       universal.Domain
	verifierName []byte // Typically the vehicle's VIN.
	session      Session
	counter      uint32
	timeZero     time.Time // Local time corresponding to clock_time=0 in the current epoch.
	epoch        [epochIdLength]byte
}

// timestamp returns the current time as seconds elapsed since the start of
// the current epoch, in the representation carried on the wire.
func (p *Peer) timestamp() uint32 {
	return uint32(time.Since(p.timeZero) / time.Second)
}

// extractMetadata builds the canonical metadata item sequence shared by
// request encryption and verification: signature type, domain,
// personalization (VIN), epoch, expiration, counter, and flags (when
// nonzero). The same sequence is hashed twice: once as AES-GCM associated
// data, and once (via a different hash context) as HMAC input.
func (p *Peer) extractMetadata(meta *metadata.Builder, message *universal.RoutableMessage, info sessionInfo, sigType signatures.SignatureType) error {
	if err := meta.Add(metadata.TagSignatureType, []byte{byte(sigType)}); err != nil {
		return err
	}
	domain := p.domain
	if d := message.GetToDestination().GetDomain(); d != universal.Domain_DOMAIN_BROADCAST {
		domain = d
	}
	if err := meta.Add(metadata.TagDomain, []byte{byte(domain)}); err != nil {
		return err
	}
	if err := meta.Add(metadata.TagPersonalization, p.verifierName); err != nil {
		return err
	}
	if err := meta.Add(metadata.TagEpoch, info.GetEpoch()); err != nil {
		return err
	}
	if err := meta.AddUint32(metadata.TagExpiresAt, info.GetExpiresAt()); err != nil {
		return err
	}
	if err := meta.AddUint32(metadata.TagCounter, info.GetCounter()); err != nil {
		return err
	}
	if flags := message.GetFlags(); flags != 0 {
		if err := meta.AddUint32(metadata.TagFlags, flags); err != nil {
			return err
		}
	}
	return nil
}

// hmacTag computes the authentication tag for an unencrypted, HMAC-signed
// command. It is also used, via a session-scoped HMAC context, to
// authenticate session info at handshake time.
func (p *Peer) hmacTag(message *universal.RoutableMessage, hmacData *signatures.HMAC_Personalized_Signature_Data) ([]byte, error) {
	meta := metadata.New(p.session.NewHMAC(labelMessageAuth))
	if err := p.extractMetadata(meta, message, hmacData, signatures.SignatureType_SIGNATURE_TYPE_HMAC_PERSONALIZED); err != nil {
		return nil, err
	}
	return meta.Checksum(message.GetProtobufMessageAsBytes()), nil
}
