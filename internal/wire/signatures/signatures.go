// Package signatures implements the Signatures.SignatureData family of
// messages: the discriminated union carried in a RoutableMessage that
// authenticates (and, for commands, authorizes decryption of) its payload.
//
// Like internal/wire/universalmessage, this encodes and decodes directly
// against the protobuf wire format with google.golang.org/protobuf/encoding/protowire
// rather than generated code, since no .proto source is available to run
// through protoc. Session info carries a public key and replay-prevention
// counters; signature data carries either an AES-GCM tag (request or
// response), an HMAC tag, or a plain session-info HMAC.
package signatures

import (
	"errors"
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// SignatureType identifies which authentication scheme produced a
// SignatureData payload.
type SignatureType int32

const (
	SignatureType_SIGNATURE_TYPE_AES_GCM              SignatureType = 0
	SignatureType_SIGNATURE_TYPE_AES_GCM_PERSONALIZED SignatureType = 5
	SignatureType_SIGNATURE_TYPE_HMAC                 SignatureType = 6
	SignatureType_SIGNATURE_TYPE_HMAC_PERSONALIZED    SignatureType = 8
	SignatureType_SIGNATURE_TYPE_AES_GCM_RESPONSE     SignatureType = 9
)

var signatureTypeNames = map[SignatureType]string{
	SignatureType_SIGNATURE_TYPE_AES_GCM:              "SIGNATURE_TYPE_AES_GCM",
	SignatureType_SIGNATURE_TYPE_AES_GCM_PERSONALIZED: "SIGNATURE_TYPE_AES_GCM_PERSONALIZED",
	SignatureType_SIGNATURE_TYPE_HMAC:                 "SIGNATURE_TYPE_HMAC",
	SignatureType_SIGNATURE_TYPE_HMAC_PERSONALIZED:    "SIGNATURE_TYPE_HMAC_PERSONALIZED",
	SignatureType_SIGNATURE_TYPE_AES_GCM_RESPONSE:     "SIGNATURE_TYPE_AES_GCM_RESPONSE",
}

func (t SignatureType) String() string {
	if s, ok := signatureTypeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("SIGNATURE_TYPE_%d", int32(t))
}

// Session_Info_Status reports whether the vehicle recognizes the client's
// public key.
type Session_Info_Status int32

const (
	Session_Info_Status_SESSION_INFO_STATUS_OK                   Session_Info_Status = 0
	Session_Info_Status_SESSION_INFO_STATUS_KEY_NOT_ON_WHITELIST Session_Info_Status = 1
)

// KeyIdentity names the sender of a signed/encrypted message, either by
// full public key (the common case for BLE, since there's no prior
// handle-allocation round trip) or by a vehicle-assigned handle.
type KeyIdentity struct {
	PublicKey []byte
	Handle    uint32
	hasHandle bool
}

func (k *KeyIdentity) GetPublicKey() []byte {
	if k == nil {
		return nil
	}
	return k.PublicKey
}

const (
	fieldKeyIdentityPublicKey = 1
	fieldKeyIdentityHandle    = 3
)

func (k *KeyIdentity) marshal() []byte {
	var b []byte
	if len(k.PublicKey) > 0 {
		b = protowire.AppendTag(b, fieldKeyIdentityPublicKey, protowire.BytesType)
		b = protowire.AppendBytes(b, k.PublicKey)
	} else if k.hasHandle {
		b = protowire.AppendTag(b, fieldKeyIdentityHandle, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(k.Handle))
	}
	return b
}

func unmarshalKeyIdentity(data []byte) (*KeyIdentity, error) {
	k := &KeyIdentity{}
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		data = data[n:]
		switch num {
		case fieldKeyIdentityPublicKey:
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			k.PublicKey = append([]byte{}, v...)
			data = data[n:]
		case fieldKeyIdentityHandle:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			k.Handle = uint32(v)
			k.hasHandle = true
			data = data[n:]
		default:
			n = skipField(data, typ)
			if n < 0 {
				return nil, errors.New("signatures: malformed KeyIdentity")
			}
			data = data[n:]
		}
	}
	return k, nil
}

// AES_GCM_Personalized_Signature_Data authenticates and authorizes
// decryption of a command sent to the vehicle.
type AES_GCM_Personalized_Signature_Data struct {
	Epoch     []byte
	Nonce     []byte
	Counter   uint32
	ExpiresAt uint32
	Tag       []byte
}

func (g *AES_GCM_Personalized_Signature_Data) GetEpoch() []byte     { return getBytes(g, func(x *AES_GCM_Personalized_Signature_Data) []byte { return x.Epoch }) }
func (g *AES_GCM_Personalized_Signature_Data) GetNonce() []byte     { return getBytes(g, func(x *AES_GCM_Personalized_Signature_Data) []byte { return x.Nonce }) }
func (g *AES_GCM_Personalized_Signature_Data) GetTag() []byte       { return getBytes(g, func(x *AES_GCM_Personalized_Signature_Data) []byte { return x.Tag }) }
func (g *AES_GCM_Personalized_Signature_Data) GetCounter() uint32 {
	if g == nil {
		return 0
	}
	return g.Counter
}
func (g *AES_GCM_Personalized_Signature_Data) GetExpiresAt() uint32 {
	if g == nil {
		return 0
	}
	return g.ExpiresAt
}

const (
	fieldGCMEpoch     = 1
	fieldGCMNonce     = 2
	fieldGCMCounter   = 3
	fieldGCMExpiresAt = 4
	fieldGCMTag       = 5
)

func (g *AES_GCM_Personalized_Signature_Data) marshal() []byte {
	var b []byte
	if len(g.Epoch) > 0 {
		b = protowire.AppendTag(b, fieldGCMEpoch, protowire.BytesType)
		b = protowire.AppendBytes(b, g.Epoch)
	}
	if len(g.Nonce) > 0 {
		b = protowire.AppendTag(b, fieldGCMNonce, protowire.BytesType)
		b = protowire.AppendBytes(b, g.Nonce)
	}
	if g.Counter != 0 {
		b = protowire.AppendTag(b, fieldGCMCounter, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(g.Counter))
	}
	if g.ExpiresAt != 0 {
		b = protowire.AppendTag(b, fieldGCMExpiresAt, protowire.Fixed32Type)
		b = protowire.AppendFixed32(b, g.ExpiresAt)
	}
	if len(g.Tag) > 0 {
		b = protowire.AppendTag(b, fieldGCMTag, protowire.BytesType)
		b = protowire.AppendBytes(b, g.Tag)
	}
	return b
}

func unmarshalGCMPersonalized(data []byte) (*AES_GCM_Personalized_Signature_Data, error) {
	g := &AES_GCM_Personalized_Signature_Data{}
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		data = data[n:]
		switch num {
		case fieldGCMEpoch:
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			g.Epoch = append([]byte{}, v...)
			data = data[n:]
		case fieldGCMNonce:
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			g.Nonce = append([]byte{}, v...)
			data = data[n:]
		case fieldGCMCounter:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			g.Counter = uint32(v)
			data = data[n:]
		case fieldGCMExpiresAt:
			v, n := protowire.ConsumeFixed32(data)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			g.ExpiresAt = v
			data = data[n:]
		case fieldGCMTag:
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			g.Tag = append([]byte{}, v...)
			data = data[n:]
		default:
			n = skipField(data, typ)
			if n < 0 {
				return nil, errors.New("signatures: malformed AES_GCM_Personalized_Signature_Data")
			}
			data = data[n:]
		}
	}
	return g, nil
}

// AES_GCM_Response_Signature_Data authenticates a vehicle's encrypted
// response to a command. Unlike the request-side variant it carries no
// epoch or expiry: freshness is bound to the request it answers via
// REQUEST_HASH in the metadata, not an independent TTL.
type AES_GCM_Response_Signature_Data struct {
	Nonce   []byte
	Counter uint32
	Tag     []byte
}

func (g *AES_GCM_Response_Signature_Data) GetNonce() []byte { return getBytes(g, func(x *AES_GCM_Response_Signature_Data) []byte { return x.Nonce }) }
func (g *AES_GCM_Response_Signature_Data) GetTag() []byte   { return getBytes(g, func(x *AES_GCM_Response_Signature_Data) []byte { return x.Tag }) }
func (g *AES_GCM_Response_Signature_Data) GetCounter() uint32 {
	if g == nil {
		return 0
	}
	return g.Counter
}

const (
	fieldGCMRespNonce   = 1
	fieldGCMRespCounter = 2
	fieldGCMRespTag     = 3
)

func (g *AES_GCM_Response_Signature_Data) marshal() []byte {
	var b []byte
	if len(g.Nonce) > 0 {
		b = protowire.AppendTag(b, fieldGCMRespNonce, protowire.BytesType)
		b = protowire.AppendBytes(b, g.Nonce)
	}
	if g.Counter != 0 {
		b = protowire.AppendTag(b, fieldGCMRespCounter, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(g.Counter))
	}
	if len(g.Tag) > 0 {
		b = protowire.AppendTag(b, fieldGCMRespTag, protowire.BytesType)
		b = protowire.AppendBytes(b, g.Tag)
	}
	return b
}

func unmarshalGCMResponse(data []byte) (*AES_GCM_Response_Signature_Data, error) {
	g := &AES_GCM_Response_Signature_Data{}
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		data = data[n:]
		switch num {
		case fieldGCMRespNonce:
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			g.Nonce = append([]byte{}, v...)
			data = data[n:]
		case fieldGCMRespCounter:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			g.Counter = uint32(v)
			data = data[n:]
		case fieldGCMRespTag:
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			g.Tag = append([]byte{}, v...)
			data = data[n:]
		default:
			n = skipField(data, typ)
			if n < 0 {
				return nil, errors.New("signatures: malformed AES_GCM_Response_Signature_Data")
			}
			data = data[n:]
		}
	}
	return g, nil
}

// HMAC_Signature_Data carries a bare HMAC tag, used to authenticate a
// SessionInfo response during the handshake (no counter/epoch involved
// yet, since the client has none until it parses that very response).
type HMAC_Signature_Data struct {
	Tag []byte
}

func (h *HMAC_Signature_Data) GetTag() []byte { return getBytes(h, func(x *HMAC_Signature_Data) []byte { return x.Tag }) }

func (h *HMAC_Signature_Data) marshal() []byte {
	if len(h.Tag) == 0 {
		return nil
	}
	var b []byte
	b = protowire.AppendTag(b, 1, protowire.BytesType)
	b = protowire.AppendBytes(b, h.Tag)
	return b
}

func unmarshalHMACTag(data []byte) (*HMAC_Signature_Data, error) {
	h := &HMAC_Signature_Data{}
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		data = data[n:]
		if num == 1 {
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			h.Tag = append([]byte{}, v...)
			data = data[n:]
			continue
		}
		n = skipField(data, typ)
		if n < 0 {
			return nil, errors.New("signatures: malformed HMAC_Signature_Data")
		}
		data = data[n:]
	}
	return h, nil
}

// HMAC_Personalized_Signature_Data authenticates an unencrypted command
// (used when an intermediary proxy needs to inspect the payload).
type HMAC_Personalized_Signature_Data struct {
	Epoch     []byte
	Counter   uint32
	ExpiresAt uint32
	Tag       []byte
}

func (h *HMAC_Personalized_Signature_Data) GetEpoch() []byte { return getBytes(h, func(x *HMAC_Personalized_Signature_Data) []byte { return x.Epoch }) }
func (h *HMAC_Personalized_Signature_Data) GetTag() []byte   { return getBytes(h, func(x *HMAC_Personalized_Signature_Data) []byte { return x.Tag }) }
func (h *HMAC_Personalized_Signature_Data) GetCounter() uint32 {
	if h == nil {
		return 0
	}
	return h.Counter
}
func (h *HMAC_Personalized_Signature_Data) GetExpiresAt() uint32 {
	if h == nil {
		return 0
	}
	return h.ExpiresAt
}

const (
	fieldHMACEpoch     = 1
	fieldHMACCounter   = 2
	fieldHMACExpiresAt = 3
	fieldHMACTag       = 4
)

func (h *HMAC_Personalized_Signature_Data) marshal() []byte {
	var b []byte
	if len(h.Epoch) > 0 {
		b = protowire.AppendTag(b, fieldHMACEpoch, protowire.BytesType)
		b = protowire.AppendBytes(b, h.Epoch)
	}
	if h.Counter != 0 {
		b = protowire.AppendTag(b, fieldHMACCounter, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(h.Counter))
	}
	if h.ExpiresAt != 0 {
		b = protowire.AppendTag(b, fieldHMACExpiresAt, protowire.Fixed32Type)
		b = protowire.AppendFixed32(b, h.ExpiresAt)
	}
	if len(h.Tag) > 0 {
		b = protowire.AppendTag(b, fieldHMACTag, protowire.BytesType)
		b = protowire.AppendBytes(b, h.Tag)
	}
	return b
}

func unmarshalHMACPersonalized(data []byte) (*HMAC_Personalized_Signature_Data, error) {
	h := &HMAC_Personalized_Signature_Data{}
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		data = data[n:]
		switch num {
		case fieldHMACEpoch:
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			h.Epoch = append([]byte{}, v...)
			data = data[n:]
		case fieldHMACCounter:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			h.Counter = uint32(v)
			data = data[n:]
		case fieldHMACExpiresAt:
			v, n := protowire.ConsumeFixed32(data)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			h.ExpiresAt = v
			data = data[n:]
		case fieldHMACTag:
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			h.Tag = append([]byte{}, v...)
			data = data[n:]
		default:
			n = skipField(data, typ)
			if n < 0 {
				return nil, errors.New("signatures: malformed HMAC_Personalized_Signature_Data")
			}
			data = data[n:]
		}
	}
	return h, nil
}

// isSignatureData_SigType is the discriminated union tag for SignatureData's
// oneof: exactly one of these is set on any given message.
type isSignatureData_SigType interface {
	isSignatureData_SigType()
}

type SignatureData_AES_GCM_PersonalizedData struct {
	AES_GCM_PersonalizedData *AES_GCM_Personalized_Signature_Data
}

type SignatureData_AES_GCM_ResponseData struct {
	AES_GCM_ResponseData *AES_GCM_Response_Signature_Data
}

type SignatureData_SessionInfoTag struct {
	SessionInfoTag *HMAC_Signature_Data
}

type SignatureData_HMAC_PersonalizedData struct {
	HMAC_PersonalizedData *HMAC_Personalized_Signature_Data
}

func (*SignatureData_AES_GCM_PersonalizedData) isSignatureData_SigType() {}
func (*SignatureData_AES_GCM_ResponseData) isSignatureData_SigType()     {}
func (*SignatureData_SessionInfoTag) isSignatureData_SigType()           {}
func (*SignatureData_HMAC_PersonalizedData) isSignatureData_SigType()    {}

// SignatureData is the discriminated union carried in a RoutableMessage
// that authenticates its payload, naming both the sender (SignerIdentity)
// and the scheme used (SigType).
type SignatureData struct {
	SignerIdentity *KeyIdentity
	SigType        isSignatureData_SigType
}

func (d *SignatureData) GetSignerIdentity() *KeyIdentity {
	if d == nil {
		return nil
	}
	return d.SignerIdentity
}

func (d *SignatureData) GetSigType() isSignatureData_SigType {
	if d == nil {
		return nil
	}
	return d.SigType
}

func (d *SignatureData) GetAES_GCM_PersonalizedData() *AES_GCM_Personalized_Signature_Data {
	if x, ok := d.GetSigType().(*SignatureData_AES_GCM_PersonalizedData); ok {
		return x.AES_GCM_PersonalizedData
	}
	return nil
}

func (d *SignatureData) GetAES_GCM_ResponseData() *AES_GCM_Response_Signature_Data {
	if x, ok := d.GetSigType().(*SignatureData_AES_GCM_ResponseData); ok {
		return x.AES_GCM_ResponseData
	}
	return nil
}

func (d *SignatureData) GetSessionInfoTag() *HMAC_Signature_Data {
	if x, ok := d.GetSigType().(*SignatureData_SessionInfoTag); ok {
		return x.SessionInfoTag
	}
	return nil
}

func (d *SignatureData) GetHMAC_PersonalizedData() *HMAC_Personalized_Signature_Data {
	if x, ok := d.GetSigType().(*SignatureData_HMAC_PersonalizedData); ok {
		return x.HMAC_PersonalizedData
	}
	return nil
}

const (
	fieldSigDataSignerIdentity    = 1
	fieldSigDataAESGCMPersonal    = 5
	fieldSigDataSessionInfoTag    = 6
	fieldSigDataAESGCMResponse    = 7
	fieldSigDataHMACPersonalized  = 8
)

// Marshal encodes d using the protobuf wire format.
func Marshal(d *SignatureData) ([]byte, error) {
	if d == nil {
		return nil, nil
	}
	var b []byte
	if d.SignerIdentity != nil {
		encoded := d.SignerIdentity.marshal()
		b = protowire.AppendTag(b, fieldSigDataSignerIdentity, protowire.BytesType)
		b = protowire.AppendBytes(b, encoded)
	}
	switch sig := d.SigType.(type) {
	case *SignatureData_AES_GCM_PersonalizedData:
		if sig.AES_GCM_PersonalizedData != nil {
			b = protowire.AppendTag(b, fieldSigDataAESGCMPersonal, protowire.BytesType)
			b = protowire.AppendBytes(b, sig.AES_GCM_PersonalizedData.marshal())
		}
	case *SignatureData_AES_GCM_ResponseData:
		if sig.AES_GCM_ResponseData != nil {
			b = protowire.AppendTag(b, fieldSigDataAESGCMResponse, protowire.BytesType)
			b = protowire.AppendBytes(b, sig.AES_GCM_ResponseData.marshal())
		}
	case *SignatureData_SessionInfoTag:
		if sig.SessionInfoTag != nil {
			b = protowire.AppendTag(b, fieldSigDataSessionInfoTag, protowire.BytesType)
			b = protowire.AppendBytes(b, sig.SessionInfoTag.marshal())
		}
	case *SignatureData_HMAC_PersonalizedData:
		if sig.HMAC_PersonalizedData != nil {
			b = protowire.AppendTag(b, fieldSigDataHMACPersonalized, protowire.BytesType)
			b = protowire.AppendBytes(b, sig.HMAC_PersonalizedData.marshal())
		}
	}
	return b, nil
}

// Unmarshal decodes a SignatureData previously produced by Marshal.
func Unmarshal(data []byte) (*SignatureData, error) {
	d := &SignatureData{}
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		data = data[n:]
		switch num {
		case fieldSigDataSignerIdentity:
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			id, err := unmarshalKeyIdentity(v)
			if err != nil {
				return nil, err
			}
			d.SignerIdentity = id
			data = data[n:]
		case fieldSigDataAESGCMPersonal:
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			g, err := unmarshalGCMPersonalized(v)
			if err != nil {
				return nil, err
			}
			d.SigType = &SignatureData_AES_GCM_PersonalizedData{AES_GCM_PersonalizedData: g}
			data = data[n:]
		case fieldSigDataAESGCMResponse:
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			g, err := unmarshalGCMResponse(v)
			if err != nil {
				return nil, err
			}
			d.SigType = &SignatureData_AES_GCM_ResponseData{AES_GCM_ResponseData: g}
			data = data[n:]
		case fieldSigDataSessionInfoTag:
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			h, err := unmarshalHMACTag(v)
			if err != nil {
				return nil, err
			}
			d.SigType = &SignatureData_SessionInfoTag{SessionInfoTag: h}
			data = data[n:]
		case fieldSigDataHMACPersonalized:
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			h, err := unmarshalHMACPersonalized(v)
			if err != nil {
				return nil, err
			}
			d.SigType = &SignatureData_HMAC_PersonalizedData{HMAC_PersonalizedData: h}
			data = data[n:]
		default:
			n = skipField(data, typ)
			if n < 0 {
				return nil, errors.New("signatures: malformed SignatureData")
			}
			data = data[n:]
		}
	}
	return d, nil
}

// SessionInfo is the vehicle's handshake response: its public key, the
// epoch/counter pair the client must echo in subsequent commands, and the
// vehicle's clock reading at the moment the message was generated.
type SessionInfo struct {
	Counter   uint32
	PublicKey []byte
	Epoch     []byte
	ClockTime uint32
	Status    Session_Info_Status
}

func (s *SessionInfo) GetCounter() uint32 {
	if s == nil {
		return 0
	}
	return s.Counter
}
func (s *SessionInfo) GetPublicKey() []byte { return getBytes(s, func(x *SessionInfo) []byte { return x.PublicKey }) }
func (s *SessionInfo) GetEpoch() []byte     { return getBytes(s, func(x *SessionInfo) []byte { return x.Epoch }) }
func (s *SessionInfo) GetClockTime() uint32 {
	if s == nil {
		return 0
	}
	return s.ClockTime
}
func (s *SessionInfo) GetStatus() Session_Info_Status {
	if s == nil {
		return Session_Info_Status_SESSION_INFO_STATUS_OK
	}
	return s.Status
}

const (
	fieldSessionInfoCounter   = 1
	fieldSessionInfoPublicKey = 2
	fieldSessionInfoEpoch     = 3
	fieldSessionInfoClockTime = 4
	fieldSessionInfoStatus    = 5
)

// MarshalSessionInfo encodes info using the protobuf wire format.
func MarshalSessionInfo(info *SessionInfo) ([]byte, error) {
	var b []byte
	if info.Counter != 0 {
		b = protowire.AppendTag(b, fieldSessionInfoCounter, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(info.Counter))
	}
	if len(info.PublicKey) > 0 {
		b = protowire.AppendTag(b, fieldSessionInfoPublicKey, protowire.BytesType)
		b = protowire.AppendBytes(b, info.PublicKey)
	}
	if len(info.Epoch) > 0 {
		b = protowire.AppendTag(b, fieldSessionInfoEpoch, protowire.BytesType)
		b = protowire.AppendBytes(b, info.Epoch)
	}
	if info.ClockTime != 0 {
		b = protowire.AppendTag(b, fieldSessionInfoClockTime, protowire.Fixed32Type)
		b = protowire.AppendFixed32(b, info.ClockTime)
	}
	if info.Status != Session_Info_Status_SESSION_INFO_STATUS_OK {
		b = protowire.AppendTag(b, fieldSessionInfoStatus, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(info.Status))
	}
	return b, nil
}

// UnmarshalSessionInfo decodes a SessionInfo previously produced by
// MarshalSessionInfo.
func UnmarshalSessionInfo(data []byte) (*SessionInfo, error) {
	info := &SessionInfo{}
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		data = data[n:]
		switch num {
		case fieldSessionInfoCounter:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			info.Counter = uint32(v)
			data = data[n:]
		case fieldSessionInfoPublicKey:
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			info.PublicKey = append([]byte{}, v...)
			data = data[n:]
		case fieldSessionInfoEpoch:
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			info.Epoch = append([]byte{}, v...)
			data = data[n:]
		case fieldSessionInfoClockTime:
			v, n := protowire.ConsumeFixed32(data)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			info.ClockTime = v
			data = data[n:]
		case fieldSessionInfoStatus:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			info.Status = Session_Info_Status(v)
			data = data[n:]
		default:
			n = skipField(data, typ)
			if n < 0 {
				return nil, errors.New("signatures: malformed SessionInfo")
			}
			data = data[n:]
		}
	}
	return info, nil
}

func skipField(data []byte, typ protowire.Type) int {
	n := protowire.ConsumeFieldValue(0, typ, data)
	return n
}

func getBytes[T any](x *T, get func(*T) []byte) []byte {
	if x == nil {
		return nil
	}
	return get(x)
}
