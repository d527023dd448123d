// Package universalmessage implements the RoutableMessage envelope that
// wraps every frame exchanged with a vehicle, regardless of destination
// domain. It encodes and decodes directly against the protobuf wire format
// using google.golang.org/protobuf/encoding/protowire rather than generated
// code, since no .proto source is available to run through protoc; see
// DESIGN.md for the rationale.
package universalmessage

import (
	"errors"
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/go-ble-vehicle/teslable/internal/wire/signatures"
)

// Domain identifies the vehicle subsystem that terminates a request.
type Domain int32

const (
	Domain_DOMAIN_BROADCAST         Domain = 0
	Domain_DOMAIN_VEHICLE_SECURITY  Domain = 2
	Domain_DOMAIN_INFOTAINMENT      Domain = 3
)

var domainNames = map[Domain]string{
	Domain_DOMAIN_BROADCAST:        "DOMAIN_BROADCAST",
	Domain_DOMAIN_VEHICLE_SECURITY: "DOMAIN_VEHICLE_SECURITY",
	Domain_DOMAIN_INFOTAINMENT:     "DOMAIN_INFOTAINMENT",
}

func (d Domain) String() string {
	if s, ok := domainNames[d]; ok {
		return s
	}
	return fmt.Sprintf("DOMAIN_%d", int32(d))
}

// MessageFault_E enumerates the error codes a vehicle can report in a
// RoutableMessage's signed_message_status.
type MessageFault_E int32

const (
	MessageFault_E_MESSAGEFAULT_ERROR_NONE                      MessageFault_E = 0
	MessageFault_E_MESSAGEFAULT_ERROR_BUSY                       MessageFault_E = 1
	MessageFault_E_MESSAGEFAULT_ERROR_TIMEOUT                    MessageFault_E = 2
	MessageFault_E_MESSAGEFAULT_ERROR_UNKNOWN_KEY_ID             MessageFault_E = 3
	MessageFault_E_MESSAGEFAULT_ERROR_INACTIVE_KEY                MessageFault_E = 4
	MessageFault_E_MESSAGEFAULT_ERROR_INVALID_SIGNATURE          MessageFault_E = 5
	MessageFault_E_MESSAGEFAULT_ERROR_INVALID_TOKEN_OR_COUNTER   MessageFault_E = 6
	MessageFault_E_MESSAGEFAULT_ERROR_INSUFFICIENT_PRIVILEGES    MessageFault_E = 7
	MessageFault_E_MESSAGEFAULT_ERROR_INVALID_DOMAINS            MessageFault_E = 8
	MessageFault_E_MESSAGEFAULT_ERROR_INVALID_COMMAND            MessageFault_E = 9
	MessageFault_E_MESSAGEFAULT_ERROR_DECODING                   MessageFault_E = 10
	MessageFault_E_MESSAGEFAULT_ERROR_INTERNAL                   MessageFault_E = 11
	MessageFault_E_MESSAGEFAULT_ERROR_WRONG_PERSONALIZATION      MessageFault_E = 12
	MessageFault_E_MESSAGEFAULT_ERROR_BAD_PARAMETER              MessageFault_E = 13
	MessageFault_E_MESSAGEFAULT_ERROR_KEYCHAIN_IS_FULL           MessageFault_E = 14
	MessageFault_E_MESSAGEFAULT_ERROR_INCORRECT_EPOCH            MessageFault_E = 15
	MessageFault_E_MESSAGEFAULT_ERROR_TIME_EXPIRED               MessageFault_E = 16
	MessageFault_E_MESSAGEFAULT_ERROR_TIME_TO_LIVE_TOO_LONG      MessageFault_E = 17
)

var MessageFault_E_name = map[int32]string{
	0:  "MESSAGEFAULT_ERROR_NONE",
	1:  "MESSAGEFAULT_ERROR_BUSY",
	2:  "MESSAGEFAULT_ERROR_TIMEOUT",
	3:  "MESSAGEFAULT_ERROR_UNKNOWN_KEY_ID",
	4:  "MESSAGEFAULT_ERROR_INACTIVE_KEY",
	5:  "MESSAGEFAULT_ERROR_INVALID_SIGNATURE",
	6:  "MESSAGEFAULT_ERROR_INVALID_TOKEN_OR_COUNTER",
	7:  "MESSAGEFAULT_ERROR_INSUFFICIENT_PRIVILEGES",
	8:  "MESSAGEFAULT_ERROR_INVALID_DOMAINS",
	9:  "MESSAGEFAULT_ERROR_INVALID_COMMAND",
	10: "MESSAGEFAULT_ERROR_DECODING",
	11: "MESSAGEFAULT_ERROR_INTERNAL",
	12: "MESSAGEFAULT_ERROR_WRONG_PERSONALIZATION",
	13: "MESSAGEFAULT_ERROR_BAD_PARAMETER",
	14: "MESSAGEFAULT_ERROR_KEYCHAIN_IS_FULL",
	15: "MESSAGEFAULT_ERROR_INCORRECT_EPOCH",
	16: "MESSAGEFAULT_ERROR_TIME_EXPIRED",
	17: "MESSAGEFAULT_ERROR_TIME_TO_LIVE_TOO_LONG",
}

func (f MessageFault_E) String() string {
	if s, ok := MessageFault_E_name[int32(f)]; ok {
		return s
	}
	return fmt.Sprintf("MESSAGEFAULT_ERROR_%d", int32(f))
}

// OperationStatus_E reports whether a vehicle executed a command.
type OperationStatus_E int32

const (
	OperationStatus_E_OPERATIONSTATUS_OK    OperationStatus_E = 0
	OperationStatus_E_OPERATIONSTATUS_WAIT  OperationStatus_E = 1
	OperationStatus_E_OPERATIONSTATUS_ERROR OperationStatus_E = 2
)

// Destination selects either a well-known Domain or an opaque routing
// address (the 16 random bytes a client generates for itself).
type Destination struct {
	Domain         *Domain
	RoutingAddress []byte
}

func (d *Destination) GetDomain() Domain {
	if d == nil || d.Domain == nil {
		return Domain_DOMAIN_BROADCAST
	}
	return *d.Domain
}

func (d *Destination) GetRoutingAddress() []byte {
	if d == nil {
		return nil
	}
	return d.RoutingAddress
}

func DestinationFromDomain(domain Domain) *Destination {
	d := domain
	return &Destination{Domain: &d}
}

func DestinationFromRoutingAddress(addr []byte) *Destination {
	return &Destination{RoutingAddress: addr}
}

func (d *Destination) marshal() []byte {
	if d == nil {
		return nil
	}
	var b []byte
	if d.Domain != nil {
		b = protowire.AppendTag(b, 1, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(*d.Domain))
	} else if d.RoutingAddress != nil {
		b = protowire.AppendTag(b, 2, protowire.BytesType)
		b = protowire.AppendBytes(b, d.RoutingAddress)
	}
	return b
}

func unmarshalDestination(data []byte) (*Destination, error) {
	d := &Destination{}
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		data = data[n:]
		switch num {
		case 1:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			domain := Domain(v)
			d.Domain = &domain
			data = data[n:]
		case 2:
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			d.RoutingAddress = append([]byte{}, v...)
			data = data[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			data = data[n:]
		}
	}
	return d, nil
}

// SessionInfoRequest asks a domain to hand back its current SessionInfo.
type SessionInfoRequest struct {
	PublicKey []byte
}

func (s *SessionInfoRequest) GetPublicKey() []byte {
	if s == nil {
		return nil
	}
	return s.PublicKey
}

func (s *SessionInfoRequest) marshal() []byte {
	if s == nil {
		return nil
	}
	var b []byte
	if len(s.PublicKey) > 0 {
		b = protowire.AppendTag(b, 1, protowire.BytesType)
		b = protowire.AppendBytes(b, s.PublicKey)
	}
	return b
}

func unmarshalSessionInfoRequest(data []byte) (*SessionInfoRequest, error) {
	s := &SessionInfoRequest{}
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		data = data[n:]
		switch num {
		case 1:
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			s.PublicKey = append([]byte{}, v...)
			data = data[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			data = data[n:]
		}
	}
	return s, nil
}

// MessageStatus reports a vehicle's disposition of a signed command.
type MessageStatus struct {
	SignedMessageFault MessageFault_E
	OperationStatus    OperationStatus_E
}

func (m *MessageStatus) GetSignedMessageFault() MessageFault_E {
	if m == nil {
		return MessageFault_E_MESSAGEFAULT_ERROR_NONE
	}
	return m.SignedMessageFault
}

func (m *MessageStatus) GetOperationStatus() OperationStatus_E {
	if m == nil {
		return OperationStatus_E_OPERATIONSTATUS_OK
	}
	return m.OperationStatus
}

func (m *MessageStatus) marshal() []byte {
	if m == nil {
		return nil
	}
	var b []byte
	if m.SignedMessageFault != MessageFault_E_MESSAGEFAULT_ERROR_NONE {
		b = protowire.AppendTag(b, 1, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(m.SignedMessageFault))
	}
	if m.OperationStatus != OperationStatus_E_OPERATIONSTATUS_OK {
		b = protowire.AppendTag(b, 2, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(m.OperationStatus))
	}
	return b
}

func unmarshalMessageStatus(data []byte) (*MessageStatus, error) {
	m := &MessageStatus{}
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		data = data[n:]
		switch num {
		case 1:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			m.SignedMessageFault = MessageFault_E(v)
			data = data[n:]
		case 2:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			m.OperationStatus = OperationStatus_E(v)
			data = data[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			data = data[n:]
		}
	}
	return m, nil
}

// RoutableMessage is the top-level envelope exchanged with a vehicle over
// BLE (and, in the wider vendor protocol, over the internet). Exactly one of
// ProtobufMessageAsBytes, SessionInfo, or SessionInfoRequest is set.
type RoutableMessage struct {
	ToDestination       *Destination
	FromDestination     *Destination
	ProtobufMessageAsBytes []byte
	SessionInfo         []byte
	SessionInfoRequest  *SessionInfoRequest
	SignatureData       *signatures.SignatureData
	SignedMessageStatus *MessageStatus
	Uuid                []byte
	Flags               uint32
}

func (m *RoutableMessage) GetToDestination() *Destination     { if m == nil { return nil }; return m.ToDestination }
func (m *RoutableMessage) GetFromDestination() *Destination   { if m == nil { return nil }; return m.FromDestination }
func (m *RoutableMessage) GetProtobufMessageAsBytes() []byte  { if m == nil { return nil }; return m.ProtobufMessageAsBytes }
func (m *RoutableMessage) GetSessionInfo() []byte             { if m == nil { return nil }; return m.SessionInfo }
func (m *RoutableMessage) GetSessionInfoRequest() *SessionInfoRequest {
	if m == nil {
		return nil
	}
	return m.SessionInfoRequest
}
func (m *RoutableMessage) GetSignatureData() *signatures.SignatureData {
	if m == nil {
		return nil
	}
	return m.SignatureData
}
func (m *RoutableMessage) GetSignedMessageStatus() *MessageStatus {
	if m == nil {
		return nil
	}
	return m.SignedMessageStatus
}
func (m *RoutableMessage) GetUuid() []byte  { if m == nil { return nil }; return m.Uuid }
func (m *RoutableMessage) GetFlags() uint32 { if m == nil { return 0 }; return m.Flags }

const (
	fieldToDestination       = 1
	fieldFromDestination     = 2
	fieldProtobufMessage     = 3
	fieldSessionInfo         = 4
	fieldSessionInfoRequest  = 5
	fieldSignatureData       = 6
	fieldSignedMessageStatus = 7
	fieldUuid                = 8
	fieldFlags               = 9
)

// Marshal encodes m using the protobuf wire format.
func (m *RoutableMessage) Marshal() ([]byte, error) {
	var b []byte
	if m.ToDestination != nil {
		b = protowire.AppendTag(b, fieldToDestination, protowire.BytesType)
		b = protowire.AppendBytes(b, m.ToDestination.marshal())
	}
	if m.FromDestination != nil {
		b = protowire.AppendTag(b, fieldFromDestination, protowire.BytesType)
		b = protowire.AppendBytes(b, m.FromDestination.marshal())
	}
	switch {
	case m.ProtobufMessageAsBytes != nil:
		b = protowire.AppendTag(b, fieldProtobufMessage, protowire.BytesType)
		b = protowire.AppendBytes(b, m.ProtobufMessageAsBytes)
	case m.SessionInfo != nil:
		b = protowire.AppendTag(b, fieldSessionInfo, protowire.BytesType)
		b = protowire.AppendBytes(b, m.SessionInfo)
	case m.SessionInfoRequest != nil:
		b = protowire.AppendTag(b, fieldSessionInfoRequest, protowire.BytesType)
		b = protowire.AppendBytes(b, m.SessionInfoRequest.marshal())
	}
	if m.SignatureData != nil {
		encoded, err := signatures.Marshal(m.SignatureData)
		if err != nil {
			return nil, err
		}
		b = protowire.AppendTag(b, fieldSignatureData, protowire.BytesType)
		b = protowire.AppendBytes(b, encoded)
	}
	if m.SignedMessageStatus != nil {
		b = protowire.AppendTag(b, fieldSignedMessageStatus, protowire.BytesType)
		b = protowire.AppendBytes(b, m.SignedMessageStatus.marshal())
	}
	if len(m.Uuid) > 0 {
		b = protowire.AppendTag(b, fieldUuid, protowire.BytesType)
		b = protowire.AppendBytes(b, m.Uuid)
	}
	if m.Flags != 0 {
		b = protowire.AppendTag(b, fieldFlags, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(m.Flags))
	}
	return b, nil
}

// Unmarshal decodes a RoutableMessage previously produced by Marshal.
func Unmarshal(data []byte) (*RoutableMessage, error) {
	m := &RoutableMessage{}
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		data = data[n:]
		switch num {
		case fieldToDestination:
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			dest, err := unmarshalDestination(v)
			if err != nil {
				return nil, err
			}
			m.ToDestination = dest
			data = data[n:]
		case fieldFromDestination:
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			dest, err := unmarshalDestination(v)
			if err != nil {
				return nil, err
			}
			m.FromDestination = dest
			data = data[n:]
		case fieldProtobufMessage:
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			m.ProtobufMessageAsBytes = append([]byte{}, v...)
			data = data[n:]
		case fieldSessionInfo:
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			m.SessionInfo = append([]byte{}, v...)
			data = data[n:]
		case fieldSessionInfoRequest:
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			req, err := unmarshalSessionInfoRequest(v)
			if err != nil {
				return nil, err
			}
			m.SessionInfoRequest = req
			data = data[n:]
		case fieldSignatureData:
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			sig, err := signatures.Unmarshal(v)
			if err != nil {
				return nil, fmt.Errorf("universalmessage: invalid signature data: %w", err)
			}
			m.SignatureData = sig
			data = data[n:]
		case fieldSignedMessageStatus:
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			status, err := unmarshalMessageStatus(v)
			if err != nil {
				return nil, err
			}
			m.SignedMessageStatus = status
			data = data[n:]
		case fieldUuid:
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			m.Uuid = append([]byte{}, v...)
			data = data[n:]
		case fieldFlags:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			m.Flags = uint32(v)
			data = data[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			data = data[n:]
		}
	}
	return m, nil
}

var errTruncated = errors.New("universalmessage: truncated message")
