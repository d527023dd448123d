// Package vcsec implements the small slice of the Vehicle Security
// Controller message schema this client needs: enrolling a new public key
// on a vehicle that is waiting for an NFC-tap approval. Like package
// universalmessage, it hand-encodes the protobuf wire format because no
// .proto source survived retrieval for this schema; see DESIGN.md.
package vcsec

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// Role mirrors the vendor's keys.Role enum for a paired key's privileges.
type Role int32

const (
	Role_ROLE_NONE   Role = 0
	Role_ROLE_OWNER  Role = 1
	Role_ROLE_DRIVER Role = 2
)

// KeyFormFactor_E describes the physical form of an enrolled key.
type KeyFormFactor_E int32

const (
	KeyFormFactor_E_KEY_FORM_FACTOR_UNKNOWN       KeyFormFactor_E = 0
	KeyFormFactor_E_KEY_FORM_FACTOR_ANDROID_DEVICE KeyFormFactor_E = 1
	KeyFormFactor_E_KEY_FORM_FACTOR_IOS_DEVICE    KeyFormFactor_E = 2
	KeyFormFactor_E_KEY_FORM_FACTOR_NFC_CARD      KeyFormFactor_E = 3
	KeyFormFactor_E_KEY_FORM_FACTOR_CLOUD_KEY     KeyFormFactor_E = 4
)

// OperationStatus_E reports whether VCSEC executed a command.
type OperationStatus_E int32

const (
	OperationStatus_E_OPERATIONSTATUS_OK    OperationStatus_E = 0
	OperationStatus_E_OPERATIONSTATUS_WAIT  OperationStatus_E = 1
	OperationStatus_E_OPERATIONSTATUS_ERROR OperationStatus_E = 2
)

// WhitelistOperationInformation_E explains why a keychain change failed.
type WhitelistOperationInformation_E int32

const (
	WhitelistOperationInformation_E_WHITELISTOPERATION_INFORMATION_NONE           WhitelistOperationInformation_E = 0
	WhitelistOperationInformation_E_WHITELISTOPERATION_INFORMATION_TOO_MANY_KEYS  WhitelistOperationInformation_E = 1
	WhitelistOperationInformation_E_WHITELISTOPERATION_INFORMATION_INVALID_PUBKEY WhitelistOperationInformation_E = 2
)

func (c WhitelistOperationInformation_E) String() string {
	switch c {
	case WhitelistOperationInformation_E_WHITELISTOPERATION_INFORMATION_TOO_MANY_KEYS:
		return "WHITELISTOPERATION_INFORMATION_TOO_MANY_KEYS"
	case WhitelistOperationInformation_E_WHITELISTOPERATION_INFORMATION_INVALID_PUBKEY:
		return "WHITELISTOPERATION_INFORMATION_INVALID_PUBKEY"
	default:
		return fmt.Sprintf("WHITELISTOPERATION_INFORMATION_%d", int32(c))
	}
}

// PublicKey wraps a raw, uncompressed P-256 public key point.
type PublicKey struct {
	PublicKeyRaw []byte
}

func (p *PublicKey) marshal() []byte {
	if p == nil || len(p.PublicKeyRaw) == 0 {
		return nil
	}
	var b []byte
	b = protowire.AppendTag(b, 1, protowire.BytesType)
	b = protowire.AppendBytes(b, p.PublicKeyRaw)
	return b
}

// KeyMetadata carries non-cryptographic information about an enrolled key.
type KeyMetadata struct {
	KeyFormFactor KeyFormFactor_E
}

func (k *KeyMetadata) marshal() []byte {
	if k == nil {
		return nil
	}
	var b []byte
	b = protowire.AppendTag(b, 1, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(k.KeyFormFactor))
	return b
}

// PermissionChange requests that a public key be whitelisted with a role.
type PermissionChange struct {
	Key     *PublicKey
	KeyRole Role
}

func (p *PermissionChange) marshal() []byte {
	var b []byte
	if p.Key != nil {
		b = protowire.AppendTag(b, 1, protowire.BytesType)
		b = protowire.AppendBytes(b, p.Key.marshal())
	}
	b = protowire.AppendTag(b, 2, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(p.KeyRole))
	return b
}

// WhitelistOperation is the VCSEC keychain-management envelope. Only the
// add-key variant is represented; the vendor schema also supports removal
// and permission-only changes, which this client does not need.
type WhitelistOperation struct {
	AddKeyToWhitelistAndAddPermissions *PermissionChange
	MetadataForKey                     *KeyMetadata
}

func (w *WhitelistOperation) marshal() []byte {
	var b []byte
	if w.AddKeyToWhitelistAndAddPermissions != nil {
		b = protowire.AppendTag(b, 1, protowire.BytesType)
		b = protowire.AppendBytes(b, w.AddKeyToWhitelistAndAddPermissions.marshal())
	}
	if w.MetadataForKey != nil {
		b = protowire.AppendTag(b, 2, protowire.BytesType)
		b = protowire.AppendBytes(b, w.MetadataForKey.marshal())
	}
	return b
}

// UnsignedMessage is a VCSEC request sent without an authenticated session,
// which is only accepted for the add-key flow while the vehicle is waiting
// for a physical NFC tap.
type UnsignedMessage struct {
	WhitelistOperation *WhitelistOperation
}

const fieldWhitelistOperation = 5

// Marshal encodes m using the protobuf wire format.
func (m *UnsignedMessage) Marshal() ([]byte, error) {
	var b []byte
	if m.WhitelistOperation != nil {
		b = protowire.AppendTag(b, fieldWhitelistOperation, protowire.BytesType)
		b = protowire.AppendBytes(b, m.WhitelistOperation.marshal())
	}
	return b, nil
}

// AddKeyRequest builds the UnsignedMessage that enrolls publicKey with the
// given role and form factor.
func AddKeyRequest(publicKey []byte, role Role, formFactor KeyFormFactor_E) *UnsignedMessage {
	return &UnsignedMessage{
		WhitelistOperation: &WhitelistOperation{
			AddKeyToWhitelistAndAddPermissions: &PermissionChange{
				Key:     &PublicKey{PublicKeyRaw: publicKey},
				KeyRole: role,
			},
			MetadataForKey: &KeyMetadata{KeyFormFactor: formFactor},
		},
	}
}

// WhitelistOperationStatus reports the outcome of a keychain change.
type WhitelistOperationStatus struct {
	WhitelistOperationInformation WhitelistOperationInformation_E
}

func (w *WhitelistOperationStatus) GetWhitelistOperationInformation() WhitelistOperationInformation_E {
	if w == nil {
		return WhitelistOperationInformation_E_WHITELISTOPERATION_INFORMATION_NONE
	}
	return w.WhitelistOperationInformation
}

func unmarshalWhitelistOperationStatus(data []byte) (*WhitelistOperationStatus, error) {
	w := &WhitelistOperationStatus{}
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
			w.WhitelistOperationInformation = WhitelistOperationInformation_E(v)
			data = data[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			data = data[n:]
		}
	}
	return w, nil
}

// CommandStatus reports VCSEC's disposition of a request.
type CommandStatus struct {
	OperationStatus          OperationStatus_E
	WhitelistOperationStatus *WhitelistOperationStatus
}

func (c *CommandStatus) GetOperationStatus() OperationStatus_E {
	if c == nil {
		return OperationStatus_E_OPERATIONSTATUS_OK
	}
	return c.OperationStatus
}

func (c *CommandStatus) GetWhitelistOperationStatus() *WhitelistOperationStatus {
	if c == nil {
		return nil
	}
	return c.WhitelistOperationStatus
}

func unmarshalCommandStatus(data []byte) (*CommandStatus, error) {
	c := &CommandStatus{}
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
			c.OperationStatus = OperationStatus_E(v)
			data = data[n:]
		case 2:
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			status, err := unmarshalWhitelistOperationStatus(v)
			if err != nil {
				return nil, err
			}
			c.WhitelistOperationStatus = status
			data = data[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			data = data[n:]
		}
	}
	return c, nil
}

// FromVCSECMessage is VCSEC's reply envelope.
type FromVCSECMessage struct {
	CommandStatus *CommandStatus
}

func (f *FromVCSECMessage) GetCommandStatus() *CommandStatus {
	if f == nil {
		return nil
	}
	return f.CommandStatus
}

const fieldCommandStatus = 3

// Unmarshal decodes a FromVCSECMessage.
func Unmarshal(data []byte) (*FromVCSECMessage, error) {
	f := &FromVCSECMessage{}
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		data = data[n:]
		switch num {
		case fieldCommandStatus:
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			status, err := unmarshalCommandStatus(v)
			if err != nil {
				return nil, err
			}
			f.CommandStatus = status
			data = data[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			data = data[n:]
		}
	}
	return f, nil
}
