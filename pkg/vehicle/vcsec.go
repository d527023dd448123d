package vehicle

// This file implements the single Vehicle Security Controller (VCSEC)
// operation this core supports: requesting enrollment of a new public key.
// Approval happens physically on the vehicle (an NFC tap); the request
// itself carries no cryptographic signature, matching the vendor's
// PRESENT_KEY envelope, because the client has no paired key yet to sign
// with.

import (
	"context"

	"github.com/go-ble-vehicle/teslable/internal/wire/vcsec"
	universal "github.com/go-ble-vehicle/teslable/internal/wire/universalmessage"
	"github.com/go-ble-vehicle/teslable/pkg/protocol"
)

// KeyRole mirrors the vendor's privilege levels for an enrolled key.
type KeyRole = vcsec.Role

const (
	KeyRoleOwner  = vcsec.Role_ROLE_OWNER
	KeyRoleDriver = vcsec.Role_ROLE_DRIVER
)

// KeyFormFactor describes the physical form of the key being enrolled.
type KeyFormFactor = vcsec.KeyFormFactor_E

const (
	KeyFormFactorAndroid KeyFormFactor = vcsec.KeyFormFactor_E_KEY_FORM_FACTOR_ANDROID_DEVICE
	KeyFormFactorIOS     KeyFormFactor = vcsec.KeyFormFactor_E_KEY_FORM_FACTOR_IOS_DEVICE
	KeyFormFactorNFCCard KeyFormFactor = vcsec.KeyFormFactor_E_KEY_FORM_FACTOR_NFC_CARD
	KeyFormFactorCloud   KeyFormFactor = vcsec.KeyFormFactor_E_KEY_FORM_FACTOR_CLOUD_KEY
)

// SendAddKeyRequest requests that the vehicle enroll pubRaw (a 65-byte
// uncompressed P-256 point) with the given role and form factor. Unlike
// GetState, this does not require (or use) an established session: VCSEC
// accepts the unsigned envelope only while it is separately waiting for a
// physical NFC-tap approval on the vehicle. The call returns once the
// transport has written the request; the actual approval is out-of-band.
func (v *Vehicle) SendAddKeyRequest(ctx context.Context, pubRaw []byte, role KeyRole, formFactor KeyFormFactor) error {
	if len(pubRaw) != 65 || pubRaw[0] != 0x04 {
		return protocol.NewConfigError("public key must be a 65-byte uncompressed P-256 point")
	}

	request := vcsec.AddKeyRequest(pubRaw, role, formFactor)
	plaintext, err := request.Marshal()
	if err != nil {
		return protocol.NewProtocolError("encoding add-key request: %s", err)
	}

	message := &universal.RoutableMessage{
		ToDestination:          universal.DestinationFromDomain(protocol.DomainVCSEC),
		ProtobufMessageAsBytes: plaintext,
	}

	response, _, err := v.mux.SendAndAwait(ctx, message, nil)
	if err != nil {
		return err
	}
	if err := protocol.GetError(response); err != nil {
		return err
	}

	fromVCSEC, err := vcsec.Unmarshal(response.GetProtobufMessageAsBytes())
	if err != nil {
		return protocol.NewProtocolError("decoding VCSEC response: %s", err)
	}
	if status := fromVCSEC.GetCommandStatus(); status != nil {
		if status.GetOperationStatus() == vcsec.OperationStatus_E_OPERATIONSTATUS_ERROR {
			if code := status.GetWhitelistOperationStatus().GetWhitelistOperationInformation(); code != vcsec.WhitelistOperationInformation_E_WHITELISTOPERATION_INFORMATION_NONE {
				return &protocol.KeychainError{Code: code}
			}
			return protocol.ErrUnknown
		}
	}
	return nil
}
