package vehicle

import (
	"context"

	"github.com/go-ble-vehicle/teslable/internal/authentication"
	"github.com/go-ble-vehicle/teslable/internal/wire/carserver"
	"github.com/go-ble-vehicle/teslable/pkg/protocol"
)

// StateCategory selects one of the twelve vehicle-data request
// sub-messages GetState can fetch, mirroring carserver.Category.
type StateCategory = carserver.Category

const (
	StateCategoryCharge                  = carserver.CategoryCharge
	StateCategoryClimate                 = carserver.CategoryClimate
	StateCategoryDrive                   = carserver.CategoryDrive
	StateCategoryLocation                = carserver.CategoryLocation
	StateCategoryClosures                = carserver.CategoryClosures
	StateCategoryChargeSchedule          = carserver.CategoryChargeSchedule
	StateCategoryPreconditioningSchedule = carserver.CategoryPreconditioningSchedule
	StateCategoryTirePressure            = carserver.CategoryTirePressure
	StateCategoryMedia                   = carserver.CategoryMedia
	StateCategoryMediaDetail             = carserver.CategoryMediaDetail
	StateCategorySoftwareUpdate          = carserver.CategorySoftwareUpdate
	StateCategoryParentalControls        = carserver.CategoryParentalControls
)

// VehicleStateResult is the decoded outcome of a GetState call: the
// category that was requested, the raw (decrypted) response bytes for
// callers that want to re-decode them, and the structured decode produced
// by the codec.
type VehicleStateResult struct {
	Category        StateCategory
	Raw             []byte
	DecodedResponse *carserver.Response
	VehicleData     *carserver.VehicleData
}

// GetState fetches one vehicle-data category over an authenticated,
// encrypted session, handshaking first if one isn't already established.
// A vehicle-reported error (action_status.result == 1) is surfaced as
// protocol.VehicleReportedError carrying the vehicle's reason text embedded
// in its message.
func (v *Vehicle) GetState(ctx context.Context, category StateCategory, priv authentication.ECDHPrivateKey) (*VehicleStateResult, error) {
	if err := v.EnsureSession(ctx, priv); err != nil {
		return nil, err
	}

	selector := carserver.ForCategory(category)
	if selector == nil {
		return nil, protocol.NewConfigError("unknown vehicle data category %d", category)
	}
	action := &carserver.Action{VehicleAction: &carserver.VehicleAction{GetVehicleData: selector}}
	plaintext, err := action.Marshal()
	if err != nil {
		return nil, protocol.NewProtocolError("encoding GetVehicleData: %s", err)
	}

	raw, err := v.sendEncryptedCommand(ctx, plaintext)
	if err != nil {
		return nil, err
	}

	response, err := carserver.Unmarshal(raw)
	if err != nil {
		return nil, protocol.NewProtocolError("decoding CarServer response: %s", err)
	}
	if status := response.GetActionStatus(); status.GetResult() == carserver.OperationStatus_E_OPERATIONSTATUS_ERROR {
		return nil, protocol.NewVehicleActionError(status.GetResultReason().GetPlainText())
	}

	return &VehicleStateResult{
		Category:        category,
		Raw:             raw,
		DecodedResponse: response,
		VehicleData:     response.GetVehicleData(),
	}, nil
}
