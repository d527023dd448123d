// Package carserver implements the slice of the infotainment CarServer
// schema needed to request and decode vehicle-data snapshots. As with
// packages universalmessage and vcsec, the wire format is hand-encoded with
// protowire because no .proto source for this schema survived retrieval;
// see DESIGN.md.
package carserver

import (
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

// OperationStatus_E reports whether infotainment executed a command.
type OperationStatus_E int32

const (
	OperationStatus_E_OPERATIONSTATUS_OK    OperationStatus_E = 0
	OperationStatus_E_OPERATIONSTATUS_WAIT  OperationStatus_E = 1
	OperationStatus_E_OPERATIONSTATUS_ERROR OperationStatus_E = 2
)

// Category selects one of the twelve vehicle-data request sub-messages.
type Category int32

const (
	CategoryCharge                  Category = 0
	CategoryClimate                 Category = 1
	CategoryDrive                   Category = 2
	CategoryLocation                Category = 3
	CategoryClosures                Category = 4
	CategoryChargeSchedule          Category = 5
	CategoryPreconditioningSchedule Category = 6
	CategoryTirePressure            Category = 7
	CategoryMedia                   Category = 8
	CategoryMediaDetail             Category = 9
	CategorySoftwareUpdate          Category = 10
	CategoryParentalControls        Category = 11
)

// GetChargeState and its siblings are presence-only selector messages: the
// vendor schema represents "fetch category X" as an empty sub-message
// nested in the appropriate oneof field of GetVehicleData.
type (
	GetChargeState                  struct{}
	GetClimateState                 struct{}
	GetDriveState                   struct{}
	GetLocationState                struct{}
	GetClosuresState                struct{}
	GetChargeScheduleState          struct{}
	GetPreconditioningScheduleState struct{}
	GetTirePressureState            struct{}
	GetMediaState                   struct{}
	GetMediaDetailState             struct{}
	GetSoftwareUpdateState          struct{}
	GetParentalControlsState        struct{}
)

// GetVehicleData selects exactly one state category to fetch.
type GetVehicleData struct {
	GetChargeState                  *GetChargeState
	GetClimateState                 *GetClimateState
	GetDriveState                   *GetDriveState
	GetLocationState                *GetLocationState
	GetClosuresState                *GetClosuresState
	GetChargeScheduleState          *GetChargeScheduleState
	GetPreconditioningScheduleState *GetPreconditioningScheduleState
	GetTirePressureState            *GetTirePressureState
	GetMediaState                   *GetMediaState
	GetMediaDetailState             *GetMediaDetailState
	GetSoftwareUpdateState          *GetSoftwareUpdateState
	GetParentalControlsState        *GetParentalControlsState
}

// ForCategory builds the GetVehicleData selector for category.
func ForCategory(category Category) *GetVehicleData {
	g := &GetVehicleData{}
	switch category {
	case CategoryCharge:
		g.GetChargeState = &GetChargeState{}
	case CategoryClimate:
		g.GetClimateState = &GetClimateState{}
	case CategoryDrive:
		g.GetDriveState = &GetDriveState{}
	case CategoryLocation:
		g.GetLocationState = &GetLocationState{}
	case CategoryClosures:
		g.GetClosuresState = &GetClosuresState{}
	case CategoryChargeSchedule:
		g.GetChargeScheduleState = &GetChargeScheduleState{}
	case CategoryPreconditioningSchedule:
		g.GetPreconditioningScheduleState = &GetPreconditioningScheduleState{}
	case CategoryTirePressure:
		g.GetTirePressureState = &GetTirePressureState{}
	case CategoryMedia:
		g.GetMediaState = &GetMediaState{}
	case CategoryMediaDetail:
		g.GetMediaDetailState = &GetMediaDetailState{}
	case CategorySoftwareUpdate:
		g.GetSoftwareUpdateState = &GetSoftwareUpdateState{}
	case CategoryParentalControls:
		g.GetParentalControlsState = &GetParentalControlsState{}
	default:
		return nil
	}
	return g
}

func (g *GetVehicleData) marshal() []byte {
	var b []byte
	add := func(field int, set bool) {
		if !set {
			return
		}
		b = protowire.AppendTag(b, protowire.Number(field), protowire.BytesType)
		b = protowire.AppendBytes(b, nil)
	}
	add(1, g.GetChargeState != nil)
	add(2, g.GetClimateState != nil)
	add(3, g.GetDriveState != nil)
	add(4, g.GetLocationState != nil)
	add(5, g.GetClosuresState != nil)
	add(6, g.GetChargeScheduleState != nil)
	add(7, g.GetPreconditioningScheduleState != nil)
	add(8, g.GetTirePressureState != nil)
	add(9, g.GetMediaState != nil)
	add(10, g.GetMediaDetailState != nil)
	add(11, g.GetSoftwareUpdateState != nil)
	add(12, g.GetParentalControlsState != nil)
	return b
}

// VehicleAction wraps the single action variant this client issues.
type VehicleAction struct {
	GetVehicleData *GetVehicleData
}

func (v *VehicleAction) marshal() []byte {
	var b []byte
	if v.GetVehicleData != nil {
		b = protowire.AppendTag(b, 22, protowire.BytesType)
		b = protowire.AppendBytes(b, v.GetVehicleData.marshal())
	}
	return b
}

// Action is the top-level infotainment command envelope.
type Action struct {
	VehicleAction *VehicleAction
}

// Marshal encodes a as the plaintext payload of an encrypted command.
func (a *Action) Marshal() ([]byte, error) {
	var b []byte
	if a.VehicleAction != nil {
		b = protowire.AppendTag(b, 2, protowire.BytesType)
		b = protowire.AppendBytes(b, a.VehicleAction.marshal())
	}
	return b, nil
}

// ResultReason carries the vehicle's human-readable explanation for a
// failed command.
type ResultReason struct {
	PlainText string
}

func (r *ResultReason) GetPlainText() string {
	if r == nil {
		return ""
	}
	return r.PlainText
}

func unmarshalResultReason(data []byte) (*ResultReason, error) {
	r := &ResultReason{}
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		data = data[n:]
		switch num {
		case 1:
			v, n := protowire.ConsumeString(data)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			r.PlainText = v
			data = data[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			data = data[n:]
		}
	}
	return r, nil
}

// ActionStatus reports whether a command executed successfully.
type ActionStatus struct {
	Result       OperationStatus_E
	ResultReason *ResultReason
}

func (a *ActionStatus) GetResult() OperationStatus_E {
	if a == nil {
		return OperationStatus_E_OPERATIONSTATUS_OK
	}
	return a.Result
}

func (a *ActionStatus) GetResultReason() *ResultReason {
	if a == nil {
		return nil
	}
	return a.ResultReason
}

func unmarshalActionStatus(data []byte) (*ActionStatus, error) {
	a := &ActionStatus{}
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
			a.Result = OperationStatus_E(v)
			data = data[n:]
		case 2:
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			reason, err := unmarshalResultReason(v)
			if err != nil {
				return nil, err
			}
			a.ResultReason = reason
			data = data[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			data = data[n:]
		}
	}
	return a, nil
}

// ChargeState, and its siblings below, are small representative decodings
// of each vehicle-data category: enough fields to demonstrate a typed
// result without attempting to mirror the vendor's full (much larger)
// per-category schema.
type ChargeState struct {
	BatteryLevel  int32
	ChargingState string
}

type ClimateState struct {
	InsideTempC float32
	IsClimateOn bool
}

type DriveState struct {
	Speed    int32
	ShiftState string
}

type LocationState struct {
	Latitude, Longitude float64
}

type ClosuresState struct {
	DoorsOpen bool
	TrunkOpen bool
}

type ChargeScheduleState struct {
	Enabled   bool
	StartTime int32
}

type PreconditioningScheduleState struct {
	Enabled   bool
	StartTime int32
}

type TirePressureState struct {
	FrontLeftKpa, FrontRightKpa, RearLeftKpa, RearRightKpa float32
}

type MediaState struct {
	NowPlaying string
}

type MediaDetailState struct {
	Artist, Album, Track string
}

type SoftwareUpdateState struct {
	Status          string
	VersionAvailable string
}

type ParentalControlsState struct {
	SpeedLimitEnabled bool
	SpeedLimitMph     int32
}

func unmarshalChargeState(data []byte) (*ChargeState, error) {
	s := &ChargeState{}
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
			s.BatteryLevel = int32(v)
			data = data[n:]
		case 2:
			v, n := protowire.ConsumeString(data)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			s.ChargingState = v
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

func unmarshalClimateState(data []byte) (*ClimateState, error) {
	s := &ClimateState{}
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		data = data[n:]
		switch num {
		case 1:
			v, n := protowire.ConsumeFixed32(data)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			s.InsideTempC = math.Float32frombits(v)
			data = data[n:]
		case 2:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			s.IsClimateOn = protowire.DecodeBool(v)
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

func unmarshalDriveState(data []byte) (*DriveState, error) {
	s := &DriveState{}
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
			s.Speed = int32(v)
			data = data[n:]
		case 2:
			v, n := protowire.ConsumeString(data)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			s.ShiftState = v
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

func unmarshalLocationState(data []byte) (*LocationState, error) {
	s := &LocationState{}
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		data = data[n:]
		switch num {
		case 1:
			v, n := protowire.ConsumeFixed64(data)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			s.Latitude = math.Float64frombits(v)
			data = data[n:]
		case 2:
			v, n := protowire.ConsumeFixed64(data)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			s.Longitude = math.Float64frombits(v)
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

func unmarshalClosuresState(data []byte) (*ClosuresState, error) {
	s := &ClosuresState{}
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
			s.DoorsOpen = protowire.DecodeBool(v)
			data = data[n:]
		case 2:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			s.TrunkOpen = protowire.DecodeBool(v)
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

func unmarshalChargeScheduleState(data []byte) (*ChargeScheduleState, error) {
	s := &ChargeScheduleState{}
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
			s.Enabled = protowire.DecodeBool(v)
			data = data[n:]
		case 2:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			s.StartTime = int32(v)
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

func unmarshalPreconditioningScheduleState(data []byte) (*PreconditioningScheduleState, error) {
	s := &PreconditioningScheduleState{}
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
			s.Enabled = protowire.DecodeBool(v)
			data = data[n:]
		case 2:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			s.StartTime = int32(v)
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

func unmarshalTirePressureState(data []byte) (*TirePressureState, error) {
	s := &TirePressureState{}
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		data = data[n:]
		switch num {
		case 1, 2, 3, 4:
			v, n := protowire.ConsumeFixed32(data)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			f := math.Float32frombits(v)
			switch num {
			case 1:
				s.FrontLeftKpa = f
			case 2:
				s.FrontRightKpa = f
			case 3:
				s.RearLeftKpa = f
			case 4:
				s.RearRightKpa = f
			}
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

func unmarshalMediaState(data []byte) (*MediaState, error) {
	s := &MediaState{}
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		data = data[n:]
		switch num {
		case 1:
			v, n := protowire.ConsumeString(data)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			s.NowPlaying = v
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

func unmarshalMediaDetailState(data []byte) (*MediaDetailState, error) {
	s := &MediaDetailState{}
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		data = data[n:]
		switch num {
		case 1:
			v, n := protowire.ConsumeString(data)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			s.Artist = v
			data = data[n:]
		case 2:
			v, n := protowire.ConsumeString(data)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			s.Album = v
			data = data[n:]
		case 3:
			v, n := protowire.ConsumeString(data)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			s.Track = v
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

func unmarshalSoftwareUpdateState(data []byte) (*SoftwareUpdateState, error) {
	s := &SoftwareUpdateState{}
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		data = data[n:]
		switch num {
		case 1:
			v, n := protowire.ConsumeString(data)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			s.Status = v
			data = data[n:]
		case 2:
			v, n := protowire.ConsumeString(data)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			s.VersionAvailable = v
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

func unmarshalParentalControlsState(data []byte) (*ParentalControlsState, error) {
	s := &ParentalControlsState{}
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
			s.SpeedLimitEnabled = protowire.DecodeBool(v)
			data = data[n:]
		case 2:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			s.SpeedLimitMph = int32(v)
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

// VehicleData is the decoded result of a GetVehicleData request. Exactly
// one field is populated, matching the category that was requested.
type VehicleData struct {
	ChargeState                  *ChargeState
	ClimateState                 *ClimateState
	DriveState                   *DriveState
	LocationState                *LocationState
	ClosuresState                *ClosuresState
	ChargeScheduleState          *ChargeScheduleState
	PreconditioningScheduleState *PreconditioningScheduleState
	TirePressureState            *TirePressureState
	MediaState                   *MediaState
	MediaDetailState             *MediaDetailState
	SoftwareUpdateState          *SoftwareUpdateState
	ParentalControlsState        *ParentalControlsState
}

// Response is CarServer's reply to an Action.
type Response struct {
	ActionStatus *ActionStatus
	VehicleData  *VehicleData
}

func (r *Response) GetActionStatus() *ActionStatus {
	if r == nil {
		return nil
	}
	return r.ActionStatus
}

func (r *Response) GetVehicleData() *VehicleData {
	if r == nil {
		return nil
	}
	return r.VehicleData
}

const (
	fieldActionStatus = 1
	fieldVehicleData  = 23
)

// DecodeVehicleData decodes the body of a category response (the bytes
// nested inside the response's VehicleData field) into a VehicleData with
// exactly the field matching the requested category populated.
func DecodeVehicleData(data []byte) (*VehicleData, error) {
	vd := &VehicleData{}
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		data = data[n:]
		if typ != protowire.BytesType {
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			data = data[n:]
			continue
		}
		v, n := protowire.ConsumeBytes(data)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		data = data[n:]

		var err error
		switch num {
		case 1:
			vd.ChargeState, err = unmarshalChargeState(v)
		case 2:
			vd.ClimateState, err = unmarshalClimateState(v)
		case 3:
			vd.DriveState, err = unmarshalDriveState(v)
		case 4:
			vd.LocationState, err = unmarshalLocationState(v)
		case 5:
			vd.ClosuresState, err = unmarshalClosuresState(v)
		case 6:
			vd.ChargeScheduleState, err = unmarshalChargeScheduleState(v)
		case 7:
			vd.PreconditioningScheduleState, err = unmarshalPreconditioningScheduleState(v)
		case 8:
			vd.TirePressureState, err = unmarshalTirePressureState(v)
		case 9:
			vd.MediaState, err = unmarshalMediaState(v)
		case 10:
			vd.MediaDetailState, err = unmarshalMediaDetailState(v)
		case 11:
			vd.SoftwareUpdateState, err = unmarshalSoftwareUpdateState(v)
		case 12:
			vd.ParentalControlsState, err = unmarshalParentalControlsState(v)
		}
		if err != nil {
			return nil, err
		}
	}
	return vd, nil
}

// Unmarshal decodes a Response previously produced by a vehicle.
func Unmarshal(data []byte) (*Response, error) {
	r := &Response{}
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		data = data[n:]
		switch num {
		case fieldActionStatus:
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			status, err := unmarshalActionStatus(v)
			if err != nil {
				return nil, err
			}
			r.ActionStatus = status
			data = data[n:]
		case fieldVehicleData:
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			vd, err := DecodeVehicleData(v)
			if err != nil {
				return nil, err
			}
			r.VehicleData = vd
			data = data[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			data = data[n:]
		}
	}
	return r, nil
}
