package protocol

import (
	"errors"
	"fmt"

	"github.com/go-ble-vehicle/teslable/internal/authentication"
	"github.com/go-ble-vehicle/teslable/internal/wire/signatures"
	universal "github.com/go-ble-vehicle/teslable/internal/wire/universalmessage"
	"github.com/go-ble-vehicle/teslable/internal/wire/vcsec"
)

// Error exposes methods useful for categorizing errors.
type Error interface {
	error

	// MayHaveSucceeded returns true if the Error was triggered a command that might have been executed.
	// For example, if a client times out while waiting for a response, then the client cannot tell
	// if the command was received. (Not all timeouts mean the command MayHaveSucceeded, so the
	// common Timeout() error interface is not appropriate here).
	MayHaveSucceeded() bool

	// Temporary returns true if the Error might be the result of a transient condition. For
	// example, it's not unusual for the car to return Busy errors if it's in the process of waking
	// from sleep and the services responsible for executing the command are not yet running.
	Temporary() bool
}

var (
	// ErrBusy indicates a resource is temporarily unavailable.
	ErrBusy = NewError("vehicle busy or finishing wake-up", false, true)
	// ErrUnknown indicates the client received an unrecognized error code. Check for package
	// updates.
	ErrUnknown = NewError("vehicle responded with an unrecognized status code", false, false)
	// ErrNotConnected indicates the vehicle could not be reached.
	ErrNotConnected = NewError("vehicle not connected", false, false)
	// ErrNoSession indicates the client has not established a session with the vehicle. You may
	// have forgotten to call vehicle.StartSession(...).
	ErrNoSession = NewError("cannot send authenticated command before establishing a vehicle session", false, false)
	// ErrRequiresKey indicates a client tried to send a command without an ECDHPrivateKey.
	ErrRequiresKey = NewError("no private key available", false, false)
	// ErrInvalidPublicKey indicates a client tried to perform an operation with an invalid public
	// key. Public keys are NIST-P256 EC keys, encoded in uncompressed form.
	ErrInvalidPublicKey     = authentication.ErrInvalidPublicKey
	ErrKeyNotPaired         = NewError("vehicle rejected request: your public key has not been paired with the vehicle", false, false)
	ErrUnexpectedPublicKey  = errors.New("remote public key changed unexpectedly")
	ErrBadResponse          = errors.New("invalid response")
	ErrRequiresBLE          = errors.New("command can only be sent over BLE")
	ErrRequiresEncryption   = errors.New("command should not be sent in plaintext or encrypted with an unauthenticated public key")
)

// CommandError is the concrete Error implementation every taxonomy member
// below embeds or returns through.
type CommandError struct {
	Err               error
	PossibleSuccess   bool
	PossibleTemporary bool
}

func NewError(message string, mayHaveSucceeded bool, temporary bool) error {
	return &CommandError{Err: errors.New(message), PossibleSuccess: mayHaveSucceeded, PossibleTemporary: temporary}
}

func (e *CommandError) Error() string {
	return e.Err.Error()
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

func (e *CommandError) MayHaveSucceeded() bool {
	return e.PossibleSuccess
}

func (e *CommandError) Temporary() bool {
	return e.PossibleTemporary
}

// ConfigError indicates a caller misconfigured the library (bad Config
// field, missing key material, malformed VIN) before any I/O occurred.
type ConfigError struct{ CommandError }

func NewConfigError(format string, args ...any) *ConfigError {
	return &ConfigError{CommandError{Err: fmt.Errorf(format, args...)}}
}

// TransportError wraps a failure at the BLE link layer: connect, write,
// subscribe, or frame reassembly.
type TransportError struct {
	CommandError
}

func NewTransportError(temporary bool, format string, args ...any) *TransportError {
	return &TransportError{CommandError{Err: fmt.Errorf(format, args...), PossibleTemporary: temporary}}
}

// ProtocolError indicates a malformed or unexpected RoutableMessage: bad
// protobuf framing, a message missing fields required for its type.
type ProtocolError struct{ CommandError }

func NewProtocolError(format string, args ...any) *ProtocolError {
	return &ProtocolError{CommandError{Err: fmt.Errorf(format, args...)}}
}

// AuthenticationError wraps errors surfaced by internal/authentication
// (invalid signature, bad session info, epoch desync).
type AuthenticationError struct {
	CommandError
	Underlying error
}

func NewAuthenticationError(err error) *AuthenticationError {
	return &AuthenticationError{CommandError: CommandError{Err: err}, Underlying: err}
}

func (e *AuthenticationError) Unwrap() error { return e.Underlying }

// VehicleReportedError represents a protocol-layer error returned by the
// vehicle itself in a RoutableMessage's signed_message_status.
type VehicleReportedError struct {
	Code universal.MessageFault_E
}

// VehicleActionError represents a CarServer-level failure: the vehicle
// executed the request but reported action_status.result == 1, with a
// human-readable reason in action_status.result_reason.plain_text. Unlike
// VehicleReportedError (a transport-level signed_message_status fault),
// this is always definitive: the vehicle is not going to change its mind on
// retry without some other condition changing.
type VehicleActionError struct {
	Reason string
}

func NewVehicleActionError(reason string) *VehicleActionError {
	return &VehicleActionError{Reason: reason}
}

func (e *VehicleActionError) Error() string {
	if e.Reason == "" {
		return "vehicle reported an error"
	}
	return "vehicle reported error: " + e.Reason
}

func (e *VehicleActionError) MayHaveSucceeded() bool { return false }
func (e *VehicleActionError) Temporary() bool         { return false }

func (v *VehicleReportedError) MayHaveSucceeded() bool {
	return v.Code == universal.MessageFault_E_MESSAGEFAULT_ERROR_NONE
}

// retriableErrors can sometimes be remedied if the client retries the command,
// possibly after using an error message to update session state.
var retriableErrors = []universal.MessageFault_E{
	universal.MessageFault_E_MESSAGEFAULT_ERROR_BUSY,
	universal.MessageFault_E_MESSAGEFAULT_ERROR_TIMEOUT,
	universal.MessageFault_E_MESSAGEFAULT_ERROR_INVALID_SIGNATURE,
	universal.MessageFault_E_MESSAGEFAULT_ERROR_INVALID_TOKEN_OR_COUNTER,
	universal.MessageFault_E_MESSAGEFAULT_ERROR_INTERNAL,
	universal.MessageFault_E_MESSAGEFAULT_ERROR_INCORRECT_EPOCH,
	universal.MessageFault_E_MESSAGEFAULT_ERROR_TIME_EXPIRED,
	universal.MessageFault_E_MESSAGEFAULT_ERROR_TIME_TO_LIVE_TOO_LONG,
}

func (v *VehicleReportedError) Temporary() bool {
	for _, code := range retriableErrors {
		if v.Code == code {
			return true
		}
	}
	return false
}

func (v *VehicleReportedError) Error() string {
	return fmt.Sprintf("vehicle reported error: %s", v.Code)
}

// TimeoutError indicates the pending-request table evicted a request before
// a matching response arrived.
type TimeoutError struct{ CommandError }

func NewTimeoutError(mayHaveSucceeded bool, format string, args ...any) *TimeoutError {
	return &TimeoutError{CommandError{Err: fmt.Errorf(format, args...), PossibleSuccess: mayHaveSucceeded}}
}

// CryptoError wraps a failure from the crypto primitives layer (ECDH
// exchange, GCM seal/open, HMAC mismatch) that isn't already surfaced as an
// AuthenticationError.
type CryptoError struct{ CommandError }

func NewCryptoError(err error) *CryptoError {
	return &CryptoError{CommandError{Err: err}}
}

// KeychainError represents an error that occurred while trying to modify a vehicle's keychain.
type KeychainError struct {
	Code vcsec.WhitelistOperationInformation_E
}

func (e *KeychainError) MayHaveSucceeded() bool {
	return false
}

func (e *KeychainError) Temporary() bool {
	return false
}

func (e *KeychainError) Error() string {
	return fmt.Sprintf("keychain operation failed: %s", e.Code)
}

// MayHaveSucceeded returns true if err is a CommandError that indicates the command may have been
// executed but the client did not receive a confirmation from the vehicle.
func MayHaveSucceeded(err error) bool {
	if commErr, ok := err.(Error); ok && commErr.MayHaveSucceeded() {
		return true
	}
	return false
}

// Temporary returns true if err is a CommandError that indicates the command failed due to possibly
// transient conditions that do not require user action to resolve.
func Temporary(err error) bool {
	if commErr, ok := err.(Error); ok && commErr.Temporary() {
		return true
	}
	return false
}

// ShouldRetry returns true if the client should retry to issue the command that triggered an error.
func ShouldRetry(err error) bool {
	if err == nil {
		return false
	}
	if e, ok := err.(Error); ok {
		if e.MayHaveSucceeded() {
			return false
		}
		if e.Temporary() {
			return true
		}
	}
	return false
}

// GetError translates a universal.RoutableMessage into an appropriate Error,
// returning nil if the universal.RoutableMessage did not contain an error.
func GetError(u *universal.RoutableMessage) error {
	if fault := u.GetSignedMessageStatus().GetSignedMessageFault(); fault != universal.MessageFault_E_MESSAGEFAULT_ERROR_NONE {
		// This fault is relatively common but doesn't have a very enlightening error message, so we
		// override it with a more descriptive one.
		if fault == universal.MessageFault_E_MESSAGEFAULT_ERROR_UNKNOWN_KEY_ID {
			return ErrKeyNotPaired
		}
		return &VehicleReportedError{Code: fault}
	}
	if encodedSessionInfo := u.GetSessionInfo(); encodedSessionInfo != nil {
		sessionInfo, err := signatures.UnmarshalSessionInfo(encodedSessionInfo)
		if err != nil {
			return ErrBadResponse
		}
		switch sessionInfo.GetStatus() {
		case signatures.Session_Info_Status_SESSION_INFO_STATUS_OK:
			break
		case signatures.Session_Info_Status_SESSION_INFO_STATUS_KEY_NOT_ON_WHITELIST:
			return ErrKeyNotPaired
		default:
			return ErrUnknown
		}
	}
	switch u.GetSignedMessageStatus().GetOperationStatus() {
	case universal.OperationStatus_E_OPERATIONSTATUS_OK:
		return nil
	case universal.OperationStatus_E_OPERATIONSTATUS_WAIT:
		return ErrBusy
	case universal.OperationStatus_E_OPERATIONSTATUS_ERROR:
		return ErrUnknown
	default:
		return ErrUnknown
	}
}
