// Package vehicle implements the session façade (component C7): the public
// entry point that ties the BLE transport, the request multiplexer, and the
// authentication layer into the two operations this core supports —
// fetching vehicle state and requesting enrollment of a new key.
package vehicle

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/go-ble-vehicle/teslable/internal/authentication"
	"github.com/go-ble-vehicle/teslable/internal/log"
	"github.com/go-ble-vehicle/teslable/internal/mux"
	universal "github.com/go-ble-vehicle/teslable/internal/wire/universalmessage"
	"github.com/go-ble-vehicle/teslable/pkg/connector"
	"github.com/go-ble-vehicle/teslable/pkg/protocol"
)

// commandExpiry bounds how long an encrypted command remains valid on the
// wire, per the 10s TTL named in spec.md §4.7 step 1.
const commandExpiry = 10 * time.Second

// Vehicle represents one authenticated BLE session with a single vehicle.
// It owns exactly one connector.Connector and, transitively, one
// internal/mux.Multiplexer; session state (the authentication.Signer) is
// created by Connect's handshake and destroyed by Disconnect or any
// authentication failure, forcing a fresh handshake on next use.
type Vehicle struct {
	conn connector.Connector
	mux  *mux.Multiplexer
	vin  string

	mu         sync.Mutex
	signer     *authentication.Signer
	dispatcher *authentication.Dispatcher
}

// New wraps conn in a Vehicle façade. conn is not yet connected; call
// Connect to start the request multiplexer's notification listener.
func New(conn connector.Connector) *Vehicle {
	return &Vehicle{
		conn: conn,
		mux:  mux.New(conn),
		vin:  conn.VIN(),
	}
}

// VIN returns the vehicle identification number of the connected vehicle.
func (v *Vehicle) VIN() string {
	return v.vin
}

// Connect starts the multiplexer's notification-reassembly listener. It is
// idempotent with respect to the underlying transport: Connect does not
// perform a cryptographic handshake, only wires the transport's event
// stream to the multiplexer.
func (v *Vehicle) Connect(ctx context.Context) error {
	return v.mux.Start(ctx)
}

// Disconnect tears down the multiplexer (failing every pending request with
// a disconnect error) and closes the underlying connector. Session state,
// if any, is discarded; a later EnsureSession on a new Vehicle instance will
// re-handshake from scratch.
func (v *Vehicle) Disconnect() {
	v.mux.Stop()
	v.conn.Close()
	v.mu.Lock()
	v.signer = nil
	v.mu.Unlock()
}

// EnsureSession performs a handshake with the vehicle's infotainment domain
// if one hasn't already succeeded, establishing the Signer subsequent
// encrypted requests use. It is safe to call before every operation; once a
// session is established, later calls are no-ops until Disconnect or an
// AuthenticationError invalidates it.
func (v *Vehicle) EnsureSession(ctx context.Context, priv authentication.ECDHPrivateKey) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.signer != nil {
		return nil
	}
	if v.dispatcher == nil {
		v.dispatcher = &authentication.Dispatcher{ECDHPrivateKey: priv}
	}
	signer, err := v.handshake(ctx, priv)
	if err != nil {
		return err
	}
	v.signer = signer
	return nil
}

// handshake implements the algorithm from §4.7: request the vehicle's
// current SessionInfo for our public key, verify its authenticity with the
// HMAC tag the vehicle attaches, and derive the encrypted session from the
// ECDH exchange.
func (v *Vehicle) handshake(ctx context.Context, priv authentication.ECDHPrivateKey) (*authentication.Signer, error) {
	challenge, err := uuid.New().MarshalBinary()
	if err != nil {
		return nil, protocol.NewCryptoError(err)
	}

	request := &universal.RoutableMessage{
		ToDestination: universal.DestinationFromDomain(protocol.DomainInfotainment),
		SessionInfoRequest: &universal.SessionInfoRequest{
			PublicKey: priv.PublicBytes(),
		},
		Uuid: challenge,
	}

	response, _, err := v.mux.SendAndAwait(ctx, request, nil)
	if err != nil {
		return nil, err
	}
	if err := protocol.GetError(response); err != nil {
		return nil, err
	}

	encodedInfo := response.GetSessionInfo()
	if encodedInfo == nil {
		return nil, protocol.NewProtocolError("handshake response missing session info")
	}
	tag := response.GetSignatureData().GetSessionInfoTag().GetTag()
	if tag == nil {
		return nil, protocol.NewProtocolError("handshake response missing session info tag")
	}

	signer, err := v.dispatcher.ConnectAuthenticated([]byte(v.vin), challenge, encodedInfo, tag)
	if err != nil {
		return nil, protocol.NewAuthenticationError(err)
	}
	signer.SetDomain(protocol.DomainInfotainment)
	log.Info("established session with %s", v.vin)
	return signer, nil
}

// InvalidateSession discards the current Signer, if any, forcing the next
// EnsureSession call to re-handshake. Callers should invoke this after any
// AuthenticationError surfaced by SendEncryptedCommand, per the state
// machine in §4.7: authentication failure on a response is fatal for the
// session, not for the transport.
func (v *Vehicle) InvalidateSession() {
	v.mu.Lock()
	v.signer = nil
	v.mu.Unlock()
}

// sendEncryptedCommand encrypts plaintext as the payload of a RoutableMessage
// addressed to domain, sends it, and authenticates/decrypts the response. It
// is the shared plumbing behind GetState and any future authenticated
// command; it owns the request/response tag binding (§4.6) that prevents a
// response from being mistaken for the answer to a different request.
func (v *Vehicle) sendEncryptedCommand(ctx context.Context, plaintext []byte) ([]byte, error) {
	v.mu.Lock()
	signer := v.signer
	v.mu.Unlock()
	if signer == nil {
		return nil, protocol.ErrNoSession
	}

	message := &universal.RoutableMessage{
		ToDestination:          universal.DestinationFromDomain(protocol.DomainInfotainment),
		ProtobufMessageAsBytes: plaintext,
	}
	if err := signer.Encrypt(message, commandExpiry); err != nil {
		return nil, protocol.NewCryptoError(err)
	}
	requestTag := message.GetSignatureData().GetAES_GCM_PersonalizedData().GetTag()

	decrypt := func(response *universal.RoutableMessage) ([]byte, error) {
		if err := protocol.GetError(response); err != nil {
			return nil, err
		}
		plaintext, err := signer.DecryptResponse(response, requestTag)
		if err != nil {
			v.InvalidateSession()
			return nil, protocol.NewAuthenticationError(err)
		}
		return plaintext, nil
	}

	response, responsePlaintext, err := v.mux.SendAndAwait(ctx, message, decrypt)
	if err != nil {
		return nil, err
	}
	if err := protocol.GetError(response); err != nil {
		return nil, err
	}
	return responsePlaintext, nil
}
