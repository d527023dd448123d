// Package connector defines the transport-independent interface the
// session façade sends and receives raw datagrams through. The only
// implementation in this module is pkg/connector/ble, but the interface
// keeps the façade (and its tests) decoupled from any particular radio
// stack.
package connector

import "context"

// BufferSize is the number of inbound messages that can be queued before a
// Connector implementation should start dropping or blocking.
const BufferSize = 5

// MaxFrameSize caps the byte-length of a single framed message, matching
// the protocol's 2-byte big-endian length prefix budget.
const MaxFrameSize = 1024

// Connector sends and receives raw, already-framed RoutableMessage bytes to
// and from a single vehicle. Implementations must be safe for concurrent
// use: Send may be called while a notification is being delivered on the
// channel returned by Receive.
type Connector interface {
	// Receive returns a channel of complete, reassembled messages sent by
	// the vehicle. The channel is closed when the connection is torn down.
	Receive() <-chan []byte

	// Send transmits buffer to the vehicle, blocking until the underlying
	// transport either accepts it or reports a failure.
	//
	// Depending on the error, the vehicle may have received and even acted
	// on the message. Callers that need to distinguish this should check
	// whether the error satisfies pkg/protocol.Error and call its
	// MayHaveSucceeded method.
	Send(ctx context.Context, buffer []byte) error

	// VIN returns the vehicle identification number of the connected
	// vehicle.
	VIN() string

	// Close terminates the connection to the vehicle. Repeated calls must
	// be idempotent; the interface's behavior is otherwise undefined
	// afterward.
	Close()
}
