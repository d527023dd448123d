// Package mux implements the request/response multiplexer (component C6)
// that sits between the session façade and the BLE transport. It owns the
// 16-byte routing address a façade instance presents to the vehicle,
// correlates inbound RoutableMessages to outstanding requests by UUID, and
// enforces the fixed 10-second response deadline. Encoding, decryption, and
// session bookkeeping stay with the caller; the multiplexer only ever
// touches wire-level RoutableMessages and raw bytes.
package mux

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/go-ble-vehicle/teslable/internal/log"
	"github.com/go-ble-vehicle/teslable/pkg/connector"
	"github.com/go-ble-vehicle/teslable/pkg/protocol"
	universal "github.com/go-ble-vehicle/teslable/internal/wire/universalmessage"
)

// RequestTimeout is the default deadline applied to every outstanding
// request when a Multiplexer is built with New; no response within this
// window fails the call with a TimeoutError. NewWithConfig lets a caller
// override it via protocol.Config.RequestTimeout.
const RequestTimeout = 10 * time.Second

// DecryptFunc authenticates and, where applicable, decrypts a matched
// response. It is the multiplexer's only hook into session state; the
// façade supplies one when it expects an encrypted reply and omits it for
// plaintext exchanges (handshakes, VCSEC add-key acknowledgements).
type DecryptFunc func(*universal.RoutableMessage) ([]byte, error)

type pendingRequest struct {
	resultCh chan result
	decrypt  DecryptFunc
}

type result struct {
	message   *universal.RoutableMessage
	plaintext []byte
	err       error
}

// Multiplexer correlates outbound RoutableMessages with the vehicle's
// asynchronous replies. A single instance is owned by one session façade
// and, transitively, one BLE connection.
type Multiplexer struct {
	conn           connector.Connector
	address        [16]byte
	requestTimeout time.Duration

	mu      sync.Mutex
	pending map[uuid.UUID]*pendingRequest

	cancel context.CancelFunc
	done   chan struct{}
}

// New creates a Multiplexer bound to conn, generating a fresh routing
// address for this façade instance and using the default protocol.Config's
// RequestTimeout.
func New(conn connector.Connector) *Multiplexer {
	return NewWithConfig(conn, protocol.NewConfig())
}

// NewWithConfig creates a Multiplexer bound to conn, generating a fresh
// routing address for this façade instance and applying cfg.RequestTimeout
// as the per-request deadline instead of the package default.
func NewWithConfig(conn connector.Connector, cfg *protocol.Config) *Multiplexer {
	m := &Multiplexer{
		conn:           conn,
		pending:        make(map[uuid.UUID]*pendingRequest),
		requestTimeout: cfg.RequestTimeout,
	}
	addr := uuid.New()
	copy(m.address[:], addr[:])
	return m
}

// Address returns the 16-byte routing address the vehicle should use as
// toDestination when replying to this façade instance.
func (m *Multiplexer) Address() []byte {
	addr := make([]byte, len(m.address))
	copy(addr, m.address[:])
	return addr
}

// Start launches the notification-reassembly listener in its own goroutine.
// It blocks until the listener is ready or ctx expires.
func (m *Multiplexer) Start(ctx context.Context) error {
	listenCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.done = make(chan struct{})
	ready := make(chan struct{})
	go m.listen(listenCtx, ready)
	select {
	case <-ready:
		return nil
	case <-ctx.Done():
		cancel()
		return ctx.Err()
	}
}

// Stop terminates the listener goroutine and fails every pending request
// with a disconnect error.
func (m *Multiplexer) Stop() {
	if m.cancel == nil {
		return
	}
	m.cancel()
	<-m.done
}

func (m *Multiplexer) listen(ctx context.Context, ready chan<- struct{}) {
	defer close(m.done)
	close(ready)
	for {
		select {
		case raw, open := <-m.conn.Receive():
			if !open {
				m.failAll(protocol.NewTransportError(false, "vehicle disconnected"))
				return
			}
			message, err := universal.Unmarshal(raw)
			if err != nil {
				log.Warning("mux: dropping unparseable message: %s", err)
				continue
			}
			m.deliver(message)
		case <-ctx.Done():
			m.failAll(protocol.NewTransportError(false, "connection closed"))
			return
		}
	}
}

func (m *Multiplexer) deliver(message *universal.RoutableMessage) {
	id, err := uuid.FromBytes(message.GetUuid())
	if err != nil {
		log.Warning("mux: dropping message with malformed uuid")
		return
	}

	m.mu.Lock()
	p, ok := m.pending[id]
	if ok {
		delete(m.pending, id)
	}
	m.mu.Unlock()

	if !ok {
		log.Warning("mux: dropping message with unknown request uuid %s", id)
		return
	}

	res := result{message: message}
	if p.decrypt != nil {
		res.plaintext, res.err = p.decrypt(message)
	}
	select {
	case p.resultCh <- res:
	default:
		log.Error("mux: response handler channel unexpectedly full for %s", id)
	}
}

func (m *Multiplexer) failAll(err error) {
	m.mu.Lock()
	pending := m.pending
	m.pending = make(map[uuid.UUID]*pendingRequest)
	m.mu.Unlock()
	for _, p := range pending {
		select {
		case p.resultCh <- result{err: err}:
		default:
		}
	}
}

// SendAndAwait encodes and transmits message, assigning it a fresh request
// UUID and this façade's routing address, then blocks until a matching
// response arrives, the request times out, or ctx is cancelled. decrypt may
// be nil for requests that expect a plaintext (unauthenticated) response.
//
// On success it returns the matched RoutableMessage and, if decrypt was
// provided, the authenticated plaintext it produced.
func (m *Multiplexer) SendAndAwait(ctx context.Context, message *universal.RoutableMessage, decrypt DecryptFunc) (*universal.RoutableMessage, []byte, error) {
	var id uuid.UUID
	if len(message.Uuid) == 16 {
		// Caller pre-generated the request UUID, typically because it also
		// needs the raw bytes as a challenge value (e.g. the handshake's
		// session-info HMAC). Reuse it instead of overwriting.
		copy(id[:], message.Uuid)
	} else {
		id = uuid.New()
		message.Uuid = id[:]
	}
	message.FromDestination = universal.DestinationFromRoutingAddress(m.Address())

	encoded, err := message.Marshal()
	if err != nil {
		return nil, nil, protocol.NewProtocolError("encoding request: %s", err)
	}

	p := &pendingRequest{resultCh: make(chan result, 1), decrypt: decrypt}
	m.mu.Lock()
	m.pending[id] = p
	m.mu.Unlock()

	if err := m.conn.Send(ctx, encoded); err != nil {
		m.mu.Lock()
		delete(m.pending, id)
		m.mu.Unlock()
		return nil, nil, err
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, m.requestTimeout)
	defer cancel()

	select {
	case res := <-p.resultCh:
		if res.err != nil {
			return res.message, nil, res.err
		}
		return res.message, res.plaintext, nil
	case <-timeoutCtx.Done():
		m.mu.Lock()
		delete(m.pending, id)
		m.mu.Unlock()
		if ctx.Err() != nil {
			return nil, nil, ctx.Err()
		}
		return nil, nil, protocol.NewTimeoutError(false, "no response to %s within %s", id, m.requestTimeout)
	}
}
