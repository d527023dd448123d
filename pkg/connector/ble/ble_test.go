package ble

import (
	"testing"
	"time"

	"github.com/go-ble-vehicle/teslable/pkg/protocol"
)

func newTestConnection() *Connection {
	return &Connection{
		cfg:   protocol.NewConfig(),
		inbox: make(chan []byte, 5),
	}
}

func lengthPrefixed(payload []byte) []byte {
	out := make([]byte, 0, 2+len(payload))
	out = append(out, uint8(len(payload)>>8), uint8(len(payload)))
	return append(out, payload...)
}

func TestRxWholeFrameInOneChunk(t *testing.T) {
	c := newTestConnection()
	payload := []byte("hello vehicle")
	c.rx(lengthPrefixed(payload))

	select {
	case got := <-c.inbox:
		if string(got) != string(payload) {
			t.Errorf("got %q, want %q", got, payload)
		}
	default:
		t.Fatal("expected a reassembled frame on inbox")
	}
}

func TestRxArbitraryChunking(t *testing.T) {
	payload := make([]byte, 300)
	for i := range payload {
		payload[i] = byte(i)
	}
	framed := lengthPrefixed(payload)

	// Feed the framed message back in tiny, unaligned pieces to exercise
	// reassembly across chunk boundaries that don't line up with the
	// length prefix or any particular buffer size.
	chunkSizes := []int{1, 3, 7, 50, 1, 238}
	c := newTestConnection()
	pos := 0
	for _, n := range chunkSizes {
		end := pos + n
		if end > len(framed) {
			end = len(framed)
		}
		c.rx(framed[pos:end])
		pos = end
	}
	if pos < len(framed) {
		c.rx(framed[pos:])
	}

	select {
	case got := <-c.inbox:
		if len(got) != len(payload) {
			t.Fatalf("got length %d, want %d", len(got), len(payload))
		}
		for i := range payload {
			if got[i] != payload[i] {
				t.Fatalf("byte %d: got %02x, want %02x", i, got[i], payload[i])
			}
		}
	default:
		t.Fatal("expected a reassembled frame on inbox")
	}
}

func TestRxMultipleFramesInOneChunk(t *testing.T) {
	c := newTestConnection()
	first := lengthPrefixed([]byte("one"))
	second := lengthPrefixed([]byte("two"))
	c.rx(append(first, second...))

	var got []string
	for i := 0; i < 2; i++ {
		select {
		case frame := <-c.inbox:
			got = append(got, string(frame))
		default:
			t.Fatalf("expected frame %d on inbox", i)
		}
	}
	if got[0] != "one" || got[1] != "two" {
		t.Errorf("got %v", got)
	}
}

func TestRxOversizeLengthResetsBuffer(t *testing.T) {
	c := newTestConnection()
	oversize := []byte{0xFF, 0xFF} // declares a length far beyond MaxFrameSize
	c.rx(oversize)

	if len(c.inputBuffer) != 0 {
		t.Errorf("expected input buffer to be discarded, got %d bytes", len(c.inputBuffer))
	}

	select {
	case got := <-c.inbox:
		t.Fatalf("expected no frame delivered, got %q", got)
	default:
	}

	// A subsequent well-formed frame must still be reassembled normally.
	c.rx(lengthPrefixed([]byte("recovered")))
	select {
	case got := <-c.inbox:
		if string(got) != "recovered" {
			t.Errorf("got %q", got)
		}
	default:
		t.Fatal("expected the next complete frame to be delivered")
	}
}

func TestRxStaleGapDiscardsPartialFrame(t *testing.T) {
	c := newTestConnection()
	payload := []byte("a complete frame after a stale gap")
	framed := lengthPrefixed(payload)

	// Deliver only the first half of the frame, then simulate a gap longer
	// than ReassemblyGap before the rest arrives.
	half := len(framed) / 2
	c.rx(framed[:half])
	if len(c.inputBuffer) == 0 {
		t.Fatal("expected a partial frame buffered")
	}
	c.lastRx = time.Now().Add(-2 * c.cfg.ReassemblyGap)

	c.rx(framed[half:])

	select {
	case got := <-c.inbox:
		t.Fatalf("stale partial frame should not have been completed, got %q", got)
	default:
	}

	// The transport should still be able to reassemble a subsequent,
	// complete frame normally.
	c.rx(lengthPrefixed([]byte("next frame")))
	select {
	case got := <-c.inbox:
		if string(got) != "next frame" {
			t.Errorf("got %q", got)
		}
	default:
		t.Fatal("expected the following complete frame to be delivered")
	}
}

func TestVehicleLocalNameIsDeterministicAndVinDependent(t *testing.T) {
	name1 := VehicleLocalName("5YJ3E1EA1JF000001")
	name2 := VehicleLocalName("5YJ3E1EA1JF000001")
	if name1 != name2 {
		t.Errorf("expected deterministic local name, got %q and %q", name1, name2)
	}
	if len(name1) != len("S")+16+len("C") {
		t.Errorf("unexpected local name length %d (%q)", len(name1), name1)
	}
	if name1[0] != 'S' || name1[len(name1)-1] != 'C' {
		t.Errorf("expected S...C wrapper, got %q", name1)
	}

	other := VehicleLocalName("5YJ3E1EA1JF999999")
	if other == name1 {
		t.Errorf("expected different VINs to produce different local names")
	}
}
