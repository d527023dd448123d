package protocol

import "time"

// Config bundles the tunable constants this package's callers (the BLE
// transport and the session façade) are built against. The zero value is
// not usable; construct one with NewConfig.
type Config struct {
	// ScanTimeout bounds how long transport.Connect will scan for an
	// advertising vehicle before giving up.
	ScanTimeout time.Duration

	// RequestTimeout bounds how long the multiplexer waits for a response
	// to a pending request before failing it with a TimeoutError.
	RequestTimeout time.Duration

	// MaxFrameSize is the largest framed message (length prefix plus
	// payload) the transport will write or accept on reassembly.
	MaxFrameSize int

	// ReassemblyGap is the maximum idle time between notification chunks
	// before the transport discards a partial frame as stale.
	ReassemblyGap time.Duration

	// DefaultBlockLength is the write chunk size used when the platform
	// does not report (or cannot negotiate) an MTU.
	DefaultBlockLength int

	// MinBlockLength is the floor the transport will not shrink below when
	// halving block size after repeated write failures.
	MinBlockLength int

	logLevel *int
}

// NewConfig returns a Config populated with the literal constants named in
// the protocol specification: 20s scan timeout, 10s request timeout, a
// 1024-byte frame cap, a 1000ms reassembly gap, and a 185-byte default
// block length.
func NewConfig() *Config {
	return &Config{
		ScanTimeout:        20 * time.Second,
		RequestTimeout:     10 * time.Second,
		MaxFrameSize:       1024,
		ReassemblyGap:      1000 * time.Millisecond,
		DefaultBlockLength: 185,
		MinBlockLength:     20,
	}
}

// WithLogLevel sets the level internal/log should emit at for the
// lifetime of a connection built from this Config, returning c for
// chaining. It's a convenience for callers that don't want to reach into
// internal/log directly.
func (c *Config) WithLogLevel(level int) *Config {
	c.logLevel = &level
	return c
}

// LogLevel returns the level set by WithLogLevel and whether one was set.
func (c *Config) LogLevel() (int, bool) {
	if c.logLevel == nil {
		return 0, false
	}
	return *c.logLevel, true
}
