package speedtest

import (
	"fmt"
	"net"
	"time"

	"github.com/conduitio/bwlimit"
	"github.com/rs/zerolog"
	"github.com/velohq/velo/internal/utils"
)

const (
	// MB is the maximum payload chunk size for both directions.
	MB = 1 << 20
	// measureWindows divides a transfer into live sampling windows.
	measureWindows = 32
	// sampleWatchdog stops the sampler when a transfer stalls. It only ends
	// sampling, never the transfer itself.
	sampleWatchdog = 20 * time.Second
)

// SpeedSample is one instantaneous speed observation from the live sampler.
type SpeedSample struct {
	Bytes       int64 // delta since the previous observation
	Transferred int64 // cumulative counter value at observation time
	Elapsed     time.Duration
	Mbps        float64
}

// Tester runs bandwidth and latency tests against a bandwidth-test server.
// The zero-value options give entropy-seeded payload, a 10 second dial
// timeout and no rate limit.
type Tester struct {
	log         zerolog.Logger
	dialTimeout time.Duration
	limit       int // bytes per second per connection, 0 means unlimited
	onSample    func(SpeedSample)
	watchdog    time.Duration
	seeded      bool
	seed1       uint64
	seed2       uint64
}

type Option func(*Tester)

// WithLogger routes the tester's progress and diagnostic output through log.
func WithLogger(log zerolog.Logger) Option {
	return func(t *Tester) { t.log = log }
}

func WithDialTimeout(d time.Duration) Option {
	return func(t *Tester) { t.dialTimeout = d }
}

// WithRateLimit caps each connection to bytesPerSec in both directions.
func WithRateLimit(bytesPerSec int) Option {
	return func(t *Tester) { t.limit = bytesPerSec }
}

// WithSampleFunc registers fn to receive live speed observations in addition
// to the log output. fn is called from the sampling loop.
func WithSampleFunc(fn func(SpeedSample)) Option {
	return func(t *Tester) { t.onSample = fn }
}

// WithPayloadSeed makes every payload generator deterministic. Only useful
// for tests; the default is a fresh entropy seed per generator.
func WithPayloadSeed(seed1, seed2 uint64) Option {
	return func(t *Tester) {
		t.seeded = true
		t.seed1 = seed1
		t.seed2 = seed2
	}
}

func New(opts ...Option) *Tester {
	t := &Tester{
		log:         utils.GetLogger("speedtest"),
		dialTimeout: 10 * time.Second,
		watchdog:    sampleWatchdog,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Dial opens a raw connection to host, applying the configured rate limit.
func (t *Tester) Dial(host string) (net.Conn, error) {
	conn, err := net.DialTimeout("tcp", host, t.dialTimeout)
	if err != nil {
		return nil, fmt.Errorf("error connecting to %s: %v", host, err)
	}
	if t.limit > 0 {
		return bwlimit.NewConn(conn, bwlimit.Byte(t.limit), bwlimit.Byte(t.limit)), nil
	}
	return conn, nil
}

// Connect dials host and verifies liveness with a HI exchange.
func (t *Tester) Connect(host string) (net.Conn, error) {
	t.log.Info().Str("host", host).Msg("Connecting to server")
	conn, err := t.Dial(host)
	if err != nil {
		return nil, err
	}
	if err := t.Hi(conn); err != nil {
		conn.Close()
		return nil, err
	}
	return conn, nil
}

// mbps converts a byte count over a wall-clock duration to megabits per
// second (bytes per microsecond times eight).
func mbps(bytes int64, elapsed time.Duration) float64 {
	us := elapsed.Microseconds()
	if us <= 0 {
		us = 1
	}
	return float64(bytes) / float64(us) * 8
}
