package speedtest

import (
	"bufio"
	"fmt"
	"io"
	"net"
	"strings"
	"time"
)

// upload drives one upload to completion on one connection. Handshake and
// payload bytes (sentinel excluded) are added to the shared counter, so a
// completed upload contributes exactly bytes to it.
func (t *Tester) upload(conn net.Conn, bytes int64, counter *ByteCounter) (float64, error) {
	msg := uploadHandshake(bytes)
	start := time.Now()
	if _, err := conn.Write([]byte(msg)); err != nil {
		return 0, fmt.Errorf("error sending upload handshake: %v", err)
	}
	counter.Add(int64(len(msg)))

	chunks := make(chan []byte, payloadQueueDepth)
	done := make(chan struct{})
	defer close(done)
	go t.newPayloadSource().generate(bytes-int64(len(msg)), chunks, done)

	for buf := range chunks {
		if _, err := conn.Write(buf); err != nil {
			return 0, fmt.Errorf("error writing payload: %v", err)
		}
		n := int64(len(buf))
		last := buf[len(buf)-1] == '\n'
		if last {
			n-- // the sentinel is framing, not payload
		}
		counter.Add(n)
		if last {
			break
		}
	}
	elapsed := time.Since(start)
	t.log.Info().Float64("seconds", elapsed.Seconds()).Msg("Upload finished")

	line, err := readAck(bufio.NewReader(conn))
	if err != nil {
		return 0, err
	}
	t.log.Debug().Str("response", strings.TrimSpace(line)).Msg("Server response")
	if err := checkUploadAck(line, bytes); err != nil {
		return 0, err
	}
	return mbps(bytes, elapsed), nil
}

// download drives one download to completion on one connection. The buffer is
// inspected without copying: a zero-length fill (peer closed) or a trailing
// '\n' sentinel ends the loop, and the terminating chunk's bytes are counted
// like any other. Completion is validated against a per-connection count so
// parallel downloads sharing a counter don't disturb each other's accounting.
func (t *Tester) download(conn net.Conn, bytes int64, counter *ByteCounter) (float64, error) {
	start := time.Now()
	if _, err := conn.Write([]byte(downloadHandshake(bytes))); err != nil {
		return 0, fmt.Errorf("error sending download handshake: %v", err)
	}
	br := bufio.NewReaderSize(conn, MB)
	var received int64
	for {
		if _, err := br.Peek(1); err != nil {
			if err == io.EOF {
				break
			}
			return 0, fmt.Errorf("error reading payload: %v", err)
		}
		n := br.Buffered()
		chunk, _ := br.Peek(n)
		received += int64(n)
		counter.Add(int64(n))
		if chunk[n-1] == '\n' {
			break
		}
		if _, err := br.Discard(n); err != nil {
			return 0, fmt.Errorf("error reading payload: %v", err)
		}
	}
	elapsed := time.Since(start)
	t.log.Info().Float64("seconds", elapsed.Seconds()).Msg("Download finished")
	if received != bytes {
		return 0, &InterruptedError{Op: "download", Requested: bytes, Received: received}
	}
	return mbps(received, elapsed), nil
}

type transferResult struct {
	mbps float64
	err  error
}

// Upload runs a single-connection upload test of bytes total bytes with live
// speed sampling and returns the measured throughput in Mbps.
func (t *Tester) Upload(conn net.Conn, bytes int64) (float64, error) {
	counter := NewByteCounter()
	done := make(chan transferResult, 1)
	go func() {
		m, err := t.upload(conn, bytes, counter)
		done <- transferResult{m, err}
	}()
	t.sample(bytes, counter)
	res := <-done
	return res.mbps, res.err
}

// Download runs a single-connection download test of bytes total bytes with
// live speed sampling and returns the measured throughput in Mbps.
func (t *Tester) Download(conn net.Conn, bytes int64) (float64, error) {
	counter := NewByteCounter()
	done := make(chan transferResult, 1)
	go func() {
		m, err := t.download(conn, bytes, counter)
		done <- transferResult{m, err}
	}()
	t.sample(bytes, counter)
	res := <-done
	return res.mbps, res.err
}

// Ping measures round-trip latency with a PING exchange on an open
// connection.
func (t *Tester) Ping(conn net.Conn) (time.Duration, error) {
	start := time.Now()
	if _, err := conn.Write([]byte(pingHandshake)); err != nil {
		return 0, fmt.Errorf("error sending ping: %v", err)
	}
	line, err := readAck(bufio.NewReader(conn))
	if err != nil {
		return 0, err
	}
	elapsed := time.Since(start)
	t.log.Debug().Str("response", strings.TrimSpace(line)).Dur("rtt", elapsed).Msg("Ping response")
	return elapsed, nil
}

// Hi performs the HI liveness exchange, discarding the response line.
func (t *Tester) Hi(conn net.Conn) error {
	if _, err := conn.Write([]byte(hiHandshake)); err != nil {
		return fmt.Errorf("error sending HI: %v", err)
	}
	line, err := readAck(bufio.NewReader(conn))
	if err != nil {
		return err
	}
	t.log.Debug().Str("response", strings.TrimSpace(line)).Msg("Server hello")
	return nil
}
