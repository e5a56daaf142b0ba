package speedtest

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func newTestTester() *Tester {
	return New(WithLogger(zerolog.Nop()), WithPayloadSeed(1, 2))
}

// uploadStub consumes one upload (handshake line plus payload plus sentinel)
// and answers with ack.
func uploadStub(t *testing.T, conn net.Conn, ack string) {
	t.Helper()
	defer conn.Close()
	br := bufio.NewReader(conn)
	line, err := br.ReadString('\n')
	if err != nil {
		t.Errorf("stub: reading handshake: %v", err)
		return
	}
	fields := strings.Fields(line)
	if len(fields) != 3 || fields[0] != "UPLOAD" {
		t.Errorf("stub: unexpected handshake %q", line)
		return
	}
	n, _ := strconv.Atoi(fields[1])
	remaining := n - len(line) + 1 // payload plus sentinel
	if _, err := io.Copy(io.Discard, io.LimitReader(br, int64(remaining))); err != nil {
		t.Errorf("stub: reading payload: %v", err)
		return
	}
	fmt.Fprintf(conn, "%s\n", ack)
}

func TestUploadSuccess(t *testing.T) {
	const bytes = 5000000
	client, server := net.Pipe()
	go uploadStub(t, server, "ok 5000000")

	tester := newTestTester()
	counter := NewByteCounter()
	mbps, err := tester.upload(client, bytes, counter)
	if err != nil {
		t.Fatal(err)
	}
	if mbps <= 0 {
		t.Errorf("throughput = %f, want > 0", mbps)
	}
	if got := counter.Load(); got != bytes {
		t.Errorf("counter = %d, want %d", got, bytes)
	}
}

func TestUploadAckMismatch(t *testing.T) {
	const bytes = 5000000
	client, server := net.Pipe()
	go uploadStub(t, server, "ok 4999999")

	tester := newTestTester()
	_, err := tester.upload(client, bytes, NewByteCounter())
	var ie *InterruptedError
	if !errors.As(err, &ie) {
		t.Fatalf("expected InterruptedError, got %v", err)
	}
	if ie.Requested != bytes {
		t.Errorf("requested = %d, want %d", ie.Requested, bytes)
	}
	if !strings.Contains(ie.Ack, "4999999") {
		t.Errorf("error should carry the ack line, got %q", ie.Ack)
	}
}

// downloadStub reads the handshake and streams total bytes where the last
// byte is the sentinel. With truncate set it sends only half and closes.
func downloadStub(t *testing.T, conn net.Conn, truncate bool) {
	t.Helper()
	defer conn.Close()
	br := bufio.NewReader(conn)
	line, err := br.ReadString('\n')
	if err != nil {
		t.Errorf("stub: reading handshake: %v", err)
		return
	}
	fields := strings.Fields(line)
	if len(fields) != 2 || fields[0] != "DOWNLOAD" {
		t.Errorf("stub: unexpected handshake %q", line)
		return
	}
	n, _ := strconv.Atoi(fields[1])
	if truncate {
		n = n / 2
		writeAlphanumeric(conn, n)
		return
	}
	writeAlphanumeric(conn, n-1)
	conn.Write([]byte{'\n'})
}

func writeAlphanumeric(w io.Writer, n int) {
	buf := make([]byte, 64*1024)
	for i := range buf {
		buf[i] = 'a'
	}
	for n > 0 {
		chunk := len(buf)
		if n < chunk {
			chunk = n
		}
		if _, err := w.Write(buf[:chunk]); err != nil {
			return
		}
		n -= chunk
	}
}

func TestDownloadSuccess(t *testing.T) {
	const bytes = 1048576
	client, server := net.Pipe()
	go downloadStub(t, server, false)

	tester := newTestTester()
	counter := NewByteCounter()
	start := time.Now()
	mbps, err := tester.download(client, bytes, counter)
	harness := time.Since(start)
	if err != nil {
		t.Fatal(err)
	}
	if got := counter.Load(); got != bytes {
		t.Errorf("counter = %d, want %d", got, bytes)
	}
	// The reported figure uses a window nested inside the harness window, so
	// it can only come out faster.
	independent := float64(bytes) / float64(harness.Microseconds()) * 8
	if mbps < independent*0.9 {
		t.Errorf("throughput %f below independently computed %f", mbps, independent)
	}
}

func TestDownloadTruncated(t *testing.T) {
	const bytes = 1000000
	client, server := net.Pipe()
	go downloadStub(t, server, true)

	tester := newTestTester()
	_, err := tester.download(client, bytes, NewByteCounter())
	var ie *InterruptedError
	if !errors.As(err, &ie) {
		t.Fatalf("expected InterruptedError, got %v", err)
	}
	if ie.Requested != bytes {
		t.Errorf("requested = %d, want %d", ie.Requested, bytes)
	}
	if ie.Received != bytes/2 {
		t.Errorf("received = %d, want %d", ie.Received, bytes/2)
	}
}

func TestUploadWithSampler(t *testing.T) {
	client, server := net.Pipe()
	go uploadStub(t, server, "ok 200000")

	tester := newTestTester()
	mbps, err := tester.Upload(client, 200000)
	if err != nil {
		t.Fatal(err)
	}
	if mbps <= 0 {
		t.Errorf("throughput = %f, want > 0", mbps)
	}
}

func lineStub(t *testing.T, conn net.Conn, delay time.Duration) {
	t.Helper()
	defer conn.Close()
	br := bufio.NewReader(conn)
	for {
		if _, err := br.ReadString('\n'); err != nil {
			return
		}
		time.Sleep(delay)
		if _, err := conn.Write([]byte("HELLO\n")); err != nil {
			return
		}
	}
}

func TestPingImmediate(t *testing.T) {
	client, server := net.Pipe()
	go lineStub(t, server, 0)
	defer client.Close()

	tester := newTestTester()
	latency, err := tester.Ping(client)
	if err != nil {
		t.Fatal(err)
	}
	if latency < 0 || latency > 5*time.Second {
		t.Errorf("latency = %v out of range", latency)
	}
}

func TestPingDelayed(t *testing.T) {
	client, server := net.Pipe()
	go lineStub(t, server, 50*time.Millisecond)
	defer client.Close()

	tester := newTestTester()
	latency, err := tester.Ping(client)
	if err != nil {
		t.Fatal(err)
	}
	if latency < 50*time.Millisecond {
		t.Errorf("latency = %v, want >= 50ms", latency)
	}
}

func TestHi(t *testing.T) {
	client, server := net.Pipe()
	go lineStub(t, server, 0)
	defer client.Close()

	tester := newTestTester()
	if err := tester.Hi(client); err != nil {
		t.Fatal(err)
	}
}
