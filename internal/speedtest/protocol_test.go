package speedtest

import (
	"bufio"
	"errors"
	"strings"
	"testing"
)

func TestHandshakeFraming(t *testing.T) {
	if got := uploadHandshake(5000000); got != "UPLOAD 5000000 0\r\n" {
		t.Errorf("upload handshake = %q", got)
	}
	if got := downloadHandshake(1048576); got != "DOWNLOAD 1048576\r\n" {
		t.Errorf("download handshake = %q", got)
	}
	if pingHandshake != "PING \r\n" {
		t.Errorf("ping handshake = %q", pingHandshake)
	}
	if hiHandshake != "HI\r\n" {
		t.Errorf("hi handshake = %q", hiHandshake)
	}
}

func TestReadAckVerbatim(t *testing.T) {
	r := bufio.NewReader(strings.NewReader("ok 500 \n"))
	line, err := readAck(r)
	if err != nil {
		t.Fatal(err)
	}
	if line != "ok 500 \n" {
		t.Errorf("ack = %q", line)
	}
}

func TestReadAckLineCutShortByClose(t *testing.T) {
	r := bufio.NewReader(strings.NewReader("ok 500"))
	line, err := readAck(r)
	if err != nil {
		t.Fatal(err)
	}
	if line != "ok 500" {
		t.Errorf("ack = %q", line)
	}
}

func TestReadAckEmptyStream(t *testing.T) {
	r := bufio.NewReader(strings.NewReader(""))
	if _, err := readAck(r); err == nil {
		t.Error("expected error for empty stream")
	}
}

func TestCheckUploadAck(t *testing.T) {
	cases := []struct {
		name  string
		line  string
		bytes int64
		ok    bool
	}{
		{"exact echo", "5000000\n", 5000000, true},
		{"embedded", "ok 5000000 bytes\n", 5000000, true},
		// Containment, not equality: a superstring of the requested count
		// passes. This mirrors what servers in the wild get away with.
		{"superstring passes", "15000000 bytes\n", 5000000, true},
		{"short count fails", "ok 4999999\n", 5000000, false},
		{"unrelated line fails", "error\n", 5000000, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := checkUploadAck(tc.line, tc.bytes)
			if tc.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tc.ok {
				var ie *InterruptedError
				if !errors.As(err, &ie) {
					t.Fatalf("expected InterruptedError, got %v", err)
				}
				if ie.Requested != tc.bytes {
					t.Errorf("requested = %d, want %d", ie.Requested, tc.bytes)
				}
				if ie.Ack != tc.line {
					t.Errorf("ack = %q, want %q", ie.Ack, tc.line)
				}
				if !strings.Contains(ie.Error(), "5000000") {
					t.Errorf("error should name the requested size: %v", ie)
				}
			}
		})
	}
}
