package speedtest

import (
	"bytes"
	"strings"
	"testing"
)

func collectChunks(t *testing.T, total int64) [][]byte {
	t.Helper()
	out := make(chan []byte, payloadQueueDepth)
	go newPayloadSource(7, 11).generate(total, out, nil)
	var chunks [][]byte
	for buf := range out {
		chunks = append(chunks, buf)
	}
	return chunks
}

func TestGeneratorChunkSizesAndSentinel(t *testing.T) {
	total := int64(2*MB + 512*1024)
	chunks := collectChunks(t, total)
	if len(chunks) != 3 {
		t.Fatalf("got %d chunks, want 3", len(chunks))
	}
	var payload int64
	for i, buf := range chunks {
		n := int64(len(buf))
		last := i == len(chunks)-1
		if last {
			if buf[len(buf)-1] != '\n' {
				t.Fatal("final chunk must end with the sentinel")
			}
			n--
		} else if bytes.ContainsRune(buf, '\n') {
			t.Fatalf("chunk %d carries a sentinel byte", i)
		}
		if n <= 0 || n > MB {
			t.Fatalf("chunk %d payload size %d out of range", i, n)
		}
		payload += n
	}
	if payload != total {
		t.Errorf("payload total = %d, want %d", payload, total)
	}
}

func TestGeneratorAlphanumericPayload(t *testing.T) {
	chunks := collectChunks(t, 4096)
	payload := chunks[0][:len(chunks[0])-1]
	for _, b := range payload {
		if !strings.ContainsRune(alphanumeric, rune(b)) {
			t.Fatalf("payload byte %q is not alphanumeric", b)
		}
	}
}

func TestGeneratorDeterministicWithSeed(t *testing.T) {
	a := make(chan []byte, 1)
	b := make(chan []byte, 1)
	go newPayloadSource(42, 42).generate(1024, a, nil)
	go newPayloadSource(42, 42).generate(1024, b, nil)
	if !bytes.Equal(<-a, <-b) {
		t.Error("same seed should produce identical payload")
	}
}

func TestGeneratorDifferentEntropySeeds(t *testing.T) {
	s1a, s1b := entropySeeds()
	s2a, s2b := entropySeeds()
	if s1a == s2a && s1b == s2b {
		t.Error("entropy seeds should differ between generators")
	}
}
