package speedtest

import (
	crand "crypto/rand"
	"encoding/binary"
	"math/rand/v2"
)

const alphanumeric = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// payloadQueueDepth bounds the chunks buffered between the generator and the
// socket writer, capping in-flight payload at about 16 MiB.
const payloadQueueDepth = 16

// payloadSource produces randomized upload payload on its own goroutine,
// decoupled from blocking socket writes by a bounded queue.
type payloadSource struct {
	rng *rand.Rand
}

func newPayloadSource(seed1, seed2 uint64) *payloadSource {
	return &payloadSource{rng: rand.New(rand.NewPCG(seed1, seed2))}
}

func entropySeeds() (uint64, uint64) {
	var b [16]byte
	crand.Read(b[:])
	return binary.LittleEndian.Uint64(b[:8]), binary.LittleEndian.Uint64(b[8:])
}

func (t *Tester) newPayloadSource() *payloadSource {
	if t.seeded {
		return newPayloadSource(t.seed1, t.seed2)
	}
	s1, s2 := entropySeeds()
	return newPayloadSource(s1, s2)
}

// generate pushes chunks totalling exactly total payload bytes into out, in
// order, at most 1 MiB each. The final chunk carries one extra trailing '\n'
// sentinel byte marking end of payload. Pushing blocks when the queue is
// full; the channel is closed once the sentinel chunk is queued. Closing done
// releases the generator when the consumer gives up early.
func (p *payloadSource) generate(total int64, out chan<- []byte, done <-chan struct{}) {
	defer close(out)
	left := total
	for left > 0 {
		length := int64(MB)
		if left < length {
			length = left
		}
		buf := make([]byte, length, length+1)
		for i := range buf {
			buf[i] = alphanumeric[p.rng.IntN(len(alphanumeric))]
		}
		left -= length
		if left == 0 {
			buf = append(buf, '\n')
		}
		select {
		case out <- buf:
		case <-done:
			return
		}
	}
}
