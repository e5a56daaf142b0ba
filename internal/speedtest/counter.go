package speedtest

import "sync/atomic"

// ByteCounter is the shared transferred-byte total for one transfer. Every
// executor of a transfer adds to the same counter and the live sampler reads
// it concurrently. The value only ever grows; a fresh counter is constructed
// per transfer.
type ByteCounter struct {
	n atomic.Int64
}

func NewByteCounter() *ByteCounter {
	return &ByteCounter{}
}

func (c *ByteCounter) Add(n int64) {
	c.n.Add(n)
}

func (c *ByteCounter) Load() int64 {
	return c.n.Load()
}
