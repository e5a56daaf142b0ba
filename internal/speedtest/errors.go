package speedtest

import "fmt"

// InterruptedError reports a transfer that finished without moving the
// requested number of bytes. Upload interruptions carry the server's
// acknowledgement line, download interruptions the observed byte count.
type InterruptedError struct {
	Op        string // "upload" or "download"
	Requested int64
	Received  int64
	Ack       string
}

func (e *InterruptedError) Error() string {
	if e.Op == "upload" {
		return fmt.Sprintf("upload was interrupted: sent %d bytes but server responded %q", e.Requested, e.Ack)
	}
	return fmt.Sprintf("download was interrupted: requested %d bytes but received %d", e.Requested, e.Received)
}
