package speedtest

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// The bandwidth-test server speaks a line-oriented text handshake: commands
// are CRLF-terminated, acknowledgements are a single line. Payload framing is
// raw bytes with a trailing '\n' sentinel, no length prefix.
const (
	pingHandshake = "PING \r\n"
	hiHandshake   = "HI\r\n"
)

func uploadHandshake(bytes int64) string {
	return fmt.Sprintf("UPLOAD %d 0\r\n", bytes)
}

func downloadHandshake(bytes int64) string {
	return fmt.Sprintf("DOWNLOAD %d\r\n", bytes)
}

// readAck blocks until the server's single-line acknowledgement is available
// and returns it verbatim. A line cut short by connection close still counts
// as an acknowledgement.
func readAck(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err == io.EOF && line != "" {
		return line, nil
	}
	if err != nil {
		return "", fmt.Errorf("error reading server response: %v", err)
	}
	return line, nil
}

// checkUploadAck validates the acknowledgement for an upload of the given
// size. Deployed servers echo the byte count embedded in a longer line, so
// this is a containment check rather than an exact match.
func checkUploadAck(line string, bytes int64) error {
	if !strings.Contains(line, strconv.FormatInt(bytes, 10)) {
		return &InterruptedError{Op: "upload", Requested: bytes, Ack: line}
	}
	return nil
}
