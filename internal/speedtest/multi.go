package speedtest

import (
	"errors"
	"fmt"
	"net"
	"sync"
	"time"
)

// UploadMulti splits one upload across conns parallel connections to host and
// returns the aggregate wall-clock throughput in Mbps. The byte budget is
// rounded down to a multiple of conns; the remainder is never transferred.
func (t *Tester) UploadMulti(host string, bytes int64, conns int) (float64, error) {
	return t.multi(host, bytes, conns, t.upload)
}

// DownloadMulti is the download counterpart of UploadMulti.
func (t *Tester) DownloadMulti(host string, bytes int64, conns int) (float64, error) {
	return t.multi(host, bytes, conns, t.download)
}

// multi opens conns independent connections and runs one executor per
// connection against a single shared counter and a single sampler. A failed
// executor never cancels its siblings (each owns an independent socket), but
// any failure makes the whole batch fail once everyone has finished.
func (t *Tester) multi(host string, bytes int64, conns int, run func(net.Conn, int64, *ByteCounter) (float64, error)) (float64, error) {
	if conns < 1 {
		return 0, fmt.Errorf("connection count must be at least 1, got %d", conns)
	}
	effective := bytes / int64(conns) * int64(conns)
	share := effective / int64(conns)
	t.log.Info().Int64("bytes", effective).Int("connections", conns).Msg("Starting parallel transfer")

	counter := NewByteCounter()
	start := time.Now()
	var wg sync.WaitGroup
	errCh := make(chan error, conns)
	started := 0
	for i := range conns {
		conn, err := t.Dial(host)
		if err != nil {
			errCh <- err
			break
		}
		started++
		wg.Add(1)
		go func(id int, conn net.Conn) {
			defer wg.Done()
			defer conn.Close()
			if _, err := run(conn, share, counter); err != nil {
				t.log.Error().Err(err).Int("connection", id).Msg("Transfer failed")
				errCh <- fmt.Errorf("connection %d: %w", id, err)
			}
		}(i+1, conn)
	}
	if started == conns {
		t.sample(effective, counter)
	}
	wg.Wait()
	elapsed := time.Since(start)

	close(errCh)
	var errs []error
	for err := range errCh {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return 0, errors.Join(errs...)
	}
	return mbps(effective, elapsed), nil
}
