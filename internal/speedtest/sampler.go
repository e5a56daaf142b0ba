package speedtest

import "time"

// sample polls the shared counter and reports instantaneous speed until the
// target is reached or the watchdog window elapses. It is pure observation:
// it never writes the counter, never touches a connection, and transfers do
// not depend on it finishing.
//
// A speed observation is emitted only once the accumulated delta exceeds a
// thirty-second of the target, then the window resets. The poll interval
// backs off adaptively to a quarter of the current window age, capped at one
// second.
func (t *Tester) sample(target int64, counter *ByteCounter) {
	if target <= 0 {
		return
	}
	step := target / measureWindows
	start := time.Now()
	var last int64
	lastTime := start
	for {
		cur := counter.Load()
		delta := cur - last
		elapsed := time.Since(lastTime)
		if delta > step {
			s := SpeedSample{Bytes: delta, Transferred: cur, Elapsed: elapsed, Mbps: mbps(delta, elapsed)}
			t.log.Info().Float64("mbps", s.Mbps).Msg("Speed now")
			if t.onSample != nil {
				t.onSample(s)
			}
			last = cur
			lastTime = time.Now()
		}
		if cur >= target || time.Since(start) > t.watchdog {
			return
		}
		pause := elapsed / 4
		if pause > time.Second {
			pause = time.Second
		}
		time.Sleep(pause)
	}
}
