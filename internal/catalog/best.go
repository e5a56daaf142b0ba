package catalog

import (
	"errors"
	"net"
	"slices"
	"sort"
	"time"

	"github.com/rs/zerolog"
)

// nearestCandidates bounds how many distance-ranked servers get pinged.
const nearestCandidates = 4

// unreachableLatency ranks servers that refuse a connection behind every
// reachable one.
const unreachableLatency = time.Duration(1<<63 - 1)

// Pinger measures round-trip latency to a host. *speedtest.Tester satisfies
// it.
type Pinger interface {
	Dial(host string) (net.Conn, error)
	Ping(conn net.Conn) (time.Duration, error)
}

// Best pings the nearest few servers and returns the one answering fastest.
// The input is not modified.
func Best(p Pinger, servers []Server, log zerolog.Logger) (Server, error) {
	if len(servers) == 0 {
		return Server{}, errors.New("no servers available")
	}
	log.Info().Msg("Finding best server")
	candidates := slices.Clone(servers)
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Distance < candidates[j].Distance
	})
	if len(candidates) > nearestCandidates {
		candidates = candidates[:nearestCandidates]
	}
	for i := range candidates {
		s := &candidates[i]
		log.Info().Str("sponsor", s.Sponsor).Str("host", s.Host).Msg("Pinging server")
		s.Latency = measure(p, s.Host)
		if s.Latency == unreachableLatency {
			log.Warn().Str("host", s.Host).Msg("Server unreachable")
		} else {
			log.Info().Str("sponsor", s.Sponsor).Dur("latency", s.Latency).Msg("Ping result")
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Latency < candidates[j].Latency
	})
	best := candidates[0]
	if best.Latency == unreachableLatency {
		return Server{}, errors.New("no server reachable")
	}
	log.Info().Str("sponsor", best.Sponsor).Str("host", best.Host).Msg("Selected best server")
	return best, nil
}

func measure(p Pinger, host string) time.Duration {
	conn, err := p.Dial(host)
	if err != nil {
		return unreachableLatency
	}
	defer conn.Close()
	latency, err := p.Ping(conn)
	if err != nil {
		return unreachableLatency
	}
	return latency
}
