package server

import (
	"net"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/time/rate"
)

// clientLimiter applies a token bucket per client address.
type clientLimiter struct {
	clients map[uint64]*limitedClient
	limit   rate.Limit
	burst   int
	idle    time.Duration
	mu      sync.Mutex
}

type limitedClient struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newClientLimiter(count int, window, idle time.Duration) *clientLimiter {
	if idle <= 0 {
		idle = 10 * time.Minute
	}

	return &clientLimiter{
		clients: make(map[uint64]*limitedClient),
		limit:   rate.Limit(float64(count) / window.Seconds()),
		burst:   count,
		idle:    idle,
	}
}

// allow reports whether ip may send another datagram now.
func (l *clientLimiter) allow(ip net.IP) bool {
	key := clientKey(ip)
	now := time.Now()

	l.mu.Lock()
	cli, found := l.clients[key]
	if !found {
		cli = &limitedClient{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[key] = cli
	}
	cli.lastSeen = now
	limiter := cli.limiter
	l.mu.Unlock()

	return limiter.AllowN(now, 1)
}

// clientKey hashes the 16-byte form so IPv4 and IPv4-mapped IPv6 share a bucket.
func clientKey(ip net.IP) uint64 {
	if v16 := ip.To16(); v16 != nil {
		return xxhash.Sum64(v16)
	}

	return xxhash.Sum64(ip)
}

// sweep forgets clients idle for longer than the idle period.
func (l *clientLimiter) sweep(now time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for key, c := range l.clients {
		if now.Sub(c.lastSeen) > l.idle {
			delete(l.clients, key)
			removed++
		}
	}

	return removed
}

func (l *clientLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.clients)
}

// gc periodically sweeps idle clients until shutdown is closed.
func (l *clientLimiter) gc(shutdown <-chan struct{}) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-shutdown:
			return
		case now := <-ticker.C:
			l.sweep(now)
		}
	}
}
