// Package bwlimit gates outbound replicated frame bytes per peer so one
// client's full-snapshot storm cannot starve another's delta traffic.
package bwlimit

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// Limiter holds one token-bucket rate.Limiter per peer, all configured
// with the same byte-per-second rate and burst size.
type Limiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rateVal  rate.Limit
	burst    int
}

// NewLimiter returns a Limiter allowing bytesPerSec sustained throughput
// per peer with up to burst bytes released at once.
func NewLimiter(bytesPerSec float64, burst int) *Limiter {
	return &Limiter{
		limiters: make(map[string]*rate.Limiter),
		rateVal:  rate.Limit(bytesPerSec),
		burst:    burst,
	}
}

func (l *Limiter) limiterFor(peerID string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	rl, ok := l.limiters[peerID]
	if !ok {
		rl = rate.NewLimiter(l.rateVal, l.burst)
		l.limiters[peerID] = rl
	}
	return rl
}

// Wait blocks until n bytes are available in peerID's budget, chunking the
// wait if n exceeds the configured burst size — a single WaitN call larger
// than the burst would otherwise always fail.
func (l *Limiter) Wait(ctx context.Context, peerID string, n int) error {
	rl := l.limiterFor(peerID)
	for n > 0 {
		chunk := n
		if chunk > l.burst {
			chunk = l.burst
		}
		if err := rl.WaitN(ctx, chunk); err != nil {
			return err
		}
		n -= chunk
	}
	return nil
}

// Forget drops a peer's limiter state, for use once it disconnects.
func (l *Limiter) Forget(peerID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.limiters, peerID)
}
