package api

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// rateLimiterMap keeps one token bucket per caller and drops idle ones.
type rateLimiterMap struct {
	mu       sync.Mutex
	limiters map[string]*callerLimiter
	now      func() time.Time
	done     chan struct{}
	once     sync.Once
}

type callerLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newRateLimiterMap() *rateLimiterMap {
	m := &rateLimiterMap{
		limiters: make(map[string]*callerLimiter),
		now:      time.Now,
		done:     make(chan struct{}),
	}
	go m.cleanupLoop()
	return m
}

// allow spends one token from caller's bucket. The bucket holds perMinute tokens
// and regains one per minute, so no rolling minute admits more than perMinute.
func (m *rateLimiterMap) allow(caller string, perMinute int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	l, ok := m.limiters[caller]
	if !ok {
		l = &callerLimiter{limiter: rate.NewLimiter(rate.Every(time.Minute), perMinute)}
		m.limiters[caller] = l
	}
	l.lastSeen = now
	return l.limiter.AllowN(now, 1)
}

// cleanupLoop removes limiters that haven't been used in 5 minutes.
func (m *rateLimiterMap) cleanupLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			m.mu.Lock()
			for k, l := range m.limiters {
				if m.now().Sub(l.lastSeen) > 5*time.Minute {
					delete(m.limiters, k)
				}
			}
			m.mu.Unlock()
		}
	}
}

func (m *rateLimiterMap) stop() {
	m.once.Do(func() { close(m.done) })
}
