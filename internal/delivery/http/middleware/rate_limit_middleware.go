package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"vetclinic-portal/config"
	"vetclinic-portal/pkg/response"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const (
	limiterIdleTimeout   = 10 * time.Minute
	limiterSweepInterval = time.Minute
)

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimitMiddleware limits requests per client IP. Forwarding headers are
// only honoured with TrustProxy set.
type RateLimitMiddleware struct {
	mu         sync.Mutex
	limiters   map[string]*clientLimiter
	limit      rate.Limit
	burst      int
	trustProxy bool
	log        *logrus.Logger
	now        func() time.Time

	stopChan chan struct{}
	wg       sync.WaitGroup
	stopped  atomic.Bool
}

// NewRateLimitMiddleware returns nil when RPS is not positive; a nil
// middleware passes every request through. Otherwise it starts the idle
// limiter sweep; call Stop during graceful shutdown.
func NewRateLimitMiddleware(cfg config.RateLimitConfig, log *logrus.Logger) *RateLimitMiddleware {
	m := newRateLimitMiddleware(cfg, log)
	if m == nil {
		return nil
	}
	m.wg.Add(1)
	go m.sweepLoop()
	return m
}

func newRateLimitMiddleware(cfg config.RateLimitConfig, log *logrus.Logger) *RateLimitMiddleware {
	if cfg.RPS <= 0 {
		return nil
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &RateLimitMiddleware{
		limiters:   make(map[string]*clientLimiter),
		limit:      rate.Limit(cfg.RPS),
		burst:      burst,
		trustProxy: cfg.TrustProxy,
		log:        log,
		now:        time.Now,
		stopChan:   make(chan struct{}),
	}
}

// Stop halts the sweep. Safe to call multiple times and on nil.
func (m *RateLimitMiddleware) Stop() {
	if m == nil {
		return
	}
	if m.stopped.CompareAndSwap(false, true) {
		close(m.stopChan)
		m.wg.Wait()
	}
}

func (m *RateLimitMiddleware) sweepLoop() {
	defer m.wg.Done()

	ticker := time.NewTicker(limiterSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stopChan:
			return
		case <-ticker.C:
			m.sweep()
		}
	}
}

// sweep drops limiters idle past limiterIdleTimeout.
func (m *RateLimitMiddleware) sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	dropped := 0
	for key, e := range m.limiters {
		if now.Sub(e.lastSeen) > limiterIdleTimeout {
			delete(m.limiters, key)
			dropped++
		}
	}
	if dropped > 0 {
		m.log.Debugf("Dropped %d idle rate limiters", dropped)
	}
	return dropped
}

func (m *RateLimitMiddleware) getLimiter(ip string) *rate.Limiter {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.limiters[ip]
	if !exists {
		entry = &clientLimiter{limiter: rate.NewLimiter(m.limit, m.burst)}
		m.limiters[ip] = entry
	}
	entry.lastSeen = m.now()
	return entry.limiter
}

func (m *RateLimitMiddleware) Handle(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r, m.trustProxy)
		if !m.getLimiter(ip).Allow() {
			m.log.Warnf("Rate limit exceeded: ip=%s, path=%s", ip, r.URL.Path)
			response.TooManyRequests(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP is the peer address, or the first forwarded address when the
// proxy in front is trusted.
func clientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
			if ip := strings.TrimSpace(strings.Split(fwd, ",")[0]); ip != "" {
				return ip
			}
		}
		if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
