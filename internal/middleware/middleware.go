package middleware

import (
	"log"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/ThreatAtlas/atlas-backend/internal/utils"
	"golang.org/x/time/rate"
)

// DefaultBodyLimit caps write request bodies.
const DefaultBodyLimit = 64 << 10

func isWrite(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

// CORS echoes the origin back only when it is on the allow-list.
func CORS(origins []string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		allowed[o] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			if _, ok := allowed[origin]; ok {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Vary", "Origin")
				w.Header().Set("Access-Control-Allow-Credentials", "true")
				w.Header().Set("Access-Control-Allow-Methods",
					"GET, POST, PUT, PATCH, DELETE, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers",
					"Content-Type, Authorization")
			}

			w.Header().Set("Access-Control-Expose-Headers", "Retry-After, X-Request-Id")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// BodyLimit caps the body of write requests at n bytes.
func BodyLimit(n int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isWrite(r.Method) && r.Body != nil {
				if r.ContentLength > n {
					http.Error(w, "Request body too large", http.StatusRequestEntityTooLarge)
					return
				}
				r.Body = http.MaxBytesReader(w, r.Body, n)
			}
			next.ServeHTTP(w, r)
		})
	}
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// WriteLimiter gives every client its own token bucket for write requests.
// Reads are never limited.
type WriteLimiter struct {
	perMinute int
	idle      time.Duration
	now       func() time.Time

	mu      sync.Mutex
	clients map[string]*clientLimiter
}

func NewWriteLimiter(perMinute int) *WriteLimiter {
	return &WriteLimiter{
		perMinute: perMinute,
		idle:      10 * time.Minute,
		now:       time.Now,
		clients:   make(map[string]*clientLimiter),
	}
}

// reserve returns how long the client must wait, or zero when the request may
// proceed now.
func (l *WriteLimiter) reserve(client string) time.Duration {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	l.prune(now)
	c, ok := l.clients[client]
	if !ok {
		every := time.Minute / time.Duration(l.perMinute)
		c = &clientLimiter{limiter: rate.NewLimiter(rate.Every(every), l.perMinute)}
		l.clients[client] = c
	}
	c.lastSeen = now

	res := c.limiter.ReserveN(now, 1)
	if delay := res.DelayFrom(now); delay > 0 {
		res.CancelAt(now)
		return delay
	}
	return 0
}

// prune expects mu to be held.
func (l *WriteLimiter) prune(now time.Time) {
	for id, c := range l.clients {
		if now.Sub(c.lastSeen) > l.idle {
			delete(l.clients, id)
		}
	}
}

func (l *WriteLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		client := utils.ClientID(r)
		r = r.WithContext(utils.WithClientID(r.Context(), client))

		if !isWrite(r.Method) || l.perMinute <= 0 {
			next.ServeHTTP(w, r)
			return
		}

		if wait := l.reserve(client); wait > 0 {
			secs := int(math.Ceil(wait.Seconds()))
			log.Printf("[ratelimit] client=%s %s %s limited, retry in %ds", client, r.Method, r.URL.Path, secs)
			w.Header().Set("Retry-After", strconv.Itoa(secs))
			http.Error(w, "Too many requests", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}
