package util

import (
	"context"
	"net/url"
	"strings"
	"sync"

	"golang.org/x/time/rate"
)

// HostLimiter hands out one token bucket per host so that the fetcher and
// the endpoint probe never hammer a single careers site.
type HostLimiter struct {
	mu    sync.Mutex
	hosts map[string]*rate.Limiter
	r     rate.Limit
	b     int
}

func NewHostLimiter(reqPerSec float64, burst int) *HostLimiter {
	if burst < 1 {
		burst = 1
	}
	return &HostLimiter{
		hosts: make(map[string]*rate.Limiter),
		r:     rate.Limit(reqPerSec),
		b:     burst,
	}
}

func (hl *HostLimiter) limiterFor(host string) *rate.Limiter {
	host = strings.ToLower(host)

	hl.mu.Lock()
	defer hl.mu.Unlock()

	if lim, ok := hl.hosts[host]; ok {
		return lim
	}
	lim := rate.NewLimiter(hl.r, hl.b)
	hl.hosts[host] = lim
	return lim
}

// WaitURL blocks until the URL's host may be hit again or ctx is done.
func (hl *HostLimiter) WaitURL(ctx context.Context, raw string) error {
	host := "_"
	if u, err := url.Parse(raw); err == nil && u.Host != "" {
		host = u.Host
	}
	return hl.limiterFor(host).Wait(ctx)
}
