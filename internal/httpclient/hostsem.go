package httpclient

import (
	"net/url"
	"sync"
)

// HostSemaphore limits concurrent requests per upstream host. Playlists
// often point every logo at the same CDN, and an uncached category page
// would otherwise open dozens of connections to it at once.
//
//	release := sem.Acquire(rawURL)
//	defer release()
type HostSemaphore struct {
	mu    sync.Mutex
	sems  map[string]chan struct{}
	limit int
}

// NewHostSemaphore returns a limiter allowing concurrency requests per host.
func NewHostSemaphore(concurrency int) *HostSemaphore {
	if concurrency < 1 {
		concurrency = 1
	}
	return &HostSemaphore{
		sems:  make(map[string]chan struct{}),
		limit: concurrency,
	}
}

// Acquire blocks until a slot is free for the host of rawURL and returns
// the release func.
func (h *HostSemaphore) Acquire(rawURL string) func() {
	sem := h.semFor(hostKey(rawURL))
	sem <- struct{}{}
	return func() { <-sem }
}

// Limit returns the per-host concurrency.
func (h *HostSemaphore) Limit() int {
	return h.limit
}

func (h *HostSemaphore) semFor(host string) chan struct{} {
	h.mu.Lock()
	defer h.mu.Unlock()
	s, ok := h.sems[host]
	if !ok {
		s = make(chan struct{}, h.limit)
		h.sems[host] = s
	}
	return s
}

func hostKey(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return rawURL
	}
	return u.Scheme + "://" + u.Host
}
