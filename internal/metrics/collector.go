package metrics

import (
	"time"

	"playlist-browser/internal/logging"
)

// StatsProvider reports the current size of the image cache.
type StatsProvider interface {
	GetStats() Stats
}

// Stats holds the values refreshed on every collection tick.
type Stats struct {
	CachedImages int
	CachedBytes  int64
}

// Collector periodically refreshes gauges that cannot be updated inline,
// such as the on-disk size of the image cache.
type Collector struct {
	statsProvider StatsProvider
	interval      time.Duration
	stopChan      chan struct{}
}

// NewCollector creates a new metrics collector
func NewCollector(provider StatsProvider, interval time.Duration) *Collector {
	return &Collector{
		statsProvider: provider,
		interval:      interval,
		stopChan:      make(chan struct{}),
	}
}

// Start begins the metrics collection loop
func (c *Collector) Start() {
	go c.collectLoop()
}

// Stop stops the metrics collection
func (c *Collector) Stop() {
	close(c.stopChan)
}

func (c *Collector) collectLoop() {
	c.collect()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.collect()
		case <-c.stopChan:
			return
		}
	}
}

func (c *Collector) collect() {
	if c.statsProvider == nil {
		return
	}

	stats := c.statsProvider.GetStats()

	ImageCacheFiles.Set(float64(stats.CachedImages))
	ImageCacheBytes.Set(float64(stats.CachedBytes))

	logging.Debug("Metrics collected: cached_images=%d, cached_bytes=%d", stats.CachedImages, stats.CachedBytes)
}
