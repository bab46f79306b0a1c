package imagecache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"playlist-browser/internal/catalog"
	"playlist-browser/internal/filesystem"
	"playlist-browser/internal/httpclient"
	"playlist-browser/internal/logging"
	"playlist-browser/internal/metrics"
	"playlist-browser/internal/workers"

	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

const (
	// PublicPrefix is the URL path cached files are served under.
	PublicPrefix = "/image_cache/"

	DefaultMaxBytes = 10 << 20
	fileExt         = ".jpg"
)

var entryName = regexp.MustCompile(`^[0-9a-f]{64}\.jpg$`)

// Options configures a Cache. Zero values select defaults.
type Options struct {
	Dir string
	// Client defaults to httpclient.Default().
	Client   *http.Client
	MaxBytes int64
	// Rate limits outbound fetches per second. Zero or less disables pacing.
	Rate  float64
	Burst int
	// PerHost caps concurrent fetches to one host. Defaults to two per CPU,
	// at most httpclient.MaxIdleConnsPerHost.
	PerHost int
	// ResizeWorkers caps concurrent Thumbnail calls. Defaults to one per CPU.
	ResizeWorkers int
}

// Cache is safe for concurrent use.
type Cache struct {
	dir      string
	client   *http.Client
	maxBytes int64
	limiter  *rate.Limiter
	hosts    *httpclient.HostSemaphore
	group    singleflight.Group
	resize   chan struct{}
	retry    filesystem.RetryConfig
}

// New creates the cache directory if needed and verifies it is writable.
func New(opts Options) (*Cache, error) {
	if opts.Dir == "" {
		return nil, fmt.Errorf("image cache directory not set")
	}
	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating image cache directory: %w", err)
	}
	probe, err := os.CreateTemp(opts.Dir, ".probe-*")
	if err != nil {
		return nil, fmt.Errorf("image cache directory not writable: %w", err)
	}
	probe.Close()
	os.Remove(probe.Name())

	c := &Cache{
		dir:      opts.Dir,
		client:   opts.Client,
		maxBytes: opts.MaxBytes,
		limiter:  rate.NewLimiter(rate.Inf, 0),
		hosts:    httpclient.NewHostSemaphore(workers.ForIO(opts.PerHost, httpclient.MaxIdleConnsPerHost)),
		resize:   make(chan struct{}, workers.ForCPU(opts.ResizeWorkers, 0)),
		retry:    filesystem.DefaultRetryConfig(),
	}
	if c.client == nil {
		c.client = httpclient.Default()
	}
	if c.maxBytes <= 0 {
		c.maxBytes = DefaultMaxBytes
	}
	if opts.Rate > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(opts.Rate), max(opts.Burst, 1))
	}
	logging.Debug("Image cache: %d fetches per host, %d concurrent resizes", c.hosts.Limit(), cap(c.resize))
	return c, nil
}

// Dir returns the cache directory.
func (c *Cache) Dir() string {
	return c.dir
}

// Key returns the cache key for a source URL.
func Key(url string) string {
	sum := sha256.Sum256([]byte(url))
	return hex.EncodeToString(sum[:])
}

// PublicPath returns the URL path a cached file is served under.
func PublicPath(key string) string {
	return PublicPrefix + key + fileExt
}

// Path returns where the entry for url lives on disk.
func (c *Cache) Path(url string) string {
	return filepath.Join(c.dir, Key(url)+fileExt)
}

// Fetch returns the local path of the cached copy of url, downloading it
// first when absent. Nothing is written unless the download is a non-empty
// image within the size limit.
func (c *Cache) Fetch(ctx context.Context, url string) (string, error) {
	path := c.Path(url)
	if _, err := filesystem.StatWithRetry(path, c.retry); err == nil {
		metrics.ImageCacheLookups.WithLabelValues("hit").Inc()
		return path, nil
	}
	metrics.ImageCacheLookups.WithLabelValues("miss").Inc()

	_, err, _ := c.group.Do(path, func() (interface{}, error) {
		// another caller may have finished while we waited
		if _, err := filesystem.StatWithRetry(path, c.retry); err == nil {
			return nil, nil
		}
		err := c.download(ctx, url, path)
		if err != nil {
			metrics.ImageFetchFailures.WithLabelValues(failureReason(err)).Inc()
		}
		return nil, err
	})
	if err != nil {
		return "", err
	}
	return path, nil
}

// Resolve returns the public path for a channel logo. Empty or placeholder
// input and any fetch failure yield the placeholder.
func (c *Cache) Resolve(ctx context.Context, url string) string {
	if url == "" || url == catalog.PlaceholderIcon {
		metrics.ImageCacheLookups.WithLabelValues("placeholder").Inc()
		return catalog.PlaceholderIcon
	}

	// Fetches are not tied to the request lifetime.
	if _, err := c.Fetch(context.WithoutCancel(ctx), url); err != nil {
		logging.Warn("Image cache: %s: %v", url, err)
		return catalog.PlaceholderIcon
	}
	return PublicPath(Key(url))
}

func (c *Cache) download(ctx context.Context, url, path string) error {
	lower := strings.ToLower(url)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		return ErrUnsupportedURL
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	release := c.hosts.Acquire(url)
	defer release()

	start := time.Now()
	data, err := c.get(ctx, url)
	metrics.ImageFetchDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return err
	}

	if err := c.store(path, data); err != nil {
		return fmt.Errorf("%w: %v", errWrite, err)
	}
	logging.Debug("Image cache: stored %s (%d bytes) as %s", url, len(data), filepath.Base(path))
	return nil
}

func (c *Cache) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "image/*")

	resp, err := httpclient.DoWithRetry(ctx, c.client, req, httpclient.DefaultRetryPolicy)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Code: resp.StatusCode}
	}

	declared := resp.Header.Get("Content-Type")
	if declared != "" && !isImageType(declared) {
		return nil, fmt.Errorf("%w: %s", ErrNotImage, declared)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > c.maxBytes {
		return nil, ErrTooLarge
	}
	if len(data) == 0 {
		return nil, ErrEmptyBody
	}
	if declared == "" {
		if sniffed := http.DetectContentType(data); !isImageType(sniffed) {
			return nil, fmt.Errorf("%w: sniffed %s", ErrNotImage, sniffed)
		}
	}
	return data, nil
}

// store writes data next to path and renames it into place.
func (c *Cache) store(path string, data []byte) error {
	tmp, err := os.CreateTemp(c.dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		logging.Debug("Image cache: chmod %s: %v", tmpName, err)
	}
	if err := filesystem.RenameWithRetry(tmpName, path, c.retry); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

func isImageType(contentType string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(contentType)), "image/")
}

// Open returns a cached file by entry name. Names that are not
// <64 hex>.jpg are rejected before touching the filesystem.
func (c *Cache) Open(filename string) (*os.File, os.FileInfo, error) {
	if !entryName.MatchString(filename) {
		return nil, nil, ErrInvalidName
	}
	f, err := filesystem.OpenWithRetry(filepath.Join(c.dir, filename), c.retry)
	if err != nil {
		return nil, nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	return f, info, nil
}

// GetStats counts cache entries and their total size.
func (c *Cache) GetStats() metrics.Stats {
	var s metrics.Stats
	entries, err := filesystem.ReadDirWithRetry(c.dir, c.retry)
	if err != nil {
		logging.Warn("Image cache: listing %s: %v", c.dir, err)
		return s
	}
	for _, e := range entries {
		if !entryName.MatchString(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		s.CachedImages++
		s.CachedBytes += info.Size()
	}
	return s
}
