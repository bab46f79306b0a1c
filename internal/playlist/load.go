package playlist

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"playlist-browser/internal/catalog"
	"playlist-browser/internal/filesystem"
	"playlist-browser/internal/httpclient"
	"playlist-browser/internal/logging"
	"playlist-browser/internal/metrics"

	"github.com/andybalholm/brotli"
)

// StatusError is returned by Load when a remote playlist answers with a
// non-200 status.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetching playlist %s: HTTP %d", e.URL, e.Code)
}

// IsRemote reports whether source is fetched over HTTP.
func IsRemote(source string) bool {
	lower := strings.ToLower(source)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// Load reads the playlist at source, which is a local path or an http(s)
// URL, and builds the catalog. Parse statistics are exported as metrics.
func Load(ctx context.Context, source string) (*catalog.Index, Stats, error) {
	start := time.Now()

	body, closeFn, err := open(ctx, source)
	if err != nil {
		return nil, Stats{}, err
	}
	defer closeFn()

	idx, stats, err := ParseCompressed(body)
	if err != nil {
		return nil, stats, fmt.Errorf("parsing playlist %s: %w", source, err)
	}

	elapsed := time.Since(start)
	recordStats(stats, elapsed)
	metrics.CatalogCategories.Set(float64(idx.CategoryCount()))
	metrics.CatalogChannels.Set(float64(idx.ChannelCount()))
	logging.Info("Parsed playlist %s in %v: %d lines, %d channels, %d categories",
		source, elapsed.Round(time.Millisecond), stats.Lines, stats.Channels, idx.CategoryCount())
	if stats.OrphanURLs > 0 {
		logging.Warn("Playlist %s: %d stream URLs without a directive", source, stats.OrphanURLs)
	}

	return idx, stats, nil
}

func open(ctx context.Context, source string) (io.Reader, func() error, error) {
	if IsRemote(source) {
		return fetch(ctx, source)
	}

	f, err := filesystem.OpenWithRetry(source, filesystem.DefaultRetryConfig())
	if err != nil {
		return nil, nil, fmt.Errorf("opening playlist: %w", err)
	}
	return f, f.Close, nil
}

// fetch downloads a remote playlist. Setting Accept-Encoding turns off the
// transport's transparent gzip handling, so both encodings are decoded here.
func fetch(ctx context.Context, url string) (io.Reader, func() error, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("building playlist request: %w", err)
	}
	req.Header.Set("Accept-Encoding", "br, gzip")

	resp, err := httpclient.DoWithRetry(ctx, httpclient.WithTimeout(2*time.Minute), req, httpclient.DefaultRetryPolicy)
	if err != nil {
		return nil, nil, fmt.Errorf("fetching playlist: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, nil, &StatusError{URL: url, Code: resp.StatusCode}
	}

	switch strings.ToLower(resp.Header.Get("Content-Encoding")) {
	case "br":
		return brotli.NewReader(resp.Body), resp.Body.Close, nil
	case "gzip":
		gzr, err := gzip.NewReader(resp.Body)
		if err != nil {
			resp.Body.Close()
			return nil, nil, fmt.Errorf("decoding gzip playlist: %w", err)
		}
		return gzr, func() error {
			gzr.Close()
			return resp.Body.Close()
		}, nil
	}
	return resp.Body, resp.Body.Close, nil
}

func recordStats(s Stats, elapsed time.Duration) {
	metrics.PlaylistLinesTotal.WithLabelValues("directive").Add(float64(s.Directives))
	metrics.PlaylistLinesTotal.WithLabelValues("channel").Add(float64(s.Channels))
	metrics.PlaylistLinesTotal.WithLabelValues("orphan_url").Add(float64(s.OrphanURLs))
	other := s.Lines - s.Directives - s.Channels - s.OrphanURLs
	metrics.PlaylistLinesTotal.WithLabelValues("other").Add(float64(max(other, 0)))
	metrics.PlaylistLoadDuration.Set(elapsed.Seconds())
}
