package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "playlist_browser_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "playlist_browser_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "playlist_browser_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Catalog metrics
var (
	CatalogCategories = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "playlist_browser_catalog_categories",
			Help: "Number of categories in the loaded catalog",
		},
	)

	CatalogChannels = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "playlist_browser_catalog_channels",
			Help: "Number of channels in the loaded catalog",
		},
	)

	PlaylistLinesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "playlist_browser_playlist_lines_total",
			Help: "Playlist lines seen while parsing, by classification",
		},
		[]string{"kind"}, // "directive", "channel", "orphan_url", "other"
	)

	PlaylistLoadDuration = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "playlist_browser_playlist_load_duration_seconds",
			Help: "Time taken to load and parse the playlist at startup",
		},
	)
)

// Image cache metrics
var (
	ImageCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "playlist_browser_image_cache_lookups_total",
			Help: "Image cache lookups by result",
		},
		[]string{"result"}, // "hit", "miss", "placeholder"
	)

	ImageFetchFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "playlist_browser_image_fetch_failures_total",
			Help: "Failed remote thumbnail fetches by reason",
		},
		[]string{"reason"},
	)

	ImageFetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "playlist_browser_image_fetch_duration_seconds",
			Help:    "Remote thumbnail fetch duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15, 30},
		},
	)

	ImageCacheFiles = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "playlist_browser_image_cache_files",
			Help: "Number of thumbnails stored in the cache directory",
		},
	)

	ImageCacheBytes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "playlist_browser_image_cache_size_bytes",
			Help: "Total size of the cache directory in bytes",
		},
	)

	ThumbnailResizeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "playlist_browser_thumbnail_resize_duration_seconds",
			Help:    "Time to decode, resize and encode a cached thumbnail",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
	)
)

// Player metrics
var (
	PlayerLaunchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "playlist_browser_player_launches_total",
			Help: "Player launches by player and outcome",
		},
		[]string{"player", "outcome"},
	)

	PlayerLaunchesInProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "playlist_browser_player_launches_in_progress",
			Help: "Number of player processes currently running",
		},
	)

	PlayerSessionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "playlist_browser_player_session_duration_seconds",
			Help:    "Time from spawn to exit of a player process",
			Buckets: []float64{1, 10, 60, 300, 900, 1800, 3600, 7200, 14400},
		},
		[]string{"player"},
	)
)

// Filesystem metrics
var (
	FilesystemOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "playlist_browser_filesystem_operation_duration_seconds",
			Help:    "Filesystem operation duration by volume and operation",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"volume", "operation"},
	)

	FilesystemOperationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "playlist_browser_filesystem_operation_errors_total",
			Help: "Filesystem operation errors by volume and operation",
		},
		[]string{"volume", "operation"},
	)

	FilesystemRetryAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "playlist_browser_filesystem_retry_attempts_total",
			Help: "Retries issued after a stale file handle",
		},
		[]string{"operation", "volume"},
	)

	FilesystemRetrySuccess = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "playlist_browser_filesystem_retry_success_total",
			Help: "Operations that succeeded after at least one retry",
		},
		[]string{"operation", "volume"},
	)

	FilesystemRetryFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "playlist_browser_filesystem_retry_failures_total",
			Help: "Operations that still failed after exhausting retries",
		},
		[]string{"operation", "volume"},
	)

	FilesystemRetryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "playlist_browser_filesystem_retry_duration_seconds",
			Help:    "Total duration of retried filesystem operations",
			Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2},
		},
		[]string{"operation", "volume"},
	)

	FilesystemStaleErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "playlist_browser_filesystem_stale_errors_total",
			Help: "Stale file handle errors observed",
		},
		[]string{"operation", "volume"},
	)
)

// Application info metric
var (
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "playlist_browser_app_info",
			Help: "Application information",
		},
		[]string{"version", "commit", "go_version"},
	)
)

// SetAppInfo sets the application info metric
func SetAppInfo(version, commit, goVersion string) {
	AppInfo.WithLabelValues(version, commit, goVersion).Set(1)
}
