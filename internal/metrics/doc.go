// Package metrics provides Prometheus instrumentation for the playlist browser.
//
// All collectors are registered with the default registry through promauto
// and are prefixed with "playlist_browser_".
//
// # Metric Categories
//
// ## HTTP Metrics
//
//   - HTTPRequestsTotal: requests by method, normalized path and status
//   - HTTPRequestDuration: request latency by method and path
//   - HTTPRequestsInFlight: requests currently being served
//
// ## Catalog Metrics
//
// Set once after the playlist is parsed at startup:
//   - CatalogCategories, CatalogChannels: size of the loaded catalog
//   - PlaylistLinesTotal: parsed lines by kind
//   - PlaylistLoadDuration: load and parse time
//
// ## Image Cache Metrics
//
//   - ImageCacheLookups: hit, miss or placeholder
//   - ImageFetchFailures: failed fetches by reason
//   - ImageFetchDuration: remote fetch latency
//   - ImageCacheFiles, ImageCacheBytes: refreshed by the Collector
//   - ThumbnailResizeDuration: on-demand resize latency
//
// ## Player Metrics
//
//   - PlayerLaunchesTotal: launches by player and outcome
//   - PlayerLaunchesInProgress: player processes still running
//   - PlayerSessionDuration: spawn to exit time
//
// ## Filesystem Metrics
//
// Recorded through the filesystem.Observer returned by NewFilesystemObserver:
// operation latency, errors, stale handle retries and their outcome.
//
// # Usage
//
// The metrics endpoint is served on its own port:
//
//	http.Handle("/metrics", promhttp.Handler())
//
// Call InitializeMetrics once at startup so that labelled series exist
// before the first event.
package metrics
