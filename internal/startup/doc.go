// Package startup handles configuration loading and the startup/shutdown
// log output of the server.
//
// # Configuration
//
// [LoadConfig] reads a key=value file (CONFIG_FILE, default config.txt) with
// the keys playlist_path, mpv_path and vlc_path. The environment variables
// PLAYLIST_PATH, MPV_PATH and VLC_PATH take precedence over the file. Every
// other setting comes from the environment:
//
//   - BIND_ADDR: listen address (default: 127.0.0.1)
//   - PORT: HTTP server port (default: 8080)
//   - METRICS_PORT: Prometheus metrics server port (default: 9090)
//   - METRICS_ENABLED: enable or disable the metrics server (default: true)
//   - CACHE_DIR: thumbnail cache directory (default: image_cache)
//   - STATIC_DIR: frontend files served under /static (default: static)
//   - IMAGE_FETCH_TIMEOUT: per-request timeout for thumbnail downloads (default: 15s)
//   - IMAGE_FETCH_RATE, IMAGE_FETCH_BURST: outbound thumbnail request rate (default: 20/s, burst 10)
//   - IMAGE_MAX_BYTES: largest accepted thumbnail body (default: 10 MiB)
//   - PLAYER_WORKERS: concurrent player launches, 0 for automatic sizing
//   - LOG_LEVEL, LOG_STATIC_FILES, LOG_HEALTH_CHECKS
//
// MEMORY_LIMIT and MEMORY_RATIO are read separately by the memory package.
//
// A missing playlist or an unwritable cache directory is an error. Missing
// player paths and a missing static directory only produce warnings.
//
// # Lifecycle Logging
//
//   - [LogCatalogLoaded]: playlist parse results
//   - [LogImageCacheInit]: cache directory contents
//   - [LogPlayerInit]: configured players and pool size
//   - [LogHTTPRoutes]: registered HTTP routes (debug level)
//   - [LogServerStarted]: server endpoints and startup duration
//   - [LogShutdownInitiated], [LogShutdownComplete]: graceful shutdown
package startup
