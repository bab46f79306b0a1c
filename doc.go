// Command playlist-browser serves an M3U playlist over HTTP.
//
// At startup the playlist is parsed once into an immutable catalog. The
// server then exposes a JSON API for the category listing, category pages
// and channel search, resolves channel logos through a local image cache,
// and launches mpv or VLC for a chosen stream.
//
// # Application Lifecycle
//
//  1. Configuration Loading: config.txt and environment variables
//  2. Catalog: the playlist is loaded (local path or http(s) URL) and indexed
//  3. Image Cache: the cache directory is opened and its size reported
//  4. Player Launcher: a bounded pool runs player processes
//  5. HTTP Server Setup: routes, middleware, metrics server
//  6. Graceful Shutdown: SIGINT/SIGTERM stop the servers; running players
//     are left open
//
// See the startup package for the configuration reference.
package main
