// Package handlers provides the HTTP handlers of the playlist browser.
//
// It includes handlers for:
//   - Category listing, category pages and channel search (JSON)
//   - Thumbnail resolution through the image cache and cached image serving
//   - Launching an external player for a stream
//   - Health, readiness and version probes
//   - The static frontend
//
// Routes are registered with UseEncodedPath, so path variables arrive
// percent-encoded and are decoded by the handlers.
package handlers
