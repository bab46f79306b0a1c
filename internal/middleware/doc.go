// Package middleware provides the HTTP middleware chain of the server:
// W3C access logging, Prometheus request metrics and response compression
// (brotli or gzip).
package middleware
