package middleware

import (
	"compress/gzip"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/andybalholm/brotli"
)

// CompressionConfig holds configuration for the compression middleware
type CompressionConfig struct {
	// MinSize is the minimum response size in bytes before compression is applied
	MinSize int
	// Brotli enables br when the client prefers or accepts it.
	Brotli bool
	// CompressibleTypes is a list of content types that should be compressed
	CompressibleTypes []string
}

// DefaultCompressionConfig returns sensible defaults for compression
func DefaultCompressionConfig() CompressionConfig {
	return CompressionConfig{
		MinSize: 1024,
		Brotli:  true,
		CompressibleTypes: []string{
			"text/html",
			"text/css",
			"text/plain",
			"text/javascript",
			"application/json",
			"application/javascript",
			"application/x-mpegurl",
			"audio/x-mpegurl",
			"image/svg+xml",
		},
	}
}

// encoder is the common surface of gzip.Writer and brotli.Writer.
type encoder interface {
	io.WriteCloser
	Flush() error
	Reset(io.Writer)
}

const (
	encodingGzip   = "gzip"
	encodingBrotli = "br"
)

var encoderPools = map[string]*sync.Pool{
	encodingGzip: {New: func() interface{} {
		w, _ := gzip.NewWriterLevel(io.Discard, gzip.DefaultCompression)
		return w
	}},
	encodingBrotli: {New: func() interface{} {
		return brotli.NewWriterLevel(io.Discard, brotli.DefaultCompression)
	}},
}

// compressResponseWriter buffers the first MinSize bytes, then decides
// whether to encode the response.
type compressResponseWriter struct {
	http.ResponseWriter
	encoding       string
	encoder        encoder
	config         CompressionConfig
	buffer         []byte
	statusCode     int
	headerWritten  bool
	shouldCompress bool
}

func newCompressResponseWriter(w http.ResponseWriter, encoding string, config CompressionConfig) *compressResponseWriter {
	return &compressResponseWriter{
		ResponseWriter: w,
		encoding:       encoding,
		config:         config,
		statusCode:     http.StatusOK,
		buffer:         make([]byte, 0, config.MinSize+1),
	}
}

// WriteHeader captures the status code
func (g *compressResponseWriter) WriteHeader(statusCode int) {
	if g.headerWritten {
		return
	}
	g.statusCode = statusCode
}

// Write buffers data until we know if we should compress
func (g *compressResponseWriter) Write(data []byte) (int, error) {
	if g.headerWritten {
		if g.encoder != nil {
			return g.encoder.Write(data)
		}
		return g.ResponseWriter.Write(data)
	}

	g.buffer = append(g.buffer, data...)
	if len(g.buffer) > g.config.MinSize {
		g.finalize()
	}

	return len(data), nil
}

func (g *compressResponseWriter) shouldCompressContentType() bool {
	contentType := g.Header().Get("Content-Type")
	if contentType == "" {
		return false
	}

	mediaType := strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))

	for _, compressible := range g.config.CompressibleTypes {
		if mediaType == compressible {
			return true
		}
	}

	return false
}

// finalize decides whether to compress and writes the buffered data
func (g *compressResponseWriter) finalize() {
	if g.headerWritten {
		return
	}
	g.headerWritten = true

	g.shouldCompress = len(g.buffer) >= g.config.MinSize &&
		g.Header().Get("Content-Encoding") == "" &&
		g.statusCode != http.StatusNoContent &&
		g.statusCode != http.StatusNotModified &&
		g.shouldCompressContentType()

	if g.shouldCompress {
		g.Header().Del("Content-Length")
		g.Header().Set("Content-Encoding", g.encoding)
		g.Header().Add("Vary", "Accept-Encoding")

		g.encoder = encoderPools[g.encoding].Get().(encoder)
		g.encoder.Reset(g.ResponseWriter)

		g.ResponseWriter.WriteHeader(g.statusCode)
		_, _ = g.encoder.Write(g.buffer)
	} else {
		g.ResponseWriter.WriteHeader(g.statusCode)
		_, _ = g.ResponseWriter.Write(g.buffer)
	}

	g.buffer = nil
}

// Close finalizes the response and returns the encoder to its pool
func (g *compressResponseWriter) Close() error {
	if !g.headerWritten {
		g.finalize()
	}

	if g.encoder != nil {
		err := g.encoder.Close()
		encoderPools[g.encoding].Put(g.encoder)
		g.encoder = nil
		return err
	}

	return nil
}

// Flush implements http.Flusher
func (g *compressResponseWriter) Flush() {
	if !g.headerWritten {
		g.finalize()
	}

	if g.encoder != nil {
		_ = g.encoder.Flush()
	}

	if flusher, ok := g.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

// Push implements http.Pusher for HTTP/2 support
func (g *compressResponseWriter) Push(target string, opts *http.PushOptions) error {
	if pusher, ok := g.ResponseWriter.(http.Pusher); ok {
		return pusher.Push(target, opts)
	}
	return http.ErrNotSupported
}

// Compression returns a middleware that compresses responses with brotli or
// gzip, whichever the client accepts, preferring brotli.
func Compression(config CompressionConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			encoding := negotiateEncoding(r.Header.Get("Accept-Encoding"), config.Brotli)
			if encoding == "" || r.Header.Get("Upgrade") != "" || r.Method == http.MethodHead {
				next.ServeHTTP(w, r)
				return
			}

			cw := newCompressResponseWriter(w, encoding, config)
			defer cw.Close()

			next.ServeHTTP(cw, r)
		})
	}
}

// negotiateEncoding picks br or gzip from an Accept-Encoding header. Codings
// with q=0 are refused. Returns "" when neither is acceptable.
func negotiateEncoding(header string, allowBrotli bool) string {
	accepted := make(map[string]bool)
	for _, part := range strings.Split(header, ",") {
		name, params, _ := strings.Cut(strings.TrimSpace(part), ";")
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		accepted[name] = qualityOf(params) > 0
	}

	switch {
	case allowBrotli && accepted[encodingBrotli]:
		return encodingBrotli
	case accepted[encodingGzip]:
		return encodingGzip
	}
	return ""
}

func qualityOf(params string) float64 {
	for _, p := range strings.Split(params, ";") {
		k, v, ok := strings.Cut(strings.TrimSpace(p), "=")
		if !ok || strings.TrimSpace(k) != "q" {
			continue
		}
		q, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0
		}
		return q
	}
	return 1
}
