package middleware

import (
	"bytes"
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/andybalholm/brotli"
)

func decodeBody(t *testing.T, encoding string, body []byte) string {
	t.Helper()
	var r io.Reader
	switch encoding {
	case "gzip":
		gr, err := gzip.NewReader(bytes.NewReader(body))
		if err != nil {
			t.Fatalf("gzip.NewReader: %v", err)
		}
		defer gr.Close()
		r = gr
	case "br":
		r = brotli.NewReader(bytes.NewReader(body))
	default:
		return string(body)
	}
	out, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("decode %s: %v", encoding, err)
	}
	return string(out)
}

func TestCompressionMiddleware(t *testing.T) {
	large := strings.Repeat(`{"name":"channel"}`, 200)

	tests := []struct {
		name           string
		body           string
		contentType    string
		acceptEncoding string
		wantEncoding   string
	}{
		{"Compresses JSON with gzip", large, "application/json", "gzip", "gzip"},
		{"Prefers brotli", large, "application/json", "gzip, br", "br"},
		{"Honours q=0 for brotli", large, "application/json", "br;q=0, gzip", "gzip"},
		{"Doesn't compress small responses", "small", "application/json", "gzip", ""},
		{"Doesn't compress images", strings.Repeat("data", 500), "image/jpeg", "gzip, br", ""},
		{"Respects client without support", large, "application/json", "", ""},
		{"Ignores unknown codings", large, "application/json", "deflate", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := Compression(DefaultCompressionConfig())(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", tt.contentType)
				w.Write([]byte(tt.body))
			}))

			req := httptest.NewRequest("GET", "/api/categories", http.NoBody)
			if tt.acceptEncoding != "" {
				req.Header.Set("Accept-Encoding", tt.acceptEncoding)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			got := w.Header().Get("Content-Encoding")
			if got != tt.wantEncoding {
				t.Fatalf("Content-Encoding = %q, want %q", got, tt.wantEncoding)
			}
			if body := decodeBody(t, got, w.Body.Bytes()); body != tt.body {
				t.Errorf("decoded body mismatch: got %d bytes, want %d", len(body), len(tt.body))
			}
		})
	}
}

func TestCompressionMultipleWrites(t *testing.T) {
	handler := Compression(DefaultCompressionConfig())(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusCreated)
		for i := 0; i < 100; i++ {
			w.Write([]byte("chunk of text "))
		}
	}))

	req := httptest.NewRequest("GET", "/", http.NoBody)
	req.Header.Set("Accept-Encoding", "gzip")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Errorf("status = %d, want 201", w.Code)
	}
	if w.Header().Get("Content-Encoding") != "gzip" {
		t.Fatalf("expected gzip encoding")
	}
	if body := decodeBody(t, "gzip", w.Body.Bytes()); body != strings.Repeat("chunk of text ", 100) {
		t.Error("decoded body mismatch")
	}
}

func TestCompressionSkipsPreEncoded(t *testing.T) {
	handler := Compression(DefaultCompressionConfig())(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Encoding", "identity")
		w.Write([]byte(strings.Repeat("x", 2048)))
	}))

	req := httptest.NewRequest("GET", "/", http.NoBody)
	req.Header.Set("Accept-Encoding", "gzip")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Header().Get("Content-Encoding") != "identity" || w.Body.Len() != 2048 {
		t.Errorf("pre-encoded response was modified")
	}
}

func TestNegotiateEncoding(t *testing.T) {
	tests := []struct {
		header      string
		allowBrotli bool
		want        string
	}{
		{"", true, ""},
		{"gzip", true, "gzip"},
		{"br", true, "br"},
		{"br", false, ""},
		{"gzip, deflate, br", true, "br"},
		{"gzip, deflate, br", false, "gzip"},
		{"GZIP;q=0.5", true, "gzip"},
		{"gzip;q=0", true, ""},
		{"br;q=0.0, gzip;q=1.0", true, "gzip"},
		{"gzip;q=bogus", true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			if got := negotiateEncoding(tt.header, tt.allowBrotli); got != tt.want {
				t.Errorf("negotiateEncoding(%q, %v) = %q, want %q", tt.header, tt.allowBrotli, got, tt.want)
			}
		})
	}
}
