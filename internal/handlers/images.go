package handlers

import (
	"errors"
	"io"
	"net/http"
	"os"
	"strconv"

	"playlist-browser/internal/imagecache"
	"playlist-browser/internal/logging"
)

// LazyLoadImage resolves a remote thumbnail URL to a local path, fetching it
// into the cache when needed. The body is the path as plain text; any fetch
// failure yields the placeholder.
func (h *Handlers) LazyLoadImage(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	if _, ok := query["url"]; !ok {
		http.Error(w, "Missing query parameter: url", http.StatusBadRequest)
		return
	}

	path := h.images.Resolve(r.Context(), query.Get("url"))

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	if _, err := io.WriteString(w, path); err != nil {
		logging.Debug("lazy_load_image: write failed: %v", err)
	}
}

// CachedImage serves a cache entry. With ?width=N the image is scaled down
// to at most N pixels wide.
func (h *Handlers) CachedImage(w http.ResponseWriter, r *http.Request) {
	filename, ok := pathVar(r, "filename")
	if !ok {
		http.Error(w, "Invalid file name", http.StatusBadRequest)
		return
	}

	if raw := r.URL.Query().Get("width"); raw != "" {
		h.serveThumbnail(w, filename, raw)
		return
	}

	f, info, err := h.images.Open(filename)
	if err != nil {
		writeImageError(w, err)
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	http.ServeContent(w, r, filename, info.ModTime(), f)
}

func (h *Handlers) serveThumbnail(w http.ResponseWriter, filename, rawWidth string) {
	width, err := strconv.Atoi(rawWidth)
	if err != nil {
		http.Error(w, "Invalid width", http.StatusBadRequest)
		return
	}

	data, err := h.images.Thumbnail(filename, width)
	if err != nil {
		writeImageError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Cache-Control", "public, max-age=86400")
	if _, err := w.Write(data); err != nil {
		logging.Debug("thumbnail %s: write failed: %v", filename, err)
	}
}

func writeImageError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, imagecache.ErrInvalidName), errors.Is(err, os.ErrNotExist):
		http.Error(w, "Image not found", http.StatusNotFound)
	case errors.Is(err, imagecache.ErrInvalidWidth):
		http.Error(w, "Invalid width", http.StatusBadRequest)
	default:
		logging.Error("Serving cached image failed: %v", err)
		http.Error(w, "Failed to read image", http.StatusInternalServerError)
	}
}
