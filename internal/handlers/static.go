package handlers

import (
	"net/http"
	"path/filepath"
)

// Index serves STATIC_DIR/index.html for the root path.
func (h *Handlers) Index(w http.ResponseWriter, r *http.Request) {
	if h.staticDir == "" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Cache-Control", "no-cache")
	http.ServeFile(w, r, filepath.Join(h.staticDir, "index.html"))
}

// Static returns a file server for /static/.
func (h *Handlers) Static() http.Handler {
	return http.StripPrefix("/static/", http.FileServer(http.Dir(h.staticDir)))
}
