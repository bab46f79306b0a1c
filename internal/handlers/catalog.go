package handlers

import (
	"net/http"

	"playlist-browser/internal/catalog"
	"playlist-browser/internal/pagination"
)

// CategoriesResponse lists every category with its channel count.
type CategoriesResponse struct {
	Categories    []catalog.CategorySummary `json:"categories"`
	TotalChannels int                       `json:"totalChannels"`
}

// CategoryResponse is one page of a category.
type CategoryResponse struct {
	Name       string            `json:"name"`
	Channels   []catalog.Channel `json:"channels"`
	Pagination pagination.Page   `json:"pagination"`
	Nav        pagination.Nav    `json:"nav"`
}

// SearchResponse is one page of search results.
type SearchResponse struct {
	Query      string                 `json:"query"`
	Results    []catalog.SearchResult `json:"results"`
	Pagination pagination.Page        `json:"pagination"`
	Nav        pagination.Nav         `json:"nav"`
}

// ListCategories returns the sorted category listing.
func (h *Handlers) ListCategories(w http.ResponseWriter, _ *http.Request) {
	categories := h.index.ListCategories()
	if categories == nil {
		categories = []catalog.CategorySummary{}
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, CategoriesResponse{
		Categories:    categories,
		TotalChannels: h.index.ChannelCount(),
	})
}

// GetCategory returns a page of channels. Icon URLs are the playlist's own;
// clients resolve them through /lazy_load_image.
func (h *Handlers) GetCategory(w http.ResponseWriter, r *http.Request) {
	name, ok := pathVar(r, "name")
	if !ok {
		writeJSONError(w, "Invalid category name", http.StatusBadRequest)
		return
	}

	category, found := h.index.Lookup(name)
	if !found {
		writeJSONError(w, "Category not found", http.StatusNotFound)
		return
	}

	page, pageSize := pagination.ParseQuery(r.URL.Query())
	p := pagination.Paginate(len(category.Channels), page, pageSize)

	channels := pagination.Slice(category.Channels, p)
	if channels == nil {
		channels = []catalog.Channel{}
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, CategoryResponse{
		Name:       category.Name,
		Channels:   channels,
		Pagination: p,
		Nav:        pagination.Window(p.Page, p.TotalPages),
	})
}

// Search matches channel names against q. A missing q is a client error;
// an empty q matches every channel.
func (h *Handlers) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	if _, ok := query["q"]; !ok {
		writeJSONError(w, "Missing query parameter: q", http.StatusBadRequest)
		return
	}
	term := query.Get("q")

	results := h.index.Search(term)
	page, pageSize := pagination.ParseQuery(query)
	p := pagination.Paginate(len(results), page, pageSize)

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, SearchResponse{
		Query:      term,
		Results:    pagination.Slice(results, p),
		Pagination: p,
		Nav:        pagination.Window(p.Page, p.TotalPages),
	})
}
