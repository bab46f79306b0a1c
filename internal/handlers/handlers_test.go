package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"playlist-browser/internal/catalog"
	"playlist-browser/internal/imagecache"
	"playlist-browser/internal/player"

	"github.com/gorilla/mux"
)

type fakeImages struct {
	dir      string
	resolved map[string]string
	thumb    []byte
	thumbErr error
}

func (f *fakeImages) Resolve(_ context.Context, url string) string {
	if p, ok := f.resolved[url]; ok {
		return p
	}
	return catalog.PlaceholderIcon
}

func (f *fakeImages) Open(filename string) (*os.File, os.FileInfo, error) {
	if strings.Contains(filename, "/") || strings.Contains(filename, "..") {
		return nil, nil, imagecache.ErrInvalidName
	}
	file, err := os.Open(filepath.Join(f.dir, filename))
	if err != nil {
		return nil, nil, err
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, nil, err
	}
	return file, info, nil
}

func (f *fakeImages) Thumbnail(_ string, width int) ([]byte, error) {
	if width < 1 || width > imagecache.MaxThumbnailWidth {
		return nil, imagecache.ErrInvalidWidth
	}
	return f.thumb, f.thumbErr
}

type fakeLauncher struct {
	outcome player.Outcome
	err     error
	gotID   string
	gotURL  string
}

func (f *fakeLauncher) Launch(playerID, url string) (player.Outcome, error) {
	f.gotID, f.gotURL = playerID, url
	return f.outcome, f.err
}

func testIndex() *catalog.Index {
	b := catalog.NewBuilder()
	for i := 0; i < 150; i++ {
		b.Add("News", catalog.NewChannel(fmt.Sprintf("News %03d", i), fmt.Sprintf("http://s/news/%d", i), ""))
	}
	b.Add("Sports", catalog.NewChannel("ESPN", "http://s/espn", "http://logo/espn.png"))
	b.Add("Kids/Family", catalog.NewChannel("Cartoons", "http://s/cartoons", ""))
	return b.Build()
}

func newTestHandlers(t *testing.T) (*Handlers, *fakeImages, *fakeLauncher) {
	t.Helper()
	images := &fakeImages{dir: t.TempDir(), resolved: map[string]string{}}
	launcher := &fakeLauncher{}
	return New(testIndex(), images, launcher, t.TempDir()), images, launcher
}

func withVars(r *http.Request, vars map[string]string) *http.Request {
	return mux.SetURLVars(r, vars)
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(w.Body).Decode(&v); err != nil {
		t.Fatalf("decoding response: %v (body %q)", err, w.Body.String())
	}
	return v
}

func TestListCategories(t *testing.T) {
	h, _, _ := newTestHandlers(t)

	w := httptest.NewRecorder()
	h.ListCategories(w, httptest.NewRequest("GET", "/api/categories", http.NoBody))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	resp := decode[CategoriesResponse](t, w)

	want := []string{"Kids/Family", "News", "Sports"}
	if len(resp.Categories) != len(want) {
		t.Fatalf("got %d categories, want %d: %+v", len(resp.Categories), len(want), resp.Categories)
	}
	for i, name := range want {
		if resp.Categories[i].Name != name {
			t.Errorf("category %d = %q, want %q", i, resp.Categories[i].Name, name)
		}
	}
	if resp.Categories[1].ChannelCount != 150 {
		t.Errorf("News count = %d, want 150", resp.Categories[1].ChannelCount)
	}
	if resp.TotalChannels != 152 {
		t.Errorf("TotalChannels = %d, want 152", resp.TotalChannels)
	}
}

func TestGetCategory(t *testing.T) {
	h, _, _ := newTestHandlers(t)

	tests := []struct {
		name       string
		category   string
		query      string
		wantStatus int
		wantCount  int
		wantFirst  string
		wantPages  int
	}{
		{"first page uses default size", "News", "", 200, 100, "News 000", 2},
		{"second page", "News", "?page=2", 200, 50, "News 100", 2},
		{"custom page size", "News", "?page=3&page_size=20", 200, 20, "News 040", 8},
		{"page past the end", "News", "?page=9", 200, 0, "", 2},
		{"encoded slash in name", "Kids%2FFamily", "", 200, 1, "Cartoons", 1},
		{"unknown category", "Weather", "", 404, 0, "", 0},
		{"case sensitive", "news", "", 404, 0, "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := withVars(httptest.NewRequest("GET", "/api/category/x"+tt.query, http.NoBody), map[string]string{"name": tt.category})
			w := httptest.NewRecorder()
			h.GetCategory(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if tt.wantStatus != http.StatusOK {
				return
			}

			resp := decode[CategoryResponse](t, w)
			if resp.Channels == nil {
				t.Fatal("channels should be an empty list, not null")
			}
			if len(resp.Channels) != tt.wantCount {
				t.Errorf("channels = %d, want %d", len(resp.Channels), tt.wantCount)
			}
			if tt.wantFirst != "" && resp.Channels[0].Name != tt.wantFirst {
				t.Errorf("first channel = %q, want %q", resp.Channels[0].Name, tt.wantFirst)
			}
			if resp.Pagination.TotalPages != tt.wantPages {
				t.Errorf("totalPages = %d, want %d", resp.Pagination.TotalPages, tt.wantPages)
			}
		})
	}
}

func TestGetCategoryChannelFields(t *testing.T) {
	h, _, _ := newTestHandlers(t)

	req := withVars(httptest.NewRequest("GET", "/api/category/Sports", http.NoBody), map[string]string{"name": "Sports"})
	w := httptest.NewRecorder()
	h.GetCategory(w, req)

	body := w.Body.String()
	for _, want := range []string{`"name":"ESPN"`, `"url":"http://s/espn"`, `"iconUrl":"http://logo/espn.png"`, `"totalItems":1`} {
		if !strings.Contains(body, want) {
			t.Errorf("response missing %s: %s", want, body)
		}
	}
}

func TestSearch(t *testing.T) {
	h, _, _ := newTestHandlers(t)

	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantTotal  int
		wantCount  int
	}{
		{"missing q", "", 400, 0, 0},
		{"matches case-insensitively", "?q=NEWS%200", 200, 100, 100},
		{"paged", "?q=news&page=2&pageSize=100", 200, 150, 50},
		{"empty q matches all", "?q=", 200, 152, 100},
		{"no match", "?q=weather", 200, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			h.Search(w, httptest.NewRequest("GET", "/api/search"+tt.query, http.NoBody))

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if tt.wantStatus != http.StatusOK {
				return
			}
			resp := decode[SearchResponse](t, w)
			if resp.Pagination.Total != tt.wantTotal {
				t.Errorf("total = %d, want %d", resp.Pagination.Total, tt.wantTotal)
			}
			if len(resp.Results) != tt.wantCount {
				t.Errorf("results = %d, want %d", len(resp.Results), tt.wantCount)
			}
		})
	}
}

func TestSearchResultOrder(t *testing.T) {
	h, _, _ := newTestHandlers(t)

	w := httptest.NewRecorder()
	h.Search(w, httptest.NewRequest("GET", "/api/search?q=s", http.NoBody))
	resp := decode[SearchResponse](t, w)

	for i := 1; i < len(resp.Results); i++ {
		if resp.Results[i-1].Channel.Name > resp.Results[i].Channel.Name {
			t.Fatalf("results not sorted at %d: %q > %q", i, resp.Results[i-1].Channel.Name, resp.Results[i].Channel.Name)
		}
	}
	if resp.Results[0].Category == "" {
		t.Error("search result should carry its category")
	}
}

func TestLazyLoadImage(t *testing.T) {
	h, images, _ := newTestHandlers(t)
	images.resolved["http://logo/espn.png"] = "/image_cache/abc.jpg"

	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantBody   string
	}{
		{"missing url", "", 400, ""},
		{"cached", "?url=http%3A%2F%2Flogo%2Fespn.png", 200, "/image_cache/abc.jpg"},
		{"failure falls back", "?url=http%3A%2F%2Fbroken", 200, catalog.PlaceholderIcon},
		{"empty url", "?url=", 200, catalog.PlaceholderIcon},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			h.LazyLoadImage(w, httptest.NewRequest("GET", "/lazy_load_image"+tt.query, http.NoBody))

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if tt.wantStatus != http.StatusOK {
				return
			}
			if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
				t.Errorf("Content-Type = %q, want text/plain", ct)
			}
			if w.Body.String() != tt.wantBody {
				t.Errorf("body = %q, want %q", w.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestCachedImage(t *testing.T) {
	h, images, _ := newTestHandlers(t)
	name := strings.Repeat("a", 64) + ".jpg"
	if err := os.WriteFile(filepath.Join(images.dir, name), []byte("jpeg-bytes"), 0o644); err != nil {
		t.Fatal(err)
	}
	images.thumb = []byte("small")

	tests := []struct {
		name       string
		filename   string
		query      string
		wantStatus int
		wantBody   string
	}{
		{"serves entry", name, "", 200, "jpeg-bytes"},
		{"missing entry", strings.Repeat("b", 64) + ".jpg", "", 404, ""},
		{"traversal rejected", "..%2F..%2Fetc%2Fpasswd", "", 404, ""},
		{"thumbnail", name, "?width=64", 200, "small"},
		{"bad width", name, "?width=abc", 400, ""},
		{"width out of range", name, "?width=5000", 400, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := withVars(httptest.NewRequest("GET", "/image_cache/x"+tt.query, http.NoBody), map[string]string{"filename": tt.filename})
			w := httptest.NewRecorder()
			h.CachedImage(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (%s)", w.Code, tt.wantStatus, w.Body.String())
			}
			if tt.wantStatus != http.StatusOK {
				return
			}
			if ct := w.Header().Get("Content-Type"); ct != "image/jpeg" {
				t.Errorf("Content-Type = %q, want image/jpeg", ct)
			}
			if w.Body.String() != tt.wantBody {
				t.Errorf("body = %q, want %q", w.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestCachedImageThumbnailFailure(t *testing.T) {
	h, images, _ := newTestHandlers(t)
	images.thumbErr = errors.New("decode failed")

	req := withVars(httptest.NewRequest("GET", "/image_cache/x?width=10", http.NoBody), map[string]string{"filename": strings.Repeat("a", 64) + ".jpg"})
	w := httptest.NewRecorder()
	h.CachedImage(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
}

func TestPlay(t *testing.T) {
	tests := []struct {
		name        string
		player      string
		url         string
		outcome     player.Outcome
		err         error
		wantStatus  int
		wantOutcome string
	}{
		{"success", "mpv", "http%3A%2F%2Fs%2Fespn%3Fa%3Db", player.Success, nil, 200, "success"},
		{"unknown player", "winamp", "http%3A%2F%2Fs", player.ConfigurationError, fmt.Errorf("%w: winamp", player.ErrUnknownPlayer), 400, "configuration_error"},
		{"not configured", "vlc", "http%3A%2F%2Fs", player.ConfigurationError, fmt.Errorf("%w: vlc", player.ErrPlayerNotConfigured), 500, "configuration_error"},
		{"non-zero exit", "mpv", "http%3A%2F%2Fs", player.NonZeroExit, errors.New("mpv exited: exit status 2"), 500, "non_zero_exit"},
		{"spawn failure", "mpv", "http%3A%2F%2Fs", player.SpawnFailure, errors.New("starting mpv: not found"), 500, "spawn_failure"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _, launcher := newTestHandlers(t)
			launcher.outcome, launcher.err = tt.outcome, tt.err

			req := withVars(httptest.NewRequest("GET", "/play/x/y", http.NoBody), map[string]string{"player": tt.player, "url": tt.url})
			w := httptest.NewRecorder()
			h.Play(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			resp := decode[map[string]string](t, w)
			if resp["outcome"] != tt.wantOutcome {
				t.Errorf("outcome = %q, want %q", resp["outcome"], tt.wantOutcome)
			}
			if (tt.err != nil) != (resp["error"] != "") {
				t.Errorf("error field = %q, launch err = %v", resp["error"], tt.err)
			}
		})
	}
}

func TestPlayDecodesURL(t *testing.T) {
	h, _, launcher := newTestHandlers(t)

	req := withVars(httptest.NewRequest("GET", "/play/mpv/x", http.NoBody), map[string]string{"player": "mpv", "url": "http%3A%2F%2Fhost%2Flive%20tv.m3u8%3Fk%3D1"})
	h.Play(httptest.NewRecorder(), req)

	if launcher.gotID != "mpv" {
		t.Errorf("player = %q, want mpv", launcher.gotID)
	}
	if launcher.gotURL != "http://host/live tv.m3u8?k=1" {
		t.Errorf("url = %q, want decoded URL", launcher.gotURL)
	}
}

func TestPlayRejectsBadEncoding(t *testing.T) {
	h, _, launcher := newTestHandlers(t)

	req := withVars(httptest.NewRequest("GET", "/play/mpv/x", http.NoBody), map[string]string{"player": "mpv", "url": "%zz"})
	w := httptest.NewRecorder()
	h.Play(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
	if launcher.gotID != "" {
		t.Error("launcher should not be called")
	}
}

func TestHealthEndpoints(t *testing.T) {
	h, _, _ := newTestHandlers(t)

	t.Run("health", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.HealthCheck(w, httptest.NewRequest("GET", "/health", http.NoBody))
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d", w.Code)
		}
		resp := decode[HealthResponse](t, w)
		if resp.Status != statusHealthy || !resp.Ready {
			t.Errorf("status = %q ready = %v", resp.Status, resp.Ready)
		}
		if resp.Categories != 3 || resp.Channels != 152 {
			t.Errorf("counts = %d/%d, want 3/152", resp.Categories, resp.Channels)
		}
	})

	t.Run("degraded when empty", func(t *testing.T) {
		empty := New(catalog.NewBuilder().Build(), &fakeImages{}, &fakeLauncher{}, "")
		w := httptest.NewRecorder()
		empty.HealthCheck(w, httptest.NewRequest("GET", "/health", http.NoBody))
		if resp := decode[HealthResponse](t, w); resp.Status != statusDegraded {
			t.Errorf("status = %q, want degraded", resp.Status)
		}
	})

	t.Run("not ready without catalog", func(t *testing.T) {
		none := New(nil, &fakeImages{}, &fakeLauncher{}, "")
		w := httptest.NewRecorder()
		none.ReadinessCheck(w, httptest.NewRequest("GET", "/readyz", http.NoBody))
		if w.Code != http.StatusServiceUnavailable {
			t.Errorf("status = %d, want 503", w.Code)
		}
	})

	t.Run("liveness", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.LivenessCheck(w, httptest.NewRequest("HEAD", "/livez", http.NoBody))
		if w.Code != http.StatusOK || w.Body.Len() != 0 {
			t.Errorf("HEAD /livez = %d with %d body bytes", w.Code, w.Body.Len())
		}
	})

	t.Run("readiness", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.ReadinessCheck(w, httptest.NewRequest("GET", "/readyz", http.NoBody))
		if w.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", w.Code)
		}
	})
}

func TestGetVersion(t *testing.T) {
	h, _, _ := newTestHandlers(t)
	w := httptest.NewRecorder()
	h.GetVersion(w, httptest.NewRequest("GET", "/version", http.NoBody))

	resp := decode[map[string]string](t, w)
	if resp["version"] == "" || resp["goVersion"] == "" {
		t.Errorf("version response incomplete: %v", resp)
	}
}

func TestIndexAndStatic(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html>browser</html>"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "app.js"), []byte("console.log(1)"), 0o644); err != nil {
		t.Fatal(err)
	}
	h := New(testIndex(), &fakeImages{}, &fakeLauncher{}, dir)

	w := httptest.NewRecorder()
	h.Index(w, httptest.NewRequest("GET", "/", http.NoBody))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "browser") {
		t.Errorf("GET / = %d %q", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	h.Static().ServeHTTP(w, httptest.NewRequest("GET", "/static/app.js", http.NoBody))
	if w.Code != http.StatusOK || w.Body.String() != "console.log(1)" {
		t.Errorf("GET /static/app.js = %d %q", w.Code, w.Body.String())
	}

	noStatic := New(testIndex(), &fakeImages{}, &fakeLauncher{}, "")
	w = httptest.NewRecorder()
	noStatic.Index(w, httptest.NewRequest("GET", "/", http.NoBody))
	if w.Code != http.StatusNotFound {
		t.Errorf("GET / without static dir = %d, want 404", w.Code)
	}
}
