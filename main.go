package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"playlist-browser/internal/filesystem"
	"playlist-browser/internal/handlers"
	"playlist-browser/internal/httpclient"
	"playlist-browser/internal/imagecache"
	"playlist-browser/internal/logging"
	"playlist-browser/internal/memory"
	"playlist-browser/internal/metrics"
	"playlist-browser/internal/middleware"
	"playlist-browser/internal/player"
	"playlist-browser/internal/playlist"
	"playlist-browser/internal/startup"
	"playlist-browser/internal/workers"

	"github.com/gorilla/mux"
)

const (
	maxPlayerWorkers     = 64
	cacheStatsInterval   = time.Minute
	shutdownTimeout      = 30 * time.Second
	playlistLoadDeadline = 5 * time.Minute
)

func main() {
	startTime := time.Now()
	memory.Configure(os.Getenv)

	config, err := startup.LoadConfig()
	if err != nil {
		startup.LogFatal("Configuration error: %v", err)
	}

	metrics.SetAppInfo(startup.Version, startup.Commit, startup.GoVersion)
	metrics.InitializeMetrics()

	filesystem.SetObserver(metrics.NewFilesystemObserver())
	volumes := map[string]string{
		"cache":  config.CacheDir,
		"static": config.StaticDir,
	}
	if !playlist.IsRemote(config.PlaylistPath) {
		volumes["playlist"] = filepath.Dir(config.PlaylistPath)
	}
	filesystem.SetDefaultVolumeResolver(filesystem.NewVolumeResolver(volumes))

	// The catalog is built once, before the server accepts requests.
	loadCtx, cancelLoad := context.WithTimeout(context.Background(), playlistLoadDeadline)
	loadStart := time.Now()
	index, stats, err := playlist.Load(loadCtx, config.PlaylistPath)
	cancelLoad()
	if err != nil {
		startup.LogFatal("Failed to load playlist: %v", err)
	}
	startup.LogCatalogLoaded(config.PlaylistPath, stats, index.CategoryCount(), time.Since(loadStart))

	cache, err := imagecache.New(imagecache.Options{
		Dir:      config.CacheDir,
		Client:   httpclient.WithTimeout(config.ImageFetchTimeout),
		MaxBytes: config.ImageMaxBytes,
		Rate:     config.ImageFetchRate,
		Burst:    config.ImageFetchBurst,
	})
	if err != nil {
		startup.LogFatal("Failed to initialize image cache: %v", err)
	}
	cacheStats := cache.GetStats()
	startup.LogImageCacheInit(cache.Dir(), cacheStats.CachedImages, cacheStats.CachedBytes)

	poolSize := workers.ForBlocking(config.PlayerWorkers, maxPlayerWorkers)
	launcher, err := player.New(config.PlayerPaths, poolSize)
	if err != nil {
		startup.LogFatal("Failed to initialize player launcher: %v", err)
	}
	startup.LogPlayerInit(launcher.Configured(), poolSize)

	collector := metrics.NewCollector(cache, cacheStatsInterval)
	collector.Start()

	var staticDir string
	if config.StaticEnabled {
		staticDir = config.StaticDir
	}
	h := handlers.New(index, cache, launcher, staticDir)

	router := setupRouter(h, staticDir != "")
	startup.LogHTTPRoutes(router, config.LogStaticFiles, config.LogHealthChecks)

	loggingConfig := middleware.DefaultLoggingConfig()
	loggingConfig.LogStaticFiles = config.LogStaticFiles
	loggingConfig.LogHealthChecks = config.LogHealthChecks
	loggedHandler := middleware.Logger(loggingConfig)(router)
	handler := middleware.Compression(middleware.DefaultCompressionConfig())(loggedHandler)

	srv := &http.Server{
		Addr:              net.JoinHostPort(config.BindAddr, config.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		// /play blocks until the player exits.
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}

	var metricsSrv *http.Server
	if config.MetricsEnabled {
		metricsSrv = startMetricsServer(h, config.BindAddr, config.MetricsPort)
	}

	done := make(chan struct{})
	go handleShutdown(srv, metricsSrv, collector, launcher, done)

	startup.LogServerStarted(startup.ServerConfig{
		BindAddr:        config.BindAddr,
		Port:            config.Port,
		MetricsPort:     config.MetricsPort,
		MetricsEnabled:  config.MetricsEnabled,
		StaticEnabled:   config.StaticEnabled,
		StartupDuration: time.Since(startTime),
	})
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		startup.LogFatal("Server error: %v", err)
	}
	<-done
}

func setupRouter(h *handlers.Handlers, static bool) *mux.Router {
	r := mux.NewRouter()
	// Stream URLs and category names travel percent-encoded in the path.
	r.UseEncodedPath()
	r.Use(middleware.Metrics(middleware.DefaultMetricsConfig()))

	r.HandleFunc("/health", h.HealthCheck).Methods("GET")
	r.HandleFunc("/healthz", h.HealthCheck).Methods("GET")
	r.HandleFunc("/livez", h.LivenessCheck).Methods("GET", "HEAD")
	r.HandleFunc("/readyz", h.ReadinessCheck).Methods("GET")
	r.HandleFunc("/version", h.GetVersion).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/categories", h.ListCategories).Methods("GET")
	api.HandleFunc("/category/{name}", h.GetCategory).Methods("GET")
	api.HandleFunc("/search", h.Search).Methods("GET")

	r.HandleFunc("/lazy_load_image", h.LazyLoadImage).Methods("GET")
	r.HandleFunc("/image_cache/{filename}", h.CachedImage).Methods("GET", "HEAD")
	r.HandleFunc("/play/{player}/{url}", h.Play).Methods("GET", "POST")

	if static {
		r.PathPrefix("/static/").Handler(h.Static())
		r.HandleFunc("/", h.Index).Methods("GET", "HEAD")
	}

	return r
}

func startMetricsServer(h *handlers.Handlers, bindAddr, port string) *http.Server {
	m := http.NewServeMux()
	m.Handle("/metrics", h.MetricsHandler())

	srv := &http.Server{
		Addr:              net.JoinHostPort(bindAddr, port),
		Handler:           m,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logging.Error("Metrics server error: %v", err)
		}
	}()
	return srv
}

func handleShutdown(srv, metricsSrv *http.Server, collector *metrics.Collector, launcher *player.Launcher, done chan<- struct{}) {
	defer close(done)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	startup.LogShutdownInitiated(sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	startup.LogShutdownStep("Stopping metrics collector")
	collector.Stop()
	startup.LogShutdownStepComplete("Metrics collector stopped")

	startup.LogShutdownStep("Shutting down HTTP server")
	if err := srv.Shutdown(ctx); err != nil {
		logging.Warn("Server shutdown error: %v", err)
	} else {
		startup.LogShutdownStepComplete("HTTP server stopped")
	}

	if metricsSrv != nil {
		startup.LogShutdownStep("Shutting down metrics server")
		if err := metricsSrv.Shutdown(ctx); err != nil {
			logging.Warn("Metrics server shutdown error: %v", err)
		} else {
			startup.LogShutdownStepComplete("Metrics server stopped")
		}
	}

	if n := launcher.Running(); n > 0 {
		logging.Info("  %d player(s) still running, leaving them open", n)
	}
	launcher.Close()
	startup.LogShutdownStepComplete("Player pool released")

	startup.LogShutdownComplete()
}
