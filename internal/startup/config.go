package startup

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode"

	"playlist-browser/internal/logging"
	"playlist-browser/internal/playlist"

	"github.com/joho/godotenv"
)

// Config file keys
const (
	keyPlaylistPath = "playlist_path"
	keyMPVPath      = "mpv_path"
	keyVLCPath      = "vlc_path"
)

const (
	defaultConfigFile    = "config.txt"
	defaultPlaylistPath  = "playlist.m3u"
	defaultImageMaxBytes = 10 << 20
)

// Config holds all application configuration
type Config struct {
	ConfigFile   string
	PlaylistPath string
	// PlayerPaths maps a player id (mpv, vlc) to its executable. Players
	// without a configured path are absent.
	PlayerPaths map[string]string

	BindAddr        string
	Port            string
	MetricsPort     string
	MetricsEnabled  bool
	LogStaticFiles  bool
	LogHealthChecks bool

	CacheDir  string
	StaticDir string

	ImageFetchTimeout time.Duration
	ImageFetchRate    float64
	ImageFetchBurst   int
	ImageMaxBytes     int64

	// PlayerWorkers of 0 sizes the launch pool automatically.
	PlayerWorkers int

	// StaticEnabled is false when STATIC_DIR does not exist.
	StaticEnabled bool
}

// LoadConfig reads the key=value config file and the environment, then
// validates the directories the server depends on.
func LoadConfig() (*Config, error) {
	printBanner()
	logSystemInfo()

	logging.Info("------------------------------------------------------------")
	logging.Info("CONFIGURATION")
	logging.Info("------------------------------------------------------------")

	configFile := getEnv("CONFIG_FILE", defaultConfigFile)
	values, err := readConfigFile(configFile)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		ConfigFile:      configFile,
		PlaylistPath:    firstNonEmpty(os.Getenv("PLAYLIST_PATH"), values[keyPlaylistPath], defaultPlaylistPath),
		PlayerPaths:     make(map[string]string),
		BindAddr:        getEnv("BIND_ADDR", "127.0.0.1"),
		Port:            getEnv("PORT", "8080"),
		MetricsPort:     getEnv("METRICS_PORT", "9090"),
		MetricsEnabled:  getEnvBool("METRICS_ENABLED", true),
		LogStaticFiles:  getEnvBool("LOG_STATIC_FILES", false),
		LogHealthChecks: getEnvBool("LOG_HEALTH_CHECKS", true),
		CacheDir:        getEnv("CACHE_DIR", "image_cache"),
		StaticDir:       getEnv("STATIC_DIR", "static"),

		ImageFetchTimeout: getEnvDuration("IMAGE_FETCH_TIMEOUT", 15*time.Second),
		ImageFetchRate:    getEnvFloat("IMAGE_FETCH_RATE", 20),
		ImageFetchBurst:   getEnvInt("IMAGE_FETCH_BURST", 10),
		ImageMaxBytes:     int64(getEnvInt("IMAGE_MAX_BYTES", defaultImageMaxBytes)),
		PlayerWorkers:     getEnvInt("PLAYER_WORKERS", 0),
	}

	if p := firstNonEmpty(os.Getenv("MPV_PATH"), values[keyMPVPath]); p != "" {
		cfg.PlayerPaths["mpv"] = p
	}
	if p := firstNonEmpty(os.Getenv("VLC_PATH"), values[keyVLCPath]); p != "" {
		cfg.PlayerPaths["vlc"] = p
	}

	logging.Info("  CONFIG_FILE:         %s", cfg.ConfigFile)
	logging.Info("  PLAYLIST_PATH:       %s", cfg.PlaylistPath)
	logging.Info("  MPV_PATH:            %s", orUnset(cfg.PlayerPaths["mpv"]))
	logging.Info("  VLC_PATH:            %s", orUnset(cfg.PlayerPaths["vlc"]))
	logging.Info("  BIND_ADDR:           %s", cfg.BindAddr)
	logging.Info("  PORT:                %s", cfg.Port)
	logging.Info("  METRICS_PORT:        %s", cfg.MetricsPort)
	logging.Info("  METRICS_ENABLED:     %v", cfg.MetricsEnabled)
	logging.Info("  CACHE_DIR:           %s", cfg.CacheDir)
	logging.Info("  STATIC_DIR:          %s", cfg.StaticDir)
	logging.Info("  IMAGE_FETCH_TIMEOUT: %v", cfg.ImageFetchTimeout)
	logging.Info("  IMAGE_FETCH_RATE:    %g/s (burst %d)", cfg.ImageFetchRate, cfg.ImageFetchBurst)
	logging.Info("  IMAGE_MAX_BYTES:     %d", cfg.ImageMaxBytes)
	logging.Info("  PLAYER_WORKERS:      %s", workersString(cfg.PlayerWorkers))
	logging.Info("  LOG_STATIC_FILES:    %v", cfg.LogStaticFiles)
	logging.Info("  LOG_HEALTH_CHECKS:   %v", cfg.LogHealthChecks)
	logging.Info("  LOG_LEVEL:           %s", logging.GetLevel())

	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("DIRECTORY SETUP")
	logging.Info("------------------------------------------------------------")

	if !playlist.IsRemote(cfg.PlaylistPath) {
		info, err := os.Stat(cfg.PlaylistPath)
		if err != nil {
			return nil, fmt.Errorf("playlist %s is not readable: %w", cfg.PlaylistPath, err)
		}
		if info.IsDir() {
			return nil, fmt.Errorf("playlist %s is a directory", cfg.PlaylistPath)
		}
		logging.Info("  [OK] Playlist found (%d bytes)", info.Size())
	} else {
		logging.Info("  Playlist is remote, it will be fetched at startup")
	}

	cfg.CacheDir, err = filepath.Abs(cfg.CacheDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve cache directory path: %w", err)
	}
	logging.Info("  Cache directory (absolute): %s", cfg.CacheDir)

	if err := ensureDirectory(cfg.CacheDir, "cache"); err != nil {
		return nil, fmt.Errorf("cache directory error: %w", err)
	}

	logging.Debug("  Testing cache directory write access...")
	if err := testWriteAccess(cfg.CacheDir); err != nil {
		return nil, fmt.Errorf("cache directory is not writable (required for thumbnails): %w", err)
	}
	logging.Info("  [OK] Cache directory is writable")

	cfg.StaticDir, err = filepath.Abs(cfg.StaticDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve static directory path: %w", err)
	}
	cfg.StaticEnabled = checkStaticDir(cfg.StaticDir)

	logging.Info("")
	logging.Info("  Feature availability:")
	logging.Info("    Image cache:   ENABLED (required)")
	logging.Info("    Static files:  %s", enabledString(cfg.StaticEnabled))
	logging.Info("    Metrics:       %s", enabledString(cfg.MetricsEnabled))
	for _, id := range []string{"mpv", "vlc"} {
		logging.Info("    Player %-6s  %s", id+":", enabledString(cfg.PlayerPaths[id] != ""))
	}

	checkPlayers(cfg.PlayerPaths)

	return cfg, nil
}

// readConfigFile parses the key=value file. A missing file is not an error;
// every key then falls back to its default. Lines without '=' are ignored.
func readConfigFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		logging.Warn("  Config file %s not found, using defaults", path)
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	values, err := godotenv.Unmarshal(normalizeConfig(string(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	logging.Debug("  Read %d keys from %s", len(values), path)
	return values, nil
}

// normalizeConfig rewrites the file into lines godotenv accepts. Lines
// without '=' or with an unusable key are dropped. Values that godotenv
// would expand or reject (a '$' or an unbalanced quote) are single-quoted
// so they are read literally.
func normalizeConfig(body string) string {
	var b strings.Builder
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		key = strings.TrimSpace(key)
		if !ok || !isConfigKey(key) {
			logging.Debug("  Ignoring config line %q", line)
			continue
		}

		value = strings.TrimSpace(value)
		if needsLiteral(value) {
			value = strings.Trim(value, `"'`)
			if strings.Contains(value, "'") {
				logging.Warn("  Ignoring config key %s: value cannot be read literally", key)
				continue
			}
			value = "'" + value + "'"
		}
		b.WriteString(key + "=" + value + "\n")
	}
	return b.String()
}

func isConfigKey(key string) bool {
	if key == "" {
		return false
	}
	for _, r := range key {
		if r != '_' && r != '.' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func needsLiteral(value string) bool {
	if strings.Contains(value, "$") {
		return true
	}
	for _, q := range []string{`"`, "'"} {
		if strings.HasPrefix(value, q) && (len(value) < 2 || !strings.HasSuffix(value, q)) {
			return true
		}
	}
	return false
}

func checkStaticDir(path string) bool {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		logging.Warn("  Static directory %s not available, static files disabled", path)
		return false
	}
	if _, err := os.Stat(filepath.Join(path, "index.html")); err != nil {
		logging.Warn("  %s has no index.html, / will return 404", path)
	}
	logging.Info("  Static directory (absolute): %s", path)
	return true
}

// checkPlayers warns about players that cannot be launched. Nothing here is
// fatal: a missing player only fails its own /play requests.
func checkPlayers(paths map[string]string) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("PLAYER CHECK")
	logging.Info("------------------------------------------------------------")

	for _, id := range []string{"mpv", "vlc"} {
		path, ok := paths[id]
		if !ok {
			logging.Warn("  %s path not specified (set %s_path in the config file)", strings.ToUpper(id), id)
			continue
		}
		resolved, err := exec.LookPath(path)
		if err != nil {
			logging.Warn("  %s executable %s not found: %v", strings.ToUpper(id), path, err)
			continue
		}
		logging.Info("  [OK] %s: %s", strings.ToUpper(id), resolved)
	}
}

func enabledString(enabled bool) string {
	if enabled {
		return "ENABLED"
	}
	return "DISABLED"
}

func workersString(n int) string {
	if n <= 0 {
		return "auto"
	}
	return strconv.Itoa(n)
}

func orUnset(s string) string {
	if s == "" {
		return "(not set)"
	}
	return s
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func ensureDirectory(path, name string) error {
	logging.Debug("  Checking %s directory: %s", name, path)

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		logging.Debug("    Directory does not exist, creating...")
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
		logging.Debug("    [OK] Created directory: %s", path)
		return nil
	}

	if err != nil {
		return fmt.Errorf("failed to stat directory: %w", err)
	}

	if !info.IsDir() {
		return fmt.Errorf("path exists but is not a directory")
	}

	logging.Debug("    [OK] Directory exists")

	if logging.IsDebugEnabled() {
		if entries, err := os.ReadDir(path); err == nil {
			logging.Debug("    Contents: %d entries", len(entries))
		}
	}

	return nil
}

func testWriteAccess(dir string) error {
	testFile := filepath.Join(dir, ".write-test")
	if err := os.WriteFile(testFile, []byte("test"), 0o644); err != nil {
		return err
	}
	if err := os.Remove(testFile); err != nil {
		logging.Warn("failed to remove write test file %s: %v", testFile, err)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		logging.Warn("Invalid boolean value for %s: %q, using default: %v", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed < 0 {
		logging.Warn("Invalid integer value for %s: %q, using default: %d", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil || parsed <= 0 {
		logging.Warn("Invalid rate value for %s: %q, using default: %g", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil || parsed <= 0 {
		logging.Warn("Invalid duration for %s: %q, using default: %v", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}
