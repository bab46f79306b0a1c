package metrics

// Label values exported from the first scrape.
var (
	Volumes        = []string{"cache", "playlist", "static", "unknown"}
	PlayerIDs      = []string{"mpv", "vlc"}
	LaunchOutcomes = []string{"success", "non_zero_exit", "spawn_failure", "wait_failure", "configuration_error"}
	FetchReasons   = []string{"transport", "status", "not_image", "empty_body", "too_large", "write"}
	LineKinds      = []string{"directive", "channel", "orphan_url", "other"}
)

// InitializeMetrics pre-populates all expected label combinations so that
// every metric is exported from the first Prometheus scrape.
// Call this once at startup after metric registration.
func InitializeMetrics() {
	fsOps := []string{"stat", "open", "write", "rename", "readdir"}
	for _, vol := range Volumes {
		for _, op := range fsOps {
			FilesystemOperationDuration.WithLabelValues(vol, op)
			FilesystemOperationErrors.WithLabelValues(vol, op)
			FilesystemRetryAttempts.WithLabelValues(op, vol)
			FilesystemRetrySuccess.WithLabelValues(op, vol)
			FilesystemRetryFailures.WithLabelValues(op, vol)
			FilesystemStaleErrors.WithLabelValues(op, vol)
			FilesystemRetryDuration.WithLabelValues(op, vol)
		}
	}

	for _, p := range PlayerIDs {
		for _, o := range LaunchOutcomes {
			PlayerLaunchesTotal.WithLabelValues(p, o)
		}
		PlayerSessionDuration.WithLabelValues(p)
	}

	for _, r := range []string{"hit", "miss", "placeholder"} {
		ImageCacheLookups.WithLabelValues(r)
	}
	for _, r := range FetchReasons {
		ImageFetchFailures.WithLabelValues(r)
	}
	for _, k := range LineKinds {
		PlaylistLinesTotal.WithLabelValues(k)
	}
}
