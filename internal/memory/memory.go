// Package memory applies a soft heap limit derived from the container
// memory limit. The catalog and the image decoder are the two large heap
// consumers, so the limit mostly bounds thumbnail bursts.
package memory

import (
	"fmt"
	"math"
	"runtime/debug"
	"strconv"

	"playlist-browser/internal/logging"
)

// DefaultRatio is the share of the container limit handed to the Go heap.
const DefaultRatio = 0.85

// Limit describes the heap limit that was applied.
type Limit struct {
	// Source is "GOMEMLIMIT", "MEMORY_LIMIT" or "none".
	Source    string
	Container int64
	Heap      int64
	Ratio     float64
}

// Configure sets the runtime memory limit from the environment. GOMEMLIMIT
// wins when set; otherwise MEMORY_LIMIT (bytes) scaled by MEMORY_RATIO is
// used. getenv is usually os.Getenv.
func Configure(getenv func(string) string) Limit {
	if v := getenv("GOMEMLIMIT"); v != "" {
		res := Limit{Source: "none"}
		if cur := debug.SetMemoryLimit(-1); cur > 0 && cur < math.MaxInt64 {
			res = Limit{Source: "GOMEMLIMIT", Heap: cur}
		}
		logging.Info("GOMEMLIMIT set via environment: %s", v)
		return res
	}

	raw := getenv("MEMORY_LIMIT")
	if raw == "" {
		logging.Debug("MEMORY_LIMIT not set, leaving heap limit unset")
		return Limit{Source: "none"}
	}
	container, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || container <= 0 {
		logging.Warn("Ignoring MEMORY_LIMIT %q: not a positive byte count", raw)
		return Limit{Source: "none"}
	}

	ratio := parseRatio(getenv("MEMORY_RATIO"))
	heap := int64(float64(container) * ratio)
	debug.SetMemoryLimit(heap)

	logging.Info("Configured GOMEMLIMIT: %s (%.0f%% of %s)", FormatBytes(heap), ratio*100, FormatBytes(container))
	return Limit{Source: "MEMORY_LIMIT", Container: container, Heap: heap, Ratio: ratio}
}

func parseRatio(s string) float64 {
	if s == "" {
		return DefaultRatio
	}
	r, err := strconv.ParseFloat(s, 64)
	if err != nil || r <= 0 || r > 1 {
		logging.Warn("MEMORY_RATIO %q invalid, using %.2f", s, DefaultRatio)
		return DefaultRatio
	}
	return r
}

// FormatBytes renders b with binary units.
func FormatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(b)/float64(div), "KMGTPE"[exp])
}
