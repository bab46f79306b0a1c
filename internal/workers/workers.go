package workers

import "runtime"

// Count returns a worker count derived from GOMAXPROCS, which follows the
// container CPU limit.
//
// A positive override wins over the computed value. The multiplier scales
// GOMAXPROCS for the kind of work: 1.0 for CPU-bound, 2.0 or more for work
// that mostly waits. A positive limit caps the result.
func Count(override int, multiplier float64, limit int) int {
	if override > 0 {
		if limit > 0 && override > limit {
			return limit
		}
		return override
	}

	workers := int(float64(runtime.GOMAXPROCS(0)) * multiplier)

	if workers < 1 {
		workers = 1
	}
	if limit > 0 && workers > limit {
		workers = limit
	}

	return workers
}

// ForCPU returns one worker per CPU. Used to bound concurrent thumbnail resizes.
func ForCPU(override, limit int) int {
	return Count(override, 1.0, limit)
}

// ForIO returns two workers per CPU.
func ForIO(override, limit int) int {
	return Count(override, 2.0, limit)
}

// ForBlocking returns four workers per CPU, for tasks that spend nearly all
// their time waiting on a child process, such as a running media player.
func ForBlocking(override, limit int) int {
	return Count(override, 4.0, limit)
}
