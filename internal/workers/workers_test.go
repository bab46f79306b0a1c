package workers

import (
	"runtime"
	"testing"
)

func TestCount(t *testing.T) {
	cpus := runtime.GOMAXPROCS(0)

	tests := []struct {
		name       string
		override   int
		multiplier float64
		limit      int
		want       int
	}{
		{"cpu bound", 0, 1.0, 0, cpus},
		{"io bound", 0, 2.0, 0, cpus * 2},
		{"limit caps computed", 0, 100.0, 3, 3},
		{"tiny multiplier floors at one", 0, 0.0001, 0, 1},
		{"override wins", 7, 1.0, 0, 7},
		{"override capped by limit", 50, 1.0, 8, 8},
		{"negative override ignored", -2, 1.0, 0, cpus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Count(tt.override, tt.multiplier, tt.limit); got != tt.want {
				t.Errorf("Count(%d, %v, %d) = %d, want %d", tt.override, tt.multiplier, tt.limit, got, tt.want)
			}
		})
	}
}

func TestHelpers(t *testing.T) {
	cpus := runtime.GOMAXPROCS(0)

	if got := ForCPU(0, 0); got != cpus {
		t.Errorf("ForCPU() = %d, want %d", got, cpus)
	}
	if got := ForIO(0, 0); got != cpus*2 {
		t.Errorf("ForIO() = %d, want %d", got, cpus*2)
	}
	if got := ForBlocking(0, 0); got != cpus*4 {
		t.Errorf("ForBlocking() = %d, want %d", got, cpus*4)
	}
	if got := ForBlocking(2, 0); got != 2 {
		t.Errorf("ForBlocking(2, 0) = %d, want 2", got)
	}
}

func TestCountAlwaysPositive(t *testing.T) {
	for _, m := range []float64{0, 0.1, 1, 2, 16} {
		if got := Count(0, m, 0); got < 1 {
			t.Errorf("Count(0, %v, 0) = %d, want >= 1", m, got)
		}
	}
}
