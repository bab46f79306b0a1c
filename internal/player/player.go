// Package player launches an external media player for a stream URL.
//
// Launches run on a bounded worker pool. Each call blocks until the player
// process exits and reports how it ended as an Outcome.
package player

import (
	"errors"
	"fmt"
	"os/exec"
	"sort"
	"sync"
	"time"

	"playlist-browser/internal/logging"
	"playlist-browser/internal/metrics"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
)

// Outcome classifies how a launch ended.
type Outcome int

const (
	Success Outcome = iota
	NonZeroExit
	SpawnFailure
	WaitFailure
	ConfigurationError
)

func (o Outcome) String() string {
	switch o {
	case Success:
		return "success"
	case NonZeroExit:
		return "non_zero_exit"
	case SpawnFailure:
		return "spawn_failure"
	case WaitFailure:
		return "wait_failure"
	case ConfigurationError:
		return "configuration_error"
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// MarshalText encodes the outcome by name.
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

var (
	ErrUnknownPlayer       = errors.New("unknown player")
	ErrPlayerNotConfigured = errors.New("player path not configured")
)

// KnownPlayers lists the player ids Launch accepts.
var KnownPlayers = []string{"mpv", "vlc"}

func isKnown(id string) bool {
	for _, p := range KnownPlayers {
		if p == id {
			return true
		}
	}
	return false
}

type launch struct {
	id      string
	player  string
	started time.Time
}

// Launcher starts player processes. It is safe for concurrent use.
type Launcher struct {
	paths map[string]string
	pool  *ants.Pool

	mu     sync.Mutex
	active map[string]launch
}

// New returns a Launcher for the given player executables, keyed by player
// id, running at most workers players at a time. Further launches wait for a
// free slot.
func New(paths map[string]string, workers int) (*Launcher, error) {
	pool, err := ants.NewPool(workers, ants.WithPanicHandler(func(p interface{}) {
		logging.Error("Player worker panic: %v", p)
	}))
	if err != nil {
		return nil, fmt.Errorf("creating player pool: %w", err)
	}

	l := &Launcher{
		paths:  make(map[string]string, len(paths)),
		pool:   pool,
		active: make(map[string]launch),
	}
	for id, path := range paths {
		if path != "" {
			l.paths[id] = path
		}
	}
	return l, nil
}

// Configured returns the ids of players that have an executable set.
func (l *Launcher) Configured() []string {
	ids := make([]string, 0, len(l.paths))
	for id := range l.paths {
		if isKnown(id) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// Running returns the number of player processes that have not exited.
func (l *Launcher) Running() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.active)
}

// Launch runs the player registered as playerID with url as its only
// argument and waits for it to exit. Nothing is spawned when playerID is
// unknown or has no executable configured.
func (l *Launcher) Launch(playerID, url string) (Outcome, error) {
	if !isKnown(playerID) {
		return ConfigurationError, fmt.Errorf("%w: %q", ErrUnknownPlayer, playerID)
	}
	path, ok := l.paths[playerID]
	if !ok {
		return ConfigurationError, fmt.Errorf("%w: %s", ErrPlayerNotConfigured, playerID)
	}

	type result struct {
		outcome Outcome
		err     error
	}
	done := make(chan result, 1)
	id := uuid.NewString()

	err := l.pool.Submit(func() {
		o, err := l.run(id, playerID, path, url)
		done <- result{o, err}
	})
	if err != nil {
		l.record(playerID, SpawnFailure)
		return SpawnFailure, fmt.Errorf("scheduling %s: %w", playerID, err)
	}

	r := <-done
	return r.outcome, r.err
}

func (l *Launcher) run(id, playerID, path, url string) (Outcome, error) {
	cmd := exec.Command(path, url)

	logging.Info("Launching %s [%s]: %s", playerID, id, url)
	if err := cmd.Start(); err != nil {
		logging.Error("Failed to start %s [%s]: %v", playerID, id, err)
		l.record(playerID, SpawnFailure)
		return SpawnFailure, fmt.Errorf("starting %s: %w", playerID, err)
	}

	start := time.Now()
	l.track(launch{id: id, player: playerID, started: start})
	defer l.untrack(id)

	err := cmd.Wait()
	metrics.PlayerSessionDuration.WithLabelValues(playerID).Observe(time.Since(start).Seconds())

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		logging.Info("%s [%s] exited after %v", playerID, id, time.Since(start).Round(time.Second))
		l.record(playerID, Success)
		return Success, nil
	case errors.As(err, &exitErr):
		logging.Warn("%s [%s] exited with status %d", playerID, id, exitErr.ExitCode())
		l.record(playerID, NonZeroExit)
		return NonZeroExit, fmt.Errorf("%s exited: %w", playerID, err)
	default:
		logging.Error("Waiting for %s [%s]: %v", playerID, id, err)
		l.record(playerID, WaitFailure)
		return WaitFailure, fmt.Errorf("waiting for %s: %w", playerID, err)
	}
}

func (l *Launcher) track(la launch) {
	l.mu.Lock()
	l.active[la.id] = la
	l.mu.Unlock()
	metrics.PlayerLaunchesInProgress.Inc()
}

func (l *Launcher) untrack(id string) {
	l.mu.Lock()
	delete(l.active, id)
	l.mu.Unlock()
	metrics.PlayerLaunchesInProgress.Dec()
}

func (l *Launcher) record(playerID string, o Outcome) {
	metrics.PlayerLaunchesTotal.WithLabelValues(playerID, o.String()).Inc()
}

// Close stops accepting launches. Running players are left alone.
func (l *Launcher) Close() {
	l.mu.Lock()
	for _, la := range l.active {
		logging.Info("Leaving %s [%s] running (started %s)", la.player, la.id, la.started.Format(time.RFC3339))
	}
	l.mu.Unlock()
	l.pool.Release()
}
