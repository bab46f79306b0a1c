package handlers

import (
	"context"
	"os"
	"time"

	"playlist-browser/internal/catalog"
	"playlist-browser/internal/player"
)

// ImageStore is the part of the image cache the HTTP layer uses.
type ImageStore interface {
	Resolve(ctx context.Context, url string) string
	Open(filename string) (*os.File, os.FileInfo, error)
	Thumbnail(filename string, width int) ([]byte, error)
}

// Launcher starts an external player and waits for it to exit.
type Launcher interface {
	Launch(playerID, url string) (player.Outcome, error)
}

type Handlers struct {
	index     *catalog.Index
	images    ImageStore
	launcher  Launcher
	staticDir string
	started   time.Time
}

func New(index *catalog.Index, images ImageStore, launcher Launcher, staticDir string) *Handlers {
	return &Handlers{
		index:     index,
		images:    images,
		launcher:  launcher,
		staticDir: staticDir,
		started:   time.Now(),
	}
}
