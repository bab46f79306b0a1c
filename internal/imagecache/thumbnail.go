package imagecache

import (
	"bytes"
	"fmt"
	"time"

	_ "image/gif"
	_ "image/png"

	"playlist-browser/internal/metrics"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

// MaxThumbnailWidth bounds the width accepted by Thumbnail.
const MaxThumbnailWidth = 1024

// Thumbnail decodes the cached entry filename and returns it as a JPEG no
// wider than width, keeping the aspect ratio. Images already narrower are
// re-encoded without scaling. The stored file is left untouched.
func (c *Cache) Thumbnail(filename string, width int) ([]byte, error) {
	if width < 1 || width > MaxThumbnailWidth {
		return nil, ErrInvalidWidth
	}

	f, _, err := c.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	c.resize <- struct{}{}
	defer func() { <-c.resize }()

	start := time.Now()
	defer func() { metrics.ThumbnailResizeDuration.Observe(time.Since(start).Seconds()) }()

	img, err := imaging.Decode(f, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", filename, err)
	}

	if img.Bounds().Dx() > width {
		img = imaging.Resize(img, width, 0, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return nil, fmt.Errorf("encoding thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}
