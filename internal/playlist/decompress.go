package playlist

import (
	"bufio"
	"bytes"
	"compress/bzip2"
	"compress/gzip"
	"fmt"
	"io"

	"playlist-browser/internal/catalog"

	"github.com/ulikunitz/xz"
)

// Compression identifies how a playlist stream is encoded.
type Compression string

const (
	CompressionNone  Compression = "none"
	CompressionGzip  Compression = "gzip"
	CompressionBzip2 Compression = "bzip2"
	CompressionXZ    Compression = "xz"
)

var xzMagic = []byte{0xfd, '7', 'z', 'X', 'Z', 0x00}

// detect inspects the leading bytes of a stream.
func detect(header []byte) Compression {
	switch {
	case len(header) >= 2 && header[0] == 0x1f && header[1] == 0x8b:
		return CompressionGzip
	case len(header) >= 3 && header[0] == 'B' && header[1] == 'Z' && header[2] == 'h':
		return CompressionBzip2
	case bytes.HasPrefix(header, xzMagic):
		return CompressionXZ
	}
	return CompressionNone
}

// Decompress wraps r in the decoder its magic bytes call for. Plain text
// is passed through. The returned closer releases the decoder, not r.
func Decompress(r io.Reader) (io.Reader, Compression, func() error, error) {
	noop := func() error { return nil }
	br := bufio.NewReader(r)

	header, err := br.Peek(len(xzMagic))
	if err != nil && err != io.EOF {
		return nil, CompressionNone, noop, fmt.Errorf("peeking header: %w", err)
	}

	kind := detect(header)
	switch kind {
	case CompressionGzip:
		gzr, err := gzip.NewReader(br)
		if err != nil {
			return nil, kind, noop, fmt.Errorf("creating gzip reader: %w", err)
		}
		return gzr, kind, gzr.Close, nil
	case CompressionBzip2:
		return bzip2.NewReader(br), kind, noop, nil
	case CompressionXZ:
		xzr, err := xz.NewReader(br)
		if err != nil {
			return nil, kind, noop, fmt.Errorf("creating xz reader: %w", err)
		}
		return xzr, kind, noop, nil
	}
	return br, kind, noop, nil
}

// ParseCompressed parses a playlist that may be compressed.
func ParseCompressed(r io.Reader) (*catalog.Index, Stats, error) {
	dr, _, closeFn, err := Decompress(r)
	if err != nil {
		return nil, Stats{}, err
	}
	defer closeFn()
	return Parse(dr)
}
