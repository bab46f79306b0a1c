package playlist

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"playlist-browser/internal/catalog"
)

const (
	// DefaultCategory holds channels whose directive names no group.
	DefaultCategory = "Uncategorized"
	// EmptyCategory replaces a group attribute with an empty value.
	EmptyCategory = "No Category"

	directivePrefix = "#EXTINF"
	maxLineSize     = 1 << 20 // 1 MiB per line
)

// streamSchemes are the prefixes that mark a line as a stream URL.
var streamSchemes = []string{
	"http://", "https://",
	"rtmp://", "rtmps://", "rtsp://", "rtp://",
	"udp://", "mms://",
}

// Stats counts what a parse saw.
type Stats struct {
	Lines      int `json:"lines"`
	Directives int `json:"directives"`
	Channels   int `json:"channels"`
	OrphanURLs int `json:"orphanUrls"`
}

// pending is a parsed directive waiting for its stream URL.
type pending struct {
	category string
	name     string
	icon     string
}

// Parse reads an uncompressed playlist from r and builds the catalog.
func Parse(r io.Reader) (*catalog.Index, Stats, error) {
	b := catalog.NewBuilder()
	stats, err := parseInto(r, b)
	if err != nil {
		return nil, stats, err
	}
	return b.Build(), stats, nil
}

func parseInto(r io.Reader, b *catalog.Builder) (Stats, error) {
	var stats Stats
	var cur *pending

	sc := bufio.NewScanner(r)
	sc.Buffer(nil, maxLineSize)

	for sc.Scan() {
		stats.Lines++
		line := strings.TrimSpace(sc.Text())
		if stats.Lines == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}

		switch {
		case strings.HasPrefix(line, directivePrefix):
			stats.Directives++
			p := parseDirective(line)
			cur = &p

		case isStreamURL(line):
			if cur == nil {
				stats.OrphanURLs++
				continue
			}
			b.Add(cur.category, catalog.NewChannel(cur.name, line, cur.icon))
			stats.Channels++
			cur = nil
		}
	}

	if err := sc.Err(); err != nil {
		return stats, fmt.Errorf("reading playlist at line %d: %w", stats.Lines+1, err)
	}
	return stats, nil
}

// parseDirective resolves category, display name and logo from an #EXTINF
// line. Every directive yields an entry: a bare "#EXTINF:-1" lands in
// DefaultCategory with an empty name.
func parseDirective(line string) pending {
	head, rest, _ := strings.Cut(line, ",")
	attrText := stripDuration(strings.TrimPrefix(head, directivePrefix))

	attrs := scanAttributes(attrText)

	category := DefaultCategory
	if v, ok := attrs.Value("group-title"); ok && v == "" {
		category = EmptyCategory
	} else if v, ok := attrs.Value("group"); ok && v == "" {
		category = EmptyCategory
	}

	// An unterminated group-title still hides group.
	groupKey := "group"
	if _, ok := attrs.Lookup("group-title"); ok {
		groupKey = "group-title"
	}
	if v, ok := attrs.Value(groupKey); ok {
		category = v
	}

	name := cleanName(rest)
	if name == "" {
		name, _ = attrs.Value("tvg-name")
		name = strings.TrimSpace(name)
	}

	if category == "" {
		category = EmptyCategory
	}

	icon, _ := attrs.Value("tvg-logo")
	if icon == "" {
		icon = catalog.PlaceholderIcon
	}

	return pending{category: category, name: name, icon: icon}
}

// stripDuration drops the ":<duration>" token that follows #EXTINF.
func stripDuration(s string) string {
	s, ok := strings.CutPrefix(s, ":")
	if !ok {
		return strings.TrimSpace(s)
	}
	if i := strings.IndexAny(s, " \t"); i >= 0 {
		return strings.TrimSpace(s[i:])
	}
	return ""
}

// cleanName strips the leading tvg-id="" and tvg-name=" fragments some
// playlists leave in front of the display name and cuts at the first
// remaining quote.
func cleanName(s string) string {
	s = strings.TrimSpace(s)
	for strings.HasPrefix(s, `tvg-id=""`) {
		s = strings.TrimSpace(strings.TrimPrefix(s, `tvg-id=""`))
	}
	for strings.HasPrefix(s, `tvg-name="`) {
		s = strings.TrimSpace(strings.TrimPrefix(s, `tvg-name="`))
	}
	if i := strings.IndexByte(s, '"'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return s
}

func isStreamURL(line string) bool {
	if len(line) < 6 {
		return false
	}
	lower := strings.ToLower(line[:min(len(line), 8)])
	for _, scheme := range streamSchemes {
		if strings.HasPrefix(lower, scheme) {
			return true
		}
	}
	return false
}
