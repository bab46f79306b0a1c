// Package playlist parses extended M3U playlists into a catalog.Index.
//
// Parsing is a single tolerant pass: lines that are not #EXTINF directives
// or stream URLs are ignored, and a malformed directive only drops the
// channel it describes. Only read errors from the underlying reader abort a
// parse.
//
// Playlists may be plain text or gzip, bzip2 or xz compressed; the format is
// detected from magic bytes. Load also accepts http(s) URLs and decodes
// brotli or gzip content encodings.
package playlist
