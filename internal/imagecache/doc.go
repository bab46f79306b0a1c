// Package imagecache keeps local copies of remote channel logos.
//
// Entries are content-addressed by the SHA-256 of the source URL and stored
// as <hex>.jpg in the cache directory regardless of their actual format.
// Files are written once through a temp file and rename, never modified,
// and never evicted.
package imagecache
