package models

import "strings"

// FileEntry represents one file known to the server.
// The name is the only identity the server gives us: it is assumed unique
// within a listing and free of path separators.
type FileEntry struct {
	Name string `json:"name" yaml:"name"`
}

// FileListing is an ordered set of entries as returned by one GET /files.
// It is rebuilt from scratch on every load and never cached between loads.
type FileListing []FileEntry

// ParseListing splits a newline-separated listing body into entries.
// Empty lines are skipped; a trailing carriage return is dropped so that
// CRLF bodies produce the same names as LF bodies.
func ParseListing(body string) FileListing {
	listing := FileListing{}
	for _, line := range strings.Split(body, "\n") {
		name := strings.TrimSuffix(line, "\r")
		if name == "" {
			continue
		}
		listing = append(listing, FileEntry{Name: name})
	}
	return listing
}

// Names returns the entry names in listing order.
func (l FileListing) Names() []string {
	names := make([]string, len(l))
	for i, entry := range l {
		names[i] = entry.Name
	}
	return names
}
