// Package filter narrows a rendered file list by name.
// It is applied to what the page already shows, never to the server request.
package filter

import (
	"path"
	"strings"

	"github.com/filebox/filebox-client/internal/view"
)

// Config holds filter configuration.
type Config struct {
	// Include patterns (glob-style). Empty means include all.
	// Example: []string{"*.dat", "*.txt"}
	Include []string

	// Exclude patterns (glob-style). Takes precedence over Include.
	// Example: []string{"debug*", "temp*"}
	Exclude []string

	// Search terms (case-insensitive substring match).
	// A name must match ALL search terms to be included.
	Search []string
}

// IsEmpty reports whether the config filters nothing.
func (c Config) IsEmpty() bool {
	return len(c.Include) == 0 && len(c.Exclude) == 0 && len(c.Search) == 0
}

// ApplyToItems returns the items whose names match, in their original order.
func ApplyToItems(items []view.ItemNode, config Config) []view.ItemNode {
	if config.IsEmpty() {
		return items
	}

	filtered := make([]view.ItemNode, 0, len(items))
	for _, item := range items {
		if Matches(item.Name, config) {
			filtered = append(filtered, item)
		}
	}
	return filtered
}

// Matches checks if a file name matches the filter configuration.
func Matches(filename string, config Config) bool {
	// 1. Exclude patterns first
	for _, pattern := range config.Exclude {
		if matched, _ := path.Match(pattern, filename); matched {
			return false
		}
	}

	// 2. Include patterns
	if len(config.Include) > 0 {
		included := false
		for _, pattern := range config.Include {
			if matched, _ := path.Match(pattern, filename); matched {
				included = true
				break
			}
		}
		if !included {
			return false
		}
	}

	// 3. Search terms
	if len(config.Search) > 0 {
		lowerFilename := strings.ToLower(filename)
		for _, term := range config.Search {
			if !strings.Contains(lowerFilename, strings.ToLower(term)) {
				return false
			}
		}
	}

	return true
}

// ParsePatternList parses a comma-separated list of patterns into a slice.
// Example: "*.dat,*.txt" -> []string{"*.dat", "*.txt"}
func ParsePatternList(patternStr string) []string {
	if patternStr == "" {
		return nil
	}
	parts := strings.Split(patternStr, ",")
	patterns := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			patterns = append(patterns, trimmed)
		}
	}
	return patterns
}
