package cache

import "strings"

// Key joins parts into a cache key. Empty parts are skipped.
func Key(parts ...string) string {
	nonEmpty := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, ":")
}

// Pattern builds a glob pattern matching every key under the given parts.
func Pattern(parts ...string) string {
	return Key(parts...) + ":*"
}
