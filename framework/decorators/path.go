package decorators

import "strings"

// NormalizePath trims surrounding slashes and collapses repeated ones.
// An empty path stays empty; anything else gets exactly one leading slash.
//
//	NormalizePath("//books//:id/") == "/books/:id"
//	NormalizePath("")             == ""
func NormalizePath(path string) string {
	if path == "" {
		return ""
	}
	parts := strings.Split(path, "/")
	kept := parts[:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return "/" + strings.Join(kept, "/")
}

// JoinPath joins a controller prefix and a route path into a full pattern.
// The result always starts with a slash.
func JoinPath(prefix, path string) string {
	full := NormalizePath(prefix + "/" + path)
	if full == "" {
		return "/"
	}
	return full
}
