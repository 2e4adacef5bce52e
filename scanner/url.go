package scanner

import "strings"

// joinURL joins URL fragments with single slashes, skipping empty parts.
func joinURL(parts ...string) string {
	segments := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.Trim(p, "/")
		if p == "" {
			continue
		}
		segments = append(segments, p)
	}
	return strings.Join(segments, "/")
}
