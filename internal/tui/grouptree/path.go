package grouptree

import "strings"

// Separator joins group path segments in the canonical string form.
// Titles containing the separator are indistinguishable from nesting;
// there is no escaping.
const Separator = " > "

// SplitPath returns the segments of a canonical path. An empty path has no
// segments and denotes the standalone (ungrouped) position.
func SplitPath(path string) []string {
	if path == "" {
		return nil
	}
	return strings.Split(path, Separator)
}

// JoinPath is the inverse of SplitPath.
func JoinPath(segments []string) string {
	return strings.Join(segments, Separator)
}

// LastSegment is the display title of the group at path.
func LastSegment(path string) string {
	segments := SplitPath(path)
	if len(segments) == 0 {
		return ""
	}
	return segments[len(segments)-1]
}

// IsDescendant reports whether path lies strictly below ancestor.
func IsDescendant(path, ancestor string) bool {
	return strings.HasPrefix(path, ancestor+Separator)
}
