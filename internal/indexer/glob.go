package indexer

import "strings"

// matchGlob reports whether the slash-separated relative path matches a
// doublestar-style glob pattern: "**" matches any number of path segments
// (including zero), a bare "*" within a segment matches any run of
// non-separator characters, matching the ignore::OverrideBuilder semantics
// original_source's workspace walker relies on. No doublestar library ships
// in the retrieval pack, so this is hand-rolled rather than pulled in from
// outside it.
func matchGlob(pattern, path string) bool {
	return matchSegments(splitPattern(pattern), splitPattern(path))
}

func splitPattern(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, "/")
}

func matchSegments(pattern, path []string) bool {
	for len(pattern) > 0 {
		if pattern[0] == "**" {
			if len(pattern) == 1 {
				return true
			}
			for i := 0; i <= len(path); i++ {
				if matchSegments(pattern[1:], path[i:]) {
					return true
				}
			}
			return false
		}
		if len(path) == 0 {
			return false
		}
		if !matchSegment(pattern[0], path[0]) {
			return false
		}
		pattern = pattern[1:]
		path = path[1:]
	}
	return len(path) == 0
}

// matchSegment matches a single path segment against a pattern segment
// containing zero or more "*" wildcards.
func matchSegment(pattern, segment string) bool {
	parts := strings.Split(pattern, "*")
	if len(parts) == 1 {
		return pattern == segment
	}

	if !strings.HasPrefix(segment, parts[0]) {
		return false
	}
	segment = segment[len(parts[0]):]

	last := len(parts) - 1
	for i := 1; i < last; i++ {
		idx := strings.Index(segment, parts[i])
		if idx < 0 {
			return false
		}
		segment = segment[idx+len(parts[i]):]
	}

	return strings.HasSuffix(segment, parts[last])
}

// Matcher classifies workspace-relative paths as included or excluded
// according to an include-glob/exclude-glob pair, exclude taking priority.
type Matcher struct {
	include []string
	exclude []string
}

// NewMatcher builds a Matcher from the given include/exclude glob sets.
func NewMatcher(include, exclude []string) *Matcher {
	return &Matcher{include: include, exclude: exclude}
}

// Match reports whether path (workspace-relative, slash-separated) should be
// indexed: it must match at least one include glob and no exclude glob.
func (m *Matcher) Match(path string) bool {
	matched := false
	for _, g := range m.include {
		if matchGlob(g, path) {
			matched = true
			break
		}
	}
	if !matched {
		return false
	}
	for _, g := range m.exclude {
		if matchGlob(g, path) {
			return false
		}
	}
	return true
}
