package qa

import "strings"

// CollapseSpace reduces all whitespace runs to single spaces and trims.
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// NormalizeForCompare prepares text for containment checks: whitespace is
// collapsed, trailing punctuation trimmed, and case folded.
func NormalizeForCompare(s string) string {
	s = CollapseSpace(s)
	s = strings.TrimRight(s, " .;:")
	return strings.ToLower(s)
}

// containsNormalized reports whether needle appears inside haystack after
// both are normalized.
func containsNormalized(haystack, needle string) bool {
	n := NormalizeForCompare(needle)
	if n == "" {
		return false
	}
	return strings.Contains(NormalizeForCompare(haystack), n)
}
