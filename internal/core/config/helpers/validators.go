package helpers

import (
	"os"
	"strings"
)

// HasWildcard reports glob metacharacters. Square brackets are left out
// because route folders such as app/[slug] use them literally.
func HasWildcard(pattern string) bool {
	return strings.ContainsAny(pattern, "*?{}")
}

// IsPathOverlap reports whether a and b are the same path or one contains
// the other.
func IsPathOverlap(a, b string) bool {
	if a == b {
		return true
	}
	if strings.HasPrefix(a, b+string(os.PathSeparator)) {
		return true
	}
	if strings.HasPrefix(b, a+string(os.PathSeparator)) {
		return true
	}
	return false
}
