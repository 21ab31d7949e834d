package walker

import (
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// skipDir reports whether a directory is left out of a directory walk.
// Hidden directories (.git, .contractqa) and node_modules never hold
// contracts worth uploading.
func skipDir(name string) bool {
	return strings.HasPrefix(name, ".") || name == "node_modules"
}

// MatchesExclude reports whether path matches one of patterns. A pattern
// is tried against the whole slash-separated path and against the base
// name, so "draft-*" excludes drafts in any directory.
func MatchesExclude(path string, patterns []string) bool {
	slashed := filepath.ToSlash(path)
	base := filepath.Base(slashed)
	for _, p := range patterns {
		p = filepath.ToSlash(p)
		if ok, _ := doublestar.Match(p, slashed); ok {
			return true
		}
		if ok, _ := doublestar.Match(p, base); ok {
			return true
		}
	}
	return false
}

func isPDF(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".pdf")
}
