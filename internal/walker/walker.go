// Package walker resolves upload arguments (files, directories and glob
// patterns) into the PDF files they name.
package walker

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// FileInfo holds metadata about a single file selected for upload.
type FileInfo struct {
	Path string // Path as resolved from the argument.
	Size int64  // File size in bytes.
}

// Config controls the behaviour of Expand.
type Config struct {
	Exclude []string // Glob patterns; matching files are skipped.
}

// Expand resolves each argument. A regular file is taken as named,
// whatever its extension. A directory is walked for *.pdf files. Anything
// else is a doublestar glob ("contracts/**/*.pdf"). Results are
// deduplicated and sorted by path.
func Expand(args []string, cfg Config) ([]FileInfo, error) {
	seen := make(map[string]bool)
	var files []FileInfo

	add := func(path string, size int64) {
		if seen[path] || MatchesExclude(path, cfg.Exclude) {
			return
		}
		seen[path] = true
		files = append(files, FileInfo{Path: path, Size: size})
	}

	for _, arg := range args {
		info, err := os.Stat(arg)
		switch {
		case err == nil && info.Mode().IsRegular():
			add(filepath.Clean(arg), info.Size())
		case err == nil && info.IsDir():
			if err := walkDir(arg, add); err != nil {
				return nil, err
			}
		default:
			if !doublestar.ValidatePathPattern(arg) {
				return nil, fmt.Errorf("walker: invalid pattern %q", arg)
			}
			matches, err := doublestar.FilepathGlob(arg, doublestar.WithFilesOnly())
			if err != nil {
				return nil, fmt.Errorf("walker: glob %q: %w", arg, err)
			}
			if len(matches) == 0 {
				return nil, fmt.Errorf("walker: no files match %q", arg)
			}
			for _, m := range matches {
				fi, err := os.Stat(m)
				if err != nil {
					continue
				}
				add(m, fi.Size())
			}
		}
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

func walkDir(root string, add func(string, int64)) error {
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			// Skip entries we cannot read instead of aborting.
			return nil
		}
		if d.IsDir() {
			if path != root && skipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || !isPDF(d.Name()) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		add(path, info.Size())
		return nil
	})
	if err != nil {
		return fmt.Errorf("walker: traversal: %w", err)
	}
	return nil
}
