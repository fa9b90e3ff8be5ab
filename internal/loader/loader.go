// Package loader reads the source files of a scan from disk.
package loader

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// DefaultMaxFileSize is the largest file whose content is read.
const DefaultMaxFileSize int64 = 2 << 20

// File is one input to an analysis. A nil Content means the content is absent.
type File struct {
	Path    string
	Content []byte
}

// Options controls which files are loaded.
type Options struct {
	// Exclude holds gitignore-style globs applied in addition to .gitignore files.
	Exclude []string
	// MaxFileSize caps the size of a file whose content is read. Larger files
	// are returned with nil content. Zero means DefaultMaxFileSize.
	MaxFileSize int64
	// Accept filters files by path. Nil accepts everything.
	Accept func(path string) bool
}

// Load walks roots and returns the accepted files sorted by path. A root may
// be a single file.
func Load(roots []string, opts Options) ([]File, error) {
	maxSize := opts.MaxFileSize
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}

	matcher := NewIgnoreMatcher(roots, opts.Exclude)
	if err := matcher.Load(); err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var files []File
	add := func(path string, size int64) error {
		if seen[path] || matcher.Match(path) || (opts.Accept != nil && !opts.Accept(path)) {
			return nil
		}
		seen[path] = true
		f := File{Path: path}
		if size <= maxSize {
			content, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("reading %s: %w", path, err)
			}
			f.Content = content
		}
		files = append(files, f)
		return nil
	}

	for _, root := range roots {
		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", root, err)
		}
		if !info.IsDir() {
			if err := add(root, info.Size()); err != nil {
				return nil, err
			}
			continue
		}
		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			if d.IsDir() {
				if path != root && (SkipDir(d.Name()) || matcher.Match(path)) {
					return filepath.SkipDir
				}
				return nil
			}
			if !d.Type().IsRegular() {
				return nil
			}
			info, err := d.Info()
			if err != nil {
				return nil
			}
			return add(path, info.Size())
		})
		if err != nil {
			return nil, fmt.Errorf("walking %s: %w", root, err)
		}
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}
