package loader

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// skipDirs are never descended into.
var skipDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	"vendor":       true,
	"__pycache__":  true,
	".venv":        true,
}

// IgnoreMatcher decides which paths are excluded from a scan, combining the
// .gitignore files found under the roots with configured exclude globs.
type IgnoreMatcher struct {
	roots   []string
	exclude []string
	rules   []ignoreRule
}

type ignoreRule struct {
	pattern string
	negate  bool
	dirOnly bool
	// base is the directory of the .gitignore the rule came from, or the
	// scan root for configured excludes.
	base string
}

// NewIgnoreMatcher creates a matcher for roots. Call Load before Match.
func NewIgnoreMatcher(roots, exclude []string) *IgnoreMatcher {
	return &IgnoreMatcher{roots: roots, exclude: exclude}
}

// Load reads the configured excludes and every .gitignore below the roots.
// Unreadable entries are skipped.
func (m *IgnoreMatcher) Load() error {
	m.rules = m.rules[:0]
	for _, root := range m.roots {
		for _, p := range m.exclude {
			m.rules = append(m.rules, newRule(p, root))
		}
	}

	for _, root := range m.roots {
		err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			if d.IsDir() {
				if path != root && skipDirs[d.Name()] {
					return filepath.SkipDir
				}
				return nil
			}
			if d.Name() != ".gitignore" {
				return nil
			}
			rules, readErr := readIgnoreFile(path)
			if readErr == nil {
				m.rules = append(m.rules, rules...)
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("loading ignore rules under %s: %w", root, err)
		}
	}
	return nil
}

// Match reports whether path is ignored. Later rules override earlier ones.
func (m *IgnoreMatcher) Match(path string) bool {
	ignored := false
	for _, r := range m.rules {
		if r.matches(path) {
			ignored = !r.negate
		}
	}
	return ignored
}

// SkipDir reports whether a directory should not be descended into.
func SkipDir(name string) bool {
	return skipDirs[name]
}

func readIgnoreFile(path string) ([]ignoreRule, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	base := filepath.Dir(path)
	var rules []ignoreRule
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		rules = append(rules, newRule(line, base))
	}
	return rules, sc.Err()
}

func newRule(pattern, base string) ignoreRule {
	r := ignoreRule{base: base}
	if strings.HasPrefix(pattern, "!") {
		r.negate = true
		pattern = pattern[1:]
	}
	if strings.HasSuffix(pattern, "/") {
		r.dirOnly = true
		pattern = strings.TrimSuffix(pattern, "/")
	}
	r.pattern = pattern
	return r
}

// matches tests the rule against path. Directory-only rules match any path
// component, since paths are matched before they are stat'ed.
func (r ignoreRule) matches(path string) bool {
	rel, ok := r.relative(path)
	if !ok {
		return false
	}
	if strings.Contains(r.pattern, "/") {
		pattern := strings.TrimPrefix(r.pattern, "/")
		if strings.Contains(pattern, "**") {
			return matchSegments(splitSegments(pattern), splitSegments(rel))
		}
		matched, _ := filepath.Match(pattern, filepath.ToSlash(rel))
		return matched
	}
	for _, seg := range splitSegments(rel) {
		if matched, _ := filepath.Match(r.pattern, seg); matched {
			return true
		}
	}
	return false
}

// relative returns path relative to the rule's base, or false when path lies
// outside it.
func (r ignoreRule) relative(path string) (string, bool) {
	if r.base == "" {
		return path, true
	}
	rel, err := filepath.Rel(r.base, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", false
	}
	return rel, true
}

// matchSegments matches pattern segments against path segments, with **
// standing for zero or more segments.
func matchSegments(pattern, path []string) bool {
	if len(pattern) == 0 {
		return len(path) == 0
	}
	if pattern[0] == "**" {
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
	if matched, _ := filepath.Match(pattern[0], path[0]); !matched {
		return false
	}
	return matchSegments(pattern[1:], path[1:])
}

func splitSegments(path string) []string {
	var out []string
	for _, p := range strings.Split(filepath.ToSlash(path), "/") {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
