// Package workspace finds Go files under a set of roots and runs the document
// processor over them concurrently.
package workspace

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// Scope controls which files are picked up.
type Scope struct {
	// Extensions are matched against filepath.Ext, e.g. ".go".
	Extensions []string
	// Ignore skips matching paths/dirs (relative to the root being walked).
	// Supports simple dir names (e.g., "vendor") and glob patterns (e.g., "gen/*").
	Ignore []string
}

// Matches reports whether a file name has one of the scope's extensions.
func (s Scope) Matches(name string) bool {
	ext := filepath.Ext(name)
	for _, e := range s.Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// Discover walks roots and returns matching files, sorted and de-duplicated.
// A root may itself be a file, which is returned as-is when it matches.
func Discover(roots []string, scope Scope) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			files = append(files, p)
		}
	}

	for _, root := range roots {
		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", root, err)
		}
		if !info.IsDir() {
			if scope.Matches(root) {
				add(filepath.Clean(root))
			}
			continue
		}

		err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			rel, relErr := filepath.Rel(root, p)
			if relErr != nil || rel == "." {
				return nil
			}
			if IsIgnored(rel, d.Name(), scope.Ignore) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if !d.IsDir() && scope.Matches(d.Name()) {
				add(p)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk %s: %w", root, err)
		}
	}

	sort.Strings(files)
	return files, nil
}

func normalizePattern(p string) string {
	p = strings.TrimSpace(p)
	p = strings.TrimSuffix(p, "/")
	p = strings.TrimSuffix(p, "\\")
	return filepath.ToSlash(p)
}

// IsIgnored reports whether rel (with base name) matches any ignore pattern.
func IsIgnored(rel, name string, patterns []string) bool {
	rel = filepath.ToSlash(rel)
	for _, raw := range patterns {
		p := normalizePattern(raw)
		if p == "" {
			continue
		}
		if strings.ContainsAny(p, "*?[]") {
			if ok, _ := path.Match(p, rel); ok {
				return true
			}
			if ok, _ := path.Match(p, name); ok {
				return true
			}
			continue
		}
		if name == p || rel == p || strings.HasPrefix(rel, p+"/") {
			return true
		}
	}
	return false
}
