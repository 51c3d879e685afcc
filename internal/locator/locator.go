// Package locator finds where a chat client is installed.
package locator

import (
	"os"
	"path/filepath"

	"github.com/thoas/go-funk"
)

// Locator returns an installation root, or "" when nothing was found.
type Locator interface {
	Locate() string
}

// Func adapts a plain function to Locator.
type Func func() string

func (f Func) Locate() string { return f() }

// Static always returns the same path. Empty paths locate nothing.
type Static string

func (s Static) Locate() string { return string(s) }

// Chain tries each locator in order and returns the first hit.
type Chain []Locator

func (c Chain) Locate() string {
	for _, l := range c {
		if l == nil {
			continue
		}
		if path := l.Locate(); path != "" {
			return path
		}
	}
	return ""
}

// Dirs probes well-known directories and returns the first one that
// contains every marker file.
type Dirs struct {
	Candidates []string
	Markers    []string
}

func (d Dirs) Locate() string {
	found := funk.Find(funk.UniqString(d.Candidates), func(dir string) bool {
		if dir == "" {
			return false
		}
		for _, marker := range d.Markers {
			if _, err := os.Stat(filepath.Join(dir, filepath.FromSlash(marker))); err != nil {
				return false
			}
		}
		return true
	})
	if found == nil {
		return ""
	}
	return found.(string)
}

// ProgramDirs expands a relative directory under the usual program roots:
// Program Files (both bitnesses), then the Wine prefix in the home directory.
func ProgramDirs(rel string) []string {
	rel = filepath.FromSlash(rel)
	var roots []string
	for _, env := range []string{"ProgramFiles(x86)", "ProgramFiles", "ProgramW6432"} {
		if v := os.Getenv(env); v != "" {
			roots = append(roots, v)
		}
	}
	roots = append(roots, `C:\Program Files (x86)`, `C:\Program Files`)

	if home, err := os.UserHomeDir(); err == nil {
		roots = append(roots,
			filepath.Join(home, ".wine/drive_c/Program Files (x86)"),
			filepath.Join(home, ".wine/drive_c/Program Files"),
		)
	}

	dirs := make([]string, 0, len(roots))
	for _, root := range roots {
		dirs = append(dirs, filepath.Join(root, rel))
	}
	return dirs
}
