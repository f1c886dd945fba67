// Package fsscope gives the UI file access limited to configured directories.
package fsscope

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"codefendpanel/internal/logging"
	"codefendpanel/internal/plugin"
)

// MaxReadSize limits files returned to the UI
const MaxReadSize = 64 << 20

var (
	// ErrOutsideScope is returned for paths outside every allowed root
	ErrOutsideScope = errors.New("path is outside the allowed scope")
	// ErrTooLarge is returned for files over MaxReadSize
	ErrTooLarge = errors.New("file is too large")
)

// Entry is a directory listing item
type Entry struct {
	Name     string    `json:"name"`
	IsDir    bool      `json:"isDirectory"`
	IsFile   bool      `json:"isFile"`
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified"`
}

// FS performs scoped file operations
type FS struct {
	roots []string
}

// New creates a scoped filesystem. Roots must be absolute.
func New(roots []string) *FS {
	cleaned := make([]string, 0, len(roots))
	for _, r := range roots {
		if filepath.IsAbs(r) {
			cleaned = append(cleaned, filepath.Clean(r))
		}
	}
	return &FS{roots: cleaned}
}

// Plugin registers the filesystem as the "fs" plugin. Roots are created on start.
func Plugin(f *FS) plugin.Plugin {
	return plugin.Plugin{
		Name:    "fs",
		Service: f,
		Start: func(_ context.Context) error {
			for _, r := range f.roots {
				if err := os.MkdirAll(r, 0755); err != nil {
					return err
				}
			}
			logging.Info("Filesystem scopes ready", "roots", len(f.roots))
			return nil
		},
	}
}

// Roots returns the allowed directories
func (f *FS) Roots() []string {
	return append([]string(nil), f.roots...)
}

// resolve cleans path and checks it against the roots after resolving
// symlinks, so a link cannot point outside a root.
func (f *FS) resolve(path string) (string, error) {
	if !filepath.IsAbs(path) {
		return "", fmt.Errorf("%w: %q is not absolute", ErrOutsideScope, path)
	}
	clean := realPath(filepath.Clean(path))

	for _, root := range f.roots {
		rel, err := filepath.Rel(realPath(root), clean)
		if err != nil {
			continue
		}
		if rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))) {
			return clean, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrOutsideScope, logging.MaskPath(path))
}

// Resolve returns the real path of path if it lies inside the scope
func (f *FS) Resolve(path string) (string, error) {
	return f.resolve(path)
}

// realPath resolves symlinks in the longest existing prefix of p
func realPath(p string) string {
	if r, err := filepath.EvalSymlinks(p); err == nil {
		return r
	}
	parent := filepath.Dir(p)
	if parent == p {
		return p
	}
	return filepath.Join(realPath(parent), filepath.Base(p))
}

// ReadTextFile returns the contents of a file
func (f *FS) ReadTextFile(path string) (string, error) {
	p, err := f.resolve(path)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(p)
	if err != nil {
		return "", err
	}
	if info.Size() > MaxReadSize {
		return "", ErrTooLarge
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// WriteTextFile replaces a file, creating parent directories
func (f *FS) WriteTextFile(path, content string) error {
	p, err := f.resolve(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		return err
	}
	return os.WriteFile(p, []byte(content), 0644)
}

// Exists reports whether path exists inside the scope
func (f *FS) Exists(path string) bool {
	p, err := f.resolve(path)
	if err != nil {
		return false
	}
	_, err = os.Stat(p)
	return err == nil
}

// Mkdir creates a directory and its parents
func (f *FS) Mkdir(path string) error {
	p, err := f.resolve(path)
	if err != nil {
		return err
	}
	return os.MkdirAll(p, 0755)
}

// Remove deletes a file or an empty directory. Roots cannot be removed.
func (f *FS) Remove(path string) error {
	p, err := f.resolve(path)
	if err != nil {
		return err
	}
	for _, root := range f.roots {
		if p == realPath(root) {
			return fmt.Errorf("%w: cannot remove a scope root", ErrOutsideScope)
		}
	}
	return os.Remove(p)
}

// ReadDir lists a directory sorted by name
func (f *FS) ReadDir(path string) ([]Entry, error) {
	p, err := f.resolve(path)
	if err != nil {
		return nil, err
	}
	dirEntries, err := os.ReadDir(p)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(dirEntries))
	for _, de := range dirEntries {
		info, err := de.Info()
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, err
		}
		entries = append(entries, Entry{
			Name:     de.Name(),
			IsDir:    de.IsDir(),
			IsFile:   info.Mode().IsRegular(),
			Size:     info.Size(),
			Modified: info.ModTime(),
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}
