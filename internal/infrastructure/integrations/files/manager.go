// Package files implements ports.FileManager on the local disk, resolving
// relative paths against a workspace root.
package files

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/doeshing/quack-go/internal/domain"
	"github.com/doeshing/quack-go/internal/pkg/filesystem"
	"github.com/doeshing/quack-go/internal/ports"
)

// skipDirs are not descended into by Search.
var skipDirs = map[string]bool{".git": true, "node_modules": true, "vendor": true, ".venv": true}

// Manager performs file operations relative to Root.
type Manager struct {
	Root string
}

// NewManager returns a manager rooted at root, or the working directory when
// root is empty.
func NewManager(root string) *Manager {
	root = filesystem.ExpandPath(root)
	if root == "" {
		if wd, err := os.Getwd(); err == nil {
			root = wd
		} else {
			root = "."
		}
	}
	return &Manager{Root: root}
}

// Resolve returns the absolute, cleaned form of path.
func (m *Manager) Resolve(path string) string {
	path = filesystem.ExpandPath(strings.TrimSpace(path))
	if path == "" {
		path = "."
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(m.Root, path)
	}
	return filepath.Clean(path)
}

func (m *Manager) List(dir string) ([]domain.FileEntry, error) {
	dir = m.Resolve(dir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, wrap(err)
	}
	out := make([]domain.FileEntry, 0, len(entries))
	for _, e := range entries {
		info, err := e.Info()
		if err != nil {
			continue
		}
		out = append(out, entry(filepath.Join(dir, e.Name()), info))
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].IsDir != out[j].IsDir {
			return out[i].IsDir
		}
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out, nil
}

func (m *Manager) Read(path string) (string, error) {
	path = m.Resolve(path)
	info, err := os.Stat(path)
	if err != nil {
		return "", wrap(err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("%w: %s is a directory", domain.ErrInvalidInput, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", wrap(err)
	}
	return string(data), nil
}

// Create writes content to path, creating parent directories. Existing files
// are overwritten.
func (m *Manager) Create(path, content string) error {
	path = m.Resolve(path)
	if err := os.MkdirAll(filepath.Dir(path), domain.DirectoryPermissions); err != nil {
		return wrap(err)
	}
	return wrap(os.WriteFile(path, []byte(content), domain.FilePermissions))
}

func (m *Manager) MakeDir(path string) error {
	return wrap(os.MkdirAll(m.Resolve(path), domain.DirectoryPermissions))
}

// Delete removes a file or an entire directory tree.
func (m *Manager) Delete(path string) error {
	path = m.Resolve(path)
	if _, err := os.Lstat(path); err != nil {
		return wrap(err)
	}
	return wrap(os.RemoveAll(path))
}

// Move renames src to dst. A directory destination receives src by name.
func (m *Manager) Move(src, dst string) error {
	src, dst = m.Resolve(src), m.intoDir(src, dst)
	if _, err := os.Stat(src); err != nil {
		return wrap(err)
	}
	if err := os.MkdirAll(filepath.Dir(dst), domain.DirectoryPermissions); err != nil {
		return wrap(err)
	}
	return wrap(os.Rename(src, dst))
}

// Copy copies a file or directory tree.
func (m *Manager) Copy(src, dst string) error {
	src, dst = m.Resolve(src), m.intoDir(src, dst)
	info, err := os.Stat(src)
	if err != nil {
		return wrap(err)
	}
	if !info.IsDir() {
		return wrap(copyFile(src, dst, info.Mode()))
	}
	return wrap(filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, domain.DirectoryPermissions)
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		return copyFile(path, target, info.Mode())
	}))
}

// Search walks root for names matching the glob pattern, case-insensitively.
func (m *Manager) Search(root, pattern string, limit int) ([]domain.FileEntry, error) {
	root = m.Resolve(root)
	pattern = strings.ToLower(strings.TrimSpace(pattern))
	if !strings.ContainsAny(pattern, "*?[") {
		pattern = "*" + pattern + "*"
	}
	if _, err := filepath.Match(pattern, ""); err != nil {
		return nil, fmt.Errorf("%w: bad pattern %q", domain.ErrInvalidInput, pattern)
	}
	var out []domain.FileEntry
	errLimit := errors.New("limit reached")
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable directories are skipped.
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() && path != root && skipDirs[d.Name()] {
			return fs.SkipDir
		}
		if ok, _ := filepath.Match(pattern, strings.ToLower(d.Name())); !ok || path == root {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		out = append(out, entry(path, info))
		if limit > 0 && len(out) >= limit {
			return errLimit
		}
		return nil
	})
	if err != nil && !errors.Is(err, errLimit) {
		return nil, wrap(err)
	}
	return out, nil
}

func (m *Manager) intoDir(src, dst string) string {
	dst = m.Resolve(dst)
	if info, err := os.Stat(dst); err == nil && info.IsDir() {
		return filepath.Join(dst, filepath.Base(m.Resolve(src)))
	}
	return dst
}

func copyFile(src, dst string, mode fs.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	if err := os.MkdirAll(filepath.Dir(dst), domain.DirectoryPermissions); err != nil {
		return err
	}
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, mode.Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func entry(path string, info fs.FileInfo) domain.FileEntry {
	return domain.FileEntry{
		Path:    path,
		Name:    info.Name(),
		Size:    info.Size(),
		IsDir:   info.IsDir(),
		ModTime: info.ModTime(),
	}
}

// wrap tags missing paths with domain.ErrNotFound and permission problems
// with domain.ErrInvalidInput.
func wrap(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%w: %v", domain.ErrNotFound, err)
	case errors.Is(err, fs.ErrPermission):
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	default:
		return err
	}
}

var _ ports.FileManager = (*Manager)(nil)
