package projfs

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// Root provides read and write helpers that resolve every path relative
// to a fixed project directory. Paths that escape the root, directly or
// through symlinks, are rejected.
type Root struct {
	absRoot string // absolute root with symlinks resolved
}

// New locks all future operations to the given root directory.
// The root path is resolved to an absolute, symlink-free directory.
func New(root string) (*Root, error) {
	if root == "" {
		return nil, errors.New("projfs: empty root")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	abs, err = filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, errors.New("projfs: root is not a directory")
	}
	return &Root{absRoot: abs}, nil
}

// Create makes the root directory if needed before locking onto it.
func Create(root string) (*Root, error) {
	if strings.TrimSpace(root) == "" {
		return nil, errors.New("projfs: empty root")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("projfs: mkdir root: %w", err)
	}
	return New(root)
}

// Dir returns the absolute root directory bound to this Root.
func (r *Root) Dir() string {
	if r == nil {
		return ""
	}
	return r.absRoot
}

// ReadFile reads a file relative to the root.
func (r *Root) ReadFile(userPath string) ([]byte, error) {
	p, err := r.resolve(userPath)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(p)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, errors.New("projfs: path is a directory")
	}
	return os.ReadFile(p)
}

// Stat returns metadata for a file or directory under the root.
func (r *Root) Stat(userPath string) (fs.FileInfo, error) {
	p, err := r.resolve(userPath)
	if err != nil {
		return nil, err
	}
	return os.Stat(p)
}

// Exists reports whether the path resolves to an existing entry.
func (r *Root) Exists(userPath string) bool {
	_, err := r.Stat(userPath)
	return err == nil
}

// ReadDir lists entries for a directory relative to the root.
func (r *Root) ReadDir(userPath string) ([]fs.DirEntry, error) {
	dir, err := r.resolve(userPath)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, errors.New("projfs: path is not a directory")
	}
	return os.ReadDir(dir)
}

// MkdirAll creates a directory tree under the root.
func (r *Root) MkdirAll(userPath string) error {
	p, err := r.resolveNew(userPath)
	if err != nil {
		return err
	}
	return os.MkdirAll(p, 0o755)
}

// WriteFile atomically writes data to a file relative to the root,
// creating parent directories as needed. The data lands under a
// temporary name first and is renamed into place, so readers never see
// a partial file.
func (r *Root) WriteFile(userPath string, data []byte) error {
	p, err := r.resolveNew(userPath)
	if err != nil {
		return err
	}
	dir := filepath.Dir(p)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("projfs: mkdir %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(p)+".*")
	if err != nil {
		return fmt.Errorf("projfs: temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("projfs: write %s: %w", userPath, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("projfs: close %s: %w", userPath, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, p); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("projfs: rename %s: %w", userPath, err)
	}
	return nil
}

// Remove deletes a file or directory tree relative to the root.
// Removing the root itself is not allowed.
func (r *Root) Remove(userPath string) error {
	p, err := r.resolve(userPath)
	if err != nil {
		return err
	}
	if p == r.absRoot {
		return errors.New("projfs: refusing to remove root")
	}
	return os.RemoveAll(p)
}

// Abs resolves a relative path to its absolute location under the root
// without requiring the target to exist yet.
func (r *Root) Abs(userPath string) (string, error) {
	return r.resolveNew(userPath)
}

func (r *Root) resolve(userPath string) (string, error) {
	joined, err := r.join(userPath)
	if err != nil {
		return "", err
	}
	resolved, err := filepath.EvalSymlinks(joined)
	if err != nil {
		return "", err
	}
	if !hasPathPrefix(resolved, r.absRoot) {
		return "", fmt.Errorf("projfs: resolved outside root (root=%s, path=%s)", r.absRoot, resolved)
	}
	return resolved, nil
}

// resolveNew resolves a path whose final components may not exist yet.
// The deepest existing ancestor is resolved through symlinks and the
// remainder re-attached, so a symlinked parent cannot smuggle a write
// outside the root.
func (r *Root) resolveNew(userPath string) (string, error) {
	joined, err := r.join(userPath)
	if err != nil {
		return "", err
	}
	dir := joined
	var rest []string
	for {
		resolved, err := filepath.EvalSymlinks(dir)
		if err == nil {
			joined = filepath.Join(append([]string{resolved}, rest...)...)
			break
		}
		if !os.IsNotExist(err) {
			return "", err
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", err
		}
		rest = append([]string{filepath.Base(dir)}, rest...)
		dir = parent
	}
	if !hasPathPrefix(joined, r.absRoot) {
		return "", fmt.Errorf("projfs: resolved outside root (root=%s, path=%s)", r.absRoot, joined)
	}
	return joined, nil
}

func (r *Root) join(userPath string) (string, error) {
	if r == nil {
		return "", errors.New("projfs: root not configured")
	}
	if userPath == "" {
		return "", errors.New("projfs: empty path")
	}
	clean := filepath.Clean(userPath)
	if clean == "." {
		return r.absRoot, nil
	}

	isAbs := filepath.IsAbs(clean) || (runtime.GOOS == "windows" && filepath.VolumeName(clean) != "")
	if !isAbs {
		if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
			return "", errors.New("projfs: path traversal not allowed")
		}
		return filepath.Join(r.absRoot, clean), nil
	}
	return clean, nil
}

func hasPathPrefix(path, root string) bool {
	path = filepath.Clean(path)
	root = filepath.Clean(root)
	if runtime.GOOS == "windows" {
		path = strings.ToLower(path)
		root = strings.ToLower(root)
	}
	if len(root) == 0 {
		return true
	}
	if path == root {
		return true
	}
	sep := string(os.PathSeparator)
	if !strings.HasSuffix(root, sep) {
		root += sep
	}
	if !strings.HasSuffix(path, sep) {
		path += sep
	}
	return strings.HasPrefix(path, root)
}
