package media

import (
	"context"
	"fmt"
	"os"
	"path"
	"sort"
	"strings"

	"framewright/internal/projfs"
)

// DiskStore keeps assets as plain files under a root-locked directory.
// It is the default backend when no object storage is configured.
type DiskStore struct {
	root *projfs.Root
}

// NewDiskStore creates dir if needed and locks the store onto it.
func NewDiskStore(dir string) (*DiskStore, error) {
	root, err := projfs.Create(dir)
	if err != nil {
		return nil, fmt.Errorf("media: disk store: %w", err)
	}
	return &DiskStore{root: root}, nil
}

func (s *DiskStore) Put(_ context.Context, key string, content []byte, _ string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("media: empty key")
	}
	return s.root.WriteFile(key, content)
}

func (s *DiskStore) Get(_ context.Context, key string) ([]byte, error) {
	b, err := s.root.ReadFile(strings.TrimSpace(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

func (s *DiskStore) List(_ context.Context, prefix string) ([]string, error) {
	prefix = strings.Trim(strings.TrimSpace(prefix), "/")
	start := "."
	if prefix != "" {
		if !s.root.Exists(prefix) {
			return nil, nil
		}
		start = prefix
	}
	var keys []string
	if err := s.walk(start, &keys); err != nil {
		return nil, err
	}
	if prefix != "" {
		for i, k := range keys {
			keys[i] = strings.TrimPrefix(k, prefix+"/")
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *DiskStore) walk(dir string, keys *[]string) error {
	entries, err := s.root.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		child := path.Join(dir, e.Name())
		if e.IsDir() {
			if err := s.walk(child, keys); err != nil {
				return err
			}
			continue
		}
		*keys = append(*keys, strings.TrimPrefix(child, "./"))
	}
	return nil
}

// URL returns a file:// URL for local consumption.
func (s *DiskStore) URL(_ context.Context, key string) (string, error) {
	key = strings.TrimSpace(key)
	if !s.root.Exists(key) {
		return "", ErrNotFound
	}
	abs, err := s.root.Abs(key)
	if err != nil {
		return "", err
	}
	return "file://" + abs, nil
}
