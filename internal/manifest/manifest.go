// Package manifest reads and writes package.json files. Only the
// dependencies block is interpreted; every other field round-trips
// untouched, so repeated loads and saves never destroy fields the
// studio tooling does not know about.
package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// File is one package.json document. It satisfies the converter's
// manifest interface, so dependency resolution appends pins directly
// into the document.
type File struct {
	path string

	mu   sync.Mutex
	doc  map[string]json.RawMessage
	deps map[string]string
}

// New builds an empty manifest bound to path. Nothing is written until
// Save is called.
func New(path, name string) *File {
	f := &File{
		path: path,
		doc:  make(map[string]json.RawMessage),
		deps: make(map[string]string),
	}
	name = strings.TrimSpace(name)
	if name != "" {
		raw, _ := json.Marshal(name)
		f.doc["name"] = raw
	}
	return f
}

// Load parses the package.json at path.
func Load(path string) (*File, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("manifest: read %s: %w", path, err)
	}
	doc := make(map[string]json.RawMessage)
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("manifest: parse %s: %w", path, err)
	}
	deps := make(map[string]string)
	if raw, ok := doc["dependencies"]; ok {
		if err := json.Unmarshal(raw, &deps); err != nil {
			return nil, fmt.Errorf("manifest: invalid dependencies in %s: %w", path, err)
		}
	}
	return &File{path: path, doc: doc, deps: deps}, nil
}

// Path returns the file location this manifest is bound to.
func (f *File) Path() string {
	if f == nil {
		return ""
	}
	return f.path
}

// Name returns the package name, if any.
func (f *File) Name() string {
	if f == nil {
		return ""
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	raw, ok := f.doc["name"]
	if !ok {
		return ""
	}
	var name string
	if err := json.Unmarshal(raw, &name); err != nil {
		return ""
	}
	return name
}

// Dependencies returns a copy of the dependency pins.
func (f *File) Dependencies() map[string]string {
	if f == nil {
		return nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]string, len(f.deps))
	for k, v := range f.deps {
		out[k] = v
	}
	return out
}

// DependencyNames returns the pinned package names in sorted order.
func (f *File) DependencyNames() []string {
	deps := f.Dependencies()
	names := make([]string, 0, len(deps))
	for name := range deps {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HasDependency reports whether name carries a pin already.
func (f *File) HasDependency(name string) bool {
	if f == nil {
		return false
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.deps[strings.TrimSpace(name)]
	return ok
}

// AddDependency records a pin for name. An existing pin is never
// overwritten; an empty version falls back to "latest".
func (f *File) AddDependency(name, version string) {
	if f == nil {
		return
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return
	}
	version = strings.TrimSpace(version)
	if version == "" {
		version = "latest"
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.deps[name]; ok {
		return
	}
	f.deps[name] = version
}

// Save writes the document back to its path atomically. The
// dependencies block is re-encoded from the tracked pins; all other
// fields are emitted exactly as loaded.
func (f *File) Save() error {
	if f == nil {
		return fmt.Errorf("manifest: nil file")
	}
	f.mu.Lock()
	doc := make(map[string]json.RawMessage, len(f.doc)+1)
	for k, v := range f.doc {
		doc[k] = v
	}
	if len(f.deps) > 0 {
		raw, err := json.Marshal(f.deps)
		if err != nil {
			f.mu.Unlock()
			return fmt.Errorf("manifest: encode dependencies: %w", err)
		}
		doc["dependencies"] = raw
	}
	path := f.path
	f.mu.Unlock()

	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("manifest: encode: %w", err)
	}
	b = append(b, '\n')

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("manifest: mkdir %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".package.json.*")
	if err != nil {
		return fmt.Errorf("manifest: temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("manifest: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("manifest: close: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("manifest: rename: %w", err)
	}
	return nil
}
