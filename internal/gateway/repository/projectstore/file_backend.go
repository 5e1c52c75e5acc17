package projectstore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

func (s *Store) ensureLoadedFile() {
	s.loadOnce.Do(func() {
		b, err := os.ReadFile(s.path)
		if err != nil {
			return
		}
		var rows []Project
		if err := json.Unmarshal(b, &rows); err != nil {
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		for _, row := range rows {
			id := strings.TrimSpace(row.ID)
			if id == "" {
				continue
			}
			s.byID[id] = normalizeProject(row)
		}
	})
}

func (s *Store) saveFile() {
	s.ensureLoadedFile()
	s.mu.RLock()
	rows := make([]Project, 0, len(s.byID))
	for _, p := range s.byID {
		rows = append(rows, normalizeProject(p))
	}
	s.mu.RUnlock()
	sort.Slice(rows, func(i, j int) bool { return rows[i].ID < rows[j].ID })

	b, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return
	}
	_ = os.MkdirAll(filepath.Dir(s.path), 0o755)
	_ = os.WriteFile(s.path, b, 0o644)
}

func (s *Store) getFile(projectID string) (Project, bool) {
	s.ensureLoadedFile()
	id := strings.TrimSpace(projectID)
	if id == "" {
		return Project{}, false
	}
	s.mu.RLock()
	p, ok := s.byID[id]
	s.mu.RUnlock()
	if !ok {
		return Project{}, false
	}
	return normalizeProject(p), true
}

func (s *Store) putFile(p Project) {
	s.ensureLoadedFile()
	normalized := normalizeProject(p)
	if normalized.ID == "" {
		return
	}
	s.mu.Lock()
	s.byID[normalized.ID] = normalized
	s.mu.Unlock()
}

func (s *Store) updateFile(projectID string, update func(*Project)) (Project, bool) {
	s.ensureLoadedFile()
	id := strings.TrimSpace(projectID)
	if id == "" {
		return Project{}, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.byID[id]
	if !ok {
		return Project{}, false
	}
	update(&p)
	p.ID = id
	p.UpdatedAt = time.Now().UTC()
	p = normalizeProject(p)
	s.byID[id] = p
	return p, true
}

// listFile returns projects ordered newest first, optionally filtered
// by status.
func (s *Store) listFile(status string) []Project {
	s.ensureLoadedFile()
	status = strings.TrimSpace(status)
	s.mu.RLock()
	out := make([]Project, 0, len(s.byID))
	for _, p := range s.byID {
		if status != "" && strings.TrimSpace(p.Status) != status {
			continue
		}
		out = append(out, normalizeProject(p))
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (s *Store) deleteFile(projectID string) bool {
	s.ensureLoadedFile()
	id := strings.TrimSpace(projectID)
	if id == "" {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[id]; !ok {
		return false
	}
	delete(s.byID, id)
	return true
}
