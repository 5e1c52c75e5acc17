// Package projectstore persists project records in either a JSON file
// or Postgres, selected at startup. The file backend is the default so
// the gateway runs with zero external services.
package projectstore

import (
	"strings"
	"time"
)

// Project lifecycle statuses. A record starts as created and then
// mirrors its preview process.
const (
	StatusCreated    = "created"
	StatusInstalling = "installing"
	StatusPreviewing = "previewing"
	StatusStopped    = "stopped"
	StatusBroken     = "broken"
)

type Project struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Dir            string    `json:"dir"`
	SceneComponent string    `json:"scene_component,omitempty"`
	Port           int       `json:"port,omitempty"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func normalizeProject(p Project) Project {
	p.ID = strings.TrimSpace(p.ID)
	p.Name = strings.TrimSpace(p.Name)
	p.Dir = strings.TrimSpace(p.Dir)
	p.SceneComponent = strings.TrimSpace(p.SceneComponent)
	p.Status = strings.TrimSpace(p.Status)
	if p.Name == "" {
		p.Name = "Project"
	}
	if p.Status == "" {
		p.Status = StatusCreated
	}
	if p.Port < 0 {
		p.Port = 0
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = p.CreatedAt
	}
	return p
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner) (Project, bool) {
	var p Project
	err := row.Scan(&p.ID, &p.Name, &p.Dir, &p.SceneComponent, &p.Port, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return Project{}, false
	}
	return normalizeProject(p), true
}
