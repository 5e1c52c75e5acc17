package projectstore

import (
	"database/sql"
	"strings"
	"time"
)

func (s *Store) ensureSchema() error {
	if s == nil || s.db == nil {
		return nil
	}
	s.schemaOnce.Do(func() {
		_, s.schemaErr = s.db.Exec(`
CREATE TABLE IF NOT EXISTS projects (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL DEFAULT 'Project',
  dir TEXT NOT NULL DEFAULT '',
  scene_component TEXT NOT NULL DEFAULT '',
  port INTEGER NOT NULL DEFAULT 0,
  status TEXT NOT NULL DEFAULT 'created',
  created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
  updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_projects_status ON projects (status);
`)
	})
	return s.schemaErr
}

const projectColumns = `id, name, dir, scene_component, port, status, created_at, updated_at`

func (s *Store) getDB(projectID string) (Project, bool) {
	if err := s.ensureSchema(); err != nil {
		return Project{}, false
	}
	id := strings.TrimSpace(projectID)
	if id == "" {
		return Project{}, false
	}
	row := s.db.QueryRow(`SELECT `+projectColumns+` FROM projects WHERE id = $1`, id)
	return scanProject(row)
}

func (s *Store) putDB(p Project) {
	if err := s.ensureSchema(); err != nil {
		return
	}
	n := normalizeProject(p)
	if n.ID == "" {
		return
	}
	_, _ = s.db.Exec(`
INSERT INTO projects (
  id, name, dir, scene_component, port, status, created_at, updated_at
)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
ON CONFLICT (id)
DO UPDATE SET name=EXCLUDED.name,
  dir=EXCLUDED.dir,
  scene_component=EXCLUDED.scene_component,
  port=EXCLUDED.port,
  status=EXCLUDED.status,
  updated_at=EXCLUDED.updated_at`,
		n.ID, n.Name, n.Dir, n.SceneComponent, n.Port, n.Status, n.CreatedAt, n.UpdatedAt)
}

func (s *Store) updateDB(projectID string, update func(*Project)) (Project, bool) {
	if err := s.ensureSchema(); err != nil {
		return Project{}, false
	}
	tx, err := s.db.Begin()
	if err != nil {
		return Project{}, false
	}
	defer func() { _ = tx.Rollback() }()

	id := strings.TrimSpace(projectID)
	row := tx.QueryRow(`SELECT `+projectColumns+` FROM projects WHERE id = $1 FOR UPDATE`, id)
	cur, ok := scanProject(row)
	if !ok {
		return Project{}, false
	}
	update(&cur)
	cur.ID = id
	cur.UpdatedAt = time.Now().UTC()
	cur = normalizeProject(cur)
	_, err = tx.Exec(`
UPDATE projects
SET name=$2, dir=$3, scene_component=$4, port=$5, status=$6, updated_at=$7
WHERE id=$1`,
		cur.ID, cur.Name, cur.Dir, cur.SceneComponent, cur.Port, cur.Status, cur.UpdatedAt)
	if err != nil {
		return Project{}, false
	}
	if err := tx.Commit(); err != nil {
		return Project{}, false
	}
	return cur, true
}

func (s *Store) listDB(status string) []Project {
	if err := s.ensureSchema(); err != nil {
		return nil
	}
	status = strings.TrimSpace(status)
	var (
		rows *sql.Rows
		err  error
	)
	if status == "" {
		rows, err = s.db.Query(`SELECT ` + projectColumns + ` FROM projects ORDER BY created_at DESC, id`)
	} else {
		rows, err = s.db.Query(`SELECT `+projectColumns+` FROM projects WHERE status = $1 ORDER BY created_at DESC, id`, status)
	}
	if err != nil {
		return nil
	}
	defer rows.Close()
	out := make([]Project, 0, 32)
	for rows.Next() {
		if p, ok := scanProject(rows); ok {
			out = append(out, p)
		}
	}
	return out
}

func (s *Store) deleteDB(projectID string) bool {
	if err := s.ensureSchema(); err != nil {
		return false
	}
	id := strings.TrimSpace(projectID)
	if id == "" {
		return false
	}
	res, err := s.db.Exec(`DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return false
	}
	n, err := res.RowsAffected()
	return err == nil && n > 0
}
