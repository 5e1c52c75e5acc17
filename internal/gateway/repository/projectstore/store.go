package projectstore

import (
	"database/sql"
	"log"
	"strings"
	"sync"

	"github.com/hashicorp/golang-lru/v2"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// Store fronts one of two backends. With a DSN it talks to Postgres
// and keeps a small read cache; otherwise it holds records in memory
// and snapshots them to a JSON file on Save.
type Store struct {
	path string
	db   *sql.DB

	loadOnce sync.Once
	mu       sync.RWMutex
	byID     map[string]Project

	schemaOnce sync.Once
	schemaErr  error

	cache *lru.Cache[string, Project]
}

func New(path string) *Store {
	return &Store{
		path: path,
		byID: make(map[string]Project),
	}
}

func NewPostgres(dsn string) (*Store, error) {
	db, err := sql.Open("pgx", strings.TrimSpace(dsn))
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	cache, err := lru.New[string, Project](1024)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db, cache: cache}, nil
}

// Open picks Postgres when dsn is non-empty and reachable, falling
// back to the file backend at path.
func Open(dsn, path string) *Store {
	if strings.TrimSpace(dsn) == "" {
		return New(path)
	}
	s, err := NewPostgres(dsn)
	if err != nil {
		log.Printf("projectstore: postgres unavailable, using %s: %v", path, err)
		return New(path)
	}
	return s
}

func (s *Store) EnsureLoaded() {
	if s == nil {
		return
	}
	if s.db != nil {
		_ = s.ensureSchema()
		return
	}
	s.ensureLoadedFile()
}

func (s *Store) Save() {
	if s == nil || s.db != nil {
		return
	}
	s.saveFile()
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Get(projectID string) (Project, bool) {
	if s == nil {
		return Project{}, false
	}
	if s.db != nil {
		if s.cache != nil {
			if p, ok := s.cache.Get(strings.TrimSpace(projectID)); ok {
				return p, true
			}
		}
		p, ok := s.getDB(projectID)
		if ok && s.cache != nil {
			s.cache.Add(p.ID, p)
		}
		return p, ok
	}
	return s.getFile(projectID)
}

func (s *Store) Put(p Project) {
	if s == nil {
		return
	}
	if s.db != nil {
		s.putDB(p)
		if s.cache != nil {
			s.cache.Remove(strings.TrimSpace(p.ID))
		}
		return
	}
	s.putFile(p)
}

func (s *Store) Update(projectID string, update func(*Project)) (Project, bool) {
	if s == nil {
		return Project{}, false
	}
	if s.db != nil {
		p, ok := s.updateDB(projectID, update)
		if s.cache != nil {
			s.cache.Remove(strings.TrimSpace(projectID))
		}
		return p, ok
	}
	return s.updateFile(projectID, update)
}

func (s *Store) List() []Project {
	if s == nil {
		return nil
	}
	if s.db != nil {
		return s.listDB("")
	}
	return s.listFile("")
}

func (s *Store) ListByStatus(status string) []Project {
	if s == nil {
		return nil
	}
	if s.db != nil {
		return s.listDB(status)
	}
	return s.listFile(status)
}

func (s *Store) Delete(projectID string) bool {
	if s == nil {
		return false
	}
	if s.db != nil {
		ok := s.deleteDB(projectID)
		if s.cache != nil {
			s.cache.Remove(strings.TrimSpace(projectID))
		}
		return ok
	}
	return s.deleteFile(projectID)
}
