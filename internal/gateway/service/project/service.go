// Package project implements project business logic: creating scene
// projects on disk, rewriting their scenes through the converter, and
// driving preview processes.
package project

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"framewright/internal/convert"
	"framewright/internal/gateway/repository/projectstore"
	"framewright/internal/integrity"
	"framewright/internal/manifest"
	"framewright/internal/preview"
	"framewright/internal/projfs"
	"framewright/internal/scaffold"
)

// ErrNotFound marks lookups for project IDs the store does not know.
var ErrNotFound = errors.New("project not found")

// Service owns all project state. Records live in the store, files
// live under the projects root, and preview processes belong to the
// supervisor.
type Service struct {
	store    *projectstore.Store
	preview  *preview.Supervisor
	projects *projfs.Root
	defaults scaffold.Config
}

// New creates a project service rooted at projectsRoot, creating the
// directory if needed.
func New(store *projectstore.Store, sup *preview.Supervisor, projectsRoot string, defaults scaffold.Config) (*Service, error) {
	root, err := projfs.Create(projectsRoot)
	if err != nil {
		return nil, fmt.Errorf("project: open projects root: %w", err)
	}
	return &Service{
		store:    store,
		preview:  sup,
		projects: root,
		defaults: defaults,
	}, nil
}

// Store returns the underlying project persistence store.
func (s *Service) Store() *projectstore.Store { return s.store }

// Entry pairs a stored record with the live preview state, when any.
type Entry struct {
	Project projectstore.Project `json:"project"`
	Preview *preview.Info        `json:"preview,omitempty"`
}

type CreateRequest struct {
	Name string
	// Source is optional interactive component source. When present it
	// is converted and becomes the project's scene.
	Source string
}

type CreateResult struct {
	Entry   Entry
	Convert *convert.Result
}

func (s *Service) Create(_ context.Context, req CreateRequest) (CreateResult, error) {
	s.store.EnsureLoaded()

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = fmt.Sprintf("Project %d", time.Now().Unix()%100000)
	}
	projectID := fmt.Sprintf("project-%d", time.Now().UnixNano())

	var res *convert.Result
	sceneSource := ""
	component := ""
	if strings.TrimSpace(req.Source) != "" {
		converted, err := convert.ConvertWithOptions(req.Source, convert.Options{FPS: s.defaults.FPS})
		if err != nil {
			return CreateResult{}, fmt.Errorf("convert scene source: %w", err)
		}
		res = converted
		sceneSource = converted.Code
		component = converted.ComponentName
	}

	dir, err := s.projects.Abs(projectID)
	if err != nil {
		return CreateResult{}, err
	}
	root, err := projfs.Create(dir)
	if err != nil {
		return CreateResult{}, fmt.Errorf("create project dir: %w", err)
	}
	spec := s.defaults.Spec(name, sceneSource)
	if err := scaffold.Scaffold(root, spec); err != nil {
		return CreateResult{}, fmt.Errorf("scaffold project: %w", err)
	}
	if res != nil && len(res.AddedDependencies) > 0 {
		if err := s.appendDependencies(root, res.AddedDependencies); err != nil {
			return CreateResult{}, err
		}
	}

	s.store.Put(projectstore.Project{
		ID:             projectID,
		Name:           name,
		Dir:            dir,
		SceneComponent: component,
		Status:         projectstore.StatusCreated,
	})
	s.store.Save()

	e, err := s.get(projectID)
	if err != nil {
		return CreateResult{}, err
	}
	return CreateResult{Entry: e, Convert: res}, nil
}

func (s *Service) List(_ context.Context) []Entry {
	s.store.EnsureLoaded()
	records := s.store.List()
	out := make([]Entry, 0, len(records))
	for _, p := range records {
		out = append(out, s.withPreview(p))
	}
	return out
}

func (s *Service) Get(_ context.Context, projectID string) (Entry, error) {
	s.store.EnsureLoaded()
	return s.get(projectID)
}

func (s *Service) Delete(_ context.Context, projectID string) error {
	s.store.EnsureLoaded()
	p, ok := s.store.Get(projectID)
	if !ok {
		return fmt.Errorf("project %s: %w", projectID, ErrNotFound)
	}
	// A running studio holds the directory open; stop it first.
	_ = s.preview.Stop(p.ID)
	if err := s.projects.Remove(p.ID); err != nil {
		return fmt.Errorf("remove project dir: %w", err)
	}
	s.store.Delete(p.ID)
	s.store.Save()
	return nil
}

// Scene returns the project's current scene source.
func (s *Service) Scene(_ context.Context, projectID string) (string, error) {
	s.store.EnsureLoaded()
	root, _, err := s.open(projectID)
	if err != nil {
		return "", err
	}
	b, err := root.ReadFile(scaffold.ScenePath)
	if err != nil {
		return "", fmt.Errorf("read scene: %w", err)
	}
	return string(b), nil
}

// UpdateScene converts source and installs the result as the project's
// scene, appending any dependencies the converted code needs.
func (s *Service) UpdateScene(_ context.Context, projectID, source string) (Entry, *convert.Result, error) {
	s.store.EnsureLoaded()
	root, _, err := s.open(projectID)
	if err != nil {
		return Entry{}, nil, err
	}

	opts := convert.Options{FPS: s.defaults.FPS}
	var man *manifest.File
	if path, err := root.Abs("package.json"); err == nil {
		if m, err := manifest.Load(path); err == nil {
			man = m
			opts.Manifest = m
		}
	}

	res, err := convert.ConvertWithOptions(source, opts)
	if err != nil {
		return Entry{}, nil, fmt.Errorf("convert scene source: %w", err)
	}
	if err := root.WriteFile(scaffold.ScenePath, []byte(withTrailingNewline(res.Code))); err != nil {
		return Entry{}, nil, fmt.Errorf("write scene: %w", err)
	}
	if man != nil && len(res.AddedDependencies) > 0 {
		if err := man.Save(); err != nil {
			return Entry{}, nil, fmt.Errorf("save manifest: %w", err)
		}
	}

	s.store.Update(projectID, func(p *projectstore.Project) {
		p.SceneComponent = res.ComponentName
	})
	s.store.Save()

	e, err := s.get(projectID)
	if err != nil {
		return Entry{}, nil, err
	}
	return e, res, nil
}

// StartPreview launches (or reuses) the project's studio process and
// records the bound port.
func (s *Service) StartPreview(ctx context.Context, projectID string) (Entry, error) {
	s.store.EnsureLoaded()
	p, ok := s.store.Get(projectID)
	if !ok {
		return Entry{}, fmt.Errorf("project %s: %w", projectID, ErrNotFound)
	}

	port, err := s.preview.Start(ctx, p.ID, p.Dir)
	if err != nil {
		s.store.Update(p.ID, func(rec *projectstore.Project) {
			rec.Status = projectstore.StatusBroken
		})
		s.store.Save()
		return Entry{}, fmt.Errorf("start preview: %w", err)
	}

	s.store.Update(p.ID, func(rec *projectstore.Project) {
		rec.Status = projectstore.StatusPreviewing
		rec.Port = port
	})
	s.store.Save()
	return s.get(p.ID)
}

func (s *Service) StopPreview(_ context.Context, projectID string) (Entry, error) {
	s.store.EnsureLoaded()
	p, ok := s.store.Get(projectID)
	if !ok {
		return Entry{}, fmt.Errorf("project %s: %w", projectID, ErrNotFound)
	}
	if err := s.preview.Stop(p.ID); err != nil && !errors.Is(err, preview.ErrNotRunning) {
		return Entry{}, err
	}
	s.store.Update(p.ID, func(rec *projectstore.Project) {
		rec.Status = projectstore.StatusStopped
		rec.Port = 0
	})
	s.store.Save()
	return s.get(p.ID)
}

// StopAll shuts down every preview process. Called on gateway shutdown.
func (s *Service) StopAll() {
	if s == nil || s.preview == nil {
		return
	}
	s.preview.StopAll()
}

func (s *Service) PreviewLogs(projectID string) ([]string, error) {
	lines, ok := s.preview.Logs(projectID)
	if !ok {
		return nil, fmt.Errorf("project %s has no preview: %w", projectID, ErrNotFound)
	}
	return lines, nil
}

func (s *Service) SubscribeLogs(projectID string) ([]string, <-chan string, func(), error) {
	return s.preview.Subscribe(projectID)
}

// Check inspects the project checkout without modifying it.
func (s *Service) Check(_ context.Context, projectID string) (integrity.Report, error) {
	s.store.EnsureLoaded()
	root, _, err := s.open(projectID)
	if err != nil {
		return integrity.Report{}, err
	}
	return integrity.Check(root), nil
}

// Repair restores missing scaffold files, re-pins baseline
// dependencies, and rebuilds a damaged scene.
func (s *Service) Repair(_ context.Context, projectID string) (integrity.Result, error) {
	s.store.EnsureLoaded()
	root, p, err := s.open(projectID)
	if err != nil {
		return integrity.Result{}, err
	}
	spec := s.defaults.Spec(p.Name, "")
	res, err := integrity.Repair(root, spec)
	if err != nil {
		return integrity.Result{}, err
	}
	if len(res.Actions) > 0 {
		s.store.Update(p.ID, func(*projectstore.Project) {})
		s.store.Save()
	}
	return res, nil
}

func (s *Service) get(projectID string) (Entry, error) {
	p, ok := s.store.Get(projectID)
	if !ok {
		return Entry{}, fmt.Errorf("project %s: %w", projectID, ErrNotFound)
	}
	return s.withPreview(p), nil
}

// withPreview overlays live supervisor state on a stored record and
// persists the status when a crashed or stopped studio left the record
// stale.
func (s *Service) withPreview(p projectstore.Project) Entry {
	info, ok := s.preview.Status(p.ID)
	if !ok {
		return Entry{Project: p}
	}
	live := string(info.Status)
	if live != p.Status && p.Status != projectstore.StatusCreated {
		updated, ok := s.store.Update(p.ID, func(rec *projectstore.Project) {
			rec.Status = live
			if info.Status != preview.StatusPreviewing {
				rec.Port = 0
			}
		})
		if ok {
			p = updated
			s.store.Save()
		}
	}
	return Entry{Project: p, Preview: &info}
}

func (s *Service) open(projectID string) (*projfs.Root, projectstore.Project, error) {
	p, ok := s.store.Get(projectID)
	if !ok {
		return nil, projectstore.Project{}, fmt.Errorf("project %s: %w", projectID, ErrNotFound)
	}
	root, err := projfs.New(p.Dir)
	if err != nil {
		return nil, projectstore.Project{}, fmt.Errorf("open project dir: %w", err)
	}
	return root, p, nil
}

func (s *Service) appendDependencies(root *projfs.Root, deps map[string]string) error {
	path, err := root.Abs("package.json")
	if err != nil {
		return err
	}
	m, err := manifest.Load(path)
	if err != nil {
		return fmt.Errorf("load manifest: %w", err)
	}
	for name, version := range deps {
		m.AddDependency(name, version)
	}
	if err := m.Save(); err != nil {
		return fmt.Errorf("save manifest: %w", err)
	}
	return nil
}

func withTrailingNewline(s string) string {
	if strings.HasSuffix(s, "\n") {
		return s
	}
	return s + "\n"
}
