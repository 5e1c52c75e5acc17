// Package preview supervises the per-project studio dev server: port
// allocation, one-time npm install, process lifecycle, and a bounded
// log with live subscriptions.
package preview

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"
)

// ErrNotRunning is returned by Stop when the project has no live
// preview process. Callers treating stop as idempotent can ignore it.
var ErrNotRunning = errors.New("preview: not running")

// Status mirrors the project lifecycle states persisted by the store.
type Status string

const (
	StatusInstalling Status = "installing"
	StatusPreviewing Status = "previewing"
	StatusStopped    Status = "stopped"
	StatusBroken     Status = "broken"
)

// Config bounds the supervisor's resources.
type Config struct {
	PortMin       int
	PortMax       int
	InstallMarker string
	LogLines      int
}

func (c Config) withDefaults() Config {
	if c.PortMin <= 0 {
		c.PortMin = 3000
	}
	if c.PortMax < c.PortMin {
		c.PortMax = c.PortMin + 99
	}
	if strings.TrimSpace(c.InstallMarker) == "" {
		c.InstallMarker = ".framewright-install.ok"
	}
	if c.LogLines <= 0 {
		c.LogLines = 500
	}
	return c
}

// process is the controllable side of a spawned studio server.
type process interface {
	Wait() error
	Stop() error
	Kill() error
}

// runNpmInstall is injectable in tests.
var runNpmInstall = func(ctx context.Context, dir string) error {
	cmd := exec.CommandContext(ctx, "npm", "install", "--no-audit", "--no-fund")
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("preview: npm install: %w: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}

// startStudioCommand is injectable in tests. The returned reader
// carries the process's combined stdout and stderr.
var startStudioCommand = func(dir string, port int) (process, io.ReadCloser, error) {
	cmd := exec.Command("npx", "remotion", "studio", "--port", strconv.Itoa(port), "--no-open")
	cmd.Dir = dir
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	pr, pw, err := os.Pipe()
	if err != nil {
		return nil, nil, fmt.Errorf("preview: pipe: %w", err)
	}
	cmd.Stdout = pw
	cmd.Stderr = pw
	if err := cmd.Start(); err != nil {
		pr.Close()
		pw.Close()
		return nil, nil, fmt.Errorf("preview: start studio: %w", err)
	}
	// The parent's write end must close so the reader sees EOF when
	// the process exits.
	pw.Close()
	return &studioProcess{cmd: cmd}, pr, nil
}

type studioProcess struct{ cmd *exec.Cmd }

func (p *studioProcess) Wait() error { return p.cmd.Wait() }

func (p *studioProcess) Stop() error {
	if p.cmd.Process == nil {
		return nil
	}
	// Negative pid signals the whole process group; npx re-spawns the
	// actual studio under itself.
	return syscall.Kill(-p.cmd.Process.Pid, syscall.SIGTERM)
}

func (p *studioProcess) Kill() error {
	if p.cmd.Process == nil {
		return nil
	}
	return syscall.Kill(-p.cmd.Process.Pid, syscall.SIGKILL)
}

// Info is the observable state of one supervised project.
type Info struct {
	Port   int    `json:"port"`
	Status Status `json:"status"`
	Dir    string `json:"dir"`
}

type entry struct {
	port   int
	dir    string
	status Status
	proc   process
	logs   *ringLog
	done   chan struct{}
}

// Supervisor owns every running preview process, one per project.
type Supervisor struct {
	cfg Config

	mu    sync.Mutex
	procs map[string]*entry
}

func New(cfg Config) *Supervisor {
	return &Supervisor{
		cfg:   cfg.withDefaults(),
		procs: make(map[string]*entry),
	}
}

// Start installs dependencies if needed, allocates a port, and spawns
// the studio server for the project rooted at dir. Starting an
// already-running project returns its existing port.
func (s *Supervisor) Start(ctx context.Context, projectID, dir string) (int, error) {
	projectID = strings.TrimSpace(projectID)
	if projectID == "" {
		return 0, fmt.Errorf("preview: empty project id")
	}

	s.mu.Lock()
	if e, ok := s.procs[projectID]; ok {
		switch e.status {
		case StatusPreviewing:
			port := e.port
			s.mu.Unlock()
			return port, nil
		case StatusInstalling:
			s.mu.Unlock()
			return 0, fmt.Errorf("preview: project %s is still installing", projectID)
		}
	}
	e := &entry{
		dir:    dir,
		status: StatusInstalling,
		logs:   newRingLog(s.cfg.LogLines),
		done:   make(chan struct{}),
	}
	s.procs[projectID] = e
	s.mu.Unlock()

	if err := s.ensureInstalled(ctx, e, dir); err != nil {
		s.markBroken(e)
		return 0, err
	}

	port, err := AllocatePort(s.cfg.PortMin, s.cfg.PortMax)
	if err != nil {
		s.markBroken(e)
		return 0, err
	}

	proc, out, err := startStudioCommand(dir, port)
	if err != nil {
		s.markBroken(e)
		return 0, err
	}

	s.mu.Lock()
	e.port = port
	e.proc = proc
	e.status = StatusPreviewing
	s.mu.Unlock()
	e.logs.append(fmt.Sprintf("[framewright] studio starting on port %d", port))

	go s.drain(e, proc, out)
	return port, nil
}

func (s *Supervisor) ensureInstalled(ctx context.Context, e *entry, dir string) error {
	marker := filepath.Join(dir, s.cfg.InstallMarker)
	if _, err := os.Stat(marker); err == nil {
		return nil
	}
	e.logs.append("[framewright] installing dependencies")
	if err := runNpmInstall(ctx, dir); err != nil {
		e.logs.append("[framewright] install failed: " + err.Error())
		return err
	}
	if err := os.WriteFile(marker, []byte(time.Now().UTC().Format(time.RFC3339)+"\n"), 0o644); err != nil {
		return fmt.Errorf("preview: write install marker: %w", err)
	}
	e.logs.append("[framewright] install complete")
	return nil
}

// drain copies process output into the ring log and records the exit.
func (s *Supervisor) drain(e *entry, proc process, out io.ReadCloser) {
	sc := bufio.NewScanner(out)
	sc.Buffer(make([]byte, 0, 64*1024), 256*1024)
	for sc.Scan() {
		e.logs.append(sc.Text())
	}
	out.Close()

	err := proc.Wait()
	s.mu.Lock()
	if e.status == StatusPreviewing {
		if err != nil {
			e.status = StatusBroken
		} else {
			e.status = StatusStopped
		}
	}
	status := e.status
	s.mu.Unlock()

	e.logs.append(fmt.Sprintf("[framewright] studio exited (%s)", status))
	close(e.done)
}

func (s *Supervisor) markBroken(e *entry) {
	s.mu.Lock()
	e.status = StatusBroken
	s.mu.Unlock()
	close(e.done)
}

// Stop terminates the project's studio process and waits briefly for
// it to go away, escalating to SIGKILL if needed.
func (s *Supervisor) Stop(projectID string) error {
	s.mu.Lock()
	e, ok := s.procs[strings.TrimSpace(projectID)]
	if !ok || e.proc == nil || e.status != StatusPreviewing {
		s.mu.Unlock()
		return fmt.Errorf("project %s: %w", projectID, ErrNotRunning)
	}
	e.status = StatusStopped
	proc := e.proc
	s.mu.Unlock()

	if err := proc.Stop(); err != nil {
		return err
	}
	select {
	case <-e.done:
	case <-time.After(3 * time.Second):
		_ = proc.Kill()
		<-e.done
	}
	return nil
}

// StopAll terminates every running preview, used at gateway shutdown.
func (s *Supervisor) StopAll() {
	s.mu.Lock()
	ids := make([]string, 0, len(s.procs))
	for id, e := range s.procs {
		if e.status == StatusPreviewing {
			ids = append(ids, id)
		}
	}
	s.mu.Unlock()
	for _, id := range ids {
		_ = s.Stop(id)
	}
}

// Status reports the supervised state of a project.
func (s *Supervisor) Status(projectID string) (Info, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.procs[strings.TrimSpace(projectID)]
	if !ok {
		return Info{}, false
	}
	return Info{Port: e.port, Status: e.status, Dir: e.dir}, true
}

// Logs returns the captured output so far.
func (s *Supervisor) Logs(projectID string) ([]string, bool) {
	s.mu.Lock()
	e, ok := s.procs[strings.TrimSpace(projectID)]
	s.mu.Unlock()
	if !ok {
		return nil, false
	}
	return e.logs.snapshot(), true
}

// Subscribe returns the log history plus a live channel for new lines.
// The cancel func must be called when the consumer goes away.
func (s *Supervisor) Subscribe(projectID string) (history []string, ch <-chan string, cancel func(), err error) {
	s.mu.Lock()
	e, ok := s.procs[strings.TrimSpace(projectID)]
	s.mu.Unlock()
	if !ok {
		return nil, nil, nil, fmt.Errorf("preview: project %s has no preview", projectID)
	}
	history, live, cancel := e.logs.subscribe(64)
	return history, live, cancel, nil
}
