package preview

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// fakeProc closes the studio's write side on Stop/Kill so the drain
// goroutine sees EOF the way it would for a real exit. Wait only runs
// after that EOF, so it can report the exit immediately.
type fakeProc struct {
	w       io.Closer
	exitErr error
	once    sync.Once
}

func (f *fakeProc) finish() {
	f.once.Do(func() {
		if f.w != nil {
			f.w.Close()
		}
	})
}

func (f *fakeProc) Wait() error { return f.exitErr }
func (f *fakeProc) Stop() error { f.finish(); return nil }
func (f *fakeProc) Kill() error { f.finish(); return nil }

// installFake swaps the npm and studio commands for fakes and returns
// the studio's write side plus an install counter.
func installFake(t *testing.T, exitErr error) (*io.PipeWriter, *atomic.Int32) {
	t.Helper()
	var installs atomic.Int32
	origInstall, origStart := runNpmInstall, startStudioCommand
	t.Cleanup(func() {
		runNpmInstall, startStudioCommand = origInstall, origStart
	})

	runNpmInstall = func(ctx context.Context, dir string) error {
		installs.Add(1)
		return nil
	}

	pr, pw := io.Pipe()
	t.Cleanup(func() { pw.Close() })
	startStudioCommand = func(dir string, port int) (process, io.ReadCloser, error) {
		proc := &fakeProc{w: pw, exitErr: exitErr}
		return proc, pr, nil
	}
	return pw, &installs
}

func waitForLog(t *testing.T, s *Supervisor, id, want string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if lines, ok := s.Logs(id); ok {
			for _, l := range lines {
				if strings.Contains(l, want) {
					return
				}
			}
		}
		time.Sleep(10 * time.Millisecond)
	}
	lines, _ := s.Logs(id)
	t.Fatalf("log line %q never appeared; have %v", want, lines)
}

func waitForStatus(t *testing.T, s *Supervisor, id string, want Status) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if info, ok := s.Status(id); ok && info.Status == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	info, _ := s.Status(id)
	t.Fatalf("status = %s, want %s", info.Status, want)
}

func TestSupervisor_StartStopLifecycle(t *testing.T) {
	pw, installs := installFake(t, nil)
	s := New(Config{PortMin: 42800, PortMax: 42820})
	dir := t.TempDir()

	port, err := s.Start(context.Background(), "p1", dir)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if port < 42800 || port > 42820 {
		t.Fatalf("port %d outside range", port)
	}
	if installs.Load() != 1 {
		t.Fatalf("installs = %d", installs.Load())
	}

	fmt.Fprintln(pw, "Server ready - Local: http://localhost:3000")
	waitForLog(t, s, "p1", "Server ready")

	info, ok := s.Status("p1")
	if !ok || info.Status != StatusPreviewing || info.Port != port {
		t.Fatalf("status = %+v", info)
	}

	if err := s.Stop("p1"); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	waitForStatus(t, s, "p1", StatusStopped)

	if err := s.Stop("p1"); !errors.Is(err, ErrNotRunning) {
		t.Fatalf("second Stop = %v, want ErrNotRunning", err)
	}
	if err := s.Stop("never-started"); !errors.Is(err, ErrNotRunning) {
		t.Fatalf("Stop unknown = %v, want ErrNotRunning", err)
	}
}

func TestSupervisor_InstallMarkerSkipsReinstall(t *testing.T) {
	_, installs := installFake(t, nil)
	s := New(Config{PortMin: 42830, PortMax: 42850})
	dir := t.TempDir()

	if _, err := s.Start(context.Background(), "p1", dir); err != nil {
		t.Fatalf("first Start: %v", err)
	}
	if err := s.Stop("p1"); err != nil {
		t.Fatalf("Stop: %v", err)
	}

	// New pipe pair for the restart.
	installFakeRestart(t)
	if _, err := s.Start(context.Background(), "p1", dir); err != nil {
		t.Fatalf("second Start: %v", err)
	}
	if installs.Load() != 1 {
		t.Fatalf("reinstalled despite marker: %d", installs.Load())
	}
}

// installFakeRestart replaces only the studio command with a fresh
// pipe, leaving the install counter from installFake in place.
func installFakeRestart(t *testing.T) {
	t.Helper()
	pr, pw := io.Pipe()
	orig := startStudioCommand
	t.Cleanup(func() {
		startStudioCommand = orig
		pw.Close()
	})
	startStudioCommand = func(dir string, port int) (process, io.ReadCloser, error) {
		return &fakeProc{w: pw}, pr, nil
	}
}

func TestSupervisor_StartWhileRunningReturnsSamePort(t *testing.T) {
	installFake(t, nil)
	s := New(Config{PortMin: 42860, PortMax: 42880})
	dir := t.TempDir()

	port1, err := s.Start(context.Background(), "p1", dir)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	port2, err := s.Start(context.Background(), "p1", dir)
	if err != nil {
		t.Fatalf("second Start: %v", err)
	}
	if port1 != port2 {
		t.Fatalf("ports differ: %d vs %d", port1, port2)
	}
}

func TestSupervisor_CrashMarksBroken(t *testing.T) {
	pw, _ := installFake(t, errors.New("exit status 1"))
	s := New(Config{PortMin: 42890, PortMax: 42910})

	if _, err := s.Start(context.Background(), "p1", t.TempDir()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	// Closing the pipe without Stop simulates a crash.
	pw.Close()
	waitForStatus(t, s, "p1", StatusBroken)
}

func TestSupervisor_SubscribeStreamsLines(t *testing.T) {
	pw, _ := installFake(t, nil)
	s := New(Config{PortMin: 42920, PortMax: 42940})

	if _, err := s.Start(context.Background(), "p1", t.TempDir()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	history, live, cancel, err := s.Subscribe("p1")
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	defer cancel()
	if len(history) == 0 {
		t.Fatal("expected lifecycle lines in history")
	}

	fmt.Fprintln(pw, "bundle rebuilt")
	select {
	case line := <-live:
		if !strings.Contains(line, "bundle rebuilt") {
			t.Fatalf("line = %q", line)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no line received")
	}

	if _, _, _, err := s.Subscribe("ghost"); err == nil {
		t.Fatal("expected error for unknown project")
	}
}

func TestAllocatePort_SkipsBoundPorts(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer l.Close()
	bound := l.Addr().(*net.TCPAddr).Port

	port, err := AllocatePort(bound, bound+10)
	if err != nil {
		t.Fatalf("AllocatePort: %v", err)
	}
	if port == bound {
		t.Fatalf("allocated bound port %d", port)
	}

	if _, err := AllocatePort(bound, bound); !errors.Is(err, ErrPortsExhausted) {
		t.Fatalf("err = %v, want ErrPortsExhausted", err)
	}

	if _, err := AllocatePort(0, 10); err == nil {
		t.Fatal("invalid range accepted")
	}
}
