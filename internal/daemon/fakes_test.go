package daemon

import (
	"errors"
	"io"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/putao520/aria-ng-gui/internal/domain"
)

// fakeChild is an engine process that runs until signaled or told to exit.
type fakeChild struct {
	pid  int
	done chan struct{}
	once sync.Once

	mu      sync.Mutex
	err     error
	signals []os.Signal
}

func newFakeChild(pid int) *fakeChild {
	return &fakeChild{pid: pid, done: make(chan struct{})}
}

func (c *fakeChild) Pid() int { return c.pid }

func (c *fakeChild) Signal(sig os.Signal) error {
	c.mu.Lock()
	c.signals = append(c.signals, sig)
	c.mu.Unlock()
	c.exit(errors.New("signal: interrupt"))
	return nil
}

func (c *fakeChild) Wait() error {
	<-c.done
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// exit makes Wait return err, as if the process died on its own.
func (c *fakeChild) exit(err error) {
	c.once.Do(func() {
		c.mu.Lock()
		c.err = err
		c.mu.Unlock()
		close(c.done)
	})
}

func (c *fakeChild) signalCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.signals)
}

func (c *fakeChild) alive() bool {
	select {
	case <-c.done:
		return false
	default:
		return true
	}
}

type spawnCall struct {
	path string
	args []string
}

// fakeSpawner hands out fakeChild processes. The first failures calls fail.
type fakeSpawner struct {
	mu       sync.Mutex
	failures int
	calls    []spawnCall
	children []*fakeChild
	nextPID  int
}

func (s *fakeSpawner) Spawn(path string, args []string, _, _ io.Writer) (domain.Child, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls = append(s.calls, spawnCall{path: path, args: args})
	if s.failures > 0 {
		s.failures--
		return nil, errors.New("exec: permission denied")
	}

	s.nextPID++
	c := newFakeChild(1000 + s.nextPID)
	s.children = append(s.children, c)
	return c, nil
}

func (s *fakeSpawner) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func (s *fakeSpawner) child(i int) *fakeChild {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.children[i]
}

func (s *fakeSpawner) liveChildren() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.children {
		if c.alive() {
			n++
		}
	}
	return n
}

type fakeEditor struct {
	mu    sync.Mutex
	paths []string
	err   error
}

func (e *fakeEditor) Edit(path string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.paths = append(e.paths, path)
	return e.err
}

func (e *fakeEditor) count() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.paths)
}

type fakeRegistry struct {
	mu      sync.Mutex
	records []domain.EngineRecord
}

func (r *fakeRegistry) Save(record domain.EngineRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, record)
	return nil
}

func (r *fakeRegistry) Load() (*domain.EngineRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.records) == 0 {
		return nil, nil
	}
	rec := r.records[len(r.records)-1]
	return &rec, nil
}

func (r *fakeRegistry) Clear() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = nil
	return nil
}

func (r *fakeRegistry) GetRegistryPath() string { return "engine.json" }

// fakeWindow records every call made by the coordinator.
type fakeWindow struct {
	mu       sync.Mutex
	calls    []string
	progress []domain.Progress
	events   chan domain.WindowEvent
}

func newFakeWindow() *fakeWindow {
	// Unbuffered so a test send returns only once the loop has taken it.
	return &fakeWindow{events: make(chan domain.WindowEvent)}
}

func (w *fakeWindow) record(call string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.calls = append(w.calls, call)
}

func (w *fakeWindow) Show()             { w.record("show") }
func (w *fakeWindow) Hide()             { w.record("hide") }
func (w *fakeWindow) Focus()            { w.record("focus") }
func (w *fakeWindow) PopupContextMenu() { w.record("menu") }
func (w *fakeWindow) Beep()             { w.record("beep") }

func (w *fakeWindow) SetProgress(p domain.Progress) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.calls = append(w.calls, "progress")
	w.progress = append(w.progress, p)
}

func (w *fakeWindow) Events() <-chan domain.WindowEvent { return w.events }

func (w *fakeWindow) Calls() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.calls...)
}

func (w *fakeWindow) Progress() []domain.Progress {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]domain.Progress(nil), w.progress...)
}

type fakeTray struct {
	mu        sync.Mutex
	displayed int
	destroyed int
}

func (t *fakeTray) Display() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.displayed++
}

func (t *fakeTray) Destroy() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.destroyed++
}

func (t *fakeTray) counts() (displayed, destroyed int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.displayed, t.destroyed
}

func newTestSupervisor(spawner *fakeSpawner, editor *fakeEditor, registry *fakeRegistry, delay time.Duration) *Supervisor {
	config := SupervisorConfig{
		BinaryPath:   "/opt/ariang/engine/linux/x64/aria2c",
		ConfigPath:   "/home/user/.config/AriaNg GUI/aria2/aria2.conf",
		RestartDelay: delay,
		Stdout:       io.Discard,
		Stderr:       io.Discard,
	}

	var ed domain.ConfigEditor
	if editor != nil {
		ed = editor
	}
	var reg domain.EngineRegistry
	if registry != nil {
		reg = registry
	}
	return NewSupervisor(config, spawner, ed, reg, zap.NewNop())
}

func waitEvent(t *testing.T, s *Supervisor) Event {
	t.Helper()
	select {
	case ev := <-s.Events():
		return ev
	case <-time.After(2 * time.Second):
		require.FailNow(t, "timed out waiting for supervisor event")
		return Event{}
	}
}

func assertNoEvent(t *testing.T, s *Supervisor, wait time.Duration) {
	t.Helper()
	select {
	case ev := <-s.Events():
		require.Failf(t, "unexpected supervisor event", "got %+v", ev)
	case <-time.After(wait):
	}
}
