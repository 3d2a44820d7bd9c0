// Package daemon implements the engine supervisor and the lifecycle
// coordinator that drives it.
package daemon

import (
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/putao520/aria-ng-gui/internal/domain"
)

// SupervisorConfig holds engine supervisor configuration.
type SupervisorConfig struct {
	BinaryPath   string        // resolved engine executable
	ConfigPath   string        // passed as --conf-path
	RestartDelay time.Duration // pause before a restart; zero restarts immediately
	Stdout       io.Writer     // engine stdout goes here
	Stderr       io.Writer     // engine stderr goes here
}

// DefaultSupervisorConfig returns a config forwarding engine output to the
// host's own streams with unthrottled restarts.
func DefaultSupervisorConfig(binaryPath, configPath string) SupervisorConfig {
	return SupervisorConfig{
		BinaryPath:   binaryPath,
		ConfigPath:   configPath,
		RestartDelay: 0,
		Stdout:       os.Stdout,
		Stderr:       os.Stderr,
	}
}

// EventKind identifies a supervisor event.
type EventKind string

const (
	EventExited  EventKind = "exited"  // the engine process ended
	EventErrored EventKind = "errored" // the engine could not be spawned
	EventRestart EventKind = "restart" // a delayed restart is due
)

// Event is an asynchronous completion delivered to the coordination loop.
// Generation ties it to the spawn it belongs to; events from an older
// generation are stale and ignored.
type Event struct {
	Kind       EventKind
	Generation uint64
	PID        int
	Err        error
}

// handle is the single owned reference to a live engine process.
type handle struct {
	child      domain.Child
	generation uint64
	detach     chan struct{} // closed on deliberate kill; silences the watcher
}

// Supervisor keeps exactly one engine process alive.
//
// All methods except Events must be called from the coordination goroutine.
// Watcher goroutines only ever send on the events channel.
type Supervisor struct {
	config   SupervisorConfig
	spawner  domain.Spawner
	editor   domain.ConfigEditor
	registry domain.EngineRegistry
	logger   *zap.Logger

	events chan Event
	closed chan struct{}

	handle     *handle
	generation uint64
	state      domain.EngineState
	restarts   int
	instanceID string
	startedAt  time.Time
}

// NewSupervisor creates a new engine supervisor. editor and registry may be nil.
func NewSupervisor(
	config SupervisorConfig,
	spawner domain.Spawner,
	editor domain.ConfigEditor,
	registry domain.EngineRegistry,
	logger *zap.Logger,
) *Supervisor {
	return &Supervisor{
		config:   config,
		spawner:  spawner,
		editor:   editor,
		registry: registry,
		logger:   logger,
		events:   make(chan Event, 16),
		closed:   make(chan struct{}),
		state:    domain.EngineStopped,
	}
}

// Events delivers exit, spawn-failure, and restart events.
func (s *Supervisor) Events() <-chan Event {
	return s.events
}

// State returns the current engine state.
func (s *Supervisor) State() domain.EngineState {
	return s.state
}

// PID returns the live engine PID, or 0 when none is running.
func (s *Supervisor) PID() int {
	if s.handle == nil {
		return 0
	}
	return s.handle.child.Pid()
}

// Restarts returns how many unexpected stops have triggered a restart.
func (s *Supervisor) Restarts() int {
	return s.restarts
}

// Start kills any live engine and spawns a new one.
func (s *Supervisor) Start() {
	s.Kill()
	s.spawn()
}

// Kill stops the live engine, if any. Its watcher is detached first so the
// deliberate stop never looks like a crash. Idempotent.
func (s *Supervisor) Kill() {
	// Any event still queued from the current generation is now stale.
	s.generation++

	if s.handle == nil {
		if s.state != domain.EngineStopped {
			s.setState(domain.EngineStopped)
			s.record()
		}
		return
	}

	h := s.handle
	close(h.detach)
	s.handle = nil

	if err := h.child.Signal(os.Interrupt); err != nil {
		s.logger.Debug("interrupt failed, engine already gone",
			zap.Int("pid", h.child.Pid()),
			zap.Error(err))
	}
	s.logger.Info("engine stopped", zap.Int("pid", h.child.Pid()))

	s.setState(domain.EngineStopped)
	s.record()
}

// Close kills the engine, clears its registry record, and releases pending
// event senders. The supervisor must not be started again afterwards.
func (s *Supervisor) Close() {
	s.Kill()
	if s.registry != nil {
		if err := s.registry.Clear(); err != nil {
			s.logger.Warn("failed to clear engine registry",
				zap.String("path", s.registry.GetRegistryPath()),
				zap.Error(err))
		}
	}
	select {
	case <-s.closed:
	default:
		close(s.closed)
	}
}

// HandleEvent applies the restart rule: any exit or spawn failure of the
// current generation leads to a new spawn.
func (s *Supervisor) HandleEvent(ev Event) {
	if ev.Generation != s.generation {
		s.logger.Debug("ignoring stale engine event",
			zap.String("kind", string(ev.Kind)),
			zap.Uint64("generation", ev.Generation),
			zap.Uint64("current", s.generation))
		return
	}

	switch ev.Kind {
	case EventRestart:
		s.restart()
		return
	case EventExited:
		s.handle = nil
		s.setState(domain.EngineExited)
	case EventErrored:
		s.setState(domain.EngineErrored)
	default:
		return
	}

	s.restarts++
	s.logger.Warn("engine stopped unexpectedly, restarting",
		zap.String("reason", string(ev.Kind)),
		zap.Int("pid", ev.PID),
		zap.Int("restarts", s.restarts),
		zap.Error(ev.Err))
	s.record()

	if s.config.RestartDelay > 0 {
		gen := s.generation
		time.AfterFunc(s.config.RestartDelay, func() {
			s.post(Event{Kind: EventRestart, Generation: gen})
		})
		return
	}
	s.restart()
}

// restart refreshes the config for the current environment and respawns.
func (s *Supervisor) restart() {
	if s.editor != nil {
		if err := s.editor.Edit(s.config.ConfigPath); err != nil {
			s.logger.Warn("failed to refresh engine config before restart", zap.Error(err))
		}
	}
	s.Start()
}

func (s *Supervisor) spawn() {
	s.generation++
	gen := s.generation
	s.setState(domain.EngineStarting)

	args := []string{"--conf-path=" + s.config.ConfigPath}
	child, err := s.spawner.Spawn(s.config.BinaryPath, args, s.config.Stdout, s.config.Stderr)
	if err != nil {
		s.logger.Error("failed to spawn engine",
			zap.String("path", s.config.BinaryPath),
			zap.Error(err))
		s.setState(domain.EngineErrored)
		s.post(Event{Kind: EventErrored, Generation: gen, Err: err})
		return
	}

	h := &handle{child: child, generation: gen, detach: make(chan struct{})}
	s.handle = h
	s.instanceID = uuid.NewString()
	s.startedAt = time.Now()
	s.setState(domain.EngineRunning)

	s.logger.Info("engine started",
		zap.Int("pid", child.Pid()),
		zap.String("path", s.config.BinaryPath),
		zap.String("instance", s.instanceID))
	s.record()

	go s.watch(h)
}

// watch waits for the child and reports its exit unless it was detached.
func (s *Supervisor) watch(h *handle) {
	err := h.child.Wait()

	select {
	case <-h.detach:
		return
	default:
	}

	select {
	case s.events <- Event{Kind: EventExited, Generation: h.generation, PID: h.child.Pid(), Err: err}:
	case <-h.detach:
	case <-s.closed:
	}
}

// post delivers ev without blocking the coordination goroutine.
func (s *Supervisor) post(ev Event) {
	select {
	case s.events <- ev:
	default:
		go func() {
			select {
			case s.events <- ev:
			case <-s.closed:
			}
		}()
	}
}

func (s *Supervisor) setState(state domain.EngineState) {
	if s.state == state {
		return
	}
	s.logger.Debug("engine state change",
		zap.String("from", string(s.state)),
		zap.String("to", string(state)))
	s.state = state
}

// record persists the current state so `status` and the next host process
// can see it.
func (s *Supervisor) record() {
	if s.registry == nil {
		return
	}

	rec := domain.EngineRecord{
		HostPID:    os.Getpid(),
		EnginePID:  s.PID(),
		EnginePath: s.config.BinaryPath,
		ConfigPath: s.config.ConfigPath,
		InstanceID: s.instanceID,
		Restarts:   s.restarts,
		State:      s.state,
		UpdatedAt:  time.Now().Unix(),
	}
	if !s.startedAt.IsZero() {
		rec.StartedAt = s.startedAt.Unix()
	}

	if err := s.registry.Save(rec); err != nil {
		s.logger.Warn("failed to update engine registry", zap.Error(err))
	}
}
