// Package domain contains core entities and interfaces of the shell.
// This is the innermost layer - no external dependencies.
package domain

import "time"

// EngineState is the supervisor's view of the engine process.
type EngineState string

const (
	EngineStopped  EngineState = "stopped"
	EngineStarting EngineState = "starting"
	EngineRunning  EngineState = "running"
	EngineExited   EngineState = "exited"
	EngineErrored  EngineState = "errored"
)

// BinaryDescriptor identifies a bundled engine executable.
type BinaryDescriptor struct {
	Platform       string // linux, darwin, win32, ...
	Arch           string // x64, ia32, arm, arm64, ...
	ExecutableName string // aria2c or aria2c.exe
}

// PathSet holds the legacy and current locations of the engine's files.
// CurrentBase survives upgrades; LegacyBase is the install directory and
// may be read-only or replaced on upgrade.
type PathSet struct {
	LegacyBase         string
	CurrentBase        string
	LegacyConfigPath   string
	CurrentConfigPath  string
	LegacySessionPath  string
	CurrentSessionPath string
}

// ProgressMode selects how the window's progress indicator is drawn.
type ProgressMode int

const (
	ProgressNone ProgressMode = iota
	ProgressNormal
	ProgressIndeterminate
)

// Progress is the value shown by the window's progress indicator.
type Progress struct {
	Mode     ProgressMode
	Fraction float64 // only meaningful for ProgressNormal, in (0,1]
}

// WindowState is the coordinator's record of the main window.
type WindowState struct {
	Visible  bool
	Progress Progress
}

// EngineRecord is the persisted state of the supervised engine.
// It lets a later host process find an engine orphaned by a crash.
type EngineRecord struct {
	Version    int         `json:"version"`
	HostPID    int         `json:"host_pid"`
	EnginePID  int         `json:"engine_pid"`
	EnginePath string      `json:"engine_path"`
	ConfigPath string      `json:"config_path"`
	InstanceID string      `json:"instance_id,omitempty"` // unique per spawn
	Restarts   int         `json:"restarts"`
	State      EngineState `json:"state"`
	StartedAt  int64       `json:"started_at"`
	UpdatedAt  int64       `json:"updated_at"`
}

// CommandKind is the type of an inbound UI command.
type CommandKind string

const (
	CommandProgress    CommandKind = "progress"
	CommandContextMenu CommandKind = "context-menu"
	CommandActivate    CommandKind = "activate" // a second instance tried to start
)

// Command is a fire-and-forget message from the hosted page or another
// instance. Value is nil when a progress command carries no number.
type Command struct {
	Kind  CommandKind
	Value *float64
}

// WindowEventKind enumerates events emitted by the main window.
type WindowEventKind string

const (
	WindowReadyToShow WindowEventKind = "ready-to-show"
	WindowClose       WindowEventKind = "close"  // user clicked the close control
	WindowClosed      WindowEventKind = "closed" // window disposed
)

// WindowEvent is emitted by the UI shell.
type WindowEvent struct {
	Kind WindowEventKind
	At   time.Time
}
