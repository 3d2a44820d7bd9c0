package domain

import (
	"io"
	"os"
)

// ProcessManager handles OS process operations.
// Implementation: uses gopsutil for cross-platform support.
type ProcessManager interface {
	// IsRunning checks if a PID exists and is running.
	IsRunning(pid int) bool

	// Name returns the executable name of a running process.
	Name(pid int) (string, error)

	// Interrupt asks a process to stop (SIGINT, or kill where unsupported).
	Interrupt(pid int) error

	// GetCurrentPID returns the current process PID.
	GetCurrentPID() int
}

// FileSystemManager handles filesystem operations.
type FileSystemManager interface {
	// Exists checks if a path exists.
	Exists(path string) bool

	// Move copies src to dest then deletes src. Works across volumes.
	Move(src, dest string) error

	// Delete removes a single file.
	Delete(path string) error

	// ExpandHome expands ~ to the user's home directory.
	ExpandHome(path string) string
}

// Child is a spawned engine process.
type Child interface {
	// Pid returns the OS process ID.
	Pid() int

	// Signal sends sig to the process.
	Signal(sig os.Signal) error

	// Wait blocks until the process exits.
	Wait() error
}

// Spawner starts engine processes.
type Spawner interface {
	// Spawn starts path with args, forwarding output to stdout/stderr.
	// The writers are never closed by the child.
	Spawn(path string, args []string, stdout, stderr io.Writer) (Child, error)
}

// ConfigEditor rewrites the engine configuration for the current environment.
type ConfigEditor interface {
	// Edit creates or rewrites the config file at path.
	Edit(path string) error
}

// EngineRegistry persists the supervised engine's state.
// Implementation: JSON file in the user data directory.
type EngineRegistry interface {
	// Save replaces the stored record.
	Save(record EngineRecord) error

	// Load returns the stored record, or nil if none exists.
	Load() (*EngineRecord, error)

	// Clear removes the stored record.
	Clear() error

	// GetRegistryPath returns the registry file path.
	GetRegistryPath() string
}

// Window is the main application window, owned by the UI shell.
type Window interface {
	Show()
	Hide()
	Focus()
	SetProgress(p Progress)
	PopupContextMenu()
	Beep()

	// Events delivers window lifecycle events.
	Events() <-chan WindowEvent
}

// Tray is the system tray icon, owned by the UI shell.
type Tray interface {
	Display()
	Destroy()
}

// BinaryLocator finds the bundled engine executable.
type BinaryLocator interface {
	// Resolve returns the engine path for a bundle platform and arch.
	Resolve(platform, arch string) (string, error)
}

// ConfigMigrator moves engine files out of the install directory.
type ConfigMigrator interface {
	// MigrateAll migrates the config file, then the session file.
	MigrateAll(paths PathSet) error
}
