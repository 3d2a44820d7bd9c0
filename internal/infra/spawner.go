package infra

import (
	"io"
	"os"
	"os/exec"
	"runtime"

	"github.com/putao520/aria-ng-gui/internal/domain"
)

// ExecSpawner implements domain.Spawner with os/exec.
type ExecSpawner struct{}

// NewExecSpawner creates a new spawner.
func NewExecSpawner() *ExecSpawner {
	return &ExecSpawner{}
}

// Spawn starts path with args. Output goes straight to stdout/stderr; when
// they are *os.File the child inherits the descriptors, so nothing closes them.
func (s *ExecSpawner) Spawn(path string, args []string, stdout, stderr io.Writer) (domain.Child, error) {
	cmd := exec.Command(path, args...)
	cmd.Stdin = nil
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	if err := cmd.Start(); err != nil {
		return nil, err
	}
	return &execChild{cmd: cmd}, nil
}

type execChild struct {
	cmd *exec.Cmd
}

func (c *execChild) Pid() int {
	return c.cmd.Process.Pid
}

// Signal delivers sig. os.Interrupt is not supported on Windows and falls
// back to Kill.
func (c *execChild) Signal(sig os.Signal) error {
	if runtime.GOOS == "windows" && sig == os.Interrupt {
		return c.cmd.Process.Kill()
	}
	return c.cmd.Process.Signal(sig)
}

func (c *execChild) Wait() error {
	return c.cmd.Wait()
}

// Ensure ExecSpawner implements domain.Spawner.
var _ domain.Spawner = (*ExecSpawner)(nil)
