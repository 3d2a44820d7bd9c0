package daemon

import (
	"context"
	"os"

	"go.uber.org/zap"

	"github.com/putao520/aria-ng-gui/internal/domain"
)

// Coordinator ties the supervisor to window events, inbound commands, and
// host signals. Run is the single coordination loop; every supervisor
// call and every window operation happens on it.
type Coordinator struct {
	supervisor *Supervisor
	window     domain.Window
	tray       domain.Tray
	commands   <-chan domain.Command
	signals    <-chan os.Signal
	logger     *zap.Logger

	state domain.WindowState
}

// NewCoordinator creates a new lifecycle coordinator.
func NewCoordinator(
	supervisor *Supervisor,
	window domain.Window,
	tray domain.Tray,
	commands <-chan domain.Command,
	logger *zap.Logger,
) *Coordinator {
	return &Coordinator{
		supervisor: supervisor,
		window:     window,
		tray:       tray,
		commands:   commands,
		logger:     logger,
	}
}

// WithSignals replaces the host signal source.
func (c *Coordinator) WithSignals(signals <-chan os.Signal) *Coordinator {
	c.signals = signals
	return c
}

// WindowState returns the coordinator's record of the window.
func (c *Coordinator) WindowState() domain.WindowState {
	return c.state
}

// Run drives the engine and UI until a shutdown signal, the window's
// closed event, or ctx cancellation. The engine is stopped before Run returns.
func (c *Coordinator) Run(ctx context.Context) error {
	signals := c.signals
	if signals == nil {
		ch, stop := NotifySignals()
		defer stop()
		signals = ch
	}

	var windowEvents <-chan domain.WindowEvent
	if c.window != nil {
		windowEvents = c.window.Events()
	}

	c.logger.Info("coordinator started", zap.Int("engine_pid", c.supervisor.PID()))

	for {
		select {
		case <-ctx.Done():
			c.teardown("context canceled")
			return nil

		case sig := <-signals:
			c.teardown("signal " + sig.String())
			return nil

		case ev := <-c.supervisor.Events():
			// Ctrl-C reaches the engine and the host together; a pending
			// shutdown wins over respawning the engine it just stopped.
			select {
			case sig := <-signals:
				c.teardown("signal " + sig.String())
				return nil
			case <-ctx.Done():
				c.teardown("context canceled")
				return nil
			default:
			}
			c.supervisor.HandleEvent(ev)

		case ev, ok := <-windowEvents:
			if !ok {
				windowEvents = nil
				continue
			}
			if c.handleWindowEvent(ev) {
				return nil
			}

		case cmd := <-c.commands:
			c.handleCommand(cmd)
		}
	}
}

// handleWindowEvent reacts to a window event and reports whether the loop
// should stop.
func (c *Coordinator) handleWindowEvent(ev domain.WindowEvent) bool {
	switch ev.Kind {
	case domain.WindowReadyToShow:
		if c.window != nil {
			c.window.Show()
			c.state.Visible = true
		}

	case domain.WindowClose:
		// Closing only hides the window; the engine keeps downloading.
		if c.window != nil {
			c.window.Hide()
			c.state.Visible = false
		}
		if c.tray != nil {
			c.tray.Display()
		}

	case domain.WindowClosed:
		c.teardown("window closed")
		return true
	}
	return false
}

func (c *Coordinator) handleCommand(cmd domain.Command) {
	switch cmd.Kind {
	case domain.CommandActivate:
		c.logger.Info("another instance started, activating window")
		if c.tray != nil {
			c.tray.Destroy()
		}
		if c.window != nil {
			c.window.Show()
			c.window.Focus()
			c.window.Beep()
			c.state.Visible = true
		}

	case domain.CommandProgress:
		p := ProgressFromValue(cmd.Value)
		if c.window != nil {
			c.window.SetProgress(p)
			c.state.Progress = p
		}

	case domain.CommandContextMenu:
		if c.window != nil {
			c.window.PopupContextMenu()
		}

	default:
		c.logger.Debug("ignoring unknown command", zap.String("kind", string(cmd.Kind)))
	}
}

// teardown stops the engine and drops the window so nothing touches it again.
func (c *Coordinator) teardown(reason string) {
	c.logger.Info("shutting down", zap.String("reason", reason))
	c.supervisor.Close()
	c.window = nil
	c.state.Visible = false
	if c.tray != nil {
		c.tray.Destroy()
	}
}
