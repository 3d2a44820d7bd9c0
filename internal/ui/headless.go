// Package ui provides the window and tray adapters used when no GUI toolkit
// hosts the shell. Every UI action is logged and recorded, so the engine
// core runs unchanged on servers and in tests.
package ui

import (
	"io"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/putao520/aria-ng-gui/internal/domain"
)

// HeadlessWindow implements domain.Window without drawing anything.
type HeadlessWindow struct {
	mu     sync.Mutex
	state  domain.WindowState
	locale string
	bell   io.Writer
	events chan domain.WindowEvent
	logger *zap.Logger
}

// NewHeadlessWindow creates a window that beeps on stderr.
func NewHeadlessWindow(locale string, logger *zap.Logger) *HeadlessWindow {
	return NewHeadlessWindowWithBell(locale, os.Stderr, logger)
}

// NewHeadlessWindowWithBell creates a window with a custom bell writer (for testing).
func NewHeadlessWindowWithBell(locale string, bell io.Writer, logger *zap.Logger) *HeadlessWindow {
	return &HeadlessWindow{
		locale: locale,
		bell:   bell,
		events: make(chan domain.WindowEvent, 8),
		logger: logger.With(zap.String("locale", locale)),
	}
}

func (w *HeadlessWindow) Show() {
	w.mu.Lock()
	w.state.Visible = true
	w.mu.Unlock()
	w.logger.Info("window shown")
}

func (w *HeadlessWindow) Hide() {
	w.mu.Lock()
	w.state.Visible = false
	w.mu.Unlock()
	w.logger.Info("window hidden")
}

func (w *HeadlessWindow) Focus() {
	w.logger.Info("window focused")
}

func (w *HeadlessWindow) SetProgress(p domain.Progress) {
	w.mu.Lock()
	w.state.Progress = p
	w.mu.Unlock()

	switch p.Mode {
	case domain.ProgressNormal:
		w.logger.Info("progress", zap.Float64("fraction", p.Fraction))
	case domain.ProgressIndeterminate:
		w.logger.Info("progress", zap.String("mode", "indeterminate"))
	default:
		w.logger.Info("progress cleared")
	}
}

func (w *HeadlessWindow) PopupContextMenu() {
	w.logger.Info("context menu requested")
}

func (w *HeadlessWindow) Beep() {
	_, _ = w.bell.Write([]byte("\a"))
}

func (w *HeadlessWindow) Events() <-chan domain.WindowEvent {
	return w.events
}

// State returns a snapshot of the window state.
func (w *HeadlessWindow) State() domain.WindowState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Emit queues a window event, as a real toolkit would on user action.
// It drops the event when the queue is full.
func (w *HeadlessWindow) Emit(kind domain.WindowEventKind) bool {
	select {
	case w.events <- domain.WindowEvent{Kind: kind, At: time.Now()}:
		return true
	default:
		w.logger.Warn("window event dropped", zap.String("kind", string(kind)))
		return false
	}
}

// HeadlessTray implements domain.Tray by logging.
type HeadlessTray struct {
	mu        sync.Mutex
	displayed bool
	logger    *zap.Logger
}

// NewHeadlessTray creates a tray adapter.
func NewHeadlessTray(logger *zap.Logger) *HeadlessTray {
	return &HeadlessTray{logger: logger}
}

func (t *HeadlessTray) Display() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.displayed {
		return
	}
	t.displayed = true
	t.logger.Info("tray icon displayed")
}

func (t *HeadlessTray) Destroy() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.displayed {
		return
	}
	t.displayed = false
	t.logger.Info("tray icon destroyed")
}

// Displayed reports whether the tray icon is showing.
func (t *HeadlessTray) Displayed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.displayed
}

var (
	_ domain.Window = (*HeadlessWindow)(nil)
	_ domain.Tray   = (*HeadlessTray)(nil)
)
