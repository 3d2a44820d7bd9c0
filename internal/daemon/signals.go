package daemon

import (
	"os"
	"os/signal"
	"syscall"
)

// NotifySignals starts capturing SIGINT and SIGTERM; stop releases them.
// Call it before the engine is spawned.
func NotifySignals() (signals <-chan os.Signal, stop func()) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	return ch, func() { signal.Stop(ch) }
}
