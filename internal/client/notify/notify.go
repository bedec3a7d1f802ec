// Package notify carries the transient user-facing messages and navigation
// requests that client components emit.
package notify

import (
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"
)

// Level is the kind of a notification.
type Level int

const (
	Info Level = iota
	Success
	Error
)

func (l Level) String() string {
	switch l {
	case Success:
		return "ok"
	case Error:
		return "error"
	default:
		return "info"
	}
}

// Notifier shows a transient message to the user.
type Notifier interface {
	Notify(level Level, msg string)
}

// Redirector sends the user to another page.
type Redirector interface {
	Redirect(path string)
}

// Console prints notifications to Out and mirrors them to Log.
type Console struct {
	Out io.Writer
	Log *zap.Logger

	mu sync.Mutex
}

// Notify implements Notifier.
func (c *Console) Notify(level Level, msg string) {
	c.mu.Lock()
	fmt.Fprintf(c.Out, "[%s] %s\n", level, msg)
	c.mu.Unlock()

	if c.Log != nil {
		c.Log.Debug("notification", zap.Stringer("level", level), zap.String("message", msg))
	}
}

// Redirect implements Redirector by printing the target page.
func (c *Console) Redirect(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.Out, "-> %s\n", path)
}
