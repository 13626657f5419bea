package threads

import "log/slog"

// Notifier surfaces the outcome of explicit user-triggered mutations
// (mark-read, sync). Background queries never notify; silent reads stay
// silent.
type Notifier interface {
	Success(msg string)
	Failure(msg string)
}

// NoopNotifier is a Notifier that does nothing.
type NoopNotifier struct{}

func (NoopNotifier) Success(string) {}
func (NoopNotifier) Failure(string) {}

// LogNotifier reports outcomes through slog. The CLI uses it in place of a
// toast surface.
type LogNotifier struct {
	Logger *slog.Logger
}

func (n LogNotifier) logger() *slog.Logger {
	if n.Logger != nil {
		return n.Logger
	}
	return slog.Default()
}

func (n LogNotifier) Success(msg string) { n.logger().Info(msg) }
func (n LogNotifier) Failure(msg string) { n.logger().Error(msg) }
