// Package logging sets up the process-wide structured logger. Grounded on
// the teacher's internal/utils logger (a package-level level-filtered
// singleton plus a protoactor log adapter type), generalized from a
// hand-rolled level filter to log/slog with a tint handler for colorized
// terminal output.
package logging

import (
	"log/slog"
	"os"
	"strings"

	"github.com/lmittmann/tint"
)

var root *slog.Logger

func init() {
	root = slog.New(tint.NewHandler(os.Stdout, &tint.Options{
		Level:      slog.LevelInfo,
		TimeFormat: "2006-01-02 15:04:05.000",
	}))
	slog.SetDefault(root)
}

// SetLevel parses a level name (case-insensitive: debug/info/warn/error) and
// reinstalls the root logger at that level.
func SetLevel(levelName string) {
	var level slog.Level
	switch strings.ToUpper(levelName) {
	case "DEBUG":
		level = slog.LevelDebug
	case "WARN", "WARNING":
		level = slog.LevelWarn
	case "ERROR":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	root = slog.New(tint.NewHandler(os.Stdout, &tint.Options{
		Level:      level,
		TimeFormat: "2006-01-02 15:04:05.000",
	}))
	slog.SetDefault(root)
}

// For returns a logger scoped to a subsystem, e.g. For("room").With("token", t).
func For(component string) *slog.Logger {
	return root.With("component", component)
}

// ProtoActorLogAdapter bridges *slog.Logger into the shape protoactor-go's
// own logger expects (Debug/Info/Warning/Error/Fatal(message string, args
// ...interface{})), mirroring the teacher's ProtoActorLogAdapter. Nothing in
// this repository installs it; it is available to a caller that wants to
// route actor-system diagnostics through the same sink as application logs.
type ProtoActorLogAdapter struct {
	Logger *slog.Logger
}

func (l *ProtoActorLogAdapter) Debug(message string, args ...interface{}) {
	l.Logger.Debug(message, args...)
}

func (l *ProtoActorLogAdapter) Info(message string, args ...interface{}) {
	l.Logger.Info(message, args...)
}

func (l *ProtoActorLogAdapter) Warning(message string, args ...interface{}) {
	l.Logger.Warn(message, args...)
}

func (l *ProtoActorLogAdapter) Error(message string, args ...interface{}) {
	l.Logger.Error(message, args...)
}

func (l *ProtoActorLogAdapter) Fatal(message string, args ...interface{}) {
	l.Logger.Error(message, args...)
	os.Exit(1)
}
