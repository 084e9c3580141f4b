// Package logger wires a zap core behind a logr.Logger and carries it through
// context.Context. Callers log with key/value pairs; verbosity V(1) maps to zap debug.
package logger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"syscall"

	"github.com/oakwood-commons/templay/pkg/settings"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Define an unexported custom type for the context key to prevent collisions.
type loggerContextKey struct{}

const (
	CommitKey    = "commit"
	VersionKey   = "version"
	TimeStampKey = "timestamp"
	MessageKey   = "message"
	ComponentKey = "component"
	PathKey      = "path"
)

// Output encodings accepted by Options.Format.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// Options controls how Setup builds the global logger.
type Options struct {
	// Level is a zapcore level: -1 debug, 0 info, 1 warn, 2 error.
	Level int8
	// Format is FormatConsole or FormatJSON. Empty means console.
	Format string
	// Writer receives log lines. Nil means os.Stderr.
	Writer io.Writer
}

var (
	once sync.Once

	// globalZapLogger is kept for Sync().
	globalZapLogger *zap.Logger

	// globalLogrLogger is returned by FromContext when the context carries no logger.
	globalLogrLogger *logr.Logger

	defaultNoopLogger logr.Logger = logr.Discard()
)

// Setup builds the global logger from opts. Only the first call has an effect;
// later calls return the logger built by the first.
func Setup(opts Options) *logr.Logger {
	once.Do(func() {
		zl := newZapLogger(opts)
		gl := zapr.NewLogger(zl)
		globalZapLogger = zl
		globalLogrLogger = &gl
	})
	if globalLogrLogger == nil {
		return &defaultNoopLogger
	}
	return globalLogrLogger
}

// SetupFromSettings builds the global logger from the CLI run settings.
func SetupFromSettings(s *settings.Run) *logr.Logger {
	return Setup(Options{Level: s.MinLogLevel, Format: s.LogFormat})
}

func newZapLogger(opts Options) *zap.Logger {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.TimeKey = TimeStampKey
	encoderCfg.MessageKey = MessageKey

	var encoder zapcore.Encoder
	if opts.Format == FormatJSON {
		encoder = zapcore.NewJSONEncoder(encoderCfg)
	} else {
		encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encoderCfg)
	}

	var sink zapcore.WriteSyncer = zapcore.Lock(os.Stderr)
	if opts.Writer != nil {
		sink = zapcore.AddSync(opts.Writer)
	}

	core := zapcore.NewCore(encoder, sink, zap.NewAtomicLevelAt(zapcore.Level(opts.Level))).With(
		[]zapcore.Field{
			zap.String(CommitKey, settings.VersionInformation.Commit),
			zap.String(VersionKey, settings.VersionInformation.BuildVersion),
		},
	)
	return zap.New(core,
		zap.AddCaller(),
		zap.AddStacktrace(zap.ErrorLevel),
	)
}

// ParseLevel maps a level name to the zapcore level stored in settings.Run.
func ParseLevel(name string) (int8, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return int8(zapcore.DebugLevel), nil
	case "info", "":
		return int8(zapcore.InfoLevel), nil
	case "warn", "warning":
		return int8(zapcore.WarnLevel), nil
	case "error":
		return int8(zapcore.ErrorLevel), nil
	default:
		return 0, fmt.Errorf("unknown log level %q (use debug|info|warn|error)", name)
	}
}

// WithLogger returns a new context carrying log. If the context already carries the
// same logger instance, ctx is returned unchanged.
func WithLogger(ctx context.Context, log *logr.Logger) context.Context {
	if lp, ok := ctx.Value(loggerContextKey{}).(*logr.Logger); ok && lp == log {
		return ctx
	}
	return context.WithValue(ctx, loggerContextKey{}, log)
}

// FromContext returns the context logger, else the global one, else a no-op logger.
func FromContext(ctx context.Context) *logr.Logger {
	if log, ok := ctx.Value(loggerContextKey{}).(*logr.Logger); ok {
		return log
	}
	if globalLogrLogger != nil {
		return globalLogrLogger
	}
	return &defaultNoopLogger
}

// Component returns the context logger tagged with a component name.
func Component(ctx context.Context, name string) logr.Logger {
	return FromContext(ctx).WithValues(ComponentKey, name)
}

// Sync flushes buffered log entries; call it once before the process exits.
func Sync() {
	if globalZapLogger == nil {
		return
	}
	if err := globalZapLogger.Sync(); err != nil && !isIgnorableSyncError(err) {
		fmt.Fprintf(os.Stderr, "WARNING: failed to sync zap logger: %v\n", err)
	}
}

// isIgnorableSyncError returns true for the Sync errors stderr produces on pipes and TTYs.
// Windows consoles report ERROR_INVALID_HANDLE wrapped in *os.PathError, which does not
// compare equal to syscall.EINVAL, so that case is string-matched.
func isIgnorableSyncError(err error) bool {
	if errors.Is(err, syscall.ENOTTY) || errors.Is(err, syscall.EINVAL) || errors.Is(err, syscall.EIO) || errors.Is(err, syscall.EBADF) {
		return true
	}
	return strings.Contains(err.Error(), "The handle is invalid")
}
