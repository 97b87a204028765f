package logger

import (
	"context"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

//nolint:gochecknoglobals // One process-wide logger; everything funnels through it.
var (
	global *zap.SugaredLogger

	// atomicLevel lets --log-level take effect after the logger exists.
	atomicLevel = zap.NewAtomicLevelAt(zap.InfoLevel)
)

//nolint:gochecknoinits // Logging must work before any command runs.
func init() {
	global = New(atomicLevel)
}

// New builds a console logger writing to stderr, keeping stdout free for
// command output such as the version report. Progress lines carry a
// timestamp and level but no caller, which is noise in a CLI.
func New(level zapcore.LevelEnabler, options ...zap.Option) *zap.SugaredLogger {
	if level == nil {
		level = atomicLevel
	}

	//nolint:exhaustruct // Unset encoder keys deliberately disable those fields.
	encoder := zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
		MessageKey:       "message",
		LevelKey:         "level",
		LineEnding:       zapcore.DefaultLineEnding,
		EncodeLevel:      zapcore.CapitalColorLevelEncoder,
		EncodeTime:       zapcore.ISO8601TimeEncoder,
		EncodeDuration:   zapcore.StringDurationEncoder,
		ConsoleSeparator: ", ",
	})

	core := zapcore.NewCore(encoder, zapcore.AddSync(os.Stderr), level)

	return zap.New(core, options...).Sugar()
}

// ParseLogLevel maps a user-supplied level name to a zap level.
// Unknown names report false and fall back to info.
func ParseLogLevel(s string) (zapcore.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zapcore.DebugLevel, true
	case "info":
		return zapcore.InfoLevel, true
	case "warn":
		return zapcore.WarnLevel, true
	case "error":
		return zapcore.ErrorLevel, true
	default:
		return zapcore.InfoLevel, false
	}
}

// Logger returns the process-wide logger.
func Logger() *zap.SugaredLogger {
	return global
}

// SetLogger replaces the process-wide logger. Not safe for concurrent use;
// intended for startup and tests.
func SetLogger(l *zap.SugaredLogger) {
	global = l
}

// SetLevel adjusts the minimum level of the process-wide logger.
func SetLevel(level zapcore.Level) {
	atomicLevel.SetLevel(level)
}

// Debug logs at debug level with the logger carried by ctx.
func Debug(ctx context.Context, args ...any) {
	FromContext(ctx).Debug(args...)
}

// DebugKV logs a message with key-value pairs at debug level.
func DebugKV(ctx context.Context, message string, kvs ...any) {
	FromContext(ctx).Debugw(message, kvs...)
}

// Info logs at info level with the logger carried by ctx.
func Info(ctx context.Context, args ...any) {
	FromContext(ctx).Info(args...)
}

// InfoKV logs a message with key-value pairs at info level.
func InfoKV(ctx context.Context, message string, kvs ...any) {
	FromContext(ctx).Infow(message, kvs...)
}

// Warn logs at warning level with the logger carried by ctx.
func Warn(ctx context.Context, args ...any) {
	FromContext(ctx).Warn(args...)
}

// WarnKV logs a message with key-value pairs at warning level.
func WarnKV(ctx context.Context, message string, kvs ...any) {
	FromContext(ctx).Warnw(message, kvs...)
}

// Error logs at error level with the logger carried by ctx.
func Error(ctx context.Context, args ...any) {
	FromContext(ctx).Error(args...)
}

// ErrorKV logs a message with key-value pairs at error level.
func ErrorKV(ctx context.Context, message string, kvs ...any) {
	FromContext(ctx).Errorw(message, kvs...)
}
