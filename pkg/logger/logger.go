package logger

import (
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	global atomic.Pointer[zap.Logger]
	level  = zap.NewAtomicLevelAt(zapcore.InfoLevel)
)

func init() {
	// Logging must work before Init runs, e.g. during config loading.
	global.Store(zap.NewNop())
}

// Init builds the process-wide logger at the given level. Unknown level
// strings fall back to info rather than failing startup.
func Init(levelName string) error {
	if parsed, err := zapcore.ParseLevel(levelName); err == nil {
		level.SetLevel(parsed)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = level
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	built, err := cfg.Build(zap.AddStacktrace(zapcore.ErrorLevel))
	if err != nil {
		return err
	}

	global.Store(built)
	return nil
}

// Logger returns the process-wide logger.
func Logger() *zap.Logger {
	return global.Load()
}

// Sync flushes buffered log entries.
func Sync() error {
	return Logger().Sync()
}

// WithModule returns a child logger annotated with the module name.
func WithModule(module string) *zap.Logger {
	return Logger().With(zap.String("module", module))
}

// Info logs at info level on the process-wide logger.
func Info(msg string, fields ...zap.Field) {
	Logger().Info(msg, fields...)
}

// Warn logs at warn level on the process-wide logger.
func Warn(msg string, fields ...zap.Field) {
	Logger().Warn(msg, fields...)
}

// Error logs at error level on the process-wide logger.
func Error(msg string, fields ...zap.Field) {
	Logger().Error(msg, fields...)
}

// Debug logs at debug level on the process-wide logger.
func Debug(msg string, fields ...zap.Field) {
	Logger().Debug(msg, fields...)
}
