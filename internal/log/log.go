package log

import (
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Level string

const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

var (
	mu       sync.RWMutex
	logger   *zap.SugaredLogger
	minLevel = zap.NewAtomicLevelAt(zapcore.InfoLevel)
)

// Init builds the process logger. Production mode writes JSON lines;
// otherwise a human-readable console encoder with colored levels is used.
// Both write to stderr so stdout stays free for exported rows.
func Init(level Level, production bool) error {
	minLevel.SetLevel(zapLevel(level))

	var conf zap.Config
	if production {
		conf = zap.NewProductionConfig()
	} else {
		conf = zap.NewDevelopmentConfig()
		conf.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		conf.DisableStacktrace = true
	}
	conf.Level = minLevel
	conf.OutputPaths = []string{"stderr"}
	conf.ErrorOutputPaths = []string{"stderr"}

	l, err := conf.Build()
	if err != nil {
		return err
	}
	Replace(l)
	return nil
}

// Replace installs l as the process logger. Tests use it with zaptest
// observers.
func Replace(l *zap.Logger) {
	mu.Lock()
	logger = l.Sugar()
	mu.Unlock()
}

func SetLevel(l Level) {
	minLevel.SetLevel(zapLevel(l))
}

// ParseLevel accepts level names case-insensitively; unknown names map to INFO.
func ParseLevel(s string) Level {
	switch l := Level(strings.ToUpper(strings.TrimSpace(s))); l {
	case LevelDebug, LevelInfo, LevelWarn, LevelError:
		return l
	default:
		return LevelInfo
	}
}

// Sync flushes buffered log entries.
func Sync() {
	_ = current().Sync()
}

func Debug(msg string, kv ...any) {
	current().Debugw(msg, kv...)
}

func Info(msg string, kv ...any) {
	current().Infow(msg, kv...)
}

func Warn(msg string, kv ...any) {
	current().Warnw(msg, kv...)
}

func Error(msg string, err error, kv ...any) {
	// Prepend error into key-value list.
	extended := append([]any{"err", err}, kv...)
	current().Errorw(msg, extended...)
}

func current() *zap.SugaredLogger {
	mu.RLock()
	l := logger
	mu.RUnlock()
	if l != nil {
		return l
	}

	mu.Lock()
	defer mu.Unlock()
	if logger == nil {
		conf := zap.NewDevelopmentConfig()
		conf.Level = minLevel
		conf.DisableStacktrace = true
		conf.OutputPaths = []string{"stderr"}
		l, err := conf.Build()
		if err != nil {
			l = zap.NewNop()
		}
		logger = l.Sugar()
	}
	return logger
}

func zapLevel(l Level) zapcore.Level {
	switch l {
	case LevelDebug:
		return zapcore.DebugLevel
	case LevelWarn:
		return zapcore.WarnLevel
	case LevelError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
