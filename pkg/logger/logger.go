package logger

import (
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Leveled logger shared by the pulseboard services.
// - package-level Debugf/Infof/Warnf/Errorf/Fatalf helpers and Init(level)
// - JSON output through zap so entries can be shipped as-is

var (
	mu    sync.RWMutex
	level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	sugar = newSugar(zapcore.Lock(os.Stdout))
)

func newSugar(ws zapcore.WriteSyncer) *zap.SugaredLogger {
	enc := zap.NewProductionEncoderConfig()
	enc.EncodeTime = zapcore.ISO8601TimeEncoder
	enc.EncodeCaller = zapcore.ShortCallerEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(enc), ws, level)
	return zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1)).Sugar()
}

func current() *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	return sugar
}

// Init sets the global log level (case-insensitive: debug, info, warn, error, fatal).
// Call early during startup. Default level is Info.
func Init(l string) {
	switch strings.ToLower(strings.TrimSpace(l)) {
	case "debug":
		level.SetLevel(zapcore.DebugLevel)
	case "warn", "warning":
		level.SetLevel(zapcore.WarnLevel)
	case "error":
		level.SetLevel(zapcore.ErrorLevel)
	case "fatal":
		level.SetLevel(zapcore.FatalLevel)
	default:
		level.SetLevel(zapcore.InfoLevel)
	}
}

func Debugf(format string, v ...interface{}) { current().Debugf(format, v...) }

func Infof(format string, v ...interface{}) { current().Infof(format, v...) }

func Warnf(format string, v ...interface{}) { current().Warnf(format, v...) }

func Errorf(format string, v ...interface{}) { current().Errorf(format, v...) }

// Fatalf logs and exits the process with status 1.
func Fatalf(format string, v ...interface{}) { current().Fatalf(format, v...) }

// Println kept for brief messages (maps to Info)
func Println(v ...interface{}) { current().Infoln(v...) }

// Debug/Info/Warn/Error helpers that accept a single string
func Debug(v string) { current().Debug(v) }
func Info(v string)  { current().Info(v) }
func Warn(v string)  { current().Warn(v) }
func Error(v string) { current().Error(v) }

// With returns a child logger carrying the given key/value pairs on every entry.
func With(kv ...interface{}) *zap.SugaredLogger {
	return current().With(kv...)
}

// Sync flushes buffered entries; call before exit.
func Sync() error {
	return current().Sync()
}

// LevelString returns the current level as text.
func LevelString() string {
	switch level.Level() {
	case zapcore.DebugLevel:
		return "debug"
	case zapcore.WarnLevel:
		return "warn"
	case zapcore.ErrorLevel:
		return "error"
	case zapcore.FatalLevel:
		return "fatal"
	}
	return "info"
}
