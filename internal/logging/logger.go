// Package logging provides the leveled logger used across yangfuzz. Output
// goes through zap: a console encoder on stderr and, optionally, a JSON
// encoder on a log file.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogLevel represents the logging level
type LogLevel int

const (
	LogLevelSilent LogLevel = iota
	LogLevelError
	LogLevelInfo
	LogLevelVerbose
	LogLevelDebug
)

// ParseLevel maps a flag value to a level. Unknown names select info.
func ParseLevel(s string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "silent", "off":
		return LogLevelSilent
	case "error":
		return LogLevelError
	case "verbose":
		return LogLevelVerbose
	case "debug":
		return LogLevelDebug
	default:
		return LogLevelInfo
	}
}

// Logger gates messages by LogLevel and writes them through zap.
type Logger struct {
	mu      sync.Mutex
	level   LogLevel
	file    *os.File
	fileLog *zap.Logger
	console *zap.Logger
}

// NewLogger creates a logger writing to stderr and, when logFile is set, to
// that file.
func NewLogger(level LogLevel, logFile string) (*Logger, error) {
	l := newLogger(level, os.Stderr)
	if logFile != "" {
		file, err := os.Create(logFile)
		if err != nil {
			return nil, fmt.Errorf("create log file: %w", err)
		}
		l.file = file
		l.fileLog = zap.New(zapcore.NewCore(
			zapcore.NewJSONEncoder(fileEncoderConfig()),
			zapcore.AddSync(file),
			zapcore.DebugLevel,
		))
	}
	return l, nil
}

// NewLoggerWithWriter creates a logger whose console output goes to w.
func NewLoggerWithWriter(level LogLevel, w io.Writer) *Logger {
	return newLogger(level, w)
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{level: LogLevelSilent, console: zap.NewNop()}
}

func newLogger(level LogLevel, w io.Writer) *Logger {
	cfg := zapcore.EncoderConfig{
		MessageKey:  "msg",
		LevelKey:    "level",
		EncodeLevel: zapcore.CapitalLevelEncoder,
	}
	return &Logger{
		level: level,
		console: zap.New(zapcore.NewCore(
			zapcore.NewConsoleEncoder(cfg),
			zapcore.Lock(zapcore.AddSync(w)),
			zapcore.DebugLevel,
		)),
	}
}

func fileEncoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg
}

// Close flushes and closes the log file.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	_ = l.console.Sync()
	if l.file == nil {
		return nil
	}
	_ = l.fileLog.Sync()
	err := l.file.Close()
	l.file, l.fileLog = nil, nil
	return err
}

// Error logs an error message
func (l *Logger) Error(format string, v ...interface{}) {
	l.log(LogLevelError, zapcore.ErrorLevel, format, v)
}

// Info logs an info message
func (l *Logger) Info(format string, v ...interface{}) {
	l.log(LogLevelInfo, zapcore.InfoLevel, format, v)
}

// Verbose logs a verbose message
func (l *Logger) Verbose(format string, v ...interface{}) {
	l.log(LogLevelVerbose, zapcore.InfoLevel, format, v)
}

// Debug logs a debug message
func (l *Logger) Debug(format string, v ...interface{}) {
	l.log(LogLevelDebug, zapcore.DebugLevel, format, v)
}

func (l *Logger) log(at LogLevel, zl zapcore.Level, format string, v []interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.level < at {
		return
	}
	msg := fmt.Sprintf(format, v...)

	if l.fileLog != nil {
		if ce := l.fileLog.Check(zl, msg); ce != nil {
			ce.Write()
		}
	}
	// Errors and info always reach the console; verbose and debug only
	// when enabled, which the gate above already checked.
	if ce := l.console.Check(zl, msg); ce != nil {
		ce.Write()
	}
}

// SetLevel sets the logging level
func (l *Logger) SetLevel(level LogLevel) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// GetLevel returns the current logging level
func (l *Logger) GetLevel() LogLevel {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.level
}

// LogStartup logs the parameters of a run.
func (l *Logger) LogStartup(module, target string, seed int64, seeded bool, filter string) {
	l.Info("Starting yangfuzz for module %s", module)
	if target != "" {
		l.Verbose("  Target: %s", target)
	}
	if seeded {
		l.Verbose("  Seed: %d", seed)
	}
	if filter != "" {
		l.Verbose("  Filter: %s", filter)
	}
}

// LogExchange logs one request sent to the target.
func (l *Logger) LogExchange(entry string, bytes int, err error) {
	if err != nil {
		l.Info("FAILED %s (%d bytes): %v", entry, bytes, err)
		return
	}
	l.Verbose("SENT %s (%d bytes)", entry, bytes)
}

// LogHex logs data as space separated hex bytes at debug level.
func (l *Logger) LogHex(label string, data []byte) {
	if l.GetLevel() < LogLevelDebug {
		return
	}
	parts := make([]string, len(data))
	for i, b := range data {
		parts[i] = fmt.Sprintf("%02x", b)
	}
	l.Debug("%s: %s", label, strings.Join(parts, " "))
}
