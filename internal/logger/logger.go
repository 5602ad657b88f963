// Package logger provides leveled, structured logging for the document
// translation pipeline. It supports console and file output with size-based
// rotation, and exposes a process-wide logger that defaults to a no-op until
// initialized.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Level represents the severity of a log message.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the string representation of the log level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Field is a key-value pair attached to a log entry.
type Field struct {
	Key   string
	Value interface{}
}

// String creates a string field.
func String(key, value string) Field { return Field{Key: key, Value: value} }

// Int creates an integer field.
func Int(key string, value int) Field { return Field{Key: key, Value: value} }

// Bool creates a boolean field.
func Bool(key string, value bool) Field { return Field{Key: key, Value: value} }

// Any creates a field with an arbitrary value.
func Any(key string, value interface{}) Field { return Field{Key: key, Value: value} }

// Err creates an error field.
func Err(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: nil}
	}
	return Field{Key: "error", Value: err.Error()}
}

// Logger is the logging interface used throughout the module.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, err error, fields ...Field)
	SetLevel(level Level)
	Close() error
}

// Config controls logger output.
type Config struct {
	// LogFilePath is the log file destination. Empty means console only.
	LogFilePath string
	// MaxFileSize is the rotation threshold in bytes.
	MaxFileSize int64
	// MaxBackups is how many rotated files to keep.
	MaxBackups int
	// Level is the minimum level written.
	Level Level
	// EnableConsole mirrors entries to stderr.
	EnableConsole bool
}

// DefaultConfig returns the default logger configuration.
func DefaultConfig() *Config {
	return &Config{
		LogFilePath:   "retrans.log",
		MaxFileSize:   10 * 1024 * 1024,
		MaxBackups:    3,
		Level:         LevelInfo,
		EnableConsole: false,
	}
}

// fileLogger writes formatted entries to a file and optionally the console.
type fileLogger struct {
	config   *Config
	mu       sync.Mutex
	level    Level
	file     *os.File
	fileSize int64
	writers  []io.Writer
}

// New creates a logger from the given configuration. A nil config uses
// DefaultConfig.
func New(config *Config) (Logger, error) {
	if config == nil {
		config = DefaultConfig()
	}

	l := &fileLogger{config: config, level: config.Level}

	if config.LogFilePath != "" {
		dir := filepath.Dir(config.LogFilePath)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("create log directory: %w", err)
			}
		}
		if err := l.openFile(); err != nil {
			return nil, err
		}
	}

	l.resetWriters()
	return l, nil
}

func (l *fileLogger) openFile() error {
	f, err := os.OpenFile(l.config.LogFilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return fmt.Errorf("stat log file: %w", err)
	}
	l.file = f
	l.fileSize = info.Size()
	return nil
}

func (l *fileLogger) resetWriters() {
	l.writers = l.writers[:0]
	if l.file != nil {
		l.writers = append(l.writers, l.file)
	}
	if l.config.EnableConsole || l.file == nil {
		l.writers = append(l.writers, os.Stderr)
	}
}

func (l *fileLogger) Debug(msg string, fields ...Field) { l.write(LevelDebug, msg, nil, fields) }
func (l *fileLogger) Info(msg string, fields ...Field)  { l.write(LevelInfo, msg, nil, fields) }
func (l *fileLogger) Warn(msg string, fields ...Field)  { l.write(LevelWarn, msg, nil, fields) }

func (l *fileLogger) Error(msg string, err error, fields ...Field) {
	l.write(LevelError, msg, err, fields)
}

// SetLevel sets the minimum log level.
func (l *fileLogger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// Close releases the log file.
func (l *fileLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}

func (l *fileLogger) write(level Level, msg string, err error, fields []Field) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if level < l.level {
		return
	}

	entry := formatEntry(level, msg, err, fields)

	if l.file != nil && l.fileSize+int64(len(entry)) > l.config.MaxFileSize {
		l.rotate()
	}

	for _, w := range l.writers {
		w.Write([]byte(entry))
	}
	l.fileSize += int64(len(entry))
}

func formatEntry(level Level, msg string, err error, fields []Field) string {
	var sb strings.Builder
	sb.WriteString(time.Now().Format("2006-01-02 15:04:05.000"))
	sb.WriteString(" [")
	sb.WriteString(level.String())
	sb.WriteString("] ")
	sb.WriteString(msg)

	if err != nil {
		sb.WriteString(" error=\"")
		sb.WriteString(err.Error())
		sb.WriteString("\"")
	}

	for _, f := range fields {
		sb.WriteString(" ")
		sb.WriteString(f.Key)
		sb.WriteString("=")
		fmt.Fprintf(&sb, "%v", f.Value)
	}

	sb.WriteString("\n")
	return sb.String()
}

// rotate shifts backups by one and reopens a fresh log file.
func (l *fileLogger) rotate() {
	if l.file != nil {
		l.file.Close()
	}

	for i := l.config.MaxBackups - 1; i >= 1; i-- {
		os.Rename(
			fmt.Sprintf("%s.%d", l.config.LogFilePath, i),
			fmt.Sprintf("%s.%d", l.config.LogFilePath, i+1),
		)
	}
	if _, err := os.Stat(l.config.LogFilePath); err == nil {
		os.Rename(l.config.LogFilePath, l.config.LogFilePath+".1")
	}
	os.Remove(fmt.Sprintf("%s.%d", l.config.LogFilePath, l.config.MaxBackups+1))

	l.openFile()
	l.resetWriters()
}

var (
	globalLogger Logger
	globalMu     sync.RWMutex
)

// Init initializes the global logger with the given configuration.
func Init(config *Config) error {
	l, err := New(config)
	if err != nil {
		return err
	}

	globalMu.Lock()
	defer globalMu.Unlock()
	if globalLogger != nil {
		globalLogger.Close()
	}
	globalLogger = l
	return nil
}

// GetLogger returns the global logger, or a no-op logger if uninitialized.
func GetLogger() Logger {
	globalMu.RLock()
	defer globalMu.RUnlock()
	if globalLogger == nil {
		return noop{}
	}
	return globalLogger
}

// SetGlobalLogger replaces the global logger instance.
func SetGlobalLogger(l Logger) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalLogger = l
}

// Close closes the global logger.
func Close() error {
	globalMu.Lock()
	defer globalMu.Unlock()
	if globalLogger != nil {
		err := globalLogger.Close()
		globalLogger = nil
		return err
	}
	return nil
}

// Debug logs a debug message using the global logger.
func Debug(msg string, fields ...Field) { GetLogger().Debug(msg, fields...) }

// Info logs an informational message using the global logger.
func Info(msg string, fields ...Field) { GetLogger().Info(msg, fields...) }

// Warn logs a warning message using the global logger.
func Warn(msg string, fields ...Field) { GetLogger().Warn(msg, fields...) }

// Error logs an error message using the global logger.
func Error(msg string, err error, fields ...Field) { GetLogger().Error(msg, err, fields...) }

type noop struct{}

func (noop) Debug(string, ...Field)        {}
func (noop) Info(string, ...Field)         {}
func (noop) Warn(string, ...Field)         {}
func (noop) Error(string, error, ...Field) {}
func (noop) SetLevel(Level)                {}
func (noop) Close() error                  { return nil }
