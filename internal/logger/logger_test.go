package logger

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestLogger(t *testing.T, level Level) (Logger, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.log")
	l, err := New(&Config{
		LogFilePath: path,
		MaxFileSize: 1 << 20,
		MaxBackups:  2,
		Level:       level,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return l, path
}

func readLog(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	return string(data)
}

func TestLevelString(t *testing.T) {
	tests := []struct {
		level Level
		want  string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{Level(42), "UNKNOWN"},
	}
	for _, tt := range tests {
		if got := tt.level.String(); got != tt.want {
			t.Errorf("Level(%d).String() = %q, want %q", tt.level, got, tt.want)
		}
	}
}

func TestLogWritesFieldsToFile(t *testing.T) {
	l, path := newTestLogger(t, LevelDebug)
	defer l.Close()

	l.Info("translation started", String("file", "report.docx"), Int("chunks", 42))
	l.Close()

	content := readLog(t, path)
	if !strings.Contains(content, "[INFO] translation started") {
		t.Errorf("missing message, log: %q", content)
	}
	if !strings.Contains(content, "file=report.docx") || !strings.Contains(content, "chunks=42") {
		t.Errorf("missing fields, log: %q", content)
	}
}

func TestLogLevelFiltering(t *testing.T) {
	l, path := newTestLogger(t, LevelWarn)
	defer l.Close()

	l.Debug("debug msg")
	l.Info("info msg")
	l.Warn("warn msg")
	l.Error("error msg", errors.New("boom"))
	l.Close()

	content := readLog(t, path)
	if strings.Contains(content, "debug msg") || strings.Contains(content, "info msg") {
		t.Errorf("low-level messages should be filtered, log: %q", content)
	}
	if !strings.Contains(content, "warn msg") || !strings.Contains(content, "error msg") {
		t.Errorf("warn/error messages missing, log: %q", content)
	}
	if !strings.Contains(content, `error="boom"`) {
		t.Errorf("error detail missing, log: %q", content)
	}
}

func TestSetLevel(t *testing.T) {
	l, path := newTestLogger(t, LevelInfo)
	defer l.Close()

	l.Debug("hidden")
	l.SetLevel(LevelDebug)
	l.Debug("visible")
	l.Close()

	content := readLog(t, path)
	if strings.Contains(content, "hidden") {
		t.Error("debug entry before SetLevel should be filtered")
	}
	if !strings.Contains(content, "visible") {
		t.Error("debug entry after SetLevel should be written")
	}
}

func TestRotation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rot.log")
	l, err := New(&Config{
		LogFilePath: path,
		MaxFileSize: 200,
		MaxBackups:  2,
		Level:       LevelInfo,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer l.Close()

	for i := 0; i < 20; i++ {
		l.Info("a reasonably long message that pushes the file over the rotation threshold")
	}
	l.Close()

	if _, err := os.Stat(path + ".1"); err != nil {
		t.Errorf("expected rotated backup %s.1: %v", path, err)
	}
}

func TestGlobalLoggerDefaultsToNoop(t *testing.T) {
	SetGlobalLogger(nil)

	// Must not panic and must not create files.
	Debug("noop")
	Info("noop")
	Warn("noop")
	Error("noop", errors.New("ignored"))

	if err := Close(); err != nil {
		t.Errorf("Close on uninitialized global: %v", err)
	}
}

func TestGlobalLoggerInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "global.log")
	if err := Init(&Config{LogFilePath: path, MaxFileSize: 1 << 20, MaxBackups: 1, Level: LevelInfo}); err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer Close()

	Info("global entry", String("k", "v"))
	Close()

	content := readLog(t, path)
	if !strings.Contains(content, "global entry") || !strings.Contains(content, "k=v") {
		t.Errorf("global log missing entry, log: %q", content)
	}
}

func TestErrField(t *testing.T) {
	f := Err(nil)
	if f.Key != "error" || f.Value != nil {
		t.Errorf("Err(nil) = %+v", f)
	}
	f = Err(errors.New("bad"))
	if f.Value != "bad" {
		t.Errorf("Err(err).Value = %v, want bad", f.Value)
	}
}
