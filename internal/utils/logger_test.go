package utils

import (
	"path/filepath"
	"testing"
)

// A nil *Logger must be a no-op for every logging method, tagged or not.
// Components accept an optional logger and call these on hot paths.
func TestNilLoggerIsNoOp(t *testing.T) {
	var l *Logger

	tests := []struct {
		name string
		call func()
	}{
		{"Debug", func() { l.Debug("debug %d", 1) }},
		{"Info", func() { l.Info("info") }},
		{"Warn", func() { l.Warn("warn") }},
		{"Error", func() { l.Error("error %s", "e") }},
		{"DebugTag", func() { l.DebugTag("Image", "debug") }},
		{"InfoTag", func() { l.InfoTag("Image", "info") }},
		{"WarnTag", func() { l.WarnTag("Image", "warn") }},
		{"ErrorTag", func() { l.ErrorTag("Image", "error") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if r := recover(); r != nil {
					t.Fatalf("nil logger %s panicked: %v", tt.name, r)
				}
			}()
			tt.call()
		})
	}
}

func TestNewLoggerWritesWithoutError(t *testing.T) {
	dir := t.TempDir()
	l, err := NewLogger(&LogCfg{
		LogLevel: "debug",
		LogDir:   dir,
		LogFile:  "test.log",
	})
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	defer l.Close()

	l.Debug("debug message")
	l.InfoTag("HTTP", "request handled in %dms", 12)

	if _, err := filepath.Glob(filepath.Join(dir, "*")); err != nil {
		t.Fatalf("log dir unreadable: %v", err)
	}
}

func TestFormatLog(t *testing.T) {
	tests := []struct {
		tag, msg, want string
	}{
		{"Gateway", "request accepted", "[Gateway] request accepted"},
		{"", "plain", "plain"},
		{"HTTP", "[Other] already tagged", "[Other] already tagged"},
	}
	for _, tt := range tests {
		if got := FormatLog(tt.tag, tt.msg); got != tt.want {
			t.Errorf("FormatLog(%q, %q) = %q, want %q", tt.tag, tt.msg, got, tt.want)
		}
	}
}
