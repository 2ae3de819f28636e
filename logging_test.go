package flourish

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewLoggerWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flourish.log")
	log, err := NewLogger(LoggingConfig{Level: "debug", Format: "json", Output: path})
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	log.Debug("loop started")
	_ = log.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"msg":"loop started"`) {
		t.Errorf("log output = %q", data)
	}
}

func TestNewLoggerLevelFallback(t *testing.T) {
	log, err := NewLogger(LoggingConfig{Level: "chatty", Format: "console", Output: filepath.Join(t.TempDir(), "x.log")})
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	if log.Core().Enabled(-1) {
		t.Error("debug enabled with unknown level; want info fallback")
	}
}
