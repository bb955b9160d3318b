package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/hpungsan/yada/internal/config"
)

func TestNew_WritesToFile(t *testing.T) {
	baseDir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.LogLevel = "debug"

	logger, closeFn, err := New(baseDir, cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	logger.Debug("entry added", zap.String("food_id", "APL"), zap.Int("position", 1))
	closeFn()

	data, err := os.ReadFile(filepath.Join(baseDir, "logs", FileName))
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	line := string(data)
	for _, want := range []string{`"msg":"entry added"`, `"food_id":"APL"`, `"level":"debug"`} {
		if !strings.Contains(line, want) {
			t.Errorf("log line %q missing %s", line, want)
		}
	}
}

func TestNew_LevelFilters(t *testing.T) {
	baseDir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.LogLevel = "warn"

	logger, closeFn, err := New(baseDir, cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	logger.Info("hidden")
	logger.Warn("shown")
	closeFn()

	data, _ := os.ReadFile(filepath.Join(baseDir, "logs", FileName))
	if strings.Contains(string(data), "hidden") || !strings.Contains(string(data), "shown") {
		t.Errorf("log = %q, want only warn entries", data)
	}
}

func TestNew_InvalidLevel(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.LogLevel = "chatty"
	if _, _, err := New(t.TempDir(), cfg); err == nil {
		t.Fatal("New() expected error for invalid level")
	}
}
