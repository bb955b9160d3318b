package config

import (
	"os"
	"path/filepath"
	"testing"
)

// unsetEnv clears key for the duration of the test.
func unsetEnv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	os.Unsetenv(key)
}

func clearYadaEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{EnvStrategy, EnvLogLevel, EnvWebPort} {
		unsetEnv(t, k)
	}
}

func TestLoad_DefaultWhenMissing(t *testing.T) {
	clearYadaEnv(t)
	tmpDir := t.TempDir()

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	def := DefaultConfig()
	if cfg.DefaultStrategy != def.DefaultStrategy {
		t.Errorf("DefaultStrategy = %q, want %q", cfg.DefaultStrategy, def.DefaultStrategy)
	}
	if !cfg.ShouldSeed() {
		t.Error("ShouldSeed() = false, want true by default")
	}
	if cfg.WebPort != def.WebPort || cfg.LogMaxSizeMB != def.LogMaxSizeMB {
		t.Errorf("cfg = %+v, want defaults", cfg)
	}
}

func TestLoad_OverridesFromFile(t *testing.T) {
	clearYadaEnv(t)
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	body := `{"default_strategy": "mifflin-st-jeor", "seed_catalog": false, "web_port": 9000}`
	if err := os.WriteFile(configPath, []byte(body), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.DefaultStrategy != "mifflin-st-jeor" {
		t.Errorf("DefaultStrategy = %q", cfg.DefaultStrategy)
	}
	if cfg.ShouldSeed() {
		t.Error("ShouldSeed() = true, want false from file")
	}
	if cfg.WebPort != 9000 {
		t.Errorf("WebPort = %d, want 9000", cfg.WebPort)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want default info", cfg.LogLevel)
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	clearYadaEnv(t)
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	if err := os.WriteFile(configPath, []byte(`{not json}`), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	if _, err := Load(tmpDir); err == nil {
		t.Fatalf("Load() expected error, got nil")
	}
}

func TestLoad_DotEnvOverlay(t *testing.T) {
	clearYadaEnv(t)
	tmpDir := t.TempDir()

	if err := os.WriteFile(filepath.Join(tmpDir, "config.json"), []byte(`{"log_level": "warn"}`), 0600); err != nil {
		t.Fatal(err)
	}
	env := "YADA_LOG_LEVEL=debug\nYADA_WEB_PORT=9100\n"
	if err := os.WriteFile(filepath.Join(tmpDir, ".env"), []byte(env), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug from .env", cfg.LogLevel)
	}
	if cfg.WebPort != 9100 {
		t.Errorf("WebPort = %d, want 9100 from .env", cfg.WebPort)
	}
}

func TestApplyEnv_ProcessEnvWinsOverDotEnv(t *testing.T) {
	clearYadaEnv(t)
	tmpDir := t.TempDir()
	envFile := filepath.Join(tmpDir, ".env")
	if err := os.WriteFile(envFile, []byte("YADA_STRATEGY=harris-benedict\n"), 0600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvStrategy, "msj")

	cfg := DefaultConfig()
	if err := ApplyEnv(cfg, envFile); err != nil {
		t.Fatalf("ApplyEnv() error = %v", err)
	}
	if cfg.DefaultStrategy != "msj" {
		t.Errorf("DefaultStrategy = %q, want msj", cfg.DefaultStrategy)
	}
}

func TestApplyEnv_InvalidPort(t *testing.T) {
	clearYadaEnv(t)
	t.Setenv(EnvWebPort, "not-a-port")

	if err := ApplyEnv(DefaultConfig(), filepath.Join(t.TempDir(), ".env")); err == nil {
		t.Fatal("ApplyEnv() expected error for invalid port")
	}
}

func TestLoad_DisabledTools(t *testing.T) {
	clearYadaEnv(t)
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	if err := os.WriteFile(configPath, []byte(`{"disabled_tools": ["food_import", " log_undo ", "food_import"]}`), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(cfg.DisabledTools) != 2 || cfg.DisabledTools[0] != "food_import" || cfg.DisabledTools[1] != "log_undo" {
		t.Errorf("DisabledTools = %v, want [food_import log_undo]", cfg.DisabledTools)
	}
}

func TestLoad_DisabledTypes(t *testing.T) {
	clearYadaEnv(t)
	tmpDir := t.TempDir()

	if err := os.WriteFile(filepath.Join(tmpDir, "config.json"), []byte(`{"disabled_types": ["food", ""]}`), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(cfg.DisabledTypes) != 1 || cfg.DisabledTypes[0] != "food" {
		t.Errorf("DisabledTypes = %v, want [food]", cfg.DisabledTypes)
	}
}

func TestMerge(t *testing.T) {
	off := false
	base := &Config{DefaultStrategy: "harris-benedict", WebPort: 1, DisabledTools: []string{"a"}}
	overlay := &Config{WebPort: 2, SeedCatalog: &off, DisabledTools: []string{"b", "a"}}

	got := Merge(base, overlay)
	if got.DefaultStrategy != "harris-benedict" {
		t.Errorf("DefaultStrategy = %q, want base value", got.DefaultStrategy)
	}
	if got.WebPort != 2 {
		t.Errorf("WebPort = %d, want overlay value", got.WebPort)
	}
	if got.ShouldSeed() {
		t.Error("SeedCatalog overlay false should win")
	}
	if len(got.DisabledTools) != 2 {
		t.Errorf("DisabledTools = %v, want [a b]", got.DisabledTools)
	}
}

func TestBaseDir_FromEnv(t *testing.T) {
	t.Setenv(EnvHome, "/tmp/yada-home")
	dir, err := BaseDir()
	if err != nil || dir != "/tmp/yada-home" {
		t.Errorf("BaseDir() = %q, %v", dir, err)
	}
}
