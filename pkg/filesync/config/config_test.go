package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	// Use a temp directory that doesn't have a config file
	tempDir := t.TempDir()
	t.Setenv("HOME", tempDir)
	t.Setenv("XDG_CONFIG_HOME", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Workers != DefaultWorkers {
		t.Errorf("Workers = %d, want %d", cfg.Workers, DefaultWorkers)
	}

	if len(cfg.Exclude) != len(DefaultExclusions) {
		t.Errorf("len(Exclude) = %d, want %d", len(cfg.Exclude), len(DefaultExclusions))
	}

	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "info")
	}
}

func TestLoad_FromFile(t *testing.T) {
	tempDir := t.TempDir()
	configDir := filepath.Join(tempDir, ".config", "filesync")
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		t.Fatalf("failed to create config dir: %v", err)
	}

	configContent := `
workers: 3
exclude:
  - "*.tmp"
  - "node_modules"
logging:
  level: debug
  components:
    walker: error
`
	if err := os.WriteFile(filepath.Join(configDir, "config.yaml"), []byte(configContent), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	t.Setenv("HOME", tempDir)
	t.Setenv("XDG_CONFIG_HOME", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Workers != 3 {
		t.Errorf("Workers = %d, want 3", cfg.Workers)
	}

	if len(cfg.Exclude) != 2 {
		t.Fatalf("len(Exclude) = %d, want 2", len(cfg.Exclude))
	}
	if cfg.Exclude[0] != "*.tmp" {
		t.Errorf("Exclude[0] = %q, want %q", cfg.Exclude[0], "*.tmp")
	}

	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "debug")
	}
	if cfg.Logging.Components["walker"] != "error" {
		t.Errorf("Logging.Components[walker] = %q, want %q", cfg.Logging.Components["walker"], "error")
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	tempDir := t.TempDir()
	t.Setenv("HOME", tempDir)
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("FILESYNC_WORKERS", "12")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Workers != 12 {
		t.Errorf("Workers = %d, want 12", cfg.Workers)
	}
}

func TestLoadFile(t *testing.T) {
	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "custom.yaml")
	configContent := `
workers: 5
logging:
  level: warn
`
	if err := os.WriteFile(path, []byte(configContent), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}

	if cfg.Workers != 5 {
		t.Errorf("Workers = %d, want 5", cfg.Workers)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "warn")
	}
}

func TestLoadFile_Missing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("LoadFile() with a missing explicit file should fail")
	}
	if _, err := LoadFile(""); err == nil {
		t.Fatal("LoadFile() with an empty path should fail")
	}
}

func TestWriteDefault(t *testing.T) {
	tempDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tempDir)

	if err := WriteDefault(); err != nil {
		t.Fatalf("WriteDefault() error = %v", err)
	}

	configPath := filepath.Join(tempDir, "filesync", "config.yaml")
	if _, err := os.Stat(configPath); err != nil {
		t.Fatalf("config file missing after WriteDefault: %v", err)
	}

	// The generated file must parse back with the documented defaults.
	cfg, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if cfg.Workers != DefaultWorkers {
		t.Errorf("Workers = %d, want %d", cfg.Workers, DefaultWorkers)
	}
	if cfg.Logging.Components["walker"] != "warn" {
		t.Errorf("Logging.Components[walker] = %q, want %q", cfg.Logging.Components["walker"], "warn")
	}

	// A second call must not clobber an existing file.
	if err := os.WriteFile(configPath, []byte("workers: 99\n"), 0o644); err != nil {
		t.Fatalf("failed to rewrite config file: %v", err)
	}
	if err := WriteDefault(); err != nil {
		t.Fatalf("WriteDefault() second call error = %v", err)
	}
	cfg, err = LoadFile(configPath)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if cfg.Workers != 99 {
		t.Errorf("Workers = %d, want 99 (existing file overwritten)", cfg.Workers)
	}
}

func TestConfigDir(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/xdg")

	dir, err := ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir() error = %v", err)
	}
	if dir != "/custom/xdg/filesync" {
		t.Errorf("ConfigDir() = %q, want %q", dir, "/custom/xdg/filesync")
	}
}
