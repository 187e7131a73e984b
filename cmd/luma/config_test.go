package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing-default-dir", "luma.toml"))
	if err == nil {
		t.Fatal("explicit missing config should error")
	}

	// No explicit path and no default file: defaults apply.
	wd, _ := os.Getwd()
	tmp := t.TempDir()
	if err := os.Chdir(tmp); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	defer os.Chdir(wd)

	cfg, err = LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.VM.VectorSize != 3 || !cfg.VM.GeneralizedIteration || !cfg.VM.ErrorHandling {
		t.Errorf("defaults = %+v", cfg.VM)
	}
}

func TestLoadConfigParsesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "luma.toml")
	content := `
[vm]
vector-size = 4
generalized-iteration = false
error-handling = true

[store]
path = "chunks.db"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.VM.VectorSize != 4 {
		t.Errorf("vector size = %d, want 4", cfg.VM.VectorSize)
	}
	if cfg.VM.GeneralizedIteration {
		t.Error("generalized iteration should be off")
	}
	if cfg.Store.Path != "chunks.db" {
		t.Errorf("store path = %q, want chunks.db", cfg.Store.Path)
	}

	settings := cfg.Settings()
	if err := settings.Validate(); err != nil {
		t.Errorf("settings from config: %v", err)
	}
	if settings.VectorSize != 4 {
		t.Errorf("settings vector size = %d, want 4", settings.VectorSize)
	}
}
