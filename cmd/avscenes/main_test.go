package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestRun_InvalidConfig(t *testing.T) {
	// Point at a config file that does not exist
	t.Setenv("AVSCENES_CONFIG", "/nonexistent/config.yaml")

	err := run(context.Background())
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestRun_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("{not yaml"), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	t.Setenv("AVSCENES_CONFIG", path)

	err := run(context.Background())
	if err == nil {
		t.Fatal("expected error for malformed config file")
	}
}

func TestGetConfigPath_Default(t *testing.T) {
	t.Setenv("AVSCENES_CONFIG", "")

	if got := getConfigPath(); got != defaultConfigPath {
		t.Errorf("getConfigPath() = %q, want %q", got, defaultConfigPath)
	}
}

func TestGetConfigPath_EnvOverride(t *testing.T) {
	t.Setenv("AVSCENES_CONFIG", "/custom/path.yaml")

	if got := getConfigPath(); got != "/custom/path.yaml" {
		t.Errorf("getConfigPath() = %q, want /custom/path.yaml", got)
	}
}
