package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad_ValidConfig(t *testing.T) {
	content := `
site:
  id: "test-home"
database:
  path: "/tmp/test.db"
  wal_mode: true
  busy_timeout: 5
mqtt:
  broker:
    host: "localhost"
    port: 1883
    client_id: "test-client"
  qos: 1
api:
  host: "0.0.0.0"
  port: 8080
security:
  jwt:
    secret: "test-secret-key-at-least-32-chars!"
`
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Site.ID != "test-home" {
		t.Errorf("Site.ID = %q, want %q", cfg.Site.ID, "test-home")
	}

	if cfg.Database.Path != "/tmp/test.db" {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, "/tmp/test.db")
	}

	if cfg.MQTT.Broker.Host != "localhost" {
		t.Errorf("MQTT.Broker.Host = %q, want %q", cfg.MQTT.Broker.Host, "localhost")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("invalid: [yaml: content"), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	_, err := Load(configPath)
	if err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_MissingJWTSecret(t *testing.T) {
	content := `
site:
  id: "test-home"
database:
  path: "/tmp/test.db"
`
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	_, err := Load(configPath)
	if err == nil {
		t.Fatal("Load() expected validation error for missing JWT secret, got nil")
	}
	if !strings.Contains(err.Error(), "security.jwt.secret") {
		t.Errorf("error = %v, want mention of security.jwt.secret", err)
	}
}

func TestLoad_WeakJWTSecret(t *testing.T) {
	content := `
site:
  id: "test-home"
database:
  path: "/tmp/test.db"
security:
  jwt:
    secret: "too-short"
`
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	_, err := Load(configPath)
	if err == nil {
		t.Error("Load() expected validation error for weak JWT secret, got nil")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	content := `
site:
  id: "test-home"
database:
  path: "/tmp/test.db"
security:
  jwt:
    secret: "test-secret-key-at-least-32-chars!"
`
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	t.Setenv("AVSCENES_DATABASE_PATH", "/override/path.db")
	t.Setenv("AVSCENES_MQTT_HOST", "broker.local")

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Database.Path != "/override/path.db" {
		t.Errorf("Database.Path = %q, want env override %q", cfg.Database.Path, "/override/path.db")
	}
	if cfg.MQTT.Broker.Host != "broker.local" {
		t.Errorf("MQTT.Broker.Host = %q, want env override %q", cfg.MQTT.Broker.Host, "broker.local")
	}
}

func TestDefaults(t *testing.T) {
	cfg := defaultConfig()

	if cfg.MQTT.QoS != 1 {
		t.Errorf("default MQTT.QoS = %d, want 1", cfg.MQTT.QoS)
	}
	if cfg.API.Port != 8080 {
		t.Errorf("default API.Port = %d, want 8080", cfg.API.Port)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("default Logging.Format = %q, want json", cfg.Logging.Format)
	}
	if cfg.MQTT.Broker.ClientID != "avscenes-core" {
		t.Errorf("default MQTT.Broker.ClientID = %q, want avscenes-core", cfg.MQTT.Broker.ClientID)
	}
	if cfg.Security.Admin.Username != "admin" || cfg.Security.Admin.Password != "admin" {
		t.Errorf("default Security.Admin = %+v, want admin/admin", cfg.Security.Admin)
	}
}

func TestLoad_AdminEnvOverride(t *testing.T) {
	content := `
site:
  id: "test-home"
database:
  path: "/tmp/test.db"
security:
  jwt:
    secret: "test-secret-key-at-least-32-chars!"
`
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	t.Setenv("AVSCENES_ADMIN_USERNAME", "operator")
	t.Setenv("AVSCENES_ADMIN_PASSWORD", "s3cret")

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Security.Admin.Username != "operator" {
		t.Errorf("Security.Admin.Username = %q, want env override %q", cfg.Security.Admin.Username, "operator")
	}
	if cfg.Security.Admin.Password != "s3cret" {
		t.Errorf("Security.Admin.Password = %q, want env override %q", cfg.Security.Admin.Password, "s3cret")
	}
}

func TestValidate_QoSRange(t *testing.T) {
	cfg := defaultConfig()
	cfg.Security.JWT.Secret = "test-secret-key-at-least-32-chars!"
	cfg.MQTT.QoS = 3

	if err := cfg.Validate(); err == nil {
		t.Error("Validate() expected error for qos=3, got nil")
	}
}
