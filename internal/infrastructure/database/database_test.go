package database

import (
	"context"
	"path/filepath"
	"testing"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(Config{
		Path:        filepath.Join(t.TempDir(), "test.db"),
		WALMode:     true,
		BusyTimeout: 5,
	})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})
	return db
}

func TestOpen_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "test.db")
	db, err := Open(Config{Path: path, WALMode: true, BusyTimeout: 5})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer db.Close()

	if db.Path() != path {
		t.Errorf("Path() = %q, want %q", db.Path(), path)
	}
}

func TestHealthCheck(t *testing.T) {
	db := openTestDB(t)

	if err := db.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}
}

func TestMigrate_NoEmbeddedMigrations(t *testing.T) {
	db := openTestDB(t)

	// With no embedded FS registered, Migrate is a no-op.
	if err := db.Migrate(context.Background()); err != nil {
		t.Errorf("Migrate() error = %v", err)
	}
}

func TestParseMigrationFilename(t *testing.T) {
	tests := []struct {
		name        string
		filename    string
		wantVersion string
		wantName    string
		wantDown    bool
		wantOK      bool
	}{
		{
			name:        "up migration",
			filename:    "20260801_120000_initial_schema.up.sql",
			wantVersion: "20260801_120000",
			wantName:    "initial_schema",
			wantDown:    false,
			wantOK:      true,
		},
		{
			name:        "down migration",
			filename:    "20260801_120000_initial_schema.down.sql",
			wantVersion: "20260801_120000",
			wantName:    "initial_schema",
			wantDown:    true,
			wantOK:      true,
		},
		{
			name:     "missing direction suffix",
			filename: "20260801_120000_initial_schema.sql",
			wantOK:   false,
		},
		{
			name:     "missing description",
			filename: "20260801.up.sql",
			wantOK:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			version, name, down, ok := parseMigrationFilename(tt.filename)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if version != tt.wantVersion {
				t.Errorf("version = %q, want %q", version, tt.wantVersion)
			}
			if name != tt.wantName {
				t.Errorf("name = %q, want %q", name, tt.wantName)
			}
			if down != tt.wantDown {
				t.Errorf("down = %v, want %v", down, tt.wantDown)
			}
		})
	}
}
