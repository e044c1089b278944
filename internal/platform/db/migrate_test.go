package db

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestParseMigrationName(t *testing.T) {
	tests := []struct {
		filename string
		version  int
		name     string
		ok       bool
	}{
		{"001_core.sql", 1, "core", true},
		{"012_billing_codes.sql", 12, "billing_codes", true},
		{"notes.sql", 0, "", false},
		{"_leading.sql", 0, "", false},
		{"abc_def.sql", 0, "", false},
	}
	for _, tt := range tests {
		v, name, ok := parseMigrationName(tt.filename)
		if v != tt.version || name != tt.name || ok != tt.ok {
			t.Errorf("parseMigrationName(%q) = (%d, %q, %v), want (%d, %q, %v)",
				tt.filename, v, name, ok, tt.version, tt.name, tt.ok)
		}
	}
}

func TestLoadMigrationsSortedByVersion(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "010_visits.sql", "CREATE TABLE visit ();")
	writeFile(t, dir, "001_core.sql", "CREATE TABLE patient ();")
	writeFile(t, dir, "002_wounds.sql", "CREATE TABLE wound ();")
	writeFile(t, dir, "README.md", "not a migration")

	m := NewMigrator(nil, dir)
	migrations, err := m.LoadMigrations()
	if err != nil {
		t.Fatal(err)
	}
	if len(migrations) != 3 {
		t.Fatalf("expected 3 migrations, got %d", len(migrations))
	}
	want := []int{1, 2, 10}
	for i, mig := range migrations {
		if mig.Version != want[i] {
			t.Errorf("migration %d has version %d, want %d", i, mig.Version, want[i])
		}
	}
	if migrations[0].SQL != "CREATE TABLE patient ();" {
		t.Errorf("unexpected SQL for first migration: %q", migrations[0].SQL)
	}
}

func TestLoadMigrationsMissingDir(t *testing.T) {
	m := NewMigrator(nil, "/nonexistent/migrations")
	if _, err := m.LoadMigrations(); err == nil {
		t.Fatal("expected error for missing directory")
	}
}
