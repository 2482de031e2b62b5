package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, "env: local\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if cfg.Env != "local" {
		t.Fatalf("Expected env local, got %q", cfg.Env)
	}
	if cfg.Migration.MediaTable != "media" || cfg.Migration.SlidesTable != "slides" {
		t.Fatalf("Unexpected table defaults: %+v", cfg.Migration)
	}
	if !cfg.Migration.RenumberDisplayOrder {
		t.Fatal("Expected display order renumbering to default to true")
	}
	if cfg.AuditWorker.Interval != 15*time.Minute {
		t.Fatalf("Expected 15m audit interval, got %s", cfg.AuditWorker.Interval)
	}
	if cfg.MinIO.Endpoint != "" {
		t.Fatalf("Expected MinIO to be disabled by default, got %q", cfg.MinIO.Endpoint)
	}
}

func TestLoad_FileValues(t *testing.T) {
	path := writeConfig(t, `
env: staging
pgsql:
  host: db.internal
  dbname: portal
migration:
  media_table: gallery_media
  indexed_prefix: "med_"
  renumber_display_order: false
  rate_limit_per_hour: 10
audit_worker:
  interval: 30s
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if cfg.PGSQL.Host != "db.internal" || cfg.PGSQL.DBName != "portal" {
		t.Fatalf("Unexpected pgsql section: %+v", cfg.PGSQL)
	}
	if cfg.Migration.MediaTable != "gallery_media" {
		t.Fatalf("Expected gallery_media, got %q", cfg.Migration.MediaTable)
	}
	if cfg.Migration.IndexedPrefix != "med_" {
		t.Fatalf("Expected med_ prefix, got %q", cfg.Migration.IndexedPrefix)
	}
	if cfg.Migration.RenumberDisplayOrder {
		t.Fatal("Expected renumbering to be disabled")
	}
	if cfg.Migration.RateLimitPerHour != 10 {
		t.Fatalf("Expected rate limit 10, got %d", cfg.Migration.RateLimitPerHour)
	}
	if cfg.AuditWorker.Interval != 30*time.Second {
		t.Fatalf("Expected 30s interval, got %s", cfg.AuditWorker.Interval)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("Expected error for missing config file")
	}
}
