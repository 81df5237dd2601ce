package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "config.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Library != "books" {
		t.Errorf("Library = %q, want %q", cfg.Library, "books")
	}
	if cfg.Logging.Level != "none" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "none")
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
library: /srv/books
logging:
  level: debug
  destination: /tmp/bookrat.log
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Library != "/srv/books" {
		t.Errorf("Library = %q, want %q", cfg.Library, "/srv/books")
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "debug")
	}
	if cfg.Logging.Destination != "/tmp/bookrat.log" {
		t.Errorf("Logging.Destination = %q", cfg.Logging.Destination)
	}
	// Fields absent from the file keep their defaults.
	if cfg.Logging.Mode != "append" {
		t.Errorf("Logging.Mode = %q, want %q", cfg.Logging.Mode, "append")
	}
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("librry: typo\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load() accepted unknown field")
	}
}

func TestLoadRejectsBadLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("logging:\n  level: loud\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load() accepted bad logging level")
	}
}

func TestPrepareWritesToFile(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "logs", "test.log")
	conf := LoggerConfig{Level: "debug", Destination: dest, Mode: "overwrite"}

	log, err := conf.Prepare()
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	log.Info("hello")
	log.Sync()

	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	if len(data) == 0 {
		t.Error("log file is empty")
	}
}

func TestPrepareNoneLevelIsNop(t *testing.T) {
	conf := LoggerConfig{Level: "none"}
	log, err := conf.Prepare()
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	log.Info("discarded")
}
