package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DBPath != "spiritcast.db" {
		t.Fatalf("expected default db path, got %q", cfg.DBPath)
	}
	if cfg.PollInterval != 500*time.Millisecond {
		t.Fatalf("expected default poll interval 500ms, got %s", cfg.PollInterval)
	}
	if cfg.Width != 60 {
		t.Fatalf("expected default width 60, got %d", cfg.Width)
	}
	if cfg.CatalogPath != "" || cfg.Version != "" {
		t.Fatalf("expected empty catalog and version, got %q %q", cfg.CatalogPath, cfg.Version)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SPIRITCAST_DB", "/tmp/service.db")
	t.Setenv("SPIRITCAST_CATALOG", "/etc/spiritcast/catalog.yaml")
	t.Setenv("SPIRITCAST_VERSION", "kjv")
	t.Setenv("SPIRITCAST_POLL_INTERVAL", "2s")
	t.Setenv("SPIRITCAST_WIDTH", "80")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := Config{
		DBPath:       "/tmp/service.db",
		CatalogPath:  "/etc/spiritcast/catalog.yaml",
		Version:      "kjv",
		PollInterval: 2 * time.Second,
		Width:        80,
	}
	if cfg != want {
		t.Fatalf("expected %+v, got %+v", want, cfg)
	}
}

func TestLoadParseError(t *testing.T) {
	t.Setenv("SPIRITCAST_POLL_INTERVAL", "soon")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env prefix, got %v", err)
	}
}

func TestLoadValidationError(t *testing.T) {
	t.Setenv("SPIRITCAST_POLL_INTERVAL", "0s")
	t.Setenv("SPIRITCAST_WIDTH", "-1")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error")
	}
	for _, want := range []string{"SPIRITCAST_POLL_INTERVAL", "SPIRITCAST_WIDTH"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("expected %s in error, got %v", want, err)
		}
	}
}
