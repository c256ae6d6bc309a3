package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseJSONConfigSuccess(t *testing.T) {
	path := writeTempConfig(t, `{"workers":4,"sockbuf":8388608,"cert":"a.crt","key":"a.key","quiet":true}`)

	var cfg Config
	if err := parseJSONConfig(&cfg, path); err != nil {
		t.Fatalf("parseJSONConfig returned error: %v", err)
	}

	if cfg.Workers != 4 || cfg.SockBuf != 8388608 {
		t.Fatalf("unexpected numeric fields: %+v", cfg)
	}

	if cfg.CertFile != "a.crt" || cfg.KeyFile != "a.key" {
		t.Fatalf("unexpected cert paths: %+v", cfg)
	}

	if !cfg.Quiet {
		t.Fatalf("expected quiet to be set")
	}
}

func TestParseJSONConfigMissingFile(t *testing.T) {
	var cfg Config
	missing := filepath.Join(t.TempDir(), "missing.json")
	if err := parseJSONConfig(&cfg, missing); err == nil {
		t.Fatalf("parseJSONConfig expected error for missing file")
	}
}

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}
	return path
}
