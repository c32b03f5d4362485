package commands

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := loadConfig("", t.TempDir())
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.SampleRate != 16000 || cfg.Threshold != 0.35 || cfg.StoreMaxBytes != 4000 {
		t.Errorf("defaults = %+v", cfg)
	}
	if cfg.Watermark.LowHz != 7000 || cfg.Watermark.HighHz != 7800 {
		t.Errorf("watermark defaults = %+v", cfg.Watermark)
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := `
sample_rate: 8000
threshold: 0.5
embedder:
  endpoint: http://localhost:9000/embed
  dimension: 192
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadConfig(path, dir)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.SampleRate != 8000 || cfg.Threshold != 0.5 {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Embedder.Endpoint != "http://localhost:9000/embed" || cfg.Embedder.Dimension != 192 {
		t.Errorf("embedder = %+v", cfg.Embedder)
	}
	// Unset fields backfill to defaults.
	if cfg.StoreMaxBytes != 4000 {
		t.Errorf("StoreMaxBytes = %d, want default 4000", cfg.StoreMaxBytes)
	}
}

func TestLoadConfigDefaultLocation(t *testing.T) {
	dir := t.TempDir()
	body := "threshold: 0.6\n"
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := loadConfig("", dir)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Threshold != 0.6 {
		t.Errorf("Threshold = %v, want 0.6", cfg.Threshold)
	}
}

func TestLoadConfigMalformed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("sample_rate: [not a number"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := loadConfig(path, dir); err == nil {
		t.Error("malformed config accepted")
	}
}

func TestLoadConfigEndpointRequiresDimension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := "embedder:\n  endpoint: http://localhost:9000/embed\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := loadConfig(path, dir); err == nil {
		t.Error("endpoint without dimension accepted")
	}
}
