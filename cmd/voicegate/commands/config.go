package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"

	"github.com/voicegate/voicegate/pkg/audio/normalize"
	"github.com/voicegate/voicegate/pkg/gate"
	"github.com/voicegate/voicegate/pkg/speaker/store"
	"github.com/voicegate/voicegate/pkg/watermark"
)

// Config is the voicegate configuration file (YAML).
type Config struct {
	// SampleRate is the canonical sample rate in Hz. Default 16000.
	SampleRate int `yaml:"sample_rate"`

	// Threshold is the cosine similarity needed to authenticate
	// (strict greater-than). Default 0.35.
	Threshold float64 `yaml:"threshold"`

	// StoreMaxBytes caps the speaker database blob size before the
	// oldest enrollment is evicted. Default 4000.
	StoreMaxBytes int64 `yaml:"store_max_bytes"`

	// Watermark configures the anti-replay sweep.
	Watermark WatermarkConfig `yaml:"watermark"`

	// Embedder configures the embedding backend. With an empty
	// endpoint the built-in spectral embedder is used.
	Embedder EmbedderConfig `yaml:"embedder"`
}

// WatermarkConfig configures the enrollment watermark band.
type WatermarkConfig struct {
	LowHz     float64 `yaml:"low_hz"`
	HighHz    float64 `yaml:"high_hz"`
	Amplitude float64 `yaml:"amplitude"`
	Threshold float64 `yaml:"threshold"`
}

// EmbedderConfig selects and configures the embedding backend.
type EmbedderConfig struct {
	// Endpoint is the model service URL. Empty selects the local
	// spectral embedder.
	Endpoint string `yaml:"endpoint"`

	// Dimension is the model's embedding dimension (required with a
	// non-empty Endpoint).
	Dimension int `yaml:"dimension"`
}

// defaultConfig returns the configuration used when no file exists.
func defaultConfig() Config {
	return Config{
		SampleRate:    normalize.DefaultSampleRate,
		Threshold:     gate.DefaultThreshold,
		StoreMaxBytes: store.DefaultMaxBytes,
		Watermark: WatermarkConfig{
			LowHz:     watermark.DefaultLowHz,
			HighHz:    watermark.DefaultHighHz,
			Amplitude: watermark.DefaultAmplitude,
			Threshold: watermark.DefaultThreshold,
		},
	}
}

// loadConfig reads the config file at path, or the default location
// <dataDir>/config.yaml when path is empty. A missing file yields the
// defaults; a malformed file is an error.
func loadConfig(path, dataDir string) (Config, error) {
	cfg := defaultConfig()

	if path == "" {
		path = filepath.Join(dataDir, "config.yaml")
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}

	if cfg.SampleRate <= 0 {
		cfg.SampleRate = normalize.DefaultSampleRate
	}
	if cfg.Threshold <= 0 {
		cfg.Threshold = gate.DefaultThreshold
	}
	if cfg.StoreMaxBytes <= 0 {
		cfg.StoreMaxBytes = store.DefaultMaxBytes
	}
	if cfg.Embedder.Endpoint != "" && cfg.Embedder.Dimension <= 0 {
		return cfg, fmt.Errorf("%s: embedder.dimension is required with an endpoint", path)
	}
	return cfg, nil
}
