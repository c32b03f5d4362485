// Package commands implements the voicegate CLI command tree.
package commands

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/voicegate/voicegate/pkg/audio/normalize"
	"github.com/voicegate/voicegate/pkg/embed"
	"github.com/voicegate/voicegate/pkg/gate"
	"github.com/voicegate/voicegate/pkg/speaker/store"
	"github.com/voicegate/voicegate/pkg/storage"
	"github.com/voicegate/voicegate/pkg/watermark"
)

var (
	flagDataDir string
	flagConfig  string
	flagVerbose bool
)

var rootCmd = &cobra.Command{
	Use:   "voicegate",
	Short: "Voice-biometric enrollment and verification",
	Long: `voicegate enrolls speakers from audio recordings and verifies fresh
audio against them, with an inaudible watermark check that rejects
replayed enrollment recordings.

Speaker data is kept under the data directory:

  speakers.db           speaker database (msgpack blob)
  enrolled_user_*.wav   enrollment recordings (reconciliation source)
  config.yaml           optional configuration`,
	SilenceUsage: true,
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "",
		"data directory (default ~/.voicegate)")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "",
		"config file (default <data-dir>/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false,
		"enable debug logging")
}

// dataDir resolves the effective data directory.
func dataDir() (string, error) {
	if flagDataDir != "" {
		return flagDataDir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".voicegate"), nil
}

// newLogger builds the CLI logger writing to stderr.
func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if flagVerbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// newEngine wires up the full pipeline from flags and config.
func newEngine() (*gate.Engine, error) {
	dir, err := dataDir()
	if err != nil {
		return nil, err
	}
	cfg, err := loadConfig(flagConfig, dir)
	if err != nil {
		return nil, err
	}
	log := newLogger()

	artifacts, err := storage.NewLocal(dir)
	if err != nil {
		return nil, err
	}

	db, err := store.Open(store.Options{
		Path:     filepath.Join(dir, "speakers.db"),
		MaxBytes: cfg.StoreMaxBytes,
		Logger:   log,
	})
	if err != nil {
		if !errors.Is(err, store.ErrCorrupt) {
			return nil, err
		}
		// Corrupt blob: the store opened empty and the loss is logged;
		// reconciliation can rebuild entries from artifacts.
		log.Warn("continuing with empty speaker database", "error", err)
	}

	var embedder embed.Embedder
	if cfg.Embedder.Endpoint != "" {
		embedder = embed.NewHTTP(cfg.Embedder.Endpoint, cfg.Embedder.Dimension)
	} else {
		embedder = embed.NewSpectral()
	}

	codec := watermark.New(
		watermark.WithBand(cfg.Watermark.LowHz, cfg.Watermark.HighHz),
		watermark.WithAmplitude(cfg.Watermark.Amplitude),
		watermark.WithThreshold(cfg.Watermark.Threshold),
	)

	return gate.New(gate.Options{
		Store:      db,
		Embedder:   embedder,
		Normalizer: normalize.New(cfg.SampleRate),
		Watermark:  codec,
		Artifacts:  artifacts,
		Threshold:  cfg.Threshold,
		Logger:     log,
	})
}
