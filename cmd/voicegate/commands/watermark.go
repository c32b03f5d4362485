package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/voicegate/voicegate/pkg/audio/wav"
	"github.com/voicegate/voicegate/pkg/watermark"
)

var (
	flagWatermarkDuration float64
)

var watermarkCmd = &cobra.Command{
	Use:   "watermark <out.wav>",
	Short: "Render the enrollment watermark sweep to a WAV file",
	Long: `Render the anti-replay watermark to a WAV file.

Play this sweep through a speaker while recording an enrollment sample;
the recording then carries the watermark, so replaying it at
verification time is self-detecting.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := dataDir()
		if err != nil {
			return err
		}
		cfg, err := loadConfig(flagConfig, dir)
		if err != nil {
			return err
		}

		codec := watermark.New(
			watermark.WithBand(cfg.Watermark.LowHz, cfg.Watermark.HighHz),
			watermark.WithAmplitude(cfg.Watermark.Amplitude),
		)
		clip := codec.Generate(flagWatermarkDuration, cfg.SampleRate)

		f, err := os.Create(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		if err := wav.Encode(f, clip); err != nil {
			return err
		}

		fmt.Printf("Wrote %.1fs watermark sweep (%.0f-%.0f Hz) to %s\n",
			flagWatermarkDuration, cfg.Watermark.LowHz, cfg.Watermark.HighHz, args[0])
		return nil
	},
}

func init() {
	watermarkCmd.Flags().Float64Var(&flagWatermarkDuration, "duration", 3.0,
		"sweep duration in seconds")
	rootCmd.AddCommand(watermarkCmd)
}
