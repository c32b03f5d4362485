package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var verifyCmd = &cobra.Command{
	Use:   "verify <audio.wav>",
	Short: "Verify an audio file against enrolled speakers",
	Long: `Verify a fresh recording against the enrolled speakers.

The clip is first checked for the enrollment watermark: recordings that
carry it are replays of enrollment audio and are rejected outright.
Otherwise the clip's embedding is matched against the store; if no
indexed speaker matches, surviving enrollment artifacts are scanned as a
recovery path.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		audioBytes, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}

		engine, err := newEngine()
		if err != nil {
			return err
		}

		res, err := engine.Verify(cmd.Context(), audioBytes)
		if err != nil {
			return err
		}

		switch {
		case res.WatermarkDetected:
			fmt.Println("DENIED: watermark detected, possible replay attack")
		case res.Authenticated:
			fmt.Printf("AUTHENTICATED: %s (%s), score %.4f\n",
				res.DisplayName, res.SpeakerID, res.Score)
		default:
			fmt.Println("DENIED: no matching speaker")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}
