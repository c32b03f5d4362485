package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var enrollCmd = &cobra.Command{
	Use:   "enroll <name> <audio.wav>",
	Short: "Enroll a speaker from an audio file",
	Long: `Enroll a speaker under the given display name.

The recording is normalized to mono 16-bit PCM at the configured sample
rate, embedded, and stored. The canonical recording is also kept as an
artifact so the database can be rebuilt from it.

Names that case-insensitively contain (or are contained by) an enrolled
name are rejected as duplicates.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, path := args[0], args[1]

		audioBytes, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		engine, err := newEngine()
		if err != nil {
			return err
		}

		res, err := engine.Enroll(cmd.Context(), name, audioBytes)
		if err != nil {
			return err
		}

		fmt.Printf("Enrolled %q as %s\n", res.DisplayName, res.SpeakerID)
		if res.EvictedID != "" {
			fmt.Printf("Store over size cap: evicted oldest speaker %s\n", res.EvictedID)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(enrollCmd)
}
