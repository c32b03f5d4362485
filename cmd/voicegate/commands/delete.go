package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a speaker record and its enrollment artifact",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := newEngine()
		if err != nil {
			return err
		}

		res, err := engine.DeleteUser(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if !res.RecordRemoved && !res.ArtifactRemoved {
			fmt.Println("Nothing to delete.")
			return nil
		}
		fmt.Printf("Deleted: record=%v artifact=%v\n",
			res.RecordRemoved, res.ArtifactRemoved)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}
