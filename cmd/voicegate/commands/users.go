package commands

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "List enrolled speakers",
	Long: `List all known speakers.

Rows marked "store" are indexed in the speaker database. Rows marked
"artifact" only have a surviving enrollment recording; they are
re-indexed automatically when a matching voice verifies.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := newEngine()
		if err != nil {
			return err
		}

		users := engine.ListUsers(cmd.Context())
		if len(users) == 0 {
			fmt.Println("No speakers enrolled.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tSOURCE\tENROLLED\tLAST VERIFIED\tARTIFACT")
		for _, u := range users {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%v\n",
				u.ID, u.DisplayName, u.Source,
				formatTime(u.EnrolledAt), formatTime(u.LastVerifiedAt),
				u.HasArtifact)
		}
		return w.Flush()
	},
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02 15:04:05")
}

func init() {
	rootCmd.AddCommand(usersCmd)
}
