package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vijay-prabhu/seobrief/internal/database"
	"github.com/vijay-prabhu/seobrief/internal/output"
	"github.com/vijay-prabhu/seobrief/internal/research"
)

var showCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show a research run with its keywords and brief",
	Long: `Show a saved research run: its ranked keywords and content brief.

The run ID may be shortened to any unique prefix.

Examples:
  seobrief show 3f2a9c1e
  seobrief show 3f2a -o json`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	detail, err := research.LoadDetail(cmd.Context(), a.db, args[0])
	if err != nil {
		if errors.Is(err, database.ErrRunNotFound) {
			return fmt.Errorf("no run found for %q (see 'seobrief list')", args[0])
		}
		return err
	}

	return output.Output(outputFmt, detail)
}
