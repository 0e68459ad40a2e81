package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vijay-prabhu/seobrief/internal/config"
	"github.com/vijay-prabhu/seobrief/internal/output"
)

var serpCmd = &cobra.Command{
	Use:   "serp <query>",
	Short: "Show the search result page for a keyword",
	Long: `Serp fetches the top organic results, "people also ask" questions and
related searches for a keyword. Results are cached (see [cache] in the config).

Requires the ` + config.EnvSerpKey + ` environment variable.

Examples:
  seobrief serp "best usb podcast mic under $100"
  seobrief serp "yoga mats for beginners" -o json`,
	Args: cobra.ExactArgs(1),
	RunE: runSERP,
}

func init() {
	rootCmd.AddCommand(serpCmd)
}

func runSERP(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	searcher, err := a.searcher()
	if err != nil {
		return err
	}
	if searcher == nil {
		return fmt.Errorf("%s is not set", config.EnvSerpKey)
	}

	snap, err := searcher.Search(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	return output.Output(outputFmt, snap)
}
