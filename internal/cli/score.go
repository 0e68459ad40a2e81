package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vijay-prabhu/seobrief/internal/keywords"
	"github.com/vijay-prabhu/seobrief/internal/opportunity"
	"github.com/vijay-prabhu/seobrief/internal/output"
)

var (
	scoreMode  string
	scoreMin   int
	scoreMax   int
	scoreTopic string
	scoreAll   bool
)

var scoreCmd = &cobra.Command{
	Use:   "score <file>",
	Short: "Score keywords from a CSV, JSON or YAML file",
	Long: `Score reads keyword candidates from a file and prints the quick wins.
Nothing is saved and no network access is needed.

Files need a keyword (or text) column; volume, competition (0-1) and cpc are
optional. Rows that fail validation are skipped and reported.

Examples:
  seobrief score keywords.csv
  seobrief score keywords.json --mode=easy --min=5 --max=10
  seobrief score keywords.yaml --all            # Score every row, in file order
  seobrief score keywords.csv --topic="yoga mats" -o json`,
	Args: cobra.ExactArgs(1),
	RunE: runScore,
}

func init() {
	rootCmd.AddCommand(scoreCmd)
	scoreCmd.Flags().StringVar(&scoreMode, "mode", "medium", "Difficulty mode: easy, medium or hard")
	scoreCmd.Flags().IntVar(&scoreMin, "min", opportunity.DefaultMinResults, "Minimum quick wins before relaxing criteria")
	scoreCmd.Flags().IntVar(&scoreMax, "max", opportunity.DefaultMaxResults, "Maximum keywords to return")
	scoreCmd.Flags().StringVar(&scoreTopic, "topic", "", "Seed topic for synthetic variations when the list is thin")
	scoreCmd.Flags().BoolVar(&scoreAll, "all", false, "Score every candidate instead of selecting quick wins")
}

func runScore(cmd *cobra.Command, args []string) error {
	candidates, rowErrs, err := keywords.LoadFile(args[0])
	if err != nil {
		return err
	}
	reportRowErrors(rowErrs)
	if len(candidates) == 0 {
		return fmt.Errorf("no valid keyword candidates in %s", args[0])
	}

	mode := opportunity.ParseMode(scoreMode)
	if scoreAll {
		return output.Output(outputFmt, opportunity.NewScorer(mode).RankAll(candidates))
	}

	sel := opportunity.NewSelector().Select(opportunity.Request{
		Candidates: candidates,
		Mode:       mode,
		MinResults: scoreMin,
		MaxResults: scoreMax,
		Topic:      scoreTopic,
	})
	if outputFmt != output.FormatJSON && len(sel.Results) > 0 {
		fmt.Fprintln(os.Stderr, NewTerminal().TopPick(sel.Results[0]))
	}
	return output.Output(outputFmt, sel)
}
