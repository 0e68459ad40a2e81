package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/vijay-prabhu/seobrief/internal/brief"
	"github.com/vijay-prabhu/seobrief/internal/keywords"
	"github.com/vijay-prabhu/seobrief/internal/opportunity"
	"github.com/vijay-prabhu/seobrief/internal/output"
	"github.com/vijay-prabhu/seobrief/internal/research"
)

var (
	researchMode        string
	researchMin         int
	researchMax         int
	researchMaxKeywords int
	researchFile        string
	researchSkipSERP    bool
	researchSkipBrief   bool
	researchDryRun      bool
	researchConcurrency int
	researchBriefOut    string
)

var researchCmd = &cobra.Command{
	Use:   "research <topic> [topic...]",
	Short: "Find quick-win keywords for a topic and write a brief",
	Long: `Research generates keyword ideas for a topic, removes excluded and
off-topic terms, picks the quick wins, looks up the result page for the best
one and writes a content brief. The run is saved for later.

Several topics are researched concurrently.

Examples:
  seobrief research "podcast microphones"
  seobrief research "yoga mats" --mode=easy --min=5 --max=10
  seobrief research "yoga mats" --file=keywords.csv    # Score your own list
  seobrief research "yoga mats" --brief-out=brief.html
  seobrief research "standing desks" "desk chairs" -o json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runResearch,
}

func init() {
	rootCmd.AddCommand(researchCmd)
	researchCmd.Flags().StringVar(&researchMode, "mode", "", "Difficulty mode: easy, medium or hard (default from config)")
	researchCmd.Flags().IntVar(&researchMin, "min", 0, "Minimum quick wins before relaxing criteria (default from config)")
	researchCmd.Flags().IntVar(&researchMax, "max", 0, "Maximum keywords to return (default from config)")
	researchCmd.Flags().IntVar(&researchMaxKeywords, "max-keywords", 0, "Keyword ideas to generate (default from config)")
	researchCmd.Flags().StringVarP(&researchFile, "file", "f", "", "Use candidates from a CSV, JSON or YAML file instead of generating them")
	researchCmd.Flags().BoolVar(&researchSkipSERP, "skip-serp", false, "Skip the search result lookup")
	researchCmd.Flags().BoolVar(&researchSkipBrief, "skip-brief", false, "Skip the content brief")
	researchCmd.Flags().BoolVar(&researchDryRun, "dry-run", false, "Do not save the run or record suggested exclusions")
	researchCmd.Flags().IntVar(&researchConcurrency, "concurrency", 0, "Topics researched at once (default from config)")
	researchCmd.Flags().StringVar(&researchBriefOut, "brief-out", "", "Write the brief to a .md or .html file (single topic only)")
}

func runResearch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if researchFile != "" && len(args) > 1 {
		return fmt.Errorf("--file can only be used with a single topic")
	}
	if researchBriefOut != "" && len(args) > 1 {
		return fmt.Errorf("--brief-out can only be used with a single topic")
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	pipeline, err := a.pipeline(ctx)
	if err != nil {
		return err
	}

	opts := research.Options{
		MinResults:  researchMin,
		MaxResults:  researchMax,
		MaxKeywords: researchMaxKeywords,
		SkipSERP:    researchSkipSERP,
		SkipBrief:   researchSkipBrief,
		DryRun:      researchDryRun,
	}
	if researchMode != "" {
		opts.Mode = opportunity.ParseMode(researchMode)
	}

	if researchFile != "" {
		candidates, rowErrs, err := keywords.LoadFile(researchFile)
		if err != nil {
			return err
		}
		reportRowErrors(rowErrs)
		opts.Candidates = candidates
	}

	terminal := NewTerminal()

	if len(args) > 1 {
		return runResearchBatch(cmd, pipeline, args, opts, terminal)
	}

	opts.Topic = args[0]
	opts.Progress = progressPrinter(terminal)

	result, err := pipeline.Run(ctx, opts)
	terminal.ClearLine()
	if err != nil {
		return fmt.Errorf("research failed: %w", err)
	}

	if researchBriefOut != "" && result.Brief != nil {
		if err := writeBrief(researchBriefOut, *result.Brief); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Brief written to %s\n", researchBriefOut)
	}

	if outputFmt != output.FormatJSON && len(result.Selection.Results) > 0 {
		fmt.Fprintln(os.Stderr, terminal.TopPick(result.Selection.Results[0]))
	}
	return output.Output(outputFmt, result)
}

func runResearchBatch(cmd *cobra.Command, pipeline *research.Pipeline, topics []string, opts research.Options, terminal *Terminal) error {
	// RunBatch reports from several goroutines
	var mu sync.Mutex
	opts.Progress = func(p research.Progress) {
		mu.Lock()
		defer mu.Unlock()

		terminal.ClearLine()
		msg := fmt.Sprintf("Researched %d/%d topics (%d%%): %s", p.Current, p.Total, p.Percentage(), p.Topic)
		if terminal.IsTerminal {
			fmt.Fprint(os.Stderr, terminal.Color(ColorGreen, msg))
			terminal.Flush()
		} else {
			fmt.Fprintln(os.Stderr, msg)
		}
	}

	results := pipeline.RunBatch(cmd.Context(), topics, opts, researchConcurrency)
	terminal.ClearLine()

	failed := 0
	if outputFmt == output.FormatJSON {
		type batchRow struct {
			Topic  string           `json:"topic"`
			Result *research.Result `json:"result,omitempty"`
			Error  string           `json:"error,omitempty"`
		}
		rows := make([]batchRow, len(results))
		for i, r := range results {
			rows[i] = batchRow{Topic: r.Topic, Result: r.Result}
			if r.Error != nil {
				rows[i].Error = r.Error.Error()
				failed++
			}
		}
		if err := output.JSON(rows); err != nil {
			return err
		}
	} else {
		for _, r := range results {
			fmt.Printf("== %s ==\n", r.Topic)
			if r.Error != nil {
				failed++
				fmt.Printf("Error: %v\n\n", r.Error)
				continue
			}
			if err := output.Output(outputFmt, r.Result); err != nil {
				return err
			}
			fmt.Println()
		}
	}

	if failed == len(results) {
		return fmt.Errorf("all %d topics failed", failed)
	}
	return nil
}

// progressPrinter renders pipeline progress on stderr: a single rewritten
// line in a terminal, one line per phase otherwise.
func progressPrinter(terminal *Terminal) research.ProgressCallback {
	var lastPhase research.ProgressPhase
	var phaseStartTime time.Time

	return func(p research.Progress) {
		// Track phase start time for ETA
		if p.Phase != lastPhase {
			phaseStartTime = time.Now()
		}
		p.StartedAt = phaseStartTime

		terminal.ClearLine()

		var msg string
		switch p.Phase {
		case research.PhaseGenerating:
			msg = fmt.Sprintf("%s Generating keyword ideas for %q...", terminal.Spinner(), p.Topic)
		case research.PhaseFiltering:
			msg = fmt.Sprintf("%s Filtering: %d candidates", terminal.Spinner(), p.Total)
		case research.PhaseScoring:
			msg = fmt.Sprintf("%s Scoring: %d keywords", terminal.Spinner(), p.Total)
		case research.PhaseFetchingSERP:
			msg = fmt.Sprintf("%s Checking the result page...", terminal.Spinner())
		case research.PhaseWritingBrief:
			msg = fmt.Sprintf("%s Writing the content brief...", terminal.Spinner())
		case research.PhaseSaving:
			msg = fmt.Sprintf("%s Saving run (%d%%)", terminal.Spinner(), p.Percentage())
		default:
			msg = p.Description
		}
		if eta := FormatETA(p.ETA()); eta != "" && p.Total > 0 {
			msg += " (ETA " + eta + ")"
		}
		msg = strings.TrimSpace(msg)

		if terminal.UseColor {
			msg = terminal.Color(PhaseColor(string(p.Phase)), msg)
		}

		if terminal.IsTerminal {
			fmt.Fprint(os.Stderr, msg)
			terminal.Flush()
		} else if p.Phase != lastPhase {
			fmt.Fprintln(os.Stderr, msg)
		}
		lastPhase = p.Phase
	}
}

// writeBrief saves a brief as HTML when the path ends in .html or .htm and
// as Markdown otherwise.
func writeBrief(path string, b brief.Brief) error {
	content := brief.Markdown(b)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		html, err := brief.HTML(b)
		if err != nil {
			return fmt.Errorf("failed to render brief: %w", err)
		}
		content = html
	}

	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write brief: %w", err)
	}
	return nil
}

// reportRowErrors prints skipped file rows to stderr, capped to keep the
// output readable.
func reportRowErrors(errs []error) {
	if len(errs) == 0 {
		return
	}
	const shown = 5
	fmt.Fprintf(os.Stderr, "Skipped %d invalid row(s):\n", len(errs))
	for i, err := range errs {
		if i == shown {
			fmt.Fprintf(os.Stderr, "  ... and %d more\n", len(errs)-shown)
			break
		}
		fmt.Fprintf(os.Stderr, "  - %v\n", err)
	}
}
