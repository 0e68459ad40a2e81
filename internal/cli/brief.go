package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vijay-prabhu/seobrief/internal/brief"
	"github.com/vijay-prabhu/seobrief/internal/output"
)

var (
	briefRank   int
	briefFormat string
	briefOut    string
)

var briefCmd = &cobra.Command{
	Use:   "brief <run-id>",
	Short: "Rewrite the content brief for a saved run",
	Long: `Brief rewrites the content brief for a saved research run, by default
for its top keyword. The new brief replaces the stored one.

Examples:
  seobrief brief 3f2a9c1e                    # Brief for the top keyword
  seobrief brief 3f2a9c1e --rank=2           # Brief for the second keyword
  seobrief brief 3f2a9c1e --format=html --out=brief.html`,
	Args: cobra.ExactArgs(1),
	RunE: runBrief,
}

func init() {
	rootCmd.AddCommand(briefCmd)
	briefCmd.Flags().IntVar(&briefRank, "rank", 0, "Keyword rank within the run (default: top keyword)")
	briefCmd.Flags().StringVar(&briefFormat, "format", "md", "Brief format (md, html)")
	briefCmd.Flags().StringVar(&briefOut, "out", "", "Write the brief to a file instead of stdout")
}

func runBrief(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if briefFormat != "md" && briefFormat != "html" {
		return fmt.Errorf("unknown format: %s (use md or html)", briefFormat)
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

	b, err := pipeline.Rebrief(ctx, args[0], briefRank)
	if err != nil {
		return err
	}

	if outputFmt == output.FormatJSON {
		return output.JSON(b)
	}

	content := brief.Markdown(*b)
	if briefFormat == "html" {
		content, err = brief.HTML(*b)
		if err != nil {
			return fmt.Errorf("failed to render brief: %w", err)
		}
	}

	if briefOut == "" {
		fmt.Println(content)
		return nil
	}
	if err := os.WriteFile(briefOut, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write brief: %w", err)
	}
	fmt.Printf("Brief for %q written to %s\n", b.PrimaryKeyword, briefOut)
	return nil
}
