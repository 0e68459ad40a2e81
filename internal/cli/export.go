package cli

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/vijay-prabhu/seobrief/internal/database"
	"github.com/vijay-prabhu/seobrief/internal/research"
)

var exportCmd = &cobra.Command{
	Use:   "export <run-id>",
	Short: "Export a run's keywords to CSV or JSON",
	Long: `Export the ranked keywords of a research run.

Supported formats:
  - csv: Comma-separated values (spreadsheet-compatible)
  - json: JSON array of keyword objects with component scores

The CSV output can be fed back into 'seobrief score'.

Examples:
  seobrief export 3f2a9c1e --format=csv > keywords.csv
  seobrief export 3f2a9c1e --format=json > keywords.json`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

var exportFormat string

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVar(&exportFormat, "format", "csv", "Export format (csv, json)")
}

func runExport(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	detail, err := research.LoadDetail(cmd.Context(), a.db, args[0])
	if err != nil {
		return err
	}

	switch exportFormat {
	case "csv":
		return exportCSV(os.Stdout, detail.Keywords)
	case "json":
		return exportJSON(os.Stdout, detail.Keywords)
	default:
		return fmt.Errorf("unknown format: %s (use csv or json)", exportFormat)
	}
}

// exportHeader starts with the columns keyword files are read with.
var exportHeader = []string{
	"keyword", "volume", "competition", "cpc", "rank", "score",
	"opportunity_level", "intent", "is_quick_win", "source",
}

func exportCSV(out io.Writer, rows []database.RunKeyword) error {
	w := csv.NewWriter(out)
	defer w.Flush()

	// Write header
	if err := w.Write(exportHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	// Write rows
	for _, k := range rows {
		source := ""
		if k.Source != nil {
			source = *k.Source
		}
		record := []string{
			k.Keyword,
			strconv.Itoa(k.Volume),
			strconv.FormatFloat(k.Competition, 'f', -1, 64),
			strconv.FormatFloat(k.CPC, 'f', -1, 64),
			strconv.Itoa(k.Rank),
			strconv.FormatFloat(k.Score, 'f', 1, 64),
			k.Level,
			k.Intent,
			strconv.FormatBool(k.IsQuickWin),
			source,
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	w.Flush()
	return w.Error()
}

func exportJSON(out io.Writer, rows []database.RunKeyword) error {
	if rows == nil {
		rows = []database.RunKeyword{}
	}

	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(rows); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}
