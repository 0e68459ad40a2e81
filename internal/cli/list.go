package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vijay-prabhu/seobrief/internal/database"
	"github.com/vijay-prabhu/seobrief/internal/output"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List research runs",
	Long: `List saved research runs, newest first.

Examples:
  seobrief list                        # Last 20 runs
  seobrief list --topic=yoga           # Runs whose topic contains "yoga"
  seobrief list --status=degraded      # Runs that found fewer quick wins than requested
  seobrief list --since=7d             # Runs from the last 7 days
  seobrief list -o json                # Output as JSON`,
	RunE: runList,
}

var (
	listTopic  string
	listMode   string
	listStatus string
	listSince  string
	listLimit  int
)

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringVar(&listTopic, "topic", "", "Filter by topic (case-insensitive partial match)")
	listCmd.Flags().StringVar(&listMode, "mode", "", "Filter by mode (easy, medium, hard)")
	listCmd.Flags().StringVar(&listStatus, "status", "", "Filter by status (complete, degraded)")
	listCmd.Flags().StringVar(&listSince, "since", "", "Filter by time (e.g., 7d, 2w, 1m)")
	listCmd.Flags().IntVar(&listLimit, "limit", 20, "Maximum number of results (0 for all)")
}

func runList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	// Build query options
	opts := database.ListOptions{
		Limit: listLimit,
	}

	if listTopic != "" {
		opts.Topic = &listTopic
	}

	if listMode != "" {
		opts.Mode = &listMode
	}

	if listStatus != "" {
		status := database.RunStatus(listStatus)
		opts.Status = &status
	}

	if listSince != "" {
		since, err := parseDuration(listSince)
		if err != nil {
			return fmt.Errorf("invalid duration: %w", err)
		}
		sinceTime := time.Now().Add(-since)
		opts.Since = &sinceTime
	}

	// Query database
	runs, err := a.db.ListRuns(ctx, opts)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}
	if runs == nil {
		runs = []database.Run{}
	}

	// Output
	return output.Output(outputFmt, runs)
}

// parseDuration parses a human-readable duration like "7d", "2w", "1m"
func parseDuration(s string) (time.Duration, error) {
	if len(s) < 2 {
		return 0, fmt.Errorf("invalid duration format")
	}

	unit := s[len(s)-1]
	valueStr := s[:len(s)-1]

	var value int
	if _, err := fmt.Sscanf(valueStr, "%d", &value); err != nil {
		return 0, fmt.Errorf("invalid duration value")
	}

	switch unit {
	case 'd':
		return time.Duration(value) * 24 * time.Hour, nil
	case 'w':
		return time.Duration(value) * 7 * 24 * time.Hour, nil
	case 'm':
		return time.Duration(value) * 30 * 24 * time.Hour, nil
	default:
		return 0, fmt.Errorf("unknown duration unit: %c (use d, w, or m)", unit)
	}
}
