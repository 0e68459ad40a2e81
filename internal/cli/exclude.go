package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vijay-prabhu/seobrief/internal/database"
	"github.com/vijay-prabhu/seobrief/internal/filter"
	"github.com/vijay-prabhu/seobrief/internal/output"
)

var excludeCmd = &cobra.Command{
	Use:   "exclude",
	Short: "Manage keyword exclusion terms",
	Long: `Manage terms that remove keyword candidates before scoring.

Terms come from:
  - The [filters] exclude_terms list in config.toml
  - Terms you add here
  - Suggestions recorded during research (low-value patterns such as
    "torrent" or "salary" seen in generated keywords)

Suggestions are not applied until you approve them.`,
}

var excludeAddCmd = &cobra.Command{
	Use:   "add <term> [term...]",
	Short: "Exclude keywords containing a term",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runExcludeAdd,
}

var excludeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored exclusion terms",
	RunE:  runExcludeList,
}

var excludeApproveCmd = &cobra.Command{
	Use:   "approve <id|term>",
	Short: "Approve a suggested exclusion",
	Args:  cobra.ExactArgs(1),
	RunE:  runExcludeApprove,
}

var excludeRemoveCmd = &cobra.Command{
	Use:   "remove <id|term>",
	Short: "Remove an exclusion or reject a suggestion",
	Args:  cobra.ExactArgs(1),
	RunE:  runExcludeRemove,
}

var excludeExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export active exclusions for config.toml",
	Long: `Export all active (user + confirmed) exclusions in TOML format.

You can add this output to your config.toml [filters] section
to make the terms permanent.`,
	RunE: runExcludeExport,
}

var excludeSourceFlag string

func init() {
	rootCmd.AddCommand(excludeCmd)
	excludeCmd.AddCommand(excludeAddCmd)
	excludeCmd.AddCommand(excludeListCmd)
	excludeCmd.AddCommand(excludeApproveCmd)
	excludeCmd.AddCommand(excludeRemoveCmd)
	excludeCmd.AddCommand(excludeExportCmd)

	excludeListCmd.Flags().StringVar(&excludeSourceFlag, "source", "", "Filter by source (user, suggested, confirmed)")
}

func runExcludeAdd(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	learner := filter.NewLearner(a.db)
	for _, term := range args {
		if err := learner.LearnFromFeedback(cmd.Context(), term); err != nil {
			return fmt.Errorf("failed to add %q: %w", term, err)
		}
		fmt.Printf("Excluding keywords containing %q\n", strings.ToLower(strings.TrimSpace(term)))
	}
	return nil
}

func runExcludeList(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	var source *string
	if excludeSourceFlag != "" {
		source = &excludeSourceFlag
	}

	exclusions, err := a.db.ListExclusions(cmd.Context(), source)
	if err != nil {
		return fmt.Errorf("failed to list exclusions: %w", err)
	}

	if outputFmt == output.FormatJSON {
		if exclusions == nil {
			exclusions = []database.Exclusion{}
		}
		return output.JSON(exclusions)
	}

	if len(exclusions) == 0 {
		fmt.Println("No stored exclusions yet.")
		fmt.Println("\nExclusions come from:")
		fmt.Println("  - 'seobrief exclude add <term>'")
		fmt.Println("  - Suggestions recorded during 'seobrief research'")
		if len(a.cfg.Filters.ExcludeTerms) > 0 {
			fmt.Printf("\nConfigured terms: %s\n", strings.Join(a.cfg.Filters.ExcludeTerms, ", "))
		}
		return nil
	}

	// Group by source for display
	suggested := []database.Exclusion{}
	active := []database.Exclusion{}

	for _, e := range exclusions {
		if e.Source == database.ExclusionSourceSuggested {
			suggested = append(suggested, e)
		} else {
			active = append(active, e)
		}
	}

	if len(suggested) > 0 {
		fmt.Println("SUGGESTIONS (pending approval):")
		if err := output.Table(suggested); err != nil {
			return err
		}
		fmt.Println()
		fmt.Println("Use 'seobrief exclude approve <id>' to apply a suggestion")
		fmt.Println("Use 'seobrief exclude remove <id>' to reject a suggestion")
		fmt.Println()
	}

	if len(active) > 0 {
		fmt.Println("ACTIVE EXCLUSIONS:")
		if err := output.Table(active); err != nil {
			return err
		}
		fmt.Println()
		fmt.Println("Use 'seobrief exclude export' to add these to your config.toml")
	}

	return nil
}

// findExclusion resolves a full ID, a unique ID prefix or an exact term.
func findExclusion(ctx context.Context, db *database.DB, ref string) (*database.Exclusion, error) {
	exclusions, err := db.ListExclusions(ctx, nil)
	if err != nil {
		return nil, err
	}

	ref = strings.TrimSpace(ref)
	var found *database.Exclusion
	for i := range exclusions {
		e := &exclusions[i]
		if e.ID == ref || strings.EqualFold(e.Term, ref) {
			return e, nil
		}
		if strings.HasPrefix(e.ID, ref) {
			if found != nil {
				return nil, fmt.Errorf("%w: %s", database.ErrAmbiguousID, ref)
			}
			found = e
		}
	}

	if found == nil {
		return nil, fmt.Errorf("%w: %s", database.ErrExclusionNotFound, ref)
	}
	return found, nil
}

func runExcludeApprove(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	found, err := findExclusion(ctx, a.db, args[0])
	if err != nil {
		return err
	}

	if err := a.db.ApproveExclusion(ctx, found.ID); err != nil {
		return fmt.Errorf("failed to approve exclusion: %w", err)
	}

	fmt.Printf("Approved exclusion: %s\n", found.Term)
	fmt.Println("This term now removes matching keywords during research.")

	return nil
}

func runExcludeRemove(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	found, err := findExclusion(ctx, a.db, args[0])
	if err != nil {
		return err
	}

	if err := a.db.DeleteExclusion(ctx, found.ID); err != nil {
		return fmt.Errorf("failed to delete exclusion: %w", err)
	}

	fmt.Printf("Removed exclusion: %s (%s)\n", found.Term, found.Source)
	for _, term := range a.cfg.Filters.ExcludeTerms {
		if strings.EqualFold(term, found.Term) {
			fmt.Fprintf(os.Stderr, "Note: %q is also listed in config.toml and still applies.\n", term)
		}
	}

	return nil
}

func runExcludeExport(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	f := filter.New(a.cfg.Filters)
	if err := filter.NewLearner(a.db).LoadInto(cmd.Context(), f); err != nil {
		return err
	}

	fmt.Println("# Add this to your config.toml [filters] section:")
	fmt.Println()
	fmt.Println("exclude_terms = [")
	for _, term := range f.GetAllExcludeTerms() {
		fmt.Printf("    %q,\n", term)
	}
	fmt.Println("]")

	return nil
}
