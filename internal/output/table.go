package output

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/vijay-prabhu/seobrief/internal/database"
	"github.com/vijay-prabhu/seobrief/internal/opportunity"
	"github.com/vijay-prabhu/seobrief/internal/research"
	"github.com/vijay-prabhu/seobrief/internal/serp"
)

// Table writes data as a formatted table to stdout
func Table(data interface{}) error {
	return TableTo(os.Stdout, data)
}

// TableTo writes data as a formatted table to the given writer
func TableTo(w io.Writer, data interface{}) error {
	switch v := data.(type) {
	case []opportunity.RankedResult:
		return rankedTable(w, v)
	case opportunity.Selection:
		return selectionTable(w, v)
	case *research.Result:
		return researchResult(w, v)
	case []database.Run:
		return runsTable(w, v)
	case *research.Detail:
		return runDetail(w, v)
	case *database.Stats:
		return statsTable(w, v)
	case []database.Exclusion:
		return exclusionsTable(w, v)
	case *serp.Snapshot:
		return snapshotTable(w, v)
	default:
		return fmt.Errorf("unsupported data type for table output: %T", data)
	}
}

func rankedTable(w io.Writer, results []opportunity.RankedResult) error {
	if len(results) == 0 {
		fmt.Fprintln(w, "No keywords found.")
		return nil
	}

	table := tablewriter.NewWriter(w)
	table.Header("#", "Keyword", "Volume", "Comp", "CPC", "Score", "Level", "Intent", "Quick win")
	for i, r := range results {
		if err := table.Append([]string{
			strconv.Itoa(i + 1),
			truncate(r.Text, 45),
			strconv.Itoa(r.Volume),
			fmt.Sprintf("%.2f", r.Competition),
			fmt.Sprintf("$%.2f", r.CPC),
			fmt.Sprintf("%.1f", r.Score),
			string(r.Level),
			string(r.Intent),
			yesNo(r.IsQuickWin),
		}); err != nil {
			return err
		}
	}
	return table.Render()
}

func selectionTable(w io.Writer, sel opportunity.Selection) error {
	if err := rankedTable(w, sel.Results); err != nil {
		return err
	}

	stages := make([]string, 0, len(sel.Stages))
	for _, s := range sel.Stages {
		stages = append(stages, fmt.Sprintf("%s +%d", s.Stage, s.Added))
	}
	fmt.Fprintf(w, "\nStages: %s\n", strings.Join(stages, ", "))
	if sel.UnderTarget() {
		fmt.Fprintf(w, "Only %d of the requested %d quick wins were found.\n", len(sel.Results), sel.MinResults)
	}
	return nil
}

const maxDroppedShown = 5

func researchResult(w io.Writer, r *research.Result) error {
	if r.Run != nil {
		id := r.Run.ID
		if id == "" {
			id = "(not saved)"
		}
		fmt.Fprintf(w, "Run:         %s\n", id)
		fmt.Fprintf(w, "Topic:       %s\n", r.Run.Topic)
		fmt.Fprintf(w, "Mode:        %s\n", r.Run.Mode)
		fmt.Fprintf(w, "Status:      %s\n", r.Run.Status)
	}
	fmt.Fprintf(w, "Source:      %s\n", r.Provider)
	fmt.Fprintf(w, "Candidates:  %d (%d kept, %d excluded, %d off topic, %d duplicates)\n",
		r.Candidates, r.FilterStats.Kept, r.FilterStats.Excluded, r.FilterStats.OffTopic, r.FilterStats.Duplicates)
	for i, d := range r.Dropped {
		if i == maxDroppedShown {
			fmt.Fprintf(w, "  ... and %d more dropped\n", len(r.Dropped)-maxDroppedShown)
			break
		}
		fmt.Fprintf(w, "  - %s: %s\n", truncate(d.Keyword, 40), d.Reason)
	}
	fmt.Fprintln(w)

	if err := selectionTable(w, r.Selection); err != nil {
		return err
	}

	if r.Snapshot != nil && len(r.Snapshot.Results) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Top results for %q:\n", r.Snapshot.Query)
		for _, res := range r.Snapshot.Results {
			if res.Position > 5 {
				break
			}
			fmt.Fprintf(w, "  %d. %s (%s)\n", res.Position, truncate(res.Title, 60), res.Domain)
		}
	}

	if r.Brief != nil {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Brief:       %s (%s, ~%d words)\n", r.Brief.PrimaryKeyword, r.Brief.Source, r.Brief.TargetWordCount)
		if len(r.Brief.TitleIdeas) > 0 {
			fmt.Fprintf(w, "Title idea:  %s\n", r.Brief.TitleIdeas[0])
		}
	}

	if len(r.Suggested) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Suggested exclusions: %s (review with 'seobrief exclude list')\n", strings.Join(r.Suggested, ", "))
	}

	for _, err := range r.Errors {
		fmt.Fprintf(w, "Warning: %v\n", err)
	}
	return nil
}

func runsTable(w io.Writer, runs []database.Run) error {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No research runs found.")
		return nil
	}

	table := tablewriter.NewWriter(w)
	table.Header("ID", "Topic", "Mode", "Status", "Results", "Quick wins", "Created")
	for _, r := range runs {
		if err := table.Append([]string{
			shortID(r.ID),
			truncate(r.Topic, 30),
			r.Mode,
			string(r.Status),
			fmt.Sprintf("%d/%d", r.ResultCount, r.MinResults),
			strconv.Itoa(r.QuickWinCount),
			formatAge(r.CreatedAt),
		}); err != nil {
			return err
		}
	}
	return table.Render()
}

func runDetail(w io.Writer, d *research.Detail) error {
	r := d.Run
	fmt.Fprintf(w, "Run:         %s\n", r.ID)
	fmt.Fprintf(w, "Topic:       %s\n", r.Topic)
	fmt.Fprintf(w, "Mode:        %s\n", r.Mode)
	fmt.Fprintf(w, "Status:      %s (stage: %s)\n", r.Status, r.FinalStage)
	fmt.Fprintf(w, "Source:      %s\n", r.Provider)
	fmt.Fprintf(w, "Candidates:  %d\n", r.CandidateCount)
	fmt.Fprintf(w, "Created:     %s\n", r.CreatedAt.Format("Jan 02, 2006 15:04"))
	fmt.Fprintln(w)

	if err := rankedTable(w, research.FromRunKeywords(d.Keywords)); err != nil {
		return err
	}

	if d.Brief != nil {
		fmt.Fprintln(w)
		fmt.Fprintln(w, d.Brief.Markdown)
	}
	return nil
}

func statsTable(w io.Writer, s *database.Stats) error {
	fmt.Fprintln(w, "Keyword Research Statistics")
	fmt.Fprintln(w, strings.Repeat("-", 30))
	fmt.Fprintf(w, "Total runs:             %d\n", s.TotalRuns)
	fmt.Fprintf(w, "Complete:               %d\n", s.CompleteRuns)
	fmt.Fprintf(w, "Degraded:               %d\n", s.DegradedRuns)
	fmt.Fprintf(w, "Keywords selected:      %d\n", s.TotalKeywords)
	fmt.Fprintf(w, "Quick wins:             %d\n", s.QuickWins)
	fmt.Fprintf(w, "Briefs written:         %d\n", s.Briefs)
	if s.AvgScore > 0 {
		fmt.Fprintf(w, "Average score:          %.1f\n", s.AvgScore)
	}

	if len(s.RunsByMode) > 0 {
		modes := make([]string, 0, len(s.RunsByMode))
		for _, m := range opportunity.Modes {
			if n, ok := s.RunsByMode[string(m)]; ok {
				modes = append(modes, fmt.Sprintf("%s %d", m, n))
			}
		}
		fmt.Fprintf(w, "Runs by mode:           %s\n", strings.Join(modes, ", "))
	}

	if len(s.TopKeywords) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Top keywords:")
		for i, k := range s.TopKeywords {
			fmt.Fprintf(w, "  %d. %s (%.1f)\n", i+1, k.Keyword, k.Score)
		}
	}
	return nil
}

func exclusionsTable(w io.Writer, exclusions []database.Exclusion) error {
	if len(exclusions) == 0 {
		fmt.Fprintln(w, "No exclusions found.")
		return nil
	}

	table := tablewriter.NewWriter(w)
	table.Header("ID", "Term", "Source", "Added")
	for _, e := range exclusions {
		if err := table.Append([]string{
			shortID(e.ID),
			e.Term,
			e.Source,
			formatAge(e.CreatedAt),
		}); err != nil {
			return err
		}
	}
	return table.Render()
}

func snapshotTable(w io.Writer, s *serp.Snapshot) error {
	if len(s.Results) == 0 {
		fmt.Fprintf(w, "No results for %q.\n", s.Query)
		return nil
	}

	table := tablewriter.NewWriter(w)
	table.Header("#", "Title", "Domain")
	for _, r := range s.Results {
		if err := table.Append([]string{strconv.Itoa(r.Position), truncate(r.Title, 60), r.Domain}); err != nil {
			return err
		}
	}
	if err := table.Render(); err != nil {
		return err
	}

	if len(s.Questions) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "People also ask:")
		for _, q := range s.Questions {
			fmt.Fprintf(w, "  - %s\n", q)
		}
	}
	if s.Cached {
		fmt.Fprintf(w, "\n(cached, fetched %s)\n", formatAge(s.FetchedAt))
	}
	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return ""
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func formatAge(t time.Time) string {
	days := int(time.Since(t).Hours() / 24)
	switch {
	case days == 0:
		return "today"
	case days == 1:
		return "yesterday"
	case days < 7:
		return fmt.Sprintf("%d days ago", days)
	case days < 30:
		return fmt.Sprintf("%d weeks ago", days/7)
	default:
		return t.Format("Jan 02, 2006")
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
