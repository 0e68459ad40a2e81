package brief

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// Markdown renders the brief as a Markdown document
func Markdown(b Brief) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# Content brief: %s\n\n", b.PrimaryKeyword)

	sb.WriteString("| | |\n|---|---|\n")
	if b.Topic != "" {
		fmt.Fprintf(&sb, "| Topic | %s |\n", escapeCell(b.Topic))
	}
	fmt.Fprintf(&sb, "| Primary keyword | %s |\n", escapeCell(b.PrimaryKeyword))
	fmt.Fprintf(&sb, "| Search intent | %s |\n", b.Intent)
	if b.Level != "" {
		fmt.Fprintf(&sb, "| Opportunity | %.1f (%s) |\n", b.Score, b.Level)
	}
	fmt.Fprintf(&sb, "| Target length | ~%d words |\n\n", b.TargetWordCount)

	if len(b.TitleIdeas) > 0 {
		sb.WriteString("## Title ideas\n\n")
		for _, t := range b.TitleIdeas {
			fmt.Fprintf(&sb, "- %s\n", t)
		}
		sb.WriteString("\n")
	}

	if len(b.Outline) > 0 {
		sb.WriteString("## Outline\n\n")
		for i, s := range b.Outline {
			fmt.Fprintf(&sb, "%d. **%s**\n", i+1, s.Heading)
			for _, p := range s.Points {
				fmt.Fprintf(&sb, "   - %s\n", p)
			}
		}
		sb.WriteString("\n")
	}

	if len(b.FAQ) > 0 {
		sb.WriteString("## Questions to answer\n\n")
		for _, q := range b.FAQ {
			fmt.Fprintf(&sb, "- %s\n", q)
		}
		sb.WriteString("\n")
	}

	if len(b.SecondaryKeywords) > 0 {
		sb.WriteString("## Secondary keywords\n\n")
		for _, k := range b.SecondaryKeywords {
			fmt.Fprintf(&sb, "- %s\n", k)
		}
		sb.WriteString("\n")
	}

	if len(b.Competitors) > 0 {
		sb.WriteString("## Pages to beat\n\n")
		sb.WriteString("| # | Title | Domain |\n|---|---|---|\n")
		for _, c := range b.Competitors {
			fmt.Fprintf(&sb, "| %d | [%s](%s) | %s |\n", c.Position, escapeCell(c.Title), c.URL, c.Domain)
		}
		sb.WriteString("\n")
	}

	if !b.GeneratedAt.IsZero() {
		fmt.Fprintf(&sb, "_Generated %s from %s._\n", b.GeneratedAt.Format("2006-01-02 15:04 MST"), b.Source)
	}

	return sb.String()
}

// HTML renders the brief as an HTML fragment
func HTML(b Brief) (string, error) {
	return MarkdownToHTML(Markdown(b))
}

// MarkdownToHTML converts stored Markdown to an HTML fragment
func MarkdownToHTML(md string) (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(md), &buf); err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return buf.String(), nil
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
