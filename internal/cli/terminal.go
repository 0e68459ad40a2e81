package cli

import (
	"fmt"
	"os"
	"time"

	"golang.org/x/term"

	"github.com/vijay-prabhu/seobrief/internal/opportunity"
)

// ANSI color codes
const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorBlue   = "\033[34m"
	ColorPurple = "\033[35m"
	ColorCyan   = "\033[36m"
	ColorWhite  = "\033[37m"
	ColorGray   = "\033[90m"
)

// Spinner frames for animated progress
var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Terminal provides terminal-aware output utilities
type Terminal struct {
	IsTerminal   bool
	UseColor     bool
	spinnerIndex int
}

// NewTerminal creates a new Terminal instance for progress output on stderr
func NewTerminal() *Terminal {
	isTerminal := term.IsTerminal(int(os.Stderr.Fd()))
	return &Terminal{
		IsTerminal: isTerminal,
		UseColor:   isTerminal, // Only use color in terminal
	}
}

// ClearLine clears the current line (terminal only)
func (t *Terminal) ClearLine() {
	if t.IsTerminal {
		fmt.Fprint(os.Stderr, "\r\033[K")
	}
}

// Flush ensures output is written immediately
func (t *Terminal) Flush() {
	os.Stderr.Sync()
}

// Spinner returns the next spinner frame
func (t *Terminal) Spinner() string {
	if !t.IsTerminal {
		return ""
	}
	frame := spinnerFrames[t.spinnerIndex]
	t.spinnerIndex = (t.spinnerIndex + 1) % len(spinnerFrames)
	return frame
}

// Color wraps text in ANSI color codes (terminal only)
func (t *Terminal) Color(color, text string) string {
	if !t.UseColor {
		return text
	}
	return color + text + ColorReset
}

// FormatETA formats a duration as a human-readable ETA string
func FormatETA(d time.Duration) string {
	if d <= 0 {
		return ""
	}
	d = d.Round(time.Second)
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		m := int(d.Minutes())
		s := int(d.Seconds()) % 60
		if s > 0 {
			return fmt.Sprintf("%dm%ds", m, s)
		}
		return fmt.Sprintf("%dm", m)
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	return fmt.Sprintf("%dh%dm", h, m)
}

// PhaseColor returns the appropriate color for a research phase
func PhaseColor(phase string) string {
	switch phase {
	case "generating":
		return ColorCyan
	case "filtering":
		return ColorYellow
	case "scoring":
		return ColorPurple
	case "fetching_serp":
		return ColorBlue
	case "writing_brief":
		return ColorGreen
	case "saving":
		return ColorGray
	default:
		return ColorWhite
	}
}

// LevelColor returns the color for an opportunity level
func LevelColor(level opportunity.Level) string {
	switch level {
	case opportunity.LevelExcellent:
		return ColorGreen
	case opportunity.LevelGood:
		return ColorCyan
	case opportunity.LevelModerate:
		return ColorYellow
	default:
		return ColorRed
	}
}

// TopPick summarizes the best result as one line, colored by level
func (t *Terminal) TopPick(r opportunity.RankedResult) string {
	level := t.Color(LevelColor(r.Level), string(r.Level))
	line := fmt.Sprintf("Top pick: %s (score %.1f, %s)", r.Text, r.Score, level)
	if r.IsQuickWin {
		line += " quick win"
	}
	return line
}
