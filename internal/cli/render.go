// Package cli renders budgetctl output for the terminal.
package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/indraneel316/Financial-Decision-Helper-sub000/internal/models"
)

// Theme colors
var (
	ColorBorder    = lipgloss.Color("#282726")
	ColorTextDim   = lipgloss.Color("#575653")
	ColorTextMuted = lipgloss.Color("#6F6E69")
	ColorText      = lipgloss.Color("#FFFCF0")
	ColorAccent    = lipgloss.Color("#3AA99F")
	ColorGreen     = lipgloss.Color("#879A39")
	ColorOrange    = lipgloss.Color("#DA702C")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorText).
			Align(lipgloss.Center)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorAccent)

	valueStyle = lipgloss.NewStyle().
			Foreground(ColorText)

	mutedStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)

	okStyle = lipgloss.NewStyle().
		Foreground(ColorGreen)

	warnStyle = lipgloss.NewStyle().
			Foreground(ColorOrange)

	dimStyle = lipgloss.NewStyle().
			Foreground(ColorTextDim)
)

// Table is a bordered text table. The first column is left-aligned and the
// rest are right-aligned.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
}

// RenderTitle renders a centered title bar in a bordered box.
func RenderTitle(title string) string {
	border := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Width(55).
		Align(lipgloss.Center).
		Padding(0, 1)

	return border.Render(titleStyle.Render(title))
}

// RenderTable renders t with rounded box-drawing borders.
func RenderTable(t Table) string {
	numCols := len(t.Headers)
	if numCols == 0 && len(t.Rows) > 0 {
		numCols = len(t.Rows[0])
	}
	if numCols == 0 {
		return ""
	}

	widths := make([]int, numCols)
	for i, h := range t.Headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range t.Rows {
		for i, cell := range row {
			if i < numCols && lipgloss.Width(cell) > widths[i] {
				widths[i] = lipgloss.Width(cell)
			}
		}
	}

	rule := func(left, mid, right string) string {
		var b strings.Builder
		b.WriteString(dimStyle.Render(left))
		for i, w := range widths {
			b.WriteString(dimStyle.Render(strings.Repeat("─", w+2)))
			if i < numCols-1 {
				b.WriteString(dimStyle.Render(mid))
			}
		}
		b.WriteString(dimStyle.Render(right))
		b.WriteString("\n")
		return b.String()
	}

	var b strings.Builder
	if t.Title != "" {
		b.WriteString("  ")
		b.WriteString(headerStyle.Render(t.Title))
		b.WriteString("\n")
	}

	b.WriteString(rule("╭", "┬", "╮"))
	if len(t.Headers) > 0 {
		b.WriteString(dimStyle.Render("│"))
		for i, h := range t.Headers {
			b.WriteString(headerStyle.Render(fmt.Sprintf(" %-*s ", widths[i], h)))
			b.WriteString(dimStyle.Render("│"))
		}
		b.WriteString("\n")
		b.WriteString(rule("├", "┼", "┤"))
	}

	for _, row := range t.Rows {
		b.WriteString(dimStyle.Render("│"))
		for i := 0; i < numCols; i++ {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			pad := widths[i] - lipgloss.Width(cell)
			if i == 0 {
				cell = " " + cell + strings.Repeat(" ", pad) + " "
			} else {
				cell = " " + strings.Repeat(" ", pad) + cell + " "
			}
			b.WriteString(valueStyle.Render(cell))
			b.WriteString(dimStyle.Render("│"))
		}
		b.WriteString("\n")
	}
	b.WriteString(rule("╰", "┴", "╯"))

	return b.String()
}

// RenderSnapshot renders the headline figures and per-category breakdown of
// a snapshot.
func RenderSnapshot(s models.SnapshotView) string {
	scope := "All categories"
	if s.Category != "" {
		scope = s.Category
	}

	var b strings.Builder
	b.WriteString(RenderTitle(fmt.Sprintf("ANALYTICS  %s  %s", s.UserID, scope)))
	b.WriteString("\n\n")

	b.WriteString(RenderTable(Table{
		Title:   "Overview (" + s.BaseCurrency + ")",
		Headers: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Cycles", fmt.Sprintf("%d", s.CycleCount)},
			{"Total spent", s.TotalSpentBase},
			{"Total allocated", s.TotalAllocationBase},
			{"Savings target", s.TotalSavingsTargetBase},
			{"Savings", s.TotalSavingsBase},
			{"Savings progress", s.SavingsProgress},
			{"Achievement rate", s.SavingsAchievementRate},
			{"Savings trend", s.SavingsTrend},
			{"Predicted savings", s.PredictedSavingsProbability},
			{"Transactions", fmt.Sprintf("%d", s.TransactionCount)},
			{"Median transaction", s.MedianTransactionAmount},
			{"Spending trend", s.SpendingTrend},
			{"Busiest day", s.AverageTransactionDay},
		},
	}))

	if len(s.CategorySummaries) > 0 {
		names := make([]string, 0, len(s.CategorySummaries))
		for name := range s.CategorySummaries {
			names = append(names, name)
		}
		sort.Strings(names)

		rows := make([][]string, 0, len(names))
		for _, name := range names {
			c := s.CategorySummaries[name]
			rows = append(rows, []string{
				name,
				c.TotalAllocated,
				c.TotalSpent,
				fmt.Sprintf("%d", c.TransactionCount),
				fmt.Sprintf("%d", c.LargeTransactionCount),
				c.SpendingPattern,
			})
		}
		b.WriteString("\n")
		b.WriteString(RenderTable(Table{
			Title:   "Categories",
			Headers: []string{"Category", "Allocated", "Spent", "Txns", "Large", "Pattern"},
			Rows:    rows,
		}))
	}

	for _, w := range s.Warnings {
		b.WriteString(warnStyle.Render("  ! " + w))
		b.WriteString("\n")
	}

	if s.Narrative != "" {
		b.WriteString("\n")
		label := "Narrative"
		if s.NarrativeStale {
			label += " (stale)"
		}
		b.WriteString("  " + headerStyle.Render(label) + "\n")
		b.WriteString(mutedStyle.Render("  "+s.Narrative) + "\n")
	}

	b.WriteString("\n  " + dimStyle.Render("Updated "+s.LastUpdated.Format("2006-01-02 15:04 MST")) + "\n")
	return b.String()
}

// RenderStatus renders a one-line success or failure message.
func RenderStatus(ok bool, msg string) string {
	if ok {
		return okStyle.Render("  ✓ ") + valueStyle.Render(msg)
	}
	return warnStyle.Render("  ✗ ") + valueStyle.Render(msg)
}
