// Package termui renders the ledger dashboard for the terminal.
package termui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"financeiro/internal/analytics"
	"financeiro/internal/core"
)

const barCells = 24

// Options tune the terminal dashboard.
type Options struct {
	// ShowTable appends the raw ledger rows.
	ShowTable bool
}

// Theme holds the styles used by the dashboard.
type Theme struct {
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Label    lipgloss.Style
	Value    lipgloss.Style
	Income   lipgloss.Style
	Expense  lipgloss.Style
	Muted    lipgloss.Style
	Box      lipgloss.Style
}

// NewTheme builds the theme against r so colour output follows the target
// writer's capabilities.
func NewTheme(r *lipgloss.Renderer) Theme {
	border := lipgloss.Color("#404040")
	return Theme{
		Title:    r.NewStyle().Bold(true).Foreground(lipgloss.Color("#fafafa")).MarginBottom(1),
		Subtitle: r.NewStyle().Bold(true).Foreground(lipgloss.Color("#a78bfa")),
		Label:    r.NewStyle().Foreground(lipgloss.Color("#a3a3a3")),
		Value:    r.NewStyle().Bold(true),
		Income:   r.NewStyle().Foreground(lipgloss.Color("#10b981")),
		Expense:  r.NewStyle().Foreground(lipgloss.Color("#ef4444")),
		Muted:    r.NewStyle().Foreground(lipgloss.Color("#737373")).Italic(true),
		Box:      r.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(border).Padding(0, 1),
	}
}

// Render writes the dashboard for sum to w.
func Render(w io.Writer, sum analytics.Summary, records []core.Transaction, opts Options) error {
	theme := NewTheme(lipgloss.NewRenderer(w))
	_, err := io.WriteString(w, View(theme, sum, records, opts)+"\n")
	return err
}

// View returns the dashboard as a string.
func View(theme Theme, sum analytics.Summary, records []core.Transaction, opts Options) string {
	sections := []string{
		theme.Title.Render("Personal Finance"),
		renderMetrics(theme, sum),
		renderCategories(theme, sum.ByCategory),
		renderMonthly(theme, sum.Monthly),
		renderRecommendation(theme, sum.Recommendation),
	}
	if opts.ShowTable {
		sections = append(sections, renderTable(theme, records))
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func renderMetrics(theme Theme, sum analytics.Summary) string {
	metric := func(label, value string, style lipgloss.Style) string {
		return theme.Box.Render(lipgloss.JoinVertical(lipgloss.Left,
			theme.Label.Render(label),
			style.Render(value),
		))
	}
	balanceStyle := theme.Value
	if sum.Balance.Cents < 0 {
		balanceStyle = theme.Expense.Bold(true)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top,
		metric("Total Income", sum.TotalIncome.String(), theme.Value),
		metric("Total Expenses", sum.TotalExpense.String(), theme.Value),
		metric("Current Balance", sum.Balance.String(), balanceStyle),
	)
}

func renderCategories(theme Theme, cats []core.CategoryAmount) string {
	var b strings.Builder
	b.WriteString(theme.Subtitle.Render("Expenses by Category"))
	b.WriteString("\n")
	if len(cats) == 0 {
		b.WriteString(theme.Muted.Render("No expense data yet."))
		return b.String()
	}

	var max int64
	for _, c := range cats {
		if c.Amount.Cents > max {
			max = c.Amount.Cents
		}
	}
	for i, c := range cats {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%-10s %s %s",
			string(c.Category),
			theme.Expense.Render(bar(c.Amount.Cents, max)),
			c.Amount.String())
	}
	return b.String()
}

func renderMonthly(theme Theme, months []core.MonthBalance) string {
	var b strings.Builder
	b.WriteString(theme.Subtitle.Render("Monthly Balance"))
	b.WriteString("\n")
	if len(months) == 0 {
		b.WriteString(theme.Muted.Render("Add transactions to see the monthly balance."))
		return b.String()
	}

	fmt.Fprintf(&b, "%s", theme.Label.Render(fmt.Sprintf("%-8s %15s %15s %15s", "Month", "Income", "Expenses", "Balance")))
	for _, m := range months {
		balance := fmt.Sprintf("%15s", m.Balance.String())
		if m.Balance.Cents < 0 {
			balance = theme.Expense.Render(balance)
		} else {
			balance = theme.Income.Render(balance)
		}
		fmt.Fprintf(&b, "\n%-8s %15s %15s %s", m.Key, m.Income.String(), m.Expense.String(), balance)
	}
	return b.String()
}

func renderRecommendation(theme Theme, rec core.Recommendation) string {
	return lipgloss.JoinVertical(lipgloss.Left,
		theme.Subtitle.Render("Recommendations"),
		rec.String(),
		theme.Muted.Render("(Basic model - customise it with more data!)"),
	)
}

func renderTable(theme Theme, records []core.Transaction) string {
	var b strings.Builder
	b.WriteString(theme.Subtitle.Render(fmt.Sprintf("Ledger (%d)", len(records))))
	if len(records) == 0 {
		b.WriteString("\n")
		b.WriteString(theme.Muted.Render("The ledger is empty."))
		return b.String()
	}
	b.WriteString("\n")
	b.WriteString(theme.Label.Render(fmt.Sprintf("%-10s  %-28s %14s  %-9s  %s", "Date", "Description", "Amount", "Category", "Kind")))
	for _, t := range records {
		fmt.Fprintf(&b, "\n%-10s  %-28s %14s  %-9s  %s",
			t.Date.String(), truncate(t.Description, 28), t.Amount.String(), t.Category, t.Kind)
	}
	return b.String()
}

func bar(v, max int64) string {
	if max <= 0 {
		return strings.Repeat(" ", barCells)
	}
	n := int((v*barCells + max/2) / max)
	if n == 0 && v > 0 {
		n = 1
	}
	return strings.Repeat("█", n) + strings.Repeat(" ", barCells-n)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
