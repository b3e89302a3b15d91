package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/bsead/budget-pro/internal/models"
)

var (
	colorBorder = lipgloss.Color("#575653")
	colorAccent = lipgloss.Color("#3AA99F")
	colorOrange = lipgloss.Color("#DA702C")
	colorRed    = lipgloss.Color("#D14D41")
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(colorBorder)
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	warnStyle   = lipgloss.NewStyle().Foreground(colorOrange)
	overStyle   = lipgloss.NewStyle().Foreground(colorRed)
)

// renderBalance prints the categories that have a budget or spending,
// then the project total. Amounts stay in base units.
func renderBalance(s models.BalanceSnapshot) string {
	categories := s.NeedsAttention()
	rows := make([][]string, 0, len(categories)+1)
	over := make([]bool, 0, len(categories)+1)
	for _, c := range categories {
		rows = append(rows, balanceCells(string(c.Category), c.BalanceRow))
		over = append(over, c.OverBudget)
	}
	rows = append(rows, balanceCells("total", s.Total))
	over = append(over, s.Total.OverBudget)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(mutedStyle).
		Headers("Category", "Budget", "Used", "Remaining", "Used %").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			style := cellStyle
			if col > 0 {
				style = style.Align(lipgloss.Right)
			}
			if row >= 0 && row < len(over) && over[row] {
				style = style.Foreground(colorRed)
			}
			return style
		})

	var b strings.Builder
	b.WriteString(titleStyle.Render(s.ProjectName))
	b.WriteString(mutedStyle.Render(fmt.Sprintf("  %d expenses, computed %s", s.ExpenseCount, s.ComputedAt.Format("2006-01-02 15:04:05"))))
	b.WriteString("\n")
	b.WriteString(t.String())
	b.WriteString("\n")
	switch {
	case s.Total.OverBudget:
		b.WriteString(overStyle.Render(fmt.Sprintf("Over budget by %s", formatAmount(-s.Total.Remaining))))
		b.WriteString("\n")
	case s.NearLimit:
		b.WriteString(warnStyle.Render(fmt.Sprintf("Near limit: %.1f%% of the total budget used", s.Total.PercentUsed)))
		b.WriteString("\n")
	}
	return b.String()
}

func balanceCells(label string, r models.BalanceRow) []string {
	return []string{
		label,
		formatAmount(r.Budget),
		formatAmount(r.Used),
		formatAmount(r.Remaining),
		fmt.Sprintf("%.1f%%", r.PercentUsed),
	}
}

// formatAmount groups digits in threes: 1234567 -> "1,234,567".
func formatAmount(n int64) string {
	s := strconv.FormatInt(n, 10)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	if len(s) <= 3 {
		return sign + s
	}

	var b strings.Builder
	b.WriteString(sign)
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > len(sign) {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
