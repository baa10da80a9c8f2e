package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/getlawrence/prdgate/internal/domain"
)

// RenderDecision returns the one-line decision for a single item:
//
//	Generate PRD: true (points 5 is not below 5)
func RenderDecision(d domain.Decision) string {
	return fmt.Sprintf("Generate PRD: %t (%s)", d.GeneratePRD, d.Reason)
}

// Styles groups the lipgloss styles used by the text renderers
type Styles struct {
	Title   lipgloss.Style
	Header  lipgloss.Style
	PRD     lipgloss.Style
	Skip    lipgloss.Style
	Warning lipgloss.Style
	Border  lipgloss.Style
}

// NewStyles returns colored styles, or plain ones when color is false
func NewStyles(color bool) Styles {
	if !color {
		plain := lipgloss.NewStyle()
		return Styles{Title: plain, Header: plain, PRD: plain, Skip: plain, Warning: plain, Border: plain}
	}
	return Styles{
		Title:   lipgloss.NewStyle().Bold(true),
		Header:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205")),
		PRD:     lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		Skip:    lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("220")),
		Border:  lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
	}
}

// RenderReport returns a table of decisions followed by a summary
func RenderReport(report *domain.Report, styles Styles, detailed bool) string {
	if report == nil {
		return ""
	}

	var b strings.Builder
	title := "📋 PRD decisions"
	if report.Source != "" {
		title += " for " + report.Source
	}
	b.WriteString(styles.Title.Render(title))
	b.WriteString("\n\n")

	if len(report.Decisions) == 0 {
		b.WriteString("No backlog items found.\n")
	} else {
		headers := []string{"ID", "Title", "Points", "Score", "PRD", "Reason"}
		rows := make([][]string, 0, len(report.Decisions))
		for _, d := range report.Decisions {
			rows = append(rows, []string{
				d.ItemID,
				d.Title,
				formatPoints(d.Points),
				formatScore(d.Score),
				decisionLabel(d),
				d.Reason,
			})
		}

		t := table.New().
			Border(lipgloss.NormalBorder()).
			BorderStyle(styles.Border).
			Headers(headers...).
			Rows(rows...).
			StyleFunc(func(row, col int) lipgloss.Style {
				base := lipgloss.NewStyle().Padding(0, 1)
				if row == table.HeaderRow {
					return base.Inherit(styles.Header)
				}
				if col == 4 && row >= 0 && row < len(report.Decisions) {
					if report.Decisions[row].GeneratePRD {
						return base.Inherit(styles.PRD)
					}
					return base.Inherit(styles.Skip)
				}
				return base
			})
		b.WriteString(t.String())
		b.WriteString("\n")
	}

	s := report.Summary
	fmt.Fprintf(&b, "\nItems: %d  PRD: %d  Skip: %d  Incomplete: %d\n", s.Total, s.GeneratePRD, s.Skip, s.Incomplete)

	warnings := append([]string(nil), report.Warnings...)
	if detailed {
		for _, d := range report.Decisions {
			for _, w := range d.Warnings {
				warnings = append(warnings, d.ItemID+": "+w)
			}
		}
	}
	if len(warnings) > 0 {
		b.WriteString("\n")
		b.WriteString(styles.Warning.Render("⚠️  Warnings:"))
		b.WriteString("\n")
		for _, w := range warnings {
			fmt.Fprintf(&b, "  • %s\n", w)
		}
	}

	return b.String()
}

func decisionLabel(d domain.Decision) string {
	if d.GeneratePRD {
		return "yes"
	}
	return "skip"
}

func formatPoints(v *int) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *v)
}

func formatScore(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%g", *v)
}
