// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package view

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/pdiddy/literature-review/pkg/types"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	badgeStyle  = lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("62"))
	methodStyle = badgeStyle.Background(lipgloss.Color("99"))
)

// RenderTable draws the tabular view with a fixed header row. An empty table
// renders just the header.
func RenderTable(r *types.CanonicalResult, width int) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(Columns...).
		Rows(Table(r)...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	if width > 0 {
		t = t.Width(width)
	}
	return t.Render()
}

// RenderBadges draws the summary badges on one line, or "" when there are none.
func RenderBadges(r *types.CanonicalResult) string {
	b := SummaryBadges(r)
	if b.Empty() {
		return ""
	}
	var parts []string
	for _, theme := range b.Themes {
		parts = append(parts, badgeStyle.Render(theme))
	}
	for _, m := range b.Methodologies {
		parts = append(parts, methodStyle.Render(m))
	}
	return strings.Join(parts, " ")
}
