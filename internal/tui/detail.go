package tui

import (
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/digicoders-git/ksadmin/pkg/domain"
)

// detailView renders every field of rec in a bordered card.
func detailView(section string, rec domain.Record, width int) string {
	cardWidth := min(72, width-4)
	if cardWidth < 30 {
		cardWidth = 30
	}
	border := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor).
		Background(surfaceColor).
		Padding(1, 2).
		Width(cardWidth)

	keys := make([]string, 0, len(rec))
	for k := range rec {
		if k != "_id" && k != "id" && k != "__v" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	labelWidth := 4
	for _, k := range keys {
		labelWidth = max(labelWidth, len(humanize(k))+2)
	}
	labelWidth = min(labelWidth, 20)
	valueWidth := max(10, cardWidth-4-labelWidth)

	var sb strings.Builder
	sb.WriteString(dimStyle.Render(section) + "  " + selectedStyle.Render(rec.ID()) + "\n")
	sb.WriteString(metaStyle.Render("---") + "\n")
	for _, k := range keys {
		v := truncStr(singleLine(rec.Field(k)), valueWidth)
		style := normalStyle
		if k == "status" {
			style = StatusStyle(v)
		}
		sb.WriteString(dimStyle.Render(padRight(truncStr(humanize(k), labelWidth-1), labelWidth)) + style.Render(v) + "\n")
	}
	sb.WriteString("\n" + helpKeyStyle.Render("c") + " " + helpLabelStyle.Render("copy id"))
	sb.WriteString("  " + helpKeyStyle.Render("esc") + " " + helpLabelStyle.Render("close"))

	return "\n" + border.Render(sb.String())
}
