package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	// Base styles, KS Medial neutral palette
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8890a0"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e4e4ec")).
			Bold(true)

	normalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#c0c4d0"))

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#505868"))

	// Help bar
	helpKeyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8890a0"))

	helpLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#505868"))

	// Brand accent (KS Medial teal)
	accentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#14b8a6"))

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#2dd4bf")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e06060"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#f0944a"))

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#4ade80"))

	counterStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e4e4ec")).
			Bold(true)

	sectionHeaderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#606878"))

	inputPromptStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#14b8a6")).
				Bold(true)

	inputPlaceholderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#343c4a"))

	// Surface colors
	borderColor  = lipgloss.Color("#1e1e2a")
	surfaceColor = lipgloss.Color("#111118")

	// Selected row background
	selectedRowBg = lipgloss.NewStyle().Background(lipgloss.Color("#1e1e2a"))

	// Order / withdrawal status colors
	statusColors = map[string]lipgloss.Color{
		"pending":    lipgloss.Color("#d4a844"),
		"processing": lipgloss.Color("#60a0e0"),
		"shipped":    lipgloss.Color("#3ecce4"),
		"delivered":  lipgloss.Color("#4ade80"),
		"completed":  lipgloss.Color("#4ade80"),
		"approved":   lipgloss.Color("#4ade80"),
		"active":     lipgloss.Color("#4ade80"),
		"paid":       lipgloss.Color("#4ade80"),
		"cancelled":  lipgloss.Color("#b45555"),
		"rejected":   lipgloss.Color("#b45555"),
		"failed":     lipgloss.Color("#b45555"),
		"inactive":   lipgloss.Color("#606878"),
	}
)

// StatusStyle returns a style colored for a record status value.
func StatusStyle(status string) lipgloss.Style {
	if c, ok := statusColors[strings.ToLower(status)]; ok {
		return lipgloss.NewStyle().Foreground(c)
	}
	return normalStyle
}

// helpEntry renders a single "key label" pair for help bars.
func helpEntry(key, label string) string {
	return helpKeyStyle.Render(key) + " " + helpLabelStyle.Render(label)
}

// helpBar joins key/label pairs into one help line.
func helpBar(pairs ...string) string {
	var parts []string
	for i := 0; i+1 < len(pairs); i += 2 {
		parts = append(parts, helpEntry(pairs[i], pairs[i+1]))
	}
	return " " + strings.Join(parts, "  ")
}

// helpItem is a selectable link in the help overlay.
type helpItem struct {
	label string
	desc  string
	url   string
}

// helpView renders the interactive help overlay with a cursor.
func helpView(items []helpItem, cursor int) string {
	cmdStyle := lipgloss.NewStyle().Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	sectionStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Bold(true)
	selStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#2dd4bf"))
	linkDescStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Italic(true)

	keys := []struct{ key, desc string }{
		{"1-9, 0", "Jump to a section"},
		{":", "Go to a path"},
		{"b", "Back"},
		{"tab", "Toggle sidebar"},
		{"o", "Log out"},
		{"/  s  S", "Filter, sort column, sort direction"},
		{"enter  c  r", "Details, copy id, refresh"},
		{"q", "Quit"},
	}
	commands := []struct{ cmd, desc string }{
		{"ksadmin", "Open the admin console"},
		{"ksadmin login", "Sign in from the shell"},
		{"ksadmin logout", "Clear the saved session"},
		{"ksadmin whoami", "Show the saved session"},
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\n  %s\n\n", titleStyle.Render("K S   M E D I A L   A D M I N"))

	fmt.Fprintf(&b, "  %s\n", sectionStyle.Render("Keys"))
	for _, k := range keys {
		fmt.Fprintf(&b, "    %s  %s\n", cmdStyle.Render(fmt.Sprintf("%-14s", k.key)), descStyle.Render(k.desc))
	}

	fmt.Fprintf(&b, "\n  %s\n", sectionStyle.Render("Commands"))
	for _, c := range commands {
		fmt.Fprintf(&b, "    %s  %s\n", cmdStyle.Render(fmt.Sprintf("%-14s", c.cmd)), descStyle.Render(c.desc))
	}

	if len(items) == 0 {
		return b.String()
	}
	fmt.Fprintf(&b, "\n  %s\n", sectionStyle.Render("Web admin (enter to open)"))
	for i, item := range items {
		label := cmdStyle.Render(fmt.Sprintf("%-14s", item.label))
		prefix := "    "
		if i == cursor {
			label = selStyle.Render(fmt.Sprintf("%-14s", item.label))
			prefix = "  > "
		}
		fmt.Fprintf(&b, "%s%s  %s\n", prefix, label, linkDescStyle.Render(item.desc))
	}
	return b.String()
}
