package tui

import (
	"context"
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

type summaryLoadedMsg struct {
	counters map[string]any
	err      error
}

type dashboardPage struct {
	env      pageEnv
	counters map[string]any
	loading  bool
	err      string
}

func newDashboardPage(env pageEnv) *dashboardPage {
	return &dashboardPage{env: env, loading: true}
}

func (p *dashboardPage) Init() tea.Cmd {
	return p.load()
}

func (p *dashboardPage) load() tea.Cmd {
	api := p.env.api
	return func() tea.Msg {
		counters, err := api.Summary(context.Background())
		return summaryLoadedMsg{counters: counters, err: err}
	}
}

func (p *dashboardPage) Update(msg tea.Msg) (page, tea.Cmd) {
	switch msg := msg.(type) {
	case summaryLoadedMsg:
		p.loading = false
		if msg.err != nil {
			p.err = msg.err.Error()
			return p, nil
		}
		p.err = ""
		p.counters = msg.counters
	case tea.KeyMsg:
		if msg.String() == "r" {
			p.loading = true
			return p, p.load()
		}
	}
	return p, nil
}

func (p *dashboardPage) View(width, _ int) string {
	var b strings.Builder

	name := p.env.identity.Name()
	if name != "" {
		b.WriteString(" " + dimStyle.Render("Welcome back, ") + selectedStyle.Render(name) + "\n\n")
	}

	if p.loading && p.counters == nil {
		b.WriteString(" " + dimStyle.Render("loading...") + "\n")
		return b.String()
	}
	if p.err != "" {
		b.WriteString(" " + errorStyle.Render("error: "+p.err) + "\n")
		return b.String()
	}
	if len(p.counters) == 0 {
		b.WriteString(" " + dimStyle.Render("no summary available") + "\n")
		return b.String()
	}

	keys := make([]string, 0, len(p.counters))
	for k := range p.counters {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	// Cards laid out in as many columns as fit.
	const cardWidth = 22
	cols := max(1, (width-2)/cardWidth)
	for i, k := range keys {
		cell := counterStyle.Render(formatCounter(p.counters[k])) + " " + dimStyle.Render(humanize(k))
		if i%cols == 0 {
			b.WriteString(" ")
		}
		b.WriteString(padRight(cell, cardWidth))
		if i%cols == cols-1 || i == len(keys)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// formatCounter renders a summary value; whole numbers drop the decimal part.
func formatCounter(v any) string {
	switch v := v.(type) {
	case float64:
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v))
		}
		return fmt.Sprintf("%.2f", v)
	case nil:
		return "-"
	default:
		return fmt.Sprint(v)
	}
}

func (p *dashboardPage) editing() bool { return false }

func (p *dashboardPage) helpKeys() string {
	return helpEntry("r", "refresh")
}
