package tui

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/digicoders-git/ksadmin/internal/router"
	"github.com/digicoders-git/ksadmin/pkg/domain"
)

// maxColumns caps the table width; the detail overlay shows every field.
const maxColumns = 5

// preferredColumns come first when present, in this order.
var preferredColumns = []string{
	"name", "title", "email", "phone", "status", "price", "amount", "total", "createdAt",
}

// skippedColumns never appear as table columns.
var skippedColumns = map[string]bool{"_id": true, "id": true, "__v": true, "password": true}

type recordsLoadedMsg struct {
	path    string
	records []domain.Record
	err     error
}

type copiedMsg struct {
	path string
	id   string
	err  error
}

type resourcePage struct {
	env      pageEnv
	entry    router.Entry
	records  []domain.Record
	columns  []string
	visible  []int // indices into records after filter and sort
	cursor   int
	offset   int
	sortCol  int // -1 = server order
	sortDesc bool
	filter   textinput.Model
	filterOn bool
	detail   bool
	loading  bool
	err      string
	status   string
}

func newResourcePage(e router.Entry, env pageEnv) *resourcePage {
	fi := textinput.New()
	fi.Prompt = "/"
	fi.Placeholder = "filter"
	fi.CharLimit = 120
	fi.PromptStyle = inputPromptStyle
	fi.PlaceholderStyle = inputPlaceholderStyle
	return &resourcePage{env: env, entry: e, sortCol: -1, filter: fi, loading: true}
}

func (p *resourcePage) Init() tea.Cmd {
	return p.load()
}

func (p *resourcePage) load() tea.Cmd {
	api := p.env.api
	path := p.entry.Path
	return func() tea.Msg {
		records, err := api.List(context.Background(), endpointFor(path))
		return recordsLoadedMsg{path: path, records: records, err: err}
	}
}

func (p *resourcePage) Update(msg tea.Msg) (page, tea.Cmd) {
	switch msg := msg.(type) {
	case recordsLoadedMsg:
		if msg.path != p.entry.Path {
			return p, nil
		}
		p.loading = false
		if msg.err != nil {
			p.err = msg.err.Error()
			return p, nil
		}
		p.err = ""
		p.records = msg.records
		p.columns = columnsFor(msg.records)
		if p.sortCol >= len(p.columns) {
			p.sortCol = -1
		}
		p.apply()

	case copiedMsg:
		if msg.path != p.entry.Path {
			return p, nil
		}
		if msg.err != nil {
			p.status = "copy failed: " + msg.err.Error()
		} else {
			p.status = "copied " + msg.id
		}

	case tea.KeyMsg:
		return p.handleKey(msg)
	}
	return p, nil
}

func (p *resourcePage) handleKey(msg tea.KeyMsg) (page, tea.Cmd) {
	if p.filterOn {
		switch msg.String() {
		case "enter":
			p.filterOn = false
			p.filter.Blur()
		case "esc":
			p.filterOn = false
			p.filter.Blur()
			p.filter.SetValue("")
			p.apply()
		default:
			var cmd tea.Cmd
			p.filter, cmd = p.filter.Update(msg)
			p.apply()
			return p, cmd
		}
		return p, nil
	}

	if p.detail {
		switch msg.String() {
		case "esc", "enter":
			p.detail = false
		case "c":
			return p, p.copySelected()
		}
		return p, nil
	}

	p.status = ""
	switch msg.String() {
	case "j", "down":
		if p.cursor < len(p.visible)-1 {
			p.cursor++
		}
	case "k", "up":
		if p.cursor > 0 {
			p.cursor--
		}
	case "g", "home":
		p.cursor = 0
	case "G", "end":
		p.cursor = max(0, len(p.visible)-1)
	case "/":
		p.filterOn = true
		return p, p.filter.Focus()
	case "s":
		if len(p.columns) > 0 {
			p.sortCol++
			if p.sortCol >= len(p.columns) {
				p.sortCol = -1
			}
			p.apply()
		}
	case "S":
		p.sortDesc = !p.sortDesc
		p.apply()
	case "enter":
		if _, ok := p.selected(); ok {
			p.detail = true
		}
	case "c":
		return p, p.copySelected()
	case "r":
		p.loading = true
		return p, p.load()
	}
	return p, nil
}

func (p *resourcePage) selected() (domain.Record, bool) {
	if p.cursor < 0 || p.cursor >= len(p.visible) {
		return nil, false
	}
	return p.records[p.visible[p.cursor]], true
}

func (p *resourcePage) copySelected() tea.Cmd {
	rec, ok := p.selected()
	if !ok || p.env.copy == nil {
		return nil
	}
	id := rec.ID()
	if id == "" {
		p.status = "record has no id"
		return nil
	}
	copyFn := p.env.copy
	path := p.entry.Path
	return func() tea.Msg {
		return copiedMsg{path: path, id: id, err: copyFn(id)}
	}
}

// apply recomputes visible rows from the filter and sort settings.
func (p *resourcePage) apply() {
	q := strings.ToLower(strings.TrimSpace(p.filter.Value()))
	p.visible = p.visible[:0]
	for i, r := range p.records {
		if q == "" || matches(r, q) {
			p.visible = append(p.visible, i)
		}
	}

	if p.sortCol >= 0 && p.sortCol < len(p.columns) {
		col := p.columns[p.sortCol]
		sort.SliceStable(p.visible, func(i, j int) bool {
			c := compareValues(p.records[p.visible[i]].Field(col), p.records[p.visible[j]].Field(col))
			if p.sortDesc {
				return c > 0
			}
			return c < 0
		})
	} else if p.sortDesc {
		for i, j := 0, len(p.visible)-1; i < j; i, j = i+1, j-1 {
			p.visible[i], p.visible[j] = p.visible[j], p.visible[i]
		}
	}

	if p.cursor >= len(p.visible) {
		p.cursor = max(0, len(p.visible)-1)
	}
}

// matches reports whether any top-level value contains q (lowercased).
func matches(r domain.Record, q string) bool {
	for k := range r {
		if strings.Contains(strings.ToLower(r.Field(k)), q) {
			return true
		}
	}
	return false
}

// columnsFor picks up to maxColumns scalar fields: preferred names first,
// then the rest alphabetically.
func columnsFor(records []domain.Record) []string {
	seen := make(map[string]bool)
	for _, r := range records {
		for k, v := range r {
			if skippedColumns[k] {
				continue
			}
			switch v.(type) {
			case map[string]any, []any:
				continue
			}
			seen[k] = true
		}
	}

	cols := make([]string, 0, maxColumns)
	for _, k := range preferredColumns {
		if seen[k] && len(cols) < maxColumns {
			cols = append(cols, k)
			delete(seen, k)
		}
	}
	rest := make([]string, 0, len(seen))
	for k := range seen {
		rest = append(rest, k)
	}
	sort.Strings(rest)
	for _, k := range rest {
		if len(cols) >= maxColumns {
			break
		}
		cols = append(cols, k)
	}
	return cols
}

func (p *resourcePage) View(width, height int) string {
	if p.detail {
		if rec, ok := p.selected(); ok {
			return detailView(p.entry.Name, rec, width)
		}
	}

	var b strings.Builder

	header := " " + titleStyle.Render(p.entry.Name)
	if len(p.records) > 0 {
		header += "  " + metaStyle.Render(fmt.Sprintf("%d of %d", len(p.visible), len(p.records)))
	}
	if p.sortCol >= 0 && p.sortCol < len(p.columns) {
		dir := "asc"
		if p.sortDesc {
			dir = "desc"
		}
		header += "  " + dimStyle.Render("sort: "+humanize(p.columns[p.sortCol])+" "+dir)
	}
	b.WriteString(header + "\n")

	if p.filterOn || p.filter.Value() != "" {
		b.WriteString(" " + p.filter.View() + "\n")
	}

	switch {
	case p.loading && len(p.records) == 0:
		b.WriteString(" " + dimStyle.Render("loading...") + "\n")
		return b.String()
	case p.err != "":
		b.WriteString(" " + errorStyle.Render("error: "+p.err) + "\n")
		return b.String()
	case len(p.records) == 0:
		b.WriteString("\n " + dimStyle.Render("nothing here yet") + "\n")
		return b.String()
	case len(p.visible) == 0:
		b.WriteString("\n " + dimStyle.Render("no matches") + "\n")
		return b.String()
	}

	colWidth := 16
	if n := len(p.columns); n > 0 {
		colWidth = max(8, (width-4-26)/n)
	}

	var hdr strings.Builder
	hdr.WriteString("   " + padRight(sectionHeaderStyle.Render("ID"), 26))
	for _, c := range p.columns {
		hdr.WriteString(padRight(sectionHeaderStyle.Render(truncStr(humanize(c), colWidth-1)), colWidth))
	}
	b.WriteString(hdr.String() + "\n")

	// Keep the cursor on screen: header, filter, column header, status.
	rows := max(1, height-4)
	if p.cursor < p.offset {
		p.offset = p.cursor
	}
	if p.cursor >= p.offset+rows {
		p.offset = p.cursor - rows + 1
	}
	end := min(len(p.visible), p.offset+rows)

	for i := p.offset; i < end; i++ {
		rec := p.records[p.visible[i]]
		active := i == p.cursor

		cursor := " "
		if active {
			cursor = accentStyle.Render("▸")
		}
		var row strings.Builder
		row.WriteString(" " + cursor + " " + padRight(metaStyle.Render(truncStr(rec.ID(), 25)), 26))
		for _, c := range p.columns {
			v := truncStr(singleLine(rec.Field(c)), colWidth-1)
			style := normalStyle
			if c == "status" {
				style = StatusStyle(v)
			}
			if active {
				style = style.Bold(true)
			}
			row.WriteString(padRight(style.Render(v), colWidth))
		}
		line := row.String()
		if active {
			line = selectedRowBg.Render(line)
		}
		b.WriteString(line + "\n")
	}

	if p.status != "" {
		b.WriteString("\n " + okStyle.Render(p.status) + "\n")
	}
	return b.String()
}

func (p *resourcePage) editing() bool { return p.filterOn || p.detail }

func (p *resourcePage) helpKeys() string {
	if p.filterOn {
		return helpEntry("enter", "apply") + "  " + helpEntry("esc", "clear")
	}
	if p.detail {
		return helpEntry("c", "copy id") + "  " + helpEntry("esc", "close")
	}
	return helpEntry("j/k", "nav") + "  " + helpEntry("/", "filter") + "  " + helpEntry("s/S", "sort") + "  " +
		helpEntry("enter", "details") + "  " + helpEntry("c", "copy id") + "  " + helpEntry("r", "refresh")
}
