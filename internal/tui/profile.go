package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/digicoders-git/ksadmin/internal/auth"
)

type profilePage struct {
	env pageEnv
}

func newProfilePage(env pageEnv) *profilePage {
	return &profilePage{env: env}
}

func (p *profilePage) Init() tea.Cmd { return nil }

func (p *profilePage) Update(tea.Msg) (page, tea.Cmd) { return p, nil }

func (p *profilePage) View(int, int) string {
	id := p.env.identity
	if id == nil {
		return " " + dimStyle.Render("no identity") + "\n"
	}

	var b strings.Builder
	row := func(label, value string) {
		if value == "" {
			value = metaStyle.Render("-")
		}
		b.WriteString(" " + dimStyle.Render(padRight(label, 14)) + normalStyle.Render(value) + "\n")
	}
	b.WriteString(" " + sectionHeaderStyle.Render("── PROFILE ──") + "\n\n")
	row("Name", id.DisplayName)
	row("Identifier", id.Identifier)
	row("Subject ID", id.SubjectID)

	session := "opaque token"
	if label := auth.ExpiryLabel(id.Token, p.env.now()); label != "" {
		session = label
	}
	row("Session", session)
	return b.String()
}

func (p *profilePage) editing() bool { return false }

func (p *profilePage) helpKeys() string { return "" }
