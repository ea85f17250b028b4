package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/digicoders-git/ksadmin/internal/auth"
	"github.com/digicoders-git/ksadmin/internal/browser"
	"github.com/digicoders-git/ksadmin/internal/router"
	"github.com/digicoders-git/ksadmin/pkg/domain"
)

// AuthChangedMsg tells the App that the auth manager changed state outside
// of Update, e.g. a request was rejected with 401 and the session was dropped.
type AuthChangedMsg struct{}

// sessionCheckedMsg is sent once the persisted session has been loaded.
type sessionCheckedMsg struct{}

const sidebarWidth = 22

// Options configures an App.
type Options struct {
	API   API
	Auth  *auth.Manager
	Guard router.Guard
	// InitialPath is the first location; "" means the landing page.
	InitialPath string
	// WebURL is the browser admin, linked from the help overlay.
	WebURL string
	// Open defaults to browser.Open.
	Open browser.Opener
	// Copy defaults to the system clipboard.
	Copy func(string) error
	// Now defaults to time.Now.
	Now func() time.Time
}

// App is the root Bubbletea model. It mounts exactly one of the loading
// view, the login form, or the authenticated shell.
type App struct {
	api  API
	auth *auth.Manager
	nav  *router.Navigator

	decision router.Decision
	identity *domain.Identity

	spinner  spinner.Model
	login    loginModel
	page     page
	pagePath string

	sidebar    bool
	helpOpen   bool
	helpCursor int
	helpItems  []helpItem
	gotoOpen   bool
	gotoInput  textinput.Model
	status     string

	open browser.Opener
	copy func(string) error
	now  func() time.Time

	width  int
	height int
}

// NewApp creates a new TUI application.
func NewApp(opts Options) App {
	initial := opts.InitialPath
	if initial == "" {
		initial = router.LandingPath
	}
	if opts.Open == nil {
		opts.Open = browser.Open
	}
	if opts.Copy == nil {
		opts.Copy = clipboard.WriteAll
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = accentStyle

	gi := textinput.New()
	gi.Prompt = ":"
	gi.Placeholder = "/orders"
	gi.CharLimit = 128
	gi.PromptStyle = inputPromptStyle
	gi.PlaceholderStyle = inputPlaceholderStyle

	var items []helpItem
	if web := strings.TrimRight(opts.WebURL, "/"); web != "" {
		items = append(items, helpItem{label: "Web admin", desc: web, url: web})
		for _, e := range opts.Guard.Registry().Visible() {
			items = append(items, helpItem{label: e.Name, desc: web + e.Path, url: web + e.Path})
		}
	}

	a := App{
		api:       opts.API,
		auth:      opts.Auth,
		nav:       router.NewNavigator(opts.Guard, initial),
		spinner:   sp,
		login:     newLoginModel(),
		sidebar:   true,
		helpItems: items,
		gotoInput: gi,
		open:      opts.Open,
		copy:      opts.Copy,
		now:       opts.Now,
	}
	a.decision = router.Decision{Mount: router.MountLoading, Path: a.nav.Current()}
	return a
}

// Location returns the current path.
func (a App) Location() string {
	return a.nav.Current()
}

// Mounted returns what is currently shown.
func (a App) Mounted() router.Mount {
	return a.decision.Mount
}

func (a App) Init() tea.Cmd {
	return tea.Batch(a.spinner.Tick, a.checkSession())
}

func (a App) checkSession() tea.Cmd {
	mgr := a.auth
	return func() tea.Msg {
		mgr.Init(context.Background())
		return sessionCheckedMsg{}
	}
}

// Update handles msg and then re-resolves the location against the current
// auth state, so a transition takes effect in the same frame.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := a.update(msg)
	next, syncCmd := next.sync()
	return next, tea.Batch(cmd, syncCmd)
}

func (a App) update(msg tea.Msg) (App, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.gotoInput.Width = max(10, msg.Width-4)
		return a, nil

	case sessionCheckedMsg, AuthChangedMsg:
		return a, nil

	case spinner.TickMsg:
		if a.decision.Mount != router.MountLoading {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case loginResultMsg:
		var cmd tea.Cmd
		a.login, cmd = a.login.Update(msg, a.api, a.auth)
		return a, cmd

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		switch a.decision.Mount {
		case router.MountLoading:
			if msg.String() == "q" {
				return a, tea.Quit
			}
			return a, nil
		case router.MountLogin:
			var cmd tea.Cmd
			a.login, cmd = a.login.Update(msg, a.api, a.auth)
			return a, cmd
		default:
			return a.shellKey(msg)
		}
	}

	if a.page != nil {
		var cmd tea.Cmd
		a.page, cmd = a.page.Update(msg)
		return a, cmd
	}
	return a, nil
}

func (a App) authState() router.AuthState {
	snap := a.auth.Snapshot()
	return router.AuthState{Loading: snap.Loading, LoggedIn: snap.LoggedIn}
}

func (a App) shellKey(msg tea.KeyMsg) (App, tea.Cmd) {
	// Help overlay captures all keys when open
	if a.helpOpen {
		switch msg.String() {
		case "?", "h", "esc":
			a.helpOpen = false
		case "q":
			return a, tea.Quit
		case "j", "down":
			if a.helpCursor < len(a.helpItems)-1 {
				a.helpCursor++
			}
		case "k", "up":
			if a.helpCursor > 0 {
				a.helpCursor--
			}
		case "enter":
			if a.helpCursor < len(a.helpItems) {
				if err := a.open(a.helpItems[a.helpCursor].url); err != nil {
					a.status = err.Error()
				}
			}
		}
		return a, nil
	}

	if a.gotoOpen {
		switch msg.String() {
		case "enter":
			path := strings.TrimSpace(a.gotoInput.Value())
			a.gotoOpen = false
			a.gotoInput.Blur()
			a.gotoInput.SetValue("")
			if path != "" {
				a.nav.Navigate(a.authState(), path)
			}
		case "esc":
			a.gotoOpen = false
			a.gotoInput.Blur()
			a.gotoInput.SetValue("")
		default:
			var cmd tea.Cmd
			a.gotoInput, cmd = a.gotoInput.Update(msg)
			return a, cmd
		}
		return a, nil
	}

	if a.page != nil && a.page.editing() {
		var cmd tea.Cmd
		a.page, cmd = a.page.Update(msg)
		return a, cmd
	}

	a.status = ""
	key := msg.String()
	switch key {
	case "q":
		return a, tea.Quit
	case "?":
		a.helpOpen = true
		a.helpCursor = 0
		return a, nil
	case ":":
		a.gotoOpen = true
		return a, a.gotoInput.Focus()
	case "b":
		a.nav.Back(a.authState())
		return a, nil
	case "tab":
		a.sidebar = !a.sidebar
		return a, nil
	case "o":
		mgr := a.auth
		a.nav.Logout(func() { mgr.Logout(context.Background()) })
		return a, nil
	}

	if i, ok := entryIndex(key); ok {
		visible := a.nav.Guard().Registry().Visible()
		if i < len(visible) {
			a.nav.Navigate(a.authState(), visible[i].Path)
		}
		return a, nil
	}

	if a.page != nil {
		var cmd tea.Cmd
		a.page, cmd = a.page.Update(msg)
		return a, cmd
	}
	return a, nil
}

// entryIndex maps the digit keys 1-9 and 0 to sidebar positions 0-9.
func entryIndex(key string) (int, bool) {
	if len(key) != 1 || key[0] < '0' || key[0] > '9' {
		return 0, false
	}
	if key[0] == '0' {
		return 9, true
	}
	return int(key[0] - '1'), true
}

// sync resolves the current location and mounts the result. Only the view
// for the resolved mount is kept; the others are dropped.
func (a App) sync() (App, tea.Cmd) {
	snap := a.auth.Snapshot()
	prev := a.decision
	d := a.nav.Sync(router.AuthState{Loading: snap.Loading, LoggedIn: snap.LoggedIn})
	a.decision = d
	a.identity = snap.Identity

	switch d.Mount {
	case router.MountLoading:
		a.page, a.pagePath = nil, ""
	case router.MountLogin:
		a.page, a.pagePath = nil, ""
		a.helpOpen, a.gotoOpen = false, false
		if prev.Mount != router.MountLogin {
			a.login = newLoginModel()
		}
	case router.MountShell:
		if a.page == nil || a.pagePath != d.Path {
			a.page = newPage(d.Entry, pageEnv{api: a.api, identity: snap.Identity, copy: a.copy, now: a.now})
			a.pagePath = d.Path
			return a, a.page.Init()
		}
	}
	return a, nil
}

func (a App) View() string {
	switch a.decision.Mount {
	case router.MountLoading:
		return a.loadingView()
	case router.MountLogin:
		body := strings.TrimRight(truncateToHeight(a.login.View(a.width), a.height-1), "\n")
		return body + "\n" + a.login.helpKeys()
	default:
		return a.shellView()
	}
}

func (a App) loadingView() string {
	line := a.spinner.View() + " " + dimStyle.Render("checking session...")
	pad := max(0, (a.width-lipgloss.Width(line))/2)
	top := max(0, a.height/2-1)
	return strings.Repeat("\n", top) + strings.Repeat(" ", pad) + line
}

func (a App) shellView() string {
	// Chrome: header(2) + help(1), plus the goto bar when open.
	chrome := 3
	if a.gotoOpen {
		chrome++
	}
	bodyHeight := max(1, a.height-chrome)

	header := a.headerView()

	var body, help string
	switch {
	case a.helpOpen:
		body = helpView(a.helpItems, a.helpCursor)
		help = helpBar("j/k", "nav", "enter", "open", "esc", "close")
		if a.status != "" {
			help += "  " + errorStyle.Render(a.status)
		}
	default:
		contentWidth := a.width
		if a.sidebar {
			contentWidth = max(20, a.width-sidebarWidth)
		}
		content := ""
		if a.page != nil {
			content = a.page.View(contentWidth, bodyHeight)
		}
		content = strings.TrimRight(truncateToHeight(content, bodyHeight), "\n")
		if a.sidebar {
			body = lipgloss.JoinHorizontal(lipgloss.Top, a.sidebarView(bodyHeight), content)
		} else {
			body = content
		}
		help = helpBar("1-0", "sections", ":", "goto", "b", "back", "tab", "sidebar", "o", "logout", "?", "help", "q", "quit")
		if a.page != nil {
			if keys := a.page.helpKeys(); keys != "" {
				if a.page.editing() {
					help = " " + keys
				} else {
					help += "  " + keys
				}
			}
		}
	}

	body = strings.TrimRight(truncateToHeight(body, bodyHeight), "\n")
	out := header + "\n" + body + "\n"
	if a.gotoOpen {
		out += " " + a.gotoInput.View() + "\n"
	}
	return out + help
}

func (a App) headerView() string {
	left := " " + titleStyle.Render("KS MEDIAL") + " " + dimStyle.Render("admin")
	if a.decision.Entry.Name != "" {
		left += metaStyle.Render(" / ") + normalStyle.Render(a.decision.Entry.Name)
	}

	right := ""
	if a.identity != nil {
		right = selectedStyle.Render(a.identity.Name())
		if label := auth.ExpiryLabel(a.identity.Token, a.now()); label != "" {
			style := metaStyle
			if label == "expired" {
				style = warnStyle
			}
			right += " " + style.Render(label)
		}
		right += " "
	}

	gap := max(1, a.width-lipgloss.Width(left)-lipgloss.Width(right))
	return left + strings.Repeat(" ", gap) + right + "\n" + metaStyle.Render(strings.Repeat("─", max(0, a.width)))
}

func (a App) sidebarView(height int) string {
	var b strings.Builder
	for i, e := range a.nav.Guard().Registry().Visible() {
		key := " "
		if i < 10 {
			key = fmt.Sprintf("%d", (i+1)%10)
		}
		label := truncStr(e.Name, sidebarWidth-5)
		if e.Path == a.decision.Path {
			b.WriteString(accentStyle.Render("▸"+key) + " " + selectedStyle.Render(label) + "\n")
		} else {
			b.WriteString(" " + metaStyle.Render(key) + " " + dimStyle.Render(label) + "\n")
		}
	}
	return lipgloss.NewStyle().Width(sidebarWidth).Height(height).Render(strings.TrimRight(b.String(), "\n"))
}
