package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/digicoders-git/ksadmin/internal/router"
	"github.com/digicoders-git/ksadmin/pkg/domain"
)

// API is the backend surface the console uses. *client.Client satisfies it.
type API interface {
	Login(ctx context.Context, identifier, secret string) (*domain.LoginResponse, error)
	List(ctx context.Context, endpoint string) ([]domain.Record, error)
	Summary(ctx context.Context) (map[string]any, error)
}

// page is the content area of the authenticated shell.
type page interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (page, tea.Cmd)
	View(width, height int) string
	// editing reports whether the page is capturing keys (text input or an
	// overlay), in which case shell keys are not interpreted.
	editing() bool
	helpKeys() string
}

// pageEnv is what pages need from the shell.
type pageEnv struct {
	api      API
	identity *domain.Identity
	copy     func(string) error
	now      func() time.Time
}

// endpointFor maps a route path to its list endpoint.
func endpointFor(path string) string {
	return "/api" + path
}

func newPage(e router.Entry, env pageEnv) page {
	switch e.View {
	case router.ViewDashboard:
		return newDashboardPage(env)
	case router.ViewProfile:
		return newProfilePage(env)
	default:
		return newResourcePage(e, env)
	}
}
