package router

import (
	"fmt"
	"strings"
)

// Mount is the top-level UI the shell shows.
type Mount int

const (
	MountLoading Mount = iota
	MountLogin
	MountShell
)

func (m Mount) String() string {
	switch m {
	case MountLoading:
		return "loading"
	case MountLogin:
		return "login"
	case MountShell:
		return "shell"
	}
	return "unknown"
}

// HiddenPolicy controls whether hidden entries can be addressed directly.
type HiddenPolicy int

const (
	// HiddenReachable keeps hidden entries in the path table; they are only
	// left out of the sidebar.
	HiddenReachable HiddenPolicy = iota
	// HiddenBlocked treats hidden entries as unknown paths.
	HiddenBlocked
)

// ParseHiddenPolicy maps a config value to a policy.
func ParseHiddenPolicy(s string) (HiddenPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "reachable":
		return HiddenReachable, nil
	case "blocked":
		return HiddenBlocked, nil
	}
	return 0, fmt.Errorf("router: unknown hidden route policy %q", s)
}

// AuthState is the part of the session state the guard reads.
type AuthState struct {
	Loading  bool
	LoggedIn bool
}

// Decision is the outcome of resolving a path.
type Decision struct {
	Mount Mount
	// Path is where the location must end up. When Redirect is set it differs
	// from the requested path and must replace the current history entry.
	Path     string
	Redirect bool
	// Entry is set when Mount is MountShell.
	Entry Entry
}

// Guard resolves paths against a registry.
type Guard struct {
	registry Registry
	hidden   HiddenPolicy
}

// NewGuard creates a guard over registry.
func NewGuard(registry Registry, hidden HiddenPolicy) Guard {
	return Guard{registry: registry, hidden: hidden}
}

// Registry returns the guard's registry.
func (g Guard) Registry() Registry {
	return g.registry
}

// Resolve decides what is mounted for path under state.
func (g Guard) Resolve(state AuthState, path string) Decision {
	path = Normalize(path)

	if state.Loading {
		return Decision{Mount: MountLoading, Path: path}
	}

	if !state.LoggedIn {
		if path == LoginPath {
			return Decision{Mount: MountLogin, Path: path}
		}
		return Decision{Mount: MountLogin, Path: LoginPath, Redirect: true}
	}

	if e, ok := g.lookup(path); ok {
		return Decision{Mount: MountShell, Path: e.Path, Entry: e}
	}
	landing, _ := g.lookup(LandingPath)
	return Decision{Mount: MountShell, Path: LandingPath, Redirect: true, Entry: landing}
}

func (g Guard) lookup(path string) (Entry, bool) {
	e, ok := g.registry.Lookup(path)
	if !ok || (e.Hidden && g.hidden == HiddenBlocked) {
		return Entry{}, false
	}
	return e, true
}

// Normalize returns path with a leading slash, without a trailing slash, and
// without query or fragment.
func Normalize(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	path = strings.TrimSpace(path)
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	for len(path) > 1 && strings.HasSuffix(path, "/") {
		path = strings.TrimSuffix(path, "/")
	}
	return path
}
