package router

// History is the addressable location: a stack of visited paths.
type History struct {
	entries []string
}

// NewHistory starts a history at path.
func NewHistory(path string) *History {
	return &History{entries: []string{Normalize(path)}}
}

// Current returns the current path.
func (h *History) Current() string {
	return h.entries[len(h.entries)-1]
}

// Push adds a new entry.
func (h *History) Push(path string) {
	h.entries = append(h.entries, Normalize(path))
}

// Replace overwrites the current entry.
func (h *History) Replace(path string) {
	h.entries[len(h.entries)-1] = Normalize(path)
}

// Back drops the current entry. It reports false at the first entry.
func (h *History) Back() bool {
	if len(h.entries) < 2 {
		return false
	}
	h.entries = h.entries[:len(h.entries)-1]
	return true
}

// Len returns the number of entries.
func (h *History) Len() int {
	return len(h.entries)
}

// Entries returns a copy of the stack, oldest first.
func (h *History) Entries() []string {
	return append([]string(nil), h.entries...)
}

// Navigator applies guard decisions to a history.
type Navigator struct {
	guard   Guard
	history *History
}

// NewNavigator starts navigation at initial.
func NewNavigator(guard Guard, initial string) *Navigator {
	return &Navigator{guard: guard, history: NewHistory(initial)}
}

// Guard returns the navigator's guard.
func (n *Navigator) Guard() Guard {
	return n.guard
}

// History returns the underlying history.
func (n *Navigator) History() *History {
	return n.history
}

// Current returns the current path.
func (n *Navigator) Current() string {
	return n.history.Current()
}

// Sync re-evaluates the current path. Redirects replace the current entry.
func (n *Navigator) Sync(state AuthState) Decision {
	d := n.guard.Resolve(state, n.history.Current())
	if d.Redirect || d.Path != n.history.Current() {
		n.history.Replace(d.Path)
	}
	return d
}

// Navigate resolves path and pushes where the guard lands, so a redirected
// request leaves no entry of its own. Landing on the current path is a no-op
// on the history. While loading, the location moves but nothing other than
// the loading view is mounted.
func (n *Navigator) Navigate(state AuthState, path string) Decision {
	d := n.guard.Resolve(state, path)
	if d.Path != n.history.Current() {
		n.history.Push(d.Path)
	}
	return d
}

// Back pops one entry and resolves the result. Entries the current state no
// longer allows are replaced by the guard's redirect target, so back
// navigation never lands on a view inconsistent with the auth state.
func (n *Navigator) Back(state AuthState) Decision {
	n.history.Back()
	return n.Sync(state)
}

// Logout runs logout and replaces the location with the login path in the
// same call.
func (n *Navigator) Logout(logout func()) Decision {
	logout()
	n.history.Replace(LoginPath)
	return n.Sync(AuthState{})
}
