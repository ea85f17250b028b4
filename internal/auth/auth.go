// Package auth holds the process-wide session state: whether an admin is
// logged in, and whether the persisted session has been checked yet.
package auth

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/digicoders-git/ksadmin/internal/session"
	"github.com/digicoders-git/ksadmin/pkg/domain"
)

// Status is the state of the session state machine.
type Status int

const (
	StatusInitializing Status = iota
	StatusAuthenticated
	StatusUnauthenticated
)

func (s Status) String() string {
	switch s {
	case StatusInitializing:
		return "initializing"
	case StatusAuthenticated:
		return "authenticated"
	case StatusUnauthenticated:
		return "unauthenticated"
	}
	return "unknown"
}

var (
	// ErrMissingToken is returned by SetLoginData for an identity without a token.
	ErrMissingToken = errors.New("auth: identity has no token")
	// ErrMissingSubject is returned by SetLoginData for an identity without a subject ID.
	ErrMissingSubject = errors.New("auth: identity has no subject id")
)

// Snapshot is a consistent view of the manager state.
type Snapshot struct {
	Status   Status
	Identity *domain.Identity
	LoggedIn bool
	Loading  bool
}

// Manager is the single source of truth for the running client.
// Construct one per process and pass it down.
type Manager struct {
	store *session.Store
	log   *zap.Logger

	initOnce sync.Once

	// transMu orders whole transitions (state, storage, observers), so
	// storage writes and callbacks follow the order transitions were applied.
	transMu sync.Mutex

	mu       sync.RWMutex
	status   Status
	identity *domain.Identity

	subMu  sync.Mutex
	subs   map[int]func(Snapshot)
	nextID int
}

// NewManager creates a manager in the Initializing state.
func NewManager(store *session.Store, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{
		store: store,
		log:   log.Named("auth"),
		subs:  make(map[int]func(Snapshot)),
	}
}

// Init loads the persisted session once. Later calls return immediately.
// If a login or logout landed while loading, the loaded session is ignored.
func (m *Manager) Init(ctx context.Context) {
	m.initOnce.Do(func() {
		loaded := m.store.Load(ctx).Merged()

		m.transMu.Lock()
		defer m.transMu.Unlock()

		m.mu.Lock()
		if m.status != StatusInitializing {
			m.mu.Unlock()
			return
		}
		if loaded.LoggedIn() {
			m.identity = loaded
			m.status = StatusAuthenticated
		} else {
			m.identity = nil
			m.status = StatusUnauthenticated
		}
		snap := m.snapshotLocked()
		m.mu.Unlock()

		m.log.Info("session checked", zap.Stringer("status", snap.Status))
		m.notify(snap)
	})
}

// SetLoginData stores identity and transitions to Authenticated. An identity
// that would not count as logged in is rejected and nothing changes.
func (m *Manager) SetLoginData(ctx context.Context, identity domain.Identity) error {
	if identity.Token == "" {
		return ErrMissingToken
	}
	if identity.SubjectID == "" {
		return ErrMissingSubject
	}

	m.transMu.Lock()
	defer m.transMu.Unlock()

	m.mu.Lock()
	id := identity
	m.identity = &id
	m.status = StatusAuthenticated
	snap := m.snapshotLocked()
	m.mu.Unlock()

	m.store.Save(ctx, identity)
	m.log.Info("logged in", zap.String("subject", identity.SubjectID))
	m.notify(snap)
	return nil
}

// Logout transitions to Unauthenticated and clears storage. Safe to call when
// already logged out.
func (m *Manager) Logout(ctx context.Context) {
	m.transMu.Lock()
	defer m.transMu.Unlock()

	m.mu.Lock()
	wasIn := m.identity.LoggedIn()
	m.identity = nil
	m.status = StatusUnauthenticated
	snap := m.snapshotLocked()
	m.mu.Unlock()

	m.store.Clear(ctx)
	if wasIn {
		m.log.Info("logged out")
	}
	m.notify(snap)
}

// Snapshot returns status, identity, and derived flags read under one lock.
func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshotLocked()
}

func (m *Manager) snapshotLocked() Snapshot {
	var id *domain.Identity
	if m.identity != nil {
		cp := *m.identity
		id = &cp
	}
	return Snapshot{
		Status:   m.status,
		Identity: id,
		LoggedIn: m.status != StatusInitializing && id.LoggedIn(),
		Loading:  m.status == StatusInitializing,
	}
}

// IsLoggedIn is derived from the current identity on every call.
func (m *Manager) IsLoggedIn() bool {
	return m.Snapshot().LoggedIn
}

// Loading is true only while the persisted session is being checked.
func (m *Manager) Loading() bool {
	return m.Snapshot().Loading
}

// Identity returns a copy of the current identity, or nil.
func (m *Manager) Identity() *domain.Identity {
	return m.Snapshot().Identity
}

// Token returns the current bearer token, or "" when logged out.
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.identity == nil {
		return ""
	}
	return m.identity.Token
}

// Subscribe registers fn to run after every transition, in transition order.
// fn must not call SetLoginData or Logout. The returned func removes it.
func (m *Manager) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	m.subMu.Lock()
	id := m.nextID
	m.nextID++
	m.subs[id] = fn
	m.subMu.Unlock()

	return func() {
		m.subMu.Lock()
		delete(m.subs, id)
		m.subMu.Unlock()
	}
}

func (m *Manager) notify(snap Snapshot) {
	m.subMu.Lock()
	fns := make([]func(Snapshot), 0, len(m.subs))
	for _, fn := range m.subs {
		fns = append(fns, fn)
	}
	m.subMu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}
