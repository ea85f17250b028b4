// Package session persists the admin Identity across restarts.
//
// The current layout is a single record holding identity and token together,
// so the two can never be written apart. Sessions written by older clients
// used two independent keys (identity JSON and a bare token); those are still
// read, tolerated when partial or corrupt, and migrated on load.
package session

import (
	"context"
	"encoding/json"
	"errors"

	"go.uber.org/zap"

	"github.com/digicoders-git/ksadmin/internal/storage"
	"github.com/digicoders-git/ksadmin/pkg/domain"
)

// Storage keys.
const (
	KeyRecord      = "session"
	KeyLegacyUser  = "admin_user"
	KeyLegacyToken = "admin_token"
)

// Loaded is what Load recovered. Identity and Token are read independently;
// either may be empty.
type Loaded struct {
	Identity *domain.Identity
	Token    string
}

// Merged returns the identity with the recovered token applied, or nil when
// no identity was recovered.
func (l Loaded) Merged() *domain.Identity {
	if l.Identity == nil {
		return nil
	}
	id := *l.Identity
	if id.Token == "" {
		id.Token = l.Token
	}
	return &id
}

// Store reads and writes the Identity. None of its methods return errors:
// storage and parse failures degrade to "no session" and are logged.
type Store struct {
	kv  storage.Store
	log *zap.Logger
}

// NewStore creates a Store over kv. A nil logger disables warnings.
func NewStore(kv storage.Store, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{kv: kv, log: log.Named("session")}
}

// Load reads the persisted session.
func (s *Store) Load(ctx context.Context) Loaded {
	if id, ok := s.loadRecord(ctx); ok {
		return Loaded{Identity: id, Token: id.Token}
	}
	return s.loadLegacy(ctx)
}

func (s *Store) loadRecord(ctx context.Context) (*domain.Identity, bool) {
	raw, ok := s.get(ctx, KeyRecord)
	if !ok {
		return nil, false
	}
	var id domain.Identity
	if err := json.Unmarshal([]byte(raw), &id); err != nil {
		s.log.Warn("discarding corrupt session record", zap.String("key", KeyRecord), zap.Error(err))
		s.del(ctx, KeyRecord)
		return nil, false
	}
	return &id, true
}

func (s *Store) loadLegacy(ctx context.Context) Loaded {
	var out Loaded
	if raw, ok := s.get(ctx, KeyLegacyUser); ok {
		var id domain.Identity
		if err := json.Unmarshal([]byte(raw), &id); err != nil {
			s.log.Warn("discarding corrupt session record", zap.String("key", KeyLegacyUser), zap.Error(err))
			s.del(ctx, KeyLegacyUser)
		} else {
			out.Identity = &id
		}
	}
	if tok, ok := s.get(ctx, KeyLegacyToken); ok {
		out.Token = tok
	}

	if merged := out.Merged(); merged.LoggedIn() {
		// Complete legacy pair: rewrite as a single record.
		if s.put(ctx, *merged) {
			s.del(ctx, KeyLegacyUser, KeyLegacyToken)
			s.log.Info("migrated legacy session layout")
		}
	}
	return out
}

// Save persists id as a single record. An empty token is stored as absent.
func (s *Store) Save(ctx context.Context, id domain.Identity) {
	if s.put(ctx, id) {
		s.del(ctx, KeyLegacyUser, KeyLegacyToken)
	}
}

// Clear removes every session key. Safe to call when nothing is stored.
func (s *Store) Clear(ctx context.Context) {
	s.del(ctx, KeyRecord, KeyLegacyUser, KeyLegacyToken)
}

func (s *Store) put(ctx context.Context, id domain.Identity) bool {
	data, err := json.Marshal(id)
	if err != nil {
		s.log.Warn("encode session record", zap.Error(err))
		return false
	}
	if err := s.kv.Set(ctx, KeyRecord, string(data)); err != nil {
		s.log.Warn("session storage unavailable, session will not survive a restart", zap.String("op", "save"), zap.Error(err))
		return false
	}
	return true
}

func (s *Store) get(ctx context.Context, key string) (string, bool) {
	v, err := s.kv.Get(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return "", false
	}
	if err != nil {
		s.log.Warn("session storage unavailable", zap.String("op", "load"), zap.String("key", key), zap.Error(err))
		return "", false
	}
	return v, true
}

func (s *Store) del(ctx context.Context, keys ...string) {
	if err := s.kv.Delete(ctx, keys...); err != nil {
		s.log.Warn("session storage unavailable", zap.String("op", "delete"), zap.Strings("keys", keys), zap.Error(err))
	}
}
