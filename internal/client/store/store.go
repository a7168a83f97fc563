package store

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/codecredits/internal/client/client"
	"github.com/dmitrijs2005/codecredits/internal/client/models"
	"github.com/dmitrijs2005/codecredits/internal/logging"
)

// SessionStore is the durable half of the session.
type SessionStore interface {
	Load(ctx context.Context) (models.Session, bool, error)
	SaveToken(ctx context.Context, token string) error
	Save(ctx context.Context, sess models.Session) error
	RemoveToken(ctx context.Context) error
	Clear(ctx context.Context) error
}

// Store holds application state and the API client bound to the session.
type Store struct {
	mu    sync.RWMutex
	state State
	base  client.Client
	api   client.Client

	sessions SessionStore
	log      logging.Logger

	subMu  sync.Mutex
	subs   map[int]func(State)
	nextID int
}

// New creates an empty store. base must be an anonymous client; the store
// derives authenticated views from it.
func New(base client.Client, sessions SessionStore, log logging.Logger) *Store {
	if log == nil {
		log = logging.NewNop()
	}
	return &Store{
		base:     base,
		api:      base,
		sessions: sessions,
		log:      log,
		subs:     make(map[int]func(State)),
	}
}

// Subscribe registers fn to receive a snapshot after every mutation. The
// returned func removes the subscription.
func (s *Store) Subscribe(fn func(State)) (unsubscribe func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	id := s.nextID
	s.nextID++
	s.subs[id] = fn

	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.subs, id)
	}
}

// commit applies fn under the write lock, then notifies subscribers outside it.
func (s *Store) commit(fn func(st *State)) {
	s.mu.Lock()
	fn(&s.state)
	snap := s.state.clone()
	s.mu.Unlock()

	s.subMu.Lock()
	subs := make([]func(State), 0, len(s.subs))
	for _, f := range s.subs {
		subs = append(subs, f)
	}
	s.subMu.Unlock()

	for _, f := range subs {
		f(snap)
	}
}

// session returns the current API view together with the token it was bound
// for. An empty token means the view is anonymous.
func (s *Store) session() (client.Client, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.api, s.state.Token
}

func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone()
}

func (s *Store) IsLoggedIn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Token != ""
}

func (s *Store) IsAdmin() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.User != nil && s.state.User.IsAdmin
}

func (s *Store) AuthStatus() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Status
}

func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Token
}

// CurrentUser returns a copy of the profile, or nil when logged out.
func (s *Store) CurrentUser() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state.User == nil {
		return nil
	}
	u := *s.state.User
	return &u
}

func (s *Store) Credits() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Credits
}

func (s *Store) Models() []models.ModelPricing {
	return s.Snapshot().Models
}

func (s *Store) CodeHistory() []models.CodeGeneration {
	return s.Snapshot().CodeHistory
}

func (s *Store) PaymentTransactions() []models.PaymentTransaction {
	return s.Snapshot().PaymentTransactions
}
