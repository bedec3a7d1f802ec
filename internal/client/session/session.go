// Package session tracks who is signed in on the client and gates views
// on that state.
package session

import (
	"context"
	"sync"

	"github.com/vlinky/vlinky/internal/models"
)

// State is the client's view of authentication.
type State int

const (
	// Loading means the session has not been resolved yet.
	Loading State = iota
	SignedIn
	SignedOut
)

func (s State) String() string {
	switch s {
	case SignedIn:
		return "signed in"
	case SignedOut:
		return "signed out"
	default:
		return "loading"
	}
}

// UserSource resolves the current token to a user.
type UserSource interface {
	Me(ctx context.Context) (models.User, error)
}

// Store holds the session state and notifies watchers on change.
type Store struct {
	mu       sync.RWMutex
	state    State
	userID   string
	watchers map[int]func(State, string)
	nextID   int
}

// NewStore returns a Store in the Loading state.
func NewStore() *Store {
	return &Store{watchers: make(map[int]func(State, string))}
}

// State returns the current state.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// UserID returns the signed-in user, or "" when there is none.
func (s *Store) UserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userID
}

// SignIn records userID as the current user.
func (s *Store) SignIn(userID string) { s.set(SignedIn, userID) }

// SignOut clears the current user.
func (s *Store) SignOut() { s.set(SignedOut, "") }

// Resolve asks src for the current user and settles the state accordingly.
// Any error counts as signed out.
func (s *Store) Resolve(ctx context.Context, src UserSource) State {
	s.set(Loading, "")
	u, err := src.Me(ctx)
	if err != nil || u.ID == "" {
		s.SignOut()
		return SignedOut
	}
	s.SignIn(u.ID)
	return SignedIn
}

func (s *Store) set(state State, userID string) {
	s.mu.Lock()
	if s.state == state && s.userID == userID {
		s.mu.Unlock()
		return
	}
	s.state, s.userID = state, userID
	watchers := make([]func(State, string), 0, len(s.watchers))
	for _, fn := range s.watchers {
		watchers = append(watchers, fn)
	}
	s.mu.Unlock()

	for _, fn := range watchers {
		fn(state, userID)
	}
}

// Watch calls fn on every state change until cancel is called.
func (s *Store) Watch(fn func(state State, userID string)) (cancel func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.watchers[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.watchers, id)
			s.mu.Unlock()
		})
	}
}

// Gate renders spinner while the session is loading and children otherwise.
// It never redirects; pages decide for themselves what a signed-out user sees.
func Gate(store *Store, spinner, children func()) {
	if store.State() == Loading {
		spinner()
		return
	}
	children()
}
