// Package storage keeps the per-session creator profile mirror on disk and
// shares it between client components.
package storage

import (
	"encoding/json"
	"errors"
	"os"
	"sync"
)

// ErrWriterClaimed is returned when a second component asks to write the
// mirrored profile fields.
var ErrWriterClaimed = errors.New("profile store already has a writer")

// ProfileStore is the typed replacement for ad-hoc session storage. Any
// component may read and watch it; exactly one ProfileWriter may change it.
type ProfileStore struct {
	path string

	mu       sync.Mutex
	profile  Profile
	writes   int
	claimed  bool
	watchers map[int]func(Profile)
	nextID   int
}

// NewProfileStore creates a store persisted at path. An empty path keeps
// the profile in memory only.
func NewProfileStore(path string) *ProfileStore {
	return &ProfileStore{path: path, watchers: make(map[int]func(Profile))}
}

// Load reads the persisted profile. A missing file leaves the store empty.
func (ps *ProfileStore) Load() error {
	if ps.path == "" {
		return nil
	}
	f, err := os.Open(ps.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer f.Close()

	var p Profile
	if err := json.NewDecoder(f).Decode(&p); err != nil {
		return err
	}
	ps.mu.Lock()
	ps.profile = p
	ps.mu.Unlock()
	return nil
}

// Get returns the current profile.
func (ps *ProfileStore) Get() Profile {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	return ps.profile
}

// Writes returns how many times the profile has been saved.
func (ps *ProfileStore) Writes() int {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	return ps.writes
}

// Watch calls fn after every save until cancel is called.
func (ps *ProfileStore) Watch(fn func(Profile)) (cancel func()) {
	ps.mu.Lock()
	id := ps.nextID
	ps.nextID++
	ps.watchers[id] = fn
	ps.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			ps.mu.Lock()
			delete(ps.watchers, id)
			ps.mu.Unlock()
		})
	}
}

// ClaimWriter hands out the only ProfileWriter. It fails with
// ErrWriterClaimed until the current writer is released.
func (ps *ProfileStore) ClaimWriter() (*ProfileWriter, error) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	if ps.claimed {
		return nil, ErrWriterClaimed
	}
	ps.claimed = true
	return &ProfileWriter{store: ps}, nil
}

// ProfileWriter is the single write handle of a ProfileStore.
type ProfileWriter struct {
	store *ProfileStore
	once  sync.Once
}

// Save replaces the profile, persists it and notifies watchers.
func (w *ProfileWriter) Save(p Profile) error {
	ps := w.store
	ps.mu.Lock()
	ps.profile = p
	ps.writes++
	watchers := make([]func(Profile), 0, len(ps.watchers))
	for _, fn := range ps.watchers {
		watchers = append(watchers, fn)
	}
	path := ps.path
	ps.mu.Unlock()

	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		if err := json.NewEncoder(f).Encode(p); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
	}

	for _, fn := range watchers {
		fn(p)
	}
	return nil
}

// Release gives up the write handle so another component may claim it.
func (w *ProfileWriter) Release() {
	w.once.Do(func() {
		w.store.mu.Lock()
		w.store.claimed = false
		w.store.mu.Unlock()
	})
}
