// Package profilesync mirrors the signed-in user's approved creator profile
// into the local profile store, on start, on realtime changes and on demand.
package profilesync

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/vlinky/vlinky/internal/client/notify"
	"github.com/vlinky/vlinky/internal/client/storage"
	"github.com/vlinky/vlinky/internal/models"
)

// Feed is a live stream of change events.
type Feed interface {
	Events() <-chan models.ChangeEvent
	Close()
}

// Backend fetches the profile source row and opens the change feed.
type Backend interface {
	LatestApproved(ctx context.Context) (models.CreatorApplication, bool, error)
	SubscribeApplications(ctx context.Context) (Feed, error)
}

// Syncer copies the latest approved application into the profile store.
//
// Concurrent syncs are not serialized; the last one to finish wins.
type Syncer struct {
	backend  Backend
	writer   *storage.ProfileWriter
	notifier notify.Notifier
	log      *zap.Logger
	now      func() time.Time

	mu       sync.RWMutex
	lastSync time.Time
}

// New creates a Syncer writing through w.
func New(backend Backend, w *storage.ProfileWriter, n notify.Notifier, log *zap.Logger) *Syncer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Syncer{backend: backend, writer: w, notifier: n, log: log, now: time.Now}
}

// LastSyncTime returns when the profile was last written. ok is false
// until the first successful sync that found a row.
func (s *Syncer) LastSyncTime() (t time.Time, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastSync, !s.lastSync.IsZero()
}

// SyncProfiles fetches the latest approved application and overwrites the
// mirror. When the user has none nothing is written.
func (s *Syncer) SyncProfiles(ctx context.Context) error {
	app, found, err := s.backend.LatestApproved(ctx)
	if err != nil {
		s.log.Error("failed to fetch creator profile", zap.Error(err))
		s.notifier.Notify(notify.Error, "Failed to sync profile")
		return err
	}
	if !found {
		s.log.Debug("no approved creator profile to sync")
		return nil
	}

	err = s.writer.Save(storage.Profile{
		CreatorID:     app.ID,
		CreatorName:   app.DisplayName,
		CreatorAvatar: app.AvatarURL,
	})
	if err != nil {
		s.log.Error("failed to store creator profile", zap.Error(err))
		s.notifier.Notify(notify.Error, "Failed to sync profile")
		return err
	}

	s.mu.Lock()
	s.lastSync = s.now()
	s.mu.Unlock()
	s.log.Info("creator profile synced", zap.String("creator_id", app.ID))
	return nil
}

// Resync runs a sync on demand and confirms success to the user.
func (s *Syncer) Resync(ctx context.Context) error {
	if err := s.SyncProfiles(ctx); err != nil {
		return err
	}
	s.notifier.Notify(notify.Success, "Profile synced")
	return nil
}

// Start syncs once for userID and then on every change event for that
// user's rows. The returned stop releases the subscription and waits for
// the watcher to exit. With no user Start does nothing.
func (s *Syncer) Start(ctx context.Context, userID string) (stop func(), err error) {
	if userID == "" {
		return func() {}, nil
	}

	_ = s.SyncProfiles(ctx)

	ctx, cancel := context.WithCancel(ctx)
	feed, err := s.backend.SubscribeApplications(ctx)
	if err != nil {
		cancel()
		s.log.Error("failed to subscribe to profile changes", zap.Error(err))
		return func() {}, err
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-feed.Events():
				if !ok {
					return
				}
				if ev.UserID != userID {
					continue
				}
				_ = s.SyncProfiles(ctx)
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			feed.Close()
			<-done
		})
	}, nil
}
