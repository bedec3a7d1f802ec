package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/vlinky/vlinky/internal/models"
)

const (
	minReconnect = 10 * time.Second
	maxReconnect = time.Minute
	pingInterval = 90 * time.Second
)

// Listen subscribes to a Postgres NOTIFY channel and publishes every decoded
// payload to hub until ctx is cancelled.
func Listen(ctx context.Context, dsn, channel string, hub *Hub, log *zap.Logger) error {
	l := pq.NewListener(dsn, minReconnect, maxReconnect, func(ev pq.ListenerEventType, err error) {
		if err != nil {
			log.Warn("postgres listener event", zap.Int("event", int(ev)), zap.Error(err))
		}
	})
	if err := l.Listen(channel); err != nil {
		_ = l.Close()
		return fmt.Errorf("listen %s: %w", channel, err)
	}
	log.Info("listening for changes", zap.String("channel", channel))

	go func() {
		defer l.Close()
		ticker := time.NewTicker(pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := l.Ping(); err != nil {
					log.Warn("postgres listener ping failed", zap.Error(err))
				}
			}
		}
	}()

	go Forward(ctx, l.Notify, hub, log)
	return nil
}

// Forward decodes notifications from ch and publishes them to hub.
// A nil notification signals a reconnect and is skipped.
func Forward(ctx context.Context, ch <-chan *pq.Notification, hub *Hub, log *zap.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case n, ok := <-ch:
			if !ok {
				return
			}
			if n == nil {
				log.Info("postgres listener reconnected")
				continue
			}
			var ev models.ChangeEvent
			if err := json.Unmarshal([]byte(n.Extra), &ev); err != nil {
				log.Error("failed to decode change event",
					zap.String("channel", n.Channel),
					zap.Error(err),
				)
				continue
			}
			hub.Publish(ev)
		}
	}
}
