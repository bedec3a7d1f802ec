package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/tmaxmax/go-sse"

	"github.com/vlinky/vlinky/internal/models"
)

// Subscription is an open change-event stream. Close releases it.
type Subscription struct {
	events chan models.ChangeEvent
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// Events delivers decoded change events. It is closed when the stream ends.
func (s *Subscription) Events() <-chan models.ChangeEvent { return s.events }

// Close stops the stream and waits for the reader to exit.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.cancel()
		<-s.done
	})
}

// SubscribeApplications opens the server-sent event stream of changes to the
// user's creator applications.
func (c *Client) SubscribeApplications(ctx context.Context) (*Subscription, error) {
	ctx, cancel := context.WithCancel(ctx)
	req, err := c.newRequest(ctx, http.MethodGet, "/api/realtime/creator-applications", nil)
	if err != nil {
		cancel()
		return nil, err
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.http.Do(req)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("subscribe: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		cancel()
		return nil, &Error{Status: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}

	s := &Subscription{
		events: make(chan models.ChangeEvent, 8),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go s.read(ctx, resp.Body)
	return s, nil
}

// changeEventType is the event name the server gives row change frames.
const changeEventType = "change"

// read decodes change frames until the stream ends or ctx is cancelled.
// Other event types are skipped.
func (s *Subscription) read(ctx context.Context, body io.ReadCloser) {
	defer close(s.done)
	defer close(s.events)
	defer body.Close()

	for e, err := range sse.Read(body, nil) {
		if err != nil {
			return
		}
		if e.Type != changeEventType {
			continue
		}
		var ev models.ChangeEvent
		if err := json.Unmarshal([]byte(e.Data), &ev); err != nil {
			continue
		}
		select {
		case s.events <- ev:
		case <-ctx.Done():
			return
		}
	}
}
