package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/tmaxmax/go-sse"
	"go.uber.org/zap"

	"github.com/vlinky/vlinky/internal/middleware"
	"github.com/vlinky/vlinky/internal/realtime"
)

const defaultKeepAlive = 25 * time.Second

// changeEvent is the SSE event name of row change frames.
var changeEvent = sse.Type("change")

// RealtimeHandler streams change events to clients over server-sent events.
type RealtimeHandler struct {
	Hub *realtime.Hub
	Log *zap.Logger
	// KeepAlive is the interval between comment frames on an idle stream.
	KeepAlive time.Duration
}

// Applications handles GET /api/realtime/creator-applications. The stream
// carries change events for the caller's own applications and ends when
// the client disconnects or the server shuts down.
func (h *RealtimeHandler) Applications(w http.ResponseWriter, r *http.Request) {
	sess, err := sse.Upgrade(w, r)
	if err != nil {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	userID := middleware.GetUserIDFromContext(r.Context())

	sub := h.Hub.Subscribe(realtime.ForUser(userID))
	defer sub.Close()

	w.Header().Set("Cache-Control", "no-cache")
	if err := send(sess, comment("subscribed")); err != nil {
		return
	}

	keepAlive := h.KeepAlive
	if keepAlive <= 0 {
		keepAlive = defaultKeepAlive
	}
	ticker := time.NewTicker(keepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			if err := send(sess, comment("ping")); err != nil {
				return
			}
		case ev, ok := <-sub.C:
			if !ok {
				return
			}
			data, err := json.Marshal(ev)
			if err != nil {
				h.Log.Error("failed to encode change event", zap.Error(err))
				continue
			}
			msg := &sse.Message{ID: sse.ID(uuid.NewString()), Type: changeEvent}
			msg.AppendData(string(data))
			if err := send(sess, msg); err != nil {
				h.Log.Debug("event stream closed", zap.String("user_id", userID), zap.Error(err))
				return
			}
		}
	}
}

func comment(text string) *sse.Message {
	m := &sse.Message{}
	m.AppendComment(text)
	return m
}

func send(sess *sse.Session, m *sse.Message) error {
	if err := sess.Send(m); err != nil {
		return err
	}
	return sess.Flush()
}
