package http

import (
	"errors"
	"mime"
	"net/http"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/vlinky/vlinky/internal/models"
)

// NotifyHandler serves /api/send-video-notification. It accepts the
// "video ready" notification for a fan and only logs it; no email is sent.
// CORS headers come from the router's CORSPolicy.
type NotifyHandler struct {
	Log *zap.Logger
}

type notifyResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	RequestID string `json:"requestId"`
	VideoURL  string `json:"videoUrl"`
}

func notifyError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (h *NotifyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST, OPTIONS")
		notifyError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	defer func() {
		if rec := recover(); rec != nil {
			h.Log.Error("notification handler panicked", zap.Any("panic", rec))
			notifyError(w, http.StatusInternalServerError, "internal error")
		}
	}()

	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "application/json" {
		notifyError(w, http.StatusBadRequest, "content type must be application/json")
		return
	}

	var req models.VideoNotification
	if err := decode(r, &req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			notifyError(w, http.StatusBadRequest, "missing required fields: fanEmail and videoUrl")
			return
		}
		notifyError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	h.Log.Info("video notification accepted",
		zap.String("fan_email", req.FanEmail),
		zap.String("creator_name", req.CreatorName),
		zap.String("video_url", req.VideoURL),
		zap.String("request_id", req.RequestID),
	)

	writeJSON(w, http.StatusOK, notifyResponse{
		Success:   true,
		Message:   "notification sent",
		RequestID: req.RequestID,
		VideoURL:  req.VideoURL,
	})
}
