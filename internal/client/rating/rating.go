// Package rating is the star widget a fan uses to rate a delivered video.
package rating

import (
	"context"
	"errors"
	"strings"
	"sync"
)

// MaxStars is the highest rating.
const MaxStars = 5

// ErrDisabled is returned by Submit when the widget cannot submit.
var ErrDisabled = errors.New("rating widget is disabled")

// Backend stores a rating for a video request.
type Backend interface {
	RateVideo(ctx context.Context, requestID string, rating int) error
}

// Widget holds hover and selection locally until Submit.
type Widget struct {
	backend   Backend
	requestID string

	mu         sync.Mutex
	hover      int
	selected   int
	submitted  int
	submitting bool
}

// New creates a widget for requestID. submitted is the stored rating, or 0.
func New(backend Backend, requestID string, submitted int) *Widget {
	if submitted < 0 || submitted > MaxStars {
		submitted = 0
	}
	return &Widget{backend: backend, requestID: requestID, selected: submitted, submitted: submitted}
}

// Hover previews n stars. Values outside 1..MaxStars are ignored.
func (w *Widget) Hover(n int) {
	if n < 1 || n > MaxStars {
		return
	}
	w.mu.Lock()
	w.hover = n
	w.mu.Unlock()
}

// Leave ends the hover preview.
func (w *Widget) Leave() {
	w.mu.Lock()
	w.hover = 0
	w.mu.Unlock()
}

// Select chooses n stars. Values outside 1..MaxStars are ignored.
func (w *Widget) Select(n int) {
	if n < 1 || n > MaxStars {
		return
	}
	w.mu.Lock()
	w.selected = n
	w.mu.Unlock()
}

// Display returns the number of filled stars: the hover if any, else the selection.
func (w *Widget) Display() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.hover > 0 {
		return w.hover
	}
	return w.selected
}

// Submitted returns the last rating the backend accepted.
func (w *Widget) Submitted() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.submitted
}

// CanSubmit is false while submitting, with nothing selected, or when the
// selection is already stored.
func (w *Widget) CanSubmit() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.canSubmitLocked()
}

func (w *Widget) canSubmitLocked() bool {
	return !w.submitting && w.selected > 0 && w.selected != w.submitted
}

// Submit stores the selection. On failure the submitted value is unchanged.
func (w *Widget) Submit(ctx context.Context) error {
	w.mu.Lock()
	if !w.canSubmitLocked() {
		w.mu.Unlock()
		return ErrDisabled
	}
	w.submitting = true
	value := w.selected
	w.mu.Unlock()

	err := w.backend.RateVideo(ctx, w.requestID, value)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.submitting = false
	if err != nil {
		return err
	}
	w.submitted = value
	return nil
}

// String renders the widget as filled and empty stars.
func (w *Widget) String() string {
	n := w.Display()
	return strings.Repeat("★", n) + strings.Repeat("☆", MaxStars-n)
}
