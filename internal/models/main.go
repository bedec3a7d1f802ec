// Package models defines the core data structures shared by the VLINKY
// server and client: users, favorites, creator applications, video requests,
// countries and realtime change events.
package models

import "time"

// User represents a marketplace account.
type User struct {
	// ID is the unique identifier for the user.
	ID string `json:"id"`
	// Email is the login name chosen by the user.
	Email string `json:"email"`
	// PasswordHash is the bcrypt hash of the user's password.
	PasswordHash []byte `json:"-"`
	// Role is either "fan" or "admin".
	Role string `json:"role"`
}

// RoleAdmin marks users allowed to review creator applications.
const RoleAdmin = "admin"

// Session ties an opaque bearer token to a user until it expires.
type Session struct {
	Token     string    `json:"token"`
	UserID    string    `json:"userId"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Favorite is a (user, creator) pair saved by a fan.
type Favorite struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	CreatorID string    `json:"creatorId"`
	CreatedAt time.Time `json:"createdAt"`
}

// ApplicationStatus is the review state of a creator application.
type ApplicationStatus string

const (
	// StatusPending is the state of a freshly submitted application.
	StatusPending ApplicationStatus = "pending"
	// StatusApproved marks an application whose creator is listed publicly.
	StatusApproved ApplicationStatus = "approved"
	// StatusRejected marks an application that was declined.
	StatusRejected ApplicationStatus = "rejected"
)

// Valid reports whether s is one of the known statuses.
func (s ApplicationStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// CreatorApplication is the onboarding record that doubles as the public
// creator profile once approved.
type CreatorApplication struct {
	ID          string            `json:"id"`
	UserID      string            `json:"userId"`
	DisplayName string            `json:"displayName"`
	Category    string            `json:"category"`
	Bio         string            `json:"bio"`
	AvatarURL   string            `json:"avatarUrl"`
	CountryCode string            `json:"countryCode"`
	PriceCents  int64             `json:"priceCents"`
	Status      ApplicationStatus `json:"status"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

// Creator is an approved application as shown in discovery, with its
// aggregated rating.
type Creator struct {
	CreatorApplication
	AverageRating float64 `json:"averageRating"`
	RatingCount   int     `json:"ratingCount"`
}

// VideoRequest is a fan's order for a personalised video.
type VideoRequest struct {
	ID           string     `json:"id"`
	FanID        string     `json:"fanId"`
	CreatorID    string     `json:"creatorId"`
	Occasion     string     `json:"occasion"`
	Instructions string     `json:"instructions"`
	Status       string     `json:"status"`
	VideoURL     string     `json:"videoUrl,omitempty"`
	Rating       *int       `json:"rating,omitempty"`
	RatedAt      *time.Time `json:"ratedAt,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
}

// Country is one entry of the countries picker.
type Country struct {
	Code      string `json:"code"`
	Name      string `json:"name"`
	FlagEmoji string `json:"flagEmoji"`
}

// ChangeEvent is a realtime notification about a row change.
type ChangeEvent struct {
	// Table is the name of the changed table.
	Table string `json:"table"`
	// Op is INSERT, UPDATE or DELETE.
	Op string `json:"op"`
	// ID is the primary key of the changed row.
	ID string `json:"id"`
	// UserID is the owner of the changed row.
	UserID string `json:"user_id"`
	// Status is the row's status after the change, when the table has one.
	Status string `json:"status,omitempty"`
}

// VideoNotification is the body accepted by the notification endpoint.
type VideoNotification struct {
	FanEmail    string `json:"fanEmail" validate:"required"`
	CreatorName string `json:"creatorName"`
	VideoURL    string `json:"videoUrl" validate:"required"`
	RequestID   string `json:"requestId"`
}
