package dto

import (
	"github.com/ignatzorin/gig-backend/internal/models"
)

// ErrorResponse is the standard error envelope
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// SuccessResponse is the standard success envelope
type SuccessResponse struct {
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// AuthResponse represents the result of register/login
type AuthResponse struct {
	User         *models.User `json:"user"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresIn    int64        `json:"expires_in"`
}

// GigListResponse represents a paginated gig list
type GigListResponse struct {
	Gigs   []models.Gig `json:"gigs"`
	Limit  int          `json:"limit"`
	Offset int          `json:"offset"`
}

// DisputeResponse represents a dispute with its evidence
type DisputeResponse struct {
	*models.Dispute
	Evidence []models.DisputeEvidence `json:"evidence,omitempty"`
}

// NotificationListResponse represents the user's notification feed
type NotificationListResponse struct {
	Notifications []models.Notification `json:"notifications"`
	UnreadCount   int                   `json:"unread_count"`
}
