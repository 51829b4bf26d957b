package dto

import "time"

// RegisterRequest represents the request to create an account
type RegisterRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// LoginRequest represents the request to sign in
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest represents the request to rotate tokens
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// PostGigRequest represents the request to post a gig
type PostGigRequest struct {
	Title       string    `json:"title" binding:"required"`
	Description string    `json:"description" binding:"required"`
	Budget      float64   `json:"budget" binding:"required"`
	Deadline    time.Time `json:"deadline" binding:"required"`
	Skills      []string  `json:"skills"`
}

// SubmitApplicationRequest represents a worker's bid on a gig
type SubmitApplicationRequest struct {
	BidAmount float64  `json:"bid_amount" binding:"required"`
	Skills    []string `json:"skills"`
}

// AcceptApplicationRequest selects the winning applicant
type AcceptApplicationRequest struct {
	ApplicantID string `json:"applicant_id" binding:"required"`
}

// SubmitRatingRequest represents the client's rating of the worker
type SubmitRatingRequest struct {
	Stars  int    `json:"stars" binding:"required"`
	Review string `json:"review" binding:"required"`
}

// RaiseDisputeRequest opens a dispute on a gig
type RaiseDisputeRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// ResolveDisputeRequest applies the arbiter's decision
type ResolveDisputeRequest struct {
	Outcome    string `json:"outcome" binding:"required"`
	Resolution string `json:"resolution" binding:"required"`
}

// MarkNotificationsReadRequest marks notifications as read
type MarkNotificationsReadRequest struct {
	IDs []string `json:"ids" binding:"required"`
}
