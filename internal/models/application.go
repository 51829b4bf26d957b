package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Статусы отклика на гиг.
const (
	ApplicationStatusPending  = "pending"
	ApplicationStatusAccepted = "accepted"
	ApplicationStatusRejected = "rejected"
)

// Application представляет отклик исполнителя на гиг.
// После создания запись неизменяема, кроме статуса: принятие одного отклика
// переводит остальные в rejected.
type Application struct {
	ID                 uuid.UUID `db:"id" json:"id"`
	GigID              uuid.UUID `db:"gig_id" json:"gig_id"`
	ApplicantID        uuid.UUID `db:"applicant_id" json:"applicant_id"`
	BidAmount          float64   `db:"bid_amount" json:"bid_amount"`
	Skills             pq.StringArray `db:"skills" json:"skills"`
	RatingAtSubmission float64   `db:"rating_at_submission" json:"rating_at_submission"`
	Status             string    `db:"status" json:"status"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
}
