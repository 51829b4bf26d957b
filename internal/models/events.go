package models

import (
	"github.com/google/uuid"
)

// Имена доменных событий жизненного цикла гига.
const (
	EventGigPosted            = "gig.posted"
	EventApplicationSubmitted = "application.submitted"
	EventGigAccepted          = "gig.accepted"
	EventGigCompleted         = "gig.completed"
	EventGigDisputed          = "gig.disputed"
	EventGigResolved          = "gig.resolved"
	EventGigRated             = "gig.rated"
	EventEscrowReleased       = "escrow.released"
	EventEscrowRefunded       = "escrow.refunded"
)

// GigEvent несёт полезную нагрузку событий жизненного цикла для
// уведомления сторон сделки.
type GigEvent struct {
	GigID    uuid.UUID  `json:"gig_id"`
	ClientID uuid.UUID  `json:"client_id"`
	WorkerID *uuid.UUID `json:"worker_id,omitempty"`
	Status   string     `json:"status"`
}

// EscrowEvent несёт полезную нагрузку события расчёта для платёжного
// шлюза: движок только публикует факт, само движение средств выполняет
// внешний бэкенд.
type EscrowEvent struct {
	GigID  uuid.UUID `json:"gig_id"`
	State  string    `json:"escrow_state"`
	Amount float64   `json:"amount"`
}
