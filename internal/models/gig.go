package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Статусы гига. Переходы между ними разрешены только через LifecycleService.
const (
	GigStatusActive     = "active"
	GigStatusInProgress = "in_progress"
	GigStatusCompleted  = "completed"
	GigStatusDisputed   = "disputed"
	GigStatusRefunded   = "refunded"
)

// ValidGigStatuses список валидных статусов гига.
var ValidGigStatuses = map[string]struct{}{
	GigStatusActive:     {},
	GigStatusInProgress: {},
	GigStatusCompleted:  {},
	GigStatusDisputed:   {},
	GigStatusRefunded:   {},
}

// Gig описывает размещённое задание между клиентом и исполнителем.
// Запись никогда не удаляется: терминальные статусы остаются в истории.
type Gig struct {
	ID               uuid.UUID  `db:"id" json:"id"`
	ClientID         uuid.UUID  `db:"client_id" json:"client_id"`
	Title            string     `db:"title" json:"title"`
	Description      string     `db:"description" json:"description"`
	Budget           float64    `db:"budget" json:"budget"`
	DeadlineAt       time.Time  `db:"deadline_at" json:"deadline_at"`
	Skills           pq.StringArray `db:"skills" json:"skills"`
	Status           string     `db:"status" json:"status"`
	SelectedWorkerID *uuid.UUID `db:"selected_worker_id" json:"selected_worker_id,omitempty"`
	StartDate        *time.Time `db:"start_date" json:"start_date,omitempty"`
	CompletedDate    *time.Time `db:"completed_date" json:"completed_date,omitempty"`
	DisputeDate      *time.Time `db:"dispute_date" json:"dispute_date,omitempty"`
	DisputeReason    *string    `db:"dispute_reason" json:"dispute_reason,omitempty"`
	Rated            bool       `db:"rated" json:"rated"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at" json:"updated_at"`
	ApplicationsCount *int      `db:"applications_count" json:"applications_count,omitempty"`
}

// IsOwnedBy проверяет, принадлежит ли гиг клиенту.
func (g *Gig) IsOwnedBy(clientID uuid.UUID) bool {
	return g.ClientID == clientID
}

// IsParticipant проверяет, является ли пользователь стороной сделки.
func (g *Gig) IsParticipant(userID uuid.UUID) bool {
	if g.ClientID == userID {
		return true
	}
	return g.SelectedWorkerID != nil && *g.SelectedWorkerID == userID
}

// IsTerminal сообщает, достиг ли гиг терминального статуса.
func (g *Gig) IsTerminal() bool {
	return g.Status == GigStatusCompleted || g.Status == GigStatusRefunded
}
