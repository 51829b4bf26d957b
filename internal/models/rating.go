package models

import (
	"time"

	"github.com/google/uuid"
)

// Rating описывает оценку исполнителя клиентом после завершения гига.
// Не более одной оценки на гиг.
type Rating struct {
	ID        uuid.UUID `db:"id" json:"id"`
	GigID     uuid.UUID `db:"gig_id" json:"gig_id"`
	WorkerID  uuid.UUID `db:"worker_id" json:"worker_id"`
	ClientID  uuid.UUID `db:"client_id" json:"client_id"`
	Stars     int       `db:"stars" json:"stars"`
	Review    string    `db:"review" json:"review"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
