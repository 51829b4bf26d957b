package models

import (
	"time"

	"github.com/google/uuid"
)

// Состояния escrow записи. Pending предусмотрен для хранилищ, которые
// фондируют сделку асинхронно; движок создаёт запись сразу в funded.
const (
	EscrowStatePending  = "pending"
	EscrowStateFunded   = "funded"
	EscrowStateReleased = "released"
	EscrowStateRefunded = "refunded"
)

// EscrowRecord представляет средства, удержанные под бюджет гига.
// Ровно одна запись на гиг; released и refunded терминальны.
type EscrowRecord struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	GigID     uuid.UUID  `db:"gig_id" json:"gig_id"`
	ClientID  uuid.UUID  `db:"client_id" json:"client_id"`
	Amount    float64    `db:"amount" json:"amount"`
	State     string     `db:"state" json:"state"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	SettledAt *time.Time `db:"settled_at" json:"settled_at,omitempty"`
}
