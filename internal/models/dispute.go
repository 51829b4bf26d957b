package models

import (
	"time"

	"github.com/google/uuid"
)

// Исходы арбитража. Движок применяет решение, но не принимает его.
const (
	DisputeOutcomeComplete = "complete"
	DisputeOutcomeRefund   = "refund"
)

// Dispute представляет оспоренный гиг, ожидающий решения арбитра.
// Не более одного открытого спора на гиг; resolution устанавливается один раз.
type Dispute struct {
	ID         uuid.UUID  `db:"id" json:"id"`
	GigID      uuid.UUID  `db:"gig_id" json:"gig_id"`
	RaisedBy   uuid.UUID  `db:"raised_by" json:"raised_by"`
	Reason     string     `db:"reason" json:"reason"`
	OpenedAt   time.Time  `db:"opened_at" json:"opened_at"`
	Outcome    *string    `db:"outcome" json:"outcome,omitempty"`
	Resolution *string    `db:"resolution" json:"resolution,omitempty"`
	ResolvedBy *uuid.UUID `db:"resolved_by" json:"resolved_by,omitempty"`
	ResolvedAt *time.Time `db:"resolved_at" json:"resolved_at,omitempty"`
}

// IsResolved сообщает, завершён ли спор.
func (d *Dispute) IsResolved() bool {
	return d.ResolvedAt != nil
}

// DisputeEvidence описывает файл, приложенный стороной к открытому спору.
type DisputeEvidence struct {
	ID         uuid.UUID `db:"id" json:"id"`
	DisputeID  uuid.UUID `db:"dispute_id" json:"dispute_id"`
	UploadedBy uuid.UUID `db:"uploaded_by" json:"uploaded_by"`
	FilePath   string    `db:"file_path" json:"file_path"`
	FileType   string    `db:"file_type" json:"file_type"`
	FileSize   int64     `db:"file_size" json:"file_size"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
