package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/gig-backend/internal/models"
	"github.com/ignatzorin/gig-backend/internal/repository/common"
)

var ErrEscrowNotFound = fmt.Errorf("escrow record: %w", common.ErrNotFound)

// EscrowRepository отвечает за чтение escrow записей.
// Сами переходы funded -> released/refunded выполняются в транзакциях
// переходов гига (GigRepository.Complete, DisputeRepository.Resolve),
// чтобы состояние escrow никогда не расходилось со статусом гига.
type EscrowRepository struct {
	db *sqlx.DB
}

// NewEscrowRepository создаёт экземпляр репозитория.
func NewEscrowRepository(db *sqlx.DB) *EscrowRepository {
	return &EscrowRepository{db: db}
}

// GetByGigID возвращает escrow запись гига.
func (r *EscrowRepository) GetByGigID(ctx context.Context, gigID uuid.UUID) (*models.EscrowRecord, error) {
	return common.GetByField[models.EscrowRecord](ctx, r.db, "escrow_records", "gig_id", gigID, ErrEscrowNotFound)
}

// ListByClient возвращает escrow записи клиента.
func (r *EscrowRepository) ListByClient(ctx context.Context, clientID uuid.UUID, limit, offset int) ([]models.EscrowRecord, error) {
	var records []models.EscrowRecord
	query := `
		SELECT * FROM escrow_records WHERE client_id = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`
	if err := r.db.SelectContext(ctx, &records, query, clientID, limit, offset); err != nil {
		return nil, fmt.Errorf("escrow repository: list by client %w", err)
	}
	return records, nil
}

// TotalHeld возвращает сумму средств клиента, удержанных в активных сделках.
func (r *EscrowRepository) TotalHeld(ctx context.Context, clientID uuid.UUID) (float64, error) {
	var total float64
	query := `
		SELECT COALESCE(SUM(amount), 0) FROM escrow_records
		WHERE client_id = $1 AND state = $2
	`
	if err := r.db.GetContext(ctx, &total, query, clientID, models.EscrowStateFunded); err != nil {
		return 0, fmt.Errorf("escrow repository: total held %w", err)
	}
	return total, nil
}
