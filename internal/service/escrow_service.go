package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/ignatzorin/gig-backend/internal/models"
	"github.com/ignatzorin/gig-backend/internal/pkg/apperror"
	"github.com/ignatzorin/gig-backend/internal/repository"
)

// EscrowStore описывает зависимости EscrowService от хранилища.
// Состояния escrow меняются только транзакциями переходов гига,
// поэтому хранилище здесь только читает.
type EscrowStore interface {
	GetByGigID(ctx context.Context, gigID uuid.UUID) (*models.EscrowRecord, error)
	ListByClient(ctx context.Context, clientID uuid.UUID, limit, offset int) ([]models.EscrowRecord, error)
	TotalHeld(ctx context.Context, clientID uuid.UUID) (float64, error)
}

// EscrowGigStore нужен для проверки доступа к escrow записи.
type EscrowGigStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Gig, error)
}

// EscrowService отдаёт состояние удержанных средств сторонам сделки.
type EscrowService struct {
	escrows EscrowStore
	gigs    EscrowGigStore
}

// NewEscrowService создаёт сервис.
func NewEscrowService(escrows EscrowStore, gigs EscrowGigStore) *EscrowService {
	return &EscrowService{escrows: escrows, gigs: gigs}
}

// GetForGig возвращает escrow запись гига. Доступна только сторонам сделки.
func (s *EscrowService) GetForGig(ctx context.Context, gigID, actorID uuid.UUID) (*models.EscrowRecord, error) {
	gig, err := s.gigs.GetByID(ctx, gigID)
	if err != nil {
		if errors.Is(err, repository.ErrGigNotFound) {
			return nil, apperror.ErrGigNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить гиг")
	}
	if !gig.IsParticipant(actorID) {
		return nil, apperror.New(apperror.ErrCodeForbidden, "escrow виден только сторонам сделки")
	}

	record, err := s.escrows.GetByGigID(ctx, gigID)
	if err != nil {
		if errors.Is(err, repository.ErrEscrowNotFound) {
			return nil, apperror.ErrEscrowNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить escrow запись")
	}
	return record, nil
}

// ListForClient возвращает escrow записи клиента.
func (s *EscrowService) ListForClient(ctx context.Context, clientID uuid.UUID, limit, offset int) ([]models.EscrowRecord, error) {
	records, err := s.escrows.ListByClient(ctx, clientID, limit, offset)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить escrow записи")
	}
	return records, nil
}

// TotalHeld возвращает сумму средств клиента, удержанных под активные сделки.
func (s *EscrowService) TotalHeld(ctx context.Context, clientID uuid.UUID) (float64, error) {
	total, err := s.escrows.TotalHeld(ctx, clientID)
	if err != nil {
		return 0, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось посчитать удержанные средства")
	}
	return total, nil
}
