package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/ignatzorin/gig-backend/internal/models"
	"github.com/ignatzorin/gig-backend/internal/pkg/apperror"
	"github.com/ignatzorin/gig-backend/internal/repository"
)

// RatingReadStore описывает зависимости RatingService от хранилища.
// Создание оценки проходит через LifecycleService: здесь только чтение.
type RatingReadStore interface {
	GetByGigID(ctx context.Context, gigID uuid.UUID) (*models.Rating, error)
	ListByWorker(ctx context.Context, workerID uuid.UUID, limit, offset int) ([]models.Rating, error)
	GetAverageForWorker(ctx context.Context, workerID uuid.UUID) (float64, int, error)
}

// WorkerRatingSummary агрегирует репутацию исполнителя.
type WorkerRatingSummary struct {
	WorkerID uuid.UUID `json:"worker_id"`
	Average  float64   `json:"average"`
	Count    int       `json:"count"`
}

// RatingService отдаёт оценки и агрегаты репутации.
type RatingService struct {
	ratings RatingReadStore
}

// NewRatingService создаёт сервис.
func NewRatingService(ratings RatingReadStore) *RatingService {
	return &RatingService{ratings: ratings}
}

// GetForGig возвращает оценку гига.
func (s *RatingService) GetForGig(ctx context.Context, gigID uuid.UUID) (*models.Rating, error) {
	rating, err := s.ratings.GetByGigID(ctx, gigID)
	if err != nil {
		if errors.Is(err, repository.ErrRatingNotFound) {
			return nil, apperror.ErrRatingNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить оценку")
	}
	return rating, nil
}

// ListForWorker возвращает оценки исполнителя.
func (s *RatingService) ListForWorker(ctx context.Context, workerID uuid.UUID, limit, offset int) ([]models.Rating, error) {
	ratings, err := s.ratings.ListByWorker(ctx, workerID, limit, offset)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить оценки исполнителя")
	}
	return ratings, nil
}

// GetWorkerSummary возвращает средний рейтинг и число оценок исполнителя.
func (s *RatingService) GetWorkerSummary(ctx context.Context, workerID uuid.UUID) (*WorkerRatingSummary, error) {
	avg, count, err := s.ratings.GetAverageForWorker(ctx, workerID)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось посчитать рейтинг исполнителя")
	}
	return &WorkerRatingSummary{
		WorkerID: workerID,
		Average:  avg,
		Count:    count,
	}, nil
}
