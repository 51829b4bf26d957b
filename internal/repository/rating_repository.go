package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ignatzorin/gig-backend/internal/models"
	"github.com/ignatzorin/gig-backend/internal/repository/common"
)

var (
	ErrRatingNotFound = fmt.Errorf("rating: %w", common.ErrNotFound)
	// ErrGigAlreadyRated: оценка по гигу уже существует, флаг rated взведён.
	ErrGigAlreadyRated = fmt.Errorf("rating: %w", common.ErrAlreadyExists)
)

// RatingRepository отвечает за оценки исполнителей.
type RatingRepository struct {
	db *sqlx.DB
}

// NewRatingRepository создаёт экземпляр репозитория.
func NewRatingRepository(db *sqlx.DB) *RatingRepository {
	return &RatingRepository{db: db}
}

// Create сохраняет оценку и в той же транзакции взводит флаг rated на гиге
// compare-and-set'ом rated = false -> true. Повторная оценка проигрывает
// либо CAS, либо уникальному индексу по gig_id и получает ErrGigAlreadyRated.
func (r *RatingRepository) Create(ctx context.Context, rating *models.Rating) error {
	return common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE gigs SET rated = TRUE, updated_at = NOW()
			WHERE id = $1 AND rated = FALSE
		`, rating.GigID)
		if err != nil {
			return fmt.Errorf("rating repository: mark gig rated %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("rating repository: mark gig rated rows affected %w", err)
		}
		if affected == 0 {
			return ErrGigAlreadyRated
		}

		query := `
			INSERT INTO ratings (gig_id, worker_id, client_id, stars, review)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id, created_at
		`
		if err := tx.QueryRowxContext(ctx, query,
			rating.GigID, rating.WorkerID, rating.ClientID, rating.Stars, rating.Review,
		).Scan(&rating.ID, &rating.CreatedAt); err != nil {
			var pqErr *pq.Error
			if errors.As(err, &pqErr) && pqErr.Code == "23505" {
				return ErrGigAlreadyRated
			}
			return fmt.Errorf("rating repository: create %w", err)
		}

		return nil
	})
}

// GetByGigID возвращает оценку гига.
func (r *RatingRepository) GetByGigID(ctx context.Context, gigID uuid.UUID) (*models.Rating, error) {
	return common.GetByField[models.Rating](ctx, r.db, "ratings", "gig_id", gigID, ErrRatingNotFound)
}

// ListByWorker возвращает оценки исполнителя.
func (r *RatingRepository) ListByWorker(ctx context.Context, workerID uuid.UUID, limit, offset int) ([]models.Rating, error) {
	var ratings []models.Rating
	query := `
		SELECT * FROM ratings WHERE worker_id = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`
	if err := r.db.SelectContext(ctx, &ratings, query, workerID, limit, offset); err != nil {
		return nil, fmt.Errorf("rating repository: list by worker %w", err)
	}
	return ratings, nil
}

// GetAverageForWorker возвращает средний балл и количество оценок исполнителя.
func (r *RatingRepository) GetAverageForWorker(ctx context.Context, workerID uuid.UUID) (float64, int, error) {
	var result struct {
		Avg   sql.NullFloat64 `db:"avg"`
		Count int             `db:"count"`
	}
	err := r.db.GetContext(ctx, &result, `
		SELECT COALESCE(AVG(stars), 0) as avg, COUNT(*) as count FROM ratings WHERE worker_id = $1
	`, workerID)
	if err != nil {
		return 0, 0, fmt.Errorf("rating repository: get average %w", err)
	}
	return result.Avg.Float64, result.Count, nil
}
