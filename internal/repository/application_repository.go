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
	ErrApplicationNotFound  = fmt.Errorf("application: %w", common.ErrNotFound)
	ErrDuplicateApplication = fmt.Errorf("application: %w", common.ErrAlreadyExists)
)

// ApplicationRepository отвечает за работу с откликами на гиги.
type ApplicationRepository struct {
	db *sqlx.DB
}

// NewApplicationRepository создаёт экземпляр репозитория.
func NewApplicationRepository(db *sqlx.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

// Create сохраняет отклик. На пару (gig_id, applicant_id) действует
// уникальный индекс: повторная подача возвращает ErrDuplicateApplication.
func (r *ApplicationRepository) Create(ctx context.Context, app *models.Application) error {
	query := `
		INSERT INTO applications (gig_id, applicant_id, bid_amount, skills, rating_at_submission, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		app.GigID, app.ApplicantID, app.BidAmount, app.Skills, app.RatingAtSubmission, app.Status,
	).Scan(&app.ID, &app.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrDuplicateApplication
		}
		return fmt.Errorf("application repository: create %w", err)
	}
	return nil
}

// GetByID возвращает отклик по идентификатору.
func (r *ApplicationRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Application, error) {
	return common.GetByID[models.Application](ctx, r.db, "applications", id, ErrApplicationNotFound)
}

// GetByGigAndApplicant возвращает отклик конкретного исполнителя на гиг.
func (r *ApplicationRepository) GetByGigAndApplicant(ctx context.Context, gigID, applicantID uuid.UUID) (*models.Application, error) {
	var app models.Application
	query := `SELECT * FROM applications WHERE gig_id = $1 AND applicant_id = $2`
	if err := r.db.GetContext(ctx, &app, query, gigID, applicantID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrApplicationNotFound
		}
		return nil, fmt.Errorf("application repository: get by gig and applicant %w", err)
	}
	return &app, nil
}

// ListByGig возвращает все отклики на гиг в порядке подачи.
func (r *ApplicationRepository) ListByGig(ctx context.Context, gigID uuid.UUID) ([]models.Application, error) {
	var apps []models.Application
	query := `SELECT * FROM applications WHERE gig_id = $1 ORDER BY created_at`
	if err := r.db.SelectContext(ctx, &apps, query, gigID); err != nil {
		return nil, fmt.Errorf("application repository: list by gig %w", err)
	}
	return apps, nil
}

// ListByApplicant возвращает все отклики исполнителя.
func (r *ApplicationRepository) ListByApplicant(ctx context.Context, applicantID uuid.UUID, limit, offset int) ([]models.Application, error) {
	var apps []models.Application
	query := `
		SELECT * FROM applications WHERE applicant_id = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`
	if err := r.db.SelectContext(ctx, &apps, query, applicantID, limit, offset); err != nil {
		return nil, fmt.Errorf("application repository: list by applicant %w", err)
	}
	return apps, nil
}
