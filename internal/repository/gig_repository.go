package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/gig-backend/internal/models"
	"github.com/ignatzorin/gig-backend/internal/repository/common"
)

// Ошибки уровня репозитория. Каждая оборачивает общую ошибку из common,
// чтобы вызывающий мог проверять как конкретный sentinel, так и класс.
var (
	ErrGigNotFound = fmt.Errorf("gig: %w", common.ErrNotFound)
	// ErrStatusChanged возвращается, когда переход не нашёл гиг в ожидаемом
	// статусе: либо гонка двух команд, либо команда нелегальна для текущего
	// состояния.
	ErrStatusChanged = fmt.Errorf("gig: %w", common.ErrStaleState)
)

// GigRepository отвечает за работу с гигами и их переходами.
// Переходы, которые обязаны быть атомарными, выполняются одной транзакцией
// с compare-and-set по колонке status: UPDATE ... WHERE status = <ожидаемый>.
type GigRepository struct {
	db *sqlx.DB
}

// NewGigRepository создаёт новый экземпляр.
func NewGigRepository(db *sqlx.DB) *GigRepository {
	return &GigRepository{db: db}
}

const gigColumns = `
	id, client_id, title, description, budget, deadline_at, skills, status,
	selected_worker_id, start_date, completed_date, dispute_date, dispute_reason,
	rated, created_at, updated_at
`

// Create сохраняет гиг и его escrow запись в одной транзакции.
// Escrow создаётся сразу в состоянии funded с amount = budget:
// средства считаются удержанными в момент публикации.
func (r *GigRepository) Create(ctx context.Context, gig *models.Gig) error {
	return common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO gigs (client_id, title, description, budget, deadline_at, skills, status)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id, created_at, updated_at
		`
		if err := tx.QueryRowxContext(
			ctx,
			query,
			gig.ClientID,
			gig.Title,
			gig.Description,
			gig.Budget,
			gig.DeadlineAt,
			gig.Skills,
			gig.Status,
		).Scan(&gig.ID, &gig.CreatedAt, &gig.UpdatedAt); err != nil {
			return fmt.Errorf("gig repository: insert gig %w", err)
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO escrow_records (gig_id, client_id, amount, state)
			VALUES ($1, $2, $3, $4)
		`, gig.ID, gig.ClientID, gig.Budget, models.EscrowStateFunded); err != nil {
			return fmt.Errorf("gig repository: insert escrow %w", err)
		}

		return nil
	})
}

// GetByID возвращает гиг по идентификатору.
func (r *GigRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Gig, error) {
	var gig models.Gig
	query := `SELECT ` + gigColumns + ` FROM gigs WHERE id = $1`
	if err := r.db.GetContext(ctx, &gig, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGigNotFound
		}
		return nil, fmt.Errorf("gig repository: get by id %w", err)
	}
	return &gig, nil
}

// List возвращает гиги в заданном статусе с количеством откликов.
func (r *GigRepository) List(ctx context.Context, status string, limit, offset int) ([]models.Gig, error) {
	var gigs []models.Gig
	query := `
		SELECT g.*, COUNT(a.id) AS applications_count
		FROM gigs g
		LEFT JOIN applications a ON a.gig_id = g.id
		WHERE g.status = $1
		GROUP BY g.id
		ORDER BY g.created_at DESC
		LIMIT $2 OFFSET $3
	`
	if err := r.db.SelectContext(ctx, &gigs, query, status, limit, offset); err != nil {
		return nil, fmt.Errorf("gig repository: list %w", err)
	}
	return gigs, nil
}

// ListByClient возвращает все гиги клиента.
func (r *GigRepository) ListByClient(ctx context.Context, clientID uuid.UUID) ([]models.Gig, error) {
	var gigs []models.Gig
	query := `SELECT ` + gigColumns + ` FROM gigs WHERE client_id = $1 ORDER BY created_at DESC`
	if err := r.db.SelectContext(ctx, &gigs, query, clientID); err != nil {
		return nil, fmt.Errorf("gig repository: list by client %w", err)
	}
	return gigs, nil
}

// ListByWorker возвращает гиги, на которых пользователь выбран исполнителем.
func (r *GigRepository) ListByWorker(ctx context.Context, workerID uuid.UUID) ([]models.Gig, error) {
	var gigs []models.Gig
	query := `SELECT ` + gigColumns + ` FROM gigs WHERE selected_worker_id = $1 ORDER BY created_at DESC`
	if err := r.db.SelectContext(ctx, &gigs, query, workerID); err != nil {
		return nil, fmt.Errorf("gig repository: list by worker %w", err)
	}
	return gigs, nil
}

// AcceptApplicant атомарно выбирает исполнителя: compare-and-set
// active -> in_progress, принятие одного отклика и отклонение остальных.
// Если CAS не нашёл строку, возвращается ErrStatusChanged: ровно один из
// гонящихся вызовов выигрывает, проигравший никогда не видит частичной записи.
func (r *GigRepository) AcceptApplicant(ctx context.Context, gigID, workerID uuid.UUID, startDate time.Time) (*models.Gig, error) {
	var gig models.Gig
	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		query := `
			UPDATE gigs
			SET status = $3, selected_worker_id = $4, start_date = $5, updated_at = NOW()
			WHERE id = $1 AND status = $2
			RETURNING ` + gigColumns + `
		`
		if err := tx.GetContext(ctx, &gig, query,
			gigID, models.GigStatusActive, models.GigStatusInProgress, workerID, startDate,
		); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrStatusChanged
			}
			return fmt.Errorf("gig repository: accept applicant %w", err)
		}

		if _, err := tx.ExecContext(ctx, `
			UPDATE applications SET status = $3 WHERE gig_id = $1 AND applicant_id = $2
		`, gigID, workerID, models.ApplicationStatusAccepted); err != nil {
			return fmt.Errorf("gig repository: mark accepted application %w", err)
		}

		if _, err := tx.ExecContext(ctx, `
			UPDATE applications SET status = $3 WHERE gig_id = $1 AND applicant_id <> $2
		`, gigID, workerID, models.ApplicationStatusRejected); err != nil {
			return fmt.Errorf("gig repository: reject other applications %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}
	return &gig, nil
}

// Complete атомарно завершает гиг: compare-and-set in_progress -> completed
// и перевод escrow записи funded -> released в одной транзакции, чтобы
// инвариант "escrow терминален тогда и только тогда, когда гиг терминален"
// держался в любой момент времени.
func (r *GigRepository) Complete(ctx context.Context, gigID uuid.UUID, completedDate time.Time) (*models.Gig, error) {
	var gig models.Gig
	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		query := `
			UPDATE gigs
			SET status = $3, completed_date = $4, updated_at = NOW()
			WHERE id = $1 AND status = $2
			RETURNING ` + gigColumns + `
		`
		if err := tx.GetContext(ctx, &gig, query,
			gigID, models.GigStatusInProgress, models.GigStatusCompleted, completedDate,
		); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrStatusChanged
			}
			return fmt.Errorf("gig repository: complete %w", err)
		}

		res, err := tx.ExecContext(ctx, `
			UPDATE escrow_records SET state = $3, settled_at = $4
			WHERE gig_id = $1 AND state = $2
		`, gigID, models.EscrowStateFunded, models.EscrowStateReleased, completedDate)
		if err != nil {
			return fmt.Errorf("gig repository: release escrow %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("gig repository: release escrow rows affected %w", err)
		}
		if affected == 0 {
			return ErrStatusChanged
		}

		return nil
	})
	if err != nil {
		return nil, err
	}
	return &gig, nil
}
