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

var (
	ErrDisputeNotFound = fmt.Errorf("dispute: %w", common.ErrNotFound)
	// ErrDisputeResolved: resolution уже установлена, повторное разрешение
	// не находит строку с resolved_at IS NULL.
	ErrDisputeResolved = fmt.Errorf("dispute: %w", common.ErrStaleState)
)

// DisputeRepository отвечает за споры и их разрешение.
// Открытие и разрешение спора меняют статус гига, поэтому выполняются
// одной транзакцией с compare-and-set, как переходы в GigRepository.
type DisputeRepository struct {
	db *sqlx.DB
}

// NewDisputeRepository создаёт экземпляр репозитория.
func NewDisputeRepository(db *sqlx.DB) *DisputeRepository {
	return &DisputeRepository{db: db}
}

// Open атомарно открывает спор: переводит гиг из fromStatus в disputed и
// создаёт запись спора. Проигравший гонку получает ErrStatusChanged.
func (r *DisputeRepository) Open(ctx context.Context, d *models.Dispute, fromStatus string) error {
	return common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE gigs
			SET status = $3, dispute_date = $4, dispute_reason = $5, updated_at = NOW()
			WHERE id = $1 AND status = $2
		`, d.GigID, fromStatus, models.GigStatusDisputed, d.OpenedAt, d.Reason)
		if err != nil {
			return fmt.Errorf("dispute repository: mark gig disputed %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("dispute repository: mark gig disputed rows affected %w", err)
		}
		if affected == 0 {
			return ErrStatusChanged
		}

		query := `
			INSERT INTO disputes (gig_id, raised_by, reason, opened_at)
			VALUES ($1, $2, $3, $4)
			RETURNING id
		`
		if err := tx.QueryRowxContext(ctx, query,
			d.GigID, d.RaisedBy, d.Reason, d.OpenedAt,
		).Scan(&d.ID); err != nil {
			return fmt.Errorf("dispute repository: create %w", err)
		}

		return nil
	})
}

// Resolve атомарно применяет решение арбитра: устанавливает resolution
// (ровно один раз), переводит гиг disputed -> completed|refunded и
// закрывает escrow released|refunded. Всё в одной транзакции.
func (r *DisputeRepository) Resolve(ctx context.Context, gigID, arbiterID uuid.UUID, outcome, resolution string, resolvedAt time.Time) (*models.Dispute, error) {
	gigStatus := models.GigStatusCompleted
	escrowState := models.EscrowStateReleased
	// completed_date получает только исход complete: возврат средств
	// завершением работы не является.
	var completedDate *time.Time
	if outcome == models.DisputeOutcomeRefund {
		gigStatus = models.GigStatusRefunded
		escrowState = models.EscrowStateRefunded
	} else {
		completedDate = &resolvedAt
	}

	var dispute models.Dispute
	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		// resolution устанавливается один раз: resolved_at IS NULL в условии
		query := `
			UPDATE disputes
			SET outcome = $2, resolution = $3, resolved_by = $4, resolved_at = $5
			WHERE gig_id = $1 AND resolved_at IS NULL
			RETURNING *
		`
		if err := tx.GetContext(ctx, &dispute, query,
			gigID, outcome, resolution, arbiterID, resolvedAt,
		); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrDisputeResolved
			}
			return fmt.Errorf("dispute repository: resolve %w", err)
		}

		res, err := tx.ExecContext(ctx, `
			UPDATE gigs SET status = $3, completed_date = $4, updated_at = NOW()
			WHERE id = $1 AND status = $2
		`, gigID, models.GigStatusDisputed, gigStatus, completedDate)
		if err != nil {
			return fmt.Errorf("dispute repository: transition gig %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("dispute repository: transition gig rows affected %w", err)
		}
		if affected == 0 {
			return ErrStatusChanged
		}

		res, err = tx.ExecContext(ctx, `
			UPDATE escrow_records SET state = $3, settled_at = $4
			WHERE gig_id = $1 AND state = $2
		`, gigID, models.EscrowStateFunded, escrowState, resolvedAt)
		if err != nil {
			return fmt.Errorf("dispute repository: settle escrow %w", err)
		}
		affected, err = res.RowsAffected()
		if err != nil {
			return fmt.Errorf("dispute repository: settle escrow rows affected %w", err)
		}
		if affected == 0 {
			return ErrStatusChanged
		}

		return nil
	})
	if err != nil {
		return nil, err
	}
	return &dispute, nil
}

// GetByGigID возвращает спор по гигу.
func (r *DisputeRepository) GetByGigID(ctx context.Context, gigID uuid.UUID) (*models.Dispute, error) {
	return common.GetByField[models.Dispute](ctx, r.db, "disputes", "gig_id", gigID, ErrDisputeNotFound)
}

// GetByID возвращает спор по идентификатору.
func (r *DisputeRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Dispute, error) {
	return common.GetByID[models.Dispute](ctx, r.db, "disputes", id, ErrDisputeNotFound)
}

// ListByUser возвращает споры, в которых пользователь участвует как
// сторона гига.
func (r *DisputeRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Dispute, error) {
	var disputes []models.Dispute
	err := r.db.SelectContext(ctx, &disputes, `
		SELECT d.* FROM disputes d
		JOIN gigs g ON d.gig_id = g.id
		WHERE g.client_id = $1 OR g.selected_worker_id = $1
		ORDER BY d.opened_at DESC LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("dispute repository: list by user %w", err)
	}
	return disputes, nil
}

// AddEvidence сохраняет метаданные файла, приложенного к спору.
func (r *DisputeRepository) AddEvidence(ctx context.Context, e *models.DisputeEvidence) error {
	query := `
		INSERT INTO dispute_evidence (dispute_id, uploaded_by, file_path, file_type, file_size)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	if err := r.db.QueryRowxContext(ctx, query,
		e.DisputeID, e.UploadedBy, e.FilePath, e.FileType, e.FileSize,
	).Scan(&e.ID, &e.CreatedAt); err != nil {
		return fmt.Errorf("dispute repository: add evidence %w", err)
	}
	return nil
}

// ListEvidence возвращает файлы спора в порядке загрузки.
func (r *DisputeRepository) ListEvidence(ctx context.Context, disputeID uuid.UUID) ([]models.DisputeEvidence, error) {
	var evidence []models.DisputeEvidence
	query := `SELECT * FROM dispute_evidence WHERE dispute_id = $1 ORDER BY created_at`
	if err := r.db.SelectContext(ctx, &evidence, query, disputeID); err != nil {
		return nil, fmt.Errorf("dispute repository: list evidence %w", err)
	}
	return evidence, nil
}
