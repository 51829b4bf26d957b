package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/ignatzorin/gig-backend/internal/models"
)

var disputeRowColumns = []string{
	"id", "gig_id", "raised_by", "reason", "opened_at",
	"outcome", "resolution", "resolved_by", "resolved_at",
}

func TestDisputeRepository_Open_Success(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewDisputeRepository(db)
	ctx := context.Background()

	d := &models.Dispute{
		GigID:    uuid.New(),
		RaisedBy: uuid.New(),
		Reason:   "оплата задерживается",
		OpenedAt: time.Now(),
	}
	disputeID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE gigs")).
		WithArgs(d.GigID, models.GigStatusInProgress, models.GigStatusDisputed, d.OpenedAt, d.Reason).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO disputes")).
		WithArgs(d.GigID, d.RaisedBy, d.Reason, d.OpenedAt).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(disputeID))
	mock.ExpectCommit()

	err := repo.Open(ctx, d, models.GigStatusInProgress)

	assert.NoError(t, err)
	assert.Equal(t, disputeID, d.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDisputeRepository_Open_GigAlreadyMoved(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewDisputeRepository(db)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE gigs")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.Open(ctx, &models.Dispute{GigID: uuid.New(), OpenedAt: time.Now()}, models.GigStatusActive)

	assert.ErrorIs(t, err, ErrStatusChanged)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDisputeRepository_Resolve_Refund(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewDisputeRepository(db)
	ctx := context.Background()

	gigID := uuid.New()
	arbiterID := uuid.New()
	resolvedAt := time.Now()
	outcome := models.DisputeOutcomeRefund
	resolution := "возврат заказчику"

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE disputes")).
		WithArgs(gigID, outcome, resolution, arbiterID, resolvedAt).
		WillReturnRows(sqlmock.NewRows(disputeRowColumns).AddRow(
			uuid.New(), gigID, uuid.New(), "оплата задерживается", resolvedAt.Add(-time.Hour),
			outcome, resolution, arbiterID, resolvedAt,
		))
	// возврат не является завершением работы: completed_date остаётся пустым
	mock.ExpectExec(regexp.QuoteMeta("UPDATE gigs")).
		WithArgs(gigID, models.GigStatusDisputed, models.GigStatusRefunded, nil).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE escrow_records")).
		WithArgs(gigID, models.EscrowStateFunded, models.EscrowStateRefunded, resolvedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	dispute, err := repo.Resolve(ctx, gigID, arbiterID, outcome, resolution, resolvedAt)

	assert.NoError(t, err)
	assert.True(t, dispute.IsResolved())
	assert.Equal(t, outcome, *dispute.Outcome)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDisputeRepository_Resolve_AlreadyResolved(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewDisputeRepository(db)
	ctx := context.Background()

	// resolution устанавливается один раз: второй вызов не находит строку
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE disputes")).
		WillReturnRows(sqlmock.NewRows(disputeRowColumns))
	mock.ExpectRollback()

	_, err := repo.Resolve(ctx, uuid.New(), uuid.New(), models.DisputeOutcomeComplete, "повторно", time.Now())

	assert.ErrorIs(t, err, ErrDisputeResolved)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDisputeRepository_Resolve_CompleteReleasesEscrow(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewDisputeRepository(db)
	ctx := context.Background()

	gigID := uuid.New()
	arbiterID := uuid.New()
	resolvedAt := time.Now()
	outcome := models.DisputeOutcomeComplete

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE disputes")).
		WillReturnRows(sqlmock.NewRows(disputeRowColumns).AddRow(
			uuid.New(), gigID, uuid.New(), "спор", resolvedAt.Add(-time.Hour),
			outcome, "работа принята", arbiterID, resolvedAt,
		))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE gigs")).
		WithArgs(gigID, models.GigStatusDisputed, models.GigStatusCompleted, resolvedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE escrow_records")).
		WithArgs(gigID, models.EscrowStateFunded, models.EscrowStateReleased, resolvedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	_, err := repo.Resolve(ctx, gigID, arbiterID, outcome, "работа принята", resolvedAt)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
