package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/ignatzorin/gig-backend/internal/models"
	"github.com/ignatzorin/gig-backend/internal/pkg/apperror"
	"github.com/ignatzorin/gig-backend/internal/repository"
)

type mockEscrowStore struct {
	mock.Mock
}

func (m *mockEscrowStore) GetByGigID(ctx context.Context, gigID uuid.UUID) (*models.EscrowRecord, error) {
	args := m.Called(ctx, gigID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.EscrowRecord), args.Error(1)
}

func (m *mockEscrowStore) ListByClient(ctx context.Context, clientID uuid.UUID, limit, offset int) ([]models.EscrowRecord, error) {
	args := m.Called(ctx, clientID, limit, offset)
	return args.Get(0).([]models.EscrowRecord), args.Error(1)
}

func (m *mockEscrowStore) TotalHeld(ctx context.Context, clientID uuid.UUID) (float64, error) {
	args := m.Called(ctx, clientID)
	return args.Get(0).(float64), args.Error(1)
}

type mockEscrowGigStore struct {
	mock.Mock
}

func (m *mockEscrowGigStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Gig, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Gig), args.Error(1)
}

func TestEscrowService_GetForGig_Client(t *testing.T) {
	escrows := new(mockEscrowStore)
	gigs := new(mockEscrowGigStore)
	svc := NewEscrowService(escrows, gigs)
	ctx := context.Background()

	clientID := uuid.New()
	gig := &models.Gig{ID: uuid.New(), ClientID: clientID, Status: models.GigStatusActive}
	record := &models.EscrowRecord{GigID: gig.ID, ClientID: clientID, Amount: 500, State: models.EscrowStateFunded}

	gigs.On("GetByID", ctx, gig.ID).Return(gig, nil)
	escrows.On("GetByGigID", ctx, gig.ID).Return(record, nil)

	result, err := svc.GetForGig(ctx, gig.ID, clientID)

	assert.NoError(t, err)
	assert.Equal(t, models.EscrowStateFunded, result.State)
	assert.Equal(t, 500.0, result.Amount)
}

func TestEscrowService_GetForGig_Worker(t *testing.T) {
	escrows := new(mockEscrowStore)
	gigs := new(mockEscrowGigStore)
	svc := NewEscrowService(escrows, gigs)
	ctx := context.Background()

	workerID := uuid.New()
	gig := &models.Gig{
		ID:               uuid.New(),
		ClientID:         uuid.New(),
		Status:           models.GigStatusInProgress,
		SelectedWorkerID: &workerID,
	}

	gigs.On("GetByID", ctx, gig.ID).Return(gig, nil)
	escrows.On("GetByGigID", ctx, gig.ID).Return(&models.EscrowRecord{GigID: gig.ID}, nil)

	_, err := svc.GetForGig(ctx, gig.ID, workerID)
	assert.NoError(t, err)
}

func TestEscrowService_GetForGig_Outsider(t *testing.T) {
	escrows := new(mockEscrowStore)
	gigs := new(mockEscrowGigStore)
	svc := NewEscrowService(escrows, gigs)
	ctx := context.Background()

	gig := &models.Gig{ID: uuid.New(), ClientID: uuid.New(), Status: models.GigStatusActive}

	gigs.On("GetByID", ctx, gig.ID).Return(gig, nil)

	_, err := svc.GetForGig(ctx, gig.ID, uuid.New())
	assert.True(t, apperror.IsForbidden(err))
	escrows.AssertNotCalled(t, "GetByGigID", mock.Anything, mock.Anything)
}

func TestEscrowService_GetForGig_GigNotFound(t *testing.T) {
	escrows := new(mockEscrowStore)
	gigs := new(mockEscrowGigStore)
	svc := NewEscrowService(escrows, gigs)
	ctx := context.Background()

	gigID := uuid.New()
	gigs.On("GetByID", ctx, gigID).Return(nil, repository.ErrGigNotFound)

	_, err := svc.GetForGig(ctx, gigID, uuid.New())
	assert.True(t, apperror.IsNotFound(err))
}

func TestEscrowService_TotalHeld(t *testing.T) {
	escrows := new(mockEscrowStore)
	svc := NewEscrowService(escrows, new(mockEscrowGigStore))
	ctx := context.Background()

	clientID := uuid.New()
	escrows.On("TotalHeld", ctx, clientID).Return(1250.5, nil)

	total, err := svc.TotalHeld(ctx, clientID)

	assert.NoError(t, err)
	assert.Equal(t, 1250.5, total)
}
