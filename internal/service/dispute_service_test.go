package service

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/ignatzorin/gig-backend/internal/models"
	"github.com/ignatzorin/gig-backend/internal/pkg/apperror"
	"github.com/ignatzorin/gig-backend/internal/repository"
)

type mockDisputeReadStore struct {
	mock.Mock
}

func (m *mockDisputeReadStore) GetByGigID(ctx context.Context, gigID uuid.UUID) (*models.Dispute, error) {
	args := m.Called(ctx, gigID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Dispute), args.Error(1)
}

func (m *mockDisputeReadStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Dispute, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Dispute), args.Error(1)
}

func (m *mockDisputeReadStore) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Dispute, error) {
	args := m.Called(ctx, userID, limit, offset)
	return args.Get(0).([]models.Dispute), args.Error(1)
}

func (m *mockDisputeReadStore) AddEvidence(ctx context.Context, e *models.DisputeEvidence) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *mockDisputeReadStore) ListEvidence(ctx context.Context, disputeID uuid.UUID) ([]models.DisputeEvidence, error) {
	args := m.Called(ctx, disputeID)
	return args.Get(0).([]models.DisputeEvidence), args.Error(1)
}

type mockDisputeGigStore struct {
	mock.Mock
}

func (m *mockDisputeGigStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Gig, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Gig), args.Error(1)
}

type mockEvidenceSaver struct {
	mock.Mock
}

func (m *mockEvidenceSaver) Save(ctx context.Context, gigID uuid.UUID, originalName string, r io.Reader) (string, int64, error) {
	// Вычитываем поток, как это делает настоящее хранилище
	n, _ := io.Copy(io.Discard, r)
	args := m.Called(ctx, gigID, originalName)
	return args.String(0), n, args.Error(1)
}

func (m *mockEvidenceSaver) Delete(ctx context.Context, relativePath string) error {
	args := m.Called(ctx, relativePath)
	return args.Error(0)
}

// Минимальный валидный PNG заголовок
var pngHeader = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}

func TestDisputeService_GetForGig_Participant(t *testing.T) {
	disputes := new(mockDisputeReadStore)
	gigs := new(mockDisputeGigStore)
	svc := NewDisputeService(disputes, gigs, new(mockEvidenceSaver))
	ctx := context.Background()

	clientID := uuid.New()
	gig := &models.Gig{ID: uuid.New(), ClientID: clientID, Status: models.GigStatusDisputed}
	dispute := &models.Dispute{GigID: gig.ID, RaisedBy: clientID}

	gigs.On("GetByID", ctx, gig.ID).Return(gig, nil)
	disputes.On("GetByGigID", ctx, gig.ID).Return(dispute, nil)

	result, err := svc.GetForGig(ctx, gig.ID, clientID, models.RoleClient)

	assert.NoError(t, err)
	assert.Equal(t, gig.ID, result.GigID)
}

func TestDisputeService_GetForGig_Arbiter(t *testing.T) {
	disputes := new(mockDisputeReadStore)
	gigs := new(mockDisputeGigStore)
	svc := NewDisputeService(disputes, gigs, new(mockEvidenceSaver))
	ctx := context.Background()

	gig := &models.Gig{ID: uuid.New(), ClientID: uuid.New(), Status: models.GigStatusDisputed}

	gigs.On("GetByID", ctx, gig.ID).Return(gig, nil)
	disputes.On("GetByGigID", ctx, gig.ID).Return(&models.Dispute{GigID: gig.ID}, nil)

	// Арбитр не сторона сделки, но спор ему виден
	_, err := svc.GetForGig(ctx, gig.ID, uuid.New(), models.RoleArbiter)
	assert.NoError(t, err)
}

func TestDisputeService_GetForGig_Outsider(t *testing.T) {
	disputes := new(mockDisputeReadStore)
	gigs := new(mockDisputeGigStore)
	svc := NewDisputeService(disputes, gigs, new(mockEvidenceSaver))
	ctx := context.Background()

	gig := &models.Gig{ID: uuid.New(), ClientID: uuid.New(), Status: models.GigStatusDisputed}

	gigs.On("GetByID", ctx, gig.ID).Return(gig, nil)

	_, err := svc.GetForGig(ctx, gig.ID, uuid.New(), models.RoleWorker)
	assert.True(t, apperror.IsForbidden(err))
	disputes.AssertNotCalled(t, "GetByGigID", mock.Anything, mock.Anything)
}

func TestDisputeService_UploadEvidence_PNG(t *testing.T) {
	disputes := new(mockDisputeReadStore)
	gigs := new(mockDisputeGigStore)
	storage := new(mockEvidenceSaver)
	svc := NewDisputeService(disputes, gigs, storage)
	ctx := context.Background()

	clientID := uuid.New()
	gig := &models.Gig{ID: uuid.New(), ClientID: clientID, Status: models.GigStatusDisputed}
	dispute := &models.Dispute{ID: uuid.New(), GigID: gig.ID}

	disputes.On("GetByID", ctx, dispute.ID).Return(dispute, nil)
	gigs.On("GetByID", ctx, gig.ID).Return(gig, nil)
	storage.On("Save", ctx, gig.ID, "screenshot.png").Return("disputes/abc.png", nil)
	disputes.On("AddEvidence", ctx, mock.AnythingOfType("*models.DisputeEvidence")).Return(nil)

	payload := append(append([]byte{}, pngHeader...), bytes.Repeat([]byte{0}, 100)...)
	evidence, err := svc.UploadEvidence(ctx, dispute.ID, clientID, "screenshot.png", bytes.NewReader(payload))

	assert.NoError(t, err)
	assert.Equal(t, "image/png", evidence.FileType)
	assert.Equal(t, "disputes/abc.png", evidence.FilePath)
	assert.Equal(t, int64(len(payload)), evidence.FileSize)
	disputes.AssertExpectations(t)
}

func TestDisputeService_UploadEvidence_UnknownType(t *testing.T) {
	disputes := new(mockDisputeReadStore)
	gigs := new(mockDisputeGigStore)
	storage := new(mockEvidenceSaver)
	svc := NewDisputeService(disputes, gigs, storage)
	ctx := context.Background()

	clientID := uuid.New()
	gig := &models.Gig{ID: uuid.New(), ClientID: clientID, Status: models.GigStatusDisputed}
	dispute := &models.Dispute{ID: uuid.New(), GigID: gig.ID}

	disputes.On("GetByID", ctx, dispute.ID).Return(dispute, nil)
	gigs.On("GetByID", ctx, gig.ID).Return(gig, nil)

	// Тип определяется по магическим байтам, переименование не спасёт
	_, err := svc.UploadEvidence(ctx, dispute.ID, clientID, "notes.png", bytes.NewReader([]byte("просто текст, не изображение")))

	assert.True(t, apperror.IsValidation(err))
	storage.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything)
}

func TestDisputeService_UploadEvidence_DisallowedType(t *testing.T) {
	disputes := new(mockDisputeReadStore)
	gigs := new(mockDisputeGigStore)
	storage := new(mockEvidenceSaver)
	svc := NewDisputeService(disputes, gigs, storage)
	ctx := context.Background()

	clientID := uuid.New()
	gig := &models.Gig{ID: uuid.New(), ClientID: clientID, Status: models.GigStatusDisputed}
	dispute := &models.Dispute{ID: uuid.New(), GigID: gig.ID}

	disputes.On("GetByID", ctx, dispute.ID).Return(dispute, nil)
	gigs.On("GetByID", ctx, gig.ID).Return(gig, nil)

	// ELF бинарник распознаётся, но не входит в список допустимых
	elf := append([]byte{0x7F, 0x45, 0x4C, 0x46, 0x02, 0x01, 0x01, 0x00}, bytes.Repeat([]byte{0}, 60)...)
	_, err := svc.UploadEvidence(ctx, dispute.ID, clientID, "payload.png", bytes.NewReader(elf))

	assert.True(t, apperror.IsValidation(err))
}

func TestDisputeService_UploadEvidence_ResolvedDispute(t *testing.T) {
	disputes := new(mockDisputeReadStore)
	gigs := new(mockDisputeGigStore)
	svc := NewDisputeService(disputes, gigs, new(mockEvidenceSaver))
	ctx := context.Background()

	resolvedAt := time.Now()
	dispute := &models.Dispute{ID: uuid.New(), GigID: uuid.New(), ResolvedAt: &resolvedAt}

	disputes.On("GetByID", ctx, dispute.ID).Return(dispute, nil)

	_, err := svc.UploadEvidence(ctx, dispute.ID, uuid.New(), "late.png", bytes.NewReader(pngHeader))
	assert.True(t, apperror.IsInvalidState(err))
}

func TestDisputeService_UploadEvidence_DBFailureCleansFile(t *testing.T) {
	disputes := new(mockDisputeReadStore)
	gigs := new(mockDisputeGigStore)
	storage := new(mockEvidenceSaver)
	svc := NewDisputeService(disputes, gigs, storage)
	ctx := context.Background()

	clientID := uuid.New()
	gig := &models.Gig{ID: uuid.New(), ClientID: clientID, Status: models.GigStatusDisputed}
	dispute := &models.Dispute{ID: uuid.New(), GigID: gig.ID}

	disputes.On("GetByID", ctx, dispute.ID).Return(dispute, nil)
	gigs.On("GetByID", ctx, gig.ID).Return(gig, nil)
	storage.On("Save", ctx, gig.ID, "doc.png").Return("disputes/doc.png", nil)
	disputes.On("AddEvidence", ctx, mock.Anything).Return(assert.AnError)
	storage.On("Delete", ctx, "disputes/doc.png").Return(nil)

	_, err := svc.UploadEvidence(ctx, dispute.ID, clientID, "doc.png", bytes.NewReader(pngHeader))

	assert.Error(t, err)
	storage.AssertCalled(t, "Delete", ctx, "disputes/doc.png")
}

func TestDisputeService_ListEvidence_OutsiderForbidden(t *testing.T) {
	disputes := new(mockDisputeReadStore)
	gigs := new(mockDisputeGigStore)
	svc := NewDisputeService(disputes, gigs, new(mockEvidenceSaver))
	ctx := context.Background()

	gig := &models.Gig{ID: uuid.New(), ClientID: uuid.New(), Status: models.GigStatusDisputed}
	dispute := &models.Dispute{ID: uuid.New(), GigID: gig.ID}

	disputes.On("GetByID", ctx, dispute.ID).Return(dispute, nil)
	gigs.On("GetByID", ctx, gig.ID).Return(gig, nil)

	_, err := svc.ListEvidence(ctx, dispute.ID, uuid.New(), models.RoleWorker)
	assert.True(t, apperror.IsForbidden(err))
}

func TestDisputeService_GetForGig_NotFound(t *testing.T) {
	disputes := new(mockDisputeReadStore)
	gigs := new(mockDisputeGigStore)
	svc := NewDisputeService(disputes, gigs, new(mockEvidenceSaver))
	ctx := context.Background()

	clientID := uuid.New()
	gig := &models.Gig{ID: uuid.New(), ClientID: clientID, Status: models.GigStatusActive}

	gigs.On("GetByID", ctx, gig.ID).Return(gig, nil)
	disputes.On("GetByGigID", ctx, gig.ID).Return(nil, repository.ErrDisputeNotFound)

	_, err := svc.GetForGig(ctx, gig.ID, clientID, models.RoleClient)
	assert.True(t, apperror.IsNotFound(err))
}
