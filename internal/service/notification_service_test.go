package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/ignatzorin/gig-backend/internal/models"
)

type mockNotificationStore struct {
	mock.Mock
}

func (m *mockNotificationStore) Create(ctx context.Context, n *models.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func (m *mockNotificationStore) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.Notification, error) {
	args := m.Called(ctx, userID, limit)
	return args.Get(0).([]models.Notification), args.Error(1)
}

func (m *mockNotificationStore) MarkRead(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) error {
	args := m.Called(ctx, userID, ids)
	return args.Error(0)
}

func (m *mockNotificationStore) CountUnread(ctx context.Context, userID uuid.UUID) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

type mockUserNotifier struct {
	mock.Mock
}

func (m *mockUserNotifier) NotifyUser(userID uuid.UUID, event string, data any) error {
	args := m.Called(userID, event, data)
	return args.Error(0)
}

func TestNotificationService_CreateNotification(t *testing.T) {
	repo := new(mockNotificationStore)
	svc := NewNotificationService(repo, nil)
	ctx := context.Background()

	userID := uuid.New()
	repo.On("Create", ctx, mock.MatchedBy(func(n *models.Notification) bool {
		return n.UserID == userID && n.Event == models.EventGigAccepted
	})).Return(nil)

	err := svc.CreateNotification(ctx, userID, models.EventGigAccepted, map[string]string{"gig_id": uuid.NewString()})

	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestNotificationService_HandleGigEvent_BothParties(t *testing.T) {
	notifier := new(mockUserNotifier)
	svc := NewNotificationService(new(mockNotificationStore), notifier)

	clientID := uuid.New()
	workerID := uuid.New()
	event := models.GigEvent{
		GigID:    uuid.New(),
		ClientID: clientID,
		WorkerID: &workerID,
		Status:   models.GigStatusInProgress,
	}

	notifier.On("NotifyUser", clientID, models.EventGigAccepted, event).Return(nil)
	notifier.On("NotifyUser", workerID, models.EventGigAccepted, event).Return(nil)

	svc.HandleGigEvent(models.EventGigAccepted, event)

	notifier.AssertExpectations(t)
}

func TestNotificationService_HandleGigEvent_NoWorkerYet(t *testing.T) {
	notifier := new(mockUserNotifier)
	svc := NewNotificationService(new(mockNotificationStore), notifier)

	clientID := uuid.New()
	event := models.GigEvent{GigID: uuid.New(), ClientID: clientID, Status: models.GigStatusActive}

	notifier.On("NotifyUser", clientID, models.EventGigPosted, event).Return(nil)

	svc.HandleGigEvent(models.EventGigPosted, event)

	notifier.AssertNumberOfCalls(t, "NotifyUser", 1)
}

func TestNotificationService_HandleGigEvent_WrongPayload(t *testing.T) {
	notifier := new(mockUserNotifier)
	svc := NewNotificationService(new(mockNotificationStore), notifier)

	// Чужая полезная нагрузка молча игнорируется
	svc.HandleGigEvent(models.EventGigPosted, "not a gig event")

	notifier.AssertNotCalled(t, "NotifyUser", mock.Anything, mock.Anything, mock.Anything)
}

func TestNotificationService_HandleGigEvent_DeliveryFailureDoesNotPanic(t *testing.T) {
	notifier := new(mockUserNotifier)
	svc := NewNotificationService(new(mockNotificationStore), notifier)

	clientID := uuid.New()
	event := models.GigEvent{GigID: uuid.New(), ClientID: clientID, Status: models.GigStatusActive}

	notifier.On("NotifyUser", clientID, models.EventGigPosted, event).Return(assert.AnError)

	assert.NotPanics(t, func() {
		svc.HandleGigEvent(models.EventGigPosted, event)
	})
}

func TestNotificationService_MarkRead(t *testing.T) {
	repo := new(mockNotificationStore)
	svc := NewNotificationService(repo, nil)
	ctx := context.Background()

	userID := uuid.New()
	ids := []uuid.UUID{uuid.New(), uuid.New()}
	repo.On("MarkRead", ctx, userID, ids).Return(nil)

	assert.NoError(t, svc.MarkRead(ctx, userID, ids))
	repo.AssertExpectations(t)
}

func TestNotificationService_CountUnread(t *testing.T) {
	repo := new(mockNotificationStore)
	svc := NewNotificationService(repo, nil)
	ctx := context.Background()

	userID := uuid.New()
	repo.On("CountUnread", ctx, userID).Return(3, nil)

	count, err := svc.CountUnread(ctx, userID)

	assert.NoError(t, err)
	assert.Equal(t, 3, count)
}
