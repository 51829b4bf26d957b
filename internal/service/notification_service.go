package service

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/gig-backend/internal/models"
	"github.com/ignatzorin/gig-backend/internal/pkg/apperror"
)

// NotificationStore описывает зависимости от хранилища уведомлений.
type NotificationStore interface {
	Create(ctx context.Context, n *models.Notification) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.Notification, error)
	MarkRead(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) error
	CountUnread(ctx context.Context, userID uuid.UUID) (int, error)
}

// UserNotifier доставляет событие подключённому пользователю (WebSocket).
type UserNotifier interface {
	NotifyUser(userID uuid.UUID, event string, data any) error
}

// NotificationService сохраняет уведомления и рассылает события
// жизненного цикла сторонам сделки. Сбои доставки не откатывают
// переход: уведомления best-effort.
type NotificationService struct {
	repo     NotificationStore
	notifier UserNotifier
	log      *logrus.Entry
}

// NewNotificationService создаёт сервис уведомлений.
func NewNotificationService(repo NotificationStore, notifier UserNotifier) *NotificationService {
	return &NotificationService{
		repo:     repo,
		notifier: notifier,
		log:      logrus.WithField("component", "notification_service"),
	}
}

// CreateNotification сохраняет уведомление; используется хабом WebSocket.
func (s *NotificationService) CreateNotification(ctx context.Context, userID uuid.UUID, event string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return s.repo.Create(ctx, &models.Notification{
		UserID:  userID,
		Event:   event,
		Payload: payload,
	})
}

// HandleGigEvent — подписчик шины событий: уведомляет обе стороны сделки.
func (s *NotificationService) HandleGigEvent(event string, payload any) {
	gigEvent, ok := payload.(models.GigEvent)
	if !ok {
		s.log.WithField("event", event).Warn("Неожиданная полезная нагрузка события гига")
		return
	}

	recipients := []uuid.UUID{gigEvent.ClientID}
	if gigEvent.WorkerID != nil {
		recipients = append(recipients, *gigEvent.WorkerID)
	}

	for _, userID := range recipients {
		if s.notifier == nil {
			continue
		}
		if err := s.notifier.NotifyUser(userID, event, gigEvent); err != nil {
			s.log.WithFields(logrus.Fields{
				"event":   event,
				"user_id": userID,
				"error":   err.Error(),
			}).Warn("Не удалось доставить уведомление")
		}
	}
}

// List возвращает последние уведомления пользователя.
func (s *NotificationService) List(ctx context.Context, userID uuid.UUID, limit int) ([]models.Notification, error) {
	notifications, err := s.repo.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить уведомления")
	}
	return notifications, nil
}

// MarkRead помечает уведомления прочитанными.
func (s *NotificationService) MarkRead(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) error {
	if err := s.repo.MarkRead(ctx, userID, ids); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось пометить уведомления")
	}
	return nil
}

// CountUnread возвращает число непрочитанных уведомлений.
func (s *NotificationService) CountUnread(ctx context.Context, userID uuid.UUID) (int, error) {
	count, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return 0, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось посчитать уведомления")
	}
	return count, nil
}
