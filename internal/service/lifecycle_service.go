package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/gig-backend/internal/models"
	"github.com/ignatzorin/gig-backend/internal/pkg/apperror"
	"github.com/ignatzorin/gig-backend/internal/repository"
	"github.com/ignatzorin/gig-backend/internal/validation"
)

// GigStore описывает зависимости LifecycleService от хранилища гигов.
// Методы-переходы атомарны: каждый выполняет compare-and-set по статусу
// и сопутствующие записи в одной транзакции.
type GigStore interface {
	Create(ctx context.Context, gig *models.Gig) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Gig, error)
	List(ctx context.Context, status string, limit, offset int) ([]models.Gig, error)
	ListByClient(ctx context.Context, clientID uuid.UUID) ([]models.Gig, error)
	ListByWorker(ctx context.Context, workerID uuid.UUID) ([]models.Gig, error)
	AcceptApplicant(ctx context.Context, gigID, workerID uuid.UUID, startDate time.Time) (*models.Gig, error)
	Complete(ctx context.Context, gigID uuid.UUID, completedDate time.Time) (*models.Gig, error)
}

// ApplicationStore описывает зависимости от хранилища откликов.
type ApplicationStore interface {
	Create(ctx context.Context, app *models.Application) error
	GetByGigAndApplicant(ctx context.Context, gigID, applicantID uuid.UUID) (*models.Application, error)
	ListByGig(ctx context.Context, gigID uuid.UUID) ([]models.Application, error)
	ListByApplicant(ctx context.Context, applicantID uuid.UUID, limit, offset int) ([]models.Application, error)
}

// RatingStore описывает зависимости от хранилища оценок.
type RatingStore interface {
	Create(ctx context.Context, rating *models.Rating) error
	GetAverageForWorker(ctx context.Context, workerID uuid.UUID) (float64, int, error)
}

// DisputeStore описывает зависимости от хранилища споров.
type DisputeStore interface {
	Open(ctx context.Context, d *models.Dispute, fromStatus string) error
	Resolve(ctx context.Context, gigID, arbiterID uuid.UUID, outcome, resolution string, resolvedAt time.Time) (*models.Dispute, error)
	GetByGigID(ctx context.Context, gigID uuid.UUID) (*models.Dispute, error)
}

// LifecycleUserStore описывает доступ к пользователям для проверки ролей.
type LifecycleUserStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// EventPublisher публикует доменные события после успешного перехода.
// Доставка асинхронная: ошибка подписчика не откатывает переход.
type EventPublisher interface {
	Publish(event string, payload any)
}

// LifecycleService — оркестратор жизненного цикла гига. Все команды,
// меняющие состояние гига, проходят через него: он выполняет валидацию,
// авторизацию и проверку машины состояний, а атомарность переходов
// обеспечивают транзакции хранилищ.
type LifecycleService struct {
	gigs     GigStore
	apps     ApplicationStore
	ratings  RatingStore
	disputes DisputeStore
	users    LifecycleUserStore
	events   EventPublisher
	locks    *keyedLock
	log      *logrus.Entry
}

// NewLifecycleService создаёт сервис жизненного цикла.
func NewLifecycleService(
	gigs GigStore,
	apps ApplicationStore,
	ratings RatingStore,
	disputes DisputeStore,
	users LifecycleUserStore,
	events EventPublisher,
	lockTimeout time.Duration,
) *LifecycleService {
	return &LifecycleService{
		gigs:     gigs,
		apps:     apps,
		ratings:  ratings,
		disputes: disputes,
		users:    users,
		events:   events,
		locks:    newKeyedLock(lockTimeout),
		log:      logrus.WithField("component", "lifecycle_service"),
	}
}

// PostGigInput содержит данные публикации гига.
type PostGigInput struct {
	Title       string
	Description string
	Budget      float64
	Deadline    time.Time
	Skills      []string
}

// PostGig публикует гиг. Escrow запись создаётся в той же транзакции
// сразу в состоянии funded: средства считаются удержанными в момент
// публикации.
func (s *LifecycleService) PostGig(ctx context.Context, clientID uuid.UUID, in PostGigInput) (*models.Gig, error) {
	if err := validation.ValidateGigTitle(in.Title); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateGigDescription(in.Description); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateBudget(in.Budget); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateDeadline(in.Deadline, time.Now()); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateSkills(in.Skills); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}

	gig := &models.Gig{
		ClientID:    clientID,
		Title:       in.Title,
		Description: in.Description,
		Budget:      in.Budget,
		DeadlineAt:  in.Deadline,
		Skills:      pq.StringArray(in.Skills),
		Status:      models.GigStatusActive,
	}

	if err := s.gigs.Create(ctx, gig); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось создать гиг")
	}

	s.log.WithFields(logrus.Fields{
		"gig_id":    gig.ID,
		"client_id": clientID,
		"budget":    gig.Budget,
	}).Info("Гиг опубликован, средства удержаны в escrow")

	s.events.Publish(models.EventGigPosted, models.GigEvent{
		GigID:    gig.ID,
		ClientID: gig.ClientID,
		Status:   gig.Status,
	})

	return gig, nil
}

// SubmitApplication создаёт отклик исполнителя на активный гиг.
// Рейтинг исполнителя фиксируется в отклике на момент подачи.
func (s *LifecycleService) SubmitApplication(ctx context.Context, gigID, applicantID uuid.UUID, bid float64, skills []string) (*models.Application, error) {
	if err := validation.ValidateBid(bid); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateSkills(skills); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}

	gig, err := s.getGig(ctx, gigID)
	if err != nil {
		return nil, err
	}
	if gig.IsOwnedBy(applicantID) {
		return nil, apperror.New(apperror.ErrCodeForbidden, "нельзя откликнуться на собственный гиг")
	}
	if gig.Status != models.GigStatusActive {
		return nil, apperror.New(apperror.ErrCodeInvalidState, "гиг больше не принимает отклики")
	}

	avg, _, err := s.ratings.GetAverageForWorker(ctx, applicantID)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить рейтинг исполнителя")
	}

	app := &models.Application{
		GigID:              gigID,
		ApplicantID:        applicantID,
		BidAmount:          bid,
		Skills:             pq.StringArray(skills),
		RatingAtSubmission: avg,
		Status:             models.ApplicationStatusPending,
	}

	if err := s.apps.Create(ctx, app); err != nil {
		if errors.Is(err, repository.ErrDuplicateApplication) {
			return nil, apperror.New(apperror.ErrCodeConflict, "отклик на этот гиг уже отправлен")
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось создать отклик")
	}

	s.events.Publish(models.EventApplicationSubmitted, models.GigEvent{
		GigID:    gigID,
		ClientID: gig.ClientID,
		WorkerID: &applicantID,
		Status:   gig.Status,
	})

	return app, nil
}

// AcceptApplication принимает отклик: ровно один отклик становится
// accepted, остальные rejected, гиг переходит в in_progress. Если две
// команды принятия соревнуются за один гиг, побеждает ровно одна,
// проигравшая получает ConflictError.
func (s *LifecycleService) AcceptApplication(ctx context.Context, gigID, actorID, applicantID uuid.UUID) (*models.Gig, error) {
	if !s.locks.acquire(ctx, gigID) {
		return nil, apperror.ErrConflict
	}
	defer s.locks.release(gigID)

	gig, err := s.getGig(ctx, gigID)
	if err != nil {
		return nil, err
	}
	if !gig.IsOwnedBy(actorID) {
		return nil, apperror.New(apperror.ErrCodeForbidden, "принять отклик может только владелец гига")
	}
	if gig.Status != models.GigStatusActive {
		return nil, apperror.New(apperror.ErrCodeInvalidState, "гиг не принимает отклики в текущем статусе")
	}

	if _, err := s.apps.GetByGigAndApplicant(ctx, gigID, applicantID); err != nil {
		if errors.Is(err, repository.ErrApplicationNotFound) {
			return nil, apperror.ErrApplicationNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось проверить отклик")
	}

	updated, err := s.gigs.AcceptApplicant(ctx, gigID, applicantID, time.Now())
	if err != nil {
		if errors.Is(err, repository.ErrStatusChanged) {
			// Проигрыш в гонке между чтением и compare-and-set
			return nil, apperror.ErrConflict
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось принять отклик")
	}

	s.log.WithFields(logrus.Fields{
		"gig_id":    gigID,
		"worker_id": applicantID,
	}).Info("Отклик принят, гиг в работе")

	s.events.Publish(models.EventGigAccepted, models.GigEvent{
		GigID:    updated.ID,
		ClientID: updated.ClientID,
		WorkerID: updated.SelectedWorkerID,
		Status:   updated.Status,
	})

	return updated, nil
}

// MarkComplete завершает гиг. Переход in_progress → completed и
// высвобождение escrow выполняются одной транзакцией; затем платёжный
// шлюз уведомляется событием о расчёте.
func (s *LifecycleService) MarkComplete(ctx context.Context, gigID, actorID uuid.UUID) (*models.Gig, error) {
	if !s.locks.acquire(ctx, gigID) {
		return nil, apperror.ErrConflict
	}
	defer s.locks.release(gigID)

	gig, err := s.getGig(ctx, gigID)
	if err != nil {
		return nil, err
	}
	if !gig.IsOwnedBy(actorID) {
		return nil, apperror.New(apperror.ErrCodeForbidden, "завершить гиг может только владелец")
	}
	if gig.Status != models.GigStatusInProgress {
		return nil, apperror.New(apperror.ErrCodeInvalidState, "завершить можно только гиг в работе")
	}

	updated, err := s.gigs.Complete(ctx, gigID, time.Now())
	if err != nil {
		if errors.Is(err, repository.ErrStatusChanged) {
			return nil, apperror.ErrConflict
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось завершить гиг")
	}

	s.log.WithFields(logrus.Fields{
		"gig_id": gigID,
		"amount": updated.Budget,
	}).Info("Гиг завершён, escrow высвобожден")

	s.events.Publish(models.EventGigCompleted, models.GigEvent{
		GigID:    updated.ID,
		ClientID: updated.ClientID,
		WorkerID: updated.SelectedWorkerID,
		Status:   updated.Status,
	})
	s.events.Publish(models.EventEscrowReleased, models.EscrowEvent{
		GigID:  updated.ID,
		State:  models.EscrowStateReleased,
		Amount: updated.Budget,
	})

	return updated, nil
}

// SubmitRating оставляет оценку исполнителю после завершения гига.
// Повторная оценка того же гига отклоняется с AlreadyRatedError.
func (s *LifecycleService) SubmitRating(ctx context.Context, gigID, actorID uuid.UUID, stars int, review string) (*models.Rating, error) {
	if err := validation.ValidateStars(stars); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateReview(review); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}

	if !s.locks.acquire(ctx, gigID) {
		return nil, apperror.ErrConflict
	}
	defer s.locks.release(gigID)

	gig, err := s.getGig(ctx, gigID)
	if err != nil {
		return nil, err
	}
	if !gig.IsOwnedBy(actorID) {
		return nil, apperror.New(apperror.ErrCodeForbidden, "оценку оставляет только владелец гига")
	}
	if gig.Status != models.GigStatusCompleted {
		return nil, apperror.New(apperror.ErrCodeInvalidState, "оценить можно только завершённый гиг")
	}
	if gig.Rated {
		return nil, apperror.ErrAlreadyRated
	}
	if gig.SelectedWorkerID == nil {
		return nil, apperror.New(apperror.ErrCodeInvalidState, "у гига нет выбранного исполнителя")
	}

	rating := &models.Rating{
		GigID:    gigID,
		WorkerID: *gig.SelectedWorkerID,
		ClientID: gig.ClientID,
		Stars:    stars,
		Review:   review,
	}

	if err := s.ratings.Create(ctx, rating); err != nil {
		if errors.Is(err, repository.ErrGigAlreadyRated) {
			return nil, apperror.ErrAlreadyRated
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось сохранить оценку")
	}

	s.events.Publish(models.EventGigRated, models.GigEvent{
		GigID:    gigID,
		ClientID: gig.ClientID,
		WorkerID: gig.SelectedWorkerID,
		Status:   gig.Status,
	})

	return rating, nil
}

// RaiseDispute открывает спор по гигу. Допускается из active (только
// клиентом) и из in_progress (любой стороной сделки). Пока гиг в статусе
// disputed, принятие откликов и завершение невозможны.
func (s *LifecycleService) RaiseDispute(ctx context.Context, gigID, actorID uuid.UUID, reason string) (*models.Dispute, error) {
	if err := validation.ValidateDisputeReason(reason); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}

	if !s.locks.acquire(ctx, gigID) {
		return nil, apperror.ErrConflict
	}
	defer s.locks.release(gigID)

	gig, err := s.getGig(ctx, gigID)
	if err != nil {
		return nil, err
	}
	if gig.IsTerminal() {
		return nil, apperror.New(apperror.ErrCodeInvalidState, "спор нельзя открыть по завершённому гигу")
	}
	if gig.Status != models.GigStatusActive && gig.Status != models.GigStatusInProgress {
		return nil, apperror.New(apperror.ErrCodeInvalidState, "спор нельзя открыть в текущем статусе гига")
	}
	if !gig.IsParticipant(actorID) {
		return nil, apperror.New(apperror.ErrCodeForbidden, "спор открывает только сторона сделки")
	}

	dispute := &models.Dispute{
		GigID:    gigID,
		RaisedBy: actorID,
		Reason:   reason,
	}

	if err := s.disputes.Open(ctx, dispute, gig.Status); err != nil {
		if errors.Is(err, repository.ErrStatusChanged) {
			return nil, apperror.ErrConflict
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось открыть спор")
	}

	s.log.WithFields(logrus.Fields{
		"gig_id":    gigID,
		"raised_by": actorID,
	}).Warn("Открыт спор по гигу")

	s.events.Publish(models.EventGigDisputed, models.GigEvent{
		GigID:    gigID,
		ClientID: gig.ClientID,
		WorkerID: gig.SelectedWorkerID,
		Status:   models.GigStatusDisputed,
	})

	return dispute, nil
}

// ResolveDispute применяет решение арбитра: complete высвобождает escrow
// исполнителю, refund возвращает средства клиенту. Оба исхода терминальны.
// Само арбитражное решение принимается вне движка.
func (s *LifecycleService) ResolveDispute(ctx context.Context, gigID, arbiterID uuid.UUID, outcome, resolution string) (*models.Dispute, error) {
	if outcome != models.DisputeOutcomeComplete && outcome != models.DisputeOutcomeRefund {
		return nil, apperror.New(apperror.ErrCodeValidation, "недопустимый исход спора")
	}
	if err := validation.ValidateNonEmpty("resolution", resolution); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}

	arbiter, err := s.users.GetByID(ctx, arbiterID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperror.ErrUserNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось проверить арбитра")
	}
	if arbiter.Role != models.RoleArbiter {
		return nil, apperror.New(apperror.ErrCodeForbidden, "решение по спору выносит только арбитр")
	}

	if !s.locks.acquire(ctx, gigID) {
		return nil, apperror.ErrConflict
	}
	defer s.locks.release(gigID)

	gig, err := s.getGig(ctx, gigID)
	if err != nil {
		return nil, err
	}
	if gig.Status != models.GigStatusDisputed {
		return nil, apperror.New(apperror.ErrCodeInvalidState, "гиг не находится в споре")
	}

	dispute, err := s.disputes.Resolve(ctx, gigID, arbiterID, outcome, resolution, time.Now())
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrDisputeNotFound):
			return nil, apperror.ErrDisputeNotFound
		case errors.Is(err, repository.ErrDisputeResolved):
			return nil, apperror.New(apperror.ErrCodeInvalidState, "спор уже разрешён")
		case errors.Is(err, repository.ErrStatusChanged):
			return nil, apperror.ErrConflict
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось разрешить спор")
	}

	finalStatus := models.GigStatusCompleted
	escrowEvent := models.EventEscrowReleased
	escrowState := models.EscrowStateReleased
	if outcome == models.DisputeOutcomeRefund {
		finalStatus = models.GigStatusRefunded
		escrowEvent = models.EventEscrowRefunded
		escrowState = models.EscrowStateRefunded
	}

	s.log.WithFields(logrus.Fields{
		"gig_id":  gigID,
		"outcome": outcome,
	}).Info("Спор разрешён арбитром")

	s.events.Publish(models.EventGigResolved, models.GigEvent{
		GigID:    gigID,
		ClientID: gig.ClientID,
		WorkerID: gig.SelectedWorkerID,
		Status:   finalStatus,
	})
	s.events.Publish(escrowEvent, models.EscrowEvent{
		GigID:  gigID,
		State:  escrowState,
		Amount: gig.Budget,
	})

	return dispute, nil
}

// GetGig возвращает гиг по идентификатору.
func (s *LifecycleService) GetGig(ctx context.Context, gigID uuid.UUID) (*models.Gig, error) {
	return s.getGig(ctx, gigID)
}

// ListGigs возвращает страницу гигов в заданном статусе.
func (s *LifecycleService) ListGigs(ctx context.Context, status string, limit, offset int) ([]models.Gig, error) {
	if _, ok := models.ValidGigStatuses[status]; !ok {
		return nil, apperror.New(apperror.ErrCodeValidation, "недопустимый статус гига")
	}

	gigs, err := s.gigs.List(ctx, status, limit, offset)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить список гигов")
	}
	return gigs, nil
}

// ListGigsByClient возвращает гиги, размещённые клиентом.
func (s *LifecycleService) ListGigsByClient(ctx context.Context, clientID uuid.UUID) ([]models.Gig, error) {
	gigs, err := s.gigs.ListByClient(ctx, clientID)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить гиги клиента")
	}
	return gigs, nil
}

// ListGigsByWorker возвращает гиги, в которых пользователь выбран исполнителем.
func (s *LifecycleService) ListGigsByWorker(ctx context.Context, workerID uuid.UUID) ([]models.Gig, error) {
	gigs, err := s.gigs.ListByWorker(ctx, workerID)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить гиги исполнителя")
	}
	return gigs, nil
}

// ListApplications возвращает отклики на гиг. Список виден только
// владельцу гига: остальные видят лишь факт количества откликов.
func (s *LifecycleService) ListApplications(ctx context.Context, gigID, actorID uuid.UUID) ([]models.Application, error) {
	gig, err := s.getGig(ctx, gigID)
	if err != nil {
		return nil, err
	}
	if !gig.IsOwnedBy(actorID) {
		return nil, apperror.New(apperror.ErrCodeForbidden, "отклики видны только владельцу гига")
	}

	apps, err := s.apps.ListByGig(ctx, gigID)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить отклики")
	}
	return apps, nil
}

// ListMyApplications возвращает отклики, поданные исполнителем.
func (s *LifecycleService) ListMyApplications(ctx context.Context, applicantID uuid.UUID, limit, offset int) ([]models.Application, error) {
	apps, err := s.apps.ListByApplicant(ctx, applicantID, limit, offset)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить отклики исполнителя")
	}
	return apps, nil
}

func (s *LifecycleService) getGig(ctx context.Context, gigID uuid.UUID) (*models.Gig, error) {
	gig, err := s.gigs.GetByID(ctx, gigID)
	if err != nil {
		if errors.Is(err, repository.ErrGigNotFound) {
			return nil, apperror.ErrGigNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить гиг")
	}
	return gig, nil
}
