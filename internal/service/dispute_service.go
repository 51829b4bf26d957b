package service

import (
	"bytes"
	"context"
	"errors"
	"io"

	"github.com/google/uuid"
	"github.com/h2non/filetype"

	"github.com/ignatzorin/gig-backend/internal/models"
	"github.com/ignatzorin/gig-backend/internal/pkg/apperror"
	"github.com/ignatzorin/gig-backend/internal/repository"
)

// Типы файлов, допустимые как материалы спора: изображения и PDF.
var allowedEvidenceMime = map[string]struct{}{
	"image/jpeg":      {},
	"image/png":       {},
	"image/webp":      {},
	"application/pdf": {},
}

// DisputeReadStore описывает зависимости DisputeService от хранилища.
// Открытие и разрешение споров проходит через LifecycleService.
type DisputeReadStore interface {
	GetByGigID(ctx context.Context, gigID uuid.UUID) (*models.Dispute, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Dispute, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Dispute, error)
	AddEvidence(ctx context.Context, e *models.DisputeEvidence) error
	ListEvidence(ctx context.Context, disputeID uuid.UUID) ([]models.DisputeEvidence, error)
}

// DisputeGigStore нужен для проверки, что актор — сторона сделки.
type DisputeGigStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Gig, error)
}

// EvidenceSaver сохраняет файл вложения и возвращает относительный путь.
type EvidenceSaver interface {
	Save(ctx context.Context, gigID uuid.UUID, originalName string, r io.Reader) (string, int64, error)
	Delete(ctx context.Context, relativePath string) error
}

// DisputeService отдаёт споры сторонам сделки и принимает материалы
// для арбитража.
type DisputeService struct {
	disputes DisputeReadStore
	gigs     DisputeGigStore
	storage  EvidenceSaver
}

// NewDisputeService создаёт сервис.
func NewDisputeService(disputes DisputeReadStore, gigs DisputeGigStore, storage EvidenceSaver) *DisputeService {
	return &DisputeService{disputes: disputes, gigs: gigs, storage: storage}
}

// GetForGig возвращает спор по гигу. Доступен сторонам сделки и арбитрам.
func (s *DisputeService) GetForGig(ctx context.Context, gigID, actorID uuid.UUID, actorRole string) (*models.Dispute, error) {
	gig, err := s.getGig(ctx, gigID)
	if err != nil {
		return nil, err
	}
	if actorRole != models.RoleArbiter && !gig.IsParticipant(actorID) {
		return nil, apperror.New(apperror.ErrCodeForbidden, "спор виден только сторонам сделки и арбитру")
	}

	dispute, err := s.disputes.GetByGigID(ctx, gigID)
	if err != nil {
		if errors.Is(err, repository.ErrDisputeNotFound) {
			return nil, apperror.ErrDisputeNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить спор")
	}
	return dispute, nil
}

// ListForUser возвращает споры, в которых пользователь — сторона сделки.
func (s *DisputeService) ListForUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Dispute, error) {
	disputes, err := s.disputes.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить список споров")
	}
	return disputes, nil
}

// UploadEvidence принимает файл-вложение к открытому спору. Тип файла
// проверяется по магическим байтам, а не по расширению.
func (s *DisputeService) UploadEvidence(ctx context.Context, disputeID, actorID uuid.UUID, fileName string, r io.Reader) (*models.DisputeEvidence, error) {
	dispute, err := s.disputes.GetByID(ctx, disputeID)
	if err != nil {
		if errors.Is(err, repository.ErrDisputeNotFound) {
			return nil, apperror.ErrDisputeNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить спор")
	}
	if dispute.IsResolved() {
		return nil, apperror.New(apperror.ErrCodeInvalidState, "спор уже разрешён, материалы не принимаются")
	}

	gig, err := s.getGig(ctx, dispute.GigID)
	if err != nil {
		return nil, err
	}
	if !gig.IsParticipant(actorID) {
		return nil, apperror.New(apperror.ErrCodeForbidden, "материалы прикладывают только стороны сделки")
	}

	// Читаем заголовок для определения реального типа файла
	head := make([]byte, 512)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, "не удалось прочитать файл")
	}
	head = head[:n]

	kind, err := filetype.Match(head)
	if err != nil || kind == filetype.Unknown {
		return nil, apperror.New(apperror.ErrCodeValidation, "не удалось определить тип файла")
	}
	if _, ok := allowedEvidenceMime[kind.MIME.Value]; !ok {
		return nil, apperror.New(apperror.ErrCodeValidation, "допустимы только изображения и PDF")
	}

	path, size, err := s.storage.Save(ctx, dispute.GigID, fileName, io.MultiReader(bytes.NewReader(head), r))
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось сохранить файл")
	}

	evidence := &models.DisputeEvidence{
		DisputeID:  disputeID,
		UploadedBy: actorID,
		FilePath:   path,
		FileType:   kind.MIME.Value,
		FileSize:   size,
	}

	if err := s.disputes.AddEvidence(ctx, evidence); err != nil {
		// Файл без записи в БД бесполезен, убираем его
		_ = s.storage.Delete(ctx, path)
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось сохранить вложение")
	}

	return evidence, nil
}

// ListEvidence возвращает материалы спора. Доступны сторонам сделки и арбитру.
func (s *DisputeService) ListEvidence(ctx context.Context, disputeID, actorID uuid.UUID, actorRole string) ([]models.DisputeEvidence, error) {
	dispute, err := s.disputes.GetByID(ctx, disputeID)
	if err != nil {
		if errors.Is(err, repository.ErrDisputeNotFound) {
			return nil, apperror.ErrDisputeNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить спор")
	}

	gig, err := s.getGig(ctx, dispute.GigID)
	if err != nil {
		return nil, err
	}
	if actorRole != models.RoleArbiter && !gig.IsParticipant(actorID) {
		return nil, apperror.New(apperror.ErrCodeForbidden, "материалы видны только сторонам сделки и арбитру")
	}

	evidence, err := s.disputes.ListEvidence(ctx, disputeID)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить материалы спора")
	}
	return evidence, nil
}

func (s *DisputeService) getGig(ctx context.Context, gigID uuid.UUID) (*models.Gig, error) {
	gig, err := s.gigs.GetByID(ctx, gigID)
	if err != nil {
		if errors.Is(err, repository.ErrGigNotFound) {
			return nil, apperror.ErrGigNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить гиг")
	}
	return gig, nil
}
