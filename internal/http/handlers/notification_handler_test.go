package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/ignatzorin/gig-backend/internal/dto"
	"github.com/ignatzorin/gig-backend/internal/http/middleware"
	"github.com/ignatzorin/gig-backend/internal/models"
	"github.com/ignatzorin/gig-backend/internal/service"
)

// stubNotificationStore реализует service.NotificationStore через функции-поля.
type stubNotificationStore struct {
	service.NotificationStore
	markRead func(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) error
}

func (s *stubNotificationStore) MarkRead(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) error {
	return s.markRead(ctx, userID, ids)
}

func TestNotificationHandler_MarkRead_Success(t *testing.T) {
	gin.SetMode(gin.TestMode)
	userID := uuid.New()
	ids := []string{uuid.NewString(), uuid.NewString()}

	var marked []uuid.UUID
	store := &stubNotificationStore{
		markRead: func(ctx context.Context, actorID uuid.UUID, got []uuid.UUID) error {
			assert.Equal(t, userID, actorID)
			marked = got
			return nil
		},
	}
	handler := NewNotificationHandler(service.NewNotificationService(store, nil))

	r := gin.New()
	r.Use(middleware.ErrorHandler())
	r.Use(authAs(userID, models.RoleClient))
	r.POST("/notifications/read", handler.MarkRead)

	body, _ := json.Marshal(dto.MarkNotificationsReadRequest{IDs: ids})
	req, _ := http.NewRequest("POST", "/notifications/read", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, marked, 2)

	var resp dto.SuccessResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "уведомления отмечены прочитанными", resp.Message)
}

func TestNotificationHandler_MarkRead_BadID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(authAs(uuid.New(), models.RoleClient))
	handler := &NotificationHandler{notifications: nil}
	r.POST("/notifications/read", handler.MarkRead)

	body := []byte(`{"ids": ["not-a-uuid"]}`)
	req, _ := http.NewRequest("POST", "/notifications/read", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
