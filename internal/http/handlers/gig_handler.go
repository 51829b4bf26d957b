package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/gig-backend/internal/dto"
	"github.com/ignatzorin/gig-backend/internal/http/handlers/common"
	"github.com/ignatzorin/gig-backend/internal/models"
	"github.com/ignatzorin/gig-backend/internal/service"
)

// GigHandler обслуживает команды жизненного цикла гига.
type GigHandler struct {
	lifecycle *service.LifecycleService
}

func NewGigHandler(lifecycle *service.LifecycleService) *GigHandler {
	return &GigHandler{lifecycle: lifecycle}
}

// PostGig POST /gigs
func (h *GigHandler) PostGig(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	var req dto.PostGigRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	gig, err := h.lifecycle.PostGig(c.Request.Context(), userID, service.PostGigInput{
		Title:       req.Title,
		Description: req.Description,
		Budget:      req.Budget,
		Deadline:    req.Deadline,
		Skills:      req.Skills,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, gig)
}

// ListGigs GET /gigs
func (h *GigHandler) ListGigs(c *gin.Context) {
	status := c.DefaultQuery("status", models.GigStatusActive)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	gigs, err := h.lifecycle.ListGigs(c.Request.Context(), status, limit, offset)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.GigListResponse{Gigs: gigs, Limit: limit, Offset: offset})
}

// GetGig GET /gigs/:id
func (h *GigHandler) GetGig(c *gin.Context) {
	gigID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	gig, err := h.lifecycle.GetGig(c.Request.Context(), gigID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gig)
}

// ListMyGigs GET /gigs/mine
func (h *GigHandler) ListMyGigs(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	var gigs interface{}
	if c.DefaultQuery("as", "client") == "worker" {
		gigs, err = h.lifecycle.ListGigsByWorker(c.Request.Context(), userID)
	} else {
		gigs, err = h.lifecycle.ListGigsByClient(c.Request.Context(), userID)
	}
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gigs)
}

// SubmitApplication POST /gigs/:id/applications
func (h *GigHandler) SubmitApplication(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	gigID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req dto.SubmitApplicationRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	app, err := h.lifecycle.SubmitApplication(c.Request.Context(), gigID, userID, req.BidAmount, req.Skills)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, app)
}

// ListMyApplications GET /applications/mine
func (h *GigHandler) ListMyApplications(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	apps, err := h.lifecycle.ListMyApplications(c.Request.Context(), userID, limit, offset)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, apps)
}

// ListApplications GET /gigs/:id/applications
func (h *GigHandler) ListApplications(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	gigID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	apps, err := h.lifecycle.ListApplications(c.Request.Context(), gigID, userID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, apps)
}

// AcceptApplication POST /gigs/:id/accept
func (h *GigHandler) AcceptApplication(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	gigID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req dto.AcceptApplicationRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	applicantID, err := uuid.Parse(req.ApplicantID)
	if err != nil {
		common.RespondBadRequest(c, "неверный applicant_id")
		return
	}

	gig, err := h.lifecycle.AcceptApplication(c.Request.Context(), gigID, userID, applicantID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gig)
}

// MarkComplete POST /gigs/:id/complete
func (h *GigHandler) MarkComplete(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	gigID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	gig, err := h.lifecycle.MarkComplete(c.Request.Context(), gigID, userID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gig)
}

// SubmitRating POST /gigs/:id/rating
func (h *GigHandler) SubmitRating(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	gigID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req dto.SubmitRatingRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	rating, err := h.lifecycle.SubmitRating(c.Request.Context(), gigID, userID, req.Stars, req.Review)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, rating)
}

// RaiseDispute POST /gigs/:id/dispute
func (h *GigHandler) RaiseDispute(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	gigID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req dto.RaiseDisputeRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	dispute, err := h.lifecycle.RaiseDispute(c.Request.Context(), gigID, userID, req.Reason)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, dispute)
}

// ResolveDispute POST /gigs/:id/dispute/resolve
func (h *GigHandler) ResolveDispute(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	gigID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req dto.ResolveDisputeRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	dispute, err := h.lifecycle.ResolveDispute(c.Request.Context(), gigID, userID, req.Outcome, req.Resolution)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dispute)
}
