package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/athletenexus-api/internal/dto"
	"github.com/noah-isme/athletenexus-api/internal/middleware"
	"github.com/noah-isme/athletenexus-api/internal/models"
	appErrors "github.com/noah-isme/athletenexus-api/pkg/errors"
	"github.com/noah-isme/athletenexus-api/pkg/response"
)

type classService interface {
	List(ctx context.Context, filter models.ClassFilter) ([]models.Class, *models.Pagination, bool, error)
	Get(ctx context.Context, id string) (*models.Class, error)
	Create(ctx context.Context, req dto.CreateClassRequest) (*models.Class, error)
	SetStatus(ctx context.Context, req dto.ClassStatusRequest) error
	SetFeedback(ctx context.Context, req dto.ClassFeedbackRequest) error
}

// ClassHandler exposes the class catalog.
type ClassHandler struct {
	classes classService
}

// NewClassHandler constructs a ClassHandler.
func NewClassHandler(classes classService) *ClassHandler {
	return &ClassHandler{classes: classes}
}

// List godoc
// @Summary List classes
// @Description List every class regardless of status
// @Tags Classes
// @Produce json
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Param search query string false "Name search"
// @Param sort_by query string false "Sort by"
// @Param sort_order query string false "Sort order"
// @Success 200 {object} response.Envelope
// @Router /classes [get]
func (h *ClassHandler) List(c *gin.Context) {
	h.list(c, models.ClassViewAll)
}

// ListView returns a handler for a fixed catalog view such as approved or popular.
// @Summary List classes by view
// @Tags Classes
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /classes/approved [get]
// @Router /classes/denied [get]
// @Router /classes/pending [get]
// @Router /classes/popular [get]
func (h *ClassHandler) ListView(view models.ClassView) gin.HandlerFunc {
	return func(c *gin.Context) {
		h.list(c, view)
	}
}

// ListByInstructor godoc
// @Summary List an instructor's classes
// @Tags Classes
// @Produce json
// @Param email query string true "Instructor email"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /classes/instructor [get]
func (h *ClassHandler) ListByInstructor(c *gin.Context) {
	h.list(c, models.ClassViewInstructor)
}

func (h *ClassHandler) list(c *gin.Context, view models.ClassView) {
	page, size := pageParams(c)
	filter := models.ClassFilter{
		View:            view,
		InstructorEmail: strings.ToLower(strings.TrimSpace(c.Query("email"))),
		Search:          c.Query("search"),
		Page:            page,
		PageSize:        size,
		SortBy:          c.Query("sort_by"),
		SortOrder:       c.Query("sort_order"),
	}
	if view != models.ClassViewInstructor {
		filter.InstructorEmail = ""
	}

	classes, pagination, hit, err := h.classes.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, classes, pagination, middleware.ExtractMeta(c))
}

// Get godoc
// @Summary Get class
// @Tags Classes
// @Produce json
// @Param id path string true "Class ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /classes/{id} [get]
func (h *ClassHandler) Get(c *gin.Context) {
	class, err := h.classes.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	// Unapproved classes are only visible to admins and their instructor.
	if class.Status != models.ClassStatusApproved {
		claims := claimsFromContext(c)
		if !isAdmin(claims) && !middleware.IsSelf(claims, class.InstructorEmail) {
			response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "class not found"))
			return
		}
	}
	response.JSON(c, http.StatusOK, class, nil)
}

// Create godoc
// @Summary Submit class
// @Description Instructors submit classes for review; status starts as pending
// @Tags Classes
// @Accept json
// @Produce json
// @Param payload body dto.CreateClassRequest true "Class payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /classes [post]
func (h *ClassHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.CreateClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid class payload"))
		return
	}
	if strings.TrimSpace(req.InstructorEmail) == "" {
		req.InstructorEmail = claims.Email
	}
	if !isAdmin(claims) && !middleware.IsSelf(claims, req.InstructorEmail) {
		response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "instructors may only submit their own classes"))
		return
	}

	class, err := h.classes.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Acknowledge(c, http.StatusCreated, class.ID, class)
}

// SetStatus godoc
// @Summary Set class status
// @Tags Classes
// @Produce json
// @Param id query string true "Class ID"
// @Param status query string true "pending, approved or denied"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /classes/status [patch]
func (h *ClassHandler) SetStatus(c *gin.Context) {
	var req dto.ClassStatusRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid status query"))
		return
	}
	if err := h.classes.SetStatus(c.Request.Context(), req); err != nil {
		response.Error(c, err)
		return
	}
	response.Acknowledge(c, http.StatusOK, req.ID, nil)
}

// SetFeedback godoc
// @Summary Set class feedback
// @Tags Classes
// @Produce json
// @Param id query string true "Class ID"
// @Param feedback query string true "Feedback text"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /classes/feedback [patch]
func (h *ClassHandler) SetFeedback(c *gin.Context) {
	var req dto.ClassFeedbackRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid feedback query"))
		return
	}
	if err := h.classes.SetFeedback(c.Request.Context(), req); err != nil {
		response.Error(c, err)
		return
	}
	response.Acknowledge(c, http.StatusOK, req.ID, nil)
}
