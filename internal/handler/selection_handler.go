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

type selectionService interface {
	ListForStudent(ctx context.Context, email string) ([]models.SelectionDetail, error)
	Add(ctx context.Context, req dto.AddSelectionRequest) (*models.Selection, error)
	Remove(ctx context.Context, classID, email string) error
}

// SelectionHandler exposes a student's selected classes.
type SelectionHandler struct {
	selections selectionService
}

// NewSelectionHandler constructs a SelectionHandler.
func NewSelectionHandler(selections selectionService) *SelectionHandler {
	return &SelectionHandler{selections: selections}
}

// List godoc
// @Summary List selected classes
// @Tags Selections
// @Produce json
// @Param email query string true "Student email"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /classes/selected [get]
func (h *SelectionHandler) List(c *gin.Context) {
	items, err := h.selections.ListForStudent(c.Request.Context(), c.Query("email"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Add godoc
// @Summary Select a class
// @Tags Selections
// @Accept json
// @Produce json
// @Param payload body dto.AddSelectionRequest true "Selection payload"
// @Success 201 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /classes/selected [post]
func (h *SelectionHandler) Add(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.AddSelectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid selection payload"))
		return
	}
	if strings.TrimSpace(req.StudentEmail) == "" {
		req.StudentEmail = claims.Email
	}
	if !middleware.IsSelf(claims, req.StudentEmail) {
		response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "email does not match token"))
		return
	}

	selection, err := h.selections.Add(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Acknowledge(c, http.StatusCreated, selection.ID, selection)
}

// Remove godoc
// @Summary Remove a selected class
// @Tags Selections
// @Produce json
// @Param id query string true "Class ID"
// @Param email query string true "Student email"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /classes/selected [delete]
func (h *SelectionHandler) Remove(c *gin.Context) {
	classID := c.Query("id")
	if err := h.selections.Remove(c.Request.Context(), classID, c.Query("email")); err != nil {
		response.Error(c, err)
		return
	}
	response.Acknowledge(c, http.StatusOK, classID, nil)
}
