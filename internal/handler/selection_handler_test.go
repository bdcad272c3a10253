package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/athletenexus-api/internal/dto"
	"github.com/noah-isme/athletenexus-api/internal/models"
	appErrors "github.com/noah-isme/athletenexus-api/pkg/errors"
)

type selectionServiceMock struct {
	added      *dto.AddSelectionRequest
	removedID  string
	removedFor string
	err        error
}

func (m *selectionServiceMock) ListForStudent(ctx context.Context, email string) ([]models.SelectionDetail, error) {
	if m.err != nil {
		return nil, m.err
	}
	return []models.SelectionDetail{{Selection: models.Selection{ID: "s-1", StudentEmail: email}}}, nil
}

func (m *selectionServiceMock) Add(ctx context.Context, req dto.AddSelectionRequest) (*models.Selection, error) {
	m.added = &req
	if m.err != nil {
		return nil, m.err
	}
	return &models.Selection{ID: "s-1", ClassID: req.ClassID, StudentEmail: req.StudentEmail}, nil
}

func (m *selectionServiceMock) Remove(ctx context.Context, classID, email string) error {
	m.removedID, m.removedFor = classID, email
	return m.err
}

func TestSelectionHandlerAddDefaultsEmailFromToken(t *testing.T) {
	svc := &selectionServiceMock{}
	h := NewSelectionHandler(svc)

	c, w := newGinContext(http.MethodPost, "/classes/selected", []byte(`{"classId":"c-1"}`))
	withClaims(c, "sam@gym.test", models.RoleStudent)
	h.Add(c)

	require.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, svc.added)
	assert.Equal(t, "sam@gym.test", svc.added.StudentEmail)
}

func TestSelectionHandlerAddRejectsForeignEmail(t *testing.T) {
	svc := &selectionServiceMock{}
	h := NewSelectionHandler(svc)

	c, w := newGinContext(http.MethodPost, "/classes/selected", []byte(`{"classId":"c-1","email":"other@gym.test"}`))
	withClaims(c, "sam@gym.test", models.RoleStudent)
	h.Add(c)

	require.Equal(t, http.StatusForbidden, w.Code)
	assert.Nil(t, svc.added)
}

func TestSelectionHandlerAddDuplicateIsConflict(t *testing.T) {
	svc := &selectionServiceMock{err: appErrors.Clone(appErrors.ErrConflict, "class already selected")}
	h := NewSelectionHandler(svc)

	c, w := newGinContext(http.MethodPost, "/classes/selected", []byte(`{"classId":"c-1"}`))
	withClaims(c, "sam@gym.test", models.RoleStudent)
	h.Add(c)

	require.Equal(t, http.StatusConflict, w.Code)
	env := decodeEnvelope(t, w)
	require.NotNil(t, env.Error)
	assert.Equal(t, appErrors.ErrConflict.Code, env.Error.Code)
}

func TestSelectionHandlerAddRequiresClaims(t *testing.T) {
	h := NewSelectionHandler(&selectionServiceMock{})

	c, w := newGinContext(http.MethodPost, "/classes/selected", []byte(`{"classId":"c-1"}`))
	h.Add(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSelectionHandlerRemovePassesPair(t *testing.T) {
	svc := &selectionServiceMock{}
	h := NewSelectionHandler(svc)

	c, w := newGinContext(http.MethodDelete, "/classes/selected?id=c-1&email=sam@gym.test", nil)
	h.Remove(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "c-1", svc.removedID)
	assert.Equal(t, "sam@gym.test", svc.removedFor)
}

func TestSelectionHandlerRemoveMissingIsNotFound(t *testing.T) {
	svc := &selectionServiceMock{err: appErrors.Clone(appErrors.ErrNotFound, "selection not found")}
	h := NewSelectionHandler(svc)

	c, w := newGinContext(http.MethodDelete, "/classes/selected?id=c-9&email=sam@gym.test", nil)
	h.Remove(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
