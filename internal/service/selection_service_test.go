package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/athletenexus-api/internal/dto"
	"github.com/noah-isme/athletenexus-api/internal/models"
	"github.com/noah-isme/athletenexus-api/internal/repository"
	appErrors "github.com/noah-isme/athletenexus-api/pkg/errors"
)

type mockSelectionRepo struct {
	rows map[string]models.Selection
}

func newMockSelectionRepo() *mockSelectionRepo {
	return &mockSelectionRepo{rows: map[string]models.Selection{}}
}

func (m *mockSelectionRepo) ListByStudent(ctx context.Context, email string) ([]models.SelectionDetail, error) {
	var out []models.SelectionDetail
	for _, row := range m.rows {
		if row.StudentEmail == email {
			out = append(out, models.SelectionDetail{Selection: row})
		}
	}
	return out, nil
}

func (m *mockSelectionRepo) Create(ctx context.Context, selection *models.Selection) error {
	key := selection.ClassID + "|" + selection.StudentEmail
	if _, ok := m.rows[key]; ok {
		return repository.ErrDuplicate
	}
	selection.ID = "sel-" + selection.ClassID[:8]
	m.rows[key] = *selection
	return nil
}

func (m *mockSelectionRepo) Delete(ctx context.Context, classID, email string) error {
	key := classID + "|" + email
	if _, ok := m.rows[key]; !ok {
		return sql.ErrNoRows
	}
	delete(m.rows, key)
	return nil
}

func newSelectionFixture() (*SelectionService, *mockSelectionRepo) {
	repo := newMockSelectionRepo()
	classes := NewClassService(newMockClassRepo(sampleClass(classIDYoga, 5, 10)), nil, nil, nil)
	return NewSelectionService(repo, classes, nil, nil), repo
}

func TestSelectionServiceAddAndList(t *testing.T) {
	svc, _ := newSelectionFixture()

	sel, err := svc.Add(context.Background(), dto.AddSelectionRequest{ClassID: classIDYoga, StudentEmail: "Sam@Student.test"})
	require.NoError(t, err)
	assert.Equal(t, "sam@student.test", sel.StudentEmail)

	items, err := svc.ListForStudent(context.Background(), "SAM@student.test")
	require.NoError(t, err)
	assert.Len(t, items, 1)

	empty, err := svc.ListForStudent(context.Background(), "nobody@student.test")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestSelectionServiceAddDuplicate(t *testing.T) {
	svc, _ := newSelectionFixture()
	req := dto.AddSelectionRequest{ClassID: classIDYoga, StudentEmail: "sam@student.test"}

	_, err := svc.Add(context.Background(), req)
	require.NoError(t, err)
	_, err = svc.Add(context.Background(), req)
	assert.ErrorIs(t, err, appErrors.ErrConflict)
}

func TestSelectionServiceAddUnknownClass(t *testing.T) {
	svc, repo := newSelectionFixture()
	_, err := svc.Add(context.Background(), dto.AddSelectionRequest{ClassID: classIDGhost, StudentEmail: "sam@student.test"})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
	assert.Empty(t, repo.rows)
}

func TestSelectionServiceRemoveScopedToStudent(t *testing.T) {
	svc, repo := newSelectionFixture()
	_, err := svc.Add(context.Background(), dto.AddSelectionRequest{ClassID: classIDYoga, StudentEmail: "sam@student.test"})
	require.NoError(t, err)
	_, err = svc.Add(context.Background(), dto.AddSelectionRequest{ClassID: classIDYoga, StudentEmail: "kim@student.test"})
	require.NoError(t, err)

	require.NoError(t, svc.Remove(context.Background(), classIDYoga, "sam@student.test"))
	assert.Len(t, repo.rows, 1)
	_, kept := repo.rows[classIDYoga+"|kim@student.test"]
	assert.True(t, kept)

	err = svc.Remove(context.Background(), classIDYoga, "sam@student.test")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	err = svc.Remove(context.Background(), classIDYoga, "")
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}
