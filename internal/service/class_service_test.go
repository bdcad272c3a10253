package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/athletenexus-api/internal/dto"
	"github.com/noah-isme/athletenexus-api/internal/models"
	appErrors "github.com/noah-isme/athletenexus-api/pkg/errors"
)

const (
	classIDYoga   = "2b5e1b8e-7f4c-4a55-9d1b-3f0d6f1e9a01"
	classIDBoxing = "2b5e1b8e-7f4c-4a55-9d1b-3f0d6f1e9a02"
	classIDGhost  = "2b5e1b8e-7f4c-4a55-9d1b-3f0d6f1e9aff"
)

type mockClassRepo struct {
	mu        sync.Mutex
	classes   map[string]*models.Class
	listCalls int
	listErr   error
	created   *models.Class
}

func newMockClassRepo(classes ...models.Class) *mockClassRepo {
	repo := &mockClassRepo{classes: map[string]*models.Class{}}
	for i := range classes {
		c := classes[i]
		repo.classes[c.ID] = &c
	}
	return repo
}

func (m *mockClassRepo) List(ctx context.Context, filter models.ClassFilter) ([]models.Class, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listCalls++
	if m.listErr != nil {
		return nil, 0, m.listErr
	}
	var out []models.Class
	for _, c := range m.classes {
		if filter.View == models.ClassViewApproved && c.Status != models.ClassStatusApproved {
			continue
		}
		out = append(out, *c)
	}
	return out, len(out), nil
}

func (m *mockClassRepo) FindByID(ctx context.Context, id string) (*models.Class, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.classes[id]; ok {
		dup := *c
		return &dup, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockClassRepo) Create(ctx context.Context, class *models.Class) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if class.ID == "" {
		class.ID = classIDBoxing
	}
	m.classes[class.ID] = class
	m.created = class
	return nil
}

func (m *mockClassRepo) UpdateStatus(ctx context.Context, id string, status models.ClassStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.classes[id]
	if !ok {
		return sql.ErrNoRows
	}
	c.Status = status
	return nil
}

func (m *mockClassRepo) UpdateFeedback(ctx context.Context, id string, feedback string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.classes[id]
	if !ok {
		return sql.ErrNoRows
	}
	c.Feedback = &feedback
	return nil
}

func (m *mockClassRepo) ExistsTx(ctx context.Context, tx *sqlx.Tx, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.classes[id]
	return ok, nil
}

// DecrementSeatTx mirrors the conditional UPDATE: it only matches rows with seats left.
func (m *mockClassRepo) DecrementSeatTx(ctx context.Context, tx *sqlx.Tx, id string) (*models.Class, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.classes[id]
	if !ok || c.AvailableSeats <= 0 {
		return nil, sql.ErrNoRows
	}
	c.AvailableSeats--
	c.TotalEnrolled++
	dup := *c
	return &dup, nil
}

type memoryCacheRepo struct {
	mu      sync.Mutex
	entries map[string][]byte
	deleted []string
}

func newMemoryCacheRepo() *memoryCacheRepo {
	return &memoryCacheRepo{entries: map[string][]byte{}}
}

func (m *memoryCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = raw
	return nil
}

func (m *memoryCacheRepo) DeleteByPattern(ctx context.Context, pattern string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	prefix := strings.TrimSuffix(pattern, "*")
	for key := range m.entries {
		if strings.HasPrefix(key, prefix) {
			delete(m.entries, key)
		}
	}
	m.deleted = append(m.deleted, pattern)
	return nil
}

func sampleClass(id string, seats, enrolled int) models.Class {
	return models.Class{
		ID:              id,
		Name:            "Morning Yoga",
		InstructorName:  "Ana",
		InstructorEmail: "ana@gym.test",
		Price:           decimal.RequireFromString("20.00"),
		AvailableSeats:  seats,
		TotalEnrolled:   enrolled,
		Status:          models.ClassStatusApproved,
	}
}

func TestClassServiceListUsesCache(t *testing.T) {
	repo := newMockClassRepo(sampleClass(classIDYoga, 5, 10))
	cache := NewCacheService(newMemoryCacheRepo(), nil, time.Minute, nil, true)
	svc := NewClassService(repo, cache, nil, nil)

	filter := models.ClassFilter{View: models.ClassViewApproved}
	items, pg, hit, err := svc.List(context.Background(), filter)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Len(t, items, 1)
	assert.Equal(t, 1, pg.TotalCount)

	items, _, hit, err = svc.List(context.Background(), filter)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Len(t, items, 1)
	assert.Equal(t, 1, repo.listCalls)
}

func TestClassServiceListPopularHasNoPagination(t *testing.T) {
	svc := NewClassService(newMockClassRepo(sampleClass(classIDYoga, 5, 10)), nil, nil, nil)
	_, pg, _, err := svc.List(context.Background(), models.ClassFilter{View: models.ClassViewPopular})
	require.NoError(t, err)
	assert.Nil(t, pg)
}

func TestClassServiceListInstructorRequiresEmail(t *testing.T) {
	svc := NewClassService(newMockClassRepo(), nil, nil, nil)
	_, _, _, err := svc.List(context.Background(), models.ClassFilter{View: models.ClassViewInstructor})
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestClassServiceListStorageFailure(t *testing.T) {
	repo := newMockClassRepo()
	repo.listErr = errors.New("connection refused")
	svc := NewClassService(repo, nil, nil, nil)
	_, _, _, err := svc.List(context.Background(), models.ClassFilter{})
	assert.ErrorIs(t, err, appErrors.ErrUpstream)
}

func TestClassServiceCreateDefaultsPending(t *testing.T) {
	repo := newMockClassRepo()
	cacheRepo := newMemoryCacheRepo()
	svc := NewClassService(repo, NewCacheService(cacheRepo, nil, time.Minute, nil, true), nil, nil)

	class, err := svc.Create(context.Background(), dto.CreateClassRequest{
		Name:            " Boxing ",
		InstructorEmail: "Coach@Gym.test",
		Price:           decimal.RequireFromString("15.5"),
		AvailableSeats:  12,
	})
	require.NoError(t, err)
	assert.Equal(t, models.ClassStatusPending, class.Status)
	assert.Equal(t, 0, class.TotalEnrolled)
	assert.Equal(t, 12, class.AvailableSeats)
	assert.Equal(t, "Boxing", class.Name)
	assert.Equal(t, "coach@gym.test", class.InstructorEmail)
	assert.Equal(t, []string{classCachePattern}, cacheRepo.deleted)
}

func TestClassServiceCreateValidation(t *testing.T) {
	svc := NewClassService(newMockClassRepo(), nil, nil, nil)

	_, err := svc.Create(context.Background(), dto.CreateClassRequest{Name: "Boxing", InstructorEmail: "c@gym.test", AvailableSeats: -1})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = svc.Create(context.Background(), dto.CreateClassRequest{Name: "Boxing", InstructorEmail: "c@gym.test", Price: decimal.NewFromInt(-1)})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = svc.Create(context.Background(), dto.CreateClassRequest{Name: "Boxing"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestClassServiceSetStatus(t *testing.T) {
	repo := newMockClassRepo(sampleClass(classIDYoga, 5, 10))
	svc := NewClassService(repo, nil, nil, nil)

	require.NoError(t, svc.SetStatus(context.Background(), dto.ClassStatusRequest{ID: classIDYoga, Status: "DENIED"}))
	assert.Equal(t, models.ClassStatusDenied, repo.classes[classIDYoga].Status)

	err := svc.SetStatus(context.Background(), dto.ClassStatusRequest{ID: classIDGhost, Status: models.ClassStatusApproved})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	err = svc.SetStatus(context.Background(), dto.ClassStatusRequest{ID: classIDYoga, Status: "archived"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	err = svc.SetStatus(context.Background(), dto.ClassStatusRequest{ID: "not-a-uuid", Status: models.ClassStatusApproved})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestClassServiceSetFeedbackMissingClass(t *testing.T) {
	repo := newMockClassRepo(sampleClass(classIDYoga, 5, 10))
	svc := NewClassService(repo, nil, nil, nil)

	require.NoError(t, svc.SetFeedback(context.Background(), dto.ClassFeedbackRequest{ID: classIDYoga, Feedback: "add a syllabus"}))
	require.NotNil(t, repo.classes[classIDYoga].Feedback)
	assert.Equal(t, "add a syllabus", *repo.classes[classIDYoga].Feedback)

	err := svc.SetFeedback(context.Background(), dto.ClassFeedbackRequest{ID: classIDGhost, Feedback: "x"})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestClassServiceReserveSeat(t *testing.T) {
	repo := newMockClassRepo(sampleClass(classIDYoga, 1, 0))
	svc := NewClassService(repo, nil, nil, nil)

	class, err := svc.ReserveSeat(context.Background(), nil, classIDYoga)
	require.NoError(t, err)
	assert.Equal(t, 0, class.AvailableSeats)
	assert.Equal(t, 1, class.TotalEnrolled)

	_, err = svc.ReserveSeat(context.Background(), nil, classIDYoga)
	assert.ErrorIs(t, err, appErrors.ErrCapacityExceeded)

	_, err = svc.ReserveSeat(context.Background(), nil, classIDGhost)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
	assert.Equal(t, 0, repo.classes[classIDYoga].AvailableSeats)
}
