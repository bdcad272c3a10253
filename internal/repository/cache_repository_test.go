package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	appErrors "github.com/noah-isme/athletenexus-api/pkg/errors"
)

func TestCacheRepositoryWithoutClientIsEmpty(t *testing.T) {
	repo := NewCacheRepository(nil, nil)
	ctx := context.Background()

	var out []string
	assert.ErrorIs(t, repo.Get(ctx, "classes:approved", &out), appErrors.ErrCacheMiss)
	assert.NoError(t, repo.Set(ctx, "classes:approved", []string{"x"}, time.Minute))
	assert.NoError(t, repo.DeleteByPattern(ctx, "classes:*"))
	assert.NoError(t, repo.Ping(ctx))
	assert.NoError(t, repo.Close())
}
