package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/event-dashboard-api/pkg/errors"
)

func TestCacheRepositoryWithoutClient(t *testing.T) {
	repo := NewCacheRepository(nil, nil)
	var dest []string

	err := repo.Get(context.Background(), "events:all", &dest)
	assert.True(t, errors.Is(err, appErrors.ErrCacheMiss))
	require.NoError(t, repo.Set(context.Background(), "events:all", []string{"a"}, time.Minute))
	require.NoError(t, repo.DeleteByPattern(context.Background(), "events:*"))
	require.NoError(t, repo.Close())
}
