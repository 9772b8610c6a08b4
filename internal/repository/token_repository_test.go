package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/school-console/pkg/errors"
)

func TestTokenRepositoryWithoutClient(t *testing.T) {
	repo := NewTokenRepository(nil, "", nil)

	_, err := repo.Get(context.Background(), "abc")
	assert.ErrorIs(t, err, appErrors.ErrCacheMiss)

	err = repo.Save(context.Background(), TokenRecord{SessionID: "abc", Token: "t"}, time.Minute)
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrUnavailable)

	assert.NoError(t, repo.Delete(context.Background(), "abc"))
	assert.NoError(t, repo.Close())
}

func TestTokenRepositoryKeyNamespace(t *testing.T) {
	repo := NewTokenRepository(nil, "school", nil)
	assert.Equal(t, "school:session:abc:token", repo.key("abc"))
}
