package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sensai/hubmind/internal/models"
)

func TestCreditAccumulates(t *testing.T) {
	base := newTestRepo(t)
	repo := NewReputationRepository(base)
	ctx := context.Background()

	require.NoError(t, repo.Credit(ctx, 1, 7, models.RepPostsCreated, 5))
	require.NoError(t, repo.Credit(ctx, 1, 7, models.RepPostsCreated, 5))
	require.NoError(t, repo.Credit(ctx, 1, 7, models.RepHelpfulAnswers, 10))

	var row models.Reputation
	require.NoError(t, base.db.Where("user_id = ? AND hub_id = ?", 1, 7).First(&row).Error)
	assert.Equal(t, 20, row.Score)
	assert.Equal(t, 2, row.PostsCreated)
	assert.Equal(t, 1, row.HelpfulAnswers)
}

func TestCreditRejectsUnknownKind(t *testing.T) {
	repo := NewReputationRepository(newTestRepo(t))

	err := repo.Credit(context.Background(), 1, 7, "score; DROP TABLE posts", 5)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestGetHubScopedAndGlobal(t *testing.T) {
	repo := NewReputationRepository(newTestRepo(t))
	ctx := context.Background()

	require.NoError(t, repo.Credit(ctx, 1, 7, models.RepPostsCreated, 5))
	require.NoError(t, repo.Credit(ctx, 1, 8, models.RepAcceptedAnswers, 25))
	require.NoError(t, repo.Credit(ctx, 2, 7, models.RepPostsCreated, 5))

	hubID := int64(7)
	scoped, err := repo.Get(ctx, 1, &hubID)
	require.NoError(t, err)
	assert.Equal(t, 5, scoped.Score)
	assert.Equal(t, 1, scoped.PostsCreated)
	assert.Equal(t, 0, scoped.AcceptedAnswers)

	global, err := repo.Get(ctx, 1, nil)
	require.NoError(t, err)
	assert.Equal(t, 30, global.Score)
	assert.Equal(t, 1, global.PostsCreated)
	assert.Equal(t, 1, global.AcceptedAnswers)
}

func TestGetZeroWhenUnknownUser(t *testing.T) {
	repo := NewReputationRepository(newTestRepo(t))

	summary, err := repo.Get(context.Background(), 999, nil)
	require.NoError(t, err)
	assert.Equal(t, &models.ReputationSummary{}, summary)
}
