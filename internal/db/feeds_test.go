package db

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sensai/hubmind/internal/models"
)

func TestTrendingOrdersByEngagement(t *testing.T) {
	base := newTestRepo(t)
	repo := NewFeedRepository(base)
	ctx := context.Background()
	now := time.Now().UTC()

	// p1: 5 recent up-votes, 2 replies -> score 9
	p1 := seedPost(t, base.db, 1, 10, models.PostTypeThread, now.Add(-2*time.Hour))
	for i := int64(1); i <= 5; i++ {
		seedVote(t, base.db, p1.ID, i, models.VoteUp, now.Add(-time.Hour))
	}
	require.NoError(t, base.db.Model(p1).Update("reply_count", 2).Error)

	// p2: 1 recent up-vote, 10 replies -> score 21
	p2 := seedPost(t, base.db, 1, 11, models.PostTypeThread, now.Add(-24*time.Hour))
	seedVote(t, base.db, p2.ID, 1, models.VoteUp, now.Add(-time.Hour))
	require.NoError(t, base.db.Model(p2).Update("reply_count", 10).Error)

	// Too old for the window
	seedPost(t, base.db, 1, 12, models.PostTypeThread, now.Add(-4*24*time.Hour))

	// Votes outside the 24h window do not count
	p3 := seedPost(t, base.db, 1, 13, models.PostTypeThread, now.Add(-2*24*time.Hour))
	for i := int64(1); i <= 8; i++ {
		seedVote(t, base.db, p3.ID, i, models.VoteUp, now.Add(-30*time.Hour))
	}

	posts, err := repo.Get(ctx, 0, FeedTrending, 10, 0)
	require.NoError(t, err)
	require.Len(t, posts, 3)
	assert.Equal(t, p2.ID, posts[0].ID)
	assert.Equal(t, p1.ID, posts[1].ID)
	assert.Equal(t, p3.ID, posts[2].ID)
	assert.Equal(t, 0, posts[2].Votes)
}

func TestTrendingScopedToHub(t *testing.T) {
	base := newTestRepo(t)
	repo := NewFeedRepository(base)
	now := time.Now().UTC()

	inHub := seedPost(t, base.db, 1, 10, models.PostTypeThread, now.Add(-time.Hour))
	seedPost(t, base.db, 2, 11, models.PostTypeThread, now.Add(-time.Hour))

	hubID := int64(1)
	posts, err := repo.Trending(context.Background(), &hubID, 10, 0)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, inHub.ID, posts[0].ID)
}

func TestFollowingFeed(t *testing.T) {
	base := newTestRepo(t)
	repo := NewFeedRepository(base)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, base.db.Create(&models.Follow{FollowerID: 1, FollowingID: 10}).Error)

	older := seedPost(t, base.db, 1, 10, models.PostTypeThread, now.Add(-2*time.Hour))
	newer := seedPost(t, base.db, 1, 10, models.PostTypeThread, now.Add(-time.Hour))
	seedPost(t, base.db, 1, 99, models.PostTypeThread, now) // not followed

	// Unapproved posts never surface
	flagged := seedPost(t, base.db, 1, 10, models.PostTypeThread, now)
	require.NoError(t, base.db.Model(flagged).Update("moderation_status", models.ModerationStatusFlagged).Error)

	posts, err := repo.Get(ctx, 1, FeedFollowing, 10, 0)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, newer.ID, posts[0].ID)
	assert.Equal(t, older.ID, posts[1].ID)
}

func TestSubscribedHubsFeed(t *testing.T) {
	base := newTestRepo(t)
	repo := NewFeedRepository(base)
	now := time.Now().UTC()

	require.NoError(t, base.db.Create(&models.HubSubscription{UserID: 1, HubID: 1, NotificationPreference: "all"}).Error)

	active := seedPost(t, base.db, 1, 10, models.PostTypeThread, now.Add(-3*time.Hour))
	require.NoError(t, base.db.Model(active).Update("last_activity", now).Error)
	quiet := seedPost(t, base.db, 1, 11, models.PostTypeThread, now.Add(-2*time.Hour))
	seedPost(t, base.db, 2, 12, models.PostTypeThread, now) // not subscribed

	posts, err := repo.Get(context.Background(), 1, FeedSubscribedHubs, 10, 0)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, active.ID, posts[0].ID)
	assert.Equal(t, quiet.ID, posts[1].ID)
}

func TestRecommendedFeed(t *testing.T) {
	base := newTestRepo(t)
	repo := NewFeedRepository(base)
	now := time.Now().UTC()

	// All-time engagement counts, unlike trending
	veteran := seedPost(t, base.db, 1, 10, models.PostTypeThread, now.Add(-30*24*time.Hour))
	for i := int64(1); i <= 4; i++ {
		seedVote(t, base.db, veteran.ID, i, models.VoteUp, now.Add(-20*24*time.Hour))
	}
	fresh := seedPost(t, base.db, 1, 11, models.PostTypeThread, now)

	posts, err := repo.Get(context.Background(), 1, FeedRecommended, 10, 0)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, veteran.ID, posts[0].ID)
	assert.Equal(t, 4, posts[0].Votes)
	assert.Equal(t, fresh.ID, posts[1].ID)
}

func TestLeaderboard(t *testing.T) {
	base := newTestRepo(t)
	repo := NewFeedRepository(base)
	now := time.Now().UTC()

	// user 10: two posts, no votes -> 20
	seedPost(t, base.db, 1, 10, models.PostTypeThread, now)
	seedPost(t, base.db, 1, 10, models.PostTypeThread, now)

	// user 11: one post, three up-votes -> 25
	popular := seedPost(t, base.db, 1, 11, models.PostTypeThread, now)
	for i := int64(1); i <= 3; i++ {
		seedVote(t, base.db, popular.ID, i, models.VoteUp, now)
	}

	entries, err := repo.Leaderboard(context.Background(), 10, PeriodAllTime)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, 1, entries[0].Rank)
	assert.Equal(t, int64(11), entries[0].UserID)
	assert.Equal(t, 25, entries[0].Reputation)
	assert.Equal(t, 3, entries[0].HelpfulVotes)

	assert.Equal(t, 2, entries[1].Rank)
	assert.Equal(t, int64(10), entries[1].UserID)
	assert.Equal(t, 20, entries[1].Reputation)
}

func TestLeaderboardWindow(t *testing.T) {
	base := newTestRepo(t)
	repo := NewFeedRepository(base)
	now := time.Now().UTC()

	seedPost(t, base.db, 1, 10, models.PostTypeThread, now.Add(-60*24*time.Hour))
	seedPost(t, base.db, 1, 11, models.PostTypeThread, now)

	entries, err := repo.Leaderboard(context.Background(), 10, PeriodWeek)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, int64(11), entries[0].UserID)

	_, err = repo.Leaderboard(context.Background(), 10, "fortnight")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestSearch(t *testing.T) {
	base := newTestRepo(t)
	repo := NewFeedRepository(base)
	ctx := context.Background()
	now := time.Now().UTC()

	goroutines := seedPost(t, base.db, 1, 10, models.PostTypeQuestion, now.Add(-time.Hour))
	require.NoError(t, base.db.Model(goroutines).Update("content", "how do goroutines work").Error)
	channels := seedPost(t, base.db, 1, 11, models.PostTypeThread, now)
	require.NoError(t, base.db.Model(channels).Update("content", "goroutines and channels together").Error)
	seedPost(t, base.db, 2, 12, models.PostTypeThread, now)

	results, err := repo.Search(ctx, &SearchParams{Query: "goroutines", SortBy: "date"})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, channels.ID, results[0].ID)

	results, err = repo.Search(ctx, &SearchParams{
		Query:     "goroutines",
		PostTypes: []string{models.PostTypeQuestion},
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, goroutines.ID, results[0].ID)

	hubIDs := []int64{2}
	results, err = repo.Search(ctx, &SearchParams{HubIDs: hubIDs})
	require.NoError(t, err)
	require.Len(t, results, 1)

	from := now.Add(-30 * time.Minute)
	results, err = repo.Search(ctx, &SearchParams{Query: "goroutines", DateFrom: &from})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, channels.ID, results[0].ID)
}

func TestSearchTagFilter(t *testing.T) {
	base := newTestRepo(t)
	repo := NewFeedRepository(base)
	now := time.Now().UTC()

	tagged := seedPost(t, base.db, 1, 10, models.PostTypeQuestion, now)
	require.NoError(t, base.db.Create(&models.PostTag{PostID: tagged.ID, Tag: "concurrency"}).Error)
	seedPost(t, base.db, 1, 11, models.PostTypeQuestion, now)

	results, err := repo.Search(context.Background(), &SearchParams{Tags: []string{"concurrency"}})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, tagged.ID, results[0].ID)
}
