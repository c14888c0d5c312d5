package db

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sensai/hubmind/internal/models"
)

func strPtr(s string) *string { return &s }

func TestCreateThreadWithTags(t *testing.T) {
	repo := NewPostRepository(newTestRepo(t))
	ctx := context.Background()

	post, err := repo.Create(ctx, &CreatePostParams{
		HubID:    1,
		AuthorID: 10,
		Title:    strPtr("Recursion question"),
		Body:     "How does recursion work?",
		Type:     models.PostTypeQuestion,
		Tags:     []string{" Go ", "RECURSION", "go"},
	})
	require.NoError(t, err)
	require.NotZero(t, post.ID)

	assert.True(t, post.IsAnswered.Valid)
	assert.False(t, post.IsAnswered.Bool)

	tags, err := repo.Tags(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"go", "recursion"}, tags)
}

func TestCreateRejectsInvalidInput(t *testing.T) {
	repo := NewPostRepository(newTestRepo(t))
	ctx := context.Background()

	_, err := repo.Create(ctx, &CreatePostParams{HubID: 1, AuthorID: 1, Body: "x", Type: "essay"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = repo.Create(ctx, &CreatePostParams{HubID: 1, AuthorID: 1, Body: "   ", Type: models.PostTypeThread})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = repo.Create(ctx, &CreatePostParams{HubID: 1, AuthorID: 1, Body: "pick one", Type: models.PostTypePoll})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCreateReplyBumpsParent(t *testing.T) {
	repo := NewPostRepository(newTestRepo(t))
	ctx := context.Background()

	parent, err := repo.Create(ctx, &CreatePostParams{
		HubID: 1, AuthorID: 10, Body: "parent", Type: models.PostTypeThread,
	})
	require.NoError(t, err)

	reply, err := repo.Create(ctx, &CreatePostParams{
		HubID: 1, AuthorID: 11, ParentID: &parent.ID, Body: "a reply", Type: models.PostTypeReply,
	})
	require.NoError(t, err)

	got, err := repo.GetByID(ctx, parent.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.ReplyCount)

	// One level deep only
	_, err = repo.Create(ctx, &CreatePostParams{
		HubID: 1, AuthorID: 12, ParentID: &reply.ID, Body: "nested", Type: models.PostTypeReply,
	})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestSetVoteUpsert(t *testing.T) {
	base := newTestRepo(t)
	repo := NewPostRepository(base)
	ctx := context.Background()

	post, err := repo.Create(ctx, &CreatePostParams{
		HubID: 1, AuthorID: 10, Body: "vote on me", Type: models.PostTypeThread,
	})
	require.NoError(t, err)

	up, down := models.VoteUp, models.VoteDown
	require.NoError(t, repo.SetVote(ctx, post.ID, 42, &up))
	require.NoError(t, repo.SetVote(ctx, post.ID, 42, &down))

	var votes []models.Vote
	require.NoError(t, base.db.Find(&votes).Error)
	require.Len(t, votes, 1)
	assert.Equal(t, models.VoteDown, votes[0].VoteType)

	// Null vote deletes the row
	require.NoError(t, repo.SetVote(ctx, post.ID, 42, nil))
	require.NoError(t, base.db.Find(&votes).Error)
	assert.Empty(t, votes)

	bad := "sideways"
	assert.ErrorIs(t, repo.SetVote(ctx, post.ID, 42, &bad), ErrValidation)
}

func TestVoteOnPollReplacesSelection(t *testing.T) {
	base := newTestRepo(t)
	repo := NewPostRepository(base)
	ctx := context.Background()

	multi := true
	days := 7
	poll, err := repo.Create(ctx, &CreatePostParams{
		HubID: 1, AuthorID: 10, Body: "favorite language?", Type: models.PostTypePoll,
		PollOptions: []string{"Go", "Python", "Rust"}, PollDurationDays: &days,
		AllowMultipleAnswers: &multi,
	})
	require.NoError(t, err)
	assert.True(t, poll.PollExpiresAt.Valid)

	var options []models.PollOption
	require.NoError(t, base.db.Where("post_id = ?", poll.ID).Order("option_order").Find(&options).Error)
	require.Len(t, options, 3)

	require.NoError(t, repo.VoteOnPoll(ctx, poll.ID, 42, []int64{options[0].ID, options[1].ID}))
	require.NoError(t, repo.VoteOnPoll(ctx, poll.ID, 42, []int64{options[2].ID}))

	selected, err := repo.UserPollVotes(ctx, poll.ID, 42)
	require.NoError(t, err)
	assert.Equal(t, []int64{options[2].ID}, selected)

	// Options from another poll are rejected
	other, err := repo.Create(ctx, &CreatePostParams{
		HubID: 1, AuthorID: 10, Body: "other poll", Type: models.PostTypePoll,
		PollOptions: []string{"A"},
	})
	require.NoError(t, err)
	var otherOption models.PollOption
	require.NoError(t, base.db.Where("post_id = ?", other.ID).First(&otherOption).Error)
	assert.ErrorIs(t, repo.VoteOnPoll(ctx, poll.ID, 42, []int64{otherOption.ID}), ErrValidation)
}

func TestVoteOnPollSingleAnswerEnforced(t *testing.T) {
	base := newTestRepo(t)
	repo := NewPostRepository(base)
	ctx := context.Background()

	single := false
	poll, err := repo.Create(ctx, &CreatePostParams{
		HubID: 1, AuthorID: 10, Body: "pick exactly one", Type: models.PostTypePoll,
		PollOptions: []string{"Yes", "No"}, AllowMultipleAnswers: &single,
	})
	require.NoError(t, err)

	var options []models.PollOption
	require.NoError(t, base.db.Where("post_id = ?", poll.ID).Order("option_order").Find(&options).Error)

	err = repo.VoteOnPoll(ctx, poll.ID, 42, []int64{options[0].ID, options[1].ID})
	assert.ErrorIs(t, err, ErrValidation)

	require.NoError(t, repo.VoteOnPoll(ctx, poll.ID, 42, []int64{options[0].ID}))
}

func TestPollOptionsWithVotes(t *testing.T) {
	base := newTestRepo(t)
	repo := NewPostRepository(base)
	ctx := context.Background()

	poll, err := repo.Create(ctx, &CreatePostParams{
		HubID: 1, AuthorID: 10, Body: "tally me", Type: models.PostTypePoll,
		PollOptions: []string{"first", "second"},
	})
	require.NoError(t, err)

	var options []models.PollOption
	require.NoError(t, base.db.Where("post_id = ?", poll.ID).Order("option_order").Find(&options).Error)

	require.NoError(t, repo.VoteOnPoll(ctx, poll.ID, 1, []int64{options[0].ID}))
	require.NoError(t, repo.VoteOnPoll(ctx, poll.ID, 2, []int64{options[0].ID}))
	require.NoError(t, repo.VoteOnPoll(ctx, poll.ID, 3, []int64{options[1].ID}))

	results, err := repo.PollOptionsWithVotes(ctx, poll.ID)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "first", results[0].Text)
	assert.Equal(t, 2, results[0].VoteCount)
	assert.Equal(t, 1, results[1].VoteCount)
}

func TestGetWithComments(t *testing.T) {
	base := newTestRepo(t)
	repo := NewPostRepository(base)
	ctx := context.Background()

	post, err := repo.Create(ctx, &CreatePostParams{
		HubID: 1, AuthorID: 10, Body: "discuss", Type: models.PostTypeThread,
	})
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		_, err := repo.Create(ctx, &CreatePostParams{
			HubID: 1, AuthorID: int64(20 + i), ParentID: &post.ID,
			Body: "reply", Type: models.PostTypeReply,
		})
		require.NoError(t, err)
	}

	up := models.VoteUp
	require.NoError(t, repo.SetVote(ctx, post.ID, 42, &up))

	detail, err := repo.GetWithComments(ctx, post.ID, 42)
	require.NoError(t, err)
	require.NotNil(t, detail)
	assert.Equal(t, 1, detail.Votes)
	require.NotNil(t, detail.ViewerVote)
	assert.Equal(t, models.VoteUp, *detail.ViewerVote)
	assert.Len(t, detail.Comments, 2)

	missing, err := repo.GetWithComments(ctx, 9999, 0)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestAcceptAnswer(t *testing.T) {
	repo := NewPostRepository(newTestRepo(t))
	ctx := context.Background()

	question, err := repo.Create(ctx, &CreatePostParams{
		HubID: 1, AuthorID: 10, Body: "how?", Type: models.PostTypeQuestion,
	})
	require.NoError(t, err)

	answer, err := repo.Create(ctx, &CreatePostParams{
		HubID: 1, AuthorID: 20, ParentID: &question.ID, Body: "like this", Type: models.PostTypeReply,
	})
	require.NoError(t, err)

	// Only the question author may accept
	_, err = repo.AcceptAnswer(ctx, question.ID, answer.ID, 20)
	assert.ErrorIs(t, err, ErrForbidden)

	accepted, err := repo.AcceptAnswer(ctx, question.ID, answer.ID, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(20), accepted.AuthorID)

	got, err := repo.GetByID(ctx, question.ID)
	require.NoError(t, err)
	assert.True(t, got.IsAnswered.Bool)
	assert.Equal(t, answer.ID, got.AcceptedAnswerID.Int64)

	_, err = repo.AcceptAnswer(ctx, 9999, answer.ID, 10)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListByHub(t *testing.T) {
	base := newTestRepo(t)
	repo := NewPostRepository(base)
	ctx := context.Background()

	older := seedPost(t, base.db, 1, 10, models.PostTypeThread, time.Now().UTC().Add(-time.Hour))
	newer := seedPost(t, base.db, 1, 11, models.PostTypeThread, time.Now().UTC())
	seedPost(t, base.db, 2, 12, models.PostTypeThread, time.Now().UTC())

	seedVote(t, base.db, older.ID, 1, models.VoteUp, time.Now().UTC())
	seedVote(t, base.db, older.ID, 2, models.VoteUp, time.Now().UTC())
	seedVote(t, base.db, older.ID, 3, models.VoteDown, time.Now().UTC())

	posts, err := repo.ListByHub(ctx, 1)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, newer.ID, posts[0].ID)
	assert.Equal(t, older.ID, posts[1].ID)
	assert.Equal(t, 1, posts[1].Votes)
}
