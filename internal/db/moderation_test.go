package db

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sensai/hubmind/internal/models"
)

func TestApplyActionByHumanModerator(t *testing.T) {
	base := newTestRepo(t)
	repo := NewModerationRepository(base)
	ctx := context.Background()

	post := seedPost(t, base.db, 7, 10, models.PostTypeThread, time.Now().UTC())

	moderatorID := int64(99)
	action, err := repo.ApplyAction(ctx, &ApplyActionParams{
		PostID:      post.ID,
		ModeratorID: &moderatorID,
		ActionType:  models.ActionHide,
		Reason:      "off topic",
	})
	require.NoError(t, err)
	require.NotZero(t, action.ID)
	assert.False(t, action.IsAIModerated)

	var updated models.Post
	require.NoError(t, base.db.First(&updated, post.ID).Error)
	assert.Equal(t, models.ModerationStatusHidden, updated.ModerationStatus)

	// Moderator earns moderation reputation in the post's hub
	var rep models.Reputation
	require.NoError(t, base.db.Where("user_id = ? AND hub_id = ?", moderatorID, 7).First(&rep).Error)
	assert.Equal(t, 2, rep.Score)
	assert.Equal(t, 1, rep.ModeratorActions)
}

func TestApplyActionByAI(t *testing.T) {
	base := newTestRepo(t)
	repo := NewModerationRepository(base)
	ctx := context.Background()

	post := seedPost(t, base.db, 7, 10, models.PostTypeThread, time.Now().UTC())

	confidence := 0.4
	action, err := repo.ApplyAction(ctx, &ApplyActionParams{
		PostID:       post.ID,
		ActionType:   models.ActionFlag,
		Reason:       "possible hostility",
		AIModerated:  true,
		AIConfidence: &confidence,
	})
	require.NoError(t, err)
	assert.True(t, action.IsAIModerated)
	assert.False(t, action.ModeratorID.Valid)

	var updated models.Post
	require.NoError(t, base.db.First(&updated, post.ID).Error)
	assert.Equal(t, models.ModerationStatusFlagged, updated.ModerationStatus)
	assert.InDelta(t, 0.4, updated.ModerationScore.Float64, 1e-9)

	// No reputation credited for automated actions
	var count int64
	require.NoError(t, base.db.Model(&models.Reputation{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestApplyActionValidation(t *testing.T) {
	base := newTestRepo(t)
	repo := NewModerationRepository(base)
	ctx := context.Background()

	_, err := repo.ApplyAction(ctx, &ApplyActionParams{PostID: 1, ActionType: "escalate", Reason: "x"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = repo.ApplyAction(ctx, &ApplyActionParams{PostID: 9999, ActionType: models.ActionApprove, Reason: "x"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestApplyActionStatusMapping(t *testing.T) {
	tests := []struct {
		action string
		status string
	}{
		{models.ActionApprove, models.ModerationStatusApproved},
		{models.ActionFlag, models.ModerationStatusFlagged},
		{models.ActionHide, models.ModerationStatusHidden},
		{models.ActionDelete, models.ModerationStatusDeleted},
	}

	base := newTestRepo(t)
	repo := NewModerationRepository(base)
	ctx := context.Background()

	for _, tt := range tests {
		t.Run(tt.action, func(t *testing.T) {
			post := seedPost(t, base.db, 1, 10, models.PostTypeThread, time.Now().UTC())
			_, err := repo.ApplyAction(ctx, &ApplyActionParams{
				PostID: post.ID, ActionType: tt.action, Reason: "test",
			})
			require.NoError(t, err)

			var updated models.Post
			require.NoError(t, base.db.First(&updated, post.ID).Error)
			assert.Equal(t, tt.status, updated.ModerationStatus)
		})
	}
}

func TestReportLifecycle(t *testing.T) {
	base := newTestRepo(t)
	repo := NewModerationRepository(base)
	ctx := context.Background()

	post := seedPost(t, base.db, 1, 10, models.PostTypeThread, time.Now().UTC())

	report, err := repo.FileReport(ctx, post.ID, 42, models.ReportReasonSpam, "looks promotional")
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusPending, report.Status)

	// pending -> reviewed -> resolved
	updated, err := repo.UpdateReportStatus(ctx, report.ID, models.ReportStatusReviewed)
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusReviewed, updated.Status)

	updated, err = repo.UpdateReportStatus(ctx, report.ID, models.ReportStatusResolved)
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusResolved, updated.Status)

	// Resolved is terminal
	_, err = repo.UpdateReportStatus(ctx, report.ID, models.ReportStatusReviewed)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestFileReportValidation(t *testing.T) {
	base := newTestRepo(t)
	repo := NewModerationRepository(base)
	ctx := context.Background()

	post := seedPost(t, base.db, 1, 10, models.PostTypeThread, time.Now().UTC())

	_, err := repo.FileReport(ctx, post.ID, 42, "rudeness", "")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = repo.FileReport(ctx, 9999, 42, models.ReportReasonSpam, "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPendingReports(t *testing.T) {
	base := newTestRepo(t)
	repo := NewModerationRepository(base)
	ctx := context.Background()

	hub1Post := seedPost(t, base.db, 1, 10, models.PostTypeThread, time.Now().UTC())
	hub2Post := seedPost(t, base.db, 2, 11, models.PostTypeThread, time.Now().UTC())

	first, err := repo.FileReport(ctx, hub1Post.ID, 42, models.ReportReasonSpam, "")
	require.NoError(t, err)
	_, err = repo.FileReport(ctx, hub2Post.ID, 43, models.ReportReasonHarassment, "")
	require.NoError(t, err)

	resolved, err := repo.FileReport(ctx, hub1Post.ID, 44, models.ReportReasonOther, "")
	require.NoError(t, err)
	_, err = repo.UpdateReportStatus(ctx, resolved.ID, models.ReportStatusDismissed)
	require.NoError(t, err)

	all, err := repo.PendingReports(ctx, nil, 50, 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	hubID := int64(1)
	scoped, err := repo.PendingReports(ctx, &hubID, 50, 0)
	require.NoError(t, err)
	require.Len(t, scoped, 1)
	assert.Equal(t, first.ID, scoped[0].ID)
	assert.Equal(t, models.ReportReasonSpam, scoped[0].Reason)
}
