package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/sensai/hubmind/internal/models"
)

// ModerationRepository records moderation actions, keeps post statuses
// in sync with them and manages user-filed reports
type ModerationRepository struct {
	*Repository
}

// NewModerationRepository creates a new moderation repository
func NewModerationRepository(repo *Repository) *ModerationRepository {
	return &ModerationRepository{Repository: repo}
}

// ApplyActionParams describes one moderation decision. ModeratorID is
// nil for automated actions.
type ApplyActionParams struct {
	PostID       int64
	ModeratorID  *int64
	ActionType   string
	Reason       string
	AIModerated  bool
	AIConfidence *float64
}

// statusForAction maps an action type to the post status it leaves
// behind
func statusForAction(action string) string {
	switch action {
	case models.ActionApprove:
		return models.ModerationStatusApproved
	case models.ActionFlag:
		return models.ModerationStatusFlagged
	case models.ActionHide:
		return models.ModerationStatusHidden
	case models.ActionDelete:
		return models.ModerationStatusDeleted
	}
	return ""
}

// ApplyAction logs a moderation action and transitions the post to the
// matching status. Human moderators earn moderator-action reputation in
// the hub the post belongs to; automated actions do not.
func (r *ModerationRepository) ApplyAction(ctx context.Context, params *ApplyActionParams) (*models.ModerationAction, error) {
	if !models.ValidModerationAction(params.ActionType) {
		return nil, fmt.Errorf("%w: unknown moderation action %q", ErrValidation, params.ActionType)
	}

	action := models.ModerationAction{
		PostID:        params.PostID,
		ActionType:    params.ActionType,
		Reason:        params.Reason,
		IsAIModerated: params.AIModerated,
	}
	if params.ModeratorID != nil {
		action.ModeratorID = sql.NullInt64{Int64: *params.ModeratorID, Valid: true}
	}
	if params.AIConfidence != nil {
		action.AIConfidence = sql.NullFloat64{Float64: *params.AIConfidence, Valid: true}
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.First(&post, params.PostID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: post %d", ErrNotFound, params.PostID)
			}
			return fmt.Errorf("failed to load post: %w", err)
		}

		if err := tx.Create(&action).Error; err != nil {
			return fmt.Errorf("failed to record moderation action: %w", err)
		}

		updates := map[string]interface{}{
			"moderation_status": statusForAction(params.ActionType),
		}
		if params.AIConfidence != nil {
			updates["ai_moderation_score"] = *params.AIConfidence
		}
		if err := tx.Model(&models.Post{}).Where("id = ?", params.PostID).
			Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update post status: %w", err)
		}

		if params.ModeratorID != nil {
			if err := creditReputation(tx, *params.ModeratorID, post.HubID, models.RepModeratorActions, 2); err != nil {
				return fmt.Errorf("failed to credit moderator: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &action, nil
}

// History returns the action log for a post, newest first
func (r *ModerationRepository) History(ctx context.Context, postID int64) ([]models.ModerationAction, error) {
	var actions []models.ModerationAction
	err := r.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("created_at DESC").
		Find(&actions).Error
	if err != nil {
		return nil, err
	}
	return actions, nil
}

// FileReport records a user report against a post. The report starts
// pending and does not change the post's status by itself.
func (r *ModerationRepository) FileReport(ctx context.Context, postID, reporterID int64, reason, description string) (*models.Report, error) {
	if !models.ValidReportReason(reason) {
		return nil, fmt.Errorf("%w: unknown report reason %q", ErrValidation, reason)
	}

	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Post{}).
		Where("id = ?", postID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, fmt.Errorf("%w: post %d", ErrNotFound, postID)
	}

	report := models.Report{
		PostID:     postID,
		ReporterID: reporterID,
		Reason:     reason,
		Status:     models.ReportStatusPending,
	}
	if description != "" {
		report.Description = sql.NullString{String: description, Valid: true}
	}
	if err := r.db.WithContext(ctx).Create(&report).Error; err != nil {
		return nil, fmt.Errorf("failed to file report: %w", err)
	}
	return &report, nil
}

// validReportTransitions maps a report status to the statuses it may
// move to
var validReportTransitions = map[string][]string{
	models.ReportStatusPending:  {models.ReportStatusReviewed, models.ReportStatusResolved, models.ReportStatusDismissed},
	models.ReportStatusReviewed: {models.ReportStatusResolved, models.ReportStatusDismissed},
}

// UpdateReportStatus advances a report through its review lifecycle.
// Resolved and dismissed are terminal.
func (r *ModerationRepository) UpdateReportStatus(ctx context.Context, reportID int64, status string) (*models.Report, error) {
	var report models.Report
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&report, reportID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: report %d", ErrNotFound, reportID)
			}
			return err
		}

		allowed := false
		for _, next := range validReportTransitions[report.Status] {
			if next == status {
				allowed = true
				break
			}
		}
		if !allowed {
			return fmt.Errorf("%w: cannot move report from %q to %q", ErrValidation, report.Status, status)
		}

		if err := tx.Model(&models.Report{}).Where("id = ?", reportID).
			Update("status", status).Error; err != nil {
			return fmt.Errorf("failed to update report: %w", err)
		}
		report.Status = status
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &report, nil
}

// PendingReport is a report joined with the reported post for review
// queues
type PendingReport struct {
	ID          int64     `gorm:"column:id" json:"id"`
	PostID      int64     `gorm:"column:post_id" json:"post_id"`
	ReporterID  int64     `gorm:"column:reporter_id" json:"reporter_id"`
	Reason      string    `gorm:"column:reason" json:"reason"`
	Description *string   `gorm:"column:description" json:"description,omitempty"`
	CreatedAt   time.Time `gorm:"column:created_at" json:"created_at"`
	HubID       int64     `gorm:"column:hub_id" json:"hub_id"`
	PostContent string    `gorm:"column:content" json:"post_content"`
	PostStatus  string    `gorm:"column:moderation_status" json:"post_status"`
}

// PendingReports lists open reports, oldest first, optionally limited
// to one hub
func (r *ModerationRepository) PendingReports(ctx context.Context, hubID *int64, limit, offset int) ([]PendingReport, error) {
	query := r.db.WithContext(ctx).
		Table("post_reports pr").
		Select("pr.id, pr.post_id, pr.reporter_id, pr.reason, pr.description, pr.created_at, p.hub_id, p.content, p.moderation_status").
		Joins("JOIN posts p ON pr.post_id = p.id").
		Where("pr.status = ?", models.ReportStatusPending).
		Order("pr.created_at ASC").
		Limit(limit).Offset(offset)
	if hubID != nil {
		query = query.Where("p.hub_id = ?", *hubID)
	}

	var reports []PendingReport
	if err := query.Scan(&reports).Error; err != nil {
		return nil, err
	}
	return reports, nil
}
