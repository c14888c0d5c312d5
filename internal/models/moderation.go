package models

import (
	"database/sql"
	"time"
)

// Moderation action types
const (
	ActionApprove = "approve"
	ActionFlag    = "flag"
	ActionHide    = "hide"
	ActionDelete  = "delete"
)

// ValidModerationAction reports whether t is a known action type
func ValidModerationAction(t string) bool {
	switch t {
	case ActionApprove, ActionFlag, ActionHide, ActionDelete:
		return true
	}
	return false
}

// ModerationAction is an immutable log row for an action taken on a
// post, by a human moderator or the automated scorer
type ModerationAction struct {
	ID            int64           `gorm:"primaryKey;autoIncrement;column:id"`
	PostID        int64           `gorm:"not null;index;column:post_id"`
	ModeratorID   sql.NullInt64   `gorm:"column:moderator_id"`
	ActionType    string          `gorm:"type:varchar(16);not null;column:action_type"`
	Reason        string          `gorm:"type:text;not null;column:reason"`
	IsAIModerated bool            `gorm:"not null;default:false;column:is_ai_moderated"`
	AIConfidence  sql.NullFloat64 `gorm:"column:ai_confidence"`
	CreatedAt     time.Time       `gorm:"not null;autoCreateTime;column:created_at"`
}

// TableName specifies the table name for ModerationAction
func (ModerationAction) TableName() string {
	return "moderation_actions"
}

// Report statuses
const (
	ReportStatusPending   = "pending"
	ReportStatusReviewed  = "reviewed"
	ReportStatusResolved  = "resolved"
	ReportStatusDismissed = "dismissed"
)

// Report reasons
const (
	ReportReasonSpam          = "spam"
	ReportReasonHarassment    = "harassment"
	ReportReasonOffTopic      = "off_topic"
	ReportReasonMisinformation = "misinformation"
	ReportReasonOther         = "other"
)

// ValidReportReason reports whether r is a known report reason
func ValidReportReason(r string) bool {
	switch r {
	case ReportReasonSpam, ReportReasonHarassment, ReportReasonOffTopic,
		ReportReasonMisinformation, ReportReasonOther:
		return true
	}
	return false
}

// Report is a user-filed flag on a post, independent of the
// moderation-action log
type Report struct {
	ID          int64          `gorm:"primaryKey;autoIncrement;column:id"`
	PostID      int64          `gorm:"not null;index;column:post_id"`
	ReporterID  int64          `gorm:"not null;column:reporter_id"`
	Reason      string         `gorm:"type:varchar(32);not null;column:reason"`
	Description sql.NullString `gorm:"type:text;column:description"`
	Status      string         `gorm:"type:varchar(16);not null;default:pending;column:status"`
	CreatedAt   time.Time      `gorm:"not null;autoCreateTime;column:created_at"`
}

// TableName specifies the table name for Report
func (Report) TableName() string {
	return "post_reports"
}
