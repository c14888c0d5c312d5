package models

import (
	"database/sql"
	"time"
)

// Post types
const (
	PostTypeThread   = "thread"
	PostTypeQuestion = "question"
	PostTypePoll     = "poll"
	PostTypeReply    = "reply"
)

// Moderation statuses
const (
	ModerationStatusPending  = "pending"
	ModerationStatusApproved = "approved"
	ModerationStatusFlagged  = "flagged"
	ModerationStatusHidden   = "hidden"
	ModerationStatusDeleted  = "deleted"
)

// ValidPostType reports whether t is a known post type
func ValidPostType(t string) bool {
	switch t {
	case PostTypeThread, PostTypeQuestion, PostTypePoll, PostTypeReply:
		return true
	}
	return false
}

// Post is any content unit: thread, question, poll, or reply.
// Replies reference their parent through ParentID; reply chains are one
// level deep (replies to replies are rejected at the application layer).
type Post struct {
	ID               int64           `gorm:"primaryKey;autoIncrement;column:id"`
	HubID            int64           `gorm:"not null;index;column:hub_id"`
	AuthorID         int64           `gorm:"not null;index;column:user_id"`
	ParentID         sql.NullInt64   `gorm:"index;column:parent_id"`
	Title            sql.NullString  `gorm:"type:varchar(255);column:title"`
	Body             string          `gorm:"type:text;not null;column:content"`
	Type             string          `gorm:"type:varchar(16);not null;column:post_type"`
	Category         sql.NullString  `gorm:"type:varchar(64);column:category"`
	ModerationStatus string          `gorm:"type:varchar(16);not null;default:pending;column:moderation_status"`
	ModerationScore  sql.NullFloat64 `gorm:"column:ai_moderation_score"`
	ReplyCount       int             `gorm:"not null;default:0;column:reply_count"`
	ViewCount        int             `gorm:"not null;default:0;column:view_count"`
	IsAnswered       sql.NullBool    `gorm:"column:is_answered"`
	AcceptedAnswerID sql.NullInt64   `gorm:"column:accepted_answer_id"`

	// Poll fields
	PollDurationDays     sql.NullInt64 `gorm:"column:poll_duration_days"`
	PollExpiresAt        sql.NullTime  `gorm:"column:poll_expires_at"`
	AllowMultipleAnswers sql.NullBool  `gorm:"column:allow_multiple_answers"`

	CreatedAt    time.Time `gorm:"not null;autoCreateTime;column:created_at"`
	LastActivity time.Time `gorm:"not null;autoCreateTime;column:last_activity"`

	// Relationships
	Parent   *Post  `gorm:"foreignKey:ParentID;references:ID;constraint:OnDelete:CASCADE"`
	Children []Post `gorm:"foreignKey:ParentID;references:ID"`
}

// TableName specifies the table name for Post
func (Post) TableName() string {
	return "posts"
}

// PollOption is a selectable answer belonging to exactly one poll post
type PollOption struct {
	ID     int64  `gorm:"primaryKey;autoIncrement;column:id"`
	PostID int64  `gorm:"not null;index;column:post_id"`
	Text   string `gorm:"type:varchar(255);not null;column:option_text"`
	Order  int    `gorm:"not null;column:option_order"`
}

// TableName specifies the table name for PollOption
func (PollOption) TableName() string {
	return "poll_options"
}

// PollVote ties (post, user, option); re-voting replaces all rows for
// the (post, user) pair
type PollVote struct {
	ID        int64     `gorm:"primaryKey;autoIncrement;column:id"`
	PostID    int64     `gorm:"not null;index:idx_poll_votes_post_user;column:post_id"`
	UserID    int64     `gorm:"not null;index:idx_poll_votes_post_user;column:user_id"`
	OptionID  int64     `gorm:"not null;index;column:option_id"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime;column:created_at"`
}

// TableName specifies the table name for PollVote
func (PollVote) TableName() string {
	return "poll_votes"
}

// PostTag is a post-to-tag mapping; tags are stored lowercased and trimmed
type PostTag struct {
	PostID int64  `gorm:"primaryKey;column:post_id"`
	Tag    string `gorm:"type:varchar(64);primaryKey;column:tag"`
}

// TableName specifies the table name for PostTag
func (PostTag) TableName() string {
	return "post_tags"
}
