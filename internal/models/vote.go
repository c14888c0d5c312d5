package models

import "time"

// Vote types
const (
	VoteUp   = "up"
	VoteDown = "down"
)

// Vote is a user's up/down vote on a post, unique per (post, user).
// Absence of a row means no vote; un-voting deletes the row.
type Vote struct {
	PostID    int64     `gorm:"primaryKey;column:post_id"`
	UserID    int64     `gorm:"primaryKey;column:user_id"`
	VoteType  string    `gorm:"type:varchar(8);not null;column:vote_type"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime;column:created_at"`
}

// TableName specifies the table name for Vote
func (Vote) TableName() string {
	return "post_votes"
}
