package models

import "time"

// Reputation action kinds; each names the counter column it increments.
// The fixed set keeps counter updates parameterized instead of
// interpolating caller input into SQL.
const (
	RepHelpfulAnswers    = "helpful_answers"
	RepAcceptedAnswers   = "accepted_answers"
	RepUpvotesReceived   = "upvotes_received"
	RepDownvotesReceived = "downvotes_received"
	RepPostsCreated      = "posts_created"
	RepModeratorActions  = "moderator_actions"
)

// ValidReputationKind reports whether kind names a known counter
func ValidReputationKind(kind string) bool {
	switch kind {
	case RepHelpfulAnswers, RepAcceptedAnswers, RepUpvotesReceived,
		RepDownvotesReceived, RepPostsCreated, RepModeratorActions:
		return true
	}
	return false
}

// Reputation is a per-(user, hub) running total. Global reputation is
// not stored separately; reads aggregate with SUM across hub rows.
type Reputation struct {
	UserID            int64     `gorm:"primaryKey;column:user_id"`
	HubID             int64     `gorm:"primaryKey;column:hub_id"`
	Score             int       `gorm:"not null;default:0;column:score"`
	HelpfulAnswers    int       `gorm:"not null;default:0;column:helpful_answers"`
	AcceptedAnswers   int       `gorm:"not null;default:0;column:accepted_answers"`
	UpvotesReceived   int       `gorm:"not null;default:0;column:upvotes_received"`
	DownvotesReceived int       `gorm:"not null;default:0;column:downvotes_received"`
	PostsCreated      int       `gorm:"not null;default:0;column:posts_created"`
	ModeratorActions  int       `gorm:"not null;default:0;column:moderator_actions"`
	LastUpdated       time.Time `gorm:"not null;autoUpdateTime;column:last_updated"`
}

// TableName specifies the table name for Reputation
func (Reputation) TableName() string {
	return "user_reputation"
}

// ReputationSummary is the zero-defaulted read shape for reputation,
// either hub-scoped or aggregated globally
type ReputationSummary struct {
	Score             int `json:"score"`
	HelpfulAnswers    int `json:"helpful_answers"`
	AcceptedAnswers   int `json:"accepted_answers"`
	UpvotesReceived   int `json:"upvotes_received"`
	DownvotesReceived int `json:"downvotes_received"`
	PostsCreated      int `json:"posts_created"`
	ModeratorActions  int `json:"moderator_actions"`
}
