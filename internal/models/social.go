package models

import "time"

// Follow is a directed user-to-user relation, unique per ordered pair
type Follow struct {
	FollowerID  int64     `gorm:"primaryKey;column:follower_id"`
	FollowingID int64     `gorm:"primaryKey;column:following_id"`
	CreatedAt   time.Time `gorm:"not null;autoCreateTime;column:created_at"`
}

// TableName specifies the table name for Follow
func (Follow) TableName() string {
	return "user_follows"
}

// HubSubscription is a user-to-hub relation, unique per pair
type HubSubscription struct {
	UserID                 int64     `gorm:"primaryKey;column:user_id"`
	HubID                  int64     `gorm:"primaryKey;column:hub_id"`
	NotificationPreference string    `gorm:"type:varchar(16);not null;default:all;column:notification_preference"`
	CreatedAt              time.Time `gorm:"not null;autoCreateTime;column:created_at"`
}

// TableName specifies the table name for HubSubscription
func (HubSubscription) TableName() string {
	return "hub_subscriptions"
}
