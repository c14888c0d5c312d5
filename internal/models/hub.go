package models

import (
	"database/sql"
	"time"
)

// Hub is a topic-scoped forum container within an organization
type Hub struct {
	ID              int64          `gorm:"primaryKey;autoIncrement;column:id"`
	OrgID           int64          `gorm:"not null;index;column:org_id"`
	Name            string         `gorm:"type:varchar(255);not null;column:name"`
	Description     sql.NullString `gorm:"type:text;column:description"`
	PostCount       int            `gorm:"not null;default:0;column:post_count"`
	SubscriberCount int            `gorm:"not null;default:0;column:subscriber_count"`
	ActiveToday     int            `gorm:"not null;default:0;column:active_today"`
	CreatedAt       time.Time      `gorm:"not null;autoCreateTime;column:created_at"`
}

// TableName specifies the table name for Hub
func (Hub) TableName() string {
	return "hubs"
}
