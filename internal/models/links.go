package models

// Content-link join rows tie posts to learning material elsewhere in
// the platform. Inserts ignore duplicates.

// PostTaskLink links a post to a task
type PostTaskLink struct {
	PostID int64 `gorm:"primaryKey;column:post_id"`
	TaskID int64 `gorm:"primaryKey;column:task_id"`
}

// TableName specifies the table name for PostTaskLink
func (PostTaskLink) TableName() string {
	return "post_task_links"
}

// PostSkillLink links a post to a skill by lowercased name
type PostSkillLink struct {
	PostID    int64  `gorm:"primaryKey;column:post_id"`
	SkillName string `gorm:"type:varchar(64);primaryKey;column:skill_name"`
}

// TableName specifies the table name for PostSkillLink
func (PostSkillLink) TableName() string {
	return "post_skill_links"
}

// PostBadgeLink links a post to a badge
type PostBadgeLink struct {
	PostID  int64 `gorm:"primaryKey;column:post_id"`
	BadgeID int64 `gorm:"primaryKey;column:badge_id"`
}

// TableName specifies the table name for PostBadgeLink
func (PostBadgeLink) TableName() string {
	return "post_badge_links"
}
