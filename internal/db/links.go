package db

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm/clause"

	"github.com/sensai/hubmind/internal/models"
)

// LinkRepository ties posts to tasks, skills and badges elsewhere in
// the platform
type LinkRepository struct {
	*Repository
}

// NewLinkRepository creates a new link repository
func NewLinkRepository(repo *Repository) *LinkRepository {
	return &LinkRepository{Repository: repo}
}

// PostLinks is the full set of learning-material links on one post
type PostLinks struct {
	TaskIDs  []int64  `json:"task_ids"`
	Skills   []string `json:"skills"`
	BadgeIDs []int64  `json:"badge_ids"`
}

// LinkTask attaches a task to a post. Duplicates are ignored.
func (r *LinkRepository) LinkTask(ctx context.Context, postID, taskID int64) error {
	link := models.PostTaskLink{PostID: postID, TaskID: taskID}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&link).Error
}

// LinkSkill attaches a skill to a post by name. Names are trimmed and
// lowercased before storage.
func (r *LinkRepository) LinkSkill(ctx context.Context, postID int64, skillName string) error {
	skillName = strings.ToLower(strings.TrimSpace(skillName))
	if skillName == "" {
		return fmt.Errorf("%w: skill name is required", ErrValidation)
	}
	link := models.PostSkillLink{PostID: postID, SkillName: skillName}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&link).Error
}

// LinkBadge attaches a badge to a post. Duplicates are ignored.
func (r *LinkRepository) LinkBadge(ctx context.Context, postID, badgeID int64) error {
	link := models.PostBadgeLink{PostID: postID, BadgeID: badgeID}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&link).Error
}

// UnlinkTask detaches a task from a post if linked
func (r *LinkRepository) UnlinkTask(ctx context.Context, postID, taskID int64) error {
	return r.db.WithContext(ctx).
		Where("post_id = ? AND task_id = ?", postID, taskID).
		Delete(&models.PostTaskLink{}).Error
}

// UnlinkSkill detaches a skill from a post if linked
func (r *LinkRepository) UnlinkSkill(ctx context.Context, postID int64, skillName string) error {
	skillName = strings.ToLower(strings.TrimSpace(skillName))
	return r.db.WithContext(ctx).
		Where("post_id = ? AND skill_name = ?", postID, skillName).
		Delete(&models.PostSkillLink{}).Error
}

// UnlinkBadge detaches a badge from a post if linked
func (r *LinkRepository) UnlinkBadge(ctx context.Context, postID, badgeID int64) error {
	return r.db.WithContext(ctx).
		Where("post_id = ? AND badge_id = ?", postID, badgeID).
		Delete(&models.PostBadgeLink{}).Error
}

// GetLinks returns every task, skill and badge link on a post
func (r *LinkRepository) GetLinks(ctx context.Context, postID int64) (*PostLinks, error) {
	links := PostLinks{
		TaskIDs:  []int64{},
		Skills:   []string{},
		BadgeIDs: []int64{},
	}

	if err := r.db.WithContext(ctx).
		Model(&models.PostTaskLink{}).
		Where("post_id = ?", postID).
		Order("task_id ASC").
		Pluck("task_id", &links.TaskIDs).Error; err != nil {
		return nil, err
	}

	if err := r.db.WithContext(ctx).
		Model(&models.PostSkillLink{}).
		Where("post_id = ?", postID).
		Order("skill_name ASC").
		Pluck("skill_name", &links.Skills).Error; err != nil {
		return nil, err
	}

	if err := r.db.WithContext(ctx).
		Model(&models.PostBadgeLink{}).
		Where("post_id = ?", postID).
		Order("badge_id ASC").
		Pluck("badge_id", &links.BadgeIDs).Error; err != nil {
		return nil, err
	}

	return &links, nil
}
