package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/sensai/hubmind/internal/models"
)

// HubRepository manages hubs and their cached activity stats
type HubRepository struct {
	*Repository
}

// NewHubRepository creates a new hub repository
func NewHubRepository(repo *Repository) *HubRepository {
	return &HubRepository{Repository: repo}
}

// Create inserts a hub for an org
func (r *HubRepository) Create(ctx context.Context, orgID int64, name, description string) (*models.Hub, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: hub name is required", ErrValidation)
	}

	hub := models.Hub{
		OrgID: orgID,
		Name:  name,
	}
	if description != "" {
		hub.Description = sql.NullString{String: description, Valid: true}
	}
	if err := r.db.WithContext(ctx).Create(&hub).Error; err != nil {
		return nil, fmt.Errorf("failed to create hub: %w", err)
	}
	return &hub, nil
}

// GetByID retrieves a hub by ID
func (r *HubRepository) GetByID(ctx context.Context, id int64) (*models.Hub, error) {
	var hub models.Hub
	err := r.db.WithContext(ctx).First(&hub, id).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &hub, nil
}

// ListByOrg returns an org's hubs ordered by name
func (r *HubRepository) ListByOrg(ctx context.Context, orgID int64) ([]models.Hub, error) {
	var hubs []models.Hub
	err := r.db.WithContext(ctx).
		Where("org_id = ?", orgID).
		Order("name ASC").
		Find(&hubs).Error
	if err != nil {
		return nil, err
	}
	return hubs, nil
}

// Delete removes a hub. Posts and subscriptions cascade at the schema
// level.
func (r *HubRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&models.Hub{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: hub %d", ErrNotFound, id)
	}
	return nil
}

// RefreshStats recomputes a hub's cached counters: approved post
// count, subscriber count and the number of distinct authors active
// since midnight UTC
func (r *HubRepository) RefreshStats(ctx context.Context, hubID int64) error {
	now := time.Now().UTC()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var postCount int64
		if err := tx.Model(&models.Post{}).
			Where("hub_id = ? AND moderation_status = ?", hubID, models.ModerationStatusApproved).
			Count(&postCount).Error; err != nil {
			return fmt.Errorf("failed to count posts: %w", err)
		}

		var subscriberCount int64
		if err := tx.Model(&models.HubSubscription{}).
			Where("hub_id = ?", hubID).
			Count(&subscriberCount).Error; err != nil {
			return fmt.Errorf("failed to count subscribers: %w", err)
		}

		var activeToday int64
		if err := tx.Model(&models.Post{}).
			Distinct("user_id").
			Where("hub_id = ? AND created_at >= ?", hubID, midnight).
			Count(&activeToday).Error; err != nil {
			return fmt.Errorf("failed to count active users: %w", err)
		}

		return tx.Model(&models.Hub{}).Where("id = ?", hubID).
			Updates(map[string]interface{}{
				"post_count":       postCount,
				"subscriber_count": subscriberCount,
				"active_today":     activeToday,
			}).Error
	})
}
