package db

import (
	"context"
	"fmt"

	"gorm.io/gorm/clause"

	"github.com/sensai/hubmind/internal/models"
)

// SocialRepository manages user follows and hub subscriptions
type SocialRepository struct {
	*Repository
}

// NewSocialRepository creates a new social repository
func NewSocialRepository(repo *Repository) *SocialRepository {
	return &SocialRepository{Repository: repo}
}

// Follow records that follower follows following. Repeats are no-ops.
func (r *SocialRepository) Follow(ctx context.Context, followerID, followingID int64) error {
	if followerID == followingID {
		return fmt.Errorf("%w: users cannot follow themselves", ErrValidation)
	}
	follow := models.Follow{
		FollowerID:  followerID,
		FollowingID: followingID,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&follow).Error
}

// Unfollow removes a follow relation if present
func (r *SocialRepository) Unfollow(ctx context.Context, followerID, followingID int64) error {
	return r.db.WithContext(ctx).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Delete(&models.Follow{}).Error
}

// Following lists the user IDs the given user follows
func (r *SocialRepository) Following(ctx context.Context, userID int64) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("follower_id = ?", userID).
		Order("created_at DESC").
		Pluck("following_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// Followers lists the user IDs following the given user
func (r *SocialRepository) Followers(ctx context.Context, userID int64) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("following_id = ?", userID).
		Order("created_at DESC").
		Pluck("follower_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// Subscribe adds a hub subscription with the given notification
// preference, defaulting to all. Re-subscribing is a no-op and keeps
// the existing preference.
func (r *SocialRepository) Subscribe(ctx context.Context, userID, hubID int64, notificationPreference string) error {
	if notificationPreference == "" {
		notificationPreference = "all"
	}
	switch notificationPreference {
	case "all", "mentions", "none":
	default:
		return fmt.Errorf("%w: unknown notification preference %q", ErrValidation, notificationPreference)
	}

	sub := models.HubSubscription{
		UserID:                 userID,
		HubID:                  hubID,
		NotificationPreference: notificationPreference,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&sub).Error
}

// Unsubscribe removes a hub subscription if present
func (r *SocialRepository) Unsubscribe(ctx context.Context, userID, hubID int64) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND hub_id = ?", userID, hubID).
		Delete(&models.HubSubscription{}).Error
}

// SetNotificationPreference updates the preference on an existing
// subscription
func (r *SocialRepository) SetNotificationPreference(ctx context.Context, userID, hubID int64, preference string) error {
	switch preference {
	case "all", "mentions", "none":
	default:
		return fmt.Errorf("%w: unknown notification preference %q", ErrValidation, preference)
	}
	result := r.db.WithContext(ctx).
		Model(&models.HubSubscription{}).
		Where("user_id = ? AND hub_id = ?", userID, hubID).
		Update("notification_preference", preference)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: no subscription for user %d in hub %d", ErrNotFound, userID, hubID)
	}
	return nil
}

// Subscriptions lists the hub IDs a user subscribes to
func (r *SocialRepository) Subscriptions(ctx context.Context, userID int64) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).
		Model(&models.HubSubscription{}).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Pluck("hub_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
