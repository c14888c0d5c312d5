package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sensai/hubmind/internal/db"
	"github.com/sensai/hubmind/pkg/logging"
)

// SocialAPI handles follow and hub subscription endpoints
type SocialAPI struct {
	social *db.SocialRepository
	hubs   *db.HubRepository
	logger *zap.Logger
}

// NewSocialAPI creates a new social API
func NewSocialAPI(repo *db.Repository) *SocialAPI {
	return &SocialAPI{
		social: db.NewSocialRepository(repo),
		hubs:   db.NewHubRepository(repo),
		logger: logging.GetLogger().With(zap.String("component", "social-api")),
	}
}

// FollowRequest is the payload for POST /follows
type FollowRequest struct {
	FollowerID  int64 `json:"follower_id" binding:"required"`
	FollowingID int64 `json:"following_id" binding:"required"`
}

// Follow handles POST /follows
func (a *SocialAPI) Follow(c *gin.Context) {
	var req FollowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	if err := a.social.Follow(c.Request.Context(), req.FollowerID, req.FollowingID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

// Unfollow handles DELETE /follows/:follower_id/:following_id
func (a *SocialAPI) Unfollow(c *gin.Context) {
	followerID, err := pathID(c, "follower_id")
	if err != nil {
		respondBadRequest(c, err)
		return
	}
	followingID, err := pathID(c, "following_id")
	if err != nil {
		respondBadRequest(c, err)
		return
	}
	if err := a.social.Unfollow(c.Request.Context(), followerID, followingID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

// Following handles GET /users/:id/following
func (a *SocialAPI) Following(c *gin.Context) {
	userID, err := pathID(c, "id")
	if err != nil {
		respondBadRequest(c, err)
		return
	}
	ids, err := a.social.Following(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"following": ids})
}

// Followers handles GET /users/:id/followers
func (a *SocialAPI) Followers(c *gin.Context) {
	userID, err := pathID(c, "id")
	if err != nil {
		respondBadRequest(c, err)
		return
	}
	ids, err := a.social.Followers(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"followers": ids})
}

// SubscribeRequest is the payload for POST /subscriptions
type SubscribeRequest struct {
	UserID                 int64  `json:"user_id" binding:"required"`
	HubID                  int64  `json:"hub_id" binding:"required"`
	NotificationPreference string `json:"notification_preference"`
}

// Subscribe handles POST /subscriptions and refreshes the hub's
// subscriber count
func (a *SocialAPI) Subscribe(c *gin.Context) {
	var req SubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	ctx := c.Request.Context()

	if err := a.social.Subscribe(ctx, req.UserID, req.HubID, req.NotificationPreference); err != nil {
		respondError(c, err)
		return
	}
	if err := a.hubs.RefreshStats(ctx, req.HubID); err != nil {
		a.logger.Error("Failed to refresh hub stats after subscribe",
			zap.Int64("hub_id", req.HubID), zap.Error(err))
	}
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

// Unsubscribe handles DELETE /subscriptions/:hub_id/:user_id
func (a *SocialAPI) Unsubscribe(c *gin.Context) {
	hubID, err := pathID(c, "hub_id")
	if err != nil {
		respondBadRequest(c, err)
		return
	}
	userID, err := pathID(c, "user_id")
	if err != nil {
		respondBadRequest(c, err)
		return
	}
	ctx := c.Request.Context()

	if err := a.social.Unsubscribe(ctx, userID, hubID); err != nil {
		respondError(c, err)
		return
	}
	if err := a.hubs.RefreshStats(ctx, hubID); err != nil {
		a.logger.Error("Failed to refresh hub stats after unsubscribe",
			zap.Int64("hub_id", hubID), zap.Error(err))
	}
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

// UpdateSubscriptionRequest is the payload for PATCH
// /subscriptions/:hub_id/:user_id
type UpdateSubscriptionRequest struct {
	NotificationPreference string `json:"notification_preference" binding:"required"`
}

// UpdateSubscription handles PATCH /subscriptions/:hub_id/:user_id
func (a *SocialAPI) UpdateSubscription(c *gin.Context) {
	hubID, err := pathID(c, "hub_id")
	if err != nil {
		respondBadRequest(c, err)
		return
	}
	userID, err := pathID(c, "user_id")
	if err != nil {
		respondBadRequest(c, err)
		return
	}
	var req UpdateSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	if err := a.social.SetNotificationPreference(c.Request.Context(), userID, hubID, req.NotificationPreference); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

// Subscriptions handles GET /users/:id/subscriptions
func (a *SocialAPI) Subscriptions(c *gin.Context) {
	userID, err := pathID(c, "id")
	if err != nil {
		respondBadRequest(c, err)
		return
	}
	ids, err := a.social.Subscriptions(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"subscriptions": ids})
}
