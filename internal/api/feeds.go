package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sensai/hubmind/internal/cache"
	"github.com/sensai/hubmind/internal/db"
	"github.com/sensai/hubmind/pkg/logging"
)

// FeedAPI handles ranked feeds, leaderboard and search endpoints
type FeedAPI struct {
	feeds  *db.FeedRepository
	cache  *cache.Cache
	logger *zap.Logger
}

// NewFeedAPI creates a new feed API
func NewFeedAPI(repo *db.Repository, redisCache *cache.Cache) *FeedAPI {
	return &FeedAPI{
		feeds:  db.NewFeedRepository(repo),
		cache:  redisCache,
		logger: logging.GetLogger().With(zap.String("component", "feed-api")),
	}
}

// feedTTL is how long each feed view stays cached. Personal views are
// short-lived; ranked views tolerate more staleness.
func feedTTL(view string) time.Duration {
	switch view {
	case db.FeedTrending:
		return 5 * time.Minute
	case db.FeedRecommended:
		return 15 * time.Minute
	}
	return time.Minute
}

// FeedRequest is the payload for POST /feed
type FeedRequest struct {
	UserID   int64  `json:"user_id" binding:"required"`
	FeedType string `json:"feed_type"`
	Limit    int    `json:"limit"`
	Offset   int    `json:"offset"`
}

// Get handles POST /feed, serving one page of the requested view
func (a *FeedAPI) Get(c *gin.Context) {
	var req FeedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	if req.FeedType == "" {
		req.FeedType = db.FeedRecommended
	}
	if req.Limit <= 0 || req.Limit > 100 {
		req.Limit = 20
	}

	cacheKey := cache.HashKey(
		"feed",
		req.FeedType,
		fmt.Sprintf("%d", req.UserID),
		fmt.Sprintf("%d", req.Limit),
		fmt.Sprintf("%d", req.Offset),
	)
	if a.cache != nil {
		var cached []db.FeedPost
		if err := a.cache.GetJSON(cacheKey, &cached); err == nil {
			c.JSON(http.StatusOK, gin.H{"posts": cached, "feed_type": req.FeedType})
			return
		}
	}

	posts, err := a.feeds.Get(c.Request.Context(), req.UserID, req.FeedType, req.Limit, req.Offset)
	if err != nil {
		respondError(c, err)
		return
	}

	if a.cache != nil {
		if err := a.cache.SetJSON(cacheKey, posts, feedTTL(req.FeedType)); err != nil {
			a.logger.Warn("Failed to cache feed page", zap.Error(err))
		}
	}
	c.JSON(http.StatusOK, gin.H{"posts": posts, "feed_type": req.FeedType})
}

// HubTrending handles GET /hubs/:id/trending
func (a *FeedAPI) HubTrending(c *gin.Context) {
	hubID, err := pathID(c, "id")
	if err != nil {
		respondBadRequest(c, err)
		return
	}
	limit := queryInt(c, "limit", 10)
	if limit > 100 {
		limit = 100
	}

	posts, err := a.feeds.Trending(c.Request.Context(), &hubID, limit, queryInt(c, "offset", 0))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": posts})
}

// Leaderboard handles GET /leaderboard
func (a *FeedAPI) Leaderboard(c *gin.Context) {
	limit := queryInt(c, "limit", 10)
	if limit > 100 {
		limit = 100
	}
	period := c.DefaultQuery("period", db.PeriodAllTime)

	cacheKey := cache.HashKey("leaderboard", period, fmt.Sprintf("%d", limit))
	if a.cache != nil {
		var cached []db.LeaderboardEntry
		if err := a.cache.GetJSON(cacheKey, &cached); err == nil {
			c.JSON(http.StatusOK, gin.H{"leaderboard": cached, "period": period})
			return
		}
	}

	entries, err := a.feeds.Leaderboard(c.Request.Context(), limit, period)
	if err != nil {
		respondError(c, err)
		return
	}

	if a.cache != nil {
		if err := a.cache.SetJSON(cacheKey, entries, 5*time.Minute); err != nil {
			a.logger.Warn("Failed to cache leaderboard", zap.Error(err))
		}
	}
	c.JSON(http.StatusOK, gin.H{"leaderboard": entries, "period": period})
}

// SearchRequest is the payload for POST /search
type SearchRequest struct {
	Query     string     `json:"query"`
	HubIDs    []int64    `json:"hub_ids"`
	PostTypes []string   `json:"post_types"`
	Tags      []string   `json:"tags"`
	Category  string     `json:"category"`
	AuthorID  int64      `json:"author_id"`
	DateFrom  *time.Time `json:"date_from"`
	DateTo    *time.Time `json:"date_to"`
	SortBy    string     `json:"sort_by"`
	Limit     int        `json:"limit"`
	Offset    int        `json:"offset"`
}

// Search handles POST /search
func (a *FeedAPI) Search(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	if req.Limit <= 0 || req.Limit > 100 {
		req.Limit = 20
	}

	results, err := a.feeds.Search(c.Request.Context(), &db.SearchParams{
		Query:     req.Query,
		HubIDs:    req.HubIDs,
		PostTypes: req.PostTypes,
		Tags:      req.Tags,
		Category:  req.Category,
		AuthorID:  req.AuthorID,
		DateFrom:  req.DateFrom,
		DateTo:    req.DateTo,
		SortBy:    req.SortBy,
		Limit:     req.Limit,
		Offset:    req.Offset,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results, "count": len(results)})
}

// queryInt parses an optional numeric query parameter
func queryInt(c *gin.Context, name string, defaultValue int) int {
	raw := c.Query(name)
	if raw == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return defaultValue
	}
	return value
}
