package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sensai/hubmind/internal/cache"
	"github.com/sensai/hubmind/internal/db"
	"github.com/sensai/hubmind/internal/moderation"
	"github.com/sensai/hubmind/pkg/logging"
)

// Router sets up API routes
type Router struct {
	db     *db.DB
	cache  *cache.Cache
	scorer *moderation.Scorer
	logger *zap.Logger
}

// NewRouter creates a new API router. A nil scorer disables automatic
// moderation and new posts are approved directly.
func NewRouter(database *db.DB, redisCache *cache.Cache, scorer *moderation.Scorer) *Router {
	return &Router{
		db:     database,
		cache:  redisCache,
		scorer: scorer,
		logger: logging.GetLogger().With(zap.String("component", "api-router")),
	}
}

// SetupRoutes sets up all API routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	// Health check endpoints
	engine.GET("/health", r.healthHandler)
	engine.GET("/.well-known/healthcheck.json", r.healthHandler)

	repo := db.NewRepository(r.db.DB)

	posts := NewPostAPI(repo, r.scorer)
	polls := NewPollAPI(repo)
	feeds := NewFeedAPI(repo, r.cache)
	mod := NewModerationAPI(repo)
	reputation := NewReputationAPI(repo)
	social := NewSocialAPI(repo)
	hubs := NewHubAPI(repo)
	links := NewLinkAPI(repo)

	v1 := engine.Group("/api/v1")

	v1.POST("/posts", posts.Create)
	v1.GET("/posts/:id", posts.Get)
	v1.DELETE("/posts/:id", posts.Delete)
	v1.POST("/posts/:id/vote", posts.Vote)
	v1.POST("/posts/:id/mark-helpful", posts.MarkHelpful)
	v1.POST("/posts/:id/accept-answer", posts.AcceptAnswer)

	v1.POST("/posts/:id/poll-vote", polls.Vote)
	v1.GET("/posts/:id/poll-results", polls.Results)

	v1.POST("/posts/:id/moderate", mod.Moderate)
	v1.GET("/posts/:id/moderation", mod.History)
	v1.POST("/posts/:id/report", mod.Report)
	v1.GET("/reports", mod.PendingReports)
	v1.PATCH("/reports/:id", mod.UpdateReport)

	v1.POST("/posts/:id/link", links.Link)
	v1.DELETE("/posts/:id/link", links.Unlink)
	v1.GET("/posts/:id/links", links.Links)

	v1.POST("/hubs", hubs.Create)
	v1.GET("/hubs", hubs.List)
	v1.GET("/hubs/:id", hubs.Get)
	v1.DELETE("/hubs/:id", hubs.Delete)
	v1.GET("/hubs/:id/posts", hubs.Posts)
	v1.GET("/hubs/:id/stats", hubs.Stats)
	v1.GET("/hubs/:id/trending", feeds.HubTrending)

	v1.POST("/feed", feeds.Get)
	v1.GET("/leaderboard", feeds.Leaderboard)
	v1.POST("/search", feeds.Search)

	v1.GET("/users/:id/reputation", reputation.Get)
	v1.GET("/users/:id/following", social.Following)
	v1.GET("/users/:id/followers", social.Followers)
	v1.GET("/users/:id/subscriptions", social.Subscriptions)

	v1.POST("/follows", social.Follow)
	v1.DELETE("/follows/:follower_id/:following_id", social.Unfollow)

	v1.POST("/subscriptions", social.Subscribe)
	v1.DELETE("/subscriptions/:hub_id/:user_id", social.Unsubscribe)
	v1.PATCH("/subscriptions/:hub_id/:user_id", social.UpdateSubscription)
}

// healthHandler reports service, database and cache health
func (r *Router) healthHandler(c *gin.Context) {
	status := "OK"
	code := http.StatusOK

	dbStatus := "OK"
	if err := r.db.Health(c.Request.Context()); err != nil {
		dbStatus = err.Error()
		status = "DEGRADED"
		code = http.StatusServiceUnavailable
	}

	cacheStatus := "disabled"
	if r.cache != nil {
		cacheStatus = "OK"
		if err := r.cache.Health(c.Request.Context()); err != nil {
			cacheStatus = err.Error()
			status = "DEGRADED"
		}
	}

	c.JSON(code, gin.H{
		"status":   status,
		"service":  "hubmind-api",
		"database": dbStatus,
		"cache":    cacheStatus,
	})
}
