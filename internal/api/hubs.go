package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sensai/hubmind/internal/db"
	"github.com/sensai/hubmind/pkg/logging"
)

// HubAPI handles hub management and hub-scoped listings
type HubAPI struct {
	hubs   *db.HubRepository
	posts  *db.PostRepository
	logger *zap.Logger
}

// NewHubAPI creates a new hub API
func NewHubAPI(repo *db.Repository) *HubAPI {
	return &HubAPI{
		hubs:   db.NewHubRepository(repo),
		posts:  db.NewPostRepository(repo),
		logger: logging.GetLogger().With(zap.String("component", "hub-api")),
	}
}

// CreateHubRequest is the payload for POST /hubs
type CreateHubRequest struct {
	OrgID       int64  `json:"org_id" binding:"required"`
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// Create handles POST /hubs
func (a *HubAPI) Create(c *gin.Context) {
	var req CreateHubRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	hub, err := a.hubs.Create(c.Request.Context(), req.OrgID, req.Name, req.Description)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"hub_id": hub.ID})
}

// Get handles GET /hubs/:id
func (a *HubAPI) Get(c *gin.Context) {
	hubID, err := pathID(c, "id")
	if err != nil {
		respondBadRequest(c, err)
		return
	}
	hub, err := a.hubs.GetByID(c.Request.Context(), hubID)
	if err != nil {
		respondError(c, err)
		return
	}
	if hub == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "hub not found"})
		return
	}
	c.JSON(http.StatusOK, hub)
}

// List handles GET /hubs?org_id=N
func (a *HubAPI) List(c *gin.Context) {
	orgID, err := strconv.ParseInt(c.Query("org_id"), 10, 64)
	if err != nil {
		respondBadRequest(c, NewError(http.StatusBadRequest, "org_id parameter is required"))
		return
	}
	hubs, err := a.hubs.ListByOrg(c.Request.Context(), orgID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"hubs": hubs})
}

// Delete handles DELETE /hubs/:id
func (a *HubAPI) Delete(c *gin.Context) {
	hubID, err := pathID(c, "id")
	if err != nil {
		respondBadRequest(c, err)
		return
	}
	if err := a.hubs.Delete(c.Request.Context(), hubID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// Posts handles GET /hubs/:id/posts, the hub's top-level listing with
// vote aggregates, poll options and tags
func (a *HubAPI) Posts(c *gin.Context) {
	hubID, err := pathID(c, "id")
	if err != nil {
		respondBadRequest(c, err)
		return
	}
	posts, err := a.posts.ListByHub(c.Request.Context(), hubID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": posts})
}

// Stats handles GET /hubs/:id/stats, recomputing the counters before
// returning them
func (a *HubAPI) Stats(c *gin.Context) {
	hubID, err := pathID(c, "id")
	if err != nil {
		respondBadRequest(c, err)
		return
	}
	ctx := c.Request.Context()

	if err := a.hubs.RefreshStats(ctx, hubID); err != nil {
		respondError(c, err)
		return
	}
	hub, err := a.hubs.GetByID(ctx, hubID)
	if err != nil {
		respondError(c, err)
		return
	}
	if hub == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "hub not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"hub_id":           hub.ID,
		"post_count":       hub.PostCount,
		"subscriber_count": hub.SubscriberCount,
		"active_today":     hub.ActiveToday,
	})
}
