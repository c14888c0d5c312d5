package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sensai/hubmind/internal/db"
	"github.com/sensai/hubmind/pkg/logging"
)

// LinkAPI ties posts to tasks, skills and badges
type LinkAPI struct {
	links  *db.LinkRepository
	logger *zap.Logger
}

// NewLinkAPI creates a new link API
func NewLinkAPI(repo *db.Repository) *LinkAPI {
	return &LinkAPI{
		links:  db.NewLinkRepository(repo),
		logger: logging.GetLogger().With(zap.String("component", "link-api")),
	}
}

// LinkRequest is the payload for POST and DELETE /posts/:id/link.
// Exactly one of the three targets must be set, matching link_type.
type LinkRequest struct {
	LinkType  string `json:"link_type" binding:"required"`
	TaskID    int64  `json:"task_id"`
	SkillName string `json:"skill_name"`
	BadgeID   int64  `json:"badge_id"`
}

// Link handles POST /posts/:id/link
func (a *LinkAPI) Link(c *gin.Context) {
	postID, err := pathID(c, "id")
	if err != nil {
		respondBadRequest(c, err)
		return
	}
	var req LinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	ctx := c.Request.Context()

	switch req.LinkType {
	case "task":
		err = a.links.LinkTask(ctx, postID, req.TaskID)
	case "skill":
		err = a.links.LinkSkill(ctx, postID, req.SkillName)
	case "badge":
		err = a.links.LinkBadge(ctx, postID, req.BadgeID)
	default:
		respondBadRequest(c, NewError(http.StatusBadRequest, "link_type must be task, skill or badge"))
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

// Unlink handles DELETE /posts/:id/link
func (a *LinkAPI) Unlink(c *gin.Context) {
	postID, err := pathID(c, "id")
	if err != nil {
		respondBadRequest(c, err)
		return
	}
	var req LinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	ctx := c.Request.Context()

	switch req.LinkType {
	case "task":
		err = a.links.UnlinkTask(ctx, postID, req.TaskID)
	case "skill":
		err = a.links.UnlinkSkill(ctx, postID, req.SkillName)
	case "badge":
		err = a.links.UnlinkBadge(ctx, postID, req.BadgeID)
	default:
		respondBadRequest(c, NewError(http.StatusBadRequest, "link_type must be task, skill or badge"))
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

// Links handles GET /posts/:id/links
func (a *LinkAPI) Links(c *gin.Context) {
	postID, err := pathID(c, "id")
	if err != nil {
		respondBadRequest(c, err)
		return
	}
	links, err := a.links.GetLinks(c.Request.Context(), postID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, links)
}
