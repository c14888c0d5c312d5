package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sensai/hubmind/internal/db"
	"github.com/sensai/hubmind/pkg/logging"
)

// ModerationAPI handles moderation actions, re-scoring and the report
// review queue
type ModerationAPI struct {
	actions *db.ModerationRepository
	posts   *db.PostRepository
	logger  *zap.Logger
}

// NewModerationAPI creates a new moderation API
func NewModerationAPI(repo *db.Repository) *ModerationAPI {
	return &ModerationAPI{
		actions: db.NewModerationRepository(repo),
		posts:   db.NewPostRepository(repo),
		logger:  logging.GetLogger().With(zap.String("component", "moderation-api")),
	}
}

// ModerateRequest is the payload for POST /posts/:id/moderate
type ModerateRequest struct {
	ModeratorID *int64 `json:"moderator_id"`
	ActionType  string `json:"action_type" binding:"required"`
	Reason      string `json:"reason" binding:"required"`
}

// Moderate handles POST /posts/:id/moderate: a human decision that is
// logged and applied to the post
func (a *ModerationAPI) Moderate(c *gin.Context) {
	postID, err := pathID(c, "id")
	if err != nil {
		respondBadRequest(c, err)
		return
	}
	var req ModerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	action, err := a.actions.ApplyAction(c.Request.Context(), &db.ApplyActionParams{
		PostID:      postID,
		ModeratorID: req.ModeratorID,
		ActionType:  req.ActionType,
		Reason:      req.Reason,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "action_id": action.ID})
}

// History handles GET /posts/:id/moderation
func (a *ModerationAPI) History(c *gin.Context) {
	postID, err := pathID(c, "id")
	if err != nil {
		respondBadRequest(c, err)
		return
	}
	actions, err := a.actions.History(c.Request.Context(), postID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"actions": actions})
}

// ReportRequest is the payload for POST /posts/:id/report
type ReportRequest struct {
	ReporterID  int64  `json:"reporter_id" binding:"required"`
	Reason      string `json:"reason" binding:"required"`
	Description string `json:"description"`
}

// Report handles POST /posts/:id/report
func (a *ModerationAPI) Report(c *gin.Context) {
	postID, err := pathID(c, "id")
	if err != nil {
		respondBadRequest(c, err)
		return
	}
	var req ReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	report, err := a.actions.FileReport(c.Request.Context(), postID, req.ReporterID, req.Reason, req.Description)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"status": "success", "report_id": report.ID})
}

// UpdateReportRequest is the payload for PATCH /reports/:id
type UpdateReportRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateReport handles PATCH /reports/:id, advancing the report
// through its review lifecycle
func (a *ModerationAPI) UpdateReport(c *gin.Context) {
	reportID, err := pathID(c, "id")
	if err != nil {
		respondBadRequest(c, err)
		return
	}
	var req UpdateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	report, err := a.actions.UpdateReportStatus(c.Request.Context(), reportID, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// PendingReports handles GET /reports, listing the open review queue
func (a *ModerationAPI) PendingReports(c *gin.Context) {
	var hubID *int64
	if raw := c.Query("hub_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			respondBadRequest(c, NewError(http.StatusBadRequest, "invalid hub_id parameter"))
			return
		}
		hubID = &id
	}
	limit := queryInt(c, "limit", 50)
	if limit > 200 {
		limit = 200
	}

	reports, err := a.actions.PendingReports(c.Request.Context(), hubID, limit, queryInt(c, "offset", 0))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reports": reports})
}
