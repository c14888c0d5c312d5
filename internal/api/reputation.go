package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sensai/hubmind/internal/db"
	"github.com/sensai/hubmind/pkg/logging"
)

// ReputationAPI exposes the reputation ledger
type ReputationAPI struct {
	reputation *db.ReputationRepository
	logger     *zap.Logger
}

// NewReputationAPI creates a new reputation API
func NewReputationAPI(repo *db.Repository) *ReputationAPI {
	return &ReputationAPI{
		reputation: db.NewReputationRepository(repo),
		logger:     logging.GetLogger().With(zap.String("component", "reputation-api")),
	}
}

// Get handles GET /users/:id/reputation. Without a hub_id query
// parameter the totals are summed across all hubs.
func (a *ReputationAPI) Get(c *gin.Context) {
	userID, err := pathID(c, "id")
	if err != nil {
		respondBadRequest(c, err)
		return
	}

	var hubID *int64
	if raw := c.Query("hub_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			respondBadRequest(c, NewError(http.StatusBadRequest, "invalid hub_id parameter"))
			return
		}
		hubID = &id
	}

	summary, err := a.reputation.Get(c.Request.Context(), userID, hubID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}
