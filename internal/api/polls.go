package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sensai/hubmind/internal/db"
	"github.com/sensai/hubmind/pkg/logging"
)

// PollAPI handles poll voting and result endpoints
type PollAPI struct {
	posts  *db.PostRepository
	logger *zap.Logger
}

// NewPollAPI creates a new poll API
func NewPollAPI(repo *db.Repository) *PollAPI {
	return &PollAPI{
		posts:  db.NewPostRepository(repo),
		logger: logging.GetLogger().With(zap.String("component", "poll-api")),
	}
}

// PollVoteRequest is the payload for POST /posts/:id/poll-vote
type PollVoteRequest struct {
	UserID    int64   `json:"user_id" binding:"required"`
	OptionIDs []int64 `json:"option_ids" binding:"required"`
}

// Vote handles POST /posts/:id/poll-vote. The caller's previous
// selection is replaced atomically.
func (a *PollAPI) Vote(c *gin.Context) {
	postID, err := pathID(c, "id")
	if err != nil {
		respondBadRequest(c, err)
		return
	}
	var req PollVoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	if err := a.posts.VoteOnPoll(c.Request.Context(), postID, req.UserID, req.OptionIDs); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Results handles GET /posts/:id/poll-results, returning options in
// display order with tallies. With a user_id query parameter the
// caller's own selection is included.
func (a *PollAPI) Results(c *gin.Context) {
	postID, err := pathID(c, "id")
	if err != nil {
		respondBadRequest(c, err)
		return
	}
	ctx := c.Request.Context()

	options, err := a.posts.PollOptionsWithVotes(ctx, postID)
	if err != nil {
		respondError(c, err)
		return
	}

	response := gin.H{"options": options}
	if raw := c.Query("user_id"); raw != "" {
		userID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			respondBadRequest(c, NewError(http.StatusBadRequest, "invalid user_id parameter"))
			return
		}
		selected, err := a.posts.UserPollVotes(ctx, postID, userID)
		if err != nil {
			respondError(c, err)
			return
		}
		response["user_votes"] = selected
	}
	c.JSON(http.StatusOK, response)
}
