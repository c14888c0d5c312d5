package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sensai/hubmind/internal/db"
	"github.com/sensai/hubmind/internal/models"
	"github.com/sensai/hubmind/internal/moderation"
	"github.com/sensai/hubmind/pkg/logging"
)

// PostAPI handles post lifecycle endpoints: creation with automatic
// moderation, retrieval, voting and the question/answer flow
type PostAPI struct {
	posts      *db.PostRepository
	reputation *db.ReputationRepository
	actions    *db.ModerationRepository
	hubs       *db.HubRepository
	scorer     *moderation.Scorer
	logger     *zap.Logger
}

// NewPostAPI creates a new post API
func NewPostAPI(repo *db.Repository, scorer *moderation.Scorer) *PostAPI {
	return &PostAPI{
		posts:      db.NewPostRepository(repo),
		reputation: db.NewReputationRepository(repo),
		actions:    db.NewModerationRepository(repo),
		hubs:       db.NewHubRepository(repo),
		scorer:     scorer,
		logger:     logging.GetLogger().With(zap.String("component", "post-api")),
	}
}

// CreatePostRequest is the payload for POST /posts
type CreatePostRequest struct {
	HubID                int64    `json:"hub_id" binding:"required"`
	UserID               int64    `json:"user_id" binding:"required"`
	ParentID             *int64   `json:"parent_id"`
	Title                *string  `json:"title"`
	Content              string   `json:"content" binding:"required"`
	PostType             string   `json:"post_type" binding:"required"`
	Category             *string  `json:"category"`
	PollOptions          []string `json:"poll_options"`
	PollDurationDays     *int     `json:"poll_duration_days"`
	AllowMultipleAnswers *bool    `json:"allow_multiple_answers"`
	Tags                 []string `json:"tags"`
}

// Create handles POST /posts. The post is inserted first, then scored;
// a scorer outage never blocks creation.
func (a *PostAPI) Create(c *gin.Context) {
	var req CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	ctx := c.Request.Context()

	post, err := a.posts.Create(ctx, &db.CreatePostParams{
		HubID:                req.HubID,
		AuthorID:             req.UserID,
		ParentID:             req.ParentID,
		Title:                req.Title,
		Body:                 req.Content,
		Type:                 req.PostType,
		Category:             req.Category,
		PollOptions:          req.PollOptions,
		PollDurationDays:     req.PollDurationDays,
		AllowMultipleAnswers: req.AllowMultipleAnswers,
		Tags:                 req.Tags,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	status := models.ModerationStatusApproved
	var verdict *moderation.Verdict
	if a.scorer != nil {
		title := ""
		if req.Title != nil {
			title = *req.Title
		}

		authorReputation := 0
		if summary, err := a.reputation.Get(ctx, req.UserID, nil); err != nil {
			a.logger.Warn("Failed to load author reputation for moderation",
				zap.Int64("user_id", req.UserID), zap.Error(err))
		} else {
			authorReputation = summary.Score
		}

		verdict = a.scorer.Evaluate(ctx, title, req.Content, &moderation.Context{
			PostType:         req.PostType,
			AuthorReputation: authorReputation,
		})

		if verdict.IsToxic || verdict.RequiresHumanReview {
			confidence := 1.0 - verdict.ToxicityScore
			if _, err := a.actions.ApplyAction(ctx, &db.ApplyActionParams{
				PostID:       post.ID,
				ActionType:   verdict.SuggestedAction,
				Reason:       verdict.Explanation,
				AIModerated:  true,
				AIConfidence: &confidence,
			}); err != nil {
				a.logger.Error("Failed to record automated moderation action",
					zap.Int64("post_id", post.ID), zap.Error(err))
			}
		}

		if verdict.IsToxic {
			status = models.ModerationStatusFlagged
		}
		if err := a.posts.UpdateModerationResult(ctx, post.ID, status, &verdict.ToxicityScore); err != nil {
			a.logger.Error("Failed to store moderation result",
				zap.Int64("post_id", post.ID), zap.Error(err))
		}
	} else {
		if err := a.posts.UpdateModerationResult(ctx, post.ID, status, nil); err != nil {
			a.logger.Error("Failed to store moderation result",
				zap.Int64("post_id", post.ID), zap.Error(err))
		}
	}

	if err := a.reputation.Credit(ctx, req.UserID, req.HubID, models.RepPostsCreated, 5); err != nil {
		a.logger.Error("Failed to credit post creation",
			zap.Int64("user_id", req.UserID), zap.Error(err))
	}

	if err := a.hubs.RefreshStats(ctx, req.HubID); err != nil {
		a.logger.Error("Failed to refresh hub stats",
			zap.Int64("hub_id", req.HubID), zap.Error(err))
	}

	response := gin.H{
		"post_id":           post.ID,
		"moderation_status": status,
	}
	if verdict != nil {
		response["requires_human_review"] = verdict.RequiresHumanReview
		response["explanation"] = verdict.Explanation
	}
	c.JSON(http.StatusCreated, response)
}

// Get handles GET /posts/:id, returning the post with vote aggregates
// and its comment thread. The viewer_id query parameter personalizes
// the viewer_vote fields.
func (a *PostAPI) Get(c *gin.Context) {
	postID, err := pathID(c, "id")
	if err != nil {
		respondBadRequest(c, err)
		return
	}
	viewerID, _ := strconv.ParseInt(c.Query("viewer_id"), 10, 64)

	detail, err := a.posts.GetWithComments(c.Request.Context(), postID, viewerID)
	if err != nil {
		respondError(c, err)
		return
	}
	if detail == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "post not found"})
		return
	}
	c.JSON(http.StatusOK, detail)
}

// Delete handles DELETE /posts/:id
func (a *PostAPI) Delete(c *gin.Context) {
	postID, err := pathID(c, "id")
	if err != nil {
		respondBadRequest(c, err)
		return
	}
	if err := a.posts.Delete(c.Request.Context(), postID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// VoteRequest is the payload for POST /posts/:id/vote. A null vote
// removes the caller's existing vote.
type VoteRequest struct {
	UserID   int64   `json:"user_id" binding:"required"`
	VoteType *string `json:"vote_type"`
}

// Vote handles POST /posts/:id/vote with set semantics
func (a *PostAPI) Vote(c *gin.Context) {
	postID, err := pathID(c, "id")
	if err != nil {
		respondBadRequest(c, err)
		return
	}
	var req VoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	if err := a.posts.SetVote(c.Request.Context(), postID, req.UserID, req.VoteType); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// MarkHelpfulRequest is the payload for POST /posts/:id/mark-helpful
type MarkHelpfulRequest struct {
	UserID int64 `json:"user_id" binding:"required"`
}

// MarkHelpful handles POST /posts/:id/mark-helpful: an up-vote that
// also credits the post author's helpful-answer reputation
func (a *PostAPI) MarkHelpful(c *gin.Context) {
	postID, err := pathID(c, "id")
	if err != nil {
		respondBadRequest(c, err)
		return
	}
	var req MarkHelpfulRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	ctx := c.Request.Context()

	post, err := a.posts.GetByID(ctx, postID)
	if err != nil {
		respondError(c, err)
		return
	}
	if post == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "post not found"})
		return
	}

	up := models.VoteUp
	if err := a.posts.SetVote(ctx, postID, req.UserID, &up); err != nil {
		respondError(c, err)
		return
	}

	if err := a.reputation.Credit(ctx, post.AuthorID, post.HubID, models.RepHelpfulAnswers, 10); err != nil {
		a.logger.Error("Failed to credit helpful answer",
			zap.Int64("user_id", post.AuthorID), zap.Error(err))
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "Post marked as helpful"})
}

// AcceptAnswerRequest is the payload for POST /posts/:id/accept-answer
type AcceptAnswerRequest struct {
	AnswerID int64 `json:"answer_id" binding:"required"`
	UserID   int64 `json:"user_id" binding:"required"`
}

// AcceptAnswer handles POST /posts/:id/accept-answer. Only the
// question author may accept; the answer's author is credited.
func (a *PostAPI) AcceptAnswer(c *gin.Context) {
	questionID, err := pathID(c, "id")
	if err != nil {
		respondBadRequest(c, err)
		return
	}
	var req AcceptAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	ctx := c.Request.Context()

	answer, err := a.posts.AcceptAnswer(ctx, questionID, req.AnswerID, req.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := a.reputation.Credit(ctx, answer.AuthorID, answer.HubID, models.RepAcceptedAnswers, 25); err != nil {
		a.logger.Error("Failed to credit accepted answer",
			zap.Int64("user_id", answer.AuthorID), zap.Error(err))
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "Answer accepted successfully"})
}

// pathID parses a numeric path parameter
func pathID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		return 0, NewError(http.StatusBadRequest, "invalid "+name+" parameter")
	}
	return id, nil
}
