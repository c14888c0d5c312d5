package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sensai/hubmind/internal/models"
)

// PostRepository provides post, vote, poll and tag database operations
type PostRepository struct {
	*Repository
}

// NewPostRepository creates a new post repository
func NewPostRepository(repo *Repository) *PostRepository {
	return &PostRepository{Repository: repo}
}

// CreatePostParams carries everything needed to create a post or reply
type CreatePostParams struct {
	HubID                int64
	AuthorID             int64
	ParentID             *int64
	Title                *string
	Body                 string
	Type                 string
	Category             *string
	PollOptions          []string
	PollDurationDays     *int
	AllowMultipleAnswers *bool
	Tags                 []string
}

// Create inserts a post together with its poll options and tags in one
// transaction. Replies bump the parent's reply count and last activity
// inside the same transaction.
func (r *PostRepository) Create(ctx context.Context, params *CreatePostParams) (*models.Post, error) {
	if !models.ValidPostType(params.Type) {
		return nil, fmt.Errorf("%w: unknown post type %q", ErrValidation, params.Type)
	}
	if strings.TrimSpace(params.Body) == "" {
		return nil, fmt.Errorf("%w: content is required", ErrValidation)
	}
	if params.Type == models.PostTypePoll && len(params.PollOptions) == 0 {
		return nil, fmt.Errorf("%w: a poll needs at least one option", ErrValidation)
	}

	post := &models.Post{
		HubID:            params.HubID,
		AuthorID:         params.AuthorID,
		Body:             params.Body,
		Type:             params.Type,
		ModerationStatus: models.ModerationStatusPending,
		CreatedAt:        time.Now().UTC(),
		LastActivity:     time.Now().UTC(),
	}
	if params.Title != nil {
		post.Title = sql.NullString{String: *params.Title, Valid: true}
	}
	if params.Category != nil {
		post.Category = sql.NullString{String: *params.Category, Valid: true}
	}
	if params.ParentID != nil {
		post.ParentID = sql.NullInt64{Int64: *params.ParentID, Valid: true}
	}

	// Questions start unanswered; other types leave the flag unset
	if params.Type == models.PostTypeQuestion {
		post.IsAnswered = sql.NullBool{Bool: false, Valid: true}
	}

	// Poll expiry is computed at creation time
	if params.Type == models.PostTypePoll {
		if params.PollDurationDays != nil {
			days := *params.PollDurationDays
			post.PollDurationDays = sql.NullInt64{Int64: int64(days), Valid: true}
			post.PollExpiresAt = sql.NullTime{
				Time:  time.Now().UTC().Add(time.Duration(days) * 24 * time.Hour),
				Valid: true,
			}
		}
		if params.AllowMultipleAnswers != nil {
			post.AllowMultipleAnswers = sql.NullBool{Bool: *params.AllowMultipleAnswers, Valid: true}
		}
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if params.ParentID != nil {
			var parent models.Post
			if err := tx.First(&parent, *params.ParentID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("%w: parent post %d not found", ErrValidation, *params.ParentID)
				}
				return err
			}
			// Comments cannot have comments
			if parent.ParentID.Valid {
				return fmt.Errorf("%w: replies to replies are not allowed", ErrValidation)
			}
		}

		if err := tx.Create(post).Error; err != nil {
			return err
		}

		if params.Type == models.PostTypePoll {
			for i, text := range params.PollOptions {
				option := models.PollOption{
					PostID: post.ID,
					Text:   strings.TrimSpace(text),
					Order:  i,
				}
				if err := tx.Create(&option).Error; err != nil {
					return err
				}
			}
		}

		for _, tag := range params.Tags {
			tag = strings.ToLower(strings.TrimSpace(tag))
			if tag == "" {
				continue
			}
			row := models.PostTag{PostID: post.ID, Tag: tag}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
				return err
			}
		}

		if params.ParentID != nil {
			if err := tx.Model(&models.Post{}).
				Where("id = ?", *params.ParentID).
				UpdateColumns(map[string]interface{}{
					"reply_count":   gorm.Expr("reply_count + 1"),
					"last_activity": time.Now().UTC(),
				}).Error; err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return post, nil
}

// GetByID retrieves a post by ID
func (r *PostRepository) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &post, nil
}

// Delete removes a post; children are cascaded by the store's
// referential rules
func (r *PostRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&models.Post{}, id).Error
}

// UpdateModerationResult stores the scorer's verdict on a post
func (r *PostRepository) UpdateModerationResult(ctx context.Context, postID int64, status string, score *float64) error {
	updates := map[string]interface{}{
		"moderation_status": status,
	}
	if score != nil {
		updates["ai_moderation_score"] = *score
	}
	return r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("id = ?", postID).
		Updates(updates).Error
}

// SetVote applies set semantics to a user's vote on a post: a nil vote
// deletes any existing row, otherwise the row is upserted with the new
// vote type. No vote history is kept.
func (r *PostRepository) SetVote(ctx context.Context, postID, userID int64, voteType *string) error {
	if voteType == nil {
		return r.db.WithContext(ctx).
			Where("post_id = ? AND user_id = ?", postID, userID).
			Delete(&models.Vote{}).Error
	}

	if *voteType != models.VoteUp && *voteType != models.VoteDown {
		return fmt.Errorf("%w: unknown vote type %q", ErrValidation, *voteType)
	}

	vote := models.Vote{
		PostID:    postID,
		UserID:    userID,
		VoteType:  *voteType,
		CreatedAt: time.Now().UTC(),
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "post_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"vote_type"}),
	}).Create(&vote).Error
}

// VoteOnPoll replaces all of a user's poll votes for a post with the
// given option selection, atomically.
func (r *PostRepository) VoteOnPoll(ctx context.Context, postID, userID int64, optionIDs []int64) error {
	if len(optionIDs) == 0 {
		return fmt.Errorf("%w: at least one option is required", ErrValidation)
	}

	post, err := r.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post == nil {
		return ErrNotFound
	}
	if post.Type != models.PostTypePoll {
		return fmt.Errorf("%w: post %d is not a poll", ErrValidation, postID)
	}
	if post.AllowMultipleAnswers.Valid && !post.AllowMultipleAnswers.Bool && len(optionIDs) > 1 {
		return fmt.Errorf("%w: poll allows a single answer", ErrValidation)
	}

	// All submitted options must belong to this poll
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.PollOption{}).
		Where("post_id = ? AND id IN ?", postID, optionIDs).
		Count(&count).Error; err != nil {
		return err
	}
	if count != int64(len(optionIDs)) {
		return fmt.Errorf("%w: option does not belong to poll %d", ErrValidation, postID)
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ? AND user_id = ?", postID, userID).
			Delete(&models.PollVote{}).Error; err != nil {
			return err
		}
		for _, optionID := range optionIDs {
			row := models.PollVote{
				PostID:    postID,
				UserID:    userID,
				OptionID:  optionID,
				CreatedAt: time.Now().UTC(),
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// UserPollVotes returns the option IDs a user has voted for in a poll
func (r *PostRepository) UserPollVotes(ctx context.Context, postID, userID int64) ([]int64, error) {
	var ids []int64
	if err := r.db.WithContext(ctx).
		Model(&models.PollVote{}).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Pluck("option_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// PollOptionResult is a poll option with its tallied votes
type PollOptionResult struct {
	ID        int64  `gorm:"column:id" json:"id"`
	Text      string `gorm:"column:option_text" json:"text"`
	Order     int    `gorm:"column:option_order" json:"order"`
	VoteCount int    `gorm:"column:vote_count" json:"vote_count"`
}

// PollOptionsWithVotes returns a poll's options in display order with
// their vote counts
func (r *PostRepository) PollOptionsWithVotes(ctx context.Context, postID int64) ([]PollOptionResult, error) {
	var results []PollOptionResult
	err := r.db.WithContext(ctx).
		Table("poll_options po").
		Select("po.id, po.option_text, po.option_order, COUNT(pv.id) AS vote_count").
		Joins("LEFT JOIN poll_votes pv ON po.id = pv.option_id").
		Where("po.post_id = ?", postID).
		Group("po.id, po.option_text, po.option_order").
		Order("po.option_order").
		Scan(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

// Tags returns a post's tags sorted alphabetically
func (r *PostRepository) Tags(ctx context.Context, postID int64) ([]string, error) {
	var tags []string
	if err := r.db.WithContext(ctx).
		Model(&models.PostTag{}).
		Where("post_id = ?", postID).
		Order("tag").
		Pluck("tag", &tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}

// PostDetail is a post with aggregates and its comment thread
type PostDetail struct {
	ID         int64      `gorm:"column:id" json:"id"`
	HubID      int64      `gorm:"column:hub_id" json:"hub_id"`
	AuthorID   int64      `gorm:"column:user_id" json:"author_id"`
	Title      *string    `gorm:"column:title" json:"title,omitempty"`
	Body       string     `gorm:"column:content" json:"content"`
	Type       string     `gorm:"column:post_type" json:"post_type"`
	CreatedAt  time.Time  `gorm:"column:created_at" json:"created_at"`
	Votes      int        `gorm:"column:votes" json:"votes"`
	ViewerVote *string    `gorm:"column:viewer_vote" json:"viewer_vote,omitempty"`
	Comments   []PostItem `gorm:"-" json:"comments"`
}

// PostItem is a single post row with vote aggregates, used for comment
// threads and hub listings
type PostItem struct {
	ID           int64      `gorm:"column:id" json:"id"`
	HubID        int64      `gorm:"column:hub_id" json:"hub_id"`
	AuthorID     int64      `gorm:"column:user_id" json:"author_id"`
	Title        *string    `gorm:"column:title" json:"title,omitempty"`
	Body         string     `gorm:"column:content" json:"content"`
	Type         string     `gorm:"column:post_type" json:"post_type"`
	Category     *string    `gorm:"column:category" json:"category,omitempty"`
	CreatedAt    time.Time  `gorm:"column:created_at" json:"created_at"`
	Votes        int        `gorm:"column:votes" json:"votes"`
	ReplyCount   int        `gorm:"column:reply_count" json:"reply_count"`
	IsAnswered   *bool      `gorm:"column:is_answered" json:"is_answered,omitempty"`
	PollExpires  *time.Time `gorm:"column:poll_expires_at" json:"poll_expires_at,omitempty"`
	AllowMulti   *bool      `gorm:"column:allow_multiple_answers" json:"allow_multiple_answers,omitempty"`
	ViewerVote   *string    `gorm:"column:viewer_vote" json:"viewer_vote,omitempty"`
	PollOptions  []PollOptionResult `gorm:"-" json:"poll_options,omitempty"`
	Tags         []string           `gorm:"-" json:"tags,omitempty"`
}

const voteSumExpr = "COALESCE(SUM(CASE WHEN pv.vote_type = 'up' THEN 1 WHEN pv.vote_type = 'down' THEN -1 ELSE 0 END), 0)"

// GetWithComments retrieves a post with vote aggregates and its direct
// replies ordered oldest first. viewerID of 0 means anonymous.
func (r *PostRepository) GetWithComments(ctx context.Context, postID, viewerID int64) (*PostDetail, error) {
	var detail PostDetail
	err := r.db.WithContext(ctx).
		Table("posts p").
		Select("p.id, p.hub_id, p.user_id, p.title, p.content, p.post_type, p.created_at, "+
			voteSumExpr+" AS votes, "+
			"MAX(CASE WHEN pv.user_id = ? THEN pv.vote_type END) AS viewer_vote", viewerID).
		Joins("LEFT JOIN post_votes pv ON p.id = pv.post_id").
		Where("p.id = ?", postID).
		Group("p.id, p.hub_id, p.user_id, p.title, p.content, p.post_type, p.created_at").
		Scan(&detail).Error
	if err != nil {
		return nil, err
	}
	if detail.ID == 0 {
		return nil, nil
	}

	var comments []PostItem
	err = r.db.WithContext(ctx).
		Table("posts p").
		Select("p.id, p.hub_id, p.user_id, p.content, p.post_type, p.created_at, p.reply_count, "+
			voteSumExpr+" AS votes, "+
			"MAX(CASE WHEN pv.user_id = ? THEN pv.vote_type END) AS viewer_vote", viewerID).
		Joins("LEFT JOIN post_votes pv ON p.id = pv.post_id").
		Where("p.parent_id = ?", postID).
		Group("p.id, p.hub_id, p.user_id, p.content, p.post_type, p.created_at, p.reply_count").
		Order("p.created_at ASC").
		Scan(&comments).Error
	if err != nil {
		return nil, err
	}
	detail.Comments = comments

	return &detail, nil
}

// ListByHub returns the top-level posts of a hub, newest first, with
// vote aggregates. Poll options and question tags are attached.
func (r *PostRepository) ListByHub(ctx context.Context, hubID int64) ([]PostItem, error) {
	var posts []PostItem
	err := r.db.WithContext(ctx).
		Table("posts p").
		Select("p.id, p.hub_id, p.user_id, p.title, p.content, p.post_type, p.category, "+
			"p.created_at, p.reply_count, p.is_answered, p.poll_expires_at, p.allow_multiple_answers, "+
			voteSumExpr+" AS votes").
		Joins("LEFT JOIN post_votes pv ON p.id = pv.post_id").
		Where("p.hub_id = ? AND p.parent_id IS NULL", hubID).
		Group("p.id, p.hub_id, p.user_id, p.title, p.content, p.post_type, p.category, " +
			"p.created_at, p.reply_count, p.is_answered, p.poll_expires_at, p.allow_multiple_answers").
		Order("p.created_at DESC").
		Scan(&posts).Error
	if err != nil {
		return nil, err
	}

	for i := range posts {
		switch posts[i].Type {
		case models.PostTypePoll:
			options, err := r.PollOptionsWithVotes(ctx, posts[i].ID)
			if err != nil {
				return nil, err
			}
			posts[i].PollOptions = options
		case models.PostTypeQuestion:
			tags, err := r.Tags(ctx, posts[i].ID)
			if err != nil {
				return nil, err
			}
			posts[i].Tags = tags
		}
	}

	return posts, nil
}

// AcceptAnswer marks a question as answered with the given answer.
// Only the question's author may accept; the accepted answer is
// returned so the caller can credit its author.
func (r *PostRepository) AcceptAnswer(ctx context.Context, questionID, answerID, callerID int64) (*models.Post, error) {
	question, err := r.GetByID(ctx, questionID)
	if err != nil {
		return nil, err
	}
	if question == nil {
		return nil, ErrNotFound
	}
	if question.AuthorID != callerID {
		return nil, ErrForbidden
	}

	answer, err := r.GetByID(ctx, answerID)
	if err != nil {
		return nil, err
	}
	if answer == nil {
		return nil, ErrNotFound
	}

	if err := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("id = ?", questionID).
		Updates(map[string]interface{}{
			"is_answered":        true,
			"accepted_answer_id": answerID,
		}).Error; err != nil {
		return nil, err
	}

	return answer, nil
}
