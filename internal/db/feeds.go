package db

import (
	"context"
	"fmt"
	"time"

	"github.com/sensai/hubmind/internal/models"
)

// Feed view names
const (
	FeedFollowing      = "following"
	FeedSubscribedHubs = "subscribed_hubs"
	FeedTrending       = "trending"
	FeedRecommended    = "recommended"
)

// Leaderboard windows
const (
	PeriodAllTime = "all_time"
	PeriodMonth   = "month"
	PeriodWeek    = "week"
)

// FeedRepository composes the ranked feed, leaderboard and search
// queries over approved posts
type FeedRepository struct {
	*Repository
}

// NewFeedRepository creates a new feed repository
func NewFeedRepository(repo *Repository) *FeedRepository {
	return &FeedRepository{Repository: repo}
}

// FeedPost is a single feed entry with its engagement aggregates
type FeedPost struct {
	ID         int64     `gorm:"column:id" json:"id"`
	HubID      int64     `gorm:"column:hub_id" json:"hub_id"`
	AuthorID   int64     `gorm:"column:user_id" json:"author_id"`
	Title      *string   `gorm:"column:title" json:"title,omitempty"`
	Body       string    `gorm:"column:content" json:"content"`
	Type       string    `gorm:"column:post_type" json:"post_type"`
	CreatedAt  time.Time `gorm:"column:created_at" json:"created_at"`
	Votes      int       `gorm:"column:votes" json:"votes"`
	ReplyCount int       `gorm:"column:reply_count" json:"reply_count"`
}

const netVoteSubquery = "SELECT post_id, SUM(CASE WHEN vote_type = 'up' THEN 1 WHEN vote_type = 'down' THEN -1 ELSE 0 END) AS vote_count FROM post_votes"

const feedColumns = "p.id, p.hub_id, p.user_id, p.title, p.content, p.post_type, p.created_at, COALESCE(pv.vote_count, 0) AS votes, p.reply_count"

// Get returns one page of the named feed view for a user. Unknown
// view names fall back to the recommended ordering.
func (r *FeedRepository) Get(ctx context.Context, userID int64, view string, limit, offset int) ([]FeedPost, error) {
	var posts []FeedPost
	var err error

	switch view {
	case FeedFollowing:
		// Posts authored by users the caller follows, newest first
		err = r.db.WithContext(ctx).
			Table("posts p").
			Distinct().
			Select(feedColumns).
			Joins("JOIN user_follows uf ON p.user_id = uf.following_id").
			Joins("LEFT JOIN ("+netVoteSubquery+" GROUP BY post_id) pv ON p.id = pv.post_id").
			Where("uf.follower_id = ? AND p.moderation_status = ?", userID, models.ModerationStatusApproved).
			Order("p.created_at DESC").
			Limit(limit).Offset(offset).
			Scan(&posts).Error

	case FeedSubscribedHubs:
		// Posts from subscribed hubs, most recently active first
		err = r.db.WithContext(ctx).
			Table("posts p").
			Distinct().
			Select(feedColumns).
			Joins("JOIN hub_subscriptions hs ON p.hub_id = hs.hub_id").
			Joins("LEFT JOIN ("+netVoteSubquery+" GROUP BY post_id) pv ON p.id = pv.post_id").
			Where("hs.user_id = ? AND p.moderation_status = ?", userID, models.ModerationStatusApproved).
			Order("p.last_activity DESC").
			Limit(limit).Offset(offset).
			Scan(&posts).Error

	case FeedTrending:
		return r.Trending(ctx, nil, limit, offset)

	default:
		// Recommended: all-time engagement with recency tie-break
		err = r.db.WithContext(ctx).
			Table("posts p").
			Select(feedColumns).
			Joins("LEFT JOIN (" + netVoteSubquery + " GROUP BY post_id) pv ON p.id = pv.post_id").
			Where("p.moderation_status = ?", models.ModerationStatusApproved).
			Order("(COALESCE(pv.vote_count, 0) + p.reply_count) DESC, p.created_at DESC").
			Limit(limit).Offset(offset).
			Scan(&posts).Error
	}

	if err != nil {
		return nil, err
	}
	return posts, nil
}

// Trending returns high-engagement posts: net votes over the last day
// plus double weight on replies, limited to posts from the last three
// days. A non-nil hubID scopes the result to one hub.
func (r *FeedRepository) Trending(ctx context.Context, hubID *int64, limit, offset int) ([]FeedPost, error) {
	now := time.Now().UTC()
	voteWindow := now.Add(-24 * time.Hour)
	postWindow := now.Add(-3 * 24 * time.Hour)

	query := r.db.WithContext(ctx).
		Table("posts p").
		Select(feedColumns+", (COALESCE(pv.vote_count, 0) + p.reply_count * 2) AS trend_score").
		Joins("LEFT JOIN ("+netVoteSubquery+" WHERE created_at > ? GROUP BY post_id) pv ON p.id = pv.post_id", voteWindow).
		Where("p.moderation_status = ? AND p.created_at > ?", models.ModerationStatusApproved, postWindow).
		Order("trend_score DESC, p.created_at DESC").
		Limit(limit).Offset(offset)
	if hubID != nil {
		query = query.Where("p.hub_id = ?", *hubID)
	}

	var posts []FeedPost
	if err := query.Scan(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

// LeaderboardEntry is one ranked row of the user leaderboard
type LeaderboardEntry struct {
	Rank         int   `gorm:"-" json:"rank"`
	UserID       int64 `gorm:"column:user_id" json:"user_id"`
	PostCount    int   `gorm:"column:post_count" json:"post_count"`
	HelpfulVotes int   `gorm:"column:helpful_votes" json:"helpful_votes"`
	Reputation   int   `gorm:"column:reputation" json:"reputation"`
}

// Leaderboard ranks users by posting activity and up-votes received
// within the given window
func (r *FeedRepository) Leaderboard(ctx context.Context, limit int, period string) ([]LeaderboardEntry, error) {
	query := r.db.WithContext(ctx).
		Table("posts p").
		Select("p.user_id, COUNT(DISTINCT p.id) AS post_count, " +
			"COUNT(CASE WHEN pv.vote_type = 'up' THEN 1 END) AS helpful_votes, " +
			"(COUNT(DISTINCT p.id) * 10 + COUNT(CASE WHEN pv.vote_type = 'up' THEN 1 END) * 5) AS reputation").
		Joins("LEFT JOIN post_votes pv ON p.id = pv.post_id AND pv.vote_type = 'up'").
		Group("p.user_id").
		Order("reputation DESC, post_count DESC").
		Limit(limit)

	now := time.Now().UTC()
	switch period {
	case PeriodMonth:
		query = query.Where("p.created_at > ?", now.Add(-30*24*time.Hour))
	case PeriodWeek:
		query = query.Where("p.created_at > ?", now.Add(-7*24*time.Hour))
	case PeriodAllTime, "":
		// No window
	default:
		return nil, fmt.Errorf("%w: unknown leaderboard period %q", ErrValidation, period)
	}

	var entries []LeaderboardEntry
	if err := query.Scan(&entries).Error; err != nil {
		return nil, err
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}

// SearchParams are the optional filters for a post search
type SearchParams struct {
	Query     string
	HubIDs    []int64
	PostTypes []string
	Tags      []string
	Category  string
	AuthorID  int64
	DateFrom  *time.Time
	DateTo    *time.Time
	SortBy    string // date, votes, replies, relevance
	Limit     int
	Offset    int
}

// SearchResult is a matched post with its aggregates
type SearchResult struct {
	ID               int64     `gorm:"column:id" json:"id"`
	HubID            int64     `gorm:"column:hub_id" json:"hub_id"`
	AuthorID         int64     `gorm:"column:user_id" json:"author_id"`
	Title            *string   `gorm:"column:title" json:"title,omitempty"`
	Body             string    `gorm:"column:content" json:"content"`
	Type             string    `gorm:"column:post_type" json:"post_type"`
	Category         *string   `gorm:"column:category" json:"category,omitempty"`
	CreatedAt        time.Time `gorm:"column:created_at" json:"created_at"`
	Votes            int       `gorm:"column:votes" json:"votes"`
	ReplyCount       int       `gorm:"column:reply_count" json:"reply_count"`
	ViewCount        int       `gorm:"column:view_count" json:"view_count"`
	ModerationStatus string    `gorm:"column:moderation_status" json:"moderation_status"`
	IsAnswered       *bool     `gorm:"column:is_answered" json:"is_answered,omitempty"`
}

// Search filters posts by text and metadata and orders the result by
// the requested sort policy
func (r *FeedRepository) Search(ctx context.Context, params *SearchParams) ([]SearchResult, error) {
	query := r.db.WithContext(ctx).
		Table("posts p").
		Distinct().
		Select("p.id, p.hub_id, p.user_id, p.title, p.content, p.post_type, p.category, " +
			"p.created_at, p.reply_count, p.view_count, p.moderation_status, p.is_answered, " +
			"COALESCE(pv.vote_count, 0) AS votes").
		Joins("LEFT JOIN (" + netVoteSubquery + " GROUP BY post_id) pv ON p.id = pv.post_id")

	if params.Query != "" {
		like := "%" + params.Query + "%"
		query = query.Where("p.title LIKE ? OR p.content LIKE ?", like, like)
	}
	if len(params.HubIDs) > 0 {
		query = query.Where("p.hub_id IN ?", params.HubIDs)
	}
	if len(params.PostTypes) > 0 {
		query = query.Where("p.post_type IN ?", params.PostTypes)
	}
	if len(params.Tags) > 0 {
		query = query.Joins("JOIN post_tags pt ON p.id = pt.post_id").
			Where("pt.tag IN ?", params.Tags)
	}
	if params.Category != "" {
		query = query.Where("p.category = ?", params.Category)
	}
	if params.AuthorID != 0 {
		query = query.Where("p.user_id = ?", params.AuthorID)
	}
	if params.DateFrom != nil {
		query = query.Where("p.created_at >= ?", *params.DateFrom)
	}
	if params.DateTo != nil {
		query = query.Where("p.created_at <= ?", *params.DateTo)
	}

	switch params.SortBy {
	case "date":
		query = query.Order("p.created_at DESC")
	case "votes":
		query = query.Order("votes DESC, p.created_at DESC")
	default:
		// replies doubles as the relevance ordering
		query = query.Order("p.reply_count DESC, p.created_at DESC")
	}

	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}
	query = query.Limit(limit).Offset(params.Offset)

	var results []SearchResult
	if err := query.Scan(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
