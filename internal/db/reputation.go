package db

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sensai/hubmind/internal/models"
)

// ReputationRepository provides the per-user, per-hub reputation ledger
type ReputationRepository struct {
	*Repository
}

// NewReputationRepository creates a new reputation repository
func NewReputationRepository(repo *Repository) *ReputationRepository {
	return &ReputationRepository{Repository: repo}
}

// Credit adds points to a user's hub-scoped score and increments the
// counter named by kind, creating the row on first use. Repeated calls
// accumulate; there is no dedup at this layer.
func (r *ReputationRepository) Credit(ctx context.Context, userID, hubID int64, kind string, points int) error {
	return creditReputation(r.db.WithContext(ctx), userID, hubID, kind, points)
}

// creditReputation performs the ledger upsert on any db handle so that
// callers holding a transaction can join it. The kind must come from
// the fixed counter enum; it is the only identifier spliced into the
// statement.
func creditReputation(db *gorm.DB, userID, hubID int64, kind string, points int) error {
	if !models.ValidReputationKind(kind) {
		return fmt.Errorf("%w: unknown reputation kind %q", ErrValidation, kind)
	}

	row := models.Reputation{
		UserID:      userID,
		HubID:       hubID,
		Score:       points,
		LastUpdated: time.Now().UTC(),
	}
	switch kind {
	case models.RepHelpfulAnswers:
		row.HelpfulAnswers = 1
	case models.RepAcceptedAnswers:
		row.AcceptedAnswers = 1
	case models.RepUpvotesReceived:
		row.UpvotesReceived = 1
	case models.RepDownvotesReceived:
		row.DownvotesReceived = 1
	case models.RepPostsCreated:
		row.PostsCreated = 1
	case models.RepModeratorActions:
		row.ModeratorActions = 1
	}

	return db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "hub_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"score":        gorm.Expr("score + ?", points),
			kind:           gorm.Expr(kind + " + 1"),
			"last_updated": time.Now().UTC(),
		}),
	}).Create(&row).Error
}

// Get returns a user's reputation. With a hub ID the exact row is
// read; without one, totals are summed across every hub the user has
// activity in. Users with no rows read as all zeroes, never an error.
func (r *ReputationRepository) Get(ctx context.Context, userID int64, hubID *int64) (*models.ReputationSummary, error) {
	var summary models.ReputationSummary

	query := r.db.WithContext(ctx).
		Model(&models.Reputation{}).
		Select("COALESCE(SUM(score), 0) AS score, " +
			"COALESCE(SUM(helpful_answers), 0) AS helpful_answers, " +
			"COALESCE(SUM(accepted_answers), 0) AS accepted_answers, " +
			"COALESCE(SUM(upvotes_received), 0) AS upvotes_received, " +
			"COALESCE(SUM(downvotes_received), 0) AS downvotes_received, " +
			"COALESCE(SUM(posts_created), 0) AS posts_created, " +
			"COALESCE(SUM(moderator_actions), 0) AS moderator_actions").
		Where("user_id = ?", userID)
	if hubID != nil {
		query = query.Where("hub_id = ?", *hubID)
	}

	if err := query.Scan(&summary).Error; err != nil {
		return nil, err
	}
	return &summary, nil
}
