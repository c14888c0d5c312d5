package db

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/sensai/hubmind/internal/models"
)

// newTestDB opens an isolated in-memory database migrated with the
// full schema
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", name)
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	require.NoError(t, err)

	require.NoError(t, gdb.AutoMigrate(
		&models.Hub{},
		&models.Post{},
		&models.PollOption{},
		&models.PollVote{},
		&models.PostTag{},
		&models.Vote{},
		&models.Reputation{},
		&models.ModerationAction{},
		&models.Report{},
		&models.Follow{},
		&models.HubSubscription{},
		&models.PostTaskLink{},
		&models.PostSkillLink{},
		&models.PostBadgeLink{},
	))
	return gdb
}

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	return NewRepository(newTestDB(t))
}

// seedPost inserts an approved top-level post directly
func seedPost(t *testing.T, gdb *gorm.DB, hubID, authorID int64, postType string, createdAt time.Time) *models.Post {
	t.Helper()
	post := &models.Post{
		HubID:            hubID,
		AuthorID:         authorID,
		Body:             "seeded content",
		Type:             postType,
		ModerationStatus: models.ModerationStatusApproved,
		CreatedAt:        createdAt,
		LastActivity:     createdAt,
	}
	require.NoError(t, gdb.Create(post).Error)
	return post
}

// seedVote inserts a vote row directly
func seedVote(t *testing.T, gdb *gorm.DB, postID, userID int64, voteType string, createdAt time.Time) {
	t.Helper()
	require.NoError(t, gdb.Create(&models.Vote{
		PostID:    postID,
		UserID:    userID,
		VoteType:  voteType,
		CreatedAt: createdAt,
	}).Error)
}
