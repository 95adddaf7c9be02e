package service

import (
	"context"
	"testing"
	"time"

	"github.com/catelog/catetube-backend/internal/cache"
	"github.com/catelog/catetube-backend/internal/clock"
	"github.com/catelog/catetube-backend/internal/model"
	"github.com/catelog/catetube-backend/internal/repository"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testDefaultTarget = 210.0

// newTestRegistry gives each test its own in-memory database. A single open
// connection keeps the shared in-memory handle alive and serializes
// concurrent writers the way the production pool would queue them.
func newTestRegistry(t *testing.T) repository.Registry {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.DailyFeedingTracker{},
		&model.FeedingLog{},
		&model.MedicationLog{},
	))
	return repository.NewRegistry(db)
}

func createTestUser(t *testing.T, repos repository.Registry, email string, targetML float64) *model.User {
	t.Helper()
	u := &model.User{
		Email:         email,
		PasswordHash:  "x",
		FirstName:     "Test",
		DailyTargetML: targetML,
		IsActive:      true,
	}
	require.NoError(t, repos.Users().Create(context.Background(), u))
	return u
}

func testClock() *clock.Fake {
	return clock.NewFake(time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC))
}

func testCache() *cache.Cache {
	return cache.New(5 * time.Minute)
}
