package repository

import (
	"context"
	"time"

	"github.com/catelog/catetube-backend/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TrackerRepository interface {
	FindByUserAndDate(ctx context.Context, userID string, date time.Time) (*model.DailyFeedingTracker, error)
	// FindByUserAndDateLocked reads with a row lock, so inside a
	// repeatable-read transaction it observes the latest committed row
	// instead of the transaction's earlier snapshot.
	FindByUserAndDateLocked(ctx context.Context, userID string, date time.Time) (*model.DailyFeedingTracker, error)
	FindByID(ctx context.Context, id uint64) (*model.DailyFeedingTracker, error)
	Create(ctx context.Context, t *model.DailyFeedingTracker) error
	Save(ctx context.Context, t *model.DailyFeedingTracker) error
	// ApplyFeeding increments the tracker's totals in a single UPDATE so
	// concurrent feedings never lose each other's writes. It reports the
	// number of rows touched (0 means the tracker vanished).
	ApplyFeeding(ctx context.Context, id uint64, amountML float64, now time.Time) (int64, error)
	ListRecent(ctx context.Context, userID string, limit int) ([]model.DailyFeedingTracker, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type trackerRepository struct {
	db *gorm.DB
}

func (r *trackerRepository) FindByUserAndDate(ctx context.Context, userID string, date time.Time) (*model.DailyFeedingTracker, error) {
	var t model.DailyFeedingTracker
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND target_date = ?", userID, date).
		First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *trackerRepository) FindByUserAndDateLocked(ctx context.Context, userID string, date time.Time) (*model.DailyFeedingTracker, error) {
	var t model.DailyFeedingTracker
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND target_date = ?", userID, date).
		First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *trackerRepository) FindByID(ctx context.Context, id uint64) (*model.DailyFeedingTracker, error) {
	var t model.DailyFeedingTracker
	if err := r.db.WithContext(ctx).First(&t, id).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *trackerRepository) Create(ctx context.Context, t *model.DailyFeedingTracker) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *trackerRepository) Save(ctx context.Context, t *model.DailyFeedingTracker) error {
	return r.db.WithContext(ctx).Save(t).Error
}

func (r *trackerRepository) ApplyFeeding(ctx context.Context, id uint64, amountML float64, now time.Time) (int64, error) {
	// remaining_ml is assigned before total_fed_ml so both MySQL
	// (left-to-right SET evaluation) and SQLite (all-old-values) compute it
	// from the pre-update total.
	res := r.db.WithContext(ctx).Exec(`
		UPDATE daily_feeding_trackers
		SET remaining_ml = CASE
				WHEN daily_target_ml - total_fed_ml - ? > 0 THEN daily_target_ml - total_fed_ml - ?
				ELSE 0
			END,
			total_fed_ml = total_fed_ml + ?,
			feeding_count = feeding_count + 1,
			last_updated = ?
		WHERE id = ?`,
		amountML, amountML, amountML, now, id)
	return res.RowsAffected, res.Error
}

func (r *trackerRepository) ListRecent(ctx context.Context, userID string, limit int) ([]model.DailyFeedingTracker, error) {
	var trackers []model.DailyFeedingTracker
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("target_date DESC").
		Limit(limit).
		Find(&trackers).Error; err != nil {
		return nil, err
	}
	return trackers, nil
}

func (r *trackerRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("target_date < ?", cutoff).
		Delete(&model.DailyFeedingTracker{})
	return res.RowsAffected, res.Error
}
