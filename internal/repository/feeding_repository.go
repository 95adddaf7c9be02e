package repository

import (
	"context"
	"time"

	"github.com/catelog/catetube-backend/internal/model"
	"gorm.io/gorm"
)

type FeedingLogRepository interface {
	Create(ctx context.Context, log *model.FeedingLog) error
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]model.FeedingLog, int64, error)
	ListByRange(ctx context.Context, userID string, from, to *time.Time) ([]model.FeedingLog, error)
	// DeleteForDay removes the user's logs whose time_given falls on the
	// given day and reports how many were deleted.
	DeleteForDay(ctx context.Context, userID string, day time.Time) (int64, error)
}

type feedingLogRepository struct {
	db *gorm.DB
}

func (r *feedingLogRepository) Create(ctx context.Context, log *model.FeedingLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *feedingLogRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]model.FeedingLog, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).
		Model(&model.FeedingLog{}).
		Where("user_id = ?", userID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var logs []model.FeedingLog
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("time_given DESC").
		Limit(limit).
		Offset(offset).
		Find(&logs).Error; err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}

func (r *feedingLogRepository) ListByRange(ctx context.Context, userID string, from, to *time.Time) ([]model.FeedingLog, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if from != nil {
		q = q.Where("time_given >= ?", *from)
	}
	if to != nil {
		q = q.Where("time_given <= ?", *to)
	}
	var logs []model.FeedingLog
	if err := q.Order("time_given DESC").Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

func (r *feedingLogRepository) DeleteForDay(ctx context.Context, userID string, day time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND time_given >= ? AND time_given < ?", userID, day, day.Add(24*time.Hour)).
		Delete(&model.FeedingLog{})
	return res.RowsAffected, res.Error
}
