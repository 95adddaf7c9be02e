package repository

import (
	"context"
	"time"

	"github.com/catelog/catetube-backend/internal/model"
	"gorm.io/gorm"
)

type MedicationLogRepository interface {
	Create(ctx context.Context, log *model.MedicationLog) error
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]model.MedicationLog, int64, error)
	ListByRange(ctx context.Context, userID string, from, to *time.Time) ([]model.MedicationLog, error)
}

type medicationLogRepository struct {
	db *gorm.DB
}

func (r *medicationLogRepository) Create(ctx context.Context, log *model.MedicationLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *medicationLogRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]model.MedicationLog, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).
		Model(&model.MedicationLog{}).
		Where("user_id = ?", userID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var logs []model.MedicationLog
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

func (r *medicationLogRepository) ListByRange(ctx context.Context, userID string, from, to *time.Time) ([]model.MedicationLog, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if from != nil {
		q = q.Where("time_given >= ?", *from)
	}
	if to != nil {
		q = q.Where("time_given <= ?", *to)
	}
	var logs []model.MedicationLog
	if err := q.Order("time_given DESC").Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}
