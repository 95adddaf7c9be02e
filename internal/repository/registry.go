package repository

import (
	"context"

	"gorm.io/gorm"
)

// Registry vends the repositories and scopes them to one transaction when
// needed. The feeding write path relies on Transaction so a log insert and
// its tracker update commit or roll back together.
type Registry interface {
	Users() UserRepository
	Feedings() FeedingLogRepository
	Medications() MedicationLogRepository
	Trackers() TrackerRepository
	Transaction(ctx context.Context, fn func(Registry) error) error
}

type gormRegistry struct {
	db *gorm.DB
}

func NewRegistry(db *gorm.DB) Registry {
	return &gormRegistry{db: db}
}

func (g *gormRegistry) Users() UserRepository {
	return &userRepository{db: g.db}
}

func (g *gormRegistry) Feedings() FeedingLogRepository {
	return &feedingLogRepository{db: g.db}
}

func (g *gormRegistry) Medications() MedicationLogRepository {
	return &medicationLogRepository{db: g.db}
}

func (g *gormRegistry) Trackers() TrackerRepository {
	return &trackerRepository{db: g.db}
}

func (g *gormRegistry) Transaction(ctx context.Context, fn func(Registry) error) error {
	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormRegistry{db: tx})
	})
}
